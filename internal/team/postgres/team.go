package postgres

import (
	teamDatamodel "github.com/eproba/server/internal/core/datamodel/team"
	userDatamodel "github.com/eproba/server/internal/core/datamodel/user"
	"github.com/eproba/server/internal/team"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TeamRepository implements the team.Repository interface using GORM.
type TeamRepository struct {
	db *gorm.DB
}

func NewTeamRepository(db *gorm.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) GetTeam(id uuid.UUID) (*team.Team, error) {
	var dm teamDatamodel.Team
	if err := r.db.Where("id = ?", id).First(&dm).Error; err != nil {
		return nil, err
	}
	return team.FromDataModel(&dm), nil
}

func (r *TeamRepository) ListTeams() ([]*team.Team, error) {
	var dms []*teamDatamodel.Team
	if err := r.db.Order("name ASC").Find(&dms).Error; err != nil {
		return nil, err
	}
	result := make([]*team.Team, len(dms))
	for i, dm := range dms {
		result[i] = team.FromDataModel(dm)
	}
	return result, nil
}

func (r *TeamRepository) CreateTeam(t *team.Team) error {
	return r.db.Create(team.ToDataModel(t)).Error
}

func (r *TeamRepository) GetPatrol(id uuid.UUID) (*team.Patrol, error) {
	var dm teamDatamodel.Patrol
	if err := r.db.Where("id = ?", id).First(&dm).Error; err != nil {
		return nil, err
	}
	return team.PatrolFromDataModel(&dm), nil
}

func (r *TeamRepository) ListPatrols(teamID uuid.UUID) ([]*team.Patrol, error) {
	var dms []*teamDatamodel.Patrol
	err := r.db.Where("team_id = ?", teamID).Order("name ASC").Find(&dms).Error
	if err != nil {
		return nil, err
	}
	return team.PatrolFromDataModelSlice(dms), nil
}

func (r *TeamRepository) CreatePatrol(p *team.Patrol) error {
	return r.db.Create(team.PatrolToDataModel(p)).Error
}

func (r *TeamRepository) DeletePatrol(id uuid.UUID) error {
	return r.db.Where("id = ?", id).Delete(&teamDatamodel.Patrol{}).Error
}

func (r *TeamRepository) CountActiveMembers(patrolID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&userDatamodel.User{}).
		Where("patrol_id = ? AND is_active = ?", patrolID, true).
		Count(&count).Error
	return count, err
}
