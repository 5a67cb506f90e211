package postgres

import (
	"time"

	teamDatamodel "github.com/eproba/server/internal/core/datamodel/team"
	userDatamodel "github.com/eproba/server/internal/core/datamodel/user"
	"github.com/eproba/server/internal/user"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserRepository implements the user.Repository interface using GORM. Team
// membership is derived from the patrol join; users without a patrol have a
// nil TeamID.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetByID(id uuid.UUID) (*user.User, error) {
	var dm userDatamodel.User
	if err := r.db.Where("id = ?", id).First(&dm).Error; err != nil {
		return nil, err
	}
	teamID, err := r.teamIDFor(dm.PatrolID)
	if err != nil {
		return nil, err
	}
	return user.FromDataModel(&dm, teamID), nil
}

func (r *UserRepository) GetByEmail(email string) (*user.User, error) {
	var dm userDatamodel.User
	if err := r.db.Where("email = ?", email).First(&dm).Error; err != nil {
		return nil, err
	}
	teamID, err := r.teamIDFor(dm.PatrolID)
	if err != nil {
		return nil, err
	}
	return user.FromDataModel(&dm, teamID), nil
}

func (r *UserRepository) ListByTeam(teamID uuid.UUID) ([]*user.User, error) {
	var dms []*userDatamodel.User
	err := r.db.
		Joins("JOIN patrols ON patrols.id = users.patrol_id").
		Where("patrols.team_id = ?", teamID).
		Order("users.function DESC, users.last_name ASC").
		Find(&dms).Error
	if err != nil {
		return nil, err
	}

	result := make([]*user.User, len(dms))
	for i, dm := range dms {
		tid := teamID
		result[i] = user.FromDataModel(dm, &tid)
	}
	return result, nil
}

func (r *UserRepository) ListByPatrol(patrolID uuid.UUID) ([]*user.User, error) {
	teamID, err := r.teamIDFor(&patrolID)
	if err != nil {
		return nil, err
	}

	var dms []*userDatamodel.User
	err = r.db.
		Where("patrol_id = ?", patrolID).
		Order("function DESC, last_name ASC").
		Find(&dms).Error
	if err != nil {
		return nil, err
	}

	result := make([]*user.User, len(dms))
	for i, dm := range dms {
		result[i] = user.FromDataModel(dm, teamID)
	}
	return result, nil
}

func (r *UserRepository) Update(u *user.User) error {
	u.UpdatedAt = time.Now()
	return r.db.Save(user.ToDataModel(u)).Error
}

func (r *UserRepository) teamIDFor(patrolID *uuid.UUID) (*uuid.UUID, error) {
	if patrolID == nil {
		return nil, nil
	}
	var patrol teamDatamodel.Patrol
	if err := r.db.Where("id = ?", *patrolID).First(&patrol).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &patrol.TeamID, nil
}
