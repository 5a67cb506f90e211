package postgres

import (
	teamDatamodel "github.com/eproba/server/internal/core/datamodel/team"
	userDatamodel "github.com/eproba/server/internal/core/datamodel/user"
	"github.com/eproba/server/internal/user"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository is the auth-facing view of user storage.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetByEmail(email string) (*user.User, error) {
	var dm userDatamodel.User
	if err := r.db.Where("email = ?", email).First(&dm).Error; err != nil {
		return nil, err
	}
	return user.FromDataModel(&dm, r.teamIDFor(dm.PatrolID)), nil
}

func (r *Repository) GetByID(id uuid.UUID) (*user.User, error) {
	var dm userDatamodel.User
	if err := r.db.Where("id = ?", id).First(&dm).Error; err != nil {
		return nil, err
	}
	return user.FromDataModel(&dm, r.teamIDFor(dm.PatrolID)), nil
}

func (r *Repository) Create(u *user.User) error {
	return r.db.Create(user.ToDataModel(u)).Error
}

func (r *Repository) teamIDFor(patrolID *uuid.UUID) *uuid.UUID {
	if patrolID == nil {
		return nil
	}
	var patrol teamDatamodel.Patrol
	if err := r.db.Where("id = ?", *patrolID).First(&patrol).Error; err != nil {
		return nil
	}
	return &patrol.TeamID
}
