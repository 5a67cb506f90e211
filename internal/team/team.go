package team

import (
	"time"

	teamDatamodel "github.com/eproba/server/internal/core/datamodel/team"
	"github.com/google/uuid"
)

type Team struct {
	ID        uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	ShortName  string    `json:"short_name,omitempty"`
	IsVerified bool      `json:"is_verified"`
	Patrols    []*Patrol `json:"patrols,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Patrol struct {
	ID        uuid.UUID `json:"id"`
	TeamID    uuid.UUID `json:"team_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ToDataModel(t *Team) *teamDatamodel.Team {
	return &teamDatamodel.Team{
		ID:         t.ID,
		Name:       t.Name,
		ShortName:  t.ShortName,
		IsVerified: t.IsVerified,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}

func FromDataModel(t *teamDatamodel.Team) *Team {
	return &Team{
		ID:         t.ID,
		Name:       t.Name,
		ShortName:  t.ShortName,
		IsVerified: t.IsVerified,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}

func PatrolToDataModel(p *Patrol) *teamDatamodel.Patrol {
	return &teamDatamodel.Patrol{
		ID:        p.ID,
		TeamID:    p.TeamID,
		Name:      p.Name,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func PatrolFromDataModel(p *teamDatamodel.Patrol) *Patrol {
	return &Patrol{
		ID:        p.ID,
		TeamID:    p.TeamID,
		Name:      p.Name,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

func PatrolFromDataModelSlice(patrols []*teamDatamodel.Patrol) []*Patrol {
	result := make([]*Patrol, len(patrols))
	for i, p := range patrols {
		result[i] = PatrolFromDataModel(p)
	}
	return result
}
