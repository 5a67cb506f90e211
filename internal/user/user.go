package user

import (
	"strings"
	"time"

	userDatamodel "github.com/eproba/server/internal/core/datamodel/user"
	"github.com/google/uuid"
)

// Function is the ordered scouting rank scale. Comparisons against the
// workflow thresholds decide what a user may do; the named constants exist
// for seeding and display only.
type Function int

const (
	FunctionMember             Function = 0
	FunctionDeputyPatrolLeader Function = 1
	FunctionPatrolLeader       Function = 2
	FunctionDeputyTeamLeader   Function = 3
	FunctionTeamLeader         Function = 4
	FunctionSenior             Function = 5
)

func (f Function) String() string {
	switch f {
	case FunctionMember:
		return "member"
	case FunctionDeputyPatrolLeader:
		return "deputy_patrol_leader"
	case FunctionPatrolLeader:
		return "patrol_leader"
	case FunctionDeputyTeamLeader:
		return "deputy_team_leader"
	case FunctionTeamLeader:
		return "team_leader"
	case FunctionSenior:
		return "senior"
	default:
		return "unknown"
	}
}

type User struct {
	ID        uuid.UUID  `json:"id"`
	Email     string     `json:"email"`
	Nickname  string     `json:"nickname,omitempty"`
	FirstName string     `json:"first_name,omitempty"`
	LastName  string     `json:"last_name,omitempty"`
	Function  Function   `json:"function"`
	PatrolID  *uuid.UUID `json:"patrol_id,omitempty"`
	TeamID    *uuid.UUID `json:"team_id,omitempty"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	PasswordHash string `json:"-"`
}

// DisplayName prefers the nickname, falls back to the full name, then email.
func (u *User) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if full != "" {
		return full
	}
	return u.Email
}

func (u *User) InPatrol(patrolID uuid.UUID) bool {
	return u.PatrolID != nil && *u.PatrolID == patrolID
}

func (u *User) InTeam(teamID uuid.UUID) bool {
	return u.TeamID != nil && *u.TeamID == teamID
}

// ToDataModel drops TeamID, which is derived from the patrol join and never
// stored on the users table.
func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:           u.ID,
		Email:        u.Email,
		Nickname:     u.Nickname,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		PasswordHash: u.PasswordHash,
		Function:     int(u.Function),
		PatrolID:     u.PatrolID,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func FromDataModel(u *userDatamodel.User, teamID *uuid.UUID) *User {
	return &User{
		ID:           u.ID,
		Email:        u.Email,
		Nickname:     u.Nickname,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		PasswordHash: u.PasswordHash,
		Function:     Function(u.Function),
		PatrolID:     u.PatrolID,
		TeamID:       teamID,
		IsActive:     u.IsActive,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
