package user

import (
	"log/slog"

	"github.com/eproba/server/internal"
	"github.com/google/uuid"
)

// Repository defines the data access methods for users. TeamID on returned
// users is resolved through the patrol join.
type Repository interface {
	GetByID(id uuid.UUID) (*User, error)
	GetByEmail(email string) (*User, error)
	ListByTeam(teamID uuid.UUID) ([]*User, error)
	ListByPatrol(patrolID uuid.UUID) ([]*User, error)
	Update(u *User) error
}

type Service struct {
	repo                 Repository
	patrolLeaderFunction Function
	leaderFunction       Function
	logger               *slog.Logger
}

func NewService(repo Repository, patrolLeaderFunction, leaderFunction int, logger *slog.Logger) *Service {
	return &Service{
		repo:                 repo,
		patrolLeaderFunction: Function(patrolLeaderFunction),
		leaderFunction:       Function(leaderFunction),
		logger:               logger,
	}
}

func (s *Service) GetUser(id uuid.UUID) (*User, error) {
	u, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get user", "error", err, "user_id", id)
		return nil, internal.ErrUserNotFound
	}
	return u, nil
}

// GetTeamMembers lists everyone in the actor's team. Members below the
// patrol leader tier only see their own patrol.
func (s *Service) GetTeamMembers(actor *User) ([]*User, error) {
	if actor.Function < s.patrolLeaderFunction {
		if actor.PatrolID == nil {
			return []*User{actor}, nil
		}
		members, err := s.repo.ListByPatrol(*actor.PatrolID)
		if err != nil {
			s.logger.Error("failed to list patrol members", "error", err, "patrol_id", *actor.PatrolID)
			return nil, err
		}
		return members, nil
	}

	if actor.TeamID == nil {
		return []*User{actor}, nil
	}
	members, err := s.repo.ListByTeam(*actor.TeamID)
	if err != nil {
		s.logger.Error("failed to list team members", "error", err, "team_id", *actor.TeamID)
		return nil, err
	}
	return members, nil
}

func (s *Service) UpdateUser(actor *User, targetID uuid.UUID, dto UpdateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	target, err := s.repo.GetByID(targetID)
	if err != nil {
		s.logger.Error("failed to get user for update", "error", err, "user_id", targetID)
		return nil, internal.ErrUserNotFound
	}

	self := actor.ID == target.ID
	sameTeam := actor.TeamID != nil && target.TeamID != nil && *actor.TeamID == *target.TeamID
	overseesTeam := actor.Function >= s.patrolLeaderFunction && sameTeam
	leadsTeam := actor.Function >= s.leaderFunction && sameTeam
	if !self && !overseesTeam {
		s.logger.Warn("user update denied",
			"actor_id", actor.ID,
			"target_id", targetID,
			"actor_function", actor.Function)
		return nil, internal.ErrUnauthorizedAccess
	}

	if dto.Nickname != nil {
		target.Nickname = *dto.Nickname
	}
	if dto.FirstName != nil {
		target.FirstName = *dto.FirstName
	}
	if dto.LastName != nil {
		target.LastName = *dto.LastName
	}
	// Rank and patrol assignment stay with team leadership, even on self.
	// Patrol leaders may edit their members' profiles but not promote them.
	if dto.Function != nil || dto.PatrolID != nil {
		if !leadsTeam {
			return nil, internal.ErrUnauthorizedAccess
		}
		if dto.Function != nil {
			target.Function = Function(*dto.Function)
		}
		if dto.PatrolID != nil {
			target.PatrolID = dto.PatrolID
		}
	}

	if err := s.repo.Update(target); err != nil {
		s.logger.Error("failed to update user", "error", err, "user_id", targetID)
		return nil, err
	}

	s.logger.Info("user updated", "user_id", targetID, "actor_id", actor.ID)
	return target, nil
}
