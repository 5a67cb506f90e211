package team

import (
	"log/slog"
	"time"

	"github.com/eproba/server/internal"
	"github.com/eproba/server/internal/user"
	"github.com/google/uuid"
)

// Repository defines the data access methods for teams and patrols.
type Repository interface {
	GetTeam(id uuid.UUID) (*Team, error)
	ListTeams() ([]*Team, error)
	CreateTeam(t *Team) error
	GetPatrol(id uuid.UUID) (*Patrol, error)
	ListPatrols(teamID uuid.UUID) ([]*Patrol, error)
	CreatePatrol(p *Patrol) error
	DeletePatrol(id uuid.UUID) error
	CountActiveMembers(patrolID uuid.UUID) (int64, error)
}

type Service struct {
	repo           Repository
	leaderFunction user.Function
	logger         *slog.Logger
}

func NewService(repo Repository, leaderFunction int, logger *slog.Logger) *Service {
	return &Service{
		repo:           repo,
		leaderFunction: user.Function(leaderFunction),
		logger:         logger,
	}
}

func (s *Service) GetTeam(id uuid.UUID) (*Team, error) {
	t, err := s.repo.GetTeam(id)
	if err != nil {
		s.logger.Error("failed to get team", "error", err, "team_id", id)
		return nil, internal.ErrTeamNotFound
	}

	patrols, err := s.repo.ListPatrols(id)
	if err != nil {
		s.logger.Error("failed to list patrols", "error", err, "team_id", id)
		return nil, err
	}
	t.Patrols = patrols
	return t, nil
}

func (s *Service) ListTeams() ([]*Team, error) {
	teams, err := s.repo.ListTeams()
	if err != nil {
		s.logger.Error("failed to list teams", "error", err)
		return nil, err
	}
	return teams, nil
}

func (s *Service) CreateTeam(actor *user.User, dto CreateTeamDTO) (*Team, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}
	if actor.Function < s.leaderFunction {
		s.logger.Warn("create team denied", "actor_id", actor.ID, "function", actor.Function)
		return nil, internal.ErrUnauthorizedAccess
	}

	now := time.Now()
	t := &Team{
		ID:        uuid.New(),
		Name:      dto.Name,
		ShortName: dto.ShortName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateTeam(t); err != nil {
		s.logger.Error("failed to create team", "error", err)
		return nil, err
	}

	s.logger.Info("team created", "team_id", t.ID, "actor_id", actor.ID)
	return t, nil
}

func (s *Service) CreatePatrol(actor *user.User, teamID uuid.UUID, dto CreatePatrolDTO) (*Patrol, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}
	if actor.Function < s.leaderFunction || !actor.InTeam(teamID) {
		s.logger.Warn("create patrol denied", "actor_id", actor.ID, "team_id", teamID)
		return nil, internal.ErrUnauthorizedAccess
	}

	if _, err := s.repo.GetTeam(teamID); err != nil {
		return nil, internal.ErrTeamNotFound
	}

	now := time.Now()
	p := &Patrol{
		ID:        uuid.New(),
		TeamID:    teamID,
		Name:      dto.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreatePatrol(p); err != nil {
		s.logger.Error("failed to create patrol", "error", err, "team_id", teamID)
		return nil, err
	}

	s.logger.Info("patrol created", "patrol_id", p.ID, "team_id", teamID, "actor_id", actor.ID)
	return p, nil
}

// DeletePatrol refuses to remove a patrol that still has active members.
// Members must be reassigned first.
func (s *Service) DeletePatrol(actor *user.User, patrolID uuid.UUID) error {
	p, err := s.repo.GetPatrol(patrolID)
	if err != nil {
		s.logger.Error("patrol not found for deletion", "error", err, "patrol_id", patrolID)
		return internal.ErrPatrolNotFound
	}

	if actor.Function < s.leaderFunction || !actor.InTeam(p.TeamID) {
		s.logger.Warn("delete patrol denied", "actor_id", actor.ID, "patrol_id", patrolID)
		return internal.ErrUnauthorizedAccess
	}

	count, err := s.repo.CountActiveMembers(patrolID)
	if err != nil {
		s.logger.Error("failed to count patrol members", "error", err, "patrol_id", patrolID)
		return err
	}
	if count > 0 {
		s.logger.Warn("delete patrol refused: active members remain",
			"patrol_id", patrolID,
			"member_count", count)
		return internal.ErrPatrolHasMembers
	}

	if err := s.repo.DeletePatrol(patrolID); err != nil {
		s.logger.Error("failed to delete patrol", "error", err, "patrol_id", patrolID)
		return err
	}

	s.logger.Info("patrol deleted", "patrol_id", patrolID, "actor_id", actor.ID)
	return nil
}
