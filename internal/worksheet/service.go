package worksheet

import (
	"context"
	"log/slog"
	"time"

	"github.com/eproba/server/internal"
	"github.com/eproba/server/internal/core/events"
	"github.com/eproba/server/internal/user"
	"github.com/google/uuid"
)

// Repository defines the data access methods for worksheets. MutateTask runs
// apply against a fresh copy of the task inside a transaction, so status
// guards see committed state.
type Repository interface {
	Create(w *Worksheet) error
	GetByID(id uuid.UUID) (*Worksheet, error)
	List(f Filter) ([]*Worksheet, error)
	Update(w *Worksheet) error
	SoftDelete(id uuid.UUID) error
	MutateTask(worksheetID, taskID uuid.UUID, apply func(*Task) error) (*Worksheet, *Task, error)
	PendingForApprover(approverID uuid.UUID) ([]*Worksheet, error)
	OwnerFunction(w *Worksheet) (user.Function, error)
}

// UserDirectory is the slice of the user repository the worksheet flow
// needs: resolving owners and approver candidates.
type UserDirectory interface {
	GetByID(id uuid.UUID) (*user.User, error)
	ListByTeam(teamID uuid.UUID) ([]*user.User, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo   Repository
	users  UserDirectory
	events EventPublisher
	policy Policy
	logger *slog.Logger
}

func NewService(repo Repository, users UserDirectory, publisher EventPublisher, policy Policy, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		users:  users,
		events: publisher,
		policy: policy,
		logger: logger,
	}
}

func (s *Service) CreateWorksheet(actor *user.User, dto CreateWorksheetDTO) (*Worksheet, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("worksheet validation failed", "error", err, "actor_id", actor.ID)
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	now := time.Now()
	w := &Worksheet{
		ID:          uuid.New(),
		Name:        dto.Name,
		Description: dto.Description,
		IsTemplate:  dto.IsTemplate,
		TeamID:      actor.TeamID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if dto.IsTemplate {
		if !s.policy.CanManageTemplates(actor) {
			s.logger.Warn("create template denied", "actor_id", actor.ID, "function", actor.Function)
			return nil, internal.ErrUnauthorizedAccess
		}
	} else {
		owner := actor
		if dto.ForUserID != nil && *dto.ForUserID != actor.ID {
			var err error
			owner, err = s.users.GetByID(*dto.ForUserID)
			if err != nil {
				s.logger.Error("worksheet owner not found", "error", err, "user_id", *dto.ForUserID)
				return nil, internal.ErrUserNotFound
			}
		}
		if !s.policy.CanCreateFor(actor, owner) {
			s.logger.Warn("create worksheet denied",
				"actor_id", actor.ID,
				"owner_id", owner.ID)
			return nil, internal.ErrUnauthorizedAccess
		}
		ownerID := owner.ID
		w.UserID = &ownerID
		w.TeamID = owner.TeamID
		w.SupervisorID = dto.SupervisorID
	}

	tasks := dto.Tasks
	if dto.TemplateID != nil {
		tpl, err := s.repo.GetByID(*dto.TemplateID)
		if err != nil || !tpl.IsTemplate {
			s.logger.Error("template not found", "error", err, "template_id", *dto.TemplateID)
			return nil, internal.ErrWorksheetNotFound
		}
		tasks = make([]CreateTaskDTO, len(tpl.Tasks))
		for i := range tpl.Tasks {
			order := tpl.Tasks[i].Order
			tasks[i] = CreateTaskDTO{
				Name:        tpl.Tasks[i].Name,
				Description: tpl.Tasks[i].Description,
				Category:    tpl.Tasks[i].Category,
				Order:       &order,
			}
		}
	}

	w.Tasks = make([]Task, len(tasks))
	for i, t := range tasks {
		category := t.Category
		if category == "" {
			category = CategoryGeneral
		}
		order := i
		if t.Order != nil {
			order = *t.Order
		}
		w.Tasks[i] = Task{
			ID:          uuid.New(),
			WorksheetID: w.ID,
			Name:        t.Name,
			Description: t.Description,
			Status:      StatusToDo,
			Category:    category,
			Order:       order,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
	}

	if err := s.repo.Create(w); err != nil {
		s.logger.Error("failed to create worksheet", "error", err, "actor_id", actor.ID)
		return nil, err
	}

	s.logger.Info("worksheet created",
		"worksheet_id", w.ID,
		"actor_id", actor.ID,
		"is_template", w.IsTemplate,
		"task_count", len(w.Tasks))
	return w, nil
}

// GetWorksheet returns a single worksheet for the actor. Deleted sheets the
// actor could otherwise see come back masked, so sync clients learn about
// the deletion without the record's content.
func (s *Service) GetWorksheet(actor *user.User, id uuid.UUID) (*Worksheet, error) {
	w, err := s.viewableWorksheet(actor, id)
	if err != nil {
		return nil, err
	}
	if w.IsDeleted {
		return w.Masked(), nil
	}
	return w, nil
}

func (s *Service) ListWorksheets(actor *user.User, opts ListOptions) ([]*Worksheet, error) {
	f := s.policy.VisibilityFor(actor, opts)
	if f.MatchesNothing() {
		return []*Worksheet{}, nil
	}

	sheets, err := s.repo.List(f)
	if err != nil {
		s.logger.Error("failed to list worksheets", "error", err, "actor_id", actor.ID)
		return nil, err
	}

	// Sync responses carry tombstones for deleted sheets instead of
	// omitting them.
	if f.IncludeDeleted {
		for i, w := range sheets {
			if w.IsDeleted {
				sheets[i] = w.Masked()
			}
		}
	}
	return sheets, nil
}

func (s *Service) UpdateWorksheet(actor *user.User, id uuid.UUID, dto UpdateWorksheetDTO) (*Worksheet, error) {
	if err := dto.Validate(); err != nil {
		return nil, internal.NewValidationError(err.Error(), internal.ErrCodeValidationFailed)
	}

	w, err := s.visibleWorksheet(actor, id)
	if err != nil {
		return nil, err
	}
	if !s.policy.CanManage(actor, w) {
		s.logger.Warn("update worksheet denied", "actor_id", actor.ID, "worksheet_id", id)
		return nil, internal.ErrUnauthorizedAccess
	}

	if dto.Name != nil {
		w.Name = *dto.Name
	}
	if dto.Description != nil {
		w.Description = *dto.Description
	}
	if dto.SupervisorID != nil {
		w.SupervisorID = dto.SupervisorID
	}
	if dto.IsArchived != nil {
		w.IsArchived = *dto.IsArchived
	}
	w.UpdatedAt = time.Now()

	if err := s.repo.Update(w); err != nil {
		s.logger.Error("failed to update worksheet", "error", err, "worksheet_id", id)
		return nil, err
	}

	s.logger.Info("worksheet updated", "worksheet_id", id, "actor_id", actor.ID)
	return w, nil
}

// DeleteWorksheet soft deletes: the row survives as a tombstone so sync
// clients learn about the removal.
func (s *Service) DeleteWorksheet(actor *user.User, id uuid.UUID) error {
	w, err := s.visibleWorksheet(actor, id)
	if err != nil {
		return err
	}
	if !s.policy.CanManage(actor, w) {
		s.logger.Warn("delete worksheet denied", "actor_id", actor.ID, "worksheet_id", id)
		return internal.ErrUnauthorizedAccess
	}

	if err := s.repo.SoftDelete(id); err != nil {
		s.logger.Error("failed to delete worksheet", "error", err, "worksheet_id", id)
		return err
	}

	s.logger.Info("worksheet deleted", "worksheet_id", id, "actor_id", actor.ID)
	return nil
}

// SubmitTask routes a task to an approver. Submitting an already approved
// task is a no-op reported through the second return value.
func (s *Service) SubmitTask(actor *user.User, worksheetID, taskID uuid.UUID, dto SubmitTaskDTO) (*Worksheet, bool, error) {
	w, err := s.visibleWorksheet(actor, worksheetID)
	if err != nil {
		return nil, false, err
	}
	if !s.policy.CanSubmit(actor, w) {
		s.logger.Warn("submit task denied", "actor_id", actor.ID, "worksheet_id", worksheetID)
		return nil, false, internal.ErrUnauthorizedAccess
	}

	task := w.TaskByID(taskID)
	if task == nil {
		return nil, false, internal.ErrTaskNotFound
	}
	if task.Status == StatusApproved {
		s.logger.Info("submit skipped, task already approved",
			"worksheet_id", worksheetID,
			"task_id", taskID)
		return w, true, nil
	}

	if dto.ApproverID == nil {
		return nil, false, internal.ErrApproverRequired
	}
	approver, err := s.users.GetByID(*dto.ApproverID)
	if err != nil {
		s.logger.Error("approver not found", "error", err, "approver_id", *dto.ApproverID)
		return nil, false, internal.ErrApproverNotEligible
	}
	if !s.policy.IsEligibleApprover(actor, approver) {
		s.logger.Warn("ineligible approver chosen",
			"actor_id", actor.ID,
			"approver_id", approver.ID,
			"approver_function", approver.Function)
		return nil, false, internal.ErrApproverNotEligible
	}

	w, task, err = s.repo.MutateTask(worksheetID, taskID, func(t *Task) error {
		if t.Status == StatusApproved {
			return internal.ErrTaskNotAwaiting
		}
		return t.Submit(approver.ID)
	})
	if err != nil {
		s.logger.Error("failed to submit task", "error", err, "task_id", taskID)
		return nil, false, err
	}

	s.publish(events.NewTaskSubmittedEvent(w.ID, w.Name, task.ID, task.Name, actor.ID, actor.DisplayName(), approver.ID))
	s.logger.Info("task submitted",
		"worksheet_id", w.ID,
		"task_id", task.ID,
		"approver_id", approver.ID)
	return w, false, nil
}

func (s *Service) UnsubmitTask(actor *user.User, worksheetID, taskID uuid.UUID) (*Worksheet, error) {
	w, err := s.visibleWorksheet(actor, worksheetID)
	if err != nil {
		return nil, err
	}
	if !s.policy.CanSubmit(actor, w) {
		s.logger.Warn("unsubmit task denied", "actor_id", actor.ID, "worksheet_id", worksheetID)
		return nil, internal.ErrUnauthorizedAccess
	}
	if w.TaskByID(taskID) == nil {
		return nil, internal.ErrTaskNotFound
	}

	w, _, err = s.repo.MutateTask(worksheetID, taskID, func(t *Task) error {
		return t.Unsubmit()
	})
	if err != nil {
		s.logger.Error("failed to unsubmit task", "error", err, "task_id", taskID)
		return nil, err
	}

	s.logger.Info("task unsubmitted", "worksheet_id", worksheetID, "task_id", taskID)
	return w, nil
}

func (s *Service) AcceptTask(actor *user.User, worksheetID, taskID uuid.UUID) (*Worksheet, error) {
	w, err := s.repo.GetByID(worksheetID)
	if err != nil || w.IsDeleted {
		return nil, internal.ErrWorksheetNotFound
	}
	task := w.TaskByID(taskID)
	if task == nil {
		return nil, internal.ErrTaskNotFound
	}
	if !s.policy.CanModerate(actor, task) {
		s.logger.Warn("accept task denied", "actor_id", actor.ID, "task_id", taskID)
		return nil, internal.ErrUnauthorizedAccess
	}

	w, task, err = s.repo.MutateTask(worksheetID, taskID, func(t *Task) error {
		// Re-check against the task row the mutation sees: the routed
		// approver may have changed since the read above.
		if !s.policy.CanModerate(actor, t) {
			return internal.ErrUnauthorizedAccess
		}
		return t.Accept(actor.ID)
	})
	if err != nil {
		s.logger.Error("failed to accept task", "error", err, "task_id", taskID)
		return nil, err
	}

	if w.UserID != nil {
		s.publish(events.NewTaskApprovedEvent(w.ID, w.Name, task.ID, task.Name, actor.ID, actor.DisplayName(), *w.UserID))
	}
	s.logger.Info("task accepted", "worksheet_id", w.ID, "task_id", task.ID, "approver_id", actor.ID)
	return w, nil
}

func (s *Service) RejectTask(actor *user.User, worksheetID, taskID uuid.UUID) (*Worksheet, error) {
	w, err := s.repo.GetByID(worksheetID)
	if err != nil || w.IsDeleted {
		return nil, internal.ErrWorksheetNotFound
	}
	task := w.TaskByID(taskID)
	if task == nil {
		return nil, internal.ErrTaskNotFound
	}
	if !s.policy.CanModerate(actor, task) {
		s.logger.Warn("reject task denied", "actor_id", actor.ID, "task_id", taskID)
		return nil, internal.ErrUnauthorizedAccess
	}

	w, task, err = s.repo.MutateTask(worksheetID, taskID, func(t *Task) error {
		if !s.policy.CanModerate(actor, t) {
			return internal.ErrUnauthorizedAccess
		}
		return t.Reject()
	})
	if err != nil {
		s.logger.Error("failed to reject task", "error", err, "task_id", taskID)
		return nil, err
	}

	if w.UserID != nil {
		s.publish(events.NewTaskRejectedEvent(w.ID, w.Name, task.ID, task.Name, actor.ID, actor.DisplayName(), *w.UserID))
	}
	s.logger.Info("task rejected", "worksheet_id", w.ID, "task_id", task.ID, "approver_id", actor.ID)
	return w, nil
}

// ForceAcceptTask approves a task outright, skipping the submission flow.
// Idempotent on already approved tasks.
func (s *Service) ForceAcceptTask(actor *user.User, worksheetID, taskID uuid.UUID) (*Worksheet, error) {
	w, err := s.visibleWorksheet(actor, worksheetID)
	if err != nil {
		return nil, err
	}
	if !s.policy.CanForce(actor, w) {
		s.logger.Warn("force accept denied", "actor_id", actor.ID, "worksheet_id", worksheetID)
		return nil, internal.ErrUnauthorizedAccess
	}
	if w.TaskByID(taskID) == nil {
		return nil, internal.ErrTaskNotFound
	}

	var task *Task
	w, task, err = s.repo.MutateTask(worksheetID, taskID, func(t *Task) error {
		t.ForceAccept(actor.ID)
		return nil
	})
	if err != nil {
		s.logger.Error("failed to force accept task", "error", err, "task_id", taskID)
		return nil, err
	}

	if w.UserID != nil && *w.UserID != actor.ID {
		s.publish(events.NewTaskApprovedEvent(w.ID, w.Name, task.ID, task.Name, actor.ID, actor.DisplayName(), *w.UserID))
	}
	s.logger.Info("task force accepted", "worksheet_id", w.ID, "task_id", task.ID, "actor_id", actor.ID)
	return w, nil
}

// ForceRejectTask returns a task to the to-do state from any status.
func (s *Service) ForceRejectTask(actor *user.User, worksheetID, taskID uuid.UUID) (*Worksheet, error) {
	w, err := s.visibleWorksheet(actor, worksheetID)
	if err != nil {
		return nil, err
	}
	if !s.policy.CanForce(actor, w) {
		s.logger.Warn("force reject denied", "actor_id", actor.ID, "worksheet_id", worksheetID)
		return nil, internal.ErrUnauthorizedAccess
	}
	if w.TaskByID(taskID) == nil {
		return nil, internal.ErrTaskNotFound
	}

	var task *Task
	w, task, err = s.repo.MutateTask(worksheetID, taskID, func(t *Task) error {
		t.ForceReject()
		return nil
	})
	if err != nil {
		s.logger.Error("failed to force reject task", "error", err, "task_id", taskID)
		return nil, err
	}

	if w.UserID != nil && *w.UserID != actor.ID {
		s.publish(events.NewTaskRejectedEvent(w.ID, w.Name, task.ID, task.Name, actor.ID, actor.DisplayName(), *w.UserID))
	}
	s.logger.Info("task force rejected", "worksheet_id", w.ID, "task_id", task.ID, "actor_id", actor.ID)
	return w, nil
}

// ClearTaskStatus resets a task without notifying anyone. Owners use it to
// tidy their own sheets; leadership can apply it anywhere they could force.
func (s *Service) ClearTaskStatus(actor *user.User, worksheetID, taskID uuid.UUID) (*Worksheet, error) {
	w, err := s.visibleWorksheet(actor, worksheetID)
	if err != nil {
		return nil, err
	}
	if !s.policy.CanSubmit(actor, w) && !s.policy.CanForce(actor, w) {
		s.logger.Warn("clear status denied", "actor_id", actor.ID, "worksheet_id", worksheetID)
		return nil, internal.ErrUnauthorizedAccess
	}
	if w.TaskByID(taskID) == nil {
		return nil, internal.ErrTaskNotFound
	}

	w, _, err = s.repo.MutateTask(worksheetID, taskID, func(t *Task) error {
		t.ClearStatus()
		return nil
	})
	if err != nil {
		s.logger.Error("failed to clear task status", "error", err, "task_id", taskID)
		return nil, err
	}

	s.logger.Info("task status cleared", "worksheet_id", worksheetID, "task_id", taskID, "actor_id", actor.ID)
	return w, nil
}

// TasksToApprove lists non-archived sheets holding tasks currently routed to
// the actor.
func (s *Service) TasksToApprove(actor *user.User) ([]*Worksheet, error) {
	sheets, err := s.repo.PendingForApprover(actor.ID)
	if err != nil {
		s.logger.Error("failed to list pending approvals", "error", err, "approver_id", actor.ID)
		return nil, err
	}
	return sheets, nil
}

// ApproverCandidates lists who the worksheet owner may route tasks to.
func (s *Service) ApproverCandidates(actor *user.User, worksheetID uuid.UUID) ([]*user.User, error) {
	w, err := s.visibleWorksheet(actor, worksheetID)
	if err != nil {
		return nil, err
	}
	if w.UserID == nil {
		return []*user.User{}, nil
	}

	owner := actor
	if *w.UserID != actor.ID {
		owner, err = s.users.GetByID(*w.UserID)
		if err != nil {
			s.logger.Error("worksheet owner not found", "error", err, "user_id", *w.UserID)
			return nil, internal.ErrUserNotFound
		}
	}
	if owner.TeamID == nil {
		return []*user.User{}, nil
	}

	members, err := s.users.ListByTeam(*owner.TeamID)
	if err != nil {
		s.logger.Error("failed to list team members", "error", err, "team_id", *owner.TeamID)
		return nil, err
	}
	return s.policy.ApproverCandidates(owner, members), nil
}

// viewableWorksheet loads a worksheet the actor is allowed to see, deleted
// or not. Visibility is checked before the deletion flag so an actor outside
// the sheet's scope cannot tell a deleted sheet from a nonexistent one.
func (s *Service) viewableWorksheet(actor *user.User, id uuid.UUID) (*Worksheet, error) {
	w, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to get worksheet", "error", err, "worksheet_id", id)
		return nil, internal.ErrWorksheetNotFound
	}

	ownerFunction, err := s.repo.OwnerFunction(w)
	if err != nil {
		s.logger.Error("failed to resolve owner function", "error", err, "worksheet_id", id)
		return nil, err
	}
	if !s.policy.CanView(actor, w, ownerFunction) {
		s.logger.Warn("worksheet hidden from actor", "actor_id", actor.ID, "worksheet_id", id)
		return nil, internal.ErrWorksheetNotFound
	}
	return w, nil
}

func (s *Service) visibleWorksheet(actor *user.User, id uuid.UUID) (*Worksheet, error) {
	w, err := s.viewableWorksheet(actor, id)
	if err != nil {
		return nil, err
	}
	if w.IsDeleted {
		return nil, internal.ErrWorksheetNotFound
	}
	return w, nil
}

func (s *Service) publish(event events.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(context.Background(), event); err != nil {
		s.logger.Error("failed to publish event", "error", err, "event_type", event.EventType())
	}
}
