package worksheet

import (
	"time"

	"github.com/eproba/server/internal"
	worksheetDatamodel "github.com/eproba/server/internal/core/datamodel/worksheet"
	"github.com/google/uuid"
)

// TaskStatus is the task approval state machine. An approver is recorded
// exactly while the task is awaiting approval or approved; every transition
// out of those states clears it.
type TaskStatus int

const (
	StatusToDo             TaskStatus = 0
	StatusAwaitingApproval TaskStatus = 1
	StatusApproved         TaskStatus = 2
	StatusRejected         TaskStatus = 3
)

func (s TaskStatus) String() string {
	switch s {
	case StatusToDo:
		return "todo"
	case StatusAwaitingApproval:
		return "awaiting_approval"
	case StatusApproved:
		return "approved"
	case StatusRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

const (
	CategoryGeneral    = "general"
	CategoryIndividual = "individual"
)

type Task struct {
	ID           uuid.UUID  `json:"id"`
	WorksheetID  uuid.UUID  `json:"worksheet_id"`
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	Status       TaskStatus `json:"status"`
	Category     string     `json:"category"`
	ApproverID   *uuid.UUID `json:"approver,omitempty"`
	ApprovalDate *time.Time `json:"approval_date,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	Order        int        `json:"order"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Submit sends the task to the chosen approver. Resubmitting a task that is
// already awaiting approval re-routes it to the new approver.
func (t *Task) Submit(approverID uuid.UUID) error {
	if t.Status == StatusApproved {
		return internal.ErrTaskNotAwaiting
	}
	now := time.Now()
	t.Status = StatusAwaitingApproval
	t.ApproverID = &approverID
	t.ApprovalDate = &now
	t.UpdatedAt = now
	return nil
}

// Unsubmit withdraws a pending approval request.
func (t *Task) Unsubmit() error {
	if t.Status != StatusAwaitingApproval {
		return internal.ErrTaskNotAwaiting
	}
	t.Status = StatusToDo
	t.ApproverID = nil
	t.ApprovalDate = nil
	t.UpdatedAt = time.Now()
	return nil
}

// Accept approves a pending task. The acting approver is recorded even when
// the task was routed to someone else.
func (t *Task) Accept(approverID uuid.UUID) error {
	if t.Status != StatusAwaitingApproval {
		return internal.ErrTaskNotAwaiting
	}
	now := time.Now()
	t.Status = StatusApproved
	t.ApproverID = &approverID
	t.ApprovalDate = &now
	t.UpdatedAt = now
	return nil
}

// Reject declines a pending task. The task lands in a terminal rejected
// state with no approver so the owner can rework and resubmit it.
func (t *Task) Reject() error {
	if t.Status != StatusAwaitingApproval {
		return internal.ErrTaskNotAwaiting
	}
	t.Status = StatusRejected
	t.ApproverID = nil
	t.ApprovalDate = nil
	t.UpdatedAt = time.Now()
	return nil
}

// ForceAccept approves the task regardless of its current status. Applying
// it to an approved task only refreshes the approver.
func (t *Task) ForceAccept(approverID uuid.UUID) {
	now := time.Now()
	t.Status = StatusApproved
	t.ApproverID = &approverID
	t.ApprovalDate = &now
	t.UpdatedAt = now
}

// ForceReject returns the task to the to-do state regardless of its current
// status, wiping any recorded approval.
func (t *Task) ForceReject() {
	t.Status = StatusToDo
	t.ApproverID = nil
	t.ApprovalDate = nil
	t.UpdatedAt = time.Now()
}

// ClearStatus resets the task to to-do. Same effect as ForceReject but no
// notification is sent.
func (t *Task) ClearStatus() {
	t.ForceReject()
}

type Worksheet struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	UserID       *uuid.UUID `json:"user,omitempty"`
	SupervisorID *uuid.UUID `json:"supervisor,omitempty"`
	IsArchived   bool       `json:"is_archived"`
	IsTemplate   bool       `json:"is_template"`
	IsDeleted    bool       `json:"-"`
	TeamID       *uuid.UUID `json:"team,omitempty"`
	Tasks        []Task     `json:"tasks"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (w *Worksheet) OwnedBy(userID uuid.UUID) bool {
	return w.UserID != nil && *w.UserID == userID
}

func (w *Worksheet) SupervisedBy(userID uuid.UUID) bool {
	return w.SupervisorID != nil && *w.SupervisorID == userID
}

func (w *Worksheet) TaskByID(taskID uuid.UUID) *Task {
	for i := range w.Tasks {
		if w.Tasks[i].ID == taskID {
			return &w.Tasks[i]
		}
	}
	return nil
}

// CompletionPercent is the share of approved tasks, 0 for an empty sheet.
func (w *Worksheet) CompletionPercent() float64 {
	if len(w.Tasks) == 0 {
		return 0
	}
	approved := 0
	for i := range w.Tasks {
		if w.Tasks[i].Status == StatusApproved {
			approved++
		}
	}
	return float64(approved) / float64(len(w.Tasks)) * 100
}

// Masked returns the tombstone shape served for a deleted worksheet: the id
// survives so sync clients can drop their copy, everything else is blanked.
func (w *Worksheet) Masked() *Worksheet {
	return &Worksheet{
		ID:         w.ID,
		Name:       "Deleted",
		IsDeleted:  true,
		IsArchived: false,
		Tasks:      []Task{},
		CreatedAt:  w.CreatedAt,
		UpdatedAt:  w.UpdatedAt,
	}
}

func TaskToDataModel(t *Task) *worksheetDatamodel.Task {
	return &worksheetDatamodel.Task{
		ID:           t.ID,
		WorksheetID:  t.WorksheetID,
		Name:         t.Name,
		Description:  t.Description,
		Status:       int(t.Status),
		Category:     t.Category,
		ApproverID:   t.ApproverID,
		ApprovalDate: t.ApprovalDate,
		Notes:        t.Notes,
		Order:        t.Order,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func TaskFromDataModel(t *worksheetDatamodel.Task) Task {
	return Task{
		ID:           t.ID,
		WorksheetID:  t.WorksheetID,
		Name:         t.Name,
		Description:  t.Description,
		Status:       TaskStatus(t.Status),
		Category:     t.Category,
		ApproverID:   t.ApproverID,
		ApprovalDate: t.ApprovalDate,
		Notes:        t.Notes,
		Order:        t.Order,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func ToDataModel(w *Worksheet) *worksheetDatamodel.Worksheet {
	tasks := make([]worksheetDatamodel.Task, len(w.Tasks))
	for i := range w.Tasks {
		tasks[i] = *TaskToDataModel(&w.Tasks[i])
	}
	return &worksheetDatamodel.Worksheet{
		ID:           w.ID,
		Name:         w.Name,
		Description:  w.Description,
		UserID:       w.UserID,
		SupervisorID: w.SupervisorID,
		IsArchived:   w.IsArchived,
		IsTemplate:   w.IsTemplate,
		IsDeleted:    w.IsDeleted,
		TeamID:       w.TeamID,
		Tasks:        tasks,
		CreatedAt:    w.CreatedAt,
		UpdatedAt:    w.UpdatedAt,
	}
}

func FromDataModel(w *worksheetDatamodel.Worksheet) *Worksheet {
	tasks := make([]Task, len(w.Tasks))
	for i := range w.Tasks {
		tasks[i] = TaskFromDataModel(&w.Tasks[i])
	}
	return &Worksheet{
		ID:           w.ID,
		Name:         w.Name,
		Description:  w.Description,
		UserID:       w.UserID,
		SupervisorID: w.SupervisorID,
		IsArchived:   w.IsArchived,
		IsTemplate:   w.IsTemplate,
		IsDeleted:    w.IsDeleted,
		TeamID:       w.TeamID,
		Tasks:        tasks,
		CreatedAt:    w.CreatedAt,
		UpdatedAt:    w.UpdatedAt,
	}
}

func FromDataModelSlice(sheets []*worksheetDatamodel.Worksheet) []*Worksheet {
	result := make([]*Worksheet, len(sheets))
	for i, w := range sheets {
		result[i] = FromDataModel(w)
	}
	return result
}
