package worksheet

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	maxNameLength        = 200
	maxDescriptionLength = 2000
)

// Order is a pointer so an explicit zero survives decoding; omitted orders
// fall back to the task's position in the request.
type CreateTaskDTO struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
	Order       *int   `json:"order,omitempty"`
}

func (dto CreateTaskDTO) Validate() error {
	if dto.Name == "" {
		return errors.New("task name is required")
	}
	if len(dto.Name) > maxNameLength {
		return fmt.Errorf("task name must be at most %d characters", maxNameLength)
	}
	if len(dto.Description) > maxDescriptionLength {
		return fmt.Errorf("task description must be at most %d characters", maxDescriptionLength)
	}
	switch dto.Category {
	case "", CategoryGeneral, CategoryIndividual:
	default:
		return fmt.Errorf("task category must be %q or %q", CategoryGeneral, CategoryIndividual)
	}
	return nil
}

type CreateWorksheetDTO struct {
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	ForUserID    *uuid.UUID      `json:"user,omitempty"`
	SupervisorID *uuid.UUID      `json:"supervisor,omitempty"`
	IsTemplate   bool            `json:"is_template,omitempty"`
	TemplateID   *uuid.UUID      `json:"template,omitempty"`
	Tasks        []CreateTaskDTO `json:"tasks"`
}

func (dto CreateWorksheetDTO) Validate() error {
	if dto.Name == "" {
		return errors.New("name is required")
	}
	if len(dto.Name) > maxNameLength {
		return fmt.Errorf("name must be at most %d characters", maxNameLength)
	}
	if len(dto.Description) > maxDescriptionLength {
		return fmt.Errorf("description must be at most %d characters", maxDescriptionLength)
	}
	if dto.IsTemplate && dto.ForUserID != nil {
		return errors.New("a template cannot be assigned to a user")
	}
	for i, t := range dto.Tasks {
		if err := t.Validate(); err != nil {
			return fmt.Errorf("task %d: %w", i+1, err)
		}
	}
	return nil
}

type UpdateWorksheetDTO struct {
	Name         *string    `json:"name,omitempty"`
	Description  *string    `json:"description,omitempty"`
	SupervisorID *uuid.UUID `json:"supervisor,omitempty"`
	IsArchived   *bool      `json:"is_archived,omitempty"`
}

func (dto UpdateWorksheetDTO) Validate() error {
	if dto.Name != nil {
		if *dto.Name == "" {
			return errors.New("name cannot be empty")
		}
		if len(*dto.Name) > maxNameLength {
			return fmt.Errorf("name must be at most %d characters", maxNameLength)
		}
	}
	if dto.Description != nil && len(*dto.Description) > maxDescriptionLength {
		return fmt.Errorf("description must be at most %d characters", maxDescriptionLength)
	}
	return nil
}

// SubmitTaskDTO names the approver a task is routed to.
type SubmitTaskDTO struct {
	ApproverID *uuid.UUID `json:"approver"`
}

type TaskResponse struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	Status       int        `json:"status"`
	StatusName   string     `json:"status_name"`
	Category     string     `json:"category"`
	ApproverID   *uuid.UUID `json:"approver,omitempty"`
	ApprovalDate *time.Time `json:"approval_date,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	Order        int        `json:"order"`
}

type WorksheetResponse struct {
	ID                uuid.UUID      `json:"id"`
	Name              string         `json:"name"`
	Description       string         `json:"description,omitempty"`
	UserID            *uuid.UUID     `json:"user,omitempty"`
	SupervisorID      *uuid.UUID     `json:"supervisor,omitempty"`
	IsArchived        bool           `json:"is_archived"`
	IsTemplate        bool           `json:"is_template"`
	IsDeleted         bool           `json:"is_deleted"`
	TeamID            *uuid.UUID     `json:"team,omitempty"`
	Tasks             []TaskResponse `json:"tasks"`
	CompletionPercent float64        `json:"completion_percent"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

func ToTaskResponse(t *Task) TaskResponse {
	return TaskResponse{
		ID:           t.ID,
		Name:         t.Name,
		Description:  t.Description,
		Status:       int(t.Status),
		StatusName:   t.Status.String(),
		Category:     t.Category,
		ApproverID:   t.ApproverID,
		ApprovalDate: t.ApprovalDate,
		Notes:        t.Notes,
		Order:        t.Order,
	}
}

func ToResponse(w *Worksheet) WorksheetResponse {
	tasks := make([]TaskResponse, len(w.Tasks))
	for i := range w.Tasks {
		tasks[i] = ToTaskResponse(&w.Tasks[i])
	}
	return WorksheetResponse{
		ID:                w.ID,
		Name:              w.Name,
		Description:       w.Description,
		UserID:            w.UserID,
		SupervisorID:      w.SupervisorID,
		IsArchived:        w.IsArchived,
		IsTemplate:        w.IsTemplate,
		IsDeleted:         w.IsDeleted,
		TeamID:            w.TeamID,
		Tasks:             tasks,
		CompletionPercent: w.CompletionPercent(),
		CreatedAt:         w.CreatedAt,
		UpdatedAt:         w.UpdatedAt,
	}
}

func ToResponseSlice(sheets []*Worksheet) []WorksheetResponse {
	result := make([]WorksheetResponse, len(sheets))
	for i, w := range sheets {
		result[i] = ToResponse(w)
	}
	return result
}
