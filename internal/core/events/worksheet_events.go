package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeTaskSubmitted = "task.submitted"
	EventTypeTaskApproved  = "task.approved"
	EventTypeTaskRejected  = "task.rejected"
)

// TaskTransitionEvent is emitted after a task status change commits. ActorID
// is the user who performed the transition, RecipientID the user who should
// be told about it (the approver for submissions, the owner otherwise).
type TaskTransitionEvent struct {
	BaseEvent
	WorksheetID   uuid.UUID `json:"worksheet_id"`
	WorksheetName string    `json:"worksheet_name"`
	TaskID        uuid.UUID `json:"task_id"`
	TaskName      string    `json:"task_name"`
	ActorID       uuid.UUID `json:"actor_id"`
	ActorName     string    `json:"actor_name"`
	RecipientID   uuid.UUID `json:"recipient_id"`
}

func newTaskTransitionEvent(eventType string, worksheetID uuid.UUID, worksheetName string, taskID uuid.UUID, taskName string, actorID uuid.UUID, actorName string, recipientID uuid.UUID) *TaskTransitionEvent {
	return &TaskTransitionEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      eventType,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"worksheet_id":   worksheetID.String(),
				"worksheet_name": worksheetName,
				"task_id":        taskID.String(),
				"task_name":      taskName,
				"actor_id":       actorID.String(),
				"actor_name":     actorName,
				"recipient_id":   recipientID.String(),
			},
		},
		WorksheetID:   worksheetID,
		WorksheetName: worksheetName,
		TaskID:        taskID,
		TaskName:      taskName,
		ActorID:       actorID,
		ActorName:     actorName,
		RecipientID:   recipientID,
	}
}

func NewTaskSubmittedEvent(worksheetID uuid.UUID, worksheetName string, taskID uuid.UUID, taskName string, actorID uuid.UUID, actorName string, approverID uuid.UUID) *TaskTransitionEvent {
	return newTaskTransitionEvent(EventTypeTaskSubmitted, worksheetID, worksheetName, taskID, taskName, actorID, actorName, approverID)
}

func NewTaskApprovedEvent(worksheetID uuid.UUID, worksheetName string, taskID uuid.UUID, taskName string, actorID uuid.UUID, actorName string, ownerID uuid.UUID) *TaskTransitionEvent {
	return newTaskTransitionEvent(EventTypeTaskApproved, worksheetID, worksheetName, taskID, taskName, actorID, actorName, ownerID)
}

func NewTaskRejectedEvent(worksheetID uuid.UUID, worksheetName string, taskID uuid.UUID, taskName string, actorID uuid.UUID, actorName string, ownerID uuid.UUID) *TaskTransitionEvent {
	return newTaskTransitionEvent(EventTypeTaskRejected, worksheetID, worksheetName, taskID, taskName, actorID, actorName, ownerID)
}
