package worksheet

import (
	"time"

	"github.com/google/uuid"
)

type Worksheet struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name         string     `gorm:"column:name;not null"`
	Description  string     `gorm:"column:description"`
	UserID       *uuid.UUID `gorm:"column:user_id;type:uuid"`
	SupervisorID *uuid.UUID `gorm:"column:supervisor_id;type:uuid"`
	IsArchived   bool       `gorm:"column:is_archived;default:false"`
	IsTemplate   bool       `gorm:"column:is_template;default:false"`
	IsDeleted    bool       `gorm:"column:is_deleted;default:false"`
	TeamID       *uuid.UUID `gorm:"column:team_id;type:uuid"`
	Tasks        []Task     `gorm:"foreignKey:WorksheetID"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at"`
}

func (Worksheet) TableName() string {
	return "worksheets"
}

type Task struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	WorksheetID  uuid.UUID  `gorm:"column:worksheet_id;type:uuid;not null"`
	Name         string     `gorm:"column:name;not null"`
	Description  string     `gorm:"column:description"`
	Status       int        `gorm:"column:status;not null;default:0"`
	Category     string     `gorm:"column:category;not null;default:'general'"`
	ApproverID   *uuid.UUID `gorm:"column:approver_id;type:uuid"`
	ApprovalDate *time.Time `gorm:"column:approval_date"`
	Notes        string     `gorm:"column:notes"`
	Order        int        `gorm:"column:task_order;not null;default:0"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at"`
}

func (Task) TableName() string {
	return "tasks"
}
