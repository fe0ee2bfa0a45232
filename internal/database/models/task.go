package models

import (
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

// Task carries its own tenant id, which must match the owning project's.
// AssignedTo, when set, must resolve to a user within the same tenant.
type Task struct {
	Base
	Title       string       `gorm:"not null" json:"title"`
	Description string       `json:"description"`
	Status      TaskStatus   `gorm:"default:'todo'" json:"status"`
	Priority    TaskPriority `gorm:"default:'medium'" json:"priority"`
	ProjectID   uuid.UUID    `gorm:"type:uuid;not null;index" json:"projectId"`
	TenantID    uuid.UUID    `gorm:"type:uuid;not null;index" json:"tenantId"`
	AssignedTo  *uuid.UUID   `gorm:"type:uuid;index" json:"assignedTo"`
	DueDate     *time.Time   `json:"dueDate"`

	// Relationships
	Assignee *User `gorm:"foreignKey:AssignedTo" json:"assignee,omitempty"`
}

func (Task) TableName() string {
	return "tasks"
}
