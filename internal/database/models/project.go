package models

import (
	"time"

	"github.com/google/uuid"
)

type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusArchived  ProjectStatus = "archived"
	ProjectStatusCompleted ProjectStatus = "completed"
)

type Project struct {
	Base
	Name        string        `gorm:"not null" json:"name"`
	Description string        `json:"description"`
	Status      ProjectStatus `gorm:"default:'active'" json:"status"`
	TenantID    uuid.UUID     `gorm:"type:uuid;not null;index" json:"tenantId"`
	CreatedByID uuid.UUID     `gorm:"type:uuid;not null" json:"createdById"`
	StartDate   *time.Time    `json:"startDate"`
	EndDate     *time.Time    `json:"endDate"`
	Budget      *float64      `json:"budget"`

	// Relationships
	Creator *User  `gorm:"foreignKey:CreatedByID" json:"creator,omitempty"`
	Tasks   []Task `gorm:"foreignKey:ProjectID" json:"-"`
}

func (Project) TableName() string {
	return "projects"
}
