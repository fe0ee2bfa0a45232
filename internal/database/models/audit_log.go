package models

import "github.com/google/uuid"

// AuditLog is append-only: rows are never updated or deleted by the
// application.
type AuditLog struct {
	Base
	Action     string     `gorm:"not null" json:"action"`
	EntityType string     `gorm:"not null" json:"entityType"`
	EntityID   string     `json:"entityId"`
	Details    string     `json:"details,omitempty"`
	IPAddress  string     `json:"ipAddress,omitempty"`
	TenantID   *uuid.UUID `gorm:"type:uuid;index" json:"tenantId"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"userId"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
