package tasks

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Task type names
const (
	TypeAuditRecord = "audit:record"
)

// AuditRecordPayload carries one audit entry to the worker.
type AuditRecordPayload struct {
	Action     string     `json:"action"`
	EntityType string     `json:"entity_type"`
	EntityID   string     `json:"entity_id"`
	TenantID   *uuid.UUID `json:"tenant_id,omitempty"`
	UserID     *uuid.UUID `json:"user_id,omitempty"`
	IPAddress  string     `json:"ip_address,omitempty"`
	Details    string     `json:"details,omitempty"`
}

func NewAuditRecordTask(payload AuditRecordPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeAuditRecord, data), nil
}
