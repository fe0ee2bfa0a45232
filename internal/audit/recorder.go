// Package audit appends one immutable record per mutating operation. The
// write happens after the primary mutation and never affects its outcome:
// failures are logged and swallowed.
package audit

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/hugh/taskdeck/internal/database/models"
	"github.com/hugh/taskdeck/internal/tasks"
	"gorm.io/gorm"
)

// Action tags, one per mutating operation.
const (
	ActionRegisterTenant   = "REGISTER_TENANT"
	ActionRegisterUser     = "REGISTER_USER"
	ActionCreateProject    = "CREATE_PROJECT"
	ActionUpdateProject    = "UPDATE_PROJECT"
	ActionDeleteProject    = "DELETE_PROJECT"
	ActionCreateTask       = "CREATE_TASK"
	ActionUpdateTask       = "UPDATE_TASK"
	ActionUpdateTaskStatus = "UPDATE_TASK_STATUS"
	ActionDeleteTask       = "DELETE_TASK"
	ActionCreateUser       = "CREATE_USER"
	ActionUpdateUser       = "UPDATE_USER"
	ActionDeleteUser       = "DELETE_USER"
	ActionUpdateTenant     = "UPDATE_TENANT"
)

// Entry describes who did what to which entity.
type Entry struct {
	Action     string
	EntityType string
	EntityID   string
	TenantID   *uuid.UUID
	UserID     *uuid.UUID
	IPAddress  string
	Details    interface{} // optional structured payload
}

type Recorder struct {
	db     *gorm.DB
	client *asynq.Client
	logger *slog.Logger
}

// NewRecorder returns a recorder that enqueues entries for the background
// worker when a queue client is given, and falls back to synchronous inserts
// otherwise.
func NewRecorder(db *gorm.DB, client *asynq.Client, logger *slog.Logger) *Recorder {
	return &Recorder{db: db, client: client, logger: logger}
}

// Record appends the entry. Best-effort: the caller's operation has already
// committed, so errors are logged rather than returned.
func (r *Recorder) Record(ctx context.Context, e Entry) {
	details := ""
	if e.Details != nil {
		if data, err := json.Marshal(e.Details); err == nil {
			details = string(data)
		}
	}

	if r.client != nil {
		task, err := tasks.NewAuditRecordTask(tasks.AuditRecordPayload{
			Action:     e.Action,
			EntityType: e.EntityType,
			EntityID:   e.EntityID,
			TenantID:   e.TenantID,
			UserID:     e.UserID,
			IPAddress:  e.IPAddress,
			Details:    details,
		})
		if err == nil {
			if _, err = r.client.EnqueueContext(ctx, task, asynq.Queue("audit")); err == nil {
				return
			}
		}
		r.logger.Warn("failed to enqueue audit record, writing directly",
			"action", e.Action, "error", err)
	}

	log := models.AuditLog{
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Details:    details,
		IPAddress:  e.IPAddress,
		TenantID:   e.TenantID,
		UserID:     e.UserID,
	}
	if err := r.db.WithContext(ctx).Create(&log).Error; err != nil {
		r.logger.Warn("failed to write audit record",
			"action", e.Action, "entity_type", e.EntityType, "error", err)
	}
}
