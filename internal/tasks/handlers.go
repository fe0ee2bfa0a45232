package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/hugh/taskdeck/internal/database/models"
	"gorm.io/gorm"
)

type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

func (h *Handler) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeAuditRecord, h.HandleAuditRecord)
}

// HandleAuditRecord inserts one audit log row. Audit logs are append-only;
// the worker never updates or deletes them.
func (h *Handler) HandleAuditRecord(ctx context.Context, t *asynq.Task) error {
	var payload AuditRecordPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	log := models.AuditLog{
		Action:     payload.Action,
		EntityType: payload.EntityType,
		EntityID:   payload.EntityID,
		Details:    payload.Details,
		IPAddress:  payload.IPAddress,
		TenantID:   payload.TenantID,
		UserID:     payload.UserID,
	}

	if err := h.db.WithContext(ctx).Create(&log).Error; err != nil {
		return fmt.Errorf("writing audit record: %w", err)
	}

	h.logger.Debug("audit record written",
		"action", payload.Action,
		"entity_type", payload.EntityType,
		"entity_id", payload.EntityID,
	)

	return nil
}
