// Package quota enforces per-tenant resource ceilings before a new user or
// project row is inserted. The check-then-act is a best-effort pre-check,
// not a serializable transaction: concurrent creations at the boundary can
// transiently push a tenant slightly over its limit.
package quota

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hugh/taskdeck/internal/database/models"
	"gorm.io/gorm"
)

// LimitError is returned when a tenant has reached a configured ceiling.
// The message names the configured maximum.
type LimitError struct {
	Resource string
	Max      int
}

func (e *LimitError) Error() string {
	if e.Resource == "users" {
		return fmt.Sprintf("Subscription limit reached (max %d users)", e.Max)
	}
	return fmt.Sprintf("Project limit reached for plan (%d max)", e.Max)
}

type Checker struct {
	db *gorm.DB
}

func NewChecker(db *gorm.DB) *Checker {
	return &Checker{db: db}
}

// CheckUsers returns a LimitError when the tenant already holds maxUsers
// user rows.
func (c *Checker) CheckUsers(ctx context.Context, tenantID uuid.UUID) error {
	tenant, count, err := c.load(ctx, &models.User{}, tenantID)
	if err != nil {
		return err
	}
	if count >= int64(tenant.MaxUsers) {
		return &LimitError{Resource: "users", Max: tenant.MaxUsers}
	}
	return nil
}

// CheckProjects returns a LimitError when the tenant already holds
// maxProjects project rows.
func (c *Checker) CheckProjects(ctx context.Context, tenantID uuid.UUID) error {
	tenant, count, err := c.load(ctx, &models.Project{}, tenantID)
	if err != nil {
		return err
	}
	if count >= int64(tenant.MaxProjects) {
		return &LimitError{Resource: "projects", Max: tenant.MaxProjects}
	}
	return nil
}

func (c *Checker) load(ctx context.Context, model interface{}, tenantID uuid.UUID) (*models.Tenant, int64, error) {
	var tenant models.Tenant
	if err := c.db.WithContext(ctx).First(&tenant, "id = ?", tenantID).Error; err != nil {
		return nil, 0, fmt.Errorf("loading tenant: %w", err)
	}

	var count int64
	if err := c.db.WithContext(ctx).Model(model).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error; err != nil {
		return nil, 0, fmt.Errorf("counting rows: %w", err)
	}

	return &tenant, count, nil
}
