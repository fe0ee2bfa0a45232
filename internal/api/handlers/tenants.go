package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hugh/taskdeck/internal/api/dto"
	"github.com/hugh/taskdeck/internal/api/middleware"
	"github.com/hugh/taskdeck/internal/audit"
	"github.com/hugh/taskdeck/internal/authz"
	"github.com/hugh/taskdeck/internal/database/models"
	"gorm.io/gorm"
)

type TenantHandler struct {
	db      *gorm.DB
	auditor *audit.Recorder
}

func NewTenantHandler(db *gorm.DB, auditor *audit.Recorder) *TenantHandler {
	return &TenantHandler{db: db, auditor: auditor}
}

type TenantStats struct {
	TotalUsers     int64 `json:"totalUsers"`
	TotalProjects  int64 `json:"totalProjects"`
	TotalTasks     int64 `json:"totalTasks"`
	CompletedTasks int64 `json:"completedTasks"`
}

type TenantDetail struct {
	dto.TenantDTO
	Stats TenantStats `json:"stats"`
}

type TenantListData struct {
	Tenants    []dto.TenantDTO `json:"tenants"`
	Total      int64           `json:"total"`
	Pagination dto.Pagination  `json:"pagination"`
}

type UpdateTenantRequest struct {
	Name             *string `json:"name"`
	Status           *string `json:"status"`
	SubscriptionPlan *string `json:"subscriptionPlan"`
	MaxUsers         *int    `json:"maxUsers"`
	MaxProjects      *int    `json:"maxProjects"`
}

// List handles GET /api/tenants, super_admin only. Filterable by status and
// subscription plan.
func (h *TenantHandler) List(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetUserRole(r.Context())
	if authz.ScopeFor(role, authz.OpTenantList) != authz.ScopeAny {
		writeError(w, http.StatusForbidden, "Unauthorized")
		return
	}

	pagination := parsePagination(r, 10)

	query := h.db.Model(&models.Tenant{})
	if status := r.URL.Query().Get("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if plan := r.URL.Query().Get("subscriptionPlan"); plan != "" {
		query = query.Where("subscription_plan = ?", plan)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count tenants")
		return
	}

	var tenants []models.Tenant
	if err := query.
		Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit).
		Find(&tenants).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list tenants")
		return
	}

	response := make([]dto.TenantDTO, len(tenants))
	for i := range tenants {
		response[i] = tenantToDTO(&tenants[i])
	}

	writeJSON(w, http.StatusOK, dto.OK(TenantListData{
		Tenants:    response,
		Total:      total,
		Pagination: pagination.Paginate(total),
	}))
}

// Get handles GET /api/tenants/{id} with usage stats. super_admin may view
// any tenant, tenant_admin only its own.
func (h *TenantHandler) Get(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetUserRole(r.Context())

	tenantID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid tenant ID")
		return
	}

	switch authz.ScopeFor(role, authz.OpTenantView) {
	case authz.ScopeAny:
	case authz.ScopeOwn:
		own := middleware.GetTenantID(r.Context())
		if own == nil || *own != tenantID {
			writeError(w, http.StatusForbidden, "Unauthorized")
			return
		}
	default:
		writeError(w, http.StatusForbidden, "Unauthorized")
		return
	}

	var tenant models.Tenant
	if err := h.db.First(&tenant, "id = ?", tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "Tenant not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get tenant")
		return
	}

	var stats TenantStats
	h.db.Model(&models.User{}).Where("tenant_id = ?", tenantID).Count(&stats.TotalUsers)
	h.db.Model(&models.Project{}).Where("tenant_id = ?", tenantID).Count(&stats.TotalProjects)
	h.db.Model(&models.Task{}).Where("tenant_id = ?", tenantID).Count(&stats.TotalTasks)
	h.db.Model(&models.Task{}).
		Where("tenant_id = ? AND status = ?", tenantID, models.TaskStatusCompleted).
		Count(&stats.CompletedTasks)

	writeJSON(w, http.StatusOK, dto.OK(TenantDetail{
		TenantDTO: tenantToDTO(&tenant),
		Stats:     stats,
	}))
}

// Update handles PUT /api/tenants/{id}. tenant_admin may rename its own
// tenant; plan, limits and status belong to super_admin.
func (h *TenantHandler) Update(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetUserRole(r.Context())
	actorID := middleware.GetUserID(r.Context())

	tenantID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid tenant ID")
		return
	}

	switch authz.ScopeFor(role, authz.OpTenantUpdateName) {
	case authz.ScopeAny:
	case authz.ScopeOwn:
		own := middleware.GetTenantID(r.Context())
		if own == nil || *own != tenantID {
			writeError(w, http.StatusForbidden, "Unauthorized")
			return
		}
	default:
		writeError(w, http.StatusForbidden, "Unauthorized")
		return
	}

	var req UpdateTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Status != nil {
		switch models.TenantStatus(*req.Status) {
		case models.TenantStatusActive, models.TenantStatusSuspended:
		default:
			writeError(w, http.StatusBadRequest, "Invalid status")
			return
		}
	}
	if req.SubscriptionPlan != nil {
		switch models.SubscriptionPlan(*req.SubscriptionPlan) {
		case models.PlanFree, models.PlanPro, models.PlanEnterprise:
		default:
			writeError(w, http.StatusBadRequest, "Invalid subscription plan")
			return
		}
	}

	var tenant models.Tenant
	if err := h.db.First(&tenant, "id = ?", tenantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "Tenant not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get tenant")
		return
	}

	if req.Name != nil && *req.Name != "" {
		tenant.Name = *req.Name
	}
	if authz.ScopeFor(role, authz.OpTenantUpdatePlan) == authz.ScopeAny {
		if req.Status != nil {
			tenant.Status = models.TenantStatus(*req.Status)
		}
		if req.SubscriptionPlan != nil {
			tenant.SubscriptionPlan = models.SubscriptionPlan(*req.SubscriptionPlan)
		}
		if req.MaxUsers != nil {
			tenant.MaxUsers = *req.MaxUsers
		}
		if req.MaxProjects != nil {
			tenant.MaxProjects = *req.MaxProjects
		}
	}

	if err := h.db.Save(&tenant).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update tenant")
		return
	}

	h.auditor.Record(r.Context(), audit.Entry{
		Action:     audit.ActionUpdateTenant,
		EntityType: "Tenant",
		EntityID:   tenant.ID.String(),
		TenantID:   &tenant.ID,
		UserID:     &actorID,
		IPAddress:  middleware.ClientIP(r),
		Details:    req,
	})

	writeJSON(w, http.StatusOK, dto.OK(tenantToDTO(&tenant)))
}
