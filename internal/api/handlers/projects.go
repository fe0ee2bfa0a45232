package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hugh/taskdeck/internal/api/dto"
	"github.com/hugh/taskdeck/internal/api/middleware"
	"github.com/hugh/taskdeck/internal/audit"
	"github.com/hugh/taskdeck/internal/database/models"
	"github.com/hugh/taskdeck/internal/quota"
	"gorm.io/gorm"
)

type ProjectHandler struct {
	db      *gorm.DB
	quota   *quota.Checker
	auditor *audit.Recorder
}

func NewProjectHandler(db *gorm.DB, quota *quota.Checker, auditor *audit.Recorder) *ProjectHandler {
	return &ProjectHandler{db: db, quota: quota, auditor: auditor}
}

type CreateProjectRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	StartDate   *string  `json:"startDate,omitempty"`
	EndDate     *string  `json:"endDate,omitempty"`
	Budget      *float64 `json:"budget,omitempty"`
}

func (r CreateProjectRequest) Validate() map[string]string {
	errs := make(map[string]string)
	if r.Name == "" {
		errs["name"] = "Name is required"
	}
	for field, v := range map[string]*string{"startDate": r.StartDate, "endDate": r.EndDate} {
		if v != nil && *v != "" {
			if _, err := time.Parse(dateOnly, *v); err != nil {
				errs[field] = "Invalid date, expected YYYY-MM-DD"
			}
		}
	}
	return errs
}

type UpdateProjectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

func (r UpdateProjectRequest) Validate() map[string]string {
	errs := make(map[string]string)
	if r.Name != nil && *r.Name == "" {
		errs["name"] = "Name cannot be empty"
	}
	if r.Status != nil {
		switch models.ProjectStatus(*r.Status) {
		case models.ProjectStatusActive, models.ProjectStatusArchived, models.ProjectStatusCompleted:
		default:
			errs["status"] = "Invalid status"
		}
	}
	return errs
}

type ProjectCreator struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
}

type ProjectResponse struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	Status             string          `json:"status"`
	TenantID           string          `json:"tenantId"`
	CreatedByID        string          `json:"createdById"`
	StartDate          *string         `json:"startDate,omitempty"`
	EndDate            *string         `json:"endDate,omitempty"`
	Budget             *float64        `json:"budget,omitempty"`
	Creator            *ProjectCreator `json:"creator,omitempty"`
	TaskCount          *int            `json:"taskCount,omitempty"`
	CompletedTaskCount *int            `json:"completedTaskCount,omitempty"`
	CreatedAt          string          `json:"createdAt"`
	UpdatedAt          string          `json:"updatedAt"`
}

type ProjectListData struct {
	Projects   []ProjectResponse `json:"projects"`
	Total      int64             `json:"total"`
	Pagination dto.Pagination    `json:"pagination"`
}

func projectToResponse(p *models.Project) ProjectResponse {
	resp := ProjectResponse{
		ID:          p.ID.String(),
		Name:        p.Name,
		Description: p.Description,
		Status:      string(p.Status),
		TenantID:    p.TenantID.String(),
		CreatedByID: p.CreatedByID.String(),
		StartDate:   formatDate(p.StartDate),
		EndDate:     formatDate(p.EndDate),
		Budget:      p.Budget,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.Format(time.RFC3339),
	}
	if p.Creator != nil {
		resp.Creator = &ProjectCreator{
			ID:       p.Creator.ID.String(),
			FullName: p.Creator.FullName,
		}
	}
	return resp
}

// List handles GET /api/projects
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())
	pagination := parsePagination(r, 20)

	status := r.URL.Query().Get("status")
	search := r.URL.Query().Get("search")

	query := h.db.Model(&models.Project{}).Where("tenant_id = ?", tenantID)
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if search != "" {
		query = query.Where("LOWER(name) LIKE ?", "%"+lowered(search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count projects")
		return
	}

	var projects []models.Project
	if err := query.
		Preload("Creator").
		Preload("Tasks").
		Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit).
		Find(&projects).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list projects")
		return
	}

	response := make([]ProjectResponse, len(projects))
	for i := range projects {
		resp := projectToResponse(&projects[i])
		taskCount := len(projects[i].Tasks)
		completed := 0
		for _, t := range projects[i].Tasks {
			if t.Status == models.TaskStatusCompleted {
				completed++
			}
		}
		resp.TaskCount = &taskCount
		resp.CompletedTaskCount = &completed
		response[i] = resp
	}

	writeJSON(w, http.StatusOK, dto.OK(ProjectListData{
		Projects:   response,
		Total:      total,
		Pagination: pagination.Paginate(total),
	}))
}

// Create handles POST /api/projects
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())
	userID := middleware.GetUserID(r.Context())

	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ValidationError(errs))
		return
	}

	// Best-effort pre-check against the plan ceiling; concurrent creates at
	// the boundary may transiently exceed it.
	if err := h.quota.CheckProjects(r.Context(), *tenantID); err != nil {
		var limitErr *quota.LimitError
		if errors.As(err, &limitErr) {
			writeError(w, http.StatusForbidden, limitErr.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to check project limit")
		return
	}

	project := models.Project{
		Name:        req.Name,
		Description: req.Description,
		Status:      models.ProjectStatusActive,
		TenantID:    *tenantID,
		CreatedByID: userID,
		Budget:      req.Budget,
	}
	if req.StartDate != nil && *req.StartDate != "" {
		t, _ := time.Parse(dateOnly, *req.StartDate)
		project.StartDate = &t
	}
	if req.EndDate != nil && *req.EndDate != "" {
		t, _ := time.Parse(dateOnly, *req.EndDate)
		project.EndDate = &t
	}

	if err := h.db.Create(&project).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create project")
		return
	}

	h.auditor.Record(r.Context(), audit.Entry{
		Action:     audit.ActionCreateProject,
		EntityType: "Project",
		EntityID:   project.ID.String(),
		TenantID:   tenantID,
		UserID:     &userID,
		IPAddress:  middleware.ClientIP(r),
	})

	writeJSON(w, http.StatusCreated, dto.OK(projectToResponse(&project)))
}

// Get handles GET /api/projects/{id}
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())

	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	var project models.Project
	if err := h.db.Preload("Creator").
		Where("id = ? AND tenant_id = ?", projectID, tenantID).
		First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Cross-tenant lookups fall through to the same 404 so project
			// existence never leaks across tenants.
			writeError(w, http.StatusNotFound, "Project not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get project")
		return
	}

	writeJSON(w, http.StatusOK, dto.OK(projectToResponse(&project)))
}

// Update handles PUT /api/projects/{id}. Omitted fields keep their values.
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())
	userID := middleware.GetUserID(r.Context())

	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	var req UpdateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ValidationError(errs))
		return
	}

	var project models.Project
	if err := h.db.Where("id = ? AND tenant_id = ?", projectID, tenantID).
		First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "Project not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get project")
		return
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.Description != nil {
		project.Description = *req.Description
	}
	if req.Status != nil {
		project.Status = models.ProjectStatus(*req.Status)
	}

	if err := h.db.Save(&project).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update project")
		return
	}

	h.auditor.Record(r.Context(), audit.Entry{
		Action:     audit.ActionUpdateProject,
		EntityType: "Project",
		EntityID:   project.ID.String(),
		TenantID:   tenantID,
		UserID:     &userID,
		IPAddress:  middleware.ClientIP(r),
	})

	writeJSON(w, http.StatusOK, dto.OK(projectToResponse(&project)))
}

// Delete handles DELETE /api/projects/{id}
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())
	userID := middleware.GetUserID(r.Context())

	projectID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	result := h.db.Where("id = ? AND tenant_id = ?", projectID, tenantID).
		Delete(&models.Project{})
	if result.Error != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete project")
		return
	}
	if result.RowsAffected == 0 {
		writeError(w, http.StatusNotFound, "Project not found")
		return
	}

	h.auditor.Record(r.Context(), audit.Entry{
		Action:     audit.ActionDeleteProject,
		EntityType: "Project",
		EntityID:   projectID.String(),
		TenantID:   tenantID,
		UserID:     &userID,
		IPAddress:  middleware.ClientIP(r),
	})

	writeJSON(w, http.StatusOK, dto.Response{Success: true, Message: "Project deleted successfully"})
}
