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
	"gorm.io/gorm"
)

// priorityOrder ranks priorities for list ordering: high before medium
// before low.
const priorityOrder = "CASE priority WHEN 'high' THEN 3 WHEN 'medium' THEN 2 ELSE 1 END DESC, due_date ASC"

type TaskHandler struct {
	db      *gorm.DB
	auditor *audit.Recorder
}

func NewTaskHandler(db *gorm.DB, auditor *audit.Recorder) *TaskHandler {
	return &TaskHandler{db: db, auditor: auditor}
}

type CreateTaskRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	ProjectID   string  `json:"projectId,omitempty"` // ignored on nested routes
	Priority    string  `json:"priority,omitempty"`
	AssignedTo  *string `json:"assignedTo,omitempty"`
	DueDate     *string `json:"dueDate,omitempty"`
}

type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	AssignedTo  *string `json:"assignedTo"`
	DueDate     *string `json:"dueDate"`
}

type TaskAssignee struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

type TaskResponse struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Status      string        `json:"status"`
	Priority    string        `json:"priority"`
	ProjectID   string        `json:"projectId"`
	TenantID    string        `json:"tenantId"`
	AssignedTo  *TaskAssignee `json:"assignedTo"`
	DueDate     *string       `json:"dueDate"`
	CreatedAt   string        `json:"createdAt"`
	UpdatedAt   string        `json:"updatedAt"`
}

type TaskListData struct {
	Tasks      []TaskResponse `json:"tasks"`
	Total      int64          `json:"total"`
	Pagination dto.Pagination `json:"pagination"`
}

func taskToResponse(t *models.Task) TaskResponse {
	resp := TaskResponse{
		ID:          t.ID.String(),
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		ProjectID:   t.ProjectID.String(),
		TenantID:    t.TenantID.String(),
		DueDate:     formatTime(t.DueDate),
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.Format(time.RFC3339),
	}
	if t.Assignee != nil {
		resp.AssignedTo = &TaskAssignee{
			ID:       t.Assignee.ID.String(),
			FullName: t.Assignee.FullName,
			Email:    t.Assignee.Email,
		}
	}
	return resp
}

// tenantProject loads a project scoped to the caller's tenant. Missing and
// cross-tenant both come back as gorm.ErrRecordNotFound.
func (h *TaskHandler) tenantProject(projectID uuid.UUID, tenantID *uuid.UUID) (*models.Project, error) {
	var project models.Project
	err := h.db.Where("id = ? AND tenant_id = ?", projectID, tenantID).First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// tenantAssignee verifies the assignee belongs to the caller's tenant.
func (h *TaskHandler) tenantAssignee(id uuid.UUID, tenantID *uuid.UUID) (*models.User, error) {
	var user models.User
	err := h.db.Where("id = ? AND tenant_id = ?", id, tenantID).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create handles POST /api/projects/{projectId}/tasks and POST /api/tasks.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())
	userID := middleware.GetUserID(r.Context())

	var req CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Nested route wins over the body field.
	projectIDStr := chi.URLParam(r, "projectId")
	if projectIDStr == "" {
		projectIDStr = req.ProjectID
	}

	if req.Title == "" || projectIDStr == "" {
		writeError(w, http.StatusBadRequest, "title and projectId are required")
		return
	}

	projectID, err := uuid.Parse(projectIDStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	if _, err := h.tenantProject(projectID, tenantID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "Project not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to verify project")
		return
	}

	priority := models.TaskPriority(req.Priority)
	switch priority {
	case models.PriorityLow, models.PriorityMedium, models.PriorityHigh:
	case "":
		priority = models.PriorityMedium
	default:
		writeError(w, http.StatusBadRequest, "Invalid priority")
		return
	}

	task := models.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      models.TaskStatusTodo,
		Priority:    priority,
		ProjectID:   projectID,
		TenantID:    *tenantID,
	}

	if req.AssignedTo != nil && *req.AssignedTo != "" {
		assigneeID, err := uuid.Parse(*req.AssignedTo)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid assignee ID")
			return
		}
		assignee, err := h.tenantAssignee(assigneeID, tenantID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Assigned user not in this tenant")
			return
		}
		task.AssignedTo = &assigneeID
		task.Assignee = assignee
	}

	if req.DueDate != nil && *req.DueDate != "" {
		due, err := time.Parse(time.RFC3339, *req.DueDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid due date, expected RFC 3339")
			return
		}
		task.DueDate = &due
	}

	if err := h.db.Create(&task).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create task")
		return
	}

	h.auditor.Record(r.Context(), audit.Entry{
		Action:     audit.ActionCreateTask,
		EntityType: "Task",
		EntityID:   task.ID.String(),
		TenantID:   tenantID,
		UserID:     &userID,
		IPAddress:  middleware.ClientIP(r),
	})

	writeJSON(w, http.StatusCreated, dto.OK(taskToResponse(&task)))
}

// List handles GET /api/projects/{projectId}/tasks and GET /api/tasks.
// Ordered by priority descending, then due date ascending.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())
	pagination := parsePagination(r, 50)

	projectIDStr := chi.URLParam(r, "projectId")
	if projectIDStr == "" {
		projectIDStr = r.URL.Query().Get("projectId")
	}

	query := h.db.Model(&models.Task{}).Where("tenant_id = ?", tenantID)

	if projectIDStr != "" {
		projectID, err := uuid.Parse(projectIDStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid project ID")
			return
		}
		if _, err := h.tenantProject(projectID, tenantID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				writeError(w, http.StatusNotFound, "Project not found")
				return
			}
			writeError(w, http.StatusInternalServerError, "Failed to verify project")
			return
		}
		query = query.Where("project_id = ?", projectID)
	}

	if status := r.URL.Query().Get("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if assignedTo := r.URL.Query().Get("assignedTo"); assignedTo != "" {
		query = query.Where("assigned_to = ?", assignedTo)
	}
	if priority := r.URL.Query().Get("priority"); priority != "" {
		query = query.Where("priority = ?", priority)
	}
	if search := r.URL.Query().Get("search"); search != "" {
		query = query.Where("LOWER(title) LIKE ?", "%"+lowered(search)+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count tasks")
		return
	}

	var tasks []models.Task
	if err := query.
		Preload("Assignee").
		Order(priorityOrder).
		Offset(pagination.Offset()).
		Limit(pagination.Limit).
		Find(&tasks).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list tasks")
		return
	}

	response := make([]TaskResponse, len(tasks))
	for i := range tasks {
		response[i] = taskToResponse(&tasks[i])
	}

	writeJSON(w, http.StatusOK, dto.OK(TaskListData{
		Tasks:      response,
		Total:      total,
		Pagination: pagination.Paginate(total),
	}))
}

// Get handles GET /api/tasks/{id}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())

	taskID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid task ID")
		return
	}

	var task models.Task
	if err := h.db.Preload("Assignee").
		Where("id = ? AND tenant_id = ?", taskID, tenantID).
		First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "Task not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get task")
		return
	}

	writeJSON(w, http.StatusOK, dto.OK(taskToResponse(&task)))
}

// Update handles PUT /api/tasks/{id}. Omitted fields keep their values.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())
	userID := middleware.GetUserID(r.Context())

	taskID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid task ID")
		return
	}

	var req UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var task models.Task
	if err := h.db.Where("id = ? AND tenant_id = ?", taskID, tenantID).
		First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "Task not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get task")
		return
	}

	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != nil {
		switch models.TaskStatus(*req.Status) {
		case models.TaskStatusTodo, models.TaskStatusInProgress, models.TaskStatusCompleted:
			task.Status = models.TaskStatus(*req.Status)
		default:
			writeError(w, http.StatusBadRequest, "Invalid status")
			return
		}
	}
	if req.Priority != nil {
		switch models.TaskPriority(*req.Priority) {
		case models.PriorityLow, models.PriorityMedium, models.PriorityHigh:
			task.Priority = models.TaskPriority(*req.Priority)
		default:
			writeError(w, http.StatusBadRequest, "Invalid priority")
			return
		}
	}
	if req.AssignedTo != nil {
		if *req.AssignedTo == "" {
			task.AssignedTo = nil
		} else {
			assigneeID, err := uuid.Parse(*req.AssignedTo)
			if err != nil {
				writeError(w, http.StatusBadRequest, "Invalid assignee ID")
				return
			}
			if _, err := h.tenantAssignee(assigneeID, tenantID); err != nil {
				writeError(w, http.StatusBadRequest, "Assigned user not in this tenant")
				return
			}
			task.AssignedTo = &assigneeID
		}
	}
	if req.DueDate != nil {
		if *req.DueDate == "" {
			task.DueDate = nil
		} else {
			due, err := time.Parse(time.RFC3339, *req.DueDate)
			if err != nil {
				writeError(w, http.StatusBadRequest, "Invalid due date, expected RFC 3339")
				return
			}
			task.DueDate = &due
		}
	}

	if err := h.db.Save(&task).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update task")
		return
	}

	h.auditor.Record(r.Context(), audit.Entry{
		Action:     audit.ActionUpdateTask,
		EntityType: "Task",
		EntityID:   task.ID.String(),
		TenantID:   tenantID,
		UserID:     &userID,
		IPAddress:  middleware.ClientIP(r),
	})

	if task.AssignedTo != nil {
		_ = h.db.Preload("Assignee").First(&task, "id = ?", task.ID).Error
	}

	writeJSON(w, http.StatusOK, dto.OKMessage("Task updated successfully", taskToResponse(&task)))
}

type UpdateTaskStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PATCH /api/tasks/{id}/status
func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())
	userID := middleware.GetUserID(r.Context())

	taskID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid task ID")
		return
	}

	var req UpdateTaskStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Status == "" {
		writeError(w, http.StatusBadRequest, "status is required")
		return
	}
	switch models.TaskStatus(req.Status) {
	case models.TaskStatusTodo, models.TaskStatusInProgress, models.TaskStatusCompleted:
	default:
		writeError(w, http.StatusBadRequest, "Invalid status")
		return
	}

	var task models.Task
	if err := h.db.Where("id = ? AND tenant_id = ?", taskID, tenantID).
		First(&task).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "Task not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get task")
		return
	}

	task.Status = models.TaskStatus(req.Status)
	if err := h.db.Save(&task).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update task status")
		return
	}

	h.auditor.Record(r.Context(), audit.Entry{
		Action:     audit.ActionUpdateTaskStatus,
		EntityType: "Task",
		EntityID:   task.ID.String(),
		TenantID:   tenantID,
		UserID:     &userID,
		IPAddress:  middleware.ClientIP(r),
		Details:    map[string]string{"field": "status", "newValue": req.Status},
	})

	if task.AssignedTo != nil {
		_ = h.db.Preload("Assignee").First(&task, "id = ?", task.ID).Error
	}

	writeJSON(w, http.StatusOK, dto.OKMessage("Task status updated successfully", taskToResponse(&task)))
}

// Delete handles DELETE /api/tasks/{id}
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	tenantID := middleware.GetTenantID(r.Context())
	userID := middleware.GetUserID(r.Context())

	taskID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid task ID")
		return
	}

	result := h.db.Where("id = ? AND tenant_id = ?", taskID, tenantID).
		Delete(&models.Task{})
	if result.Error != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete task")
		return
	}
	if result.RowsAffected == 0 {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}

	h.auditor.Record(r.Context(), audit.Entry{
		Action:     audit.ActionDeleteTask,
		EntityType: "Task",
		EntityID:   taskID.String(),
		TenantID:   tenantID,
		UserID:     &userID,
		IPAddress:  middleware.ClientIP(r),
	})

	writeJSON(w, http.StatusOK, dto.Response{Success: true, Message: "Task deleted successfully"})
}
