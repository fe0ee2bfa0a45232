package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hugh/taskdeck/internal/api/dto"
	"github.com/hugh/taskdeck/internal/api/middleware"
	"github.com/hugh/taskdeck/internal/api/validation"
	"github.com/hugh/taskdeck/internal/audit"
	"github.com/hugh/taskdeck/internal/auth"
	"github.com/hugh/taskdeck/internal/authz"
	"github.com/hugh/taskdeck/internal/database/models"
	"github.com/hugh/taskdeck/internal/quota"
	"gorm.io/gorm"
)

type UserHandler struct {
	db      *gorm.DB
	quota   *quota.Checker
	auditor *audit.Recorder
}

func NewUserHandler(db *gorm.DB, quota *quota.Checker, auditor *audit.Recorder) *UserHandler {
	return &UserHandler{db: db, quota: quota, auditor: auditor}
}

type CreateUserRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

func (r CreateUserRequest) Validate() map[string]string {
	errs := make(map[string]string)
	if r.FullName == "" {
		errs["fullName"] = "Full name is required"
	}
	if r.Email == "" {
		errs["email"] = "Email is required"
	} else if !validation.IsValidEmail(r.Email) {
		errs["email"] = "Invalid email format"
	}
	if r.Password == "" {
		errs["password"] = "Password is required"
	} else if ok, msg := validation.IsValidPassword(r.Password); !ok {
		errs["password"] = msg
	}
	if r.Role != "" {
		switch models.Role(r.Role) {
		case models.RoleTenantAdmin, models.RoleUser:
		default:
			errs["role"] = "Invalid role"
		}
	}
	return errs
}

type UpdateUserRequest struct {
	FullName *string `json:"fullName"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"isActive"`
}

type UserListData struct {
	Users      []dto.UserDTO  `json:"users"`
	Total      int64          `json:"total"`
	Pagination dto.Pagination `json:"pagination"`
}

// pathTenantID validates that the {tenantId} path segment names the
// caller's own tenant.
func pathTenantID(r *http.Request, own *uuid.UUID) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "tenantId"))
	if err != nil {
		return uuid.Nil, false
	}
	if own == nil || *own != id {
		return uuid.Nil, false
	}
	return id, true
}

// Create handles POST /api/tenants/{tenantId}/users
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetUserRole(r.Context())
	if authz.ScopeFor(role, authz.OpUserCreate) != authz.ScopeOwn {
		writeError(w, http.StatusForbidden, "Only admins can add users")
		return
	}

	tenantID, ok := pathTenantID(r, middleware.GetTenantID(r.Context()))
	if !ok {
		writeError(w, http.StatusForbidden, "Unauthorized")
		return
	}

	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ValidationError(errs))
		return
	}

	if err := h.quota.CheckUsers(r.Context(), tenantID); err != nil {
		var limitErr *quota.LimitError
		if errors.As(err, &limitErr) {
			writeError(w, http.StatusForbidden, limitErr.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to check user limit")
		return
	}

	var existing models.User
	if err := h.db.Where("email = ? AND tenant_id = ?", req.Email, tenantID).
		First(&existing).Error; err == nil {
		writeError(w, http.StatusConflict, "Email already exists in this tenant")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	newRole := models.RoleUser
	if req.Role != "" {
		newRole = models.Role(req.Role)
	}

	user := models.User{
		FullName:     req.FullName,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         newRole,
		TenantID:     &tenantID,
		IsActive:     true,
	}

	if err := h.db.Create(&user).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	actorID := middleware.GetUserID(r.Context())
	h.auditor.Record(r.Context(), audit.Entry{
		Action:     audit.ActionCreateUser,
		EntityType: "User",
		EntityID:   user.ID.String(),
		TenantID:   &tenantID,
		UserID:     &actorID,
		IPAddress:  middleware.ClientIP(r),
	})

	writeJSON(w, http.StatusCreated, dto.OKMessage("User created successfully", userToDTO(&user)))
}

// List handles GET /api/tenants/{tenantId}/users
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	role := middleware.GetUserRole(r.Context())
	if authz.ScopeFor(role, authz.OpUserList) != authz.ScopeOwn {
		writeError(w, http.StatusForbidden, "Forbidden")
		return
	}

	tenantID, ok := pathTenantID(r, middleware.GetTenantID(r.Context()))
	if !ok {
		writeError(w, http.StatusForbidden, "Unauthorized")
		return
	}

	pagination := parsePagination(r, 50)

	query := h.db.Model(&models.User{}).Where("tenant_id = ?", tenantID)
	if roleFilter := r.URL.Query().Get("role"); roleFilter != "" {
		query = query.Where("role = ?", roleFilter)
	}
	if search := r.URL.Query().Get("search"); search != "" {
		pattern := "%" + lowered(search) + "%"
		query = query.Where("LOWER(full_name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count users")
		return
	}

	var users []models.User
	if err := query.
		Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit).
		Find(&users).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list users")
		return
	}

	response := make([]dto.UserDTO, len(users))
	for i := range users {
		response[i] = userToDTO(&users[i])
	}

	writeJSON(w, http.StatusOK, dto.OK(UserListData{
		Users:      response,
		Total:      total,
		Pagination: pagination.Paginate(total),
	}))
}

// Update handles PUT /api/users/{id}. Admins may change fullName, role and
// isActive for anyone in their tenant; regular users only their own fullName.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	actorRole := middleware.GetUserRole(r.Context())
	actorID := middleware.GetUserID(r.Context())
	tenantID := middleware.GetTenantID(r.Context())

	targetID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	switch authz.ScopeFor(actorRole, authz.OpUserUpdate) {
	case authz.ScopeOwn:
	case authz.ScopeSelf:
		if targetID != actorID {
			writeError(w, http.StatusForbidden, "Unauthorized to update this user")
			return
		}
	default:
		writeError(w, http.StatusForbidden, "Unauthorized to update this user")
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Role != nil {
		switch models.Role(*req.Role) {
		case models.RoleTenantAdmin, models.RoleUser:
		default:
			writeError(w, http.StatusBadRequest, "Invalid role")
			return
		}
	}

	var user models.User
	if err := h.db.Where("id = ? AND tenant_id = ?", targetID, tenantID).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get user")
		return
	}

	if req.FullName != nil && *req.FullName != "" {
		user.FullName = *req.FullName
	}
	if actorRole == models.RoleTenantAdmin {
		if req.Role != nil {
			user.Role = models.Role(*req.Role)
		}
		if req.IsActive != nil {
			user.IsActive = *req.IsActive
		}
	}

	if err := h.db.Save(&user).Error; err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update user")
		return
	}

	h.auditor.Record(r.Context(), audit.Entry{
		Action:     audit.ActionUpdateUser,
		EntityType: "User",
		EntityID:   user.ID.String(),
		TenantID:   tenantID,
		UserID:     &actorID,
		IPAddress:  middleware.ClientIP(r),
	})

	writeJSON(w, http.StatusOK, dto.OKMessage("User updated successfully", userToDTO(&user)))
}

// Delete handles DELETE /api/users/{id}. The deleted user's tasks become
// unassigned; admins cannot delete themselves.
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actorRole := middleware.GetUserRole(r.Context())
	actorID := middleware.GetUserID(r.Context())
	tenantID := middleware.GetTenantID(r.Context())

	if authz.ScopeFor(actorRole, authz.OpUserDelete) != authz.ScopeOwn {
		writeError(w, http.StatusForbidden, "Only admins can delete users")
		return
	}

	targetID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	if targetID == actorID {
		writeError(w, http.StatusForbidden, "Cannot delete yourself")
		return
	}

	var user models.User
	if err := h.db.Where("id = ? AND tenant_id = ?", targetID, tenantID).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get user")
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Task{}).
			Where("assigned_to = ?", targetID).
			Update("assigned_to", nil).Error; err != nil {
			return err
		}
		// Hard delete so the email becomes available again within the tenant.
		return tx.Unscoped().Delete(&user).Error
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to delete user")
		return
	}

	h.auditor.Record(r.Context(), audit.Entry{
		Action:     audit.ActionDeleteUser,
		EntityType: "User",
		EntityID:   targetID.String(),
		TenantID:   tenantID,
		UserID:     &actorID,
		IPAddress:  middleware.ClientIP(r),
	})

	writeJSON(w, http.StatusOK, dto.Response{Success: true, Message: "User deleted successfully"})
}
