package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hugh/taskdeck/internal/api/dto"
	"github.com/hugh/taskdeck/internal/api/middleware"
	"github.com/hugh/taskdeck/internal/audit"
	"github.com/hugh/taskdeck/internal/auth"
	"github.com/hugh/taskdeck/internal/quota"
)

type AuthHandler struct {
	authService *auth.Service
	auditor     *audit.Recorder
}

func NewAuthHandler(authService *auth.Service, auditor *audit.Recorder) *AuthHandler {
	return &AuthHandler{authService: authService, auditor: auditor}
}

// RegisterTenant handles POST /api/auth/register-tenant
func (h *AuthHandler) RegisterTenant(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterTenantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ValidationError(errs))
		return
	}

	reg, err := h.authService.RegisterTenant(r.Context(), auth.RegisterTenantInput{
		TenantName:    req.TenantName,
		Subdomain:     req.Subdomain,
		AdminFullName: req.AdminFullName,
		AdminEmail:    req.AdminEmail,
		AdminPassword: req.AdminPassword,
	})
	if err != nil {
		if errors.Is(err, auth.ErrSubdomainTaken) {
			writeError(w, http.StatusConflict, "Subdomain already taken")
			return
		}
		writeError(w, http.StatusInternalServerError, "Tenant registration failed")
		return
	}

	h.auditor.Record(r.Context(), audit.Entry{
		Action:     audit.ActionRegisterTenant,
		EntityType: "Tenant",
		EntityID:   reg.Tenant.ID.String(),
		TenantID:   &reg.Tenant.ID,
		UserID:     &reg.Admin.ID,
		IPAddress:  middleware.ClientIP(r),
	})

	writeJSON(w, http.StatusCreated, dto.OK(dto.TenantRegistrationData{
		Tenant: tenantToDTO(reg.Tenant),
		Admin:  userToDTO(reg.Admin),
	}))
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ValidationError(errs))
		return
	}

	user, err := h.authService.Register(r.Context(), auth.RegisterInput{
		TenantSubdomain: req.TenantSubdomain,
		FullName:        req.FullName,
		Email:           req.Email,
		Password:        req.Password,
	})
	if err != nil {
		var limitErr *quota.LimitError
		switch {
		case errors.Is(err, auth.ErrTenantNotFound):
			writeError(w, http.StatusNotFound, "Tenant not found")
		case errors.Is(err, auth.ErrEmailTaken):
			writeError(w, http.StatusConflict, "Email already exists in this tenant")
		case errors.As(err, &limitErr):
			writeError(w, http.StatusForbidden, limitErr.Error())
		default:
			writeError(w, http.StatusInternalServerError, "Registration failed")
		}
		return
	}

	h.auditor.Record(r.Context(), audit.Entry{
		Action:     audit.ActionRegisterUser,
		EntityType: "User",
		EntityID:   user.ID.String(),
		TenantID:   user.TenantID,
		UserID:     &user.ID,
		IPAddress:  middleware.ClientIP(r),
	})

	writeJSON(w, http.StatusCreated, dto.OK(userToDTO(user)))
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ValidationError(errs))
		return
	}

	resp, err := h.authService.Login(r.Context(), auth.LoginInput{
		Email:           req.Email,
		Password:        req.Password,
		TenantSubdomain: req.TenantSubdomain,
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
		case errors.Is(err, auth.ErrInactiveUser):
			writeError(w, http.StatusForbidden, "Account is inactive")
		case errors.Is(err, auth.ErrTenantSuspended):
			writeError(w, http.StatusForbidden, "Tenant account is suspended")
		default:
			writeError(w, http.StatusInternalServerError, "Login failed")
		}
		return
	}

	data := dto.LoginData{
		Token: resp.Token,
		User:  userToDTO(resp.User),
	}
	if resp.User.Tenant != nil {
		t := tenantToDTO(resp.User.Tenant)
		data.Tenant = &t
	}

	writeJSON(w, http.StatusOK, dto.OK(data))
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	user, err := h.authService.GetUserByID(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	data := dto.LoginData{User: userToDTO(user)}
	if user.Tenant != nil {
		t := tenantToDTO(user.Tenant)
		data.Tenant = &t
	}

	writeJSON(w, http.StatusOK, dto.OK(data))
}

// Logout handles POST /api/auth/logout. Tokens are stateless; this is an
// acknowledgment for clients that want an explicit logout round-trip.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.Response{Success: true, Message: "Logged out"})
}
