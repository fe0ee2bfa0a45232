package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hugh/taskdeck/internal/api/dto"
	"github.com/hugh/taskdeck/internal/database/models"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, dto.Error(message))
}

func parsePagination(r *http.Request, defaultLimit int) dto.PaginationParams {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	p := dto.PaginationParams{Page: page, Limit: limit}
	p.Normalize(defaultLimit)
	return p
}

const dateOnly = "2006-01-02"

// lowered folds a search term for case-insensitive LIKE matching.
func lowered(s string) string {
	return strings.ToLower(s)
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateOnly)
	return &s
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func userToDTO(u *models.User) dto.UserDTO {
	d := dto.UserDTO{
		ID:        u.ID.String(),
		FullName:  u.FullName,
		Email:     u.Email,
		Role:      string(u.Role),
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
	if u.TenantID != nil {
		s := u.TenantID.String()
		d.TenantID = &s
	}
	return d
}

func tenantToDTO(t *models.Tenant) dto.TenantDTO {
	return dto.TenantDTO{
		ID:               t.ID.String(),
		Name:             t.Name,
		Subdomain:        t.Subdomain,
		Status:           string(t.Status),
		SubscriptionPlan: string(t.SubscriptionPlan),
		MaxUsers:         t.MaxUsers,
		MaxProjects:      t.MaxProjects,
		CreatedAt:        t.CreatedAt.Format(time.RFC3339),
	}
}
