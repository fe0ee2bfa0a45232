package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/hugh/taskdeck/internal/api/dto"
	"github.com/hugh/taskdeck/internal/auth"
	"github.com/hugh/taskdeck/internal/database/models"
)

type contextKey string

const principalKey contextKey = "principal"

// Auth resolves the bearer token to a principal and rejects requests without
// a valid one. Downstream handlers never run on failure.
func Auth(jwtService *auth.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var token string

			authHeader := r.Header.Get("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				token = strings.TrimPrefix(authHeader, "Bearer ")
			}

			if token == "" {
				writeUnauthorized(w, "Authentication required")
				return
			}

			claims, err := jwtService.ValidateToken(token)
			if err != nil {
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), principalKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(dto.Error(message))
}

func writeForbidden(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(dto.Error(message))
}

// GetPrincipal returns the authenticated claims, or nil outside the Auth
// middleware.
func GetPrincipal(ctx context.Context) *auth.Claims {
	if claims, ok := ctx.Value(principalKey).(*auth.Claims); ok {
		return claims
	}
	return nil
}

func GetUserID(ctx context.Context) uuid.UUID {
	if claims := GetPrincipal(ctx); claims != nil {
		return claims.UserID
	}
	return uuid.Nil
}

// GetTenantID returns the caller's tenant id, nil for super_admin.
func GetTenantID(ctx context.Context) *uuid.UUID {
	if claims := GetPrincipal(ctx); claims != nil {
		return claims.TenantID
	}
	return nil
}

func GetUserRole(ctx context.Context) models.Role {
	if claims := GetPrincipal(ctx); claims != nil {
		return claims.Role
	}
	return ""
}

// RequireTenant gates routes that only make sense for tenant members:
// super_admin accounts have no tenant and cannot touch projects or tasks.
func RequireTenant(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetTenantID(r.Context()) == nil {
			writeForbidden(w, "Operation requires a tenant account")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole ensures the principal holds one of the given roles.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userRole := GetUserRole(r.Context())

			for _, role := range roles {
				if userRole == role {
					next.ServeHTTP(w, r)
					return
				}
			}

			writeForbidden(w, "Forbidden")
		})
	}
}
