package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/hugh/taskdeck/internal/database/models"
)

// Authenticator defines the interface for credential and registration
// operations.
type Authenticator interface {
	RegisterTenant(ctx context.Context, input RegisterTenantInput) (*TenantRegistration, error)
	Register(ctx context.Context, input RegisterInput) (*models.User, error)
	Login(ctx context.Context, input LoginInput) (*AuthResponse, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// TokenService defines the interface for JWT token operations.
type TokenService interface {
	GenerateToken(userID uuid.UUID, tenantID *uuid.UUID, email string, role models.Role) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

// Compile-time interface satisfaction checks
var (
	_ Authenticator = (*Service)(nil)
	_ TokenService  = (*JWTService)(nil)
)
