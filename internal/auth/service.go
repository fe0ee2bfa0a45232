package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hugh/taskdeck/internal/database/models"
	"github.com/hugh/taskdeck/internal/quota"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already exists in this tenant")
	// ErrInvalidCredentials covers unknown subdomain, unknown email, and
	// password mismatch alike so callers cannot probe which part failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInactiveUser       = errors.New("user is inactive")
	ErrTenantSuspended    = errors.New("tenant is suspended")
	ErrSubdomainTaken     = errors.New("subdomain already taken")
	ErrTenantNotFound     = errors.New("tenant not found")
)

type Service struct {
	db    *gorm.DB
	jwt   *JWTService
	quota *quota.Checker
}

func NewService(db *gorm.DB, jwt *JWTService, quota *quota.Checker) *Service {
	return &Service{db: db, jwt: jwt, quota: quota}
}

type RegisterTenantInput struct {
	TenantName    string
	Subdomain     string
	AdminFullName string
	AdminEmail    string
	AdminPassword string
}

type RegisterInput struct {
	TenantSubdomain string
	FullName        string
	Email           string
	Password        string
}

type LoginInput struct {
	Email           string
	Password        string
	TenantSubdomain string // empty for super_admin login
}

type TenantRegistration struct {
	Tenant *models.Tenant `json:"tenant"`
	Admin  *models.User   `json:"admin"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// RegisterTenant creates a tenant and its first tenant_admin user as one
// transaction; neither row exists if either insert fails.
func (s *Service) RegisterTenant(ctx context.Context, input RegisterTenantInput) (*TenantRegistration, error) {
	var existing models.Tenant
	if err := s.db.WithContext(ctx).Where("subdomain = ?", input.Subdomain).First(&existing).Error; err == nil {
		return nil, ErrSubdomainTaken
	}

	hash, err := HashPassword(input.AdminPassword)
	if err != nil {
		return nil, err
	}

	tenant := models.Tenant{
		Name:             input.TenantName,
		Subdomain:        input.Subdomain,
		Status:           models.TenantStatusActive,
		SubscriptionPlan: models.PlanFree,
	}

	var admin models.User
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&tenant).Error; err != nil {
			return err
		}

		admin = models.User{
			FullName:     input.AdminFullName,
			Email:        input.AdminEmail,
			PasswordHash: hash,
			Role:         models.RoleTenantAdmin,
			TenantID:     &tenant.ID,
			IsActive:     true,
		}

		return tx.Create(&admin).Error
	})

	if err != nil {
		return nil, err
	}

	admin.Tenant = &tenant

	return &TenantRegistration{Tenant: &tenant, Admin: &admin}, nil
}

// Register self-registers a user under an existing tenant, identified by its
// subdomain. Subject to the tenant's seat limit.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	var tenant models.Tenant
	if err := s.db.WithContext(ctx).Where("subdomain = ?", input.TenantSubdomain).First(&tenant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, err
	}

	if err := s.quota.CheckUsers(ctx, tenant.ID); err != nil {
		return nil, err
	}

	var existing models.User
	if err := s.db.WithContext(ctx).
		Where("email = ? AND tenant_id = ?", input.Email, tenant.ID).
		First(&existing).Error; err == nil {
		return nil, ErrEmailTaken
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := models.User{
		FullName:     input.FullName,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         models.RoleUser,
		TenantID:     &tenant.ID,
		IsActive:     true,
	}

	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}

	user.Tenant = &tenant
	return &user, nil
}

// Login verifies credentials within the tenant named by subdomain, or among
// super_admin accounts when the subdomain is omitted, and issues a token.
func (s *Service) Login(ctx context.Context, input LoginInput) (*AuthResponse, error) {
	var tenant *models.Tenant

	query := s.db.WithContext(ctx).Where("email = ?", input.Email)
	if input.TenantSubdomain == "" {
		query = query.Where("tenant_id IS NULL AND role = ?", models.RoleSuperAdmin)
	} else {
		var t models.Tenant
		if err := s.db.WithContext(ctx).Where("subdomain = ?", input.TenantSubdomain).First(&t).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidCredentials
			}
			return nil, err
		}
		tenant = &t
		query = query.Where("tenant_id = ?", t.ID)
	}

	var user models.User
	if err := query.First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !CheckPassword(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrInactiveUser
	}
	if tenant != nil && tenant.Status == models.TenantStatusSuspended {
		return nil, ErrTenantSuspended
	}

	token, err := s.jwt.GenerateToken(user.ID, user.TenantID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	user.Tenant = tenant

	return &AuthResponse{Token: token, User: &user}, nil
}

func (s *Service) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).
		Preload("Tenant").
		First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}
