package models

import "github.com/google/uuid"

type Role string

const (
	RoleSuperAdmin  Role = "super_admin"
	RoleTenantAdmin Role = "tenant_admin"
	RoleUser        Role = "user"
)

// User belongs to exactly one tenant, except super_admin accounts which are
// global and carry a nil tenant id. The same email may exist in different
// tenants as distinct accounts.
type User struct {
	Base
	FullName     string     `gorm:"not null" json:"fullName"`
	Email        string     `gorm:"uniqueIndex:idx_users_email_tenant;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Role         Role       `gorm:"default:'user'" json:"role"`
	TenantID     *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_users_email_tenant;index" json:"tenantId"`
	IsActive     bool       `gorm:"default:true" json:"isActive"`

	// Relationships
	Tenant *Tenant `gorm:"foreignKey:TenantID" json:"tenant,omitempty"`
}

func (User) TableName() string {
	return "users"
}
