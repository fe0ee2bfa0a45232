package models

type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusSuspended TenantStatus = "suspended"
)

type SubscriptionPlan string

const (
	PlanFree       SubscriptionPlan = "free"
	PlanPro        SubscriptionPlan = "pro"
	PlanEnterprise SubscriptionPlan = "enterprise"
)

// Tenant is the root of isolation: every other entity except super_admin
// users carries a tenant id and all queries filter by it.
type Tenant struct {
	Base
	Name             string           `gorm:"not null" json:"name"`
	Subdomain        string           `gorm:"uniqueIndex;not null" json:"subdomain"`
	Status           TenantStatus     `gorm:"default:'active'" json:"status"`
	SubscriptionPlan SubscriptionPlan `gorm:"default:'free'" json:"subscriptionPlan"`
	MaxUsers         int              `gorm:"default:5" json:"maxUsers"`
	MaxProjects      int              `gorm:"default:3" json:"maxProjects"`

	// Relationships
	Users    []User    `gorm:"foreignKey:TenantID" json:"-"`
	Projects []Project `gorm:"foreignKey:TenantID" json:"-"`
}

func (Tenant) TableName() string {
	return "tenants"
}
