package dto

import "github.com/hugh/taskdeck/internal/api/validation"

type RegisterTenantRequest struct {
	TenantName    string `json:"tenantName"`
	Subdomain     string `json:"subdomain"`
	AdminFullName string `json:"adminFullName"`
	AdminEmail    string `json:"adminEmail"`
	AdminPassword string `json:"adminPassword"`
}

func (r RegisterTenantRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.TenantName == "" {
		errors["tenantName"] = "Tenant name is required"
	}
	if r.Subdomain == "" {
		errors["subdomain"] = "Subdomain is required"
	} else if !validation.IsValidSubdomain(r.Subdomain) {
		errors["subdomain"] = "Subdomain may only contain lowercase letters, digits and hyphens"
	}
	if r.AdminFullName == "" {
		errors["adminFullName"] = "Admin full name is required"
	}
	if r.AdminEmail == "" {
		errors["adminEmail"] = "Admin email is required"
	} else if !validation.IsValidEmail(r.AdminEmail) {
		errors["adminEmail"] = "Invalid email format"
	}
	if r.AdminPassword == "" {
		errors["adminPassword"] = "Admin password is required"
	} else if ok, msg := validation.IsValidPassword(r.AdminPassword); !ok {
		errors["adminPassword"] = msg
	}

	return errors
}

type RegisterRequest struct {
	TenantSubdomain string `json:"tenantSubdomain"`
	FullName        string `json:"fullName"`
	Email           string `json:"email"`
	Password        string `json:"password"`
}

func (r RegisterRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.TenantSubdomain == "" {
		errors["tenantSubdomain"] = "Tenant subdomain is required"
	}
	if r.FullName == "" {
		errors["fullName"] = "Full name is required"
	}
	if r.Email == "" {
		errors["email"] = "Email is required"
	} else if !validation.IsValidEmail(r.Email) {
		errors["email"] = "Invalid email format"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	} else if ok, msg := validation.IsValidPassword(r.Password); !ok {
		errors["password"] = msg
	}

	return errors
}

type LoginRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	TenantSubdomain string `json:"tenantSubdomain,omitempty"`
}

func (r LoginRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	}

	return errors
}

type UserDTO struct {
	ID        string  `json:"id"`
	FullName  string  `json:"fullName"`
	Email     string  `json:"email"`
	Role      string  `json:"role"`
	TenantID  *string `json:"tenantId"`
	IsActive  bool    `json:"isActive"`
	CreatedAt string  `json:"createdAt"`
}

type TenantDTO struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Subdomain        string `json:"subdomain"`
	Status           string `json:"status"`
	SubscriptionPlan string `json:"subscriptionPlan"`
	MaxUsers         int    `json:"maxUsers"`
	MaxProjects      int    `json:"maxProjects"`
	CreatedAt        string `json:"createdAt"`
}

type LoginData struct {
	Token  string     `json:"token,omitempty"`
	User   UserDTO    `json:"user"`
	Tenant *TenantDTO `json:"tenant,omitempty"`
}

type TenantRegistrationData struct {
	Tenant TenantDTO `json:"tenant"`
	Admin  UserDTO   `json:"admin"`
}
