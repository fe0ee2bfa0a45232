// Package authz holds the single role/operation policy table. Handlers ask
// for the scope a role has on an operation instead of comparing role string
// literals inline.
package authz

import "github.com/hugh/taskdeck/internal/database/models"

type Operation string

const (
	OpTenantList       Operation = "tenant:list"
	OpTenantView       Operation = "tenant:view"
	OpTenantUpdateName Operation = "tenant:update_name"
	OpTenantUpdatePlan Operation = "tenant:update_plan"
	OpUserCreate       Operation = "user:create"
	OpUserList         Operation = "user:list"
	OpUserUpdate       Operation = "user:update"
	OpUserDelete       Operation = "user:delete"
	OpProjectManage    Operation = "project:manage"
	OpTaskManage       Operation = "task:manage"
)

// Scope bounds which tenants an operation may touch.
type Scope int

const (
	ScopeNone Scope = iota // forbidden
	ScopeSelf              // only the caller's own user row
	ScopeOwn               // only within the caller's tenant
	ScopeAny               // every tenant (super_admin)
)

var policy = map[Operation]map[models.Role]Scope{
	OpTenantList: {
		models.RoleSuperAdmin: ScopeAny,
	},
	OpTenantView: {
		models.RoleSuperAdmin:  ScopeAny,
		models.RoleTenantAdmin: ScopeOwn,
	},
	OpTenantUpdateName: {
		models.RoleSuperAdmin:  ScopeAny,
		models.RoleTenantAdmin: ScopeOwn,
	},
	OpTenantUpdatePlan: {
		models.RoleSuperAdmin: ScopeAny,
	},
	OpUserCreate: {
		models.RoleTenantAdmin: ScopeOwn,
	},
	OpUserList: {
		models.RoleTenantAdmin: ScopeOwn,
	},
	OpUserUpdate: {
		models.RoleTenantAdmin: ScopeOwn,
		models.RoleUser:        ScopeSelf,
	},
	OpUserDelete: {
		models.RoleTenantAdmin: ScopeOwn,
	},
	OpProjectManage: {
		models.RoleTenantAdmin: ScopeOwn,
		models.RoleUser:        ScopeOwn,
	},
	OpTaskManage: {
		models.RoleTenantAdmin: ScopeOwn,
		models.RoleUser:        ScopeOwn,
	},
}

// ScopeFor returns the scope the role has on the operation, ScopeNone when
// the policy table has no entry.
func ScopeFor(role models.Role, op Operation) Scope {
	return policy[op][role]
}

// Allows reports whether the role may perform the operation at all.
func Allows(role models.Role, op Operation) bool {
	return ScopeFor(role, op) != ScopeNone
}
