package authz_test

import (
	"testing"

	"github.com/hugh/taskdeck/internal/authz"
	"github.com/hugh/taskdeck/internal/database/models"
	"github.com/stretchr/testify/assert"
)

func TestScopeFor(t *testing.T) {
	tests := []struct {
		name string
		role models.Role
		op   authz.Operation
		want authz.Scope
	}{
		{"super_admin lists tenants", models.RoleSuperAdmin, authz.OpTenantList, authz.ScopeAny},
		{"tenant_admin cannot list tenants", models.RoleTenantAdmin, authz.OpTenantList, authz.ScopeNone},
		{"user cannot list tenants", models.RoleUser, authz.OpTenantList, authz.ScopeNone},

		{"super_admin views any tenant", models.RoleSuperAdmin, authz.OpTenantView, authz.ScopeAny},
		{"tenant_admin views own tenant", models.RoleTenantAdmin, authz.OpTenantView, authz.ScopeOwn},
		{"user cannot view tenant", models.RoleUser, authz.OpTenantView, authz.ScopeNone},

		{"tenant_admin renames own tenant", models.RoleTenantAdmin, authz.OpTenantUpdateName, authz.ScopeOwn},
		{"tenant_admin cannot change plan", models.RoleTenantAdmin, authz.OpTenantUpdatePlan, authz.ScopeNone},
		{"super_admin changes any plan", models.RoleSuperAdmin, authz.OpTenantUpdatePlan, authz.ScopeAny},

		{"tenant_admin creates users", models.RoleTenantAdmin, authz.OpUserCreate, authz.ScopeOwn},
		{"user cannot create users", models.RoleUser, authz.OpUserCreate, authz.ScopeNone},
		{"super_admin cannot create tenant users", models.RoleSuperAdmin, authz.OpUserCreate, authz.ScopeNone},

		{"user updates self only", models.RoleUser, authz.OpUserUpdate, authz.ScopeSelf},
		{"tenant_admin updates tenant users", models.RoleTenantAdmin, authz.OpUserUpdate, authz.ScopeOwn},
		{"user cannot delete users", models.RoleUser, authz.OpUserDelete, authz.ScopeNone},

		{"user manages projects in own tenant", models.RoleUser, authz.OpProjectManage, authz.ScopeOwn},
		{"tenant_admin manages projects", models.RoleTenantAdmin, authz.OpProjectManage, authz.ScopeOwn},
		{"super_admin has no project scope", models.RoleSuperAdmin, authz.OpProjectManage, authz.ScopeNone},

		{"user manages tasks", models.RoleUser, authz.OpTaskManage, authz.ScopeOwn},
		{"super_admin has no task scope", models.RoleSuperAdmin, authz.OpTaskManage, authz.ScopeNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, authz.ScopeFor(tt.role, tt.op))
		})
	}
}

func TestAllows(t *testing.T) {
	assert.True(t, authz.Allows(models.RoleSuperAdmin, authz.OpTenantList))
	assert.True(t, authz.Allows(models.RoleUser, authz.OpUserUpdate))
	assert.False(t, authz.Allows(models.RoleUser, authz.OpUserDelete))
	assert.False(t, authz.Allows(models.RoleSuperAdmin, authz.OpTaskManage))

	t.Run("unknown operation denied", func(t *testing.T) {
		assert.False(t, authz.Allows(models.RoleSuperAdmin, authz.Operation("bogus:op")))
	})

	t.Run("unknown role denied", func(t *testing.T) {
		assert.False(t, authz.Allows(models.Role("intern"), authz.OpProjectManage))
	})
}
