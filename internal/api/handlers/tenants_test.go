package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hugh/taskdeck/internal/api/handlers"
	"github.com/hugh/taskdeck/internal/api/middleware"
	"github.com/hugh/taskdeck/internal/database/models"
	"github.com/hugh/taskdeck/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTenantTestRouter(t *testing.T) (*chi.Mux, *testutil.TestSetup, string) {
	tc := testutil.NewTestContext(t)

	superAdmin := testutil.CreateTestUser(t, tc.DB, nil, models.RoleSuperAdmin)
	superToken := testutil.GenerateTestToken(t, tc.JWTService, superAdmin)

	handler := handlers.NewTenantHandler(tc.DB, testAuditor(tc.DB))

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(tc.JWTService))

		r.Get("/api/tenants", handler.List)
		r.Get("/api/tenants/{id}", handler.Get)
		r.Put("/api/tenants/{id}", handler.Update)
	})

	return r, tc, superToken
}

func TestTenantHandler_List(t *testing.T) {
	router, tc, superToken := setupTenantTestRouter(t)
	defer tc.Cleanup()

	suspended := testutil.CreateTestTenant(t, tc.DB)
	require.NoError(t, tc.DB.Model(suspended).Update("status", models.TenantStatusSuspended).Error)

	t.Run("super_admin lists all tenants", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", "/api/tenants", nil, superToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			Data handlers.TenantListData `json:"data"`
		}
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, int64(2), resp.Data.Total)
	})

	t.Run("filters by status", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", "/api/tenants?status=suspended", nil, superToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		var resp struct {
			Data handlers.TenantListData `json:"data"`
		}
		testutil.ParseJSONResponse(t, rr, &resp)
		require.Len(t, resp.Data.Tenants, 1)
		assert.Equal(t, suspended.ID.String(), resp.Data.Tenants[0].ID)
	})

	t.Run("tenant_admin cannot list", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", "/api/tenants", nil, tc.AdminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func TestTenantHandler_Get(t *testing.T) {
	router, tc, superToken := setupTenantTestRouter(t)
	defer tc.Cleanup()

	project := testutil.CreateTestProject(t, tc.DB, tc.Tenant.ID, tc.Admin.ID)
	testutil.CreateTestTask(t, tc.DB, tc.Tenant.ID, project.ID)
	done := testutil.CreateTestTask(t, tc.DB, tc.Tenant.ID, project.ID)
	require.NoError(t, tc.DB.Model(done).Update("status", models.TaskStatusCompleted).Error)

	tenantPath := "/api/tenants/" + tc.Tenant.ID.String()

	t.Run("super_admin gets any tenant with stats", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", tenantPath, nil, superToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			Data handlers.TenantDetail `json:"data"`
		}
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, tc.Tenant.ID.String(), resp.Data.ID)
		assert.Equal(t, int64(1), resp.Data.Stats.TotalUsers)
		assert.Equal(t, int64(1), resp.Data.Stats.TotalProjects)
		assert.Equal(t, int64(2), resp.Data.Stats.TotalTasks)
		assert.Equal(t, int64(1), resp.Data.Stats.CompletedTasks)
	})

	t.Run("tenant_admin gets own tenant", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", tenantPath, nil, tc.AdminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("tenant_admin cannot get another tenant", func(t *testing.T) {
		other := testutil.CreateTestTenant(t, tc.DB)

		req := testutil.AuthenticatedRequest(t, "GET", "/api/tenants/"+other.ID.String(), nil, tc.AdminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("regular user cannot get tenant", func(t *testing.T) {
		member := testutil.CreateTestUser(t, tc.DB, tc.Tenant, models.RoleUser)
		token := testutil.GenerateTestToken(t, tc.JWTService, member)

		req := testutil.AuthenticatedRequest(t, "GET", tenantPath, nil, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func TestTenantHandler_Update(t *testing.T) {
	router, tc, superToken := setupTenantTestRouter(t)
	defer tc.Cleanup()

	tenantPath := "/api/tenants/" + tc.Tenant.ID.String()

	t.Run("tenant_admin renames own tenant", func(t *testing.T) {
		body := map[string]string{"name": "Renamed Tenant"}

		req := testutil.AuthenticatedRequest(t, "PUT", tenantPath, body, tc.AdminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var fresh models.Tenant
		require.NoError(t, tc.DB.First(&fresh, "id = ?", tc.Tenant.ID).Error)
		assert.Equal(t, "Renamed Tenant", fresh.Name)
	})

	t.Run("tenant_admin cannot change plan or limits", func(t *testing.T) {
		body := map[string]interface{}{
			"subscriptionPlan": "enterprise",
			"maxUsers":         500,
			"status":           "suspended",
		}

		req := testutil.AuthenticatedRequest(t, "PUT", tenantPath, body, tc.AdminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		// The request succeeds but the restricted fields stay untouched.
		assert.Equal(t, http.StatusOK, rr.Code)

		var fresh models.Tenant
		require.NoError(t, tc.DB.First(&fresh, "id = ?", tc.Tenant.ID).Error)
		assert.Equal(t, models.PlanFree, fresh.SubscriptionPlan)
		assert.Equal(t, 5, fresh.MaxUsers)
		assert.Equal(t, models.TenantStatusActive, fresh.Status)
	})

	t.Run("super_admin changes plan and limits", func(t *testing.T) {
		body := map[string]interface{}{
			"subscriptionPlan": "pro",
			"maxUsers":         25,
			"maxProjects":      15,
		}

		req := testutil.AuthenticatedRequest(t, "PUT", tenantPath, body, superToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var fresh models.Tenant
		require.NoError(t, tc.DB.First(&fresh, "id = ?", tc.Tenant.ID).Error)
		assert.Equal(t, models.PlanPro, fresh.SubscriptionPlan)
		assert.Equal(t, 25, fresh.MaxUsers)
		assert.Equal(t, 15, fresh.MaxProjects)
	})

	t.Run("super_admin suspends a tenant", func(t *testing.T) {
		body := map[string]string{"status": "suspended"}

		req := testutil.AuthenticatedRequest(t, "PUT", tenantPath, body, superToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var fresh models.Tenant
		require.NoError(t, tc.DB.First(&fresh, "id = ?", tc.Tenant.ID).Error)
		assert.Equal(t, models.TenantStatusSuspended, fresh.Status)
	})

	t.Run("rejects invalid status", func(t *testing.T) {
		body := map[string]string{"status": "paused"}

		req := testutil.AuthenticatedRequest(t, "PUT", tenantPath, body, superToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("rejects invalid plan", func(t *testing.T) {
		body := map[string]string{"subscriptionPlan": "platinum"}

		req := testutil.AuthenticatedRequest(t, "PUT", tenantPath, body, superToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("tenant_admin cannot update another tenant", func(t *testing.T) {
		other := testutil.CreateTestTenant(t, tc.DB)

		body := map[string]string{"name": "Hijacked"}
		req := testutil.AuthenticatedRequest(t, "PUT", "/api/tenants/"+other.ID.String(), body, tc.AdminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}
