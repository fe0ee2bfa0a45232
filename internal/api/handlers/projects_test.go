package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hugh/taskdeck/internal/api/dto"
	"github.com/hugh/taskdeck/internal/api/handlers"
	"github.com/hugh/taskdeck/internal/api/middleware"
	"github.com/hugh/taskdeck/internal/audit"
	"github.com/hugh/taskdeck/internal/database/models"
	"github.com/hugh/taskdeck/internal/quota"
	"github.com/hugh/taskdeck/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupProjectTestRouter(t *testing.T) (*chi.Mux, *testutil.TestSetup) {
	tc := testutil.NewTestContext(t)

	handler := handlers.NewProjectHandler(tc.DB, quota.NewChecker(tc.DB), testAuditor(tc.DB))

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(tc.JWTService))
		r.Use(middleware.RequireTenant)

		r.Get("/api/projects", handler.List)
		r.Post("/api/projects", handler.Create)
		r.Get("/api/projects/{id}", handler.Get)
		r.Put("/api/projects/{id}", handler.Update)
		r.Delete("/api/projects/{id}", handler.Delete)
	})

	return r, tc
}

func TestProjectHandler_Create(t *testing.T) {
	router, tc := setupProjectTestRouter(t)
	defer tc.Cleanup()

	t.Run("creates project", func(t *testing.T) {
		body := map[string]interface{}{
			"name":        "Website Redesign",
			"description": "Refresh the marketing site",
			"startDate":   "2026-09-01",
			"budget":      15000.0,
		}

		req := testutil.AuthenticatedRequest(t, "POST", "/api/projects", body, tc.AdminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var resp struct {
			Success bool                     `json:"success"`
			Data    handlers.ProjectResponse `json:"data"`
		}
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, "Website Redesign", resp.Data.Name)
		assert.Equal(t, "active", resp.Data.Status)
		assert.Equal(t, tc.Tenant.ID.String(), resp.Data.TenantID)
		assert.Equal(t, tc.Admin.ID.String(), resp.Data.CreatedByID)
		require.NotNil(t, resp.Data.StartDate)
		assert.Equal(t, "2026-09-01", *resp.Data.StartDate)
	})

	t.Run("writes an audit record", func(t *testing.T) {
		var log models.AuditLog
		require.NoError(t, tc.DB.Where("action = ?", audit.ActionCreateProject).First(&log).Error)
		require.NotNil(t, log.TenantID)
		assert.Equal(t, tc.Tenant.ID, *log.TenantID)
	})

	t.Run("missing name", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "POST", "/api/projects", map[string]string{}, tc.AdminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("invalid date format", func(t *testing.T) {
		body := map[string]string{"name": "Bad Dates", "startDate": "09/01/2026"}

		req := testutil.AuthenticatedRequest(t, "POST", "/api/projects", body, tc.AdminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("project limit reached", func(t *testing.T) {
		require.NoError(t, tc.DB.Model(tc.Tenant).Update("max_projects", 1).Error)

		body := map[string]string{"name": "One Too Many"}
		req := testutil.AuthenticatedRequest(t, "POST", "/api/projects", body, tc.AdminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)

		var resp dto.Response
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, "Project limit reached for plan (1 max)", resp.Message)

		var count int64
		tc.DB.Model(&models.Project{}).Where("tenant_id = ?", tc.Tenant.ID).Count(&count)
		assert.Equal(t, int64(1), count)

		require.NoError(t, tc.DB.Model(tc.Tenant).Update("max_projects", 3).Error)
	})

	t.Run("super_admin has no project access", func(t *testing.T) {
		superAdmin := testutil.CreateTestUser(t, tc.DB, nil, models.RoleSuperAdmin)
		token := testutil.GenerateTestToken(t, tc.JWTService, superAdmin)

		body := map[string]string{"name": "Nope"}
		req := testutil.AuthenticatedRequest(t, "POST", "/api/projects", body, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func TestProjectHandler_List(t *testing.T) {
	router, tc := setupProjectTestRouter(t)
	defer tc.Cleanup()

	project := testutil.CreateTestProject(t, tc.DB, tc.Tenant.ID, tc.Admin.ID)
	testutil.CreateTestTask(t, tc.DB, tc.Tenant.ID, project.ID)
	done := testutil.CreateTestTask(t, tc.DB, tc.Tenant.ID, project.ID)
	require.NoError(t, tc.DB.Model(done).Update("status", models.TaskStatusCompleted).Error)

	// A second tenant with its own project that must never appear.
	otherTenant := testutil.CreateTestTenant(t, tc.DB)
	otherAdmin := testutil.CreateTestUser(t, tc.DB, otherTenant, models.RoleTenantAdmin)
	testutil.CreateTestProject(t, tc.DB, otherTenant.ID, otherAdmin.ID)

	t.Run("lists only the caller's tenant with task counts", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", "/api/projects", nil, tc.AdminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			Success bool                     `json:"success"`
			Data    handlers.ProjectListData `json:"data"`
		}
		testutil.ParseJSONResponse(t, rr, &resp)
		require.Len(t, resp.Data.Projects, 1)
		assert.Equal(t, int64(1), resp.Data.Total)

		p := resp.Data.Projects[0]
		assert.Equal(t, project.ID.String(), p.ID)
		require.NotNil(t, p.TaskCount)
		assert.Equal(t, 2, *p.TaskCount)
		require.NotNil(t, p.CompletedTaskCount)
		assert.Equal(t, 1, *p.CompletedTaskCount)
		require.NotNil(t, p.Creator)
		assert.Equal(t, tc.Admin.FullName, p.Creator.FullName)
	})

	t.Run("filters by status", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", "/api/projects?status=archived", nil, tc.AdminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		var resp struct {
			Data handlers.ProjectListData `json:"data"`
		}
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Empty(t, resp.Data.Projects)
	})

	t.Run("searches by name", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", "/api/projects?search=test", nil, tc.AdminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		var resp struct {
			Data handlers.ProjectListData `json:"data"`
		}
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Len(t, resp.Data.Projects, 1)
	})

	t.Run("paginates", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", "/api/projects?page=2&limit=1", nil, tc.AdminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		var resp struct {
			Data handlers.ProjectListData `json:"data"`
		}
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Empty(t, resp.Data.Projects)
		assert.Equal(t, 2, resp.Data.Pagination.CurrentPage)
		assert.Equal(t, 1, resp.Data.Pagination.TotalPages)
	})
}

func TestProjectHandler_Get(t *testing.T) {
	router, tc := setupProjectTestRouter(t)
	defer tc.Cleanup()

	project := testutil.CreateTestProject(t, tc.DB, tc.Tenant.ID, tc.Admin.ID)

	t.Run("returns project", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", "/api/projects/"+project.ID.String(), nil, tc.AdminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("cross-tenant access yields 404", func(t *testing.T) {
		otherTenant := testutil.CreateTestTenant(t, tc.DB)
		outsider := testutil.CreateTestUser(t, tc.DB, otherTenant, models.RoleTenantAdmin)
		token := testutil.GenerateTestToken(t, tc.JWTService, outsider)

		req := testutil.AuthenticatedRequest(t, "GET", "/api/projects/"+project.ID.String(), nil, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", "/api/projects/not-a-uuid", nil, tc.AdminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestProjectHandler_Update(t *testing.T) {
	router, tc := setupProjectTestRouter(t)
	defer tc.Cleanup()

	project := testutil.CreateTestProject(t, tc.DB, tc.Tenant.ID, tc.Admin.ID)

	t.Run("partial update keeps omitted fields", func(t *testing.T) {
		body := map[string]string{"status": "completed"}

		req := testutil.AuthenticatedRequest(t, "PUT", "/api/projects/"+project.ID.String(), body, tc.AdminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp struct {
			Data handlers.ProjectResponse `json:"data"`
		}
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, "completed", resp.Data.Status)
		assert.Equal(t, project.Name, resp.Data.Name)
		assert.Equal(t, project.Description, resp.Data.Description)
	})

	t.Run("rejects invalid status", func(t *testing.T) {
		body := map[string]string{"status": "done"}

		req := testutil.AuthenticatedRequest(t, "PUT", "/api/projects/"+project.ID.String(), body, tc.AdminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		body := map[string]string{"name": ""}

		req := testutil.AuthenticatedRequest(t, "PUT", "/api/projects/"+project.ID.String(), body, tc.AdminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("cross-tenant update yields 404", func(t *testing.T) {
		otherTenant := testutil.CreateTestTenant(t, tc.DB)
		outsider := testutil.CreateTestUser(t, tc.DB, otherTenant, models.RoleTenantAdmin)
		token := testutil.GenerateTestToken(t, tc.JWTService, outsider)

		body := map[string]string{"name": "Hijacked"}
		req := testutil.AuthenticatedRequest(t, "PUT", "/api/projects/"+project.ID.String(), body, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)

		var fresh models.Project
		require.NoError(t, tc.DB.First(&fresh, "id = ?", project.ID).Error)
		assert.Equal(t, project.Name, fresh.Name)
	})
}

func TestProjectHandler_Delete(t *testing.T) {
	router, tc := setupProjectTestRouter(t)
	defer tc.Cleanup()

	project := testutil.CreateTestProject(t, tc.DB, tc.Tenant.ID, tc.Admin.ID)

	t.Run("cross-tenant delete yields 404", func(t *testing.T) {
		otherTenant := testutil.CreateTestTenant(t, tc.DB)
		outsider := testutil.CreateTestUser(t, tc.DB, otherTenant, models.RoleTenantAdmin)
		token := testutil.GenerateTestToken(t, tc.JWTService, outsider)

		req := testutil.AuthenticatedRequest(t, "DELETE", "/api/projects/"+project.ID.String(), nil, token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("deletes project", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "DELETE", "/api/projects/"+project.ID.String(), nil, tc.AdminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var count int64
		tc.DB.Model(&models.Project{}).Where("id = ?", project.ID).Count(&count)
		assert.Equal(t, int64(0), count)
	})

	t.Run("second delete yields 404", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "DELETE", "/api/projects/"+project.ID.String(), nil, tc.AdminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
