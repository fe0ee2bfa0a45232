package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hugh/taskdeck/internal/auth"
	"github.com/hugh/taskdeck/internal/database/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an in-memory SQLite database for testing
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	// Run migrations
	err = db.AutoMigrate(
		&models.Tenant{},
		&models.User{},
		&models.Project{},
		&models.Task{},
		&models.AuditLog{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// CleanupTestDB closes the test database connection
func CleanupTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()
	sqlDB, err := db.DB()
	if err != nil {
		t.Logf("warning: failed to get sql.DB: %v", err)
		return
	}
	sqlDB.Close()
}

// CreateTestTenant creates a test tenant on the free plan
func CreateTestTenant(t *testing.T, db *gorm.DB) *models.Tenant {
	t.Helper()

	tenant := &models.Tenant{
		Base: models.Base{
			ID: uuid.New(),
		},
		Name:             "Test Tenant",
		Subdomain:        "test-" + uuid.New().String()[:8],
		Status:           models.TenantStatusActive,
		SubscriptionPlan: models.PlanFree,
		MaxUsers:         5,
		MaxProjects:      3,
	}

	if err := db.Create(tenant).Error; err != nil {
		t.Fatalf("failed to create test tenant: %v", err)
	}

	return tenant
}

// CreateTestUser creates an active user with the given role under a tenant.
// Pass a nil tenant for a super_admin account.
func CreateTestUser(t *testing.T, db *gorm.DB, tenant *models.Tenant, role models.Role) *models.User {
	t.Helper()

	hash, err := auth.HashPassword("testpassword123")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Base: models.Base{
			ID: uuid.New(),
		},
		FullName:     "Test User",
		Email:        "test-" + uuid.New().String()[:8] + "@example.com",
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if tenant != nil {
		user.TenantID = &tenant.ID
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}

	user.Tenant = tenant
	return user
}

// CreateTestProject creates a project under a tenant
func CreateTestProject(t *testing.T, db *gorm.DB, tenantID, createdBy uuid.UUID) *models.Project {
	t.Helper()

	project := &models.Project{
		Base: models.Base{
			ID: uuid.New(),
		},
		Name:        "Test Project",
		Description: "Test project description",
		Status:      models.ProjectStatusActive,
		TenantID:    tenantID,
		CreatedByID: createdBy,
	}

	if err := db.Create(project).Error; err != nil {
		t.Fatalf("failed to create test project: %v", err)
	}

	return project
}

// CreateTestTask creates a task under a project
func CreateTestTask(t *testing.T, db *gorm.DB, tenantID, projectID uuid.UUID) *models.Task {
	t.Helper()

	task := &models.Task{
		Base: models.Base{
			ID: uuid.New(),
		},
		Title:     "Test Task",
		Status:    models.TaskStatusTodo,
		Priority:  models.PriorityMedium,
		ProjectID: projectID,
		TenantID:  tenantID,
	}

	if err := db.Create(task).Error; err != nil {
		t.Fatalf("failed to create test task: %v", err)
	}

	return task
}

// CreateTestJWTService creates a JWT service for testing
func CreateTestJWTService() *auth.JWTService {
	return auth.NewJWTService("test-secret-key-for-testing", 24*time.Hour)
}

// GenerateTestToken generates a valid JWT token for the given user
func GenerateTestToken(t *testing.T, jwtService *auth.JWTService, user *models.User) string {
	t.Helper()

	token, err := jwtService.GenerateToken(user.ID, user.TenantID, user.Email, user.Role)
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}

	return token
}

// AuthenticatedRequest creates an HTTP request with authentication
func AuthenticatedRequest(t *testing.T, method, path string, body interface{}, token string) *http.Request {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req
}

// UnauthenticatedRequest creates an HTTP request without authentication
func UnauthenticatedRequest(t *testing.T, method, path string, body interface{}) *http.Request {
	t.Helper()
	return AuthenticatedRequest(t, method, path, body, "")
}

// AssertStatus checks if the response has the expected status code
func AssertStatus(t *testing.T, rr *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if rr.Code != expected {
		t.Errorf("expected status %d, got %d. Body: %s", expected, rr.Code, rr.Body.String())
	}
}

// ParseJSONResponse parses the response body into the given struct
func ParseJSONResponse(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	if err := json.Unmarshal(rr.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to parse response body: %v. Body: %s", err, rr.Body.String())
	}
}

// TestContext creates a context with a timeout for tests
func TestContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// TestSetup holds all the common test dependencies
type TestSetup struct {
	DB         *gorm.DB
	JWTService *auth.JWTService
	Tenant     *models.Tenant
	Admin      *models.User
	AdminToken string
}

// NewTestContext creates a complete test setup with DB, tenant, admin, and token
func NewTestContext(t *testing.T) *TestSetup {
	t.Helper()

	db := SetupTestDB(t)
	jwtService := CreateTestJWTService()
	tenant := CreateTestTenant(t, db)
	admin := CreateTestUser(t, db, tenant, models.RoleTenantAdmin)
	token := GenerateTestToken(t, jwtService, admin)

	return &TestSetup{
		DB:         db,
		JWTService: jwtService,
		Tenant:     tenant,
		Admin:      admin,
		AdminToken: token,
	}
}

// Cleanup closes the test database
func (ts *TestSetup) Cleanup() {
	if ts.DB != nil {
		sqlDB, err := ts.DB.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}
