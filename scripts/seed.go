//go:build ignore

package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/hugh/taskdeck/internal/auth"
	"github.com/hugh/taskdeck/internal/database"
	"github.com/hugh/taskdeck/internal/database/models"
	"github.com/hugh/taskdeck/internal/quota"
	"github.com/hugh/taskdeck/pkg/config"
	"github.com/hugh/taskdeck/pkg/util"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := util.NewLogger(cfg.Server.Env)

	db, err := database.Connect(&cfg.Database, logger)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	// Create super admin
	email := os.Getenv("SUPER_ADMIN_EMAIL")
	password := os.Getenv("SUPER_ADMIN_PASSWORD")
	if email == "" {
		email = "admin@taskdeck.local"
	}
	if password == "" {
		password = "superadmin123"
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var existing models.User
	if err := db.Where("email = ? AND tenant_id IS NULL", email).First(&existing).Error; err == nil {
		log.Printf("super admin %s already exists, skipping", email)
	} else {
		superAdmin := models.User{
			FullName:     "Super Admin",
			Email:        email,
			PasswordHash: hash,
			Role:         models.RoleSuperAdmin,
			IsActive:     true,
		}
		if err := db.Create(&superAdmin).Error; err != nil {
			log.Fatalf("failed to create super admin: %v", err)
		}
		fmt.Printf("Super admin created: %s / %s\n", email, password)
	}

	// Create a demo tenant with sample data
	jwtService := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry())
	authService := auth.NewService(db, jwtService, quota.NewChecker(db))

	reg, err := authService.RegisterTenant(context.Background(), auth.RegisterTenantInput{
		TenantName:    "Demo Inc",
		Subdomain:     "demo",
		AdminFullName: "Demo Admin",
		AdminEmail:    "admin@demo.test",
		AdminPassword: "demopass123",
	})
	if err != nil {
		log.Printf("demo tenant not created (may already exist): %v", err)
		return
	}

	project := models.Project{
		Name:        "Launch Plan",
		Description: "Everything needed for the first release",
		Status:      models.ProjectStatusActive,
		TenantID:    reg.Tenant.ID,
		CreatedByID: reg.Admin.ID,
	}
	if err := db.Create(&project).Error; err != nil {
		log.Fatalf("failed to create demo project: %v", err)
	}

	demoTasks := []models.Task{
		{Title: "Write the press release", Priority: models.PriorityHigh, Status: models.TaskStatusInProgress, ProjectID: project.ID, TenantID: reg.Tenant.ID, AssignedTo: &reg.Admin.ID},
		{Title: "Set up billing", Priority: models.PriorityMedium, Status: models.TaskStatusTodo, ProjectID: project.ID, TenantID: reg.Tenant.ID},
		{Title: "Pick a launch date", Priority: models.PriorityLow, Status: models.TaskStatusCompleted, ProjectID: project.ID, TenantID: reg.Tenant.ID},
	}
	for i := range demoTasks {
		if err := db.Create(&demoTasks[i]).Error; err != nil {
			log.Fatalf("failed to create demo task: %v", err)
		}
	}

	fmt.Println("Demo tenant created: demo / admin@demo.test / demopass123")
}
