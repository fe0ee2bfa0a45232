package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/hugh/taskdeck/internal/api/handlers"
	"github.com/hugh/taskdeck/internal/api/middleware"
	"github.com/hugh/taskdeck/internal/audit"
	"github.com/hugh/taskdeck/internal/auth"
	"github.com/hugh/taskdeck/internal/quota"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Router struct {
	chi.Router
}

type RouterConfig struct {
	DB             *gorm.DB
	Redis          *redis.Client
	Logger         *slog.Logger
	JWTService     *auth.JWTService
	AuthService    *auth.Service
	QuotaChecker   *quota.Checker
	Auditor        *audit.Recorder
	AllowedOrigins []string // CORS allowed origins
	RateLimitReqs  int      // Rate limit requests per window
	RateLimitSecs  int      // Rate limit window in seconds
}

func NewRouter(cfg RouterConfig) *Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	if cfg.RateLimitReqs > 0 {
		r.Use(middleware.RateLimit(cfg.RateLimitReqs, cfg.RateLimitSecs))
	}

	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(cfg.DB, cfg.Redis)
	authHandler := handlers.NewAuthHandler(cfg.AuthService, cfg.Auditor)
	projectHandler := handlers.NewProjectHandler(cfg.DB, cfg.QuotaChecker, cfg.Auditor)
	taskHandler := handlers.NewTaskHandler(cfg.DB, cfg.Auditor)
	userHandler := handlers.NewUserHandler(cfg.DB, cfg.QuotaChecker, cfg.Auditor)
	tenantHandler := handlers.NewTenantHandler(cfg.DB, cfg.Auditor)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.Health)

		// Public auth endpoints
		r.Post("/auth/register-tenant", authHandler.RegisterTenant)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTService))

			r.Get("/auth/me", authHandler.Me)
			r.Post("/auth/logout", authHandler.Logout)

			// Projects and tasks require a tenant account; super_admin has
			// no tenant and no projects.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireTenant)

				r.Route("/projects", func(r chi.Router) {
					r.Get("/", projectHandler.List)
					r.Post("/", projectHandler.Create)
					r.Get("/{id}", projectHandler.Get)
					r.Put("/{id}", projectHandler.Update)
					r.Delete("/{id}", projectHandler.Delete)

					// Nested task routes
					r.Post("/{projectId}/tasks", taskHandler.Create)
					r.Get("/{projectId}/tasks", taskHandler.List)
				})

				r.Route("/tasks", func(r chi.Router) {
					r.Get("/", taskHandler.List)
					r.Post("/", taskHandler.Create)
					r.Get("/{id}", taskHandler.Get)
					r.Put("/{id}", taskHandler.Update)
					r.Patch("/{id}/status", taskHandler.UpdateStatus)
					r.Delete("/{id}", taskHandler.Delete)
				})
			})

			r.Route("/tenants", func(r chi.Router) {
				r.Get("/", tenantHandler.List)
				r.Get("/{id}", tenantHandler.Get)
				r.Put("/{id}", tenantHandler.Update)

				// User management within a tenant
				r.Post("/{tenantId}/users", userHandler.Create)
				r.Get("/{tenantId}/users", userHandler.List)
			})

			r.Route("/users", func(r chi.Router) {
				r.Put("/{id}", userHandler.Update)
				r.Delete("/{id}", userHandler.Delete)
			})
		})
	})

	return &Router{r}
}
