package router

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/careerdesk/careerdesk/api/internal/api/handlers"
	careerdesk_middleware "github.com/careerdesk/careerdesk/api/internal/api/middleware"
	deliveryhttp "github.com/careerdesk/careerdesk/api/internal/delivery/http"
)

// RouterConfig defines the strict dependencies required to build the API routing tree.
type RouterConfig struct {
	AllowedOrigins []string
	MaxBodyBytes   int64

	AuthHandler   *handlers.AuthHandler
	ReportHandler *handlers.ReportHandler
	UserHandler   *handlers.UserHandler
	AdminHandler  *handlers.AdminHandler
	HealthHandler *deliveryhttp.HealthHandler

	AuthMiddleware *careerdesk_middleware.AuthMiddleware
	PINVerifier    careerdesk_middleware.PINVerifier

	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler
	Logger         *slog.Logger
}

// NewRouter constructs the Chi multiplexer, attaches global middleware, and wires all endpoints.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// =========================================================================
	// 1. Global Gateway Middleware Pipeline
	// =========================================================================

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(careerdesk_middleware.StructuredLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(careerdesk_middleware.SecurityHeaders)

	// 🛡️ Report payloads are the largest bodies we accept
	r.Use(careerdesk_middleware.MaxBytes(cfg.MaxBodyBytes))

	// Strict CORS Configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", careerdesk_middleware.PINHeader},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// =========================================================================
	// 2. API v1 Routing Tree
	// =========================================================================

	r.Route("/api/v1", func(r chi.Router) {
		// 🛡️ In-memory token bucket rate limiting
		r.Use(cfg.AuthMiddleware.RateLimit)

		// ---------------------------------------------------------------------
		// Public Routes (No Auth Required)
		// ---------------------------------------------------------------------
		r.Group(func(r chi.Router) {
			r.Post("/auth/login", cfg.AuthHandler.Login)
			r.Post("/auth/refresh", cfg.AuthHandler.Refresh)

			r.Post("/reports", cfg.ReportHandler.Generate)
			r.Post("/reports/open", cfg.ReportHandler.Open)

			r.Post("/users", cfg.UserHandler.Register)
			r.Get("/users/{id}", cfg.UserHandler.Get)
			r.Post("/users/{id}/pin", cfg.UserHandler.VerifyPIN)
		})

		// ---------------------------------------------------------------------
		// Client Routes (Requires the user's PIN)
		// ---------------------------------------------------------------------
		r.Route("/users/{id}/conversations", func(r chi.Router) {
			r.Use(careerdesk_middleware.RequireUserPIN(cfg.PINVerifier))
			r.Get("/", cfg.UserHandler.ListConversations)
			r.Post("/", cfg.UserHandler.AppendConversation)
			r.Delete("/{conversationID}", cfg.UserHandler.DeleteConversation)
		})

		// ---------------------------------------------------------------------
		// Admin Routes (Requires a Valid JWT)
		// ---------------------------------------------------------------------
		r.Route("/admin", func(r chi.Router) {
			r.Use(cfg.AuthMiddleware.RequireAdmin)
			r.Get("/users", cfg.AdminHandler.ListUsers)
			r.Post("/users/{id}/report", cfg.AdminHandler.GenerateUserReport)
			r.Get("/exports", cfg.AdminHandler.ListExports)
			r.Post("/exports/verify", cfg.AdminHandler.VerifyExport)
		})
	})

	if cfg.HealthHandler != nil {
		r.Get("/health", cfg.HealthHandler.Check)
	}
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	return r
}
