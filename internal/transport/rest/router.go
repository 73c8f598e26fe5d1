package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/jmoiron/sqlx"

	"github.com/frahmantamala/catalog-management/internal/auth"
	"github.com/frahmantamala/catalog-management/internal/category"
	"github.com/frahmantamala/catalog-management/internal/product"
	"github.com/frahmantamala/catalog-management/internal/transport/metrics"
	"github.com/frahmantamala/catalog-management/internal/transport/middleware"
	"github.com/frahmantamala/catalog-management/internal/transport/swagger"
	"github.com/frahmantamala/catalog-management/internal/user"
)

// Routes holds what RegisterAllRoutes mounts. A nil handler leaves its routes out.
type Routes struct {
	Gate            *auth.Gate
	AuthHandler     *auth.Handler
	ProductHandler  *product.Handler
	CategoryHandler *category.Handler
	UserHandler     *user.Handler

	Metrics        *metrics.Collector
	MetricsPath    string
	OpenAPIPath    string
	AllowedOrigins []string
	// HealthChecks are reported by /health next to the database.
	HealthChecks map[string]CheckFunc
	// LogRequests turns on request and response body logging.
	LogRequests bool
}

func RegisterAllRoutes(router *chi.Mux, db *sqlx.DB, routes Routes, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db, routes.HealthChecks)

	metricsPath := routes.MetricsPath
	if metricsPath == "" {
		metricsPath = "/metrics"
	}

	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.CORS(routes.AllowedOrigins))
	if routes.Metrics != nil {
		router.Use(middleware.Metrics(routes.Metrics))
	}
	if routes.LogRequests {
		router.Use(middleware.LoggingMiddleware(logger, "/health", "/ping", metricsPath))
	}
	// every route, public ones included, goes through the gate
	if routes.Gate != nil {
		router.Use(routes.Gate.Middleware)
	}

	router.Get("/health", healthHandler.healthCheckHandler)
	router.Get("/ping", healthHandler.pingHandler)

	if routes.OpenAPIPath != "" {
		router.Get("/openapi.yml", swagger.SpecHandler(routes.OpenAPIPath))
		router.Handle("/swagger/*", swagger.Handler())
	}

	if routes.Metrics != nil {
		router.Handle(metricsPath, routes.Metrics.Handler())
	}

	if routes.AuthHandler != nil {
		router.Post("/oauth/token", routes.AuthHandler.Token)
	}

	if routes.ProductHandler != nil {
		router.Route("/products", func(r chi.Router) {
			r.Get("/", routes.ProductHandler.GetProducts)
			r.Post("/", routes.ProductHandler.CreateProduct)
			r.Get("/{id}", routes.ProductHandler.GetProduct)
			r.Put("/{id}", routes.ProductHandler.UpdateProduct)
			r.Delete("/{id}", routes.ProductHandler.DeleteProduct)
		})
	}

	if routes.CategoryHandler != nil {
		router.Route("/categories", func(r chi.Router) {
			r.Get("/", routes.CategoryHandler.GetCategories)
			r.Post("/", routes.CategoryHandler.CreateCategory)
			r.Get("/{id}", routes.CategoryHandler.GetCategory)
			r.Put("/{id}", routes.CategoryHandler.UpdateCategory)
			r.Delete("/{id}", routes.CategoryHandler.DeleteCategory)
		})
	}

	if routes.UserHandler != nil {
		router.Get("/me", routes.UserHandler.GetCurrentUser)
		router.Route("/users", func(r chi.Router) {
			r.Get("/", routes.UserHandler.GetUsers)
			r.Post("/", routes.UserHandler.CreateUser)
			r.Get("/{id}", routes.UserHandler.GetUser)
			r.Put("/{id}", routes.UserHandler.UpdateUser)
			r.Delete("/{id}", routes.UserHandler.DeleteUser)
		})
	}

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"type":"NOT_FOUND","code":"RESOURCE_NOT_FOUND","message":"Resource not found"}}`))
	})
}
