package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/frahmantamala/catalog-management/internal"
	"github.com/frahmantamala/catalog-management/internal/auth"
	authPostgres "github.com/frahmantamala/catalog-management/internal/auth/postgres"
	"github.com/frahmantamala/catalog-management/internal/category"
	categoryPostgres "github.com/frahmantamala/catalog-management/internal/category/postgres"
	"github.com/frahmantamala/catalog-management/internal/core/events"
	"github.com/frahmantamala/catalog-management/internal/product"
	productPostgres "github.com/frahmantamala/catalog-management/internal/product/postgres"
	"github.com/frahmantamala/catalog-management/internal/transport"
	"github.com/frahmantamala/catalog-management/internal/transport/metrics"
	"github.com/frahmantamala/catalog-management/internal/transport/rest"
	"github.com/frahmantamala/catalog-management/internal/transport/swagger"
	"github.com/frahmantamala/catalog-management/internal/user"
	userPostgres "github.com/frahmantamala/catalog-management/internal/user/postgres"
	"github.com/frahmantamala/catalog-management/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	DB       *sqlx.DB
	GormDB   *gorm.DB
	Router   *chi.Mux
	EventBus *events.EventBus
	Metrics  *metrics.Collector
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	if err := setupRoutes(deps); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up routes: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "profile", deps.Config.App.Profile)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		deps.EventBus.Wait()
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func setupRoutes(deps *Dependencies) error {
	cfg := deps.Config
	lg := deps.Logger

	if cfg.Server.OpenAPIPath != "" {
		ctx, cancel := internal.WithTimeout(context.Background(), 0)
		defer cancel()
		if _, err := swagger.LoadSpec(ctx, cfg.Server.OpenAPIPath); err != nil {
			return fmt.Errorf("invalid openapi document: %w", err)
		}
	}

	hasher := auth.NewBcryptHasher(cfg.Security.BCryptCost)
	client := auth.NewClient(cfg.Security)
	tokens := auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, cfg.Security.TokenValidity(), time.Now)
	var authMetrics auth.Metrics
	if deps.Metrics != nil {
		authMetrics = deps.Metrics
	}
	authService := auth.NewService(authPostgres.NewRepository(deps.GormDB), hasher, tokens, client, lg, authMetrics)

	base := transport.NewBaseHandler(lg)
	categoryService := category.NewService(categoryPostgres.NewCategoryRepository(deps.GormDB), deps.EventBus, lg)
	productService := product.NewService(productPostgres.NewProductRepository(deps.GormDB), deps.EventBus, lg)
	userService := user.NewService(userPostgres.NewUserRepository(deps.GormDB), hasher, deps.EventBus, lg)

	var extraPublic []string
	metricsPath := ""
	if cfg.Observability.Metrics.Enabled {
		metricsPath = cfg.Observability.Metrics.Path
		extraPublic = append(extraPublic, metricsPath)
	}

	gateOpts := []auth.GateOption{auth.WithRelaxedSecurity(cfg.Security.Relaxed)}
	if authMetrics != nil {
		gateOpts = append(gateOpts, auth.WithGateMetrics(authMetrics))
	}
	if cfg.Security.Relaxed {
		lg.Warn("security is relaxed: every request is allowed", "profile", cfg.App.Profile)
	}

	rest.RegisterAllRoutes(deps.Router, deps.DB, rest.Routes{
		Gate:            auth.NewGate(authService, auth.NewCatalogPolicy(extraPublic...), lg, gateOpts...),
		AuthHandler:     auth.NewHandler(authService),
		ProductHandler:  product.NewHandler(base, productService),
		CategoryHandler: category.NewHandler(base, categoryService),
		UserHandler:     user.NewHandler(base, userService),
		Metrics:         deps.Metrics,
		MetricsPath:     metricsPath,
		OpenAPIPath:     cfg.Server.OpenAPIPath,
		AllowedOrigins:  splitOrigins(cfg.Server.AllowedOrigins),
		LogRequests:     cfg.App.Profile != internal.ProfileProd,
		HealthChecks: map[string]rest.CheckFunc{
			"event_bus": func(context.Context) (map[string]any, error) {
				return map[string]any{"audit_handlers": deps.EventBus.HandlerCount(events.EventTypeProductCreated)}, nil
			},
		},
	}, lg)
	return nil
}

func splitOrigins(raw string) []string {
	var out []string
	for _, origin := range strings.Split(raw, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			out = append(out, origin)
		}
	}
	return out
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := initGorm(db, config.App.Profile)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize gorm: %w", err)
	}

	bus := events.NewEventBus(lg)
	events.NewAuditLogger(lg).Register(bus)

	var collector *metrics.Collector
	if config.Observability.Metrics.Enabled {
		collector = metrics.NewCollector()
	}

	return &Dependencies{
		Config:   config,
		Logger:   lg,
		DB:       db,
		GormDB:   gormDB,
		Router:   chi.NewRouter(),
		EventBus: bus,
		Metrics:  collector,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

// initGorm shares the sqlx connection pool with gorm.
func initGorm(db *sqlx.DB, profile string) (*gorm.DB, error) {
	level := gormLogger.Warn
	if profile == internal.ProfileDev {
		level = gormLogger.Info
	}
	return gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(level),
	})
}
