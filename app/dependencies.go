package app

import (
	"context"
	"fmt"
	"time"

	"github.com/learnloop/backend/auth"
	"github.com/learnloop/backend/config"
	"github.com/learnloop/backend/middleware"
	"github.com/learnloop/backend/observability"
	"github.com/learnloop/backend/repositories"
	"github.com/learnloop/backend/repositories/postgres"
	"github.com/learnloop/backend/services/company"
	"github.com/learnloop/backend/services/notebook"
	"github.com/learnloop/backend/services/tokenusage"
	"github.com/learnloop/backend/services/user"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	Logger *observability.Logger

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Repos     *repositories.Repositories
	TxManager repositories.TransactionManager

	// Services
	CompanyService  *company.Service
	UserService     *user.Service
	NotebookService *notebook.Service
	UsageRecorder   *tokenusage.Recorder

	// Middleware
	AuthMiddleware *middleware.AuthMiddleware
	Lifecycle      *middleware.Lifecycle
}

// NewDependencies creates and wires up all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *observability.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps.initRepositories()
	deps.initServices()
	deps.initMiddleware(cfg)

	logger.Info(ctx, "all dependencies initialized")
	return deps, nil
}

// initDatabase initializes the PostgreSQL connection and repository factory
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	factory, err := postgres.NewRepositoryFactory(cfg, d.Logger.Zap())
	if err != nil {
		return fmt.Errorf("failed to create repository factory: %w", err)
	}
	d.RepoFactory = factory

	if err := factory.DB().HealthCheck(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	if err := factory.DB().InitSchema(ctx); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	d.Logger.Info(ctx, "database connection established",
		zap.String("connection", cfg.Database.LogString()))
	return nil
}

// initRepositories initializes the repository bundle and transaction manager
func (d *Dependencies) initRepositories() {
	d.Repos = d.RepoFactory.NewRepositories()
	d.TxManager = d.RepoFactory.NewTransactionManager()
}

// initServices initializes the domain services
func (d *Dependencies) initServices() {
	d.CompanyService = company.NewService(d.Repos, d.TxManager, d.Logger)
	d.UserService = user.NewService(d.Repos, d.Logger)
	d.NotebookService = notebook.NewService(d.Repos, d.Logger)
	d.UsageRecorder = tokenusage.NewRecorder(d.Repos.TokenUsage, d.Logger, tokenusage.DefaultConfig())
}

// initMiddleware wires the request lifecycle and auth middleware
func (d *Dependencies) initMiddleware(cfg *config.Config) {
	validator := auth.NewValidator(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
	d.AuthMiddleware = middleware.NewAuthMiddleware(validator, d.Logger)
	d.Lifecycle = middleware.NewLifecycle(d.Logger,
		cfg.Observability.BufferCapacity,
		cfg.Observability.FaultStatusThreshold)
}

// Start launches background workers.
func (d *Dependencies) Start() error {
	return d.UsageRecorder.Start()
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info(ctx, "shutting down dependencies")

	var errs []error

	if d.UsageRecorder != nil {
		if err := d.UsageRecorder.Stop(10 * time.Second); err != nil {
			errs = append(errs, fmt.Errorf("failed to stop usage recorder: %w", err))
		}
	}

	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info(ctx, "database connection closed")
		}
	}

	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}
	return nil
}
