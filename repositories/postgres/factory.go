package postgres

import (
	"github.com/learnloop/backend/config"
	"github.com/learnloop/backend/repositories"
	"go.uber.org/zap"
)

// RepositoryFactory creates and manages all repositories
type RepositoryFactory struct {
	db     *DB
	logger *zap.Logger
}

// NewRepositoryFactory creates a new repository factory
func NewRepositoryFactory(cfg *config.Config, logger *zap.Logger) (*RepositoryFactory, error) {
	db, err := NewDB(cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	return &RepositoryFactory{db: db, logger: logger}, nil
}

// DB returns the underlying connection pool
func (f *RepositoryFactory) DB() *DB {
	return f.db
}

// Close closes the underlying connection pool
func (f *RepositoryFactory) Close() error {
	return f.db.Close()
}

// NewRepositories creates all repository instances
func (f *RepositoryFactory) NewRepositories() *repositories.Repositories {
	return &repositories.Repositories{
		Companies:   NewCompanyRepository(f.db, f.logger),
		Users:       NewUserRepository(f.db, f.logger),
		Notebooks:   NewNotebookRepository(f.db, f.logger),
		Assignments: NewAssignmentRepository(f.db, f.logger),
		TokenUsage:  NewTokenUsageRepository(f.db, f.logger),
	}
}

// NewTransactionManager creates a transaction manager bound to the pool
func (f *RepositoryFactory) NewTransactionManager() repositories.TransactionManager {
	return NewTransactionManager(f.db, f.logger)
}
