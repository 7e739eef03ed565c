package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/learnloop/backend/models"
)

// TransactionManager manages database transactions
type TransactionManager interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) (Transaction, error)

	// InTransaction executes a function within a transaction.
	// Automatically commits if function succeeds, rolls back on error.
	InTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error
}

// Transaction represents a database transaction
type Transaction interface {
	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Context returns the transaction context
	Context() context.Context
}

// CompanyRepository handles company (tenant) data operations
type CompanyRepository interface {
	Create(ctx context.Context, company *models.Company) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error)
	GetBySlug(ctx context.Context, slug string) (*models.Company, error)
	List(ctx context.Context, limit, offset int) ([]*models.Company, error)
	Update(ctx context.Context, company *models.Company) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserRepository handles user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, companyID uuid.UUID, email string) (*models.User, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.User, error)
	Update(ctx context.Context, user *models.User) error
	DeleteByCompany(ctx context.Context, companyID uuid.UUID) (int64, error)
}

// NotebookRepository handles notebook (module) data operations
type NotebookRepository interface {
	Create(ctx context.Context, notebook *models.Notebook) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Notebook, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.Notebook, error)
	Update(ctx context.Context, notebook *models.Notebook) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByCompany(ctx context.Context, companyID uuid.UUID) (int64, error)
}

// AssignmentRepository handles module assignment data operations
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *models.ModuleAssignment) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.ModuleAssignment, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.ModuleAssignment, error)
	SetEnabled(ctx context.Context, id uuid.UUID, enabled bool) error
	DeleteByNotebook(ctx context.Context, notebookID uuid.UUID) (int64, error)
	DeleteByCompany(ctx context.Context, companyID uuid.UUID) (int64, error)
}

// TokenUsageRepository handles token usage accounting
type TokenUsageRepository interface {
	Insert(ctx context.Context, usage *models.TokenUsage) error
	SumByCompany(ctx context.Context, companyID uuid.UUID) (int64, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.TokenUsage, error)
	DeleteByCompany(ctx context.Context, companyID uuid.UUID) (int64, error)
}

// Repositories bundles all repository instances
type Repositories struct {
	Companies   CompanyRepository
	Users       UserRepository
	Notebooks   NotebookRepository
	Assignments AssignmentRepository
	TokenUsage  TokenUsageRepository
}
