// Package company implements tenant management: CRUD plus the cascade
// deletion that removes a company's users, notebooks and assignments.
package company

import (
	"context"

	"github.com/google/uuid"
	"github.com/learnloop/backend/models"
	"github.com/learnloop/backend/observability"
	"github.com/learnloop/backend/repositories"
	"github.com/learnloop/backend/services"
	"github.com/learnloop/backend/utils"
	"go.uber.org/zap"
)

// Service handles company business logic
type Service struct {
	repos     *repositories.Repositories
	txManager repositories.TransactionManager
	logger    *observability.Logger
}

// NewService creates a company service
func NewService(repos *repositories.Repositories, txManager repositories.TransactionManager, logger *observability.Logger) *Service {
	return &Service{
		repos:     repos,
		txManager: txManager,
		logger:    logger,
	}
}

// Create creates a new company after validating its slug
func (s *Service) Create(ctx context.Context, name, slug string) (*models.Company, error) {
	if name == "" {
		return nil, services.ErrInvalidInput.WithDetail("field", "name")
	}
	if err := utils.ValidateSlug(slug); err != nil {
		return nil, services.ErrInvalidSlug
	}

	if existing, err := s.repos.Companies.GetBySlug(ctx, slug); err == nil && existing != nil {
		return nil, services.ErrDuplicateSlug
	}

	company := models.NewCompany(name, slug)
	if err := s.repos.Companies.Create(ctx, company); err != nil {
		return nil, err
	}

	observability.RecordServiceCall(ctx, "company", "create", map[string]any{
		"company_id": company.ID.String(),
		"slug":       slug,
	})

	return company, nil
}

// Get retrieves a company by id
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	return s.repos.Companies.GetByID(ctx, id)
}

// List retrieves companies with pagination
func (s *Service) List(ctx context.Context, limit, offset int) ([]*models.Company, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repos.Companies.List(ctx, limit, offset)
}

// Update updates a company's mutable fields
func (s *Service) Update(ctx context.Context, id uuid.UUID, name string, active bool) (*models.Company, error) {
	company, err := s.repos.Companies.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if name != "" {
		company.Name = name
	}
	company.Active = active

	if err := s.repos.Companies.Update(ctx, company); err != nil {
		return nil, err
	}

	observability.RecordServiceCall(ctx, "company", "update", map[string]any{
		"company_id": id.String(),
	})

	return company, nil
}

// Delete removes a company and everything scoped to it. The primary rows go
// in one transaction; the usage-history cleanup afterwards is best effort
// and only degrades the operation, never fails it.
func (s *Service) Delete(ctx context.Context, id uuid.UUID, confirmed bool) error {
	if !confirmed {
		return services.ErrConfirmMissing
	}

	if _, err := s.repos.Companies.GetByID(ctx, id); err != nil {
		return err
	}

	err := s.txManager.InTransaction(ctx, func(txCtx context.Context, _ repositories.Transaction) error {
		if _, err := s.repos.Assignments.DeleteByCompany(txCtx, id); err != nil {
			return err
		}
		if _, err := s.repos.Notebooks.DeleteByCompany(txCtx, id); err != nil {
			return err
		}
		if _, err := s.repos.Users.DeleteByCompany(txCtx, id); err != nil {
			return err
		}
		return s.repos.Companies.Delete(txCtx, id)
	})
	if err != nil {
		return services.WrapError(services.ErrorTypeInternal, "company deletion failed", err)
	}

	// Secondary cleanup: the usage history lives outside the transactional
	// cascade. A failure here degrades the deletion, it does not undo it.
	if _, err := s.repos.TokenUsage.DeleteByCompany(ctx, id); err != nil {
		s.logger.Warn(ctx, "usage-history cleanup failed",
			zap.String("company_id", id.String()),
			zap.Error(err))
	}

	observability.RecordServiceCall(ctx, "company", "delete", map[string]any{
		"company_id": id.String(),
	})

	s.logger.Info(ctx, "company deleted", zap.String("company_id", id.String()))
	return nil
}
