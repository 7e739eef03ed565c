// Package user implements user management within a company tenant.
package user

import (
	"context"
	"net/mail"

	"github.com/google/uuid"
	"github.com/learnloop/backend/models"
	"github.com/learnloop/backend/observability"
	"github.com/learnloop/backend/repositories"
	"github.com/learnloop/backend/services"
)

// Service handles user business logic
type Service struct {
	repos  *repositories.Repositories
	logger *observability.Logger
}

// NewService creates a user Service
func NewService(repos *repositories.Repositories, logger *observability.Logger) *Service {
	return &Service{repos: repos, logger: logger}
}

// Create registers a user under companyID. Emails are unique per company.
func (s *Service) Create(ctx context.Context, companyID uuid.UUID, email, name string, role models.UserRole) (*models.User, error) {
	observability.RecordServiceCall(ctx, "user", "create", map[string]any{
		"company_id": companyID.String(),
		"role":       string(role),
	})

	if _, err := mail.ParseAddress(email); err != nil {
		return nil, services.ErrInvalidEmail
	}
	switch role {
	case models.RoleAdmin, models.RoleInstructor, models.RoleLearner:
	default:
		return nil, services.ErrInvalidInput.WithDetail("role", string(role))
	}

	existing, err := s.repos.Users.GetByEmail(ctx, companyID, email)
	if err != nil && !services.IsNotFoundError(err) {
		return nil, err
	}
	if existing != nil {
		return nil, services.ErrDuplicateEmail
	}

	user := models.NewUser(email, name, companyID, role)
	if err := s.repos.Users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Get returns a user, refusing cross-tenant access.
func (s *Service) Get(ctx context.Context, companyID, id uuid.UUID) (*models.User, error) {
	observability.RecordServiceCall(ctx, "user", "get", map[string]any{
		"user_id": id.String(),
	})

	user, err := s.repos.Users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.CompanyID != companyID {
		return nil, services.ErrCompanyMismatch
	}
	return user, nil
}

// List returns a company's users with pagination.
func (s *Service) List(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.User, error) {
	observability.RecordServiceCall(ctx, "user", "list", map[string]any{
		"company_id": companyID.String(),
	})
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repos.Users.ListByCompany(ctx, companyID, limit, offset)
}

// Update changes a user's name and role.
func (s *Service) Update(ctx context.Context, companyID, id uuid.UUID, name string, role models.UserRole) (*models.User, error) {
	observability.RecordServiceCall(ctx, "user", "update", map[string]any{
		"user_id": id.String(),
	})

	user, err := s.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	switch role {
	case models.RoleAdmin, models.RoleInstructor, models.RoleLearner:
	default:
		return nil, services.ErrInvalidInput.WithDetail("role", string(role))
	}

	user.Name = name
	user.Role = role
	if err := s.repos.Users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
