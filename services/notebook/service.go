// Package notebook implements learning-module management: notebooks and the
// assignments that expose them to users.
package notebook

import (
	"context"

	"github.com/google/uuid"
	"github.com/learnloop/backend/models"
	"github.com/learnloop/backend/observability"
	"github.com/learnloop/backend/repositories"
	"github.com/learnloop/backend/services"
	"go.uber.org/zap"
)

// Service handles notebook and assignment business logic
type Service struct {
	repos  *repositories.Repositories
	logger *observability.Logger
}

// NewService creates a notebook service
func NewService(repos *repositories.Repositories, logger *observability.Logger) *Service {
	return &Service{
		repos:  repos,
		logger: logger,
	}
}

// Create creates a notebook for a company
func (s *Service) Create(ctx context.Context, companyID uuid.UUID, title, description string) (*models.Notebook, error) {
	if title == "" {
		return nil, services.ErrEmptyTitle
	}
	if _, err := s.repos.Companies.GetByID(ctx, companyID); err != nil {
		return nil, err
	}

	notebook := models.NewNotebook(companyID, title, description)
	if err := s.repos.Notebooks.Create(ctx, notebook); err != nil {
		return nil, err
	}

	observability.RecordServiceCall(ctx, "notebook", "create", map[string]any{
		"notebook_id": notebook.ID.String(),
		"company_id":  companyID.String(),
	})

	return notebook, nil
}

// Get retrieves a notebook, enforcing tenant scope
func (s *Service) Get(ctx context.Context, companyID, id uuid.UUID) (*models.Notebook, error) {
	notebook, err := s.repos.Notebooks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if notebook.CompanyID != companyID {
		return nil, services.ErrCompanyMismatch
	}
	return notebook, nil
}

// List retrieves a company's notebooks with pagination
func (s *Service) List(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.Notebook, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.repos.Notebooks.ListByCompany(ctx, companyID, limit, offset)
}

// Update updates a notebook's title, description and lock state
func (s *Service) Update(ctx context.Context, companyID, id uuid.UUID, title, description string, locked bool) (*models.Notebook, error) {
	notebook, err := s.Get(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	// Unlocking a locked notebook is allowed; any other edit to one is not.
	if notebook.Locked && locked {
		return nil, services.ErrNotebookLocked
	}

	if title != "" {
		notebook.Title = title
	}
	notebook.Description = description
	notebook.Locked = locked

	if err := s.repos.Notebooks.Update(ctx, notebook); err != nil {
		return nil, err
	}

	observability.RecordServiceCall(ctx, "notebook", "update", map[string]any{
		"notebook_id": id.String(),
	})

	return notebook, nil
}

// Delete removes a notebook and its assignments. The assignment sweep is a
// best-effort secondary cleanup: its failure is logged, not propagated.
func (s *Service) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	notebook, err := s.Get(ctx, companyID, id)
	if err != nil {
		return err
	}
	if notebook.Locked {
		return services.ErrNotebookLocked
	}

	if _, err := s.repos.Assignments.DeleteByNotebook(ctx, id); err != nil {
		s.logger.Warn(ctx, "assignment cleanup failed",
			zap.String("notebook_id", id.String()),
			zap.Error(err))
	}

	if err := s.repos.Notebooks.Delete(ctx, id); err != nil {
		return err
	}

	observability.RecordServiceCall(ctx, "notebook", "delete", map[string]any{
		"notebook_id": id.String(),
	})

	return nil
}

// Assign links a notebook to a user within the same company
func (s *Service) Assign(ctx context.Context, companyID, notebookID, userID uuid.UUID) (*models.ModuleAssignment, error) {
	if _, err := s.Get(ctx, companyID, notebookID); err != nil {
		return nil, err
	}

	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.CompanyID != companyID {
		return nil, services.ErrCompanyMismatch
	}

	assignment := models.NewModuleAssignment(companyID, notebookID, userID)
	if err := s.repos.Assignments.Create(ctx, assignment); err != nil {
		return nil, err
	}

	observability.RecordServiceCall(ctx, "notebook", "assign", map[string]any{
		"assignment_id": assignment.ID.String(),
		"notebook_id":   notebookID.String(),
		"user_id":       userID.String(),
	})

	return assignment, nil
}

// Toggle enables or disables an assignment
func (s *Service) Toggle(ctx context.Context, companyID, assignmentID uuid.UUID, enabled bool) error {
	assignment, err := s.repos.Assignments.GetByID(ctx, assignmentID)
	if err != nil {
		return err
	}
	if assignment.CompanyID != companyID {
		return services.ErrCompanyMismatch
	}

	if err := s.repos.Assignments.SetEnabled(ctx, assignmentID, enabled); err != nil {
		return err
	}

	observability.RecordServiceCall(ctx, "notebook", "toggle_assignment", map[string]any{
		"assignment_id": assignmentID.String(),
		"enabled":       enabled,
	})

	return nil
}

// ListAssignments returns a user's assignments
func (s *Service) ListAssignments(ctx context.Context, companyID, userID uuid.UUID) ([]*models.ModuleAssignment, error) {
	user, err := s.repos.Users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.CompanyID != companyID {
		return nil, services.ErrCompanyMismatch
	}
	return s.repos.Assignments.ListByUser(ctx, userID)
}
