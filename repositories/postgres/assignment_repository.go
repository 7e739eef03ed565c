package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/learnloop/backend/models"
	"github.com/learnloop/backend/repositories"
	"github.com/learnloop/backend/services"
	"go.uber.org/zap"
)

// AssignmentRepository implements the repositories.AssignmentRepository interface
type AssignmentRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewAssignmentRepository creates a new assignment repository
func NewAssignmentRepository(db *DB, logger *zap.Logger) repositories.AssignmentRepository {
	return &AssignmentRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new module assignment
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.ModuleAssignment) error {
	query := `
		INSERT INTO module_assignments (id, company_id, notebook_id, user_id, enabled, assigned_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	start := time.Now()
	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		assignment.ID,
		assignment.CompanyID,
		assignment.NotebookID,
		assignment.UserID,
		assignment.Enabled,
		assignment.AssignedAt,
		assignment.UpdatedAt,
	)
	recordQuery(ctx, query, map[string]any{
		"id":          assignment.ID.String(),
		"notebook_id": assignment.NotebookID.String(),
		"user_id":     assignment.UserID.String(),
	}, start)

	if err != nil {
		return services.WrapInternal("failed to create assignment", err)
	}

	r.logger.Debug("assignment created", zap.String("id", assignment.ID.String()))
	return nil
}

// GetByID retrieves an assignment by ID
func (r *AssignmentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ModuleAssignment, error) {
	query := `
		SELECT id, company_id, notebook_id, user_id, enabled, assigned_at, updated_at
		FROM module_assignments
		WHERE id = $1
	`

	start := time.Now()
	executor := GetExecutor(ctx, r.db)
	assignment := &models.ModuleAssignment{}

	err := executor.QueryRowContext(ctx, query, id).Scan(
		&assignment.ID,
		&assignment.CompanyID,
		&assignment.NotebookID,
		&assignment.UserID,
		&assignment.Enabled,
		&assignment.AssignedAt,
		&assignment.UpdatedAt,
	)
	recordQuery(ctx, query, map[string]any{"id": id.String()}, start)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, services.ErrAssignmentNotFound
		}
		return nil, services.WrapInternal("failed to get assignment", err)
	}

	return assignment, nil
}

// ListByUser retrieves all assignments for a user
func (r *AssignmentRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.ModuleAssignment, error) {
	query := `
		SELECT id, company_id, notebook_id, user_id, enabled, assigned_at, updated_at
		FROM module_assignments
		WHERE user_id = $1
		ORDER BY assigned_at DESC
	`

	start := time.Now()
	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, userID)
	recordQuery(ctx, query, map[string]any{"user_id": userID.String()}, start)
	if err != nil {
		return nil, services.WrapInternal("failed to list assignments", err)
	}
	defer rows.Close()

	var assignments []*models.ModuleAssignment
	for rows.Next() {
		assignment := &models.ModuleAssignment{}
		if err := rows.Scan(
			&assignment.ID,
			&assignment.CompanyID,
			&assignment.NotebookID,
			&assignment.UserID,
			&assignment.Enabled,
			&assignment.AssignedAt,
			&assignment.UpdatedAt,
		); err != nil {
			return nil, services.WrapInternal("failed to scan assignment", err)
		}
		assignments = append(assignments, assignment)
	}

	if err := rows.Err(); err != nil {
		return nil, services.WrapInternal("failed to iterate assignments", err)
	}

	return assignments, nil
}

// SetEnabled toggles whether an assignment is visible to its user
func (r *AssignmentRepository) SetEnabled(ctx context.Context, id uuid.UUID, enabled bool) error {
	query := `
		UPDATE module_assignments
		SET enabled = $2, updated_at = $3
		WHERE id = $1
	`

	start := time.Now()
	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id, enabled, time.Now())
	recordQuery(ctx, query, map[string]any{"id": id.String(), "enabled": enabled}, start)

	if err != nil {
		return services.WrapInternal("failed to toggle assignment", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return services.WrapInternal("failed to check toggle result", err)
	}
	if rows == 0 {
		return services.ErrAssignmentNotFound
	}

	return nil
}

// DeleteByNotebook deletes all assignments for a notebook
func (r *AssignmentRepository) DeleteByNotebook(ctx context.Context, notebookID uuid.UUID) (int64, error) {
	query := `DELETE FROM module_assignments WHERE notebook_id = $1`

	start := time.Now()
	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, notebookID)
	recordQuery(ctx, query, map[string]any{"notebook_id": notebookID.String()}, start)

	if err != nil {
		return 0, services.WrapInternal("failed to delete assignments", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, services.WrapInternal("failed to check delete result", err)
	}

	return rows, nil
}

// DeleteByCompany deletes all assignments belonging to a company
func (r *AssignmentRepository) DeleteByCompany(ctx context.Context, companyID uuid.UUID) (int64, error) {
	query := `DELETE FROM module_assignments WHERE company_id = $1`

	start := time.Now()
	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, companyID)
	recordQuery(ctx, query, map[string]any{"company_id": companyID.String()}, start)

	if err != nil {
		return 0, services.WrapInternal("failed to delete assignments", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, services.WrapInternal("failed to check delete result", err)
	}

	return rows, nil
}
