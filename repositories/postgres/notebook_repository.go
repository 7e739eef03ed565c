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

// NotebookRepository implements the repositories.NotebookRepository interface
type NotebookRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewNotebookRepository creates a new notebook repository
func NewNotebookRepository(db *DB, logger *zap.Logger) repositories.NotebookRepository {
	return &NotebookRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new notebook
func (r *NotebookRepository) Create(ctx context.Context, notebook *models.Notebook) error {
	query := `
		INSERT INTO notebooks (id, company_id, title, description, locked, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	start := time.Now()
	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		notebook.ID,
		notebook.CompanyID,
		notebook.Title,
		notebook.Description,
		notebook.Locked,
		notebook.CreatedAt,
		notebook.UpdatedAt,
	)
	recordQuery(ctx, query, map[string]any{"id": notebook.ID.String(), "company_id": notebook.CompanyID.String()}, start)

	if err != nil {
		return services.WrapInternal("failed to create notebook", err)
	}

	r.logger.Debug("notebook created", zap.String("id", notebook.ID.String()))
	return nil
}

// GetByID retrieves a notebook by ID
func (r *NotebookRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Notebook, error) {
	query := `
		SELECT id, company_id, title, description, locked, created_at, updated_at
		FROM notebooks
		WHERE id = $1
	`

	start := time.Now()
	executor := GetExecutor(ctx, r.db)
	notebook := &models.Notebook{}

	err := executor.QueryRowContext(ctx, query, id).Scan(
		&notebook.ID,
		&notebook.CompanyID,
		&notebook.Title,
		&notebook.Description,
		&notebook.Locked,
		&notebook.CreatedAt,
		&notebook.UpdatedAt,
	)
	recordQuery(ctx, query, map[string]any{"id": id.String()}, start)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, services.ErrNotebookNotFound
		}
		return nil, services.WrapInternal("failed to get notebook", err)
	}

	return notebook, nil
}

// ListByCompany retrieves notebooks for a company with pagination
func (r *NotebookRepository) ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.Notebook, error) {
	query := `
		SELECT id, company_id, title, description, locked, created_at, updated_at
		FROM notebooks
		WHERE company_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	start := time.Now()
	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, companyID, limit, offset)
	recordQuery(ctx, query, map[string]any{"company_id": companyID.String(), "limit": limit, "offset": offset}, start)
	if err != nil {
		return nil, services.WrapInternal("failed to list notebooks", err)
	}
	defer rows.Close()

	var notebooks []*models.Notebook
	for rows.Next() {
		notebook := &models.Notebook{}
		if err := rows.Scan(
			&notebook.ID,
			&notebook.CompanyID,
			&notebook.Title,
			&notebook.Description,
			&notebook.Locked,
			&notebook.CreatedAt,
			&notebook.UpdatedAt,
		); err != nil {
			return nil, services.WrapInternal("failed to scan notebook", err)
		}
		notebooks = append(notebooks, notebook)
	}

	if err := rows.Err(); err != nil {
		return nil, services.WrapInternal("failed to iterate notebooks", err)
	}

	return notebooks, nil
}

// Update updates a notebook
func (r *NotebookRepository) Update(ctx context.Context, notebook *models.Notebook) error {
	query := `
		UPDATE notebooks
		SET title = $2, description = $3, locked = $4, updated_at = $5
		WHERE id = $1
	`

	start := time.Now()
	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		notebook.ID,
		notebook.Title,
		notebook.Description,
		notebook.Locked,
		time.Now(),
	)
	recordQuery(ctx, query, map[string]any{"id": notebook.ID.String()}, start)

	if err != nil {
		return services.WrapInternal("failed to update notebook", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return services.WrapInternal("failed to check update result", err)
	}
	if rows == 0 {
		return services.ErrNotebookNotFound
	}

	return nil
}

// Delete deletes a notebook
func (r *NotebookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM notebooks WHERE id = $1`

	start := time.Now()
	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id)
	recordQuery(ctx, query, map[string]any{"id": id.String()}, start)

	if err != nil {
		return services.WrapInternal("failed to delete notebook", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return services.WrapInternal("failed to check delete result", err)
	}
	if rows == 0 {
		return services.ErrNotebookNotFound
	}

	return nil
}

// DeleteByCompany deletes all notebooks belonging to a company
func (r *NotebookRepository) DeleteByCompany(ctx context.Context, companyID uuid.UUID) (int64, error) {
	query := `DELETE FROM notebooks WHERE company_id = $1`

	start := time.Now()
	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, companyID)
	recordQuery(ctx, query, map[string]any{"company_id": companyID.String()}, start)

	if err != nil {
		return 0, services.WrapInternal("failed to delete notebooks", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, services.WrapInternal("failed to check delete result", err)
	}

	return rows, nil
}
