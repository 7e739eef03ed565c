package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/learnloop/backend/models"
	"github.com/learnloop/backend/observability"
	"github.com/learnloop/backend/repositories"
	"github.com/learnloop/backend/services"
	"go.uber.org/zap"
)

// recordQuery appends a db_query operation record for the ambient request.
func recordQuery(ctx context.Context, query string, params map[string]any, start time.Time) {
	observability.RecordDBQuery(ctx, query, params, float64(time.Since(start).Microseconds())/1000.0)
}

// CompanyRepository implements the repositories.CompanyRepository interface
type CompanyRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewCompanyRepository creates a new company repository
func NewCompanyRepository(db *DB, logger *zap.Logger) repositories.CompanyRepository {
	return &CompanyRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new company
func (r *CompanyRepository) Create(ctx context.Context, company *models.Company) error {
	query := `
		INSERT INTO companies (id, name, slug, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	start := time.Now()
	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		company.ID,
		company.Name,
		company.Slug,
		company.Active,
		company.CreatedAt,
		company.UpdatedAt,
	)
	recordQuery(ctx, query, map[string]any{"id": company.ID.String(), "slug": company.Slug}, start)

	if err != nil {
		return services.WrapInternal("failed to create company", err)
	}

	r.logger.Debug("company created", zap.String("id", company.ID.String()), zap.String("slug", company.Slug))
	return nil
}

// GetByID retrieves a company by ID
func (r *CompanyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	query := `
		SELECT id, name, slug, active, created_at, updated_at
		FROM companies
		WHERE id = $1
	`

	start := time.Now()
	executor := GetExecutor(ctx, r.db)
	company := &models.Company{}

	err := executor.QueryRowContext(ctx, query, id).Scan(
		&company.ID,
		&company.Name,
		&company.Slug,
		&company.Active,
		&company.CreatedAt,
		&company.UpdatedAt,
	)
	recordQuery(ctx, query, map[string]any{"id": id.String()}, start)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, services.ErrCompanyNotFound
		}
		return nil, services.WrapInternal("failed to get company", err)
	}

	return company, nil
}

// GetBySlug retrieves a company by slug
func (r *CompanyRepository) GetBySlug(ctx context.Context, slug string) (*models.Company, error) {
	query := `
		SELECT id, name, slug, active, created_at, updated_at
		FROM companies
		WHERE slug = $1
	`

	start := time.Now()
	executor := GetExecutor(ctx, r.db)
	company := &models.Company{}

	err := executor.QueryRowContext(ctx, query, slug).Scan(
		&company.ID,
		&company.Name,
		&company.Slug,
		&company.Active,
		&company.CreatedAt,
		&company.UpdatedAt,
	)
	recordQuery(ctx, query, map[string]any{"slug": slug}, start)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, services.ErrCompanyNotFound
		}
		return nil, services.WrapInternal("failed to get company", err)
	}

	return company, nil
}

// List retrieves companies with pagination
func (r *CompanyRepository) List(ctx context.Context, limit, offset int) ([]*models.Company, error) {
	query := `
		SELECT id, name, slug, active, created_at, updated_at
		FROM companies
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	start := time.Now()
	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, limit, offset)
	recordQuery(ctx, query, map[string]any{"limit": limit, "offset": offset}, start)
	if err != nil {
		return nil, services.WrapInternal("failed to list companies", err)
	}
	defer rows.Close()

	var companies []*models.Company
	for rows.Next() {
		company := &models.Company{}
		if err := rows.Scan(
			&company.ID,
			&company.Name,
			&company.Slug,
			&company.Active,
			&company.CreatedAt,
			&company.UpdatedAt,
		); err != nil {
			return nil, services.WrapInternal("failed to scan company", err)
		}
		companies = append(companies, company)
	}

	if err := rows.Err(); err != nil {
		return nil, services.WrapInternal("failed to iterate companies", err)
	}

	return companies, nil
}

// Update updates a company
func (r *CompanyRepository) Update(ctx context.Context, company *models.Company) error {
	query := `
		UPDATE companies
		SET name = $2, slug = $3, active = $4, updated_at = $5
		WHERE id = $1
	`

	start := time.Now()
	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		company.ID,
		company.Name,
		company.Slug,
		company.Active,
		time.Now(),
	)
	recordQuery(ctx, query, map[string]any{"id": company.ID.String()}, start)

	if err != nil {
		return services.WrapInternal("failed to update company", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return services.WrapInternal("failed to check update result", err)
	}
	if rows == 0 {
		return services.ErrCompanyNotFound
	}

	return nil
}

// Delete deletes a company
func (r *CompanyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM companies WHERE id = $1`

	start := time.Now()
	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, id)
	recordQuery(ctx, query, map[string]any{"id": id.String()}, start)

	if err != nil {
		return services.WrapInternal("failed to delete company", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return services.WrapInternal("failed to check delete result", err)
	}
	if rows == 0 {
		return services.ErrCompanyNotFound
	}

	r.logger.Debug("company deleted", zap.String("id", id.String()))
	return nil
}
