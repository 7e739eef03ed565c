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

// UserRepository implements the repositories.UserRepository interface
type UserRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB, logger *zap.Logger) repositories.UserRepository {
	return &UserRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, name, company_id, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	start := time.Now()
	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		user.CompanyID,
		user.Role,
		user.CreatedAt,
		user.UpdatedAt,
	)
	recordQuery(ctx, query, map[string]any{"id": user.ID.String(), "company_id": user.CompanyID.String()}, start)

	if err != nil {
		return services.WrapInternal("failed to create user", err)
	}

	r.logger.Debug("user created", zap.String("id", user.ID.String()), zap.String("email", user.Email))
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `
		SELECT id, email, name, company_id, role, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	start := time.Now()
	executor := GetExecutor(ctx, r.db)
	user := &models.User{}

	err := executor.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.CompanyID,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	recordQuery(ctx, query, map[string]any{"id": id.String()}, start)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, services.ErrUserNotFound
		}
		return nil, services.WrapInternal("failed to get user", err)
	}

	return user, nil
}

// GetByEmail retrieves a user by email within a company
func (r *UserRepository) GetByEmail(ctx context.Context, companyID uuid.UUID, email string) (*models.User, error) {
	query := `
		SELECT id, email, name, company_id, role, created_at, updated_at
		FROM users
		WHERE company_id = $1 AND email = $2
	`

	start := time.Now()
	executor := GetExecutor(ctx, r.db)
	user := &models.User{}

	err := executor.QueryRowContext(ctx, query, companyID, email).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.CompanyID,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	recordQuery(ctx, query, map[string]any{"company_id": companyID.String(), "email": email}, start)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, services.ErrUserNotFound
		}
		return nil, services.WrapInternal("failed to get user", err)
	}

	return user, nil
}

// ListByCompany retrieves users for a company with pagination
func (r *UserRepository) ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.User, error) {
	query := `
		SELECT id, email, name, company_id, role, created_at, updated_at
		FROM users
		WHERE company_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	start := time.Now()
	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, companyID, limit, offset)
	recordQuery(ctx, query, map[string]any{"company_id": companyID.String(), "limit": limit, "offset": offset}, start)
	if err != nil {
		return nil, services.WrapInternal("failed to list users", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		if err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.Name,
			&user.CompanyID,
			&user.Role,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, services.WrapInternal("failed to scan user", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, services.WrapInternal("failed to iterate users", err)
	}

	return users, nil
}

// Update updates a user
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET email = $2, name = $3, role = $4, updated_at = $5
		WHERE id = $1
	`

	start := time.Now()
	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		user.Role,
		time.Now(),
	)
	recordQuery(ctx, query, map[string]any{"id": user.ID.String()}, start)

	if err != nil {
		return services.WrapInternal("failed to update user", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return services.WrapInternal("failed to check update result", err)
	}
	if rows == 0 {
		return services.ErrUserNotFound
	}

	return nil
}

// DeleteByCompany deletes all users belonging to a company
func (r *UserRepository) DeleteByCompany(ctx context.Context, companyID uuid.UUID) (int64, error) {
	query := `DELETE FROM users WHERE company_id = $1`

	start := time.Now()
	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, companyID)
	recordQuery(ctx, query, map[string]any{"company_id": companyID.String()}, start)

	if err != nil {
		return 0, services.WrapInternal("failed to delete users", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, services.WrapInternal("failed to check delete result", err)
	}

	r.logger.Debug("users deleted for company",
		zap.String("company_id", companyID.String()),
		zap.Int64("count", rows))
	return rows, nil
}
