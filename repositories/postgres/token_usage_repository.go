package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/learnloop/backend/models"
	"github.com/learnloop/backend/repositories"
	"github.com/learnloop/backend/services"
	"go.uber.org/zap"
)

// TokenUsageRepository implements the repositories.TokenUsageRepository interface
type TokenUsageRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewTokenUsageRepository creates a new token usage repository
func NewTokenUsageRepository(db *DB, logger *zap.Logger) repositories.TokenUsageRepository {
	return &TokenUsageRepository{
		db:     db,
		logger: logger,
	}
}

// Insert inserts a new usage record
func (r *TokenUsageRepository) Insert(ctx context.Context, usage *models.TokenUsage) error {
	query := `
		INSERT INTO token_usage (id, company_id, user_id, request_id, model, prompt_tokens, completion_tokens, total_tokens, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	start := time.Now()
	executor := GetExecutor(ctx, r.db)
	_, err := executor.ExecContext(ctx, query,
		usage.ID,
		usage.CompanyID,
		usage.UserID,
		usage.RequestID,
		usage.Model,
		usage.PromptTokens,
		usage.CompletionTokens,
		usage.TotalTokens,
		usage.CreatedAt,
	)
	recordQuery(ctx, query, map[string]any{
		"id":         usage.ID.String(),
		"company_id": usage.CompanyID.String(),
		"model":      usage.Model,
	}, start)

	if err != nil {
		return services.WrapInternal("failed to insert token usage", err)
	}

	return nil
}

// SumByCompany returns the total tokens consumed by a company
func (r *TokenUsageRepository) SumByCompany(ctx context.Context, companyID uuid.UUID) (int64, error) {
	query := `
		SELECT COALESCE(SUM(total_tokens), 0)
		FROM token_usage
		WHERE company_id = $1
	`

	start := time.Now()
	executor := GetExecutor(ctx, r.db)

	var total int64
	err := executor.QueryRowContext(ctx, query, companyID).Scan(&total)
	recordQuery(ctx, query, map[string]any{"company_id": companyID.String()}, start)

	if err != nil {
		return 0, services.WrapInternal("failed to sum token usage", err)
	}

	return total, nil
}

// DeleteByCompany removes a company's usage history
func (r *TokenUsageRepository) DeleteByCompany(ctx context.Context, companyID uuid.UUID) (int64, error) {
	query := `DELETE FROM token_usage WHERE company_id = $1`

	start := time.Now()
	executor := GetExecutor(ctx, r.db)
	result, err := executor.ExecContext(ctx, query, companyID)
	recordQuery(ctx, query, map[string]any{"company_id": companyID.String()}, start)

	if err != nil {
		return 0, services.WrapInternal("failed to delete token usage", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, services.WrapInternal("failed to check delete result", err)
	}

	r.logger.Debug("token usage deleted for company",
		zap.String("company_id", companyID.String()),
		zap.Int64("count", rows))
	return rows, nil
}

// ListByCompany retrieves usage records for a company with pagination
func (r *TokenUsageRepository) ListByCompany(ctx context.Context, companyID uuid.UUID, limit, offset int) ([]*models.TokenUsage, error) {
	query := `
		SELECT id, company_id, user_id, request_id, model, prompt_tokens, completion_tokens, total_tokens, created_at
		FROM token_usage
		WHERE company_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	start := time.Now()
	executor := GetExecutor(ctx, r.db)
	rows, err := executor.QueryContext(ctx, query, companyID, limit, offset)
	recordQuery(ctx, query, map[string]any{"company_id": companyID.String(), "limit": limit, "offset": offset}, start)
	if err != nil {
		return nil, services.WrapInternal("failed to list token usage", err)
	}
	defer rows.Close()

	var records []*models.TokenUsage
	for rows.Next() {
		usage := &models.TokenUsage{}
		if err := rows.Scan(
			&usage.ID,
			&usage.CompanyID,
			&usage.UserID,
			&usage.RequestID,
			&usage.Model,
			&usage.PromptTokens,
			&usage.CompletionTokens,
			&usage.TotalTokens,
			&usage.CreatedAt,
		); err != nil {
			return nil, services.WrapInternal("failed to scan token usage", err)
		}
		records = append(records, usage)
	}

	if err := rows.Err(); err != nil {
		return nil, services.WrapInternal("failed to iterate token usage", err)
	}

	return records, nil
}
