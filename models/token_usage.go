package models

import (
	"time"

	"github.com/google/uuid"
)

// TokenUsage records LLM token consumption for one request, attributed to a
// company and optionally a user. Written best-effort by a background recorder.
type TokenUsage struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	CompanyID        uuid.UUID  `json:"company_id" db:"company_id"`
	UserID           *uuid.UUID `json:"user_id,omitempty" db:"user_id"`
	RequestID        string     `json:"request_id" db:"request_id"`
	Model            string     `json:"model" db:"model"`
	PromptTokens     int        `json:"prompt_tokens" db:"prompt_tokens"`
	CompletionTokens int        `json:"completion_tokens" db:"completion_tokens"`
	TotalTokens      int        `json:"total_tokens" db:"total_tokens"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
}

// TableName returns the table name for the TokenUsage model
func (TokenUsage) TableName() string {
	return "token_usage"
}

// NewTokenUsage creates a new TokenUsage record
func NewTokenUsage(companyID uuid.UUID, userID *uuid.UUID, requestID, model string, promptTokens, completionTokens int) *TokenUsage {
	return &TokenUsage{
		ID:               uuid.New(),
		CompanyID:        companyID,
		UserID:           userID,
		RequestID:        requestID,
		Model:            model,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      promptTokens + completionTokens,
		CreatedAt:        time.Now(),
	}
}
