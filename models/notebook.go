package models

import (
	"time"

	"github.com/google/uuid"
)

// Notebook represents a learning module: an ordered set of content a company
// can assign to its users.
type Notebook struct {
	ID          uuid.UUID `json:"id" db:"id"`
	CompanyID   uuid.UUID `json:"company_id" db:"company_id"`
	Title       string    `json:"title" db:"title"`
	Description string    `json:"description" db:"description"`
	Locked      bool      `json:"locked" db:"locked"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the Notebook model
func (Notebook) TableName() string {
	return "notebooks"
}

// NewNotebook creates a new Notebook instance
func NewNotebook(companyID uuid.UUID, title, description string) *Notebook {
	now := time.Now()
	return &Notebook{
		ID:          uuid.New(),
		CompanyID:   companyID,
		Title:       title,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
