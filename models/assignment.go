package models

import (
	"time"

	"github.com/google/uuid"
)

// ModuleAssignment links a notebook to a user within a company. Toggling the
// Enabled flag controls whether the user currently sees the module.
type ModuleAssignment struct {
	ID         uuid.UUID `json:"id" db:"id"`
	CompanyID  uuid.UUID `json:"company_id" db:"company_id"`
	NotebookID uuid.UUID `json:"notebook_id" db:"notebook_id"`
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	Enabled    bool      `json:"enabled" db:"enabled"`
	AssignedAt time.Time `json:"assigned_at" db:"assigned_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the ModuleAssignment model
func (ModuleAssignment) TableName() string {
	return "module_assignments"
}

// NewModuleAssignment creates a new enabled assignment
func NewModuleAssignment(companyID, notebookID, userID uuid.UUID) *ModuleAssignment {
	now := time.Now()
	return &ModuleAssignment{
		ID:         uuid.New(),
		CompanyID:  companyID,
		NotebookID: notebookID,
		UserID:     userID,
		Enabled:    true,
		AssignedAt: now,
		UpdatedAt:  now,
	}
}
