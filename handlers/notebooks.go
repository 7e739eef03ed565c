package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/learnloop/backend/app"
	"github.com/learnloop/backend/middleware"
	"github.com/learnloop/backend/utils"
)

// CreateNotebookRequest is the body for POST /api/v1/notebooks
type CreateNotebookRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"max=2000"`
}

// UpdateNotebookRequest is the body for PUT /api/v1/notebooks/{id}
type UpdateNotebookRequest struct {
	Title       string `json:"title" validate:"required,min=1,max=255"`
	Description string `json:"description" validate:"max=2000"`
	Locked      bool   `json:"locked"`
}

// AssignNotebookRequest is the body for POST /api/v1/notebooks/{id}/assignments
type AssignNotebookRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
}

// ToggleAssignmentRequest is the body for PUT /api/v1/assignments/{id}
type ToggleAssignmentRequest struct {
	Enabled bool `json:"enabled"`
}

// CreateNotebookHandler creates a learning module in the caller's company
func CreateNotebookHandler(deps *app.Dependencies) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		var req CreateNotebookRequest
		if err := decodeJSON(r, &req); err != nil {
			return err
		}
		companyID := middleware.GetCompanyIDFromContext(r.Context())
		notebook, err := deps.NotebookService.Create(r.Context(), companyID, req.Title, req.Description)
		if err != nil {
			return err
		}
		return utils.WriteCreated(w, notebook)
	}
}

// GetNotebookHandler fetches one notebook in the caller's company
func GetNotebookHandler(deps *app.Dependencies) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		id, err := pathUUID(r, "id")
		if err != nil {
			return err
		}
		companyID := middleware.GetCompanyIDFromContext(r.Context())
		notebook, err := deps.NotebookService.Get(r.Context(), companyID, id)
		if err != nil {
			return err
		}
		return utils.WriteOK(w, notebook)
	}
}

// ListNotebooksHandler lists the caller's company notebooks
func ListNotebooksHandler(deps *app.Dependencies) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		limit, offset := pagination(r)
		companyID := middleware.GetCompanyIDFromContext(r.Context())
		notebooks, err := deps.NotebookService.List(r.Context(), companyID, limit, offset)
		if err != nil {
			return err
		}
		return utils.WriteOK(w, notebooks)
	}
}

// UpdateNotebookHandler updates a notebook. Locked notebooks only accept
// unlocking.
func UpdateNotebookHandler(deps *app.Dependencies) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		id, err := pathUUID(r, "id")
		if err != nil {
			return err
		}
		var req UpdateNotebookRequest
		if err := decodeJSON(r, &req); err != nil {
			return err
		}
		companyID := middleware.GetCompanyIDFromContext(r.Context())
		notebook, err := deps.NotebookService.Update(r.Context(), companyID, id, req.Title, req.Description, req.Locked)
		if err != nil {
			return err
		}
		return utils.WriteOK(w, notebook)
	}
}

// DeleteNotebookHandler removes a notebook and sweeps its assignments
func DeleteNotebookHandler(deps *app.Dependencies) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		id, err := pathUUID(r, "id")
		if err != nil {
			return err
		}
		companyID := middleware.GetCompanyIDFromContext(r.Context())
		if err := deps.NotebookService.Delete(r.Context(), companyID, id); err != nil {
			return err
		}
		utils.WriteNoContent(w)
		return nil
	}
}

// AssignNotebookHandler assigns a notebook to a user
func AssignNotebookHandler(deps *app.Dependencies) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		notebookID, err := pathUUID(r, "id")
		if err != nil {
			return err
		}
		var req AssignNotebookRequest
		if err := decodeJSON(r, &req); err != nil {
			return err
		}
		companyID := middleware.GetCompanyIDFromContext(r.Context())
		assignment, err := deps.NotebookService.Assign(r.Context(), companyID, notebookID, req.UserID)
		if err != nil {
			return err
		}
		return utils.WriteCreated(w, assignment)
	}
}

// ToggleAssignmentHandler enables or disables a module assignment
func ToggleAssignmentHandler(deps *app.Dependencies) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		assignmentID, err := pathUUID(r, "id")
		if err != nil {
			return err
		}
		var req ToggleAssignmentRequest
		if err := decodeJSON(r, &req); err != nil {
			return err
		}
		companyID := middleware.GetCompanyIDFromContext(r.Context())
		if err := deps.NotebookService.Toggle(r.Context(), companyID, assignmentID, req.Enabled); err != nil {
			return err
		}
		utils.WriteNoContent(w)
		return nil
	}
}

// ListAssignmentsHandler lists a user's module assignments
func ListAssignmentsHandler(deps *app.Dependencies) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		userID, err := pathUUID(r, "id")
		if err != nil {
			return err
		}
		companyID := middleware.GetCompanyIDFromContext(r.Context())
		assignments, err := deps.NotebookService.ListAssignments(r.Context(), companyID, userID)
		if err != nil {
			return err
		}
		return utils.WriteOK(w, assignments)
	}
}
