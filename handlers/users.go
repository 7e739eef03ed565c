package handlers

import (
	"net/http"

	"github.com/learnloop/backend/app"
	"github.com/learnloop/backend/middleware"
	"github.com/learnloop/backend/models"
	"github.com/learnloop/backend/services"
	"github.com/learnloop/backend/utils"
)

// CreateUserRequest is the body for POST /api/v1/users
type CreateUserRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required,min=1,max=255"`
	Role  string `json:"role" validate:"required,oneof=admin instructor learner"`
}

// UpdateUserRequest is the body for PUT /api/v1/users/{id}
type UpdateUserRequest struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
	Role string `json:"role" validate:"required,oneof=admin instructor learner"`
}

// CurrentUserResponse is the body for GET /api/v1/users/me
type CurrentUserResponse struct {
	Sub       string `json:"sub"`
	Email     string `json:"email"`
	CompanyID string `json:"company_id"`
	Role      string `json:"role"`
}

// GetCurrentUserHandler returns the authenticated principal from JWT claims
func GetCurrentUserHandler(deps *app.Dependencies) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		claims := middleware.GetClaimsFromContext(r.Context())
		if claims == nil {
			return services.ErrUnauthorized
		}
		return utils.WriteOK(w, CurrentUserResponse{
			Sub:       claims.Sub,
			Email:     claims.Email,
			CompanyID: claims.CompanyID,
			Role:      claims.Role,
		})
	}
}

// CreateUserHandler registers a user in the caller's company
func CreateUserHandler(deps *app.Dependencies) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		var req CreateUserRequest
		if err := decodeJSON(r, &req); err != nil {
			return err
		}
		companyID := middleware.GetCompanyIDFromContext(r.Context())
		user, err := deps.UserService.Create(r.Context(), companyID, req.Email, req.Name, models.UserRole(req.Role))
		if err != nil {
			return err
		}
		return utils.WriteCreated(w, user)
	}
}

// GetUserHandler fetches one user in the caller's company
func GetUserHandler(deps *app.Dependencies) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		id, err := pathUUID(r, "id")
		if err != nil {
			return err
		}
		companyID := middleware.GetCompanyIDFromContext(r.Context())
		user, err := deps.UserService.Get(r.Context(), companyID, id)
		if err != nil {
			return err
		}
		return utils.WriteOK(w, user)
	}
}

// ListUsersHandler lists the caller's company users
func ListUsersHandler(deps *app.Dependencies) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		limit, offset := pagination(r)
		companyID := middleware.GetCompanyIDFromContext(r.Context())
		users, err := deps.UserService.List(r.Context(), companyID, limit, offset)
		if err != nil {
			return err
		}
		return utils.WriteOK(w, users)
	}
}

// UpdateUserHandler updates a user's name and role
func UpdateUserHandler(deps *app.Dependencies) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		id, err := pathUUID(r, "id")
		if err != nil {
			return err
		}
		var req UpdateUserRequest
		if err := decodeJSON(r, &req); err != nil {
			return err
		}
		companyID := middleware.GetCompanyIDFromContext(r.Context())
		user, err := deps.UserService.Update(r.Context(), companyID, id, req.Name, models.UserRole(req.Role))
		if err != nil {
			return err
		}
		return utils.WriteOK(w, user)
	}
}
