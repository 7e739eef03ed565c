package handlers

import (
	"net/http"

	"github.com/learnloop/backend/app"
	"github.com/learnloop/backend/utils"
)

// CreateCompanyRequest is the body for POST /api/v1/companies
type CreateCompanyRequest struct {
	Name string `json:"name" validate:"required,min=1,max=255"`
	Slug string `json:"slug" validate:"required"`
}

// UpdateCompanyRequest is the body for PUT /api/v1/companies/{id}
type UpdateCompanyRequest struct {
	Name   string `json:"name" validate:"required,min=1,max=255"`
	Active bool   `json:"active"`
}

// DeleteCompanyRequest is the body for DELETE /api/v1/companies/{id}
type DeleteCompanyRequest struct {
	Confirmed bool `json:"confirmed"`
}

// CreateCompanyHandler creates a new company tenant
func CreateCompanyHandler(deps *app.Dependencies) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		var req CreateCompanyRequest
		if err := decodeJSON(r, &req); err != nil {
			return err
		}
		company, err := deps.CompanyService.Create(r.Context(), req.Name, req.Slug)
		if err != nil {
			return err
		}
		return utils.WriteCreated(w, company)
	}
}

// GetCompanyHandler fetches one company by id
func GetCompanyHandler(deps *app.Dependencies) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		id, err := pathUUID(r, "id")
		if err != nil {
			return err
		}
		company, err := deps.CompanyService.Get(r.Context(), id)
		if err != nil {
			return err
		}
		return utils.WriteOK(w, company)
	}
}

// ListCompaniesHandler lists companies with pagination
func ListCompaniesHandler(deps *app.Dependencies) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		limit, offset := pagination(r)
		companies, err := deps.CompanyService.List(r.Context(), limit, offset)
		if err != nil {
			return err
		}
		return utils.WriteOK(w, companies)
	}
}

// UpdateCompanyHandler updates a company's name and active flag
func UpdateCompanyHandler(deps *app.Dependencies) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		id, err := pathUUID(r, "id")
		if err != nil {
			return err
		}
		var req UpdateCompanyRequest
		if err := decodeJSON(r, &req); err != nil {
			return err
		}
		company, err := deps.CompanyService.Update(r.Context(), id, req.Name, req.Active)
		if err != nil {
			return err
		}
		return utils.WriteOK(w, company)
	}
}

// DeleteCompanyHandler deletes a company and all dependent records. The
// request body must carry confirmed=true.
func DeleteCompanyHandler(deps *app.Dependencies) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		id, err := pathUUID(r, "id")
		if err != nil {
			return err
		}
		var req DeleteCompanyRequest
		if err := decodeJSON(r, &req); err != nil {
			return err
		}
		if err := deps.CompanyService.Delete(r.Context(), id, req.Confirmed); err != nil {
			return err
		}
		utils.WriteNoContent(w)
		return nil
	}
}
