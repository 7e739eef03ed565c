// Package handlers contains the HTTP layer: thin request parsers that call
// services and route every error through the failure boundary.
package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/learnloop/backend/services"
	"github.com/learnloop/backend/utils"
)

// decodeJSON parses the request body into dst and validates it.
func decodeJSON(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return services.NewDomainError(services.ErrorTypeValidation, "invalid request body", err)
	}
	if err := utils.ValidateStruct(dst); err != nil {
		return HandleValidationError(err)
	}
	return nil
}

// pathUUID parses a UUID path parameter.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, services.ErrInvalidInput.WithDetail(name, "must be a valid UUID")
	}
	return id, nil
}

// pagination extracts limit/offset query parameters with defaults.
func pagination(r *http.Request) (limit, offset int) {
	limit, offset = 50, 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}
