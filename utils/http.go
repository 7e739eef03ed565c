package utils

import (
	"encoding/json"
	"net/http"
)

// GenericFailureDetail is the only message ever shown for unexpected faults.
const GenericFailureDetail = "An unexpected error occurred. Please try again or contact support with your request ID."

// FailureResponse is the single externally visible failure shape. Detail is
// either the expected failure's pre-approved message or a fixed generic one;
// RequestID lets users quote the failure back to support. Nothing else ever
// crosses this boundary.
type FailureResponse struct {
	Detail    string  `json:"detail"`
	RequestID *string `json:"request_id"`
}

// SuccessResponse represents a generic success response
type SuccessResponse struct {
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return nil
	}

	return json.NewEncoder(w).Encode(data)
}

// WriteOK writes a 200 OK response with optional data
func WriteOK(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusOK, SuccessResponse{Data: data})
}

// WriteCreated writes a 201 Created response with optional data
func WriteCreated(w http.ResponseWriter, data interface{}) error {
	return WriteJSON(w, http.StatusCreated, SuccessResponse{Data: data})
}

// WriteNoContent writes a 204 No Content response
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteFailure writes the uniform failure body. requestID may be empty, in
// which case the field is serialized as null.
func WriteFailure(w http.ResponseWriter, status int, detail, requestID string) error {
	var rid *string
	if requestID != "" {
		rid = &requestID
	}
	return WriteJSON(w, status, FailureResponse{
		Detail:    detail,
		RequestID: rid,
	})
}
