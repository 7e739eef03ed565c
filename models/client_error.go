package models

// ClientErrorReport is a frontend-reported failure, accepted by the error
// ingress endpoint and re-emitted through the structured log emitter. It is
// never persisted.
type ClientErrorReport struct {
	Message   string `json:"message" validate:"required"`
	Stack     string `json:"stack,omitempty"`
	URL       string `json:"url" validate:"required"`
	UserAgent string `json:"user_agent" validate:"required"`
	RequestID string `json:"request_id,omitempty"`
	UserID    string `json:"user_id,omitempty"`
	Component string `json:"component,omitempty"`
	ErrorType string `json:"error_type,omitempty"`
}
