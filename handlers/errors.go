package handlers

import (
	"fmt"
	"net/http"

	"github.com/learnloop/backend/observability"
	"github.com/learnloop/backend/services"
	"github.com/learnloop/backend/utils"
	"go.uber.org/zap"
)

// HandlerFunc is an http.HandlerFunc that may return an error instead of
// writing a failure response itself. Handlers stay thin: they parse, call a
// service, write the success body, and hand any error to the Boundary.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Boundary converts handler errors into the uniform failure response and
// decides how much diagnostic context each failure earns in the logs.
//
// Expected domain errors carry their own message to the client; only those
// mapping to a status at or above faultThreshold drain the operation buffer
// into the log entry. Anything else is an unknown failure: the client gets a
// fixed generic message, the log gets the error type, a stack, and the full
// drained buffer. Logging always happens before the response is written so a
// failed write can never lose the diagnostic record.
type Boundary struct {
	logger         *observability.Logger
	faultThreshold int
}

// NewBoundary creates a Boundary. faultThreshold is the lowest HTTP status
// treated as a server fault (typically 500).
func NewBoundary(logger *observability.Logger, faultThreshold int) *Boundary {
	if faultThreshold <= 0 {
		faultThreshold = http.StatusInternalServerError
	}
	return &Boundary{logger: logger, faultThreshold: faultThreshold}
}

// Wrap adapts an error-returning handler into an http.HandlerFunc.
func (b *Boundary) Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			b.Handle(w, r, err)
		}
	}
}

// Handle logs err and writes the failure response for it.
func (b *Boundary) Handle(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	requestID := observability.RequestIDFrom(ctx)

	if domainErr, ok := services.AsDomainError(err); ok {
		b.handleExpected(w, r, domainErr, requestID)
		return
	}
	b.handleUnknown(w, r, err, requestID)
}

// handleExpected maps a domain error to its status and pre-approved message.
func (b *Boundary) handleExpected(w http.ResponseWriter, r *http.Request, domainErr *services.DomainError, requestID string) {
	ctx := r.Context()
	status := domainErr.HTTPStatus()

	fields := []observability.Field{
		zap.Int("status_code", status),
		zap.String("error_type", string(domainErr.Type)),
		zap.String("path", r.URL.Path),
	}
	if len(domainErr.Details) > 0 {
		fields = append(fields, zap.Any("error_details", domainErr.Details))
	}

	if status >= b.faultThreshold {
		if buf := observability.BufferFrom(ctx); buf != nil {
			fields = append(fields, zap.Any("operations", buf.Flush()))
		}
		fields = append(fields, zap.Error(domainErr))
		b.logger.Error(ctx, "request failed: "+domainErr.Message, fields...)
	} else {
		// Client-attributable failure: note it, keep the buffer intact.
		if buf := observability.BufferFrom(ctx); buf != nil {
			fields = append(fields, zap.Int("buffer_size", buf.Size()))
		}
		b.logger.Warn(ctx, "request rejected: "+domainErr.Message, fields...)
	}

	if werr := utils.WriteFailure(w, status, domainErr.Message, requestID); werr != nil {
		b.logger.Error(ctx, "failed to write failure response", zap.Error(werr))
	}
}

// handleUnknown treats err as an unanticipated fault. The client only ever
// sees the generic detail; everything useful goes to the log.
func (b *Boundary) handleUnknown(w http.ResponseWriter, r *http.Request, err error, requestID string) {
	ctx := r.Context()

	fields := []observability.Field{
		zap.Int("status_code", http.StatusInternalServerError),
		zap.String("error_type", fmt.Sprintf("%T", err)),
		zap.String("path", r.URL.Path),
		zap.Error(err),
		zap.Stack("stack"),
	}
	if buf := observability.BufferFrom(ctx); buf != nil {
		fields = append(fields, zap.Any("operations", buf.Flush()))
	}
	b.logger.Error(ctx, "unhandled error in request", fields...)

	if werr := utils.WriteFailure(w, http.StatusInternalServerError, utils.GenericFailureDetail, requestID); werr != nil {
		b.logger.Error(ctx, "failed to write failure response", zap.Error(werr))
	}
}

// HandleValidationError maps request-body validation failures to 400 with
// per-field details folded into the domain error.
func HandleValidationError(err error) error {
	if utils.IsValidationError(err) {
		domainErr := services.NewDomainError(services.ErrorTypeValidation, "Validation failed", err)
		for field, msg := range utils.GetValidationFields(err) {
			domainErr = domainErr.WithDetail(field, msg)
		}
		return domainErr
	}
	return services.NewDomainError(services.ErrorTypeValidation, err.Error(), err)
}
