package handlers

import (
	"net/http"

	"github.com/learnloop/backend/app"
	"github.com/learnloop/backend/models"
	"github.com/learnloop/backend/observability"
	"github.com/learnloop/backend/utils"
	"go.uber.org/zap"
)

// ReportClientErrorHandler accepts a frontend-reported failure and re-emits
// it through the structured log emitter at error severity. The report itself
// is never persisted; the response is 204 regardless of what the report says.
func ReportClientErrorHandler(deps *app.Dependencies) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		var report models.ClientErrorReport
		if err := decodeJSON(r, &report); err != nil {
			return err
		}

		sanitized := observability.Sanitize(map[string]any{
			"message":    report.Message,
			"stack":      report.Stack,
			"url":        report.URL,
			"user_agent": report.UserAgent,
			"component":  report.Component,
			"error_type": report.ErrorType,
		})

		fields := []observability.Field{
			zap.String("source", "client"),
			zap.Any("report", sanitized),
		}
		// The report may reference an earlier request than the one
		// delivering it.
		if report.RequestID != "" {
			fields = append(fields, zap.String("reported_request_id", report.RequestID))
		}
		if report.UserID != "" {
			fields = append(fields, zap.String("reported_user_id", report.UserID))
		}

		deps.Logger.Error(r.Context(), "client error reported", fields...)

		utils.WriteNoContent(w)
		return nil
	}
}
