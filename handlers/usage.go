package handlers

import (
	"net/http"

	"github.com/learnloop/backend/app"
	"github.com/learnloop/backend/middleware"
	"github.com/learnloop/backend/utils"
)

// UsageSummaryResponse is the body for GET /api/v1/usage/summary
type UsageSummaryResponse struct {
	CompanyID   string `json:"company_id"`
	TotalTokens int64  `json:"total_tokens"`
}

// GetUsageSummaryHandler returns the caller's company token total
func GetUsageSummaryHandler(deps *app.Dependencies) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		companyID := middleware.GetCompanyIDFromContext(r.Context())
		total, err := deps.UsageRecorder.SumForCompany(r.Context(), companyID)
		if err != nil {
			return err
		}
		return utils.WriteOK(w, UsageSummaryResponse{
			CompanyID:   companyID.String(),
			TotalTokens: total,
		})
	}
}

// ListUsageHandler lists the caller's company usage records
func ListUsageHandler(deps *app.Dependencies) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		limit, offset := pagination(r)
		companyID := middleware.GetCompanyIDFromContext(r.Context())
		records, err := deps.UsageRecorder.ListForCompany(r.Context(), companyID, limit, offset)
		if err != nil {
			return err
		}
		return utils.WriteOK(w, records)
	}
}
