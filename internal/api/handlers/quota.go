package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/rental-gateway/internal/guesty"
)

// QuotaHandler provides the outbound pricing quota status endpoint.
type QuotaHandler struct {
	rl *guesty.RateLimiter
}

// NewQuotaHandler creates a new QuotaHandler.
func NewQuotaHandler(rl *guesty.RateLimiter) *QuotaHandler {
	return &QuotaHandler{rl: rl}
}

// QuotaOutput is the response body for the quota endpoint.
type QuotaOutput struct {
	Body struct {
		DailyLimit int64     `json:"daily_limit" example:"10000"                doc:"Configured daily pricing call limit"`
		DailyUsed  int64     `json:"daily_used"  example:"142"                  doc:"Pricing calls used in the current 24-hour window"`
		Remaining  int64     `json:"remaining"   example:"9858"                 doc:"Pricing calls remaining in the current window"`
		ResetAt    time.Time `json:"reset_at"    example:"2025-06-16T14:30:00Z" doc:"When the current 24-hour window expires"`
	}
}

// GetQuota returns the current outbound quota status.
func (h *QuotaHandler) GetQuota(_ context.Context, _ *struct{}) (*QuotaOutput, error) {
	resp := &QuotaOutput{}
	if h.rl == nil {
		return resp, nil
	}

	u := h.rl.Usage()
	resp.Body.DailyLimit = u.Quota
	resp.Body.DailyUsed = u.Used
	resp.Body.Remaining = u.Remaining
	resp.Body.ResetAt = u.ResetAt

	return resp, nil
}

// RegisterQuotaRoutes registers the quota endpoint with the Huma API.
func RegisterQuotaRoutes(api huma.API, h *QuotaHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-quota",
		Method:      http.MethodGet,
		Path:        "/api/v1/quota",
		Summary:     "Get pricing API quota status",
		Description: "Returns the current daily pricing call usage, remaining quota, and window reset time.",
		Tags:        []string{"guesty"},
	}, h.GetQuota)
}
