package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/rental-gateway/internal/pricing"
	domain "github.com/donaldgifford/rental-gateway/pkg/types"
)

// Quoter prices a stay.
type Quoter interface {
	QuoteQuery(ctx context.Context, q domain.PricingQuery) (*pricing.Outcome, error)
}

// PricingHandler serves stay prices.
type PricingHandler struct {
	quoter Quoter
}

// NewPricingHandler creates a new PricingHandler.
func NewPricingHandler(q Quoter) *PricingHandler {
	return &PricingHandler{quoter: q}
}

// PricingQueryInput is the query-string form of a pricing request.
type PricingQueryInput struct {
	ListingID string `query:"listingId" required:"true" example:"64f1c0ffee"  doc:"Guesty listing ID"`
	CheckIn   string `query:"checkIn"   required:"true" example:"2025-03-01"  doc:"Check-in date (YYYY-MM-DD)"`
	CheckOut  string `query:"checkOut"  required:"true" example:"2025-03-04"  doc:"Check-out date (YYYY-MM-DD)"`
	Guests    int    `query:"guests"    default:"1"     minimum:"1"           doc:"Total guests, infants excluded"`
	Children  int    `query:"children"  minimum:"0"                           doc:"Children included in guests"`
	Infants   int    `query:"infants"   minimum:"0"                           doc:"Infants, not counted in guests"`
}

// PricingRequest is the JSON form of a pricing request.
type PricingRequest struct {
	ListingID string `json:"listing_id"         example:"64f1c0ffee" doc:"Guesty listing ID"`
	CheckIn   string `json:"check_in"           example:"2025-03-01" doc:"Check-in date (YYYY-MM-DD)"`
	CheckOut  string `json:"check_out"          example:"2025-03-04" doc:"Check-out date (YYYY-MM-DD)"`
	Guests    int    `json:"guests,omitempty"   example:"2"          doc:"Total guests, infants excluded; 0 means 1"`
	Children  int    `json:"children,omitempty" example:"0"          doc:"Children included in guests"`
	Infants   int    `json:"infants,omitempty"  example:"0"          doc:"Infants, not counted in guests"`
}

// PricingBodyInput wraps PricingRequest as a request body.
type PricingBodyInput struct {
	Body PricingRequest
}

// PricingResponse is the rendered outcome of a pricing request.
type PricingResponse struct {
	ListingID       string               `json:"listing_id"        example:"64f1c0ffee"`
	CheckIn         string               `json:"check_in"          example:"2025-03-01"`
	CheckOut        string               `json:"check_out"         example:"2025-03-04"`
	Guests          int                  `json:"guests"            example:"2"`
	Nights          int                  `json:"nights"            example:"3"`
	Status          pricing.Status       `json:"status"            example:"ok"         enum:"ok,unavailable,price_on_request,temporarily_unavailable"`
	Message         string               `json:"message,omitempty"                      doc:"Display text when no price is shown"`
	Days            []domain.NightlyRate `json:"days"`
	Totals          *domain.Totals       `json:"totals"`
	AveragePerNight *float64             `json:"average_per_night" example:"100"`
	Shape           domain.Shape         `json:"shape,omitempty"   example:"calendar"`
	Partial         bool                 `json:"partial"                                doc:"Some nights had no usable price"`
}

// PricingOutput is the response for both pricing endpoints.
type PricingOutput struct {
	Body PricingResponse
}

// GetPricing prices a stay from query parameters.
func (h *PricingHandler) GetPricing(
	ctx context.Context,
	input *PricingQueryInput,
) (*PricingOutput, error) {
	return h.quote(ctx, PricingRequest{
		ListingID: input.ListingID,
		CheckIn:   input.CheckIn,
		CheckOut:  input.CheckOut,
		Guests:    input.Guests,
		Children:  input.Children,
		Infants:   input.Infants,
	})
}

// PostPricing prices a stay from a JSON body.
func (h *PricingHandler) PostPricing(
	ctx context.Context,
	input *PricingBodyInput,
) (*PricingOutput, error) {
	return h.quote(ctx, input.Body)
}

func (h *PricingHandler) quote(ctx context.Context, req PricingRequest) (*PricingOutput, error) {
	q, err := domain.NewPricingQuery(req.ListingID, req.CheckIn, req.CheckOut, req.Guests)
	if err != nil {
		return nil, pricingError(err)
	}
	q.Children = req.Children
	q.Infants = req.Infants

	out, err := h.quoter.QuoteQuery(ctx, q)
	if err != nil {
		return nil, pricingError(err)
	}
	return &PricingOutput{Body: renderOutcome(out)}, nil
}

// pricingError maps the only errors a Quoter returns to HTTP problems.
func pricingError(err error) error {
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		return huma.Error422UnprocessableEntity(
			"invalid pricing request",
			&huma.ErrorDetail{Location: vErr.Field, Message: vErr.Reason},
		)
	}
	return huma.Error500InternalServerError("pricing failed: " + err.Error())
}

func renderOutcome(o *pricing.Outcome) PricingResponse {
	resp := PricingResponse{
		ListingID:       o.Query.ListingID,
		CheckIn:         o.Query.CheckIn.Format(domain.DateLayout),
		CheckOut:        o.Query.CheckOut.Format(domain.DateLayout),
		Guests:          o.Query.Guests,
		Nights:          o.Query.Nights(),
		Status:          o.Status,
		Message:         o.Message,
		Days:            []domain.NightlyRate{},
		AveragePerNight: o.AveragePerNight,
	}
	if o.Result != nil {
		if o.Result.Days != nil {
			resp.Days = o.Result.Days
		}
		resp.Totals = o.Result.Totals
		resp.Shape = o.Result.Shape
		resp.Partial = o.Result.Partial
	}
	return resp
}

// RegisterPricingRoutes registers the pricing endpoints with the Huma API.
func RegisterPricingRoutes(api huma.API, h *PricingHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-pricing",
		Method:      http.MethodGet,
		Path:        "/api/v1/pricing",
		Summary:     "Price a stay",
		Description: "Returns nightly rates and totals for a listing and date range. Upstream failures are reported in the status field, not as HTTP errors.",
		Tags:        []string{"pricing"},
		Errors:      []int{http.StatusUnprocessableEntity},
	}, h.GetPricing)

	huma.Register(api, huma.Operation{
		OperationID:   "post-pricing",
		Method:        http.MethodPost,
		Path:          "/api/v1/pricing",
		Summary:       "Price a stay (JSON body)",
		Description:   "Same as GET /api/v1/pricing with the request in a JSON body.",
		Tags:          []string{"pricing"},
		DefaultStatus: http.StatusOK,
		Errors:        []int{http.StatusUnprocessableEntity},
	}, h.PostPricing)
}
