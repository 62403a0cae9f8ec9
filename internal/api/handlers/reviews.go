package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/donaldgifford/rental-gateway/internal/places"
	domain "github.com/donaldgifford/rental-gateway/pkg/types"
)

// defaultReviewsMaxAge matches the review cache TTL.
const defaultReviewsMaxAge = 10 * time.Minute

// ReviewsHandler serves place reviews.
type ReviewsHandler struct {
	client places.ReviewsClient
	maxAge time.Duration
}

// ReviewsOption configures the ReviewsHandler.
type ReviewsOption func(*ReviewsHandler)

// WithReviewsMaxAge sets the Cache-Control max-age of review responses.
func WithReviewsMaxAge(d time.Duration) ReviewsOption {
	return func(h *ReviewsHandler) {
		h.maxAge = d
	}
}

// NewReviewsHandler creates a new ReviewsHandler.
func NewReviewsHandler(c places.ReviewsClient, opts ...ReviewsOption) *ReviewsHandler {
	h := &ReviewsHandler{client: c, maxAge: defaultReviewsMaxAge}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ReviewsInput is the request for place reviews.
type ReviewsInput struct {
	PlaceID  string `query:"placeId"  required:"true" example:"ChIJN1t_tDeuEmsRUsoyG83frY4" doc:"Google Places place ID"`
	Language string `query:"language"                 example:"en"                          doc:"Review language; defaults to the configured language"`
}

// ReviewsOutput is the response for the reviews endpoint.
type ReviewsOutput struct {
	CacheControl string `header:"Cache-Control"`
	Body         domain.ReviewSummary
}

// GetReviews returns the rating and recent reviews of a place.
func (h *ReviewsHandler) GetReviews(
	ctx context.Context,
	input *ReviewsInput,
) (*ReviewsOutput, error) {
	summary, err := h.client.GetReviews(ctx, input.PlaceID, input.Language)
	if err != nil {
		var vErr *domain.ValidationError
		switch {
		case errors.As(err, &vErr):
			return nil, huma.Error422UnprocessableEntity(
				"invalid reviews request",
				&huma.ErrorDetail{Location: vErr.Field, Message: vErr.Reason},
			)
		case errors.Is(err, places.ErrMissingAPIKey):
			return nil, huma.Error500InternalServerError("reviews provider is not configured")
		default:
			return nil, huma.Error502BadGateway("fetching reviews: " + err.Error())
		}
	}

	out := &ReviewsOutput{
		CacheControl: "public, max-age=" + strconv.Itoa(int(h.maxAge.Seconds())),
		Body:         *summary,
	}
	if out.Body.Reviews == nil {
		out.Body.Reviews = []domain.Review{}
	}
	return out, nil
}

// RegisterReviewsRoutes registers the reviews endpoint with the Huma API.
func RegisterReviewsRoutes(api huma.API, h *ReviewsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "get-reviews",
		Method:      http.MethodGet,
		Path:        "/api/v1/reviews",
		Summary:     "Get place reviews",
		Description: "Returns the aggregate rating, review count, and recent reviews of a place from Google Places.",
		Tags:        []string{"reviews"},
		Errors: []int{
			http.StatusUnprocessableEntity,
			http.StatusInternalServerError,
			http.StatusBadGateway,
		},
	}, h.GetReviews)
}
