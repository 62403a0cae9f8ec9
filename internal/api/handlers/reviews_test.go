package handlers_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/rental-gateway/internal/api/handlers"
	"github.com/donaldgifford/rental-gateway/internal/places"
	"github.com/donaldgifford/rental-gateway/internal/places/mocks"
	domain "github.com/donaldgifford/rental-gateway/pkg/types"
)

func TestGetReviews(t *testing.T) {
	t.Parallel()

	summary := &domain.ReviewSummary{
		Rating:     ptr(4.8),
		TotalCount: ptr(127),
		Reviews: []domain.Review{
			{AuthorName: "Anna", Rating: ptr(5.0), Text: "Lovely", Time: ptr(int64(1700000000))},
		},
	}

	client := mocks.NewMockReviewsClient(t)
	client.EXPECT().GetReviews(mock.Anything, "place-1", "nl").Return(summary, nil).Once()

	_, api := humatest.New(t)
	handlers.RegisterReviewsRoutes(api, handlers.NewReviewsHandler(client))

	resp := api.Get("/api/v1/reviews?placeId=place-1&language=nl")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "public, max-age=600", resp.Header().Get("Cache-Control"))

	var body domain.ReviewSummary
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.NotNil(t, body.Rating)
	assert.InDelta(t, 4.8, *body.Rating, 0)
	require.NotNil(t, body.TotalCount)
	assert.Equal(t, 127, *body.TotalCount)
	require.Len(t, body.Reviews, 1)
	assert.Equal(t, "Anna", body.Reviews[0].AuthorName)
}

func TestGetReviews_EmptyPlace(t *testing.T) {
	t.Parallel()

	client := mocks.NewMockReviewsClient(t)
	client.EXPECT().GetReviews(mock.Anything, "place-1", "").Return(&domain.ReviewSummary{}, nil).Once()

	_, api := humatest.New(t)
	handlers.RegisterReviewsRoutes(api, handlers.NewReviewsHandler(client, handlers.WithReviewsMaxAge(time.Hour)))

	resp := api.Get("/api/v1/reviews?placeId=place-1")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "public, max-age=3600", resp.Header().Get("Cache-Control"))
	assert.JSONEq(t, `{"rating":null,"total_count":null,"reviews":[]}`, extractBody(t, resp.Body.Bytes()))
}

func TestGetReviews_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		query      string
		err        error
		wantStatus int
		noCall     bool
	}{
		{
			name:       "missing place id",
			query:      "",
			wantStatus: http.StatusUnprocessableEntity,
			noCall:     true,
		},
		{
			name:       "blank place id",
			query:      "placeId=%20",
			err:        &domain.ValidationError{Field: "placeId", Reason: "must not be empty"},
			wantStatus: http.StatusUnprocessableEntity,
		},
		{
			name:       "missing api key",
			query:      "placeId=p",
			err:        places.ErrMissingAPIKey,
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "provider error",
			query:      "placeId=p",
			err:        &places.StatusError{StatusCode: http.StatusOK, Status: "REQUEST_DENIED"},
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "network error",
			query:      "placeId=p",
			err:        errors.New("connection refused"),
			wantStatus: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := mocks.NewMockReviewsClient(t)
			if !tt.noCall {
				client.EXPECT().
					GetReviews(mock.Anything, mock.Anything, mock.Anything).
					Return(nil, tt.err).
					Once()
			}

			_, api := humatest.New(t)
			handlers.RegisterReviewsRoutes(api, handlers.NewReviewsHandler(client))

			resp := api.Get("/api/v1/reviews?" + tt.query)
			assert.Equal(t, tt.wantStatus, resp.Code)
			assert.Empty(t, resp.Header().Get("Cache-Control"))
		})
	}
}
