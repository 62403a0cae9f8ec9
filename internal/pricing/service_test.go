package pricing_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/rental-gateway/internal/guesty"
	"github.com/donaldgifford/rental-gateway/internal/guesty/mocks"
	"github.com/donaldgifford/rental-gateway/internal/pricing"
	domain "github.com/donaldgifford/rental-gateway/pkg/types"
)

func calendarResult() *domain.PricingResult {
	return &domain.PricingResult{
		ListingID: "listing-1",
		Days: []domain.NightlyRate{
			{Date: "2025-03-01", Price: 100, Currency: "EUR"},
			{Date: "2025-03-02", Price: 110, Currency: "EUR"},
			{Date: "2025-03-03", Price: 90, Currency: "EUR"},
		},
		Totals: &domain.Totals{
			Nights:   3,
			Subtotal: 300,
			Total:    300,
			Currency: "EUR",
		},
		Shape: domain.ShapeCalendar,
	}
}

func TestService_Quote(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		result      *domain.PricingResult
		err         error
		wantStatus  pricing.Status
		wantMessage string
		wantAvg     *float64
	}{
		{
			name:       "priced stay",
			result:     calendarResult(),
			wantStatus: pricing.StatusOK,
			wantAvg:    ptr(100.0),
		},
		{
			name:        "no pricing",
			result:      &domain.PricingResult{ListingID: "listing-1", Days: []domain.NightlyRate{}},
			wantStatus:  pricing.StatusUnavailable,
			wantMessage: pricing.MessageUnavailable,
		},
		{
			name:        "parse error",
			err:         &guesty.ParseError{Source: guesty.SourceCalendar, Err: errors.New("bad json")},
			wantStatus:  pricing.StatusUnavailable,
			wantMessage: pricing.MessageUnavailable,
		},
		{
			name:        "mixed currency",
			err:         &guesty.ParseError{Source: guesty.SourceQuote, Err: guesty.ErrMixedCurrency},
			wantStatus:  pricing.StatusUnavailable,
			wantMessage: pricing.MessageUnavailable,
		},
		{
			name: "upstream error",
			err: &guesty.UpstreamError{
				Source:     guesty.SourceCalendar,
				StatusCode: http.StatusInternalServerError,
				Body:       "boom",
			},
			wantStatus:  pricing.StatusPriceOnRequest,
			wantMessage: pricing.MessagePriceOnRequest,
		},
		{
			name:        "network error after retry",
			err:         &guesty.UpstreamError{Source: guesty.SourceCalendar, Err: errors.New("connection refused")},
			wantStatus:  pricing.StatusPriceOnRequest,
			wantMessage: pricing.MessagePriceOnRequest,
		},
		{
			name:        "missing credentials",
			err:         fmt.Errorf("getting auth token: %w", &guesty.ConfigError{Reason: "missing client id"}),
			wantStatus:  pricing.StatusTemporarilyUnavailable,
			wantMessage: pricing.MessageTemporarilyUnavailable,
		},
		{
			name: "token endpoint backoff",
			err: fmt.Errorf("getting auth token: %w", &guesty.UpstreamAuthError{
				Scope:      guesty.ScopeOpenAPI,
				StatusCode: http.StatusTooManyRequests,
				Err:        guesty.ErrRateLimited,
			}),
			wantStatus:  pricing.StatusTemporarilyUnavailable,
			wantMessage: pricing.MessageTemporarilyUnavailable,
		},
		{
			name:        "malformed token response",
			err:         fmt.Errorf("getting auth token: %w", &guesty.ParseError{Source: guesty.SourceToken, Err: errors.New("eof")}),
			wantStatus:  pricing.StatusTemporarilyUnavailable,
			wantMessage: pricing.MessageTemporarilyUnavailable,
		},
		{
			name: "outbound quota exhausted",
			err: &guesty.UpstreamError{
				Source: guesty.SourceCalendar,
				Err:    fmt.Errorf("rate limit: %w", guesty.ErrQuotaExhausted),
			},
			wantStatus:  pricing.StatusTemporarilyUnavailable,
			wantMessage: pricing.MessageTemporarilyUnavailable,
		},
		{
			name:        "unclassified error",
			err:         errors.New("something else"),
			wantStatus:  pricing.StatusTemporarilyUnavailable,
			wantMessage: pricing.MessageTemporarilyUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client := mocks.NewMockPricingClient(t)
			client.EXPECT().
				GetPricing(mock.Anything, mock.AnythingOfType("domain.PricingQuery")).
				Return(tt.result, tt.err).
				Once()

			svc := pricing.NewService(client)
			out, err := svc.Quote(context.Background(), "listing-1", "2025-03-01", "2025-03-04", 2)
			require.NoError(t, err)
			require.NotNil(t, out)

			assert.Equal(t, tt.wantStatus, out.Status)
			assert.Equal(t, tt.wantMessage, out.Message)
			assert.Equal(t, "listing-1", out.Query.ListingID)
			assert.Equal(t, 3, out.Query.Nights())

			if tt.wantAvg == nil {
				assert.Nil(t, out.AveragePerNight)
			} else {
				require.NotNil(t, out.AveragePerNight)
				assert.InDelta(t, *tt.wantAvg, *out.AveragePerNight, 0.001)
			}
			if tt.err != nil {
				assert.Nil(t, out.Result)
			}
		})
	}
}

func TestService_Quote_ValidationError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		listingID string
		checkIn   string
		checkOut  string
		guests    int
		wantField string
	}{
		{name: "empty listing", listingID: " ", checkIn: "2025-03-01", checkOut: "2025-03-02", guests: 1, wantField: "listingId"},
		{name: "bad check-in", listingID: "l", checkIn: "03/01/2025", checkOut: "2025-03-02", guests: 1, wantField: "checkIn"},
		{name: "bad check-out", listingID: "l", checkIn: "2025-03-01", checkOut: "", guests: 1, wantField: "checkOut"},
		{name: "same day", listingID: "l", checkIn: "2025-03-01", checkOut: "2025-03-01", guests: 1, wantField: "checkOut"},
		{name: "reversed", listingID: "l", checkIn: "2025-03-05", checkOut: "2025-03-01", guests: 1, wantField: "checkOut"},
		{name: "negative guests", listingID: "l", checkIn: "2025-03-01", checkOut: "2025-03-02", guests: -1, wantField: "guests"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			// No expectations: the gateway must not be called.
			client := mocks.NewMockPricingClient(t)
			svc := pricing.NewService(client)

			out, err := svc.Quote(context.Background(), tt.listingID, tt.checkIn, tt.checkOut, tt.guests)
			assert.Nil(t, out)

			var vErr *domain.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantField, vErr.Field)
		})
	}
}

func TestService_Quote_DefaultsGuests(t *testing.T) {
	t.Parallel()

	client := mocks.NewMockPricingClient(t)
	client.EXPECT().
		GetPricing(mock.Anything, mock.MatchedBy(func(q domain.PricingQuery) bool {
			return q.Guests == 1
		})).
		Return(calendarResult(), nil).
		Once()

	svc := pricing.NewService(client)
	out, err := svc.Quote(context.Background(), "listing-1", "2025-03-01", "2025-03-04", 0)
	require.NoError(t, err)
	assert.Equal(t, pricing.StatusOK, out.Status)
}

func TestService_QuoteQuery_GatewayValidationError(t *testing.T) {
	t.Parallel()

	q, err := domain.NewPricingQuery("listing-1", "2025-03-01", "2025-03-04", 2)
	require.NoError(t, err)

	client := mocks.NewMockPricingClient(t)
	client.EXPECT().
		GetPricing(mock.Anything, q).
		Return(nil, &domain.ValidationError{Field: "listingId", Reason: "unknown"}).
		Once()

	_, err = pricing.NewService(client).QuoteQuery(context.Background(), q)
	var vErr *guesty.ValidationError
	require.ErrorAs(t, err, &vErr)
}

// End to end through a real broker and gateway against fake upstreams.
func TestService_EndToEnd(t *testing.T) {
	t.Parallel()

	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"e2e-token","expires_in":86400}`))
	}))
	defer tokenSrv.Close()

	calendarSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer e2e-token", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"data":{"days":[
			{"date":"2025-03-01","price":100,"currency":"EUR"},
			{"date":"2025-03-02","price":110,"currency":"EUR"},
			{"date":"2025-03-03","price":90,"currency":"EUR"}
		]}}`))
	}))
	defer calendarSrv.Close()

	broker := guesty.NewTokenBroker("id", "secret", guesty.ScopeOpenAPI, guesty.WithTokenURL(tokenSrv.URL))
	gw := guesty.NewGateway(guesty.WithCalendarEndpoint(calendarSrv.URL, broker))
	svc := pricing.NewService(gw)

	out, err := svc.Quote(context.Background(), "listing-1", "2025-03-01", "2025-03-04", 2)
	require.NoError(t, err)
	require.Equal(t, pricing.StatusOK, out.Status)
	require.NotNil(t, out.Result.Totals)

	assert.InDelta(t, 300, out.Result.Totals.Subtotal, 0.001)
	assert.InDelta(t, 300, out.Result.Totals.Total, 0.001)
	assert.Equal(t, "EUR", out.Result.Totals.Currency)
	assert.Len(t, out.Result.Days, 3)
	require.NotNil(t, out.AveragePerNight)
	assert.InDelta(t, 100, *out.AveragePerNight, 0.001)
}

func TestService_EndToEnd_MissingCredentials(t *testing.T) {
	t.Parallel()

	calendarSrv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("calendar must not be called without credentials")
	}))
	defer calendarSrv.Close()

	broker := guesty.NewTokenBroker("", "", guesty.ScopeOpenAPI)
	gw := guesty.NewGateway(guesty.WithCalendarEndpoint(calendarSrv.URL, broker))

	out, err := pricing.NewService(gw).Quote(context.Background(), "listing-1", "2025-03-01", "2025-03-04", 2)
	require.NoError(t, err)
	assert.Equal(t, pricing.StatusTemporarilyUnavailable, out.Status)
}

func ptr[T any](v T) *T { return &v }
