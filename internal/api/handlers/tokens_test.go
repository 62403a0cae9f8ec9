package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/rental-gateway/internal/api/handlers"
	"github.com/donaldgifford/rental-gateway/internal/guesty"
)

func newTestBrokers(t *testing.T) guesty.Brokers {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"access_token":"secret-token-value","expires_in":86400}`))
	}))
	t.Cleanup(srv.Close)

	return guesty.Brokers{
		guesty.ScopeOpenAPI: guesty.NewTokenBroker(
			"id", "secret", guesty.ScopeOpenAPI, guesty.WithTokenURL(srv.URL),
		),
		guesty.ScopeBookingEngine: guesty.NewTokenBroker(
			"id", "secret", guesty.ScopeBookingEngine, guesty.WithTokenURL(srv.URL),
		),
	}
}

type tokensBody struct {
	Brokers []struct {
		Scope     string `json:"scope"`
		State     string `json:"state"`
		ExpiresAt string `json:"expires_at"`
	} `json:"brokers"`
}

func TestListTokens(t *testing.T) {
	t.Parallel()

	brokers := newTestBrokers(t)
	_, err := brokers.Token(context.Background(), guesty.ScopeOpenAPI)
	require.NoError(t, err)

	_, api := humatest.New(t)
	handlers.RegisterTokenRoutes(api, handlers.NewTokensHandler(brokers))

	resp := api.Get("/api/v1/tokens")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.NotContains(t, resp.Body.String(), "secret-token-value")

	var body tokensBody
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Len(t, body.Brokers, 2)

	assert.Equal(t, guesty.ScopeBookingEngine, body.Brokers[0].Scope)
	assert.Equal(t, "empty", body.Brokers[0].State)
	assert.Empty(t, body.Brokers[0].ExpiresAt)

	assert.Equal(t, guesty.ScopeOpenAPI, body.Brokers[1].Scope)
	assert.Equal(t, "valid", body.Brokers[1].State)
	assert.NotEmpty(t, body.Brokers[1].ExpiresAt)
}

func TestListTokens_Empty(t *testing.T) {
	t.Parallel()

	_, api := humatest.New(t)
	handlers.RegisterTokenRoutes(api, handlers.NewTokensHandler(guesty.Brokers{}))

	resp := api.Get("/api/v1/tokens")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"brokers":[]}`, extractBody(t, resp.Body.Bytes()))
}

func TestInvalidateToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		scope      string
		wantStatus int
	}{
		{name: "known scope", scope: guesty.ScopeOpenAPI, wantStatus: http.StatusNoContent},
		{name: "unknown scope", scope: "nope", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			brokers := newTestBrokers(t)
			_, err := brokers.Token(context.Background(), guesty.ScopeOpenAPI)
			require.NoError(t, err)

			_, api := humatest.New(t)
			handlers.RegisterTokenRoutes(api, handlers.NewTokensHandler(brokers))

			resp := api.Delete("/api/v1/tokens/" + tt.scope)
			require.Equal(t, tt.wantStatus, resp.Code)

			if tt.wantStatus == http.StatusNoContent {
				assert.Equal(t, guesty.StateEmpty, brokers[guesty.ScopeOpenAPI].Status().State)
			}
		})
	}
}

// extractBody drops the $schema link huma adds to object responses.
func extractBody(t *testing.T, raw []byte) string {
	t.Helper()

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	delete(m, "$schema")
	out, err := json.Marshal(m)
	require.NoError(t, err)
	return string(out)
}
