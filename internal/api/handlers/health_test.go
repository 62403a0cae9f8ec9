package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/rental-gateway/internal/api/handlers"
	"github.com/donaldgifford/rental-gateway/internal/guesty"
)

func TestHealthz(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "returns 200 ok",
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ok"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := handlers.NewHealthHandler()

			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := h.Healthz(c)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestReadyz(t *testing.T) {
	t.Parallel()

	ok := handlers.ReadinessFunc(func(context.Context) error { return nil })
	down := handlers.ReadinessFunc(func(context.Context) error {
		return errors.New("connection refused")
	})

	tests := []struct {
		name       string
		checks     []handlers.ReadinessChecker
		wantStatus int
		wantBody   string
	}{
		{
			name:       "returns 200 with no checks",
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ready"}`,
		},
		{
			name:       "returns 200 when every check succeeds",
			checks:     []handlers.ReadinessChecker{ok, ok},
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ready"}`,
		},
		{
			name:       "returns 503 when the cache ping fails",
			checks:     []handlers.ReadinessChecker{ok, down},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `{"status":"unavailable","reason":"connection refused"}`,
		},
		{
			name:       "returns 503 when no pricing source is configured",
			checks:     []handlers.ReadinessChecker{guesty.NewGateway()},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `{"status":"unavailable","reason":"no pricing endpoint configured"}`,
		},
		{
			name: "returns 200 with a calendar source",
			checks: []handlers.ReadinessChecker{guesty.NewGateway(
				guesty.WithCalendarEndpoint("http://calendar.invalid", guesty.NewTokenBroker("id", "secret", guesty.ScopeOpenAPI)),
			)},
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ready"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := handlers.NewHealthHandler(tt.checks...)

			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/readyz", http.NoBody)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := h.Readyz(c)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}
