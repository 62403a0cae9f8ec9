// Package handlers implements HTTP handlers for the rental-gateway API.
package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ReadinessChecker reports whether a dependency can serve traffic.
type ReadinessChecker interface {
	Ready(ctx context.Context) error
}

// ReadinessFunc adapts a plain function to ReadinessChecker.
type ReadinessFunc func(ctx context.Context) error

// Ready calls f.
func (f ReadinessFunc) Ready(ctx context.Context) error {
	return f(ctx)
}

// HealthHandler provides health and readiness endpoints.
type HealthHandler struct {
	checks []ReadinessChecker
}

// NewHealthHandler creates a new HealthHandler. Readyz fails if any of the
// checks fail.
func NewHealthHandler(checks ...ReadinessChecker) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Healthz returns 200 if the process is running.
//
// @Summary Liveness check
// @Description Returns 200 if the process is running.
// @Tags health
// @Produce json
// @Success 200 {object} StatusResponse
// @Router /healthz [get]
func (*HealthHandler) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, StatusResponse{Status: "ok"})
}

// Readyz returns 200 if a pricing source is configured and the review
// cache is reachable, 503 otherwise.
//
// @Summary Readiness check
// @Description Returns 200 if every dependency is ready, 503 otherwise.
// @Tags health
// @Produce json
// @Success 200 {object} StatusResponse
// @Failure 503 {object} StatusResponse
// @Router /readyz [get]
func (h *HealthHandler) Readyz(c echo.Context) error {
	for _, check := range h.checks {
		if err := check.Ready(c.Request().Context()); err != nil {
			return c.JSON(
				http.StatusServiceUnavailable,
				StatusResponse{Status: "unavailable", Reason: err.Error()},
			)
		}
	}
	return c.JSON(http.StatusOK, StatusResponse{Status: "ready"})
}
