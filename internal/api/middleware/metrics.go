// Package middleware provides Echo middleware for rental-gateway.
package middleware

import (
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/donaldgifford/rental-gateway/internal/metrics"
)

// unmatchedRoute is the path label for requests no route matched, so
// scanners probing random URLs cannot grow the label set.
const unmatchedRoute = "unmatched"

// healthGauges maps probe paths to their up/down gauge. Probes and the
// scrape endpoint are kept out of the request histogram and counter.
var healthGauges = map[string]prometheus.Gauge{
	"/healthz": metrics.HealthzUp,
	"/readyz":  metrics.ReadyzUp,
}

// docsPrefixes are API documentation routes served by huma and the
// Swagger UI; they are not part of the gateway's traffic.
var docsPrefixes = []string{"/openapi", "/swagger", "/docs", "/schemas"}

// Metrics returns Echo middleware that records request duration and status
// labelled by route template. Probe paths update simple up/down gauges.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			urlPath := c.Request().URL.Path
			if gauge, ok := healthGauges[urlPath]; ok {
				err := next(c)
				setUp(gauge, c.Response().Status)
				return err
			}
			if skipped(urlPath) {
				return next(c)
			}

			start := time.Now()

			err := next(c)

			route := c.Path()
			if route == "" {
				route = unmatchedRoute
			}
			status := strconv.Itoa(c.Response().Status)
			method := c.Request().Method

			metrics.HTTPRequestDuration.
				WithLabelValues(method, route, status).
				Observe(time.Since(start).Seconds())
			metrics.HTTPRequestsTotal.
				WithLabelValues(method, route, status).
				Inc()

			return err
		}
	}
}

func skipped(path string) bool {
	if path == "/metrics" {
		return true
	}
	for _, prefix := range docsPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func setUp(gauge prometheus.Gauge, status int) {
	if status >= 200 && status < 300 {
		gauge.Set(1)
		return
	}
	gauge.Set(0)
}
