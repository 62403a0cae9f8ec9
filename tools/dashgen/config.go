package main

import "errors"

// KnownMetrics is the set of metric names exported by rental-gateway plus
// recording rule names referenced in dashboards and alerts.
var KnownMetrics = map[string]bool{
	// HTTP metrics.
	"rgw_http_request_duration_seconds": true,
	"rgw_http_requests_total":           true,

	// Health metrics.
	"rgw_healthz_up": true,
	"rgw_readyz_up":  true,

	// Token broker metrics.
	"rgw_token_cache_hits_total":         true,
	"rgw_token_refreshes_total":          true,
	"rgw_token_refresh_failures_total":   true,
	"rgw_token_backoff_rejections_total": true,

	// Upstream pricing metrics.
	"rgw_upstream_requests_total":           true,
	"rgw_upstream_request_duration_seconds": true,
	"rgw_upstream_retries_total":            true,
	"rgw_upstream_quota_usage":              true,
	"rgw_upstream_quota_exhausted_total":    true,

	// Outcome metrics.
	"rgw_pricing_outcomes_total": true,
	"rgw_pricing_shapes_total":   true,
	"rgw_reviews_requests_total": true,

	// Scheduler and notification metrics.
	"rgw_scheduler_job_runs_total":      true,
	"rgw_scheduler_next_run_timestamp":  true,
	"rgw_notifications_total":           true,
	"rgw_notification_duration_seconds": true,

	// Recording rules.
	"rgw:http_requests:rate5m":          true,
	"rgw:http_errors:rate5m":            true,
	"rgw:upstream_requests:rate5m":      true,
	"rgw:token_refresh_failures:rate5m": true,
	"rgw:pricing_outcomes:rate5m":       true,
	"rgw:notification_duration:p95_5m":  true,

	// Standard Prometheus metrics referenced in dashboards.
	"up":                         true,
	"process_start_time_seconds": true,
}

// Config controls which artifacts the generator produces and where they go.
type Config struct {
	OutputDir        string
	DashboardEnabled bool
	RulesEnabled     bool
	// RuleFiles also writes plain rule_files documents next to the CRs.
	RuleFiles bool
}

// DefaultConfig returns a Config that generates all artifacts into ../../deploy
// (relative to tools/dashgen/).
func DefaultConfig() Config {
	return Config{
		OutputDir:        "../../deploy",
		DashboardEnabled: true,
		RulesEnabled:     true,
	}
}

// Validate checks that the config is usable.
func (c Config) Validate() error {
	if c.OutputDir == "" {
		return errors.New("output directory must be set")
	}
	if !c.DashboardEnabled && !c.RulesEnabled {
		return errors.New("at least one of dashboard or rules must be enabled")
	}
	if c.RuleFiles && !c.RulesEnabled {
		return errors.New("rule files require rules to be enabled")
	}
	return nil
}
