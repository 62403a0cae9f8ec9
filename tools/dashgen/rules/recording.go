package rules

// RecordingRules returns a PrometheusRule CR containing pre-computed rate
// expressions used by dashboards and alert rules.
func RecordingRules() PrometheusRule {
	return newPrometheusRule("rgw-recording-rules",
		RuleGroup{
			Name: "rgw-recording",
			Rules: []Rule{
				{
					Record: "rgw:http_requests:rate5m",
					Expr:   `sum(rate(rgw_http_requests_total[5m]))`,
				},
				{
					Record: "rgw:http_errors:rate5m",
					Expr:   `sum(rate(rgw_http_requests_total{status=~"5.."}[5m]))`,
				},
				{
					Record: "rgw:upstream_requests:rate5m",
					Expr:   `sum by (source, status) (rate(rgw_upstream_requests_total[5m]))`,
				},
				{
					Record: "rgw:token_refresh_failures:rate5m",
					Expr:   `sum by (scope) (rate(rgw_token_refresh_failures_total[5m]))`,
				},
				{
					Record: "rgw:pricing_outcomes:rate5m",
					Expr:   `sum by (status) (rate(rgw_pricing_outcomes_total[5m]))`,
				},
				{
					Record: "rgw:notification_duration:p95_5m",
					Expr:   `histogram_quantile(0.95, sum(rate(rgw_notification_duration_seconds_bucket[5m])) by (le))`,
				},
			},
		},
	)
}
