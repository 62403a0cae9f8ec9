package rules

// AlertRules returns a PrometheusRule CR containing alert rules for
// rental-gateway operational monitoring.
func AlertRules() PrometheusRule {
	return newPrometheusRule("rgw-alerts",
		RuleGroup{
			Name: "rgw-alerts",
			Rules: []Rule{
				{
					Alert: "RgwDown",
					Expr:  `absent(up{job="rental-gateway"})`,
					For:   "2m",
					Labels: map[string]string{
						"severity": SeverityCritical,
					},
					Annotations: map[string]string{
						"summary":     "Rental Gateway is down",
						"description": "The rental-gateway job has been absent for more than 2 minutes.",
					},
				},
				{
					Alert: "RgwReadinessDown",
					Expr:  `rgw_readyz_up == 0`,
					For:   "2m",
					Labels: map[string]string{
						"severity": SeverityCritical,
					},
					Annotations: map[string]string{
						"summary":     "Rental Gateway readiness check is failing",
						"description": "The readiness probe has been reporting not-ready for more than 2 minutes.",
					},
				},
				{
					Alert: "RgwHighErrorRate",
					Expr:  `rgw:http_errors:rate5m / rgw:http_requests:rate5m > 0.05`,
					For:   "5m",
					Labels: map[string]string{
						"severity": SeverityWarning,
					},
					Annotations: map[string]string{
						"summary":     "High HTTP error rate on Rental Gateway",
						"description": "More than 5% of HTTP requests are returning 5xx errors over the last 5 minutes.",
					},
				},
				{
					Alert: "RgwTokenBackoff",
					Expr:  `increase(rgw_token_backoff_rejections_total[5m]) > 0`,
					For:   "0m",
					Labels: map[string]string{
						"severity": SeverityCritical,
					},
					Annotations: map[string]string{
						"summary":     "Guesty token endpoint is rate limiting",
						"description": "A token scope is in its 429 cooldown; pricing reports temporarily unavailable until it ends.",
					},
				},
				{
					Alert: "RgwTokenRefreshFailing",
					Expr:  `rgw:token_refresh_failures:rate5m > 0`,
					For:   "10m",
					Labels: map[string]string{
						"severity": SeverityWarning,
					},
					Annotations: map[string]string{
						"summary":     "Guesty token refreshes are failing",
						"description": "Token refreshes for {{ $labels.scope }} have been failing for 10 minutes.",
					},
				},
				{
					Alert: "RgwPricingDegraded",
					Expr: `sum(rate(rgw_pricing_outcomes_total{status=~"price_on_request|temporarily_unavailable"}[15m])) ` +
						`/ sum(rate(rgw_pricing_outcomes_total[15m])) > 0.2`,
					For: "15m",
					Labels: map[string]string{
						"severity": SeverityWarning,
					},
					Annotations: map[string]string{
						"summary":     "Pricing lookups are degraded",
						"description": "More than 20% of pricing lookups fall back to price on request or temporarily unavailable.",
					},
				},
				{
					Alert: "RgwQuotaHigh",
					Expr:  `rgw_upstream_quota_usage > 9000`,
					For:   "5m",
					Labels: map[string]string{
						"severity": SeverityWarning,
					},
					Annotations: map[string]string{
						"summary":     "Guesty daily quota usage is above 90%",
						"description": "Upstream pricing calls in the current window exceed 9000 (default quota is 10000).",
					},
				},
				{
					Alert: "RgwQuotaExhausted",
					Expr:  `increase(rgw_upstream_quota_exhausted_total[5m]) > 0`,
					For:   "0m",
					Labels: map[string]string{
						"severity": SeverityCritical,
					},
					Annotations: map[string]string{
						"summary":     "Guesty daily quota has been reached",
						"description": "Pricing calls are refused locally until the quota window resets.",
					},
				},
				{
					Alert: "RgwNotificationFailures",
					Expr:  `increase(rgw_notifications_total{result="error"}[5m]) > 0`,
					For:   "1m",
					Labels: map[string]string{
						"severity": SeverityWarning,
					},
					Annotations: map[string]string{
						"summary":     "Notification delivery failures detected",
						"description": "One or more operational alerts (Discord webhooks) have failed to send.",
					},
				},
			},
		},
	)
}
