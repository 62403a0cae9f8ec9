// Package dashboards assembles Grafana dashboard definitions from panel builders.
package dashboards

import (
	"github.com/grafana/grafana-foundation-sdk/go/dashboard"

	"github.com/donaldgifford/rental-gateway/tools/dashgen/panels"
)

// BuildOverview constructs the RGW Overview dashboard with all metric rows.
func BuildOverview() *dashboard.DashboardBuilder {
	b := dashboard.NewDashboardBuilder("RGW Overview").
		Uid("rgw-overview").
		Tags([]string{"rgw", "rental-gateway"}).
		Refresh("30s").
		Time("now-6h", "now").
		Timezone("browser").
		Editable().
		Tooltip(dashboard.DashboardCursorSyncCrosshair).
		WithVariable(datasourceVar())

	// Row 1: Overview.
	b.WithRow(dashboard.NewRowBuilder("Overview").
		WithPanel(panels.HealthzStat()).
		WithPanel(panels.ReadyzStat()).
		WithPanel(panels.QuotaGauge()).
		WithPanel(panels.UptimeStat()))

	// Row 2: HTTP.
	b.WithRow(dashboard.NewRowBuilder("HTTP").
		WithPanel(panels.RequestRate()).
		WithPanel(panels.LatencyPercentiles()).
		WithPanel(panels.ErrorRate()))

	// Row 3: Tokens.
	b.WithRow(dashboard.NewRowBuilder("Guesty Tokens").
		WithPanel(panels.TokenRefreshes()).
		WithPanel(panels.TokenCacheHitRatio()).
		WithPanel(panels.BackoffRejections()))

	// Row 4: Upstream pricing.
	b.WithRow(dashboard.NewRowBuilder("Guesty Pricing").
		WithPanel(panels.UpstreamRequests()).
		WithPanel(panels.UpstreamLatency()).
		WithPanel(panels.QuotaUsage()).
		WithPanel(panels.UpstreamRetries()).
		WithPanel(panels.QuotaExhausted()))

	// Row 5: Outcomes.
	b.WithRow(dashboard.NewRowBuilder("Outcomes").
		WithPanel(panels.PricingOutcomes()).
		WithPanel(panels.PricingShapes()).
		WithPanel(panels.ReviewsRequests()))

	// Row 6: Operations.
	b.WithRow(dashboard.NewRowBuilder("Operations").
		WithPanel(panels.SchedulerRuns()).
		WithPanel(panels.NextWarmup()).
		WithPanel(panels.NotificationLatency()).
		WithPanel(panels.NotificationFailures()))

	return b
}

func datasourceVar() *dashboard.DatasourceVariableBuilder {
	return dashboard.NewDatasourceVariableBuilder("datasource").
		Label("Datasource").
		Type("prometheus")
}
