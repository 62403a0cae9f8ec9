package panels

import (
	"fmt"

	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// UpstreamRequests returns a timeseries panel showing pricing calls by
// source and status.
func UpstreamRequests() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Upstream Requests").
		Description("Guesty pricing calls per second by source and HTTP status").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(`rgw:upstream_requests:rate5m`, "{{source}} {{status}}", "A")).
		Unit("reqps").
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// UpstreamLatency returns a timeseries panel showing the p95 pricing call
// latency per source.
func UpstreamLatency() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Upstream Latency (p95)").
		Description("95th percentile Guesty pricing call duration").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			Quantile(0.95, "rgw_upstream_request_duration_seconds", "source"),
			"{{source}}",
			"A",
		)).
		Unit("s").
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenYellowRed(2, 5)).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// QuotaUsage returns a timeseries panel showing calls in the current quota
// window against the daily quota.
func QuotaUsage() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Quota Usage vs Limit").
		Description(fmt.Sprintf("Upstream pricing calls in the current 24h window (default quota: %d)", DailyQuota)).
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(Sel("rgw_upstream_quota_usage"), "used", "A")).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenYellowRed(float64(DailyQuota)*0.8, float64(DailyQuota))).
		ColorScheme(ColorSchemeThresholds()).
		DrawStyle(common.GraphDrawStyleLine)
}

// UpstreamRetries returns a stat panel showing network retries in the
// last 24 hours.
func UpstreamRetries() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Retries (24h)").
		Description("Pricing calls retried after a network failure").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery(SumIncrease(Sel("rgw_upstream_retries_total"), "24h"), "", "A")).
		Thresholds(ThresholdsGreenYellowRed(10, 100)).
		ColorScheme(ColorSchemeThresholds()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeArea)
}

// QuotaExhausted returns a stat panel showing how often the daily quota
// was reached in the last 24 hours.
func QuotaExhausted() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Quota Exhausted (24h)").
		Description("Times the daily upstream quota was reached in the last 24 hours").
		Datasource(DSRef()).
		Height(StatHeight).
		Span(StatWidth).
		WithTarget(PromQuery("increase("+Sel("rgw_upstream_quota_exhausted_total")+"[24h])", "", "A")).
		Thresholds(ThresholdsGreenYellowRed(1, 3)).
		ColorScheme(ColorSchemeThresholds()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeArea)
}
