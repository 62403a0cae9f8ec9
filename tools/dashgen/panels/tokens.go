package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/stat"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// TokenRefreshes returns a timeseries panel showing successful and failed
// token refreshes per scope.
func TokenRefreshes() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Token Refreshes").
		Description("Upstream token refreshes per minute by scope").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			PerMinute(SumRate(Sel("rgw_token_refreshes_total"), "5m", "scope")),
			"{{scope}} ok", "A",
		)).
		WithTarget(PromQuery(
			`rgw:token_refresh_failures:rate5m * 60`,
			"{{scope}} failed", "B",
		)).
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("sum", "max")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// TokenCacheHitRatio returns a timeseries panel showing the share of token
// requests answered from the in-process cache.
func TokenCacheHitRatio() *timeseries.PanelBuilder {
	hits := SumRate(Sel("rgw_token_cache_hits_total"), "5m", "scope")
	refreshes := SumRate(Sel("rgw_token_refreshes_total"), "5m", "scope")
	return timeseries.NewPanelBuilder().
		Title("Token Cache Hit %").
		Description("Token requests served from cache as percentage of all token requests").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			hits+" / ("+hits+" + "+refreshes+") * 100",
			"{{scope}}", "A",
		)).
		Unit("percent").
		Min(0).
		Max(100).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsRedGreen(90)).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// BackoffRejections returns a stat panel showing token requests rejected
// during a 429 cooldown in the last 24 hours.
func BackoffRejections() *stat.PanelBuilder {
	return stat.NewPanelBuilder().
		Title("Backoff Rejections (24h)").
		Description("Token requests refused locally while a scope was backing off").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(8).
		WithTarget(PromQuery(
			SumIncrease(Sel("rgw_token_backoff_rejections_total"), "24h"),
			"", "A",
		)).
		Thresholds(ThresholdsGreenYellowRed(1, 50)).
		ColorScheme(ColorSchemeThresholds()).
		ColorMode(common.BigValueColorModeBackground).
		GraphMode(common.BigValueGraphModeArea)
}
