package panels

import (
	"github.com/grafana/grafana-foundation-sdk/go/common"
	"github.com/grafana/grafana-foundation-sdk/go/timeseries"
)

// PricingOutcomes returns a timeseries panel showing rendered pricing
// outcomes by status.
func PricingOutcomes() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Pricing Outcomes").
		Description("Pricing lookups per minute by outcome status").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(`rgw:pricing_outcomes:rate5m * 60`, "{{status}}", "A")).
		FillOpacity(20).
		LineWidth(1).
		Legend(TableLegend("mean", "sum")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// PricingShapes returns a timeseries panel showing which upstream response
// shape produced each normalized result.
func PricingShapes() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Response Shapes").
		Description("Normalized pricing results per minute by detected response shape").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(TSWidth).
		WithTarget(PromQuery(
			PerMinute(SumRate(Sel("rgw_pricing_shapes_total"), "5m", "shape")),
			"{{shape}}", "A",
		)).
		FillOpacity(10).
		LineWidth(2).
		Legend(TableLegend("mean", "sum")).
		Tooltip(MultiTooltip()).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}

// ReviewsRequests returns a timeseries panel showing reviews provider
// calls by result.
func ReviewsRequests() *timeseries.PanelBuilder {
	return timeseries.NewPanelBuilder().
		Title("Reviews Requests").
		Description("Google Places calls per minute by result; cache hits are not counted").
		Datasource(DSRef()).
		Height(TSHeight).
		Span(FullWidth).
		WithTarget(PromQuery(
			PerMinute(SumRate(Sel("rgw_reviews_requests_total"), "5m", "result")),
			"{{result}}", "A",
		)).
		FillOpacity(10).
		LineWidth(2).
		Thresholds(ThresholdsGreenOnly()).
		ColorScheme(ColorSchemePaletteClassic()).
		DrawStyle(common.GraphDrawStyleLine)
}
