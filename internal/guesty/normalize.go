package guesty

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/spf13/cast"

	domain "github.com/donaldgifford/rental-gateway/pkg/types"
)

// Field-name fallbacks observed across the Guesty calendar, reservation
// and quote APIs, in order of preference.
var (
	dateKeys          = []string{"date", "day", "calendarDate"}
	calendarPriceKeys = []string{"basePrice", "nightlyRate", "price"}
	ratePlanPriceKeys = []string{"price", "basePrice"}
	breakdownKeys     = []string{"basePrice", "price"}
	nestedPriceKeys   = []string{"price", "nightlyRate"}
)

type rawNight struct {
	date      string
	price     float64
	currency  string
	available *bool
	minNights *int
}

type parsedShape struct {
	shape    domain.Shape
	nights   []rawNight
	currency string
}

type invoice struct {
	parsedShape
	subtotal *float64
	taxes    *float64
	fees     *float64
	total    *float64
}

func (inv *invoice) hasAggregate() bool {
	return inv.subtotal != nil || inv.total != nil
}

// normalize turns an upstream pricing body into a PricingResult. Shapes
// are preferred invoice > calendar > rate plan. An invoice without a
// per-night breakdown borrows its nights from the next shape present but
// keeps its own totals.
func normalize(
	source string,
	body []byte,
	q domain.PricingQuery,
	defaultCurrency string,
) (*domain.PricingResult, error) {
	root, err := decodeBody(source, body)
	if err != nil {
		return nil, err
	}

	inv := parseInvoice(root)
	candidates := make([]*parsedShape, 0, 3)
	if inv != nil {
		candidates = append(candidates, &inv.parsedShape)
	}
	if cal := parseCalendar(root); cal != nil {
		candidates = append(candidates, cal)
	}
	if plan := parseRatePlan(root); plan != nil {
		candidates = append(candidates, plan)
	}

	res := &domain.PricingResult{
		ListingID: q.ListingID,
		Days:      []domain.NightlyRate{},
	}

	var from *parsedShape
	for _, c := range candidates {
		if days := nightsInRange(c, q); len(days) > 0 {
			from, res.Days = c, days
			break
		}
	}

	fallback := ""
	if from != nil {
		fallback = from.currency
	}
	if fallback == "" && inv != nil {
		fallback = inv.currency
	}
	currency, err := unifyCurrency(res.Days, fallback, defaultCurrency)
	if err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}

	switch {
	case inv != nil && inv.hasAggregate():
		totals, err := invoiceTotals(inv, res.Days, q, currency)
		if err != nil {
			return nil, &ParseError{Source: source, Err: err}
		}
		res.Totals = totals
	case len(res.Days) > 0:
		sum := sumPrices(res.Days)
		res.Totals = &domain.Totals{
			Nights:   len(res.Days),
			Subtotal: sum,
			Total:    sum,
			Currency: currency,
		}
	}

	usedInvoice := inv != nil &&
		(from == &inv.parsedShape || (res.Totals != nil && res.Totals.Authoritative))
	switch {
	case usedInvoice:
		res.Shape = domain.ShapeInvoice
	case from != nil:
		res.Shape = from.shape
	}

	res.Partial = len(res.Days) > 0 && len(res.Days) < q.Nights()
	return res, nil
}

func decodeBody(source string, body []byte) (map[string]any, error) {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}
	switch t := v.(type) {
	case map[string]any:
		return t, nil
	case []any:
		return map[string]any{"days": t}, nil
	default:
		return nil, &ParseError{Source: source, Err: fmt.Errorf("unexpected top-level JSON %T", v)}
	}
}

func parseInvoice(root map[string]any) *invoice {
	for _, money := range moneyCandidates(root) {
		inv := &invoice{parsedShape: parsedShape{shape: domain.ShapeInvoice}}
		inv.currency = stringField(money, "currency")

		breakdown := false
		if item := accommodationFare(money); item != nil {
			if entries, ok := item["nightsBreakdown"].([]any); ok {
				breakdown = true
				inv.nights = parseNights(entries, breakdownKeys, inv.currency)
			}
		}

		inv.subtotal = numberPtr(money, "subTotalPrice", "fareAccommodationAdjusted")
		inv.taxes = numberPtr(money, "totalTaxes")
		inv.fees = numberPtr(money, "totalFees")
		inv.total = numberPtr(money, "totalPrice", "balanceDue")

		if breakdown || inv.hasAggregate() {
			return inv
		}
	}
	return nil
}

func moneyCandidates(root map[string]any) []map[string]any {
	var out []map[string]any
	if m := object(root, "money"); m != nil {
		out = append(out, m)
	}
	if plan := firstRatePlan(root); plan != nil {
		if m := object(object(plan, "ratePlan"), "money"); m != nil {
			out = append(out, m)
		}
		if m := object(plan, "money"); m != nil {
			out = append(out, m)
		}
	}
	if _, ok := root["nightlyRateInvoiceItems"]; ok {
		out = append(out, root)
	} else if _, ok := root["subTotalPrice"]; ok {
		out = append(out, root)
	}
	return out
}

func accommodationFare(money map[string]any) map[string]any {
	items, _ := money["nightlyRateInvoiceItems"].([]any)
	for _, it := range items {
		item, ok := it.(map[string]any)
		if !ok {
			continue
		}
		if stringField(item, "normalType") == "AF" ||
			stringField(item, "type") == "ACCOMMODATION_FARE" ||
			stringField(item, "title") == "Accommodation fare" {
			return item
		}
	}
	return nil
}

func parseCalendar(root map[string]any) *parsedShape {
	entries, ok := calendarEntries(root)
	if !ok {
		return nil
	}
	currency := stringField(root, "currency")
	if currency == "" {
		currency = stringField(object(root, "data"), "currency")
	}
	return &parsedShape{
		shape:    domain.ShapeCalendar,
		nights:   parseNights(entries, calendarPriceKeys, currency),
		currency: currency,
	}
}

func calendarEntries(root map[string]any) ([]any, bool) {
	if days, ok := root["days"].([]any); ok {
		return days, true
	}
	if days, ok := object(root, "data")["days"].([]any); ok {
		return days, true
	}
	for _, key := range []string{"calendar", "calendarDays"} {
		if entries, ok := flatten(root[key]); ok {
			return entries, true
		}
	}
	if data, ok := root["data"].([]any); ok {
		return data, true
	}
	return nil, false
}

func parseRatePlan(root map[string]any) *parsedShape {
	rootCurrency := stringField(root, "currency")

	if pb := object(root, "priceBreakdown"); pb != nil {
		if days, ok := pb["days"].([]any); ok {
			currency := firstNonEmpty(stringField(pb, "currency"), rootCurrency)
			return &parsedShape{
				shape:    domain.ShapeRatePlan,
				nights:   parseNights(days, ratePlanPriceKeys, currency),
				currency: currency,
			}
		}
	}

	if plan := firstRatePlan(root); plan != nil {
		if days, ok := plan["days"].([]any); ok {
			currency := firstNonEmpty(stringField(plan, "currency"), rootCurrency)
			return &parsedShape{
				shape:    domain.ShapeRatePlan,
				nights:   parseNights(days, ratePlanPriceKeys, currency),
				currency: currency,
			}
		}
	}
	return nil
}

func firstRatePlan(root map[string]any) map[string]any {
	plans, _ := object(root, "rates")["ratePlans"].([]any)
	if len(plans) == 0 {
		return nil
	}
	plan, _ := plans[0].(map[string]any)
	return plan
}

// parseNights drops entries without a parseable date or price.
func parseNights(entries []any, priceKeys []string, currency string) []rawNight {
	nights := make([]rawNight, 0, len(entries))
	for _, e := range entries {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}

		date, err := domain.ParseDate(stringField(m, dateKeys...))
		if err != nil {
			continue
		}

		price, ok := number(m, priceKeys...)
		if !ok {
			price, ok = number(object(m, "pricing"), nestedPriceKeys...)
		}
		if !ok {
			continue
		}

		n := rawNight{
			date:      date.Format(domain.DateLayout),
			price:     price,
			currency:  firstNonEmpty(stringField(m, "currency"), currency),
			available: availability(m),
		}
		if mn, ok := number(m, "minNights"); ok {
			v := int(mn)
			n.minNights = &v
		}
		nights = append(nights, n)
	}
	return nights
}

func availability(m map[string]any) *bool {
	for _, key := range []string{"available", "isAvailable"} {
		if b, ok := m[key].(bool); ok {
			return &b
		}
	}
	if status := stringField(m, "status"); status != "" {
		b := status == "available"
		return &b
	}
	return nil
}

// nightsInRange keeps non-negative nights inside [checkIn, checkOut),
// sorted ascending with one entry per date.
func nightsInRange(s *parsedShape, q domain.PricingQuery) []domain.NightlyRate {
	from := q.CheckIn.Format(domain.DateLayout)
	to := q.CheckOut.Format(domain.DateLayout)

	seen := make(map[string]struct{}, len(s.nights))
	out := make([]domain.NightlyRate, 0, len(s.nights))
	for _, n := range s.nights {
		if n.date < from || n.date >= to || n.price < 0 {
			continue
		}
		if _, dup := seen[n.date]; dup {
			continue
		}
		seen[n.date] = struct{}{}
		out = append(out, domain.NightlyRate{
			Date:      n.date,
			Price:     n.price,
			Currency:  n.currency,
			Available: n.available,
			MinNights: n.minNights,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// unifyCurrency fills missing day currencies and enforces a single
// currency for the result.
func unifyCurrency(days []domain.NightlyRate, fallback, defaultCurrency string) (string, error) {
	for i := range days {
		if days[i].Currency == "" {
			days[i].Currency = fallback
		}
	}

	currency := ""
	for i := range days {
		if days[i].Currency != "" {
			currency = strings.ToUpper(days[i].Currency)
			break
		}
	}
	if currency == "" {
		currency = strings.ToUpper(firstNonEmpty(fallback, defaultCurrency))
	}

	for i := range days {
		days[i].Currency = strings.ToUpper(firstNonEmpty(days[i].Currency, currency))
		if days[i].Currency != currency {
			return "", fmt.Errorf("%w: %s and %s", ErrMixedCurrency, currency, days[i].Currency)
		}
	}
	return currency, nil
}

func invoiceTotals(
	inv *invoice,
	days []domain.NightlyRate,
	q domain.PricingQuery,
	currency string,
) (*domain.Totals, error) {
	if inv.currency != "" && len(days) > 0 && !strings.EqualFold(inv.currency, currency) {
		return nil, fmt.Errorf("%w: invoice %s, nights %s", ErrMixedCurrency, inv.currency, currency)
	}

	t := &domain.Totals{
		Nights:        q.Nights(),
		Currency:      strings.ToUpper(firstNonEmpty(inv.currency, currency)),
		Authoritative: true,
	}
	if inv.subtotal != nil {
		t.Subtotal = *inv.subtotal
	} else {
		t.Subtotal = sumPrices(days)
	}
	if inv.taxes != nil {
		t.Taxes = *inv.taxes
	}
	if inv.fees != nil {
		t.Fees = *inv.fees
	}
	if inv.total != nil {
		t.Total = *inv.total
	} else {
		t.Total = domain.RoundAmount(t.Subtotal + t.Taxes + t.Fees)
	}
	return t, nil
}

func sumPrices(days []domain.NightlyRate) float64 {
	var sum float64
	for i := range days {
		sum += days[i].Price
	}
	return domain.RoundAmount(sum)
}

func object(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	v, _ := m[key].(map[string]any)
	return v
}

// flatten accepts a calendar given as an array or as an object keyed by
// date. Keys fill in a missing date on object-valued entries.
func flatten(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]any, 0, len(keys))
		for _, k := range keys {
			entry, ok := t[k].(map[string]any)
			if !ok {
				continue
			}
			if stringField(entry, dateKeys...) == "" {
				withDate := make(map[string]any, len(entry)+1)
				for ek, ev := range entry {
					withDate[ek] = ev
				}
				withDate["date"] = k
				entry = withDate
			}
			out = append(out, entry)
		}
		return out, true
	}
	return nil, false
}

// number returns the first key that holds a finite JSON number or numeric
// string. "NaN" and "Inf" parse as floats but cannot be rendered as JSON.
func number(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		if _, isBool := v.(bool); isBool {
			continue
		}
		f, err := cast.ToFloat64E(v)
		if err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f, true
		}
	}
	return 0, false
}

func numberPtr(m map[string]any, keys ...string) *float64 {
	if f, ok := number(m, keys...); ok {
		return &f
	}
	return nil
}

func stringField(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
