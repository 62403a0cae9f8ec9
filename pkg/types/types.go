// Package domain defines the core pricing and review types for rental-gateway.
package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used on the wire and in queries.
const DateLayout = "2006-01-02"

// Shape identifies which upstream response structure produced a result.
type Shape string

// Shape constants, listed from richest to poorest.
const (
	ShapeNone     Shape = ""
	ShapeInvoice  Shape = "invoice"
	ShapeCalendar Shape = "calendar"
	ShapeRatePlan Shape = "rate_plan"
)

// ValidationError reports a malformed pricing or review request. It is
// raised before any network call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PricingQuery is the immutable input of a pricing lookup. CheckIn and
// CheckOut are calendar dates at UTC midnight.
type PricingQuery struct {
	ListingID string
	CheckIn   time.Time
	CheckOut  time.Time
	Guests    int

	// Optional breakdown of Guests. Infants are not counted in Guests.
	Children int
	Infants  int
}

// NewPricingQuery parses date strings (YYYY-MM-DD) into a validated query.
// A zero guest count defaults to 1.
func NewPricingQuery(listingID, checkIn, checkOut string, guests int) (PricingQuery, error) {
	in, err := ParseDate(checkIn)
	if err != nil {
		return PricingQuery{}, &ValidationError{Field: "checkIn", Reason: err.Error()}
	}
	out, err := ParseDate(checkOut)
	if err != nil {
		return PricingQuery{}, &ValidationError{Field: "checkOut", Reason: err.Error()}
	}
	if guests == 0 {
		guests = 1
	}

	q := PricingQuery{
		ListingID: strings.TrimSpace(listingID),
		CheckIn:   in,
		CheckOut:  out,
		Guests:    guests,
	}
	if err := q.Validate(); err != nil {
		return PricingQuery{}, err
	}
	return q, nil
}

// Validate checks the query invariants.
func (q PricingQuery) Validate() error {
	if strings.TrimSpace(q.ListingID) == "" {
		return &ValidationError{Field: "listingId", Reason: "must not be empty"}
	}
	if q.CheckIn.IsZero() || q.CheckOut.IsZero() {
		return &ValidationError{Field: "dates", Reason: "checkIn and checkOut are required"}
	}
	if !q.CheckIn.Before(q.CheckOut) {
		return &ValidationError{Field: "checkOut", Reason: "must be after checkIn"}
	}
	if q.Guests < 1 {
		return &ValidationError{Field: "guests", Reason: "must be at least 1"}
	}
	if q.Children < 0 || q.Infants < 0 {
		return &ValidationError{Field: "guests", Reason: "children and infants must not be negative"}
	}
	if q.Children >= q.Guests {
		return &ValidationError{Field: "children", Reason: "at least one adult is required"}
	}
	return nil
}

// Nights returns the number of nights between check-in and check-out.
func (q PricingQuery) Nights() int {
	return int(math.Round(q.CheckOut.Sub(q.CheckIn).Hours() / 24))
}

// Adults returns the adult share of the guest count.
func (q PricingQuery) Adults() int {
	return q.Guests - q.Children
}

// ParseDate parses a YYYY-MM-DD date. Longer ISO timestamps are truncated
// to their date part.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) > len(DateLayout) {
		s = s[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected YYYY-MM-DD, got %q", s)
	}
	return t, nil
}

// NightlyRate is the price attributable to one calendar night.
type NightlyRate struct {
	Date      string  `json:"date"                 example:"2025-03-01"`
	Price     float64 `json:"price"                example:"100"`
	Currency  string  `json:"currency"             example:"EUR"`
	Available *bool   `json:"available,omitempty"`
	MinNights *int    `json:"min_nights,omitempty"`
}

// Totals aggregates a stay. Authoritative is set when the values were
// taken from an upstream invoice instead of being summed from Days.
type Totals struct {
	Nights        int     `json:"nights"        example:"3"`
	Subtotal      float64 `json:"subtotal"      example:"300"`
	Taxes         float64 `json:"taxes"         example:"0"`
	Fees          float64 `json:"fees"          example:"0"`
	Total         float64 `json:"total"         example:"300"`
	Currency      string  `json:"currency"      example:"EUR"`
	Authoritative bool    `json:"authoritative"`
}

// PricingResult is the normalized answer to a PricingQuery. A nil Totals
// with no Days means the upstream had no pricing for the range.
type PricingResult struct {
	ListingID string        `json:"listing_id"`
	Days      []NightlyRate `json:"days"`
	Totals    *Totals       `json:"totals"`
	Shape     Shape         `json:"shape,omitempty"`
	Partial   bool          `json:"partial"`
}

// HasPricing reports whether the result carries any usable price.
func (r *PricingResult) HasPricing() bool {
	return r != nil && (len(r.Days) > 0 || r.Totals != nil)
}

// AveragePerNight returns the result's total divided by its nights, or
// nil when there is no total or no nights.
func (r *PricingResult) AveragePerNight() *float64 {
	if r == nil || r.Totals == nil {
		return nil
	}
	return AveragePerNight(r.Totals.Total, r.Totals.Nights)
}

// AveragePerNight divides total by nights. It returns nil instead of
// dividing by zero.
func AveragePerNight(total float64, nights int) *float64 {
	if nights <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return nil
	}
	avg := RoundAmount(total / float64(nights))
	return &avg
}

// RoundAmount rounds a monetary amount to cents.
func RoundAmount(v float64) float64 {
	return math.Round(v*100) / 100
}

// Review is one guest review from the reviews provider.
type Review struct {
	AuthorName              string   `json:"author_name"`
	AuthorURL               string   `json:"author_url,omitempty"`
	ProfilePhotoURL         string   `json:"profile_photo_url,omitempty"`
	Rating                  *float64 `json:"rating"`
	Text                    string   `json:"text"`
	Time                    *int64   `json:"time"`
	RelativeTimeDescription string   `json:"relative_time_description,omitempty"`
}

// ReviewSummary is the normalized review payload for one place.
type ReviewSummary struct {
	Rating     *float64 `json:"rating"      example:"4.8"`
	TotalCount *int     `json:"total_count" example:"127"`
	Reviews    []Review `json:"reviews"`
}
