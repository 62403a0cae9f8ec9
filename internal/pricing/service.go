// Package pricing is the boundary the presentation layer calls for stay
// prices. It turns every gateway failure except invalid input into a
// renderable Outcome.
package pricing

import (
	"context"
	"errors"
	"log/slog"

	"github.com/donaldgifford/rental-gateway/internal/guesty"
	"github.com/donaldgifford/rental-gateway/internal/metrics"
	domain "github.com/donaldgifford/rental-gateway/pkg/types"
)

// Status classifies an Outcome for display.
type Status string

// Outcome statuses.
const (
	StatusOK                     Status = "ok"
	StatusUnavailable            Status = "unavailable"
	StatusPriceOnRequest         Status = "price_on_request"
	StatusTemporarilyUnavailable Status = "temporarily_unavailable"
)

// User-facing messages per status.
const (
	MessageUnavailable            = "No pricing available for the selected dates"
	MessagePriceOnRequest         = "Price on request"
	MessageTemporarilyUnavailable = "Pricing is temporarily unavailable, please try again later"
)

// Outcome is the renderable answer to a pricing request.
type Outcome struct {
	Query           domain.PricingQuery
	Status          Status
	Message         string
	Result          *domain.PricingResult
	AveragePerNight *float64
}

// Service wraps a guesty.PricingClient.
type Service struct {
	client guesty.PricingClient
	log    *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.log = l
	}
}

// NewService creates a pricing Service.
func NewService(c guesty.PricingClient, opts ...Option) *Service {
	s := &Service{
		client: c,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Quote parses YYYY-MM-DD dates and prices the stay. A guest count of 0
// defaults to 1. Only a *domain.ValidationError is returned as an error.
func (s *Service) Quote(
	ctx context.Context,
	listingID, checkIn, checkOut string,
	guests int,
) (*Outcome, error) {
	q, err := domain.NewPricingQuery(listingID, checkIn, checkOut, guests)
	if err != nil {
		return nil, err
	}
	return s.QuoteQuery(ctx, q)
}

// QuoteQuery prices an already built query.
func (s *Service) QuoteQuery(ctx context.Context, q domain.PricingQuery) (*Outcome, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	res, err := s.client.GetPricing(ctx, q)
	if err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			return nil, err
		}
		return s.failure(q, err), nil
	}

	out := &Outcome{Query: q, Result: res}
	if !res.HasPricing() {
		out.Status = StatusUnavailable
		out.Message = MessageUnavailable
		s.log.Info("no pricing for stay",
			"listing_id", q.ListingID,
			"check_in", q.CheckIn.Format(domain.DateLayout),
			"check_out", q.CheckOut.Format(domain.DateLayout),
		)
	} else {
		out.Status = StatusOK
		out.AveragePerNight = res.AveragePerNight()
	}

	metrics.PricingOutcomesTotal.WithLabelValues(string(out.Status)).Inc()
	return out, nil
}

func (s *Service) failure(q domain.PricingQuery, err error) *Outcome {
	out := &Outcome{Query: q}

	var (
		parseErr    *guesty.ParseError
		upstreamErr *guesty.UpstreamError
	)
	switch {
	case credentialFailure(err):
		out.Status = StatusTemporarilyUnavailable
		out.Message = MessageTemporarilyUnavailable
		s.log.Error("pricing credentials unavailable",
			"listing_id", q.ListingID,
			"rate_limited", errors.Is(err, guesty.ErrRateLimited),
			"error", err,
		)
	case errors.As(err, &parseErr):
		out.Status = StatusUnavailable
		out.Message = MessageUnavailable
		s.log.Warn("unparseable pricing response",
			"listing_id", q.ListingID,
			"source", parseErr.Source,
			"error", err,
		)
	case errors.As(err, &upstreamErr):
		out.Status = StatusPriceOnRequest
		out.Message = MessagePriceOnRequest
		s.log.Warn("pricing upstream error",
			"listing_id", q.ListingID,
			"source", upstreamErr.Source,
			"status", upstreamErr.StatusCode,
			"body", upstreamErr.Body,
			"error", err,
		)
	default:
		out.Status = StatusTemporarilyUnavailable
		out.Message = MessageTemporarilyUnavailable
		s.log.Error("pricing unavailable",
			"listing_id", q.ListingID,
			"error", err,
		)
	}

	metrics.PricingOutcomesTotal.WithLabelValues(string(out.Status)).Inc()
	return out
}

// credentialFailure reports errors that no retry by the visitor can fix
// until the token broker or quota recovers.
func credentialFailure(err error) bool {
	var (
		cfgErr   *guesty.ConfigError
		authErr  *guesty.UpstreamAuthError
		parseErr *guesty.ParseError
	)
	switch {
	case errors.As(err, &cfgErr), errors.As(err, &authErr):
		return true
	case errors.Is(err, guesty.ErrQuotaExhausted):
		return true
	case errors.As(err, &parseErr):
		return parseErr.Source == guesty.SourceToken
	}
	return false
}
