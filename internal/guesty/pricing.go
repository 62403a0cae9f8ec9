package guesty

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/donaldgifford/rental-gateway/internal/metrics"
	domain "github.com/donaldgifford/rental-gateway/pkg/types"
)

// Source names used in errors, logs and metric labels.
const (
	SourceQuote    = "quote"
	SourceCalendar = "calendar"
	SourceToken    = "token"
)

// ListingIDPlaceholder marks where a calendar URL takes the listing id as
// a path segment. URLs without it get the id as a listingId query param.
const ListingIDPlaceholder = "{listingId}"

const (
	defaultCurrency = "EUR"
	quoteSource     = "OAPI"
)

type endpoint struct {
	name   string
	url    string
	tokens TokenProvider
}

// Gateway implements PricingClient against the Guesty quote and calendar
// endpoints. Sources are tried quote first, then calendar; a source that
// has no pricing for the range falls through to the next one.
type Gateway struct {
	quote           *endpoint
	calendar        *endpoint
	client          *http.Client
	rateLimiter     *RateLimiter
	defaultCurrency string
	log             *slog.Logger
}

// GatewayOption configures the Gateway.
type GatewayOption func(*Gateway)

// WithQuoteEndpoint enables the POST quote endpoint.
func WithQuoteEndpoint(u string, tokens TokenProvider) GatewayOption {
	return func(g *Gateway) {
		g.quote = &endpoint{name: SourceQuote, url: u, tokens: tokens}
	}
}

// WithCalendarEndpoint enables the GET calendar endpoint.
func WithCalendarEndpoint(u string, tokens TokenProvider) GatewayOption {
	return func(g *Gateway) {
		g.calendar = &endpoint{name: SourceCalendar, url: u, tokens: tokens}
	}
}

// WithGatewayHTTPClient overrides the default HTTP client.
func WithGatewayHTTPClient(hc *http.Client) GatewayOption {
	return func(g *Gateway) {
		g.client = hc
	}
}

// WithRateLimiter injects a limiter that every upstream pricing call
// waits on.
func WithRateLimiter(r *RateLimiter) GatewayOption {
	return func(g *Gateway) {
		g.rateLimiter = r
	}
}

// WithDefaultCurrency sets the currency used when the upstream omits one.
func WithDefaultCurrency(c string) GatewayOption {
	return func(g *Gateway) {
		if c != "" {
			g.defaultCurrency = c
		}
	}
}

// WithGatewayLogger sets a custom logger.
func WithGatewayLogger(l *slog.Logger) GatewayOption {
	return func(g *Gateway) {
		g.log = l
	}
}

// NewGateway creates a pricing gateway. At least one endpoint option is
// needed for GetPricing to succeed.
func NewGateway(opts ...GatewayOption) *Gateway {
	g := &Gateway{
		client:          &http.Client{Timeout: 15 * time.Second},
		defaultCurrency: defaultCurrency,
		log:             slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Ready reports whether any pricing endpoint is configured.
func (g *Gateway) Ready(_ context.Context) error {
	if len(g.endpoints()) == 0 {
		return ErrNoSource
	}
	return nil
}

func (g *Gateway) endpoints() []*endpoint {
	out := make([]*endpoint, 0, 2)
	if g.quote != nil {
		out = append(out, g.quote)
	}
	if g.calendar != nil {
		out = append(out, g.calendar)
	}
	return out
}

// GetPricing implements PricingClient. It validates the query before any
// network call, and surfaces upstream failures as *UpstreamError,
// *UpstreamAuthError, *ConfigError or *ParseError. A result with no Days
// and nil Totals means no pricing is available for the range.
func (g *Gateway) GetPricing(
	ctx context.Context,
	q domain.PricingQuery,
) (*domain.PricingResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	eps := g.endpoints()
	if len(eps) == 0 {
		return nil, &ConfigError{Reason: ErrNoSource.Error()}
	}

	var last *domain.PricingResult
	for _, ep := range eps {
		body, err := g.fetch(ctx, ep, q)
		if err != nil {
			return nil, err
		}

		res, err := normalize(ep.name, body, q, g.defaultCurrency)
		if err != nil {
			return nil, err
		}
		if res.HasPricing() {
			metrics.PricingShapesTotal.WithLabelValues(string(res.Shape)).Inc()
			return res, nil
		}

		g.log.Debug("no pricing from source",
			"source", ep.name,
			"listing_id", q.ListingID,
		)
		last = res
	}
	return last, nil
}

func (g *Gateway) fetch(
	ctx context.Context,
	ep *endpoint,
	q domain.PricingQuery,
) (body []byte, err error) {
	ctx, span := tracer.Start(ctx, "guesty.pricing."+ep.name)
	span.SetAttributes(
		attribute.String("guesty.listing_id", q.ListingID),
		attribute.Int("guesty.nights", q.Nights()),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "pricing request failed")
		}
		span.End()
	}()

	token, err := ep.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting auth token: %w", err)
	}

	newRequest, err := g.requestBuilder(ctx, ep, q, token)
	if err != nil {
		return nil, err
	}

	// Quota is only spent on requests that will actually be sent.
	if g.rateLimiter != nil {
		if err := g.rateLimiter.Wait(ctx); err != nil {
			if errors.Is(err, ErrQuotaExhausted) {
				metrics.UpstreamQuotaExhaustedTotal.Inc()
			}
			return nil, &UpstreamError{Source: ep.name, Err: fmt.Errorf("rate limit: %w", err)}
		}
		metrics.UpstreamQuotaUsage.Set(float64(g.rateLimiter.Usage().Used))
	}

	start := time.Now()
	resp, err := g.do(ctx, ep.name, newRequest)
	metrics.UpstreamRequestDuration.WithLabelValues(ep.name).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(ep.name, "0").Inc()
		return nil, &UpstreamError{Source: ep.name, Err: err}
	}
	defer resp.Body.Close()

	metrics.UpstreamRequestsTotal.WithLabelValues(ep.name, strconv.Itoa(resp.StatusCode)).Inc()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{
			Source:     ep.name,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("reading response body: %w", err),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusUnauthorized {
			if inv, ok := ep.tokens.(tokenInvalidator); ok {
				inv.Invalidate()
			}
		}
		return nil, &UpstreamError{
			Source:     ep.name,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}
	return body, nil
}

// do sends the request, retrying once without delay on a transport
// failure. Canceled contexts are not retried.
func (g *Gateway) do(
	ctx context.Context,
	source string,
	newRequest func() (*http.Request, error),
) (*http.Response, error) {
	var lastErr error
	for attempt := range 2 {
		req, err := newRequest()
		if err != nil {
			return nil, err
		}

		resp, err := g.client.Do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = fmt.Errorf("executing %s request: %w", source, err)

		if ctx.Err() != nil || attempt == 1 {
			break
		}
		metrics.UpstreamRetriesTotal.WithLabelValues(source).Inc()
		g.log.Warn("upstream request failed, retrying once",
			"source", source,
			"error", err,
		)
	}
	return nil, lastErr
}

func (g *Gateway) requestBuilder(
	ctx context.Context,
	ep *endpoint,
	q domain.PricingQuery,
	token string,
) (func() (*http.Request, error), error) {
	checkIn := q.CheckIn.Format(domain.DateLayout)
	checkOut := q.CheckOut.Format(domain.DateLayout)

	var (
		method  = http.MethodGet
		target  = ep.url
		payload []byte
	)

	switch ep.name {
	case SourceCalendar:
		raw := ep.url
		inPath := strings.Contains(raw, ListingIDPlaceholder)
		if inPath {
			raw = strings.ReplaceAll(raw, ListingIDPlaceholder, url.PathEscape(q.ListingID))
		}
		u, err := url.Parse(raw)
		if err != nil {
			return nil, &ConfigError{Reason: fmt.Sprintf("parsing calendar URL: %v", err)}
		}
		params := u.Query()
		if !inPath {
			params.Set("listingId", q.ListingID)
		}
		params.Set("startDate", checkIn)
		params.Set("endDate", checkOut)
		u.RawQuery = params.Encode()
		target = u.String()
	default:
		method = http.MethodPost
		var err error
		payload, err = json.Marshal(quoteRequest{
			ListingID:             q.ListingID,
			CheckInDateLocalized:  checkIn,
			CheckOutDateLocalized: checkOut,
			NumberOfGuests: quoteGuests{
				NumberOfAdults:   q.Adults(),
				NumberOfChildren: q.Children,
				NumberOfInfants:  q.Infants,
			},
			GuestsCount: q.Guests,
			Source:      quoteSource,
		})
		if err != nil {
			return nil, fmt.Errorf("encoding quote request: %w", err)
		}
	}

	return func() (*http.Request, error) {
		var body io.Reader = http.NoBody
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, target, body)
		if err != nil {
			return nil, fmt.Errorf("creating HTTP request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		return req, nil
	}, nil
}
