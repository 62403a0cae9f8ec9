// Package places fetches guest reviews from the Reviews Provider (Google
// Places details API) and normalizes them into a domain.ReviewSummary.
package places

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/donaldgifford/rental-gateway/internal/cache"
	"github.com/donaldgifford/rental-gateway/internal/metrics"
	domain "github.com/donaldgifford/rental-gateway/pkg/types"
)

const (
	defaultBaseURL  = "https://maps.googleapis.com/maps/api/place/details/json"
	defaultLanguage = "en"
	detailFields    = "rating,user_ratings_total,reviews"
)

var tracer = otel.Tracer("github.com/donaldgifford/rental-gateway/internal/places")

// ErrMissingAPIKey is returned when no Places API key is configured.
var ErrMissingAPIKey = errors.New("missing places API key")

// StatusError is returned when the Places API answers 2xx with a
// non-OK status field, or answers non-2xx.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("places response error: %s", e.Status)
	}
	return fmt.Sprintf("places request failed (status %d)", e.StatusCode)
}

// ReviewsClient fetches a normalized review summary for a place.
type ReviewsClient interface {
	GetReviews(ctx context.Context, placeID, language string) (*domain.ReviewSummary, error)
}

// Client implements ReviewsClient.
type Client struct {
	apiKey   string
	baseURL  string
	language string
	client   *http.Client
	cache    cache.Cache
	cacheTTL time.Duration
	log      *slog.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithBaseURL overrides the default Places details endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithDefaultLanguage sets the language used when a request names none.
func WithDefaultLanguage(lang string) Option {
	return func(c *Client) {
		if lang != "" {
			c.language = lang
		}
	}
}

// WithCache stores successful summaries for ttl.
func WithCache(ch cache.Cache, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = ch
		c.cacheTTL = ttl
	}
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// NewClient creates a Places reviews client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:   apiKey,
		baseURL:  defaultBaseURL,
		language: defaultLanguage,
		client:   &http.Client{Timeout: 10 * time.Second},
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetReviews implements ReviewsClient.
func (c *Client) GetReviews(
	ctx context.Context,
	placeID, language string,
) (summary *domain.ReviewSummary, err error) {
	placeID = strings.TrimSpace(placeID)
	if placeID == "" {
		return nil, &domain.ValidationError{Field: "placeId", Reason: "must not be empty"}
	}
	if language == "" {
		language = c.language
	}
	if c.apiKey == "" {
		metrics.ReviewsRequestsTotal.WithLabelValues("error").Inc()
		return nil, ErrMissingAPIKey
	}

	key := "reviews:" + placeID + ":" + language
	if c.cache != nil {
		var cached domain.ReviewSummary
		if err := cache.GetJSON(ctx, c.cache, key, &cached); err == nil {
			metrics.ReviewsRequestsTotal.WithLabelValues("cache_hit").Inc()
			return &cached, nil
		} else if !errors.Is(err, cache.ErrNotFound) {
			c.log.Warn("reading reviews cache", "place_id", placeID, "error", err)
		}
	}

	ctx, span := tracer.Start(ctx, "places.reviews")
	span.SetAttributes(
		attribute.String("places.place_id", placeID),
		attribute.String("places.language", language),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "reviews request failed")
			metrics.ReviewsRequestsTotal.WithLabelValues("error").Inc()
		}
		span.End()
	}()

	summary, err = c.fetch(ctx, placeID, language)
	if err != nil {
		return nil, err
	}
	metrics.ReviewsRequestsTotal.WithLabelValues("ok").Inc()

	if c.cache != nil {
		if err := cache.SetJSON(ctx, c.cache, key, summary, c.cacheTTL); err != nil {
			c.log.Warn("writing reviews cache", "place_id", placeID, "error", err)
		}
	}
	return summary, nil
}

func (c *Client) fetch(ctx context.Context, placeID, language string) (*domain.ReviewSummary, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing places URL: %w", err)
	}
	params := u.Query()
	params.Set("place_id", placeID)
	params.Set("fields", detailFields)
	params.Set("language", language)
	params.Set("key", c.apiKey)
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		// The URL carries the API key; drop it from the error.
		var uErr *url.Error
		if errors.As(err, &uErr) {
			err = uErr.Err
		}
		return nil, fmt.Errorf("executing places request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	var payload detailsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding places response: %w", err)
	}
	if payload.Status != "OK" {
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: payload.Status}
	}

	return payload.Result.toSummary(), nil
}
