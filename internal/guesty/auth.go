package guesty

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cast"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"

	"github.com/donaldgifford/rental-gateway/internal/metrics"
)

const (
	defaultOpenAPITokenURL = "https://open-api.guesty.com/oauth2/token" //nolint:gosec // not a credential
	defaultBookingTokenURL = "https://booking.guesty.com/oauth2/token"  //nolint:gosec // not a credential
	defaultBackoff         = 60 * time.Second
)

var tracer = otel.Tracer("github.com/donaldgifford/rental-gateway/internal/guesty")

// DefaultTokenURL returns the Guesty token endpoint for a scope key.
func DefaultTokenURL(scope string) string {
	if scope == ScopeBookingEngine {
		return defaultBookingTokenURL
	}
	return defaultOpenAPITokenURL
}

// TokenBroker implements TokenProvider for one scope using the OAuth2
// client credentials flow. Tokens are cached for the process lifetime and
// concurrent refreshes are coalesced into a single upstream request.
type TokenBroker struct {
	clientID     string
	clientSecret string
	scope        string
	tokenURL     string
	client       *http.Client
	cooldown     time.Duration
	log          *slog.Logger
	nowFunc      func() time.Time // for testing

	group singleflight.Group

	mu           sync.Mutex
	token        *Token
	backoffUntil time.Time
}

// BrokerOption configures the TokenBroker.
type BrokerOption func(*TokenBroker)

// WithTokenURL overrides the default token endpoint for the scope.
func WithTokenURL(u string) BrokerOption {
	return func(b *TokenBroker) {
		b.tokenURL = u
	}
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) BrokerOption {
	return func(b *TokenBroker) {
		b.client = c
	}
}

// WithNowFunc overrides the time function for testing.
func WithNowFunc(f func() time.Time) BrokerOption {
	return func(b *TokenBroker) {
		b.nowFunc = f
	}
}

// WithBackoff sets how long the broker fails fast after a 429.
func WithBackoff(d time.Duration) BrokerOption {
	return func(b *TokenBroker) {
		b.cooldown = d
	}
}

// WithBrokerLogger sets a custom logger.
func WithBrokerLogger(l *slog.Logger) BrokerOption {
	return func(b *TokenBroker) {
		b.log = l
	}
}

// NewTokenBroker creates a token broker for one Guesty scope.
func NewTokenBroker(
	clientID, clientSecret, scope string,
	opts ...BrokerOption,
) *TokenBroker {
	b := &TokenBroker{
		clientID:     clientID,
		clientSecret: clientSecret,
		scope:        scope,
		tokenURL:     DefaultTokenURL(scope),
		client:       &http.Client{Timeout: 10 * time.Second},
		cooldown:     defaultBackoff,
		log:          slog.Default(),
		nowFunc:      time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Scope returns the scope key this broker issues tokens for.
func (b *TokenBroker) Scope() string {
	return b.scope
}

// Token returns a valid bearer token value, refreshing if necessary.
func (b *TokenBroker) Token(ctx context.Context) (string, error) {
	t, err := b.Current(ctx)
	if err != nil {
		return "", err
	}
	return t.Value, nil
}

// Current returns the cached token while it is inside its validity window.
// Otherwise it joins or starts the single in-flight refresh for the scope.
// All callers of one refresh observe the same token or the same error.
func (b *TokenBroker) Current(ctx context.Context) (Token, error) {
	if b.clientID == "" || b.clientSecret == "" {
		return Token{}, &ConfigError{Reason: "missing client id or client secret"}
	}

	if t, ok := b.cached(); ok {
		metrics.TokenCacheHitsTotal.WithLabelValues(b.scope).Inc()
		return t, nil
	}

	// The refresh outlives a canceled caller so its result still fills
	// the cache; the HTTP client timeout bounds it.
	v, err, shared := b.group.Do(b.scope, func() (any, error) {
		if t, ok := b.cached(); ok {
			return t, nil
		}
		if err := b.checkBackoff(); err != nil {
			return Token{}, err
		}
		return b.refresh(context.WithoutCancel(ctx))
	})
	if err != nil {
		if errors.Is(err, ErrRateLimited) {
			metrics.TokenBackoffRejectionsTotal.WithLabelValues(b.scope).Inc()
		}
		return Token{}, err
	}
	if shared {
		b.log.Debug("joined in-flight token refresh", "scope", b.scope)
	}
	return v.(Token), nil
}

// Invalidate drops the cached token, typically after an upstream 401.
func (b *TokenBroker) Invalidate() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.token != nil {
		b.log.Info("invalidating cached token", "scope", b.scope)
	}
	b.token = nil
}

// Status returns the broker's current state without the token value.
func (b *TokenBroker) Status() BrokerStatus {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.nowFunc()
	st := BrokerStatus{Scope: b.scope, State: StateEmpty}

	switch {
	case now.Before(b.backoffUntil):
		until := b.backoffUntil
		st.State = StateBackoff
		st.BackoffUntil = &until
	case b.token != nil && now.Before(b.token.ExpiresAt()):
		exp := b.token.ExpiresAt()
		st.State = StateValid
		st.ExpiresAt = &exp
	}
	return st
}

func (b *TokenBroker) cached() (Token, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.token != nil && b.nowFunc().Before(b.token.ExpiresAt()) {
		return *b.token, true
	}
	return Token{}, false
}

func (b *TokenBroker) checkBackoff() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.nowFunc().Before(b.backoffUntil) {
		return &UpstreamAuthError{
			Scope:      b.scope,
			StatusCode: http.StatusTooManyRequests,
			Body:       "backing off until " + b.backoffUntil.UTC().Format(time.RFC3339),
			Err:        ErrRateLimited,
		}
	}
	return nil
}

func (b *TokenBroker) refresh(ctx context.Context) (tok Token, err error) {
	ctx, span := tracer.Start(ctx, "guesty.token.refresh")
	span.SetAttributes(attribute.String("guesty.scope", b.scope))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "token refresh failed")
		}
		span.End()
	}()

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {b.clientID},
		"client_secret": {b.clientSecret},
		"scope":         {b.scope},
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		b.tokenURL,
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return Token{}, fmt.Errorf("creating token request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := b.client.Do(req)
	if err != nil {
		metrics.TokenRefreshFailuresTotal.WithLabelValues(b.scope, "0").Inc()
		return Token{}, &UpstreamAuthError{
			Scope: b.scope,
			Err:   fmt.Errorf("executing token request: %w", err),
		}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Token{}, fmt.Errorf("reading token response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		b.enterBackoff()
		metrics.TokenRefreshFailuresTotal.WithLabelValues(b.scope, "429").Inc()
		return Token{}, &UpstreamAuthError{
			Scope:      b.scope,
			StatusCode: resp.StatusCode,
			Body:       string(body),
			Err:        ErrRateLimited,
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.TokenRefreshFailuresTotal.
			WithLabelValues(b.scope, strconv.Itoa(resp.StatusCode)).
			Inc()
		return Token{}, &UpstreamAuthError{
			Scope:      b.scope,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return Token{}, &ParseError{Source: SourceToken, Err: err}
	}
	if tr.AccessToken == "" {
		return Token{}, &ParseError{Source: SourceToken, Err: errors.New("missing access_token")}
	}

	ttl := defaultTTL
	if secs, err := cast.ToInt64E(tr.ExpiresIn); err == nil && secs > 0 {
		ttl = time.Duration(secs) * time.Second
	}

	tok = Token{
		Value:    tr.AccessToken,
		IssuedAt: b.nowFunc(),
		TTL:      ttl,
		Scope:    b.scope,
	}

	b.mu.Lock()
	b.token = &tok
	b.backoffUntil = time.Time{}
	b.mu.Unlock()

	metrics.TokenRefreshesTotal.WithLabelValues(b.scope).Inc()
	b.log.Debug("token refreshed",
		"scope", b.scope,
		"ttl", ttl,
		"expires_at", tok.ExpiresAt(),
	)
	return tok, nil
}

func (b *TokenBroker) enterBackoff() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.token = nil
	b.backoffUntil = b.nowFunc().Add(b.cooldown)
	b.log.Warn("token endpoint rate limited, backing off",
		"scope", b.scope,
		"until", b.backoffUntil,
	)
}

// Brokers indexes token brokers by scope key.
type Brokers map[string]*TokenBroker

// Token returns a token for the given scope key.
func (bs Brokers) Token(ctx context.Context, scope string) (string, error) {
	b, ok := bs[scope]
	if !ok {
		return "", &ConfigError{Reason: fmt.Sprintf("no broker for scope %q", scope)}
	}
	return b.Token(ctx)
}

// Statuses returns the status of every broker, ordered by scope.
func (bs Brokers) Statuses() []BrokerStatus {
	out := make([]BrokerStatus, 0, len(bs))
	for _, b := range bs {
		out = append(out, b.Status())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Scope < out[j].Scope })
	return out
}

// Invalidate drops the cached token of the given scope key.
func (bs Brokers) Invalidate(scope string) error {
	b, ok := bs[scope]
	if !ok {
		return &ConfigError{Reason: fmt.Sprintf("no broker for scope %q", scope)}
	}
	b.Invalidate()
	return nil
}
