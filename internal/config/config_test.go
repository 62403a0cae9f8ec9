package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		yaml      string
		envVars   map[string]string
		wantErr   string
		checkFunc func(t *testing.T, cfg *Config)
	}{
		{
			name: "valid minimal config",
			yaml: `
guesty:
  client_id: my-client
  client_secret: my-secret
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "my-client", cfg.Guesty.ClientID)
				assert.Equal(t, "my-secret", cfg.Guesty.ClientSecret)
				assert.True(t, cfg.Guesty.HasCredentials())
			},
		},
		{
			name: "empty config is valid without credentials",
			yaml: `{}`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.False(t, cfg.Guesty.HasCredentials())
			},
		},
		{
			name: "defaults applied for optional fields",
			yaml: `
guesty:
  client_id: id
  client_secret: secret
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "0.0.0.0", cfg.Server.Host)
				assert.Equal(t, 8080, cfg.Server.Port)
				assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
				assert.Equal(t, "https://open-api.guesty.com/oauth2/token", cfg.Guesty.TokenURL)
				assert.Equal(t, "https://booking.guesty.com/oauth2/token", cfg.Guesty.BookingTokenURL)
				assert.Equal(t,
					"https://open-api.guesty.com/v1/availability-pricing/api/calendar/listings/{listingId}",
					cfg.Guesty.CalendarURL)
				assert.Empty(t, cfg.Guesty.QuoteURL)
				assert.Equal(t, "EUR", cfg.Guesty.DefaultCurrency)
				assert.Equal(t, 60*time.Second, cfg.Guesty.TokenBackoff)
				assert.Equal(t, 15*time.Second, cfg.Guesty.Timeout)
				assert.InDelta(t, 5.0, cfg.Guesty.RateLimit.PerSecond, 0)
				assert.Equal(t, 10, cfg.Guesty.RateLimit.Burst)
				assert.Equal(t, int64(10000), cfg.Guesty.RateLimit.DailyLimit)
				assert.Contains(t, cfg.Places.BaseURL, "maps.googleapis.com")
				assert.Equal(t, "en", cfg.Places.Language)
				assert.Equal(t, 10*time.Second, cfg.Places.Timeout)
				assert.Equal(t, 10*time.Minute, cfg.Places.CacheTTL)
				assert.Empty(t, cfg.Places.Redis.Addr)
				assert.Equal(t, "rgw:", cfg.Places.Redis.Prefix)
				assert.Equal(t, 15*time.Minute, cfg.Scheduler.TokenWarmup)
				assert.Equal(t, 5*time.Minute, cfg.Scheduler.QuotaCheck)
				assert.Empty(t, cfg.Alerts.DiscordWebhookURL)
				assert.InDelta(t, 0.9, cfg.Alerts.QuotaWarnRatio, 0)
				assert.False(t, cfg.Tracing.Enabled)
				assert.Equal(t, "localhost:4317", cfg.Tracing.Endpoint)
				assert.Equal(t, "rental-gateway", cfg.Tracing.ServiceName)
				assert.InDelta(t, 1.0, cfg.Tracing.SampleRatio, 0)
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "text", cfg.Logging.Format)
			},
		},
		{
			name: "env var substitution",
			yaml: `
guesty:
  client_id: "${TEST_GUESTY_CLIENT_ID}"
  client_secret: "${TEST_GUESTY_CLIENT_SECRET}"
places:
  api_key: "${TEST_PLACES_API_KEY}"
`,
			envVars: map[string]string{
				"TEST_GUESTY_CLIENT_ID":     "env-id",
				"TEST_GUESTY_CLIENT_SECRET": "env-secret",
				"TEST_PLACES_API_KEY":       "env-key",
			},
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "env-id", cfg.Guesty.ClientID)
				assert.Equal(t, "env-secret", cfg.Guesty.ClientSecret)
				assert.Equal(t, "env-key", cfg.Places.APIKey)
			},
		},
		{
			name: "client id without secret",
			yaml: `
guesty:
  client_id: only-id
`,
			wantErr: "guesty.client_id and guesty.client_secret must be set together",
		},
		{
			name: "client secret without id",
			yaml: `
guesty:
  client_secret: only-secret
`,
			wantErr: "guesty.client_id and guesty.client_secret must be set together",
		},
		{
			name: "relative calendar url",
			yaml: `
guesty:
  calendar_url: /calendar
`,
			wantErr: `guesty.calendar_url must be an absolute URL (got "/calendar")`,
		},
		{
			name: "invalid default currency",
			yaml: `
guesty:
  default_currency: EURO
`,
			wantErr: `guesty.default_currency must be a 3-letter ISO 4217 code (got "EURO")`,
		},
		{
			name: "negative rate limit",
			yaml: `
guesty:
  rate_limit:
    burst: -1
`,
			wantErr: "guesty.rate_limit values must not be negative",
		},
		{
			name: "negative redis db",
			yaml: `
places:
  redis:
    db: -1
`,
			wantErr: "places.redis.db must not be negative",
		},
		{
			name: "negative scheduler interval",
			yaml: `
scheduler:
  token_warmup: -1m
`,
			wantErr: "scheduler intervals must not be negative",
		},
		{
			name: "quota warn ratio out of range",
			yaml: `
alerts:
  quota_warn_ratio: 1.2
`,
			wantErr: "alerts.quota_warn_ratio must be in (0, 1]",
		},
		{
			name: "relative webhook url",
			yaml: `
alerts:
  discord_webhook_url: hooks/123
`,
			wantErr: "alerts.discord_webhook_url must be an absolute URL",
		},
		{
			name: "sample ratio out of range",
			yaml: `
tracing:
  sample_ratio: 1.5
`,
			wantErr: "tracing.sample_ratio must be between 0 and 1",
		},
		{
			name: "invalid logging format",
			yaml: `
logging:
  format: xml
`,
			wantErr: `logging.format must be one of: text, json (got "xml")`,
		},
		{
			name:    "invalid YAML",
			yaml:    `{{{not valid yaml`,
			wantErr: "parsing config YAML",
		},
		{
			name: "full config with overrides",
			yaml: `
server:
  host: "127.0.0.1"
  port: 9090
  read_timeout: 60s
  write_timeout: 60s
guesty:
  client_id: prod-id
  client_secret: prod-secret
  token_url: http://mock:9999/oauth2/token
  booking_token_url: http://mock:9999/booking/oauth2/token
  calendar_url: http://mock:9999/calendar
  quote_url: http://mock:9999/quotes
  default_currency: USD
  token_backoff: 2m
  timeout: 5s
  rate_limit:
    per_second: 2
    burst: 4
    daily_limit: 500
places:
  api_key: places-key
  base_url: http://mock:9999/places
  language: nl
  timeout: 3s
  cache_ttl: 1h
  redis:
    addr: redis:6379
    password: hunter2
    db: 2
    prefix: "rg:"
scheduler:
  token_warmup: 30m
  quota_check: 1m
alerts:
  discord_webhook_url: https://discord.com/api/webhooks/1/abc
  quota_warn_ratio: 0.75
tracing:
  enabled: true
  endpoint: otel-collector:4317
  insecure: true
  service_name: rg-test
  sample_ratio: 0.25
logging:
  level: debug
  format: json
`,
			checkFunc: func(t *testing.T, cfg *Config) {
				t.Helper()
				assert.Equal(t, "127.0.0.1", cfg.Server.Host)
				assert.Equal(t, 9090, cfg.Server.Port)
				assert.Equal(t, 60*time.Second, cfg.Server.ReadTimeout)
				assert.Equal(t, "http://mock:9999/oauth2/token", cfg.Guesty.TokenURL)
				assert.Equal(t, "http://mock:9999/booking/oauth2/token", cfg.Guesty.BookingTokenURL)
				assert.Equal(t, "http://mock:9999/calendar", cfg.Guesty.CalendarURL)
				assert.Equal(t, "http://mock:9999/quotes", cfg.Guesty.QuoteURL)
				assert.Equal(t, "USD", cfg.Guesty.DefaultCurrency)
				assert.Equal(t, 2*time.Minute, cfg.Guesty.TokenBackoff)
				assert.Equal(t, 5*time.Second, cfg.Guesty.Timeout)
				assert.InDelta(t, 2.0, cfg.Guesty.RateLimit.PerSecond, 0)
				assert.Equal(t, 4, cfg.Guesty.RateLimit.Burst)
				assert.Equal(t, int64(500), cfg.Guesty.RateLimit.DailyLimit)
				assert.Equal(t, "places-key", cfg.Places.APIKey)
				assert.Equal(t, "nl", cfg.Places.Language)
				assert.Equal(t, time.Hour, cfg.Places.CacheTTL)
				assert.Equal(t, "redis:6379", cfg.Places.Redis.Addr)
				assert.Equal(t, "hunter2", cfg.Places.Redis.Password)
				assert.Equal(t, 2, cfg.Places.Redis.DB)
				assert.Equal(t, "rg:", cfg.Places.Redis.Prefix)
				assert.Equal(t, 30*time.Minute, cfg.Scheduler.TokenWarmup)
				assert.Equal(t, time.Minute, cfg.Scheduler.QuotaCheck)
				assert.Equal(t, "https://discord.com/api/webhooks/1/abc", cfg.Alerts.DiscordWebhookURL)
				assert.InDelta(t, 0.75, cfg.Alerts.QuotaWarnRatio, 0)
				assert.True(t, cfg.Tracing.Enabled)
				assert.True(t, cfg.Tracing.Insecure)
				assert.Equal(t, "otel-collector:4317", cfg.Tracing.Endpoint)
				assert.Equal(t, "rg-test", cfg.Tracing.ServiceName)
				assert.InDelta(t, 0.25, cfg.Tracing.SampleRatio, 0)
				assert.Equal(t, "debug", cfg.Logging.Level)
				assert.Equal(t, "json", cfg.Logging.Format)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Only parallelize tests that don't modify env vars.
			if len(tt.envVars) == 0 {
				t.Parallel()
			}

			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			dir := t.TempDir()
			path := filepath.Join(dir, "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.yaml), 0o644))

			cfg, err := Load(path)

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.NotNil(t, cfg)

			if tt.checkFunc != nil {
				tt.checkFunc(t, cfg)
			}
		})
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	t.Parallel()

	_, err := Load("/nonexistent/path/config.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config file")
}

func TestLoad_JoinsErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
guesty:
  client_id: only-id
logging:
  format: xml
`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "guesty.client_id")
	assert.Contains(t, err.Error(), "logging.format")
}

func TestGuestyConfig_HasCredentials(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  GuestyConfig
		want bool
	}{
		{name: "both set", cfg: GuestyConfig{ClientID: "id", ClientSecret: "secret"}, want: true},
		{name: "id only", cfg: GuestyConfig{ClientID: "id"}, want: false},
		{name: "none", cfg: GuestyConfig{}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.cfg.HasCredentials())
		})
	}
}
