// Package config handles loading and validating the application configuration
// from YAML files with environment variable substitution.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Guesty    GuestyConfig    `yaml:"guesty"`
	Places    PlacesConfig    `yaml:"places"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Alerts    AlertsConfig    `yaml:"alerts"`
	Tracing   TracingConfig   `yaml:"tracing"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig defines the Echo HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// GuestyConfig defines Booking Provider API settings. Both token scopes
// share one set of client credentials.
type GuestyConfig struct {
	ClientID        string          `yaml:"client_id"`
	ClientSecret    string          `yaml:"client_secret"`
	TokenURL        string          `yaml:"token_url"`
	BookingTokenURL string          `yaml:"booking_token_url"`
	CalendarURL     string          `yaml:"calendar_url"`
	QuoteURL        string          `yaml:"quote_url"` // empty disables the quote source
	DefaultCurrency string          `yaml:"default_currency"`
	TokenBackoff    time.Duration   `yaml:"token_backoff"`
	Timeout         time.Duration   `yaml:"timeout"`
	RateLimit       RateLimitConfig `yaml:"rate_limit"`
}

// HasCredentials reports whether client credentials are configured.
func (g *GuestyConfig) HasCredentials() bool {
	return g.ClientID != "" && g.ClientSecret != ""
}

// RateLimitConfig defines outbound pricing call limits.
type RateLimitConfig struct {
	PerSecond  float64 `yaml:"per_second"`
	Burst      int     `yaml:"burst"`
	DailyLimit int64   `yaml:"daily_limit"`
}

// PlacesConfig defines Reviews Provider (Google Places) settings.
type PlacesConfig struct {
	APIKey   string        `yaml:"api_key"`
	BaseURL  string        `yaml:"base_url"`
	Language string        `yaml:"language"`
	Timeout  time.Duration `yaml:"timeout"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
	Redis    RedisConfig   `yaml:"redis"`
}

// RedisConfig selects a shared review cache. An empty Addr keeps reviews
// in process memory.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// SchedulerConfig defines the intervals of the background jobs.
type SchedulerConfig struct {
	TokenWarmup time.Duration `yaml:"token_warmup"`
	QuotaCheck  time.Duration `yaml:"quota_check"`
}

// AlertsConfig defines where operational alerts are delivered. Alerts are
// only logged when no webhook is set.
type AlertsConfig struct {
	DiscordWebhookURL string  `yaml:"discord_webhook_url"`
	QuotaWarnRatio    float64 `yaml:"quota_warn_ratio"`
}

// TracingConfig defines OpenTelemetry trace export settings.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"` // OTLP gRPC host:port
	Insecure    bool    `yaml:"insecure"`
	ServiceName string  `yaml:"service_name"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}

// Load reads and parses a YAML config file, performing environment variable
// substitution and validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the YAML content.
	expanded := os.ExpandEnv(string(data))

	cfg := &Config{}
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	applyDefaults(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	applyServerDefaults(&cfg.Server)
	applyGuestyDefaults(&cfg.Guesty)
	applyPlacesDefaults(&cfg.Places)
	applySchedulerDefaults(&cfg.Scheduler)
	applyAlertsDefaults(&cfg.Alerts)
	applyTracingDefaults(&cfg.Tracing)
	applyLoggingDefaults(&cfg.Logging)
}

func applyServerDefaults(s *ServerConfig) {
	if s.Host == "" {
		s.Host = "0.0.0.0"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = 30 * time.Second
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = 30 * time.Second
	}
}

func applyGuestyDefaults(g *GuestyConfig) {
	if g.TokenURL == "" {
		g.TokenURL = "https://open-api.guesty.com/oauth2/token"
	}
	if g.BookingTokenURL == "" {
		g.BookingTokenURL = "https://booking.guesty.com/oauth2/token"
	}
	// {listingId} is filled in per request; see guesty.ListingIDPlaceholder.
	if g.CalendarURL == "" {
		g.CalendarURL = "https://open-api.guesty.com/v1/availability-pricing/api/calendar/listings/{listingId}"
	}
	if g.DefaultCurrency == "" {
		g.DefaultCurrency = "EUR"
	}
	if g.TokenBackoff == 0 {
		g.TokenBackoff = 60 * time.Second
	}
	if g.Timeout == 0 {
		g.Timeout = 15 * time.Second
	}
	applyRateLimitDefaults(&g.RateLimit)
}

func applyRateLimitDefaults(r *RateLimitConfig) {
	if r.PerSecond == 0 {
		r.PerSecond = 5.0
	}
	if r.Burst == 0 {
		r.Burst = 10
	}
	if r.DailyLimit == 0 {
		r.DailyLimit = 10000
	}
}

func applyPlacesDefaults(p *PlacesConfig) {
	if p.BaseURL == "" {
		p.BaseURL = "https://maps.googleapis.com/maps/api/place/details/json"
	}
	if p.Language == "" {
		p.Language = "en"
	}
	if p.Timeout == 0 {
		p.Timeout = 10 * time.Second
	}
	if p.CacheTTL == 0 {
		p.CacheTTL = 10 * time.Minute
	}
	if p.Redis.Prefix == "" {
		p.Redis.Prefix = "rgw:"
	}
}

func applySchedulerDefaults(s *SchedulerConfig) {
	if s.TokenWarmup == 0 {
		s.TokenWarmup = 15 * time.Minute
	}
	if s.QuotaCheck == 0 {
		s.QuotaCheck = 5 * time.Minute
	}
}

func applyAlertsDefaults(a *AlertsConfig) {
	if a.QuotaWarnRatio == 0 {
		a.QuotaWarnRatio = 0.9
	}
}

func applyTracingDefaults(t *TracingConfig) {
	if t.Endpoint == "" {
		t.Endpoint = "localhost:4317"
	}
	if t.ServiceName == "" {
		t.ServiceName = "rental-gateway"
	}
	if t.SampleRatio == 0 {
		t.SampleRatio = 1.0
	}
}

func applyLoggingDefaults(l *LoggingConfig) {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "text"
	}
}

func validate(cfg *Config) error {
	var errs []error

	if (cfg.Guesty.ClientID == "") != (cfg.Guesty.ClientSecret == "") {
		errs = append(
			errs,
			fmt.Errorf("guesty.client_id and guesty.client_secret must be set together"),
		)
	}

	for name, raw := range map[string]string{
		"guesty.token_url":           cfg.Guesty.TokenURL,
		"guesty.booking_token_url":   cfg.Guesty.BookingTokenURL,
		"guesty.calendar_url":        cfg.Guesty.CalendarURL,
		"guesty.quote_url":           cfg.Guesty.QuoteURL,
		"places.base_url":            cfg.Places.BaseURL,
		"alerts.discord_webhook_url": cfg.Alerts.DiscordWebhookURL,
	} {
		if raw == "" {
			continue
		}
		if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("%s must be an absolute URL (got %q)", name, raw))
		}
	}

	if len(cfg.Guesty.DefaultCurrency) != 3 {
		errs = append(
			errs,
			fmt.Errorf("guesty.default_currency must be a 3-letter ISO 4217 code (got %q)", cfg.Guesty.DefaultCurrency),
		)
	}

	if cfg.Guesty.RateLimit.PerSecond < 0 || cfg.Guesty.RateLimit.Burst < 0 ||
		cfg.Guesty.RateLimit.DailyLimit < 0 {
		errs = append(errs, fmt.Errorf("guesty.rate_limit values must not be negative"))
	}

	if cfg.Places.Redis.DB < 0 {
		errs = append(errs, fmt.Errorf("places.redis.db must not be negative"))
	}

	if cfg.Scheduler.TokenWarmup < 0 || cfg.Scheduler.QuotaCheck < 0 {
		errs = append(errs, fmt.Errorf("scheduler intervals must not be negative"))
	}

	if cfg.Alerts.QuotaWarnRatio <= 0 || cfg.Alerts.QuotaWarnRatio > 1 {
		errs = append(
			errs,
			fmt.Errorf("alerts.quota_warn_ratio must be in (0, 1] (got %v)", cfg.Alerts.QuotaWarnRatio),
		)
	}

	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
		errs = append(
			errs,
			fmt.Errorf("tracing.sample_ratio must be between 0 and 1 (got %v)", cfg.Tracing.SampleRatio),
		)
	}

	switch cfg.Logging.Format {
	case "text", "json":
	default:
		errs = append(
			errs,
			fmt.Errorf("logging.format must be one of: text, json (got %q)", cfg.Logging.Format),
		)
	}

	return errors.Join(errs...)
}
