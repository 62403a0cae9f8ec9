package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/donaldgifford/rental-gateway/api/openapi"
	"github.com/donaldgifford/rental-gateway/internal/api/handlers"
	"github.com/donaldgifford/rental-gateway/internal/api/middleware"
	"github.com/donaldgifford/rental-gateway/internal/cache"
	"github.com/donaldgifford/rental-gateway/internal/config"
	"github.com/donaldgifford/rental-gateway/internal/guesty"
	"github.com/donaldgifford/rental-gateway/internal/notify"
	"github.com/donaldgifford/rental-gateway/internal/places"
	"github.com/donaldgifford/rental-gateway/internal/pricing"
	"github.com/donaldgifford/rental-gateway/internal/scheduler"
	"github.com/donaldgifford/rental-gateway/internal/tracing"
)

// pricingStack is the token and pricing side of the service.
type pricingStack struct {
	brokers guesty.Brokers
	limiter *guesty.RateLimiter
	gateway *guesty.Gateway
	service *pricing.Service
	inUse   []*guesty.TokenBroker // brokers behind a configured endpoint
}

func newPricingStack(cfg *config.Config, log *slog.Logger) *pricingStack {
	g := cfg.Guesty
	hc := tracing.HTTPClient(&http.Client{Timeout: g.Timeout})

	newBroker := func(scope, tokenURL string) *guesty.TokenBroker {
		return guesty.NewTokenBroker(g.ClientID, g.ClientSecret, scope,
			guesty.WithTokenURL(tokenURL),
			guesty.WithHTTPClient(hc),
			guesty.WithBackoff(g.TokenBackoff),
			guesty.WithBrokerLogger(log),
		)
	}
	brokers := guesty.Brokers{
		guesty.ScopeOpenAPI:       newBroker(guesty.ScopeOpenAPI, g.TokenURL),
		guesty.ScopeBookingEngine: newBroker(guesty.ScopeBookingEngine, g.BookingTokenURL),
	}

	limiter := guesty.NewRateLimiter(g.RateLimit.PerSecond, g.RateLimit.Burst, g.RateLimit.DailyLimit)

	opts := []guesty.GatewayOption{
		guesty.WithGatewayHTTPClient(hc),
		guesty.WithRateLimiter(limiter),
		guesty.WithDefaultCurrency(g.DefaultCurrency),
		guesty.WithGatewayLogger(log),
	}
	var inUse []*guesty.TokenBroker
	if g.QuoteURL != "" {
		opts = append(opts, guesty.WithQuoteEndpoint(g.QuoteURL, brokers[guesty.ScopeBookingEngine]))
		inUse = append(inUse, brokers[guesty.ScopeBookingEngine])
	}
	if g.CalendarURL != "" {
		opts = append(opts, guesty.WithCalendarEndpoint(g.CalendarURL, brokers[guesty.ScopeOpenAPI]))
		inUse = append(inUse, brokers[guesty.ScopeOpenAPI])
	}
	gw := guesty.NewGateway(opts...)

	return &pricingStack{
		brokers: brokers,
		limiter: limiter,
		gateway: gw,
		service: pricing.NewService(gw, pricing.WithLogger(log)),
		inUse:   inUse,
	}
}

func newScheduler(cfg *config.Config, ps *pricingStack, log *slog.Logger) (*scheduler.Scheduler, error) {
	var notifier notify.Notifier = notify.NewNoOpNotifier(log)
	if u := cfg.Alerts.DiscordWebhookURL; u != "" {
		notifier = notify.NewDiscordNotifier(u,
			notify.WithHTTPClient(tracing.HTTPClient(&http.Client{Timeout: 10 * time.Second})),
		)
	}

	opts := []scheduler.Option{
		scheduler.WithNotifier(notifier),
		scheduler.WithQuotaCheck(cfg.Scheduler.QuotaCheck, ps.limiter, cfg.Alerts.QuotaWarnRatio),
	}
	// Without credentials every warmup would fail with a config error.
	if cfg.Guesty.HasCredentials() {
		sources := make([]scheduler.TokenSource, 0, len(ps.inUse))
		for _, b := range ps.inUse {
			sources = append(sources, b)
		}
		opts = append(opts, scheduler.WithTokenWarmup(cfg.Scheduler.TokenWarmup, sources...))
	}
	return scheduler.New(log, opts...)
}

// server is the assembled HTTP service and the resources it owns.
type server struct {
	echo      *echo.Echo
	scheduler *scheduler.Scheduler
	closers   []func() error
}

func (s *server) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

func newServer(ctx context.Context, cfg *config.Config, log *slog.Logger) (*server, error) {
	srv := &server{}

	if !cfg.Guesty.HasCredentials() {
		log.Warn("guesty credentials not configured, pricing will report temporarily unavailable")
	}
	if cfg.Places.APIKey == "" {
		log.Warn("places api key not configured, reviews endpoint will fail")
	}

	ps := newPricingStack(cfg, log)
	checks := []handlers.ReadinessChecker{ps.gateway}

	sched, err := newScheduler(cfg, ps, log)
	if err != nil {
		return nil, fmt.Errorf("creating scheduler: %w", err)
	}
	srv.scheduler = sched
	srv.closers = append(srv.closers, func() error {
		<-sched.Stop().Done()
		return nil
	})

	var reviewCache cache.Cache = cache.NewMemory()
	if r := cfg.Places.Redis; r.Addr != "" {
		rc, err := cache.NewRedis(ctx, r.Addr, r.Password, r.DB, r.Prefix)
		if err != nil {
			return nil, fmt.Errorf("connecting review cache: %w", err)
		}
		reviewCache = rc
		checks = append(checks, handlers.ReadinessFunc(rc.Ping))
		srv.closers = append(srv.closers, rc.Close)
		log.Info("review cache backed by redis", "addr", r.Addr)
	}

	reviews := places.NewClient(cfg.Places.APIKey,
		places.WithBaseURL(cfg.Places.BaseURL),
		places.WithHTTPClient(tracing.HTTPClient(&http.Client{Timeout: cfg.Places.Timeout})),
		places.WithDefaultLanguage(cfg.Places.Language),
		places.WithCache(reviewCache, cfg.Places.CacheTTL),
		places.WithLogger(log),
	)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	e.Use(middleware.Recovery(log))
	e.Use(middleware.Tracing(cfg.Tracing.ServiceName))
	e.Use(middleware.RequestLog(log))
	e.Use(middleware.Metrics())

	health := handlers.NewHealthHandler(checks...)
	e.GET("/healthz", health.Healthz)
	e.GET("/readyz", health.Readyz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := humaecho.New(e, huma.DefaultConfig("Rental Gateway API", Version))
	if err := openapi.RegisterRoutes(e, api); err != nil {
		_ = srv.Close()
		return nil, fmt.Errorf("registering swagger UI: %w", err)
	}
	handlers.RegisterPricingRoutes(api, handlers.NewPricingHandler(ps.service))
	handlers.RegisterReviewsRoutes(api, handlers.NewReviewsHandler(reviews,
		handlers.WithReviewsMaxAge(cfg.Places.CacheTTL),
	))
	handlers.RegisterTokenRoutes(api, handlers.NewTokensHandler(ps.brokers))
	handlers.RegisterQuotaRoutes(api, handlers.NewQuotaHandler(ps.limiter))

	srv.echo = e
	return srv, nil
}
