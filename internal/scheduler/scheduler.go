// Package scheduler runs periodic maintenance jobs: keeping Guesty tokens
// warm ahead of demand and watching the daily upstream quota. Failures are
// reported through a notify.Notifier once per incident, with a resolved
// alert when the condition clears.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/donaldgifford/rental-gateway/internal/guesty"
	"github.com/donaldgifford/rental-gateway/internal/metrics"
	"github.com/donaldgifford/rental-gateway/internal/notify"
)

// Job names, also used as metric labels.
const (
	JobTokenWarmup = "token-warmup"
	JobQuotaCheck  = "quota-check"
)

const defaultJobTimeout = 30 * time.Second

// TokenSource is a token broker for one scope.
type TokenSource interface {
	Scope() string
	Token(ctx context.Context) (string, error)
}

// QuotaSource reports upstream quota usage.
type QuotaSource interface {
	Usage() guesty.Usage
}

// Scheduler manages the periodic jobs.
type Scheduler struct {
	cron       *cron.Cron
	notifier   notify.Notifier
	log        *slog.Logger
	jobTimeout time.Duration

	tokens         []TokenSource
	warmupInterval time.Duration
	warmupEntryID  cron.EntryID

	quota         QuotaSource
	warnRatio     float64
	quotaInterval time.Duration
	quotaEntryID  cron.EntryID

	// firing holds the severity last sent for each key still firing.
	mu     sync.Mutex
	firing map[string]notify.Severity
}

// Option configures the Scheduler.
type Option func(*Scheduler)

// WithTokenWarmup refreshes the given brokers every interval. Brokers
// holding a valid token answer from cache, so the job only reaches the
// token endpoint once a token has expired.
func WithTokenWarmup(interval time.Duration, sources ...TokenSource) Option {
	return func(s *Scheduler) {
		s.warmupInterval = interval
		s.tokens = sources
	}
}

// WithQuotaCheck alerts when used/quota reaches warnRatio.
func WithQuotaCheck(interval time.Duration, q QuotaSource, warnRatio float64) Option {
	return func(s *Scheduler) {
		s.quotaInterval = interval
		s.quota = q
		s.warnRatio = warnRatio
	}
}

// WithNotifier sets the alert destination.
func WithNotifier(n notify.Notifier) Option {
	return func(s *Scheduler) {
		s.notifier = n
	}
}

// WithJobTimeout bounds each job run.
func WithJobTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		s.jobTimeout = d
	}
}

// New creates a Scheduler. Jobs without a positive interval or without
// anything to act on are not registered.
func New(log *slog.Logger, opts ...Option) (*Scheduler, error) {
	s := &Scheduler{
		cron:       cron.New(),
		log:        log,
		jobTimeout: defaultJobTimeout,
		firing:     make(map[string]notify.Severity),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.notifier == nil {
		s.notifier = notify.NewNoOpNotifier(log)
	}

	if s.warmupInterval > 0 && len(s.tokens) > 0 {
		id, err := s.cron.AddFunc("@every "+s.warmupInterval.String(), func() {
			s.run(JobTokenWarmup, s.WarmTokens)
		})
		if err != nil {
			return nil, fmt.Errorf("registering %s: %w", JobTokenWarmup, err)
		}
		s.warmupEntryID = id
	}

	if s.quotaInterval > 0 && s.quota != nil {
		id, err := s.cron.AddFunc("@every "+s.quotaInterval.String(), func() {
			s.run(JobQuotaCheck, s.CheckQuota)
		})
		if err != nil {
			return nil, fmt.Errorf("registering %s: %w", JobQuotaCheck, err)
		}
		s.quotaEntryID = id
	}

	return s, nil
}

// Start begins running scheduled tasks.
func (s *Scheduler) Start() {
	s.log.Info("scheduler started", "jobs", len(s.cron.Entries()))
	s.cron.Start()
	s.SyncNextRunTimestamps()
}

// Stop gracefully stops the scheduler, waiting for running jobs to finish.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("scheduler stopping")
	return s.cron.Stop()
}

// Entries returns the registered cron entries for inspection.
func (s *Scheduler) Entries() []cron.Entry {
	return s.cron.Entries()
}

// SyncNextRunTimestamps publishes the next run time of each job.
func (s *Scheduler) SyncNextRunTimestamps() {
	for job, id := range map[string]cron.EntryID{
		JobTokenWarmup: s.warmupEntryID,
		JobQuotaCheck:  s.quotaEntryID,
	} {
		if id == 0 {
			continue
		}
		if next := s.cron.Entry(id).Next; !next.IsZero() {
			metrics.SchedulerNextRunTimestamp.WithLabelValues(job).Set(float64(next.Unix()))
		}
	}
}

func (s *Scheduler) run(job string, fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
	defer cancel()
	defer s.SyncNextRunTimestamps()

	start := time.Now()
	if err := fn(ctx); err != nil {
		metrics.SchedulerJobRunsTotal.WithLabelValues(job, "error").Inc()
		s.log.Warn("scheduled job failed", "job", job, "error", err, "duration", time.Since(start))
		return
	}
	metrics.SchedulerJobRunsTotal.WithLabelValues(job, "ok").Inc()
	s.log.Debug("scheduled job finished", "job", job, "duration", time.Since(start))
}

// WarmTokens asks every broker for a token and alerts on scopes whose
// refresh fails.
func (s *Scheduler) WarmTokens(ctx context.Context) error {
	var errs []error
	for _, src := range s.tokens {
		scope := src.Scope()
		_, err := src.Token(ctx)
		key := "token:" + scope
		if err != nil {
			errs = append(errs, fmt.Errorf("scope %s: %w", scope, err))
			s.transition(ctx, key, true, &notify.Alert{
				Key:         key,
				Title:       "Guesty token refresh failing",
				Description: err.Error(),
				Severity:    notify.SeverityCritical,
				Fields: []notify.Field{
					{Name: "Scope", Value: scope},
					{Name: "Reason", Value: tokenFailureReason(err)},
				},
			})
			continue
		}
		s.transition(ctx, key, false, &notify.Alert{
			Key:      key,
			Title:    "Guesty token refresh recovered",
			Severity: notify.SeverityResolved,
			Fields:   []notify.Field{{Name: "Scope", Value: scope}},
		})
	}
	return errors.Join(errs...)
}

func tokenFailureReason(err error) string {
	var cfgErr *guesty.ConfigError
	switch {
	case errors.Is(err, guesty.ErrRateLimited):
		return "rate limited"
	case errors.As(err, &cfgErr):
		return "configuration"
	default:
		return "upstream"
	}
}

// CheckQuota alerts when the daily quota usage reaches the warn ratio.
func (s *Scheduler) CheckQuota(ctx context.Context) error {
	u := s.quota.Usage()
	if u.Quota <= 0 {
		return nil
	}

	const key = "quota"
	ratio := float64(u.Used) / float64(u.Quota)
	fields := []notify.Field{
		{Name: "Used", Value: fmt.Sprintf("%d/%d", u.Used, u.Quota)},
		{Name: "Remaining", Value: strconv.FormatInt(u.Remaining, 10)},
	}
	if !u.ResetAt.IsZero() {
		fields = append(fields, notify.Field{Name: "Resets", Value: u.ResetAt.UTC().Format(time.RFC3339)})
	}

	if ratio >= s.warnRatio {
		sev := notify.SeverityWarning
		if u.Remaining == 0 {
			sev = notify.SeverityCritical
		}
		s.transition(ctx, key, true, &notify.Alert{
			Key:         key,
			Title:       "Guesty daily quota running low",
			Description: fmt.Sprintf("%.0f%% of the daily upstream quota is used.", ratio*100),
			Severity:    sev,
			Fields:      fields,
		})
		return nil
	}

	s.transition(ctx, key, false, &notify.Alert{
		Key:      key,
		Title:    "Guesty daily quota back below threshold",
		Severity: notify.SeverityResolved,
		Fields:   fields,
	})
	return nil
}

// transition sends alert when key starts firing, changes severity while
// firing, or stops firing. Repeated runs in the same state stay quiet.
func (s *Scheduler) transition(ctx context.Context, key string, firing bool, alert *notify.Alert) {
	s.mu.Lock()
	prev, wasFiring := s.firing[key]
	var changed bool
	if firing {
		changed = !wasFiring || prev != alert.Severity
		s.firing[key] = alert.Severity
	} else {
		changed = wasFiring
		delete(s.firing, key)
	}
	s.mu.Unlock()

	if !changed {
		return
	}
	if err := s.notifier.SendAlert(ctx, alert); err != nil {
		s.log.Error("sending alert", "key", key, "severity", alert.Severity, "error", err)
		// Retry on the next run.
		s.mu.Lock()
		if wasFiring {
			s.firing[key] = prev
		} else {
			delete(s.firing, key)
		}
		s.mu.Unlock()
	}
}
