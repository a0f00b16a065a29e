package sim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hongminglow/airfreight/internal/storage"
)

// Mode decides how elapsed time is turned into ticks.
type Mode string

const (
	// ModeSnap runs a single tick at now and moves the last tick time to now.
	ModeSnap Mode = "snap"
	// ModeCatchUp runs one tick per elapsed interval, each at its own slot time.
	ModeCatchUp Mode = "catchup"
)

// Ticker runs one tick at a simulated instant.
type Ticker interface {
	Tick(ctx context.Context, at time.Time) (Report, error)
}

// SchedulerConfig controls tick cadence.
type SchedulerConfig struct {
	Interval time.Duration
	Mode     Mode
	// MaxCatchUp limits the ticks run by one call in catch-up mode; the rest run on
	// later calls. Zero means every due tick runs.
	MaxCatchUp int
}

// DefaultSchedulerConfig ticks every 10 minutes in catch-up mode with no cap.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{Interval: 10 * time.Minute, Mode: ModeCatchUp}
}

// Scheduler owns the last tick time. The time is persisted before the ticks it
// covers run, so a tick is never run twice, even across restarts.
type Scheduler struct {
	mu          sync.Mutex
	store       storage.Store
	ticker      Ticker
	cfg         SchedulerConfig
	last        time.Time
	initialized bool
	log         *zap.Logger
}

// NewScheduler builds a scheduler driving ticker.
func NewScheduler(store storage.Store, ticker Ticker, cfg SchedulerConfig, log *zap.Logger) (*Scheduler, error) {
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("scheduler: interval must be positive, got %s", cfg.Interval)
	}
	switch cfg.Mode {
	case ModeSnap, ModeCatchUp:
	default:
		return nil, fmt.Errorf("scheduler: unknown mode %q", cfg.Mode)
	}
	if cfg.MaxCatchUp < 0 {
		return nil, fmt.Errorf("scheduler: max catch-up must not be negative, got %d", cfg.MaxCatchUp)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{store: store, ticker: ticker, cfg: cfg, log: log.Named("scheduler")}, nil
}

// Init loads the persisted last tick time, or records now when there is none.
func (s *Scheduler) Init(ctx context.Context, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initLocked(ctx, now)
}

func (s *Scheduler) initLocked(ctx context.Context, now time.Time) error {
	if s.initialized {
		return nil
	}
	last, ok, err := s.store.LastTick(ctx)
	if err != nil {
		return fmt.Errorf("scheduler: load last tick: %w", err)
	}
	if !ok {
		last = now.UTC()
		if err := s.persist(ctx, last); err != nil {
			return err
		}
	}
	s.last = last
	s.initialized = true
	s.log.Info("scheduler ready", zap.Time("last_tick", last), zap.String("mode", string(s.cfg.Mode)))
	return nil
}

// LastTick returns the time of the last claimed tick.
func (s *Scheduler) LastTick() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// ShouldTick reports whether at least one interval has passed since the last tick.
func (s *Scheduler) ShouldTick(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized && !s.last.Add(s.cfg.Interval).After(now)
}

// PerformTick runs the ticks due at now and returns how many ran. It is a no-op when
// no tick is due. Concurrent calls are serialized.
func (s *Scheduler) PerformTick(ctx context.Context, now time.Time) (int, error) {
	ctx = context.WithoutCancel(ctx)
	now = now.UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.initLocked(ctx, now); err != nil {
		return 0, err
	}

	due := s.due(now)
	if len(due) == 0 {
		return 0, nil
	}
	if err := s.persist(ctx, due[len(due)-1]); err != nil {
		return 0, err
	}
	s.last = due[len(due)-1]

	for i, at := range due {
		if _, err := s.ticker.Tick(ctx, at); err != nil {
			s.log.Error("tick failed", zap.Time("at", at), zap.Error(err))
			return i + 1, err
		}
	}
	if len(due) > 1 {
		s.log.Info("caught up", zap.Int("ticks", len(due)), zap.Time("last_tick", s.last))
	}
	return len(due), nil
}

func (s *Scheduler) due(now time.Time) []time.Time {
	next := s.last.Add(s.cfg.Interval)
	if next.After(now) {
		return nil
	}
	if s.cfg.Mode == ModeSnap {
		return []time.Time{now}
	}
	var out []time.Time
	for !next.After(now) && (s.cfg.MaxCatchUp == 0 || len(out) < s.cfg.MaxCatchUp) {
		out = append(out, next)
		next = next.Add(s.cfg.Interval)
	}
	return out
}

func (s *Scheduler) persist(ctx context.Context, at time.Time) error {
	err := s.store.InTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		return tx.SetLastTick(ctx, at)
	})
	if err != nil {
		return fmt.Errorf("scheduler: persist last tick: %w", err)
	}
	return nil
}

// Run calls PerformTick every period until ctx is done.
func (s *Scheduler) Run(ctx context.Context, period time.Duration, now func() time.Time) error {
	t := time.NewTicker(period)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			if _, err := s.PerformTick(ctx, now()); err != nil {
				s.log.Warn("background tick", zap.Error(err))
			}
		}
	}
}
