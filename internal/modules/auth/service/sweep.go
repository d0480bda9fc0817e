package service

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oscarrryeezus/PAWS-backend/internal/modules/auth/domain"
	"github.com/oscarrryeezus/PAWS-backend/internal/modules/auth/infra"
	"github.com/oscarrryeezus/PAWS-backend/internal/platform/logger"
)

// Sweeper is the recurring cleanup task: it purges expired or used PINs
// from the account store, expired entries from the ephemeral store, and
// closes timed-out sessions. One run at a time; a tick that lands while a
// run is in progress is dropped, not queued.
type Sweeper struct {
	users           domain.UserRepo
	cache           *infra.Cache
	interval        time.Duration
	sessionInterval time.Duration
	log             *logger.Logger

	running atomic.Bool

	mu           sync.Mutex
	lastRun      time.Time
	lastCount    int64
	lastDuration time.Duration
	totalCleaned int64
}

// SweepStats is an observability snapshot of the scheduler.
type SweepStats struct {
	Running      bool
	LastRun      time.Time
	LastCount    int64
	LastDuration time.Duration
	TotalCleaned int64
}

func NewSweeper(users domain.UserRepo, cache *infra.Cache, interval, sessionInterval time.Duration, log *logger.Logger) *Sweeper {
	return &Sweeper{
		users:           users,
		cache:           cache,
		interval:        interval,
		sessionInterval: sessionInterval,
		log:             log,
	}
}

// Start runs the scheduler until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	go func() {
		sweep := time.NewTicker(s.interval)
		sessions := time.NewTicker(s.sessionInterval)
		defer sweep.Stop()
		defer sessions.Stop()

		s.log.Info("pin sweep scheduler started",
			"interval", s.interval, "session_interval", s.sessionInterval)
		for {
			select {
			case <-ctx.Done():
				s.log.Info("pin sweep scheduler stopped")
				return
			case <-sweep.C:
				if _, err := s.RunOnce(); err != nil {
					s.log.Error("pin sweep failed", "error", err)
				}
			case <-sessions.C:
				s.closeExpiredSessions()
			}
		}
	}()
}

// RunOnce executes one sweep. Single-flight: if a previous run is still
// going, it returns immediately with no work done.
func (s *Sweeper) RunOnce() (int64, error) {
	if !s.running.CompareAndSwap(false, true) {
		s.log.Warn("pin sweep already in progress, skipping tick")
		return 0, nil
	}
	defer s.running.Store(false)

	start := time.Now()
	cleaned, err := s.users.SweepExpiredOrUsedPins()
	if err != nil {
		return 0, err
	}
	// expired session markers must flip session_active off before the
	// blind sweep silently drops them
	s.closeExpiredSessions()
	dropped := s.cache.Sweep()

	dur := time.Since(start)
	s.mu.Lock()
	s.lastRun = start
	s.lastCount = cleaned
	s.lastDuration = dur
	s.totalCleaned += cleaned
	s.mu.Unlock()

	s.log.Info("pin sweep completed",
		"pins_cleaned", cleaned, "cache_dropped", dropped, "duration", dur)
	return cleaned, nil
}

// closeExpiredSessions deletes session markers past their deadline and
// flips the account's session_active flag off.
func (s *Sweeper) closeExpiredSessions() {
	for _, e := range s.cache.List() {
		if !strings.HasSuffix(e.Key, infra.KeySession) || e.Remaining > 0 {
			continue
		}
		m, ok := e.Data.(domain.SessionMarker)
		if !ok {
			s.cache.Delete(e.Key)
			continue
		}
		s.cache.Delete(e.Key)
		if err := s.users.SetSessionActive(m.Email, false); err != nil {
			s.log.Error("failed to close expired session", "email", m.Email, "error", err)
			continue
		}
		s.log.Info("expired session closed", "email", m.Email, "session_id", m.ID)
	}
}

// Stats snapshots the scheduler counters.
func (s *Sweeper) Stats() SweepStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return SweepStats{
		Running:      s.running.Load(),
		LastRun:      s.lastRun,
		LastCount:    s.lastCount,
		LastDuration: s.lastDuration,
		TotalCleaned: s.totalCleaned,
	}
}
