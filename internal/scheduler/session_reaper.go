package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/MrSnakeDoc/marks/internal/logger"
)

const (
	// DefaultSessionIdleTTL is how long an unused session keeps its change feed
	DefaultSessionIdleTTL = 30 * time.Minute
)

// IdleReaper releases sessions that have not been used for a while.
type IdleReaper interface {
	ReapIdle(now time.Time, ttl time.Duration) int
	Count() int
}

// SessionReaper periodically releases idle sessions and their subscriptions
type SessionReaper struct {
	sessions IdleReaper
	logger   logger.Logger
	interval time.Duration
	ttl      time.Duration
	now      func() time.Time

	stopCh   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewSessionReaper creates a new session reaper
func NewSessionReaper(
	sessions IdleReaper,
	log logger.Logger,
	interval time.Duration,
	ttl time.Duration,
) *SessionReaper {
	if ttl == 0 {
		ttl = DefaultSessionIdleTTL
	}

	return &SessionReaper{
		sessions: sessions,
		logger:   log,
		interval: interval,
		ttl:      ttl,
		now:      time.Now,
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start begins the periodic reaping
func (r *SessionReaper) Start(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	go func() {
		defer close(r.done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.Reap()
			case <-r.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reaper and waits for its goroutine
func (r *SessionReaper) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
	<-r.done
}

// Reap releases every session idle for longer than the TTL
func (r *SessionReaper) Reap() int {
	released := r.sessions.ReapIdle(r.now(), r.ttl)

	if released > 0 {
		r.logger.Info("released idle sessions",
			logger.Int("released", released),
			logger.Int("active", r.sessions.Count()),
			logger.Duration("idle_ttl", r.ttl))
	} else {
		r.logger.Debug("no idle sessions to release")
	}

	return released
}
