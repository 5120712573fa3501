package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/MrSnakeDoc/marks/internal/domain"
	"github.com/MrSnakeDoc/marks/internal/logger"
	"github.com/MrSnakeDoc/marks/internal/mirror"
)

// entry is one user's live mirror. ready is closed once the first
// Initialize returned; err holds its failure, if the session was dropped.
type entry struct {
	sync     *mirror.Synchronizer
	lastSeen time.Time
	ready    chan struct{}
	err      error
}

// Hub keeps one Synchronizer per active user. Mirrors are created lazily on
// first use and released when idle or on shutdown.
type Hub struct {
	remote domain.RemoteStore
	logger logger.Logger
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[string]*entry // userID -> mirror
	closed   bool
}

// NewHub creates an empty hub.
func NewHub(remote domain.RemoteStore, log logger.Logger) *Hub {
	return &Hub{
		remote:   remote,
		logger:   log,
		now:      time.Now,
		sessions: make(map[string]*entry),
	}
}

// Acquire returns the user's mirror, initializing it on first use.
//
// A failed initial fetch drops the session so the next call starts over.
// A failed change-feed subscription keeps it: the list is served without
// live updates until the session is recycled.
func (h *Hub) Acquire(ctx context.Context, userID string) (*mirror.Synchronizer, error) {
	if userID == "" {
		return nil, domain.ErrNoSession
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, mirror.ErrClosed
	}
	if e, ok := h.sessions[userID]; ok {
		e.lastSeen = h.now()
		h.mu.Unlock()
		return e.wait(ctx)
	}

	s := mirror.New(h.remote, h.logger)
	e := &entry{sync: s, lastSeen: h.now(), ready: make(chan struct{})}
	h.sessions[userID] = e
	h.mu.Unlock()

	h.logger.Debug("session opened", logger.String("user_id", userID))

	err := s.Initialize(ctx, userID)
	var te *domain.TransportError
	switch {
	case err == nil:
	case errors.As(err, &te) && te.Op == "subscribe":
		h.logger.Warn("session running without live updates",
			logger.String("user_id", userID),
			logger.Error(err))
	default:
		e.err = err
		h.drop(userID, s)
	}
	close(e.ready)

	if e.err != nil {
		return nil, e.err
	}
	return s, nil
}

// wait blocks until the entry's first Initialize has returned.
func (e *entry) wait(ctx context.Context) (*mirror.Synchronizer, error) {
	select {
	case <-e.ready:
	default:
		select {
		case <-e.ready:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if e.err != nil {
		return nil, e.err
	}
	return e.sync, nil
}

// Touch marks the user's session as used now.
func (h *Hub) Touch(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if e, ok := h.sessions[userID]; ok {
		e.lastSeen = h.now()
	}
}

// Release closes the user's mirror, if any.
func (h *Hub) Release(userID string) {
	h.mu.Lock()
	e, ok := h.sessions[userID]
	if ok {
		delete(h.sessions, userID)
	}
	h.mu.Unlock()

	if ok {
		h.closeEntry(userID, e.sync)
	}
}

// drop removes userID only if it still maps to s.
func (h *Hub) drop(userID string, s *mirror.Synchronizer) {
	h.mu.Lock()
	if e, ok := h.sessions[userID]; ok && e.sync == s {
		delete(h.sessions, userID)
	}
	h.mu.Unlock()

	h.closeEntry(userID, s)
}

// ReapIdle releases sessions not used for longer than ttl and returns how
// many were released.
func (h *Hub) ReapIdle(now time.Time, ttl time.Duration) int {
	h.mu.Lock()
	idle := make(map[string]*mirror.Synchronizer)
	for userID, e := range h.sessions {
		if now.Sub(e.lastSeen) > ttl {
			idle[userID] = e.sync
			delete(h.sessions, userID)
		}
	}
	h.mu.Unlock()

	for userID, s := range idle {
		h.closeEntry(userID, s)
	}
	return len(idle)
}

// Count returns the number of live sessions.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.sessions)
}

// Close releases every session. Acquire fails afterwards.
func (h *Hub) Close() error {
	h.mu.Lock()
	h.closed = true
	all := h.sessions
	h.sessions = make(map[string]*entry)
	h.mu.Unlock()

	for userID, e := range all {
		h.closeEntry(userID, e.sync)
	}
	return nil
}

func (h *Hub) closeEntry(userID string, s *mirror.Synchronizer) {
	if err := s.Close(); err != nil {
		h.logger.Warn("failed to close session",
			logger.String("user_id", userID),
			logger.Error(err))
		return
	}
	h.logger.Debug("session closed", logger.String("user_id", userID))
}
