package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/marks/internal/domain"
	"github.com/MrSnakeDoc/marks/internal/logger"
)

// Store is the RemoteStore backed by Redis.
//
// Each bookmark is a JSON record under its own key, each user has a sorted
// set of ids scored by creation time, and every successful write is
// published on the user's events channel.
type Store struct {
	client *redis.Client
	logger logger.Logger
	now    func() time.Time
}

var _ domain.RemoteStore = (*Store)(nil)

// timePrecision matches the resolution of the ordering index score.
const timePrecision = time.Millisecond

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the clock used to stamp created_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client, log logger.Logger, opts ...Option) *Store {
	s := &Store{
		client: client,
		logger: log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// newID returns a time-ordered id for a row created at t.
func newID(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), ulid.DefaultEntropy()).String()
}

// publish sends a change message. A failed publish does not undo the write;
// subscribers catch up on their next full fetch.
func (s *Store) publish(ctx context.Context, userID string, ev domain.Event) {
	payload, err := encodeChange(ev, s.now())
	if err != nil {
		s.logger.Warn("failed to encode change", logger.Error(err))
		return
	}
	if err := s.client.Publish(ctx, EventsChannel(userID), payload).Err(); err != nil {
		s.logger.Warn("failed to publish change",
			logger.String("user_id", userID),
			logger.String("kind", ev.Kind.String()),
			logger.String("bookmark_id", ev.TargetID()),
			logger.Error(err))
	}
}

// Ping reports whether Redis answers.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}
