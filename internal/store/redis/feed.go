package redis

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/marks/internal/domain"
	"github.com/MrSnakeDoc/marks/internal/logger"
)

// Subscribe opens the user's change feed. The subscription is confirmed
// with Redis before it is returned.
func (s *Store) Subscribe(ctx context.Context, userID string) (domain.Subscription, error) {
	ps := s.client.Subscribe(ctx, EventsChannel(userID))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("failed to subscribe to changes: %w", err)
	}

	sub := &Subscription{
		id:      uuid.NewString(),
		userID:  userID,
		ps:      ps,
		events:  make(chan domain.Event, 16),
		closing: make(chan struct{}),
		done:    make(chan struct{}),
		logger:  s.logger,
	}
	go sub.run()

	s.logger.Debug("change feed opened",
		logger.String("user_id", userID),
		logger.String("subscription_id", sub.id))
	return sub, nil
}

// Subscription is one live change feed backed by a Redis Pub/Sub connection.
type Subscription struct {
	id     string
	userID string
	ps     *redis.PubSub
	events chan domain.Event
	logger logger.Logger

	closing chan struct{}
	done    chan struct{}
	once    sync.Once
	err     error
}

func (s *Subscription) ID() string                  { return s.id }
func (s *Subscription) Events() <-chan domain.Event { return s.events }

func (s *Subscription) run() {
	defer close(s.done)
	defer close(s.events)

	msgs := s.ps.Channel()
	for {
		select {
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			ev, err := decodeChange([]byte(msg.Payload))
			if err != nil {
				s.logger.Warn("dropping malformed change message",
					logger.String("subscription_id", s.id),
					logger.String("channel", msg.Channel),
					logger.Error(err))
				continue
			}
			if ev.Kind != domain.Deleted && ev.Record.UserID != s.userID {
				continue
			}
			select {
			case s.events <- ev:
			case <-s.closing:
				return
			}
		case <-s.closing:
			return
		}
	}
}

// Close releases the Pub/Sub connection and waits until Events is closed.
func (s *Subscription) Close() error {
	s.once.Do(func() {
		close(s.closing)
		s.err = s.ps.Close()
		<-s.done
		s.logger.Debug("change feed closed",
			logger.String("user_id", s.userID),
			logger.String("subscription_id", s.id))
	})
	return s.err
}
