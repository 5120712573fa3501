package mirror

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/MrSnakeDoc/marks/internal/domain"
	"github.com/MrSnakeDoc/marks/internal/logger"
)

// ErrClosed is returned once the synchronizer has been closed.
var ErrClosed = errors.New("synchronizer closed")

// Snapshot is a read-only view of the local mirror.
// Bookmarks is never mutated after publication; callers must not modify it.
type Snapshot struct {
	UserID    string
	Bookmarks []domain.Bookmark
	Loading   bool
	Version   uint64

	session uint64
}

// op is a state transition executed by the apply loop.
// Ops tagged with an older session are dropped, unless reset is set.
type op struct {
	session uint64
	reset   bool
	fn      func(cur Snapshot) (Snapshot, bool)
	done    chan struct{}
	applied bool
}

// Synchronizer owns the local mirror of one user's bookmarks.
//
// A single loop goroutine is the only writer of the snapshot. Remote push
// events and the results of local mutations are both funneled through it, and
// every transition publishes a whole new list with an atomic swap.
type Synchronizer struct {
	remote domain.RemoteStore
	logger logger.Logger

	state  atomic.Pointer[Snapshot]
	ops    chan *op
	stopCh chan struct{}
	doneCh chan struct{}
	once   sync.Once

	// pending buffers feed events received while a fetch is in flight.
	// Only the loop goroutine touches it.
	pending []domain.Event

	mu       sync.Mutex // serializes Initialize and Close
	session  uint64
	sub      domain.Subscription
	pumpDone chan struct{}

	watchMu   sync.Mutex
	watchers  map[int]chan struct{}
	nextWatch int
}

// New starts the apply loop. The mirror starts empty and loading until
// Initialize is called.
func New(remote domain.RemoteStore, log logger.Logger) *Synchronizer {
	s := &Synchronizer{
		remote:   remote,
		logger:   log,
		ops:      make(chan *op),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		watchers: make(map[int]chan struct{}),
	}
	s.state.Store(&Snapshot{Bookmarks: []domain.Bookmark{}, Loading: true})

	go s.loop()
	return s
}

func (s *Synchronizer) loop() {
	defer close(s.doneCh)
	for {
		select {
		case o := <-s.ops:
			cur := *s.state.Load()
			if o.reset || o.session == cur.session {
				next, changed := o.fn(cur)
				if changed {
					next.Version = cur.Version + 1
					s.state.Store(&next)
					s.notify()
				}
				o.applied = true
			}
			close(o.done)
		case <-s.stopCh:
			return
		}
	}
}

// submit hands o to the loop and waits until it has been processed.
func (s *Synchronizer) submit(o *op) (bool, error) {
	o.done = make(chan struct{})
	select {
	case s.ops <- o:
	case <-s.stopCh:
		return false, ErrClosed
	}

	select {
	case <-o.done:
		return o.applied, nil
	case <-s.doneCh:
		select {
		case <-o.done:
			return o.applied, nil
		default:
			return false, ErrClosed
		}
	}
}

// Snapshot returns the current state. It never blocks.
func (s *Synchronizer) Snapshot() Snapshot {
	return *s.state.Load()
}

// Initialize binds the mirror to userID. Any subscription held for a previous
// user is released first. An empty userID means "no session": the list is
// emptied and loading cleared, which is not an error.
//
// The change feed is opened before the full fetch; events arriving while the
// fetch is in flight are replayed on top of its result. When the fetch fails
// those events are replayed over the list already held and the error is
// returned.
//
// Switching to a different user empties the list before fetching, so a failed
// fetch after a switch leaves it empty rather than showing the previous
// user's bookmarks.
func (s *Synchronizer) Initialize(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case <-s.stopCh:
		return ErrClosed
	default:
	}

	s.releaseLocked()
	s.session++
	sess := s.session

	if userID == "" {
		_, err := s.submit(&op{session: sess, reset: true, fn: func(cur Snapshot) (Snapshot, bool) {
			s.pending = nil
			return Snapshot{Bookmarks: []domain.Bookmark{}, session: sess, Version: cur.Version}, true
		}})
		return err
	}

	log := s.logger.With(logger.String("user_id", userID))

	if _, err := s.submit(&op{session: sess, reset: true, fn: func(cur Snapshot) (Snapshot, bool) {
		s.pending = nil
		next := Snapshot{UserID: userID, Bookmarks: cur.Bookmarks, Loading: true, session: sess, Version: cur.Version}
		if cur.UserID != userID {
			next.Bookmarks = []domain.Bookmark{}
		}
		return next, true
	}}); err != nil {
		return err
	}

	sub, subErr := s.remote.Subscribe(ctx, userID)
	if subErr != nil {
		log.Warn("failed to open change feed, mirror will not receive remote updates",
			logger.Error(subErr))
	} else {
		s.sub = sub
		s.pumpDone = make(chan struct{})
		go s.pump(sess, sub, s.pumpDone)
		log.Debug("change feed subscribed", logger.String("subscription_id", sub.ID()))
	}

	list, fetchErr := s.remote.Fetch(ctx, userID)
	if fetchErr != nil {
		log.Error("failed to fetch bookmarks", logger.Error(fetchErr))
		_, err := s.submit(&op{session: sess, fn: func(cur Snapshot) (Snapshot, bool) {
			next := cur.Bookmarks
			for _, ev := range s.pending {
				next, _ = applyEvent(next, ev)
			}
			s.pending = nil
			cur.Bookmarks = next
			cur.Loading = false
			return cur, true
		}})
		if err != nil {
			return err
		}
		return domain.NewTransportError("fetch", fetchErr)
	}

	list = canonicalize(list)
	if _, err := s.submit(&op{session: sess, fn: func(cur Snapshot) (Snapshot, bool) {
		next := list
		for _, ev := range s.pending {
			next, _ = applyEvent(next, ev)
		}
		s.pending = nil
		cur.Bookmarks = next
		cur.Loading = false
		return cur, true
	}}); err != nil {
		return err
	}

	log.Info("bookmarks loaded", logger.Int("count", len(list)))
	return domain.NewTransportError("subscribe", subErr)
}

// pump forwards one subscription's events to the loop until the feed closes.
func (s *Synchronizer) pump(sess uint64, sub domain.Subscription, done chan struct{}) {
	defer close(done)
	for ev := range sub.Events() {
		if _, err := s.submit(s.eventOp(sess, ev)); err != nil {
			return
		}
	}
}

func (s *Synchronizer) eventOp(sess uint64, ev domain.Event) *op {
	return &op{session: sess, fn: func(cur Snapshot) (Snapshot, bool) {
		if cur.Loading {
			s.pending = append(s.pending, ev)
			return cur, false
		}
		next, changed := applyEvent(cur.Bookmarks, ev)
		cur.Bookmarks = next
		return cur, changed
	}}
}

// ApplyRemoteEvent folds a change event into the current session's list.
// Inserted prepends unless the id is present, Updated replaces in place,
// Deleted removes; unknown ids are ignored. Replaying an event is harmless.
func (s *Synchronizer) ApplyRemoteEvent(ev domain.Event) error {
	_, err := s.submit(s.eventOp(s.Snapshot().session, ev))
	return err
}

// Add creates a bookmark remotely and prepends the canonical record.
func (s *Synchronizer) Add(ctx context.Context, draft domain.Draft) (domain.Bookmark, error) {
	snap := s.Snapshot()
	if snap.UserID == "" {
		return domain.Bookmark{}, domain.ErrNoSession
	}
	draft = draft.Normalize()
	if err := draft.Validate(); err != nil {
		return domain.Bookmark{}, err
	}

	rec, err := s.remote.Insert(ctx, snap.UserID, draft)
	if err != nil {
		s.logger.Warn("failed to add bookmark",
			logger.String("user_id", snap.UserID),
			logger.Error(err))
		return domain.Bookmark{}, domain.NewTransportError("insert", err)
	}

	_, err = s.submit(&op{session: snap.session, fn: func(cur Snapshot) (Snapshot, bool) {
		next, changed := prepend(cur.Bookmarks, rec)
		if !changed {
			// The change feed delivered it first; keep the confirmed record.
			next, changed = replace(cur.Bookmarks, rec)
		}
		cur.Bookmarks = next
		return cur, changed
	}})
	if err != nil && !errors.Is(err, ErrClosed) {
		return domain.Bookmark{}, err
	}
	// The remote write stands even if the mirror closed meanwhile.
	return rec, nil
}

// Update edits a bookmark remotely and swaps in the canonical record.
func (s *Synchronizer) Update(ctx context.Context, id string, draft domain.Draft) (domain.Bookmark, error) {
	snap := s.Snapshot()
	if snap.UserID == "" {
		return domain.Bookmark{}, domain.ErrNoSession
	}
	draft = draft.Normalize()
	if err := draft.Validate(); err != nil {
		return domain.Bookmark{}, err
	}

	rec, err := s.remote.Update(ctx, snap.UserID, id, draft)
	if err != nil {
		s.logger.Warn("failed to update bookmark",
			logger.String("user_id", snap.UserID),
			logger.String("bookmark_id", id),
			logger.Error(err))
		return domain.Bookmark{}, domain.NewTransportError("update", err)
	}

	_, err = s.submit(&op{session: snap.session, fn: func(cur Snapshot) (Snapshot, bool) {
		next, changed := replace(cur.Bookmarks, rec)
		cur.Bookmarks = next
		return cur, changed
	}})
	if err != nil && !errors.Is(err, ErrClosed) {
		return domain.Bookmark{}, err
	}
	// The remote write stands even if the mirror closed meanwhile.
	return rec, nil
}

// Remove deletes a bookmark remotely, then locally. Ids unknown to the local
// list resolve as a no-op.
func (s *Synchronizer) Remove(ctx context.Context, id string) error {
	snap := s.Snapshot()
	if snap.UserID == "" {
		return domain.ErrNoSession
	}

	if err := s.remote.Delete(ctx, snap.UserID, id); err != nil {
		s.logger.Warn("failed to delete bookmark",
			logger.String("user_id", snap.UserID),
			logger.String("bookmark_id", id),
			logger.Error(err))
		return domain.NewTransportError("delete", err)
	}

	_, err := s.submit(&op{session: snap.session, fn: func(cur Snapshot) (Snapshot, bool) {
		next, changed := remove(cur.Bookmarks, id)
		cur.Bookmarks = next
		return cur, changed
	}})
	if errors.Is(err, ErrClosed) {
		return nil
	}
	return err
}

// Watch returns a channel that receives a signal after each state change.
// Signals coalesce: a slow reader sees at most one pending wake-up and should
// re-read Snapshot. The channel is closed when the synchronizer closes.
func (s *Synchronizer) Watch() (<-chan struct{}, func()) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()

	ch := make(chan struct{}, 1)
	if s.watchers == nil {
		close(ch)
		return ch, func() {}
	}

	id := s.nextWatch
	s.nextWatch++
	s.watchers[id] = ch

	return ch, func() {
		s.watchMu.Lock()
		defer s.watchMu.Unlock()
		delete(s.watchers, id)
	}
}

func (s *Synchronizer) notify() {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	for _, ch := range s.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Close releases the change feed and stops the loop. It is safe to call twice.
func (s *Synchronizer) Close() error {
	s.mu.Lock()
	s.releaseLocked()
	s.mu.Unlock()

	s.once.Do(func() {
		close(s.stopCh)
		<-s.doneCh

		s.watchMu.Lock()
		for _, ch := range s.watchers {
			close(ch)
		}
		s.watchers = nil
		s.watchMu.Unlock()
	})
	return nil
}

// releaseLocked closes the active subscription and waits for its pump.
func (s *Synchronizer) releaseLocked() {
	if s.sub == nil {
		return
	}
	if err := s.sub.Close(); err != nil {
		s.logger.Warn("failed to close change feed",
			logger.String("subscription_id", s.sub.ID()),
			logger.Error(err))
	}
	<-s.pumpDone
	s.sub = nil
	s.pumpDone = nil
}
