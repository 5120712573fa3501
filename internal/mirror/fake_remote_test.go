package mirror

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/marks/internal/domain"
)

// fakeRemote is an in-memory RemoteStore. It never publishes on its own;
// tests push change events explicitly with emit.
type fakeRemote struct {
	mu     sync.Mutex
	rows   map[string][]domain.Bookmark
	base   time.Time
	nextID int
	subs   []*fakeSub

	fetchErr  error
	insertErr error
	updateErr error
	deleteErr error
	subErr    error

	// onFetch runs inside Fetch before it returns, without the lock held.
	onFetch func()
	// insertID overrides the id of the next inserted row.
	insertID string
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		rows: make(map[string][]domain.Bookmark),
		base: time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC),
	}
}

func (f *fakeRemote) seed(userID string, list ...domain.Bookmark) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range list {
		list[i].UserID = userID
	}
	f.rows[userID] = append(f.rows[userID], list...)
}

func (f *fakeRemote) Fetch(_ context.Context, userID string) ([]domain.Bookmark, error) {
	f.mu.Lock()
	err := f.fetchErr
	out := append([]domain.Bookmark(nil), f.rows[userID]...)
	hook := f.onFetch
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (f *fakeRemote) Insert(_ context.Context, userID string, d domain.Draft) (domain.Bookmark, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return domain.Bookmark{}, f.insertErr
	}

	f.nextID++
	id := fmt.Sprintf("b%d", f.nextID)
	if f.insertID != "" {
		id, f.insertID = f.insertID, ""
	}
	b := d.Apply(domain.Bookmark{
		ID:        id,
		UserID:    userID,
		CreatedAt: f.base.Add(time.Duration(f.nextID) * time.Minute),
	})
	f.rows[userID] = append([]domain.Bookmark{b}, f.rows[userID]...)
	return b, nil
}

func (f *fakeRemote) Update(_ context.Context, userID, id string, d domain.Draft) (domain.Bookmark, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return domain.Bookmark{}, f.updateErr
	}
	for i, b := range f.rows[userID] {
		if b.ID == id {
			f.rows[userID][i] = d.Apply(b)
			return f.rows[userID][i], nil
		}
	}
	return domain.Bookmark{}, domain.ErrNotFound
}

func (f *fakeRemote) Delete(_ context.Context, userID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	rows := f.rows[userID]
	for i, b := range rows {
		if b.ID == id {
			f.rows[userID] = append(rows[:i:i], rows[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeRemote) Subscribe(_ context.Context, userID string) (domain.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subErr != nil {
		return nil, f.subErr
	}
	sub := &fakeSub{
		id:     fmt.Sprintf("sub-%d", len(f.subs)+1),
		userID: userID,
		ch:     make(chan domain.Event, 64),
	}
	f.subs = append(f.subs, sub)
	return sub, nil
}

// emit pushes ev to every open subscription of userID.
func (f *fakeRemote) emit(userID string, ev domain.Event) {
	f.mu.Lock()
	subs := append([]*fakeSub(nil), f.subs...)
	f.mu.Unlock()

	for _, s := range subs {
		if s.userID == userID {
			s.send(ev)
		}
	}
}

func (f *fakeRemote) openSubs() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.subs {
		if !s.isClosed() {
			n++
		}
	}
	return n
}

type fakeSub struct {
	id     string
	userID string
	ch     chan domain.Event

	mu     sync.Mutex
	closed bool
}

func (s *fakeSub) ID() string                  { return s.id }
func (s *fakeSub) Events() <-chan domain.Event { return s.ch }

func (s *fakeSub) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.ch)
	}
	return nil
}

func (s *fakeSub) send(ev domain.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.ch <- ev
	}
}

func (s *fakeSub) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// closingRemote closes the synchronizer after each successful write, the way
// a shutdown racing an in-flight request would.
type closingRemote struct {
	*fakeRemote
	s *Synchronizer
}

func (c *closingRemote) Insert(ctx context.Context, userID string, d domain.Draft) (domain.Bookmark, error) {
	b, err := c.fakeRemote.Insert(ctx, userID, d)
	_ = c.s.Close()
	return b, err
}

func (c *closingRemote) Update(ctx context.Context, userID, id string, d domain.Draft) (domain.Bookmark, error) {
	b, err := c.fakeRemote.Update(ctx, userID, id, d)
	_ = c.s.Close()
	return b, err
}

func (c *closingRemote) Delete(ctx context.Context, userID, id string) error {
	err := c.fakeRemote.Delete(ctx, userID, id)
	_ = c.s.Close()
	return err
}
