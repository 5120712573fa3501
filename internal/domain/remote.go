package domain

import "context"

// RemoteStore is the hosted backend the synchronizer mirrors.
// Every call is scoped to one user; rows of other users are invisible.
type RemoteStore interface {
	// Fetch returns all of the user's bookmarks, newest first.
	Fetch(ctx context.Context, userID string) ([]Bookmark, error)
	// Insert creates a bookmark; the store assigns ID and CreatedAt.
	Insert(ctx context.Context, userID string, d Draft) (Bookmark, error)
	// Update replaces the editable fields of an existing bookmark.
	Update(ctx context.Context, userID, id string, d Draft) (Bookmark, error)
	// Delete removes a bookmark. Deleting a missing id is acknowledged.
	Delete(ctx context.Context, userID, id string) error
	// Subscribe opens the user's change feed.
	Subscribe(ctx context.Context, userID string) (Subscription, error)
}

// Subscription is a live change feed. Events is closed after Close returns.
type Subscription interface {
	ID() string
	Events() <-chan Event
	Close() error
}
