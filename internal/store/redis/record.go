package redis

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/marks/internal/domain"
)

// bookmarkRecord is the stored row. Field names follow the backend's
// snake_case column names.
type bookmarkRecord struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Description string    `json:"description,omitempty"`
	Category    string    `json:"category,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func recordFrom(b domain.Bookmark) bookmarkRecord {
	return bookmarkRecord{
		ID:          b.ID,
		UserID:      b.UserID,
		Title:       b.Title,
		URL:         b.URL,
		Description: b.Description,
		Category:    b.Category,
		CreatedAt:   b.CreatedAt.UTC(),
	}
}

// toDomain validates the row before it leaves the store.
func (r bookmarkRecord) toDomain() (domain.Bookmark, error) {
	b := domain.Bookmark{
		ID:          r.ID,
		UserID:      r.UserID,
		Title:       r.Title,
		URL:         r.URL,
		Description: r.Description,
		Category:    r.Category,
		CreatedAt:   r.CreatedAt,
	}
	if err := b.Validate(); err != nil {
		return domain.Bookmark{}, err
	}
	return b, nil
}

func decodeBookmark(data []byte) (domain.Bookmark, error) {
	var r bookmarkRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return domain.Bookmark{}, fmt.Errorf("%w: %v", domain.ErrInvalidBookmark, err)
	}
	return r.toDomain()
}

func encodeBookmark(b domain.Bookmark) ([]byte, error) {
	data, err := json.Marshal(recordFrom(b))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal bookmark: %w", err)
	}
	return data, nil
}

// changeMessage is the payload published on a user's events channel.
// It mirrors the realtime payload of the hosted backend: new row for
// INSERT/UPDATE, old key for DELETE.
type changeMessage struct {
	Type      string          `json:"type"`
	New       *bookmarkRecord `json:"new,omitempty"`
	Old       *oldKey         `json:"old,omitempty"`
	Timestamp time.Time       `json:"commit_timestamp"`
}

type oldKey struct {
	ID string `json:"id"`
}

func encodeChange(ev domain.Event, at time.Time) ([]byte, error) {
	msg := changeMessage{Type: ev.Kind.String(), Timestamp: at.UTC()}
	switch ev.Kind {
	case domain.Inserted, domain.Updated:
		rec := recordFrom(ev.Record)
		msg.New = &rec
	case domain.Deleted:
		msg.Old = &oldKey{ID: ev.TargetID()}
	default:
		return nil, fmt.Errorf("cannot encode event kind %v", ev.Kind)
	}
	return json.Marshal(msg)
}

// decodeChange parses and validates one change message.
func decodeChange(payload []byte) (domain.Event, error) {
	var msg changeMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return domain.Event{}, fmt.Errorf("failed to unmarshal change: %w", err)
	}

	kind, err := domain.ParseEventKind(msg.Type)
	if err != nil {
		return domain.Event{}, err
	}

	switch kind {
	case domain.Deleted:
		if msg.Old == nil || msg.Old.ID == "" {
			return domain.Event{}, fmt.Errorf("delete change without old id")
		}
		return domain.DeletedEvent(msg.Old.ID), nil
	default:
		if msg.New == nil {
			return domain.Event{}, fmt.Errorf("%s change without new row", msg.Type)
		}
		b, err := msg.New.toDomain()
		if err != nil {
			return domain.Event{}, err
		}
		return domain.Event{Kind: kind, Record: b, ID: b.ID}, nil
	}
}
