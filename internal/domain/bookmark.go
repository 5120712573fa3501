package domain

import (
	"fmt"
	"strings"
	"time"
)

// Bookmark is the canonical, server-confirmed record of a saved link.
type Bookmark struct {
	// ─────────────────────────────
	// Identity (immutable, assigned by the remote store)
	// ─────────────────────────────

	// ID is the opaque unique identifier.
	ID string `json:"id"`

	// UserID is the owner. Every remote query is scoped by it.
	UserID string `json:"user_id"`

	// ─────────────────────────────
	// Editable content
	// ─────────────────────────────

	// Title is the display string, never empty.
	Title string `json:"title"`

	// URL is expected to be absolute; only non-emptiness is enforced.
	URL string `json:"url"`

	// Description is optional.
	Description string `json:"description,omitempty"`

	// Category is an optional free-form label. Grouping is case-sensitive.
	Category string `json:"category,omitempty"`

	// ─────────────────────────────
	// Metadata
	// ─────────────────────────────

	// CreatedAt is assigned by the remote store and drives default ordering
	// (newest first) and the recency / daily analytics.
	CreatedAt time.Time `json:"created_at"`
}

// Validate checks the invariants every canonical record must hold.
func (b Bookmark) Validate() error {
	switch {
	case b.ID == "":
		return fmt.Errorf("%w: missing id", ErrInvalidBookmark)
	case strings.TrimSpace(b.Title) == "":
		return fmt.Errorf("%w: empty title (id=%s)", ErrInvalidBookmark, b.ID)
	case strings.TrimSpace(b.URL) == "":
		return fmt.Errorf("%w: empty url (id=%s)", ErrInvalidBookmark, b.ID)
	case b.CreatedAt.IsZero():
		return fmt.Errorf("%w: missing created_at (id=%s)", ErrInvalidBookmark, b.ID)
	}
	return nil
}

// Draft carries the user-editable fields of an add or edit intent.
type Draft struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category,omitempty"`
}

// Normalize trims surrounding whitespace from every field.
func (d Draft) Normalize() Draft {
	return Draft{
		Title:       strings.TrimSpace(d.Title),
		URL:         strings.TrimSpace(d.URL),
		Description: strings.TrimSpace(d.Description),
		Category:    strings.TrimSpace(d.Category),
	}
}

// Validate rejects drafts without a title or url.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidBookmark)
	}
	if strings.TrimSpace(d.URL) == "" {
		return fmt.Errorf("%w: url is required", ErrInvalidBookmark)
	}
	return nil
}

// Apply returns b with the draft's editable fields. Identity and CreatedAt are kept.
func (d Draft) Apply(b Bookmark) Bookmark {
	b.Title = d.Title
	b.URL = d.URL
	b.Description = d.Description
	b.Category = d.Category
	return b
}
