package domain

import (
	"errors"
	"testing"
	"time"
)

func TestDraftValidate(t *testing.T) {
	tests := []struct {
		name    string
		draft   Draft
		wantErr bool
	}{
		{"valid", Draft{Title: "Go", URL: "https://go.dev"}, false},
		{"blank title", Draft{Title: "   ", URL: "https://go.dev"}, true},
		{"missing url", Draft{Title: "Go"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.draft.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidBookmark) {
				t.Errorf("Validate() error should wrap ErrInvalidBookmark, got %v", err)
			}
		})
	}
}

func TestDraftNormalizeAndApply(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	orig := Bookmark{ID: "x1", UserID: "u1", Title: "old", URL: "https://old", CreatedAt: created}

	d := Draft{Title: "  New ", URL: " https://new ", Category: " Work "}.Normalize()
	got := d.Apply(orig)

	if got.ID != "x1" || got.UserID != "u1" || !got.CreatedAt.Equal(created) {
		t.Errorf("Apply() changed identity fields: %+v", got)
	}
	if got.Title != "New" || got.URL != "https://new" || got.Category != "Work" {
		t.Errorf("Apply() did not copy normalized fields: %+v", got)
	}
}

func TestBookmarkValidate(t *testing.T) {
	ok := Bookmark{ID: "1", Title: "t", URL: "u", CreatedAt: time.Now()}
	if err := ok.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}

	broken := []Bookmark{
		{Title: "t", URL: "u", CreatedAt: time.Now()},
		{ID: "1", URL: "u", CreatedAt: time.Now()},
		{ID: "1", Title: "t", CreatedAt: time.Now()},
		{ID: "1", Title: "t", URL: "u"},
	}
	for i, b := range broken {
		if err := b.Validate(); !errors.Is(err, ErrInvalidBookmark) {
			t.Errorf("case %d: Validate() = %v, want ErrInvalidBookmark", i, err)
		}
	}
}

func TestTransportError(t *testing.T) {
	base := errors.New("connection refused")
	err := NewTransportError("insert", base)

	if !IsTransport(err) {
		t.Error("IsTransport() = false, want true")
	}
	if !errors.Is(err, base) {
		t.Error("TransportError should unwrap to its cause")
	}
	if NewTransportError("insert", nil) != nil {
		t.Error("NewTransportError(nil) should be nil")
	}
	if again := NewTransportError("update", err); again != err {
		t.Error("NewTransportError should not double-wrap")
	}
}

func TestEventTargetID(t *testing.T) {
	if id := DeletedEvent("d1").TargetID(); id != "d1" {
		t.Errorf("Deleted TargetID = %q", id)
	}
	if id := UpdatedEvent(Bookmark{ID: "u1"}).TargetID(); id != "u1" {
		t.Errorf("Updated TargetID = %q", id)
	}
	for _, s := range []string{"INSERT", "UPDATE", "DELETE"} {
		k, err := ParseEventKind(s)
		if err != nil || k.String() != s {
			t.Errorf("ParseEventKind(%q) = %v, %v", s, k, err)
		}
	}
	if _, err := ParseEventKind("TRUNCATE"); err == nil {
		t.Error("ParseEventKind(TRUNCATE) should fail")
	}
}
