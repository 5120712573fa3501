package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/marks/internal/domain"
	"github.com/MrSnakeDoc/marks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/marks/internal/mirror"
)

// snapshotResponse is the wire view of a mirror snapshot after filtering.
type snapshotResponse struct {
	Bookmarks []domain.Bookmark `json:"bookmarks"`
	Loading   bool              `json:"loading"`
	Version   uint64            `json:"version"`
	Total     int               `json:"total"`
	Query     string            `json:"q,omitempty"`
	Category  string            `json:"category,omitempty"`
}

func newSnapshotResponse(snap mirror.Snapshot, f domain.Filter) snapshotResponse {
	return snapshotResponse{
		Bookmarks: f.Apply(snap.Bookmarks),
		Loading:   snap.Loading,
		Version:   snap.Version,
		Total:     len(snap.Bookmarks),
		Query:     f.Query,
		Category:  f.Category,
	}
}

// ListBookmarks returns the caller's mirror, searched and filtered.
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := mirrorFor(w, r, d)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, newSnapshotResponse(s.Snapshot(), filterFrom(r)))
	}
}

// CreateBookmark adds a bookmark and returns the stored record.
func CreateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		draft, err := decodeDraft(w, r)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid request body")
			return
		}
		s, ok := mirrorFor(w, r, d)
		if !ok {
			return
		}

		rec, err := s.Add(r.Context(), draft)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusCreated, rec)
	}
}

// UpdateBookmark edits a bookmark and returns the stored record.
func UpdateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		draft, err := decodeDraft(w, r)
		if err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid request body")
			return
		}
		s, ok := mirrorFor(w, r, d)
		if !ok {
			return
		}

		rec, err := s.Update(r.Context(), chi.URLParam(r, "id"), draft)
		if err != nil {
			writeError(w, r, d, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

// DeleteBookmark removes a bookmark. Unknown ids succeed.
func DeleteBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := mirrorFor(w, r, d)
		if !ok {
			return
		}

		if err := s.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeError(w, r, d, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
