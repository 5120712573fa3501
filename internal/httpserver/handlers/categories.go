package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/marks/internal/domain"
	"github.com/MrSnakeDoc/marks/internal/httpserver/deps"
)

type categoriesResponse struct {
	Options   []string              `json:"options"`
	Histogram []domain.CategoryStat `json:"histogram"`
	Loading   bool                  `json:"loading"`
}

// Categories returns the selector options ("all" first) and the histogram.
func Categories(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := mirrorFor(w, r, d)
		if !ok {
			return
		}
		snap := s.Snapshot()

		options := append([]string{domain.AllCategories}, domain.Categories(snap.Bookmarks)...)
		writeJSON(w, http.StatusOK, categoriesResponse{
			Options:   options,
			Histogram: domain.CategoryHistogram(snap.Bookmarks),
			Loading:   snap.Loading,
		})
	}
}

// CategoryBookmarks lists one category addressed by its lowercase slug.
// The "all" slug lists everything.
func CategoryBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := mirrorFor(w, r, d)
		if !ok {
			return
		}
		snap := s.Snapshot()

		slug := strings.ToLower(chi.URLParam(r, "slug"))
		category := domain.AllCategories
		if slug != domain.AllCategories {
			name, found := domain.CategoryBySlug(snap.Bookmarks, slug)
			if !found {
				writeMessage(w, http.StatusNotFound, "unknown category")
				return
			}
			category = name
		}

		f := domain.Filter{Query: r.URL.Query().Get("q"), Category: category}
		writeJSON(w, http.StatusOK, newSnapshotResponse(snap, f))
	}
}
