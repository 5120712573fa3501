package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/marks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/marks/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/marks/internal/httpserver/mw"
)

func init() { Register(registerBookmarks) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	limit := mw.RateLimit(mw.RateLimitConfig{
		Burst:        d.RateBurst,
		RefillPerMin: d.RatePerMin,
		MaxEntries:   10000,
		TrustProxy:   d.TrustProxy,
		KeyFunc:      mw.ByUser(d.TrustProxy),
	})

	r.Group(func(g chi.Router) {
		g.Use(authenticated(d)...)

		g.Get("/api/bookmarks", handlers.ListBookmarks(d))
		g.With(limit).Post("/api/bookmarks", handlers.CreateBookmark(d))
		g.With(limit).Put("/api/bookmarks/{id}", handlers.UpdateBookmark(d))
		g.With(limit).Delete("/api/bookmarks/{id}", handlers.DeleteBookmark(d))
	})
}
