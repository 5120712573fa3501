package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/marks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/marks/internal/httpserver/handlers"
)

func init() { Register(registerCategories) }

func registerCategories(r chi.Router, d deps.Deps) {
	r.Group(func(g chi.Router) {
		g.Use(authenticated(d)...)

		g.Get("/api/categories", handlers.Categories(d))
		g.Get("/api/categories/{slug}/bookmarks", handlers.CategoryBookmarks(d))
		g.Get("/api/analytics", handlers.Analytics(d))
	})
}
