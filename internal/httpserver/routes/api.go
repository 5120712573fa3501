package routes

import (
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/marks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/marks/internal/httpserver/mw"
)

// apiTimeout bounds plain request/response API calls. The stream is exempt.
const apiTimeout = 10 * time.Second

// authenticated is the middleware chain of request/response API routes.
func authenticated(d deps.Deps) []Middleware {
	return []Middleware{
		mw.Auth(d.Tokens, d.Logger),
		middleware.Timeout(apiTimeout),
	}
}
