package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/marks/internal/httpserver/deps"
)

type componentStatus struct {
	OK     bool   `json:"ok"`
	Active *int   `json:"active,omitempty"`
	Error  string `json:"error,omitempty"`
}

type readyzResponse struct {
	Ready         bool                       `json:"ready"`
	UptimeSeconds float64                    `json:"uptime_seconds"`
	Components    map[string]componentStatus `json:"components"`
}

// Readyz reports whether the remote store answers. Live sessions are listed
// for information only.
func Readyz(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		store := checkStore(r.Context(), d)

		sessions := 0
		if d.Sessions != nil {
			sessions = d.Sessions.Count()
		}

		resp := readyzResponse{
			Ready:         store.OK,
			UptimeSeconds: uptime(d).Seconds(),
			Components: map[string]componentStatus{
				"store":    store,
				"sessions": {OK: true, Active: &sessions},
			},
		}

		status := http.StatusOK
		if !resp.Ready {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, resp)
	}
}

func checkStore(parent context.Context, d deps.Deps) componentStatus {
	if d.Store == nil {
		return componentStatus{OK: false, Error: "store not initialized"}
	}

	ctx, cancel := context.WithTimeout(parent, 2*time.Second)
	defer cancel()

	if err := d.Store.Ping(ctx); err != nil {
		return componentStatus{OK: false, Error: err.Error()}
	}
	return componentStatus{OK: true}
}
