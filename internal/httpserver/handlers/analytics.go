package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/MrSnakeDoc/marks/internal/domain"
	"github.com/MrSnakeDoc/marks/internal/httpserver/deps"
)

const maxAnalyticsDays = 366

type analyticsResponse struct {
	domain.Summary
	Loading     bool      `json:"loading"`
	TimeZone    string    `json:"timezone"`
	GeneratedAt time.Time `json:"generated_at"`
}

// positiveParam reads an optional day count in [1, maxAnalyticsDays].
func positiveParam(r *http.Request, name string, def int) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > maxAnalyticsDays {
		return 0, false
	}
	return n, true
}

// Analytics returns the dashboard summary. ?window= sets the recent window,
// ?days= the activity series length and ?tz= the viewer zone.
func Analytics(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		window, ok := positiveParam(r, "window", d.RecentWindowDays)
		if !ok {
			writeMessage(w, http.StatusBadRequest, "window must be a number of days")
			return
		}
		days, ok := positiveParam(r, "days", d.ActivityDays)
		if !ok {
			writeMessage(w, http.StatusBadRequest, "days must be a number of days")
			return
		}

		loc := d.Location
		if loc == nil {
			loc = time.Local
		}
		if tz := r.URL.Query().Get("tz"); tz != "" {
			l, err := time.LoadLocation(tz)
			if err != nil {
				writeMessage(w, http.StatusBadRequest, "unknown time zone")
				return
			}
			loc = l
		}

		s, ok := mirrorFor(w, r, d)
		if !ok {
			return
		}
		snap := s.Snapshot()
		now := d.Now().In(loc)

		writeJSON(w, http.StatusOK, analyticsResponse{
			Summary: domain.Summarize(snap.Bookmarks, domain.SummaryOptions{
				RecentWindowDays: window,
				ActivityDays:     days,
			}, now),
			Loading:     snap.Loading,
			TimeZone:    loc.String(),
			GeneratedAt: now,
		})
	}
}
