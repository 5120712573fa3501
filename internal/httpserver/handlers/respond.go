package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MrSnakeDoc/marks/internal/domain"
	"github.com/MrSnakeDoc/marks/internal/httpserver/deps"
	"github.com/MrSnakeDoc/marks/internal/httpserver/mw"
	"github.com/MrSnakeDoc/marks/internal/logger"
	"github.com/MrSnakeDoc/marks/internal/mirror"
)

const maxBodyBytes = 64 << 10

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps domain errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidBookmark):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNoSession):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, mirror.ErrClosed):
		return http.StatusServiceUnavailable
	case domain.IsTransport(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, d deps.Deps, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		d.Logger.Warn("request failed",
			logger.String("path", r.URL.Path),
			logger.String("user_id", mw.UserID(r.Context())),
			logger.Int("status", status),
			logger.Error(err))
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// mirrorFor returns the caller's live mirror, writing the error response
// when it cannot be obtained.
func mirrorFor(w http.ResponseWriter, r *http.Request, d deps.Deps) (*mirror.Synchronizer, bool) {
	s, err := d.Sessions.Acquire(r.Context(), mw.UserID(r.Context()))
	if err != nil {
		writeError(w, r, d, err)
		return nil, false
	}
	return s, true
}

// filterFrom reads ?q= and ?category= into a Filter.
func filterFrom(r *http.Request) domain.Filter {
	q := r.URL.Query()
	return domain.Filter{Query: q.Get("q"), Category: q.Get("category")}
}

func decodeDraft(w http.ResponseWriter, r *http.Request) (domain.Draft, error) {
	var draft domain.Draft
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&draft); err != nil {
		return domain.Draft{}, err
	}
	return draft, nil
}
