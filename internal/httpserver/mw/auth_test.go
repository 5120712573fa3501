package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MrSnakeDoc/marks/internal/auth"
	"github.com/MrSnakeDoc/marks/internal/logger"
)

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(UserID(r.Context())))
	})
}

func TestAuth(t *testing.T) {
	secret := []byte("s3cret")
	valid, err := auth.Issue(secret, "alice", time.Hour, time.Now())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	h := Auth(auth.NewVerifier(secret), logger.Nop())(echoUser())

	tests := []struct {
		name       string
		header     string
		query      string
		wantStatus int
		wantUser   string
	}{
		{name: "bearer header", header: "Bearer " + valid, wantStatus: http.StatusOK, wantUser: "alice"},
		{name: "lowercase scheme", header: "bearer " + valid, wantStatus: http.StatusOK, wantUser: "alice"},
		{name: "query fallback", query: "?access_token=" + valid, wantStatus: http.StatusOK, wantUser: "alice"},
		{name: "missing", wantStatus: http.StatusUnauthorized},
		{name: "basic scheme", header: "Basic Zm9vOmJhcg==", wantStatus: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
		{name: "header wins over query", header: "Bearer nope", query: "?access_token=" + valid, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/bookmarks"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK && rec.Body.String() != tt.wantUser {
				t.Errorf("user = %q, want %q", rec.Body.String(), tt.wantUser)
			}
			if tt.wantStatus == http.StatusUnauthorized && rec.Header().Get("WWW-Authenticate") == "" {
				t.Error("401 should carry WWW-Authenticate")
			}
		})
	}
}

func TestUserIDEmptyContext(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if got := UserID(req.Context()); got != "" {
		t.Errorf("UserID() = %q, want empty", got)
	}
	if got := UserID(WithUserID(req.Context(), "bob")); got != "bob" {
		t.Errorf("UserID() = %q, want bob", got)
	}
}
