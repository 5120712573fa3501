package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MrSnakeDoc/marks/internal/logger"
)

func TestMatchHost(t *testing.T) {
	tests := []struct {
		host, pattern string
		want          bool
	}{
		{"marks.example.com", "marks.example.com", true},
		{"MARKS.example.com", "marks.example.com", true},
		{"app.example.com", "*.example.com", true},
		{"example.com", "*.example.com", false},
		{"evil-example.com", "*.example.com", false},
		{"localhost:5173", "localhost:5173", true},
		{"localhost:5174", "localhost:5173", false},
	}
	for _, tt := range tests {
		if got := matchHost(tt.host, tt.pattern); got != tt.want {
			t.Errorf("matchHost(%q, %q) = %v, want %v", tt.host, tt.pattern, got, tt.want)
		}
	}
}

func TestCheckOrigin(t *testing.T) {
	check := CheckOrigin([]string{"app.example.com"}, logger.Nop())

	tests := []struct {
		name   string
		origin string
		want   bool
	}{
		{name: "no origin", want: true},
		{name: "same host", origin: "http://example.com", want: true},
		{name: "allowed", origin: "https://app.example.com", want: true},
		{name: "foreign", origin: "https://evil.test", want: false},
		{name: "malformed", origin: "://", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "http://example.com/api/stream", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if got := check(req); got != tt.want {
				t.Errorf("CheckOrigin(%q) = %v, want %v", tt.origin, got, tt.want)
			}
		})
	}
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"app.example.com"})(okHandler())

	preflight := httptest.NewRequest(http.MethodOptions, "/api/bookmarks", nil)
	preflight.Header.Set("Origin", "https://app.example.com")
	preflight.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := serve(h, preflight)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("preflight status = %d, want 204", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "https://app.example.com" {
		t.Errorf("Allow-Origin = %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}
	if rec.Header().Get("Access-Control-Allow-Headers") == "" {
		t.Error("preflight should list allowed headers")
	}

	foreign := httptest.NewRequest(http.MethodGet, "/api/bookmarks", nil)
	foreign.Header.Set("Origin", "https://evil.test")
	rec = serve(h, foreign)
	if rec.Code != http.StatusOK || rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Errorf("foreign origin got status %d and allow-origin %q", rec.Code, rec.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestCORSDisabled(t *testing.T) {
	h := CORS(nil)(okHandler())
	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)

	rec := serve(h, req)
	if rec.Code != http.StatusOK || rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Errorf("disabled CORS should pass through, got %d", rec.Code)
	}
}
