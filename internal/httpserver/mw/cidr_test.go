package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MrSnakeDoc/marks/internal/logger"
)

func TestAllowOnlyCIDRS(t *testing.T) {
	tests := []struct {
		name       string
		allowed    []string
		trustProxy bool
		remote     string
		forwarded  string
		want       int
	}{
		{name: "empty list passes", remote: "203.0.113.9:1000", want: http.StatusOK},
		{name: "inside cidr", allowed: []string{"10.0.0.0/8"}, remote: "10.1.2.3:1000", want: http.StatusOK},
		{name: "exact ip", allowed: []string{"127.0.0.1"}, remote: "127.0.0.1:1000", want: http.StatusOK},
		{name: "outside", allowed: []string{"10.0.0.0/8"}, remote: "203.0.113.9:1000", want: http.StatusForbidden},
		{
			name: "forwarded ignored without trust", allowed: []string{"10.0.0.0/8"},
			remote: "203.0.113.9:1000", forwarded: "10.0.0.1", want: http.StatusForbidden,
		},
		{
			name: "forwarded honored with trust", allowed: []string{"10.0.0.0/8"}, trustProxy: true,
			remote: "127.0.0.1:1000", forwarded: "10.0.0.1, 127.0.0.1", want: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := AllowOnlyCIDRS(tt.allowed, tt.trustProxy, logger.Nop())(okHandler())
			req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
			req.RemoteAddr = tt.remote
			if tt.forwarded != "" {
				req.Header.Set("X-Forwarded-For", tt.forwarded)
			}
			if rec := serve(h, req); rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
