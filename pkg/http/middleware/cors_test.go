package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestCORS(t *testing.T) {
	e := echo.New()
	e.Use(CORS(CORSConfig{
		AllowOrigins: []string{"https://charts.example"},
		AllowMethods: []string{http.MethodGet},
		MaxAge:       10 * time.Minute,
	}))
	e.GET("/x", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	tests := []struct {
		name, method, origin string
		status               int
		allow, maxAge        string
	}{
		{"no origin", http.MethodGet, "", http.StatusOK, "", ""},
		{"allowed", http.MethodGet, "https://charts.example", http.StatusOK, "https://charts.example", ""},
		{"other origin", http.MethodGet, "https://evil.example", http.StatusOK, "", ""},
		{"preflight", http.MethodOptions, "https://charts.example", http.StatusNoContent, "https://charts.example", "600"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, "/x", nil)
		if tt.origin != "" {
			req.Header.Set(echo.HeaderOrigin, tt.origin)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != tt.status {
			t.Fatalf("%s: status %d, want %d", tt.name, rec.Code, tt.status)
		}
		if got := rec.Header().Get(echo.HeaderAccessControlAllowOrigin); got != tt.allow {
			t.Fatalf("%s: allow-origin %q, want %q", tt.name, got, tt.allow)
		}
		if got := rec.Header().Get(echo.HeaderAccessControlMaxAge); got != tt.maxAge {
			t.Fatalf("%s: max-age %q, want %q", tt.name, got, tt.maxAge)
		}
	}
}
