package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func serveWithHeaders(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	if err := SecurityHeaders()(handler)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return rec
}

func TestSecurityHeaders_SetsAllHeaders(t *testing.T) {
	rec := serveWithHeaders(t, "/api/patients")

	expected := map[string]string{
		"X-Content-Type-Options":    "nosniff",
		"X-Frame-Options":           "DENY",
		"X-XSS-Protection":          "0",
		"Content-Security-Policy":   apiCSP,
		"Strict-Transport-Security": "max-age=31536000; includeSubDomains",
		"Referrer-Policy":           "no-referrer",
		"Cache-Control":             "no-store",
	}
	for header, want := range expected {
		if got := rec.Header().Get(header); got != want {
			t.Errorf("%s: expected %q, got %q", header, want, got)
		}
	}
}

func TestSecurityHeaders_PrintPathAllowsInlineStyles(t *testing.T) {
	rec := serveWithHeaders(t, "/api/prescriptions/8a3c6e1e-5d0b-4bfa-9b2f-2a9f1c8d7e10/print")

	if got := rec.Header().Get("X-Frame-Options"); got != "SAMEORIGIN" {
		t.Errorf("expected SAMEORIGIN for print view, got %q", got)
	}
	csp := rec.Header().Get("Content-Security-Policy")
	if !strings.Contains(csp, "style-src 'unsafe-inline'") || !strings.Contains(csp, "img-src data:") {
		t.Errorf("expected print CSP, got %q", csp)
	}
}

func TestSecurityHeaders_PropagatesHandlerError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/patients", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound, "Patient not found")
	}

	err := SecurityHeaders()(handler)(c)
	if err == nil {
		t.Fatal("expected handler error to propagate")
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected headers to be set even when handler errors")
	}
}
