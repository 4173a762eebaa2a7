package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sariva/clinic/internal/platform/apperr"
)

func renderError(t *testing.T, err error, dev bool) (int, map[string]interface{}) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/patients", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	ErrorHandler(zerolog.Nop(), dev)(err, c)

	var body map[string]interface{}
	if jsonErr := json.Unmarshal(rec.Body.Bytes(), &body); jsonErr != nil {
		t.Fatalf("invalid JSON %q: %v", rec.Body.String(), jsonErr)
	}
	return rec.Code, body
}

func TestErrorHandler_Classified(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"validation", apperr.Validation("Name is required"), 400, "Name is required"},
		{"conflict", apperr.Conflict("Doctor already has an appointment at this time"), 400, "Doctor already has an appointment at this time"},
		{"not found", fmt.Errorf("get: %w", apperr.NotFound("Patient not found")), 404, "Patient not found"},
		{"unauthorized", apperr.Unauthorized("Invalid credentials"), 401, "Invalid credentials"},
		{"forbidden", apperr.Forbidden("Registration is disabled"), 403, "Registration is disabled"},
		{"upstream", apperr.Upstream("Gemini API key is not configured", nil), 500, "Gemini API key is not configured"},
		{"echo", echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, no token"), 401, "Not authorized, no token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := renderError(t, tt.err, false)
			if code != tt.code {
				t.Errorf("expected %d, got %d", tt.code, code)
			}
			if body["success"] != false {
				t.Errorf("expected success false, got %v", body["success"])
			}
			if body["message"] != tt.msg {
				t.Errorf("expected message %q, got %v", tt.msg, body["message"])
			}
		})
	}
}

func TestErrorHandler_InternalHidesDetailOutsideDev(t *testing.T) {
	raw := errors.New("pq: relation \"patients\" does not exist")

	code, body := renderError(t, raw, false)
	if code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", code)
	}
	if body["message"] != "Server Error" {
		t.Errorf("expected generic message, got %v", body["message"])
	}
	if _, ok := body["error"]; ok {
		t.Error("expected no error detail in production")
	}

	_, body = renderError(t, raw, true)
	if body["error"] != raw.Error() {
		t.Errorf("expected raw error in development, got %v", body["error"])
	}
}

func TestErrorHandler_CommittedResponse(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	_ = c.String(http.StatusOK, "partial")

	ErrorHandler(zerolog.Nop(), false)(errors.New("late"), c)
	if rec.Body.String() != "partial" {
		t.Errorf("expected committed body untouched, got %q", rec.Body.String())
	}
}

func TestStatusOf(t *testing.T) {
	if statusOf(apperr.NotFound("x")) != 404 {
		t.Error("expected 404")
	}
	if statusOf(errors.New("x")) != 500 {
		t.Error("expected 500")
	}
}
