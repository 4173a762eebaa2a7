package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sariva/clinic/internal/platform/auth"
)

// AuditEntry describes one access to patient-related API data.
type AuditEntry struct {
	UserID     string
	UserRoles  []string
	Resource   string
	PatientID  string
	Action     string // read, create, update, delete
	IPAddress  string
	UserAgent  string
	Path       string
	Method     string
	Timestamp  time.Time
	RequestID  string
	StatusCode int
}

// Audit emits one structured "api_access" log event per authenticated /api
// request: who touched which resource, for which patient, with what result.
// Entries go to the log stream only; nothing is persisted.
func Audit(logger zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if !isAuditablePath(req.URL.Path) {
				return next(c)
			}

			err := next(c)

			entry := buildAuditEntry(c, err)
			evt := logger.Info()
			if entry.StatusCode >= 400 {
				evt = logger.Warn()
			}
			evt.
				Str("type", "audit").
				Str("request_id", entry.RequestID).
				Str("user_id", entry.UserID).
				Strs("user_roles", entry.UserRoles).
				Str("resource", entry.Resource).
				Str("patient_id", entry.PatientID).
				Str("action", entry.Action).
				Str("method", entry.Method).
				Str("path", entry.Path).
				Str("remote_ip", entry.IPAddress).
				Int("status", entry.StatusCode).
				Msg("api_access")

			return err
		}
	}
}

func buildAuditEntry(c echo.Context, err error) AuditEntry {
	req := c.Request()
	ctx := req.Context()

	entry := AuditEntry{
		Timestamp:  time.Now().UTC(),
		Path:       req.URL.Path,
		Method:     req.Method,
		IPAddress:  c.RealIP(),
		UserAgent:  req.UserAgent(),
		StatusCode: c.Response().Status,
		UserID:     auth.UserIDFromContext(ctx),
		UserRoles:  auth.RolesFromContext(ctx),
		Action:     httpMethodToAction(req.Method),
		Resource:   extractResource(req.URL.Path),
		PatientID:  extractPatientID(c),
	}
	if err != nil {
		entry.StatusCode = statusOf(err)
	}
	if rid, ok := c.Get("request_id").(string); ok {
		entry.RequestID = rid
	}
	return entry
}

// isAuditablePath covers the data routes under /api, not health or auth.
func isAuditablePath(path string) bool {
	if !strings.HasPrefix(path, "/api/") {
		return false
	}
	return !strings.HasPrefix(path, "/api/health") && !strings.HasPrefix(path, "/api/auth/")
}

func httpMethodToAction(method string) string {
	switch method {
	case http.MethodPost:
		return "create"
	case http.MethodPut, http.MethodPatch:
		return "update"
	case http.MethodDelete:
		return "delete"
	default:
		return "read"
	}
}

// extractResource returns the first path segment after /api/:
// /api/patients/123 -> patients.
func extractResource(path string) string {
	rest := strings.TrimPrefix(path, "/api/")
	seg, _, _ := strings.Cut(rest, "/")
	if seg == "" {
		return "unknown"
	}
	return seg
}

// extractPatientID finds a patient id in /api/patients/<uuid>[/...] or in
// the ?patient= filter.
func extractPatientID(c echo.Context) string {
	path := c.Request().URL.Path

	if strings.HasPrefix(path, "/api/patients/") {
		seg, _, _ := strings.Cut(strings.TrimPrefix(path, "/api/patients/"), "/")
		if isUUIDLike(seg) {
			return seg
		}
	}

	if patient := c.QueryParam("patient"); isUUIDLike(patient) {
		return patient
	}
	return ""
}

func isUUIDLike(s string) bool {
	if s == "" {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}
