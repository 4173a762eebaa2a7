package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

const (
	apiCSP = "default-src 'none'; frame-ancestors 'none'"
	// Printable prescriptions are HTML documents with inline CSS, embedded
	// data-URL images and web fonts, framed by the SPA's print preview.
	printCSP = "default-src 'none'; style-src 'unsafe-inline' https://fonts.googleapis.com; " +
		"font-src https://fonts.gstatic.com; img-src data: https:; frame-ancestors 'self'"
)

// SecurityHeaders sets security response headers on every request.
func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()

			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-XSS-Protection", "0")
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			h.Set("Referrer-Policy", "no-referrer")
			h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")

			// Responses carry patient data.
			h.Set("Cache-Control", "no-store")

			if isPrintPath(c.Request().URL.Path) {
				h.Set("X-Frame-Options", "SAMEORIGIN")
				h.Set("Content-Security-Policy", printCSP)
			} else {
				h.Set("X-Frame-Options", "DENY")
				h.Set("Content-Security-Policy", apiCSP)
			}

			return next(c)
		}
	}
}

func isPrintPath(path string) bool {
	return strings.HasPrefix(path, "/api/prescriptions/") && strings.HasSuffix(path, "/print")
}
