package auth

import (
	"github.com/labstack/echo/v4"
)

// publicRoutes lists "METHOD path" pairs reachable without a bearer token.
// Keys use the registered route path (c.Path()), not the raw URL.
var publicRoutes = map[string]bool{
	"GET /api/health":          true,
	"GET /health/db":           true,
	"POST /api/auth/login":     true,
	"POST /api/auth/register":  true,
	"GET /api/clinic-settings": true,
}

// AuthSkipper returns true for requests that should skip authentication.
func AuthSkipper(c echo.Context) bool {
	return IsPublicRoute(c.Request().Method, c.Path())
}

// IsPublicRoute reports whether method+path is a public endpoint.
func IsPublicRoute(method, path string) bool {
	return publicRoutes[method+" "+path]
}
