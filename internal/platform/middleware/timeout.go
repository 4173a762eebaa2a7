package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sariva/clinic/internal/platform/httpx"
)

// RequestTimeout sets a context deadline on each request. Repositories and
// the AI client receive that context, so a slow query or upstream call is
// cancelled and the caller gets 504 with the standard error envelope.
//
// The handler runs on the request goroutine so that panics still reach
// Recovery and nothing touches the echo.Context after it is released.
func RequestTimeout(timeout time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if timeout <= 0 {
				return next(c)
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), timeout)
			defer cancel()

			c.SetRequest(c.Request().WithContext(ctx))

			err := next(c)
			if errors.Is(err, context.DeadlineExceeded) || (err == nil && ctx.Err() == context.DeadlineExceeded) {
				return gatewayTimeoutError(c)
			}
			return err
		}
	}
}

func gatewayTimeoutError(c echo.Context) error {
	if c.Response().Committed {
		return nil
	}
	return httpx.Fail(c, http.StatusGatewayTimeout, "Request processing exceeded the allowed time limit", "")
}
