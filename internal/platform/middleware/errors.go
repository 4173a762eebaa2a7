package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/sariva/clinic/internal/platform/apperr"
	"github.com/sariva/clinic/internal/platform/httpx"
)

const serverErrorMessage = "Server Error"

// ErrorHandler renders every error returned by a handler or middleware as
// {success:false, message, error?}. The raw error text of unexpected failures
// is only exposed when dev is true.
func ErrorHandler(logger zerolog.Logger, dev bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg, detail := classify(err, dev)
		if code >= 500 {
			rid, _ := c.Get("request_id").(string)
			logger.Error().Err(err).
				Str("request_id", rid).
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Int("status", code).
				Msg("request failed")
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(code)
		} else {
			writeErr = httpx.Fail(c, code, msg, detail)
		}
		if writeErr != nil {
			logger.Error().Err(writeErr).Msg("write error response")
		}
	}
}

func classify(err error, dev bool) (code int, msg, detail string) {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg = fmt.Sprintf("%v", he.Message)
		if m, ok := he.Message.(string); ok {
			msg = m
		}
		if dev && he.Internal != nil {
			detail = he.Internal.Error()
		}
		return he.Code, msg, detail
	}

	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindConflict:
		return http.StatusBadRequest, apperr.Message(err), ""
	case apperr.KindNotFound:
		return http.StatusNotFound, apperr.Message(err), ""
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized, apperr.Message(err), ""
	case apperr.KindForbidden:
		return http.StatusForbidden, apperr.Message(err), ""
	case apperr.KindUpstream:
		msg = apperr.Message(err)
		if dev && errors.Unwrap(err) != nil {
			detail = errors.Unwrap(err).Error()
		}
		return http.StatusInternalServerError, msg, detail
	}

	if dev {
		detail = err.Error()
	}
	return http.StatusInternalServerError, serverErrorMessage, detail
}

// statusOf returns the status ErrorHandler will write for err.
func statusOf(err error) int {
	code, _, _ := classify(err, false)
	return code
}
