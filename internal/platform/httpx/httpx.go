// Package httpx renders the JSON envelopes every API response uses:
// {success, data?, message?, count?} on success and {success:false, message,
// error?} on failure.
package httpx

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Count   *int        `json:"count,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

type ErrorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func OK(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

func Created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// Message responds 200 with only a message, e.g. after a delete.
func Message(c echo.Context, msg string) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Message: msg})
}

// List responds with {success, count, data}.
func List(c echo.Context, data interface{}, count int) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Count: &count, Data: data})
}

func Fail(c echo.Context, code int, msg, detail string) error {
	return c.JSON(code, ErrorBody{Success: false, Message: msg, Error: detail})
}
