package pagination

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultLimit = 20
	MaxLimit     = 1000
)

// Params holds page-based pagination parameters extracted from a request.
type Params struct {
	Page   int
	Limit  int
	Offset int
}

// FromContext reads ?page= and ?limit= from the request. Missing or invalid
// values fall back to page 1 and DefaultLimit; limit is capped at MaxLimit.
func FromContext(c echo.Context) Params {
	return New(c.QueryParam("page"), c.QueryParam("limit"))
}

// New builds Params from raw query values.
func New(pageStr, limitStr string) Params {
	page, _ := strconv.Atoi(pageStr)
	if page < 1 {
		page = 1
	}

	limit, _ := strconv.Atoi(limitStr)
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Params{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// Pages returns ceil(total/limit).
func (p Params) Pages(total int) int {
	if p.Limit <= 0 || total <= 0 {
		return 0
	}
	return (total + p.Limit - 1) / p.Limit
}

// HasNext returns true if there are more results after the current page.
func (p Params) HasNext(total int) bool {
	return p.Offset+p.Limit < total
}

// Response is the paginated list envelope.
type Response struct {
	Success     bool        `json:"success"`
	Count       int         `json:"count"`
	Total       int         `json:"total"`
	Pages       int         `json:"pages"`
	CurrentPage int         `json:"currentPage"`
	Data        interface{} `json:"data"`
}

// NewResponse wraps one page of items. count is the number of items on the page.
func NewResponse(data interface{}, count, total int, p Params) *Response {
	return &Response{
		Success:     true,
		Count:       count,
		Total:       total,
		Pages:       p.Pages(total),
		CurrentPage: p.Page,
		Data:        data,
	}
}
