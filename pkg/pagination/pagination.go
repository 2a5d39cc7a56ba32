package pagination

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// PageSize is the fixed number of reports per dashboard page.
const PageSize = 10

// Params holds pagination parameters extracted from a request.
type Params struct {
	Page   int
	Limit  int
	Offset int
}

// FromContext extracts the page number from the echo context. Pages are
// 1-based; anything unparseable or below 1 becomes page 1.
func FromContext(c echo.Context) Params {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	return Params{
		Page:   page,
		Limit:  PageSize,
		Offset: (page - 1) * PageSize,
	}
}

// Response wraps a paginated API response.
type Response struct {
	Data       interface{} `json:"data"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	PerPage    int         `json:"per_page"`
	TotalPages int         `json:"total_pages"`
	HasNext    bool        `json:"has_next"`
	HasPrev    bool        `json:"has_prev"`
}

func NewResponse(data interface{}, total int, p Params) *Response {
	totalPages := total / p.Limit
	if total%p.Limit != 0 {
		totalPages++
	}
	return &Response{
		Data:       data,
		Total:      total,
		Page:       p.Page,
		PerPage:    p.Limit,
		TotalPages: totalPages,
		HasNext:    p.Offset+p.Limit < total,
		HasPrev:    p.Page > 1,
	}
}
