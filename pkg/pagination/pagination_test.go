package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func ctxWithQuery(query string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestFromContext_Defaults(t *testing.T) {
	p := FromContext(ctxWithQuery(""))
	if p.Page != 1 {
		t.Errorf("expected page 1, got %d", p.Page)
	}
	if p.Limit != PageSize {
		t.Errorf("expected limit %d, got %d", PageSize, p.Limit)
	}
	if p.Offset != 0 {
		t.Errorf("expected offset 0, got %d", p.Offset)
	}
}

func TestFromContext_PageThree(t *testing.T) {
	p := FromContext(ctxWithQuery("page=3"))
	if p.Page != 3 {
		t.Errorf("expected page 3, got %d", p.Page)
	}
	if p.Offset != 2*PageSize {
		t.Errorf("expected offset %d, got %d", 2*PageSize, p.Offset)
	}
}

func TestFromContext_InvalidPage(t *testing.T) {
	for _, q := range []string{"page=0", "page=-5", "page=abc"} {
		p := FromContext(ctxWithQuery(q))
		if p.Page != 1 {
			t.Errorf("%s: expected page 1, got %d", q, p.Page)
		}
	}
}

func TestNewResponse(t *testing.T) {
	p := Params{Page: 2, Limit: PageSize, Offset: PageSize}
	r := NewResponse([]int{1, 2, 3}, 25, p)

	if r.TotalPages != 3 {
		t.Errorf("expected 3 pages for 25 rows, got %d", r.TotalPages)
	}
	if !r.HasNext {
		t.Error("expected has_next on page 2 of 3")
	}
	if !r.HasPrev {
		t.Error("expected has_prev on page 2")
	}
}

func TestNewResponse_LastPage(t *testing.T) {
	p := Params{Page: 3, Limit: PageSize, Offset: 2 * PageSize}
	r := NewResponse(nil, 25, p)

	if r.HasNext {
		t.Error("expected no next page on last page")
	}
	if r.TotalPages != 3 {
		t.Errorf("expected 3 pages, got %d", r.TotalPages)
	}
}

func TestNewResponse_ExactMultiple(t *testing.T) {
	p := Params{Page: 1, Limit: PageSize, Offset: 0}
	r := NewResponse(nil, 20, p)
	if r.TotalPages != 2 {
		t.Errorf("expected 2 pages for 20 rows, got %d", r.TotalPages)
	}
}
