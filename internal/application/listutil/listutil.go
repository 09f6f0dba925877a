package listutil

import (
	"fmt"
	"net/url"
	"strconv"
)

// PageParams carries pagination parameters parsed from a request.
type PageParams struct {
	Page    int // 1-indexed page number
	PerPage int // rows per page
}

// PageInfo carries pagination metadata for rendering.
type PageInfo struct {
	Page       int // current page (1-indexed)
	PerPage    int // rows per page
	Total      int // total matching rows
	TotalPages int // ceil(Total / PerPage)
}

// MaxButtons is the widest page-number strip rendered.
const MaxButtons = 5

// ParsePageParams reads "page" and "limit" from q.
// PRE: options is non-empty and contains def
// POST: Page >= 1; PerPage is one of options
func ParsePageParams(q url.Values, options []int, def int) PageParams {
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(q.Get("limit"))
	if !contains(options, perPage) {
		perPage = def
	}
	return PageParams{Page: page, PerPage: perPage}
}

// NewPageInfo computes pagination metadata.
// PRE: total >= 0
// POST: Page is clamped to [1, TotalPages]; TotalPages >= 1
func NewPageInfo(page, perPage, total int) PageInfo {
	if perPage < 1 {
		perPage = 1
	}
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return PageInfo{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Offset returns the index of the first row on the current page.
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// StartRow returns the 1-indexed first row number on the current page.
// POST: Returns 0 if Total is 0, otherwise Offset+1
func (p PageInfo) StartRow() int {
	if p.Total == 0 {
		return 0
	}
	return p.Offset() + 1
}

// EndRow returns the 1-indexed last row number on the current page.
// POST: Returns min(Offset+PerPage, Total)
func (p PageInfo) EndRow() int {
	end := p.Offset() + p.PerPage
	if end > p.Total {
		end = p.Total
	}
	return end
}

// Summary renders the "Mostrando X a Y de Z" caption.
func (p PageInfo) Summary() string {
	return fmt.Sprintf("Mostrando %d a %d de %d", p.StartRow(), p.EndRow(), p.Total)
}

// PageNumbers returns at most MaxButtons page numbers centered on the current page.
func (p PageInfo) PageNumbers() []int {
	start := p.Page - MaxButtons/2
	if start < 1 {
		start = 1
	}
	end := start + MaxButtons - 1
	if end > p.TotalPages {
		end = p.TotalPages
		start = end - MaxButtons + 1
		if start < 1 {
			start = 1
		}
	}
	pages := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	return pages
}

// HasPrev reports whether a previous page exists.
func (p PageInfo) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a next page exists.
func (p PageInfo) HasNext() bool { return p.Page < p.TotalPages }

// ShowPagination returns true if there is more than one page.
func (p PageInfo) ShowPagination() bool {
	return p.Total > p.PerPage
}

// Slice returns the rows of items on page p.
// PRE: p was computed for len(items)
func Slice[T any](items []T, p PageInfo) []T {
	start := p.Offset()
	if start >= len(items) {
		return nil
	}
	end := start + p.PerPage
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

func contains(options []int, n int) bool {
	for _, opt := range options {
		if n == opt {
			return true
		}
	}
	return false
}
