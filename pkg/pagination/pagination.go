package pagination

import (
	"net/url"
	"strconv"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Params holds pagination parameters extracted from query strings.
type Params struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Offset  int `json:"-"`
}

// DefaultParams returns sensible pagination defaults.
func DefaultParams() Params {
	return Params{Page: 1, PerPage: DefaultPerPage}
}

// FromQuery extracts page and per_page from q. ok is false when neither is
// present, in which case callers return the full result set. Out-of-range
// values fall back to defaults.
func FromQuery(q url.Values) (p Params, ok bool) {
	p = DefaultParams()
	page, perPage := q.Get("page"), q.Get("per_page")
	if page == "" && perPage == "" {
		return p, false
	}

	if v, err := strconv.Atoi(page); err == nil && v > 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(perPage); err == nil && v > 0 && v <= MaxPerPage {
		p.PerPage = v
	}

	p.Offset = (p.Page - 1) * p.PerPage
	return p, true
}

// Info describes where a page sits in the full result set.
type Info struct {
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	TotalCount int  `json:"total_count"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// Apply returns the window of items selected by p, preserving order, and the
// page info. A page past the end yields an empty, non-nil slice.
func Apply[T any](items []T, p Params) ([]T, Info) {
	total := len(items)
	totalPages := total / p.PerPage
	if total%p.PerPage > 0 {
		totalPages++
	}

	info := Info{
		Page:       p.Page,
		PerPage:    p.PerPage,
		TotalCount: total,
		TotalPages: totalPages,
		HasNext:    p.Page < totalPages,
		HasPrev:    p.Page > 1,
	}

	if p.Offset >= total {
		return []T{}, info
	}
	end := min(p.Offset+p.PerPage, total)
	return items[p.Offset:end], info
}
