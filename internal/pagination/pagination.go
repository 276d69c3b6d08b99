// Package pagination implements the listing envelope shared by every
// collection endpoint.
package pagination

import "strconv"

// Default page sizes. Message listings use the larger default because a
// chat replay typically wants the whole recent window in one request.
const (
	DefaultLimit        = 20
	DefaultMessageLimit = 50
)

// Params are the normalized page selection for a listing query.
type Params struct {
	Page  int
	Limit int
}

// Parse normalizes raw query values. Non-numeric, absent, or non-positive
// values fall back to page 1 and the given default limit.
func Parse(pageRaw, limitRaw string, defaultLimit int) Params {
	p := Params{Page: 1, Limit: defaultLimit}
	if n, err := strconv.Atoi(pageRaw); err == nil && n >= 1 {
		p.Page = n
	}
	if n, err := strconv.Atoi(limitRaw); err == nil && n >= 1 {
		p.Limit = n
	}
	return p
}

// Offset returns the number of rows to skip.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Meta describes the page that was returned.
type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// MetaFor computes the response metadata for a total row count.
// TotalPages is ceil(total/limit), zero when the collection is empty.
func MetaFor(p Params, total int64) Meta {
	pages := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	return Meta{Page: p.Page, Limit: p.Limit, Total: total, TotalPages: pages}
}

// Envelope is the uniform listing response body.
type Envelope struct {
	Data       any  `json:"data"`
	Pagination Meta `json:"pagination"`
}
