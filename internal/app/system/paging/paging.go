// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// PageSize is the default number of rows returned by list endpoints.
const PageSize = 50

// MaxPageSize caps the limit a client may request.
const MaxPageSize = 500

// Page is a limit/offset window.
type Page struct {
	Limit  int64 `json:"limit"`
	Offset int64 `json:"offset"`
}

// Parse reads "limit" and "offset" query parameters. Missing or invalid
// values fall back to PageSize and 0; limits above MaxPageSize are clamped.
func Parse(r *http.Request) Page {
	p := Page{Limit: PageSize}
	if n, err := strconv.ParseInt(query.Get(r, "limit"), 10, 64); err == nil && n > 0 {
		p.Limit = n
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	if n, err := strconv.ParseInt(query.Get(r, "offset"), 10, 64); err == nil && n > 0 {
		p.Offset = n
	}
	return p
}
