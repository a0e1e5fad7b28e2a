package shared

import (
	"math"
	"net/http"
	"strconv"
)

const (
	// DefaultLimit is used when the client does not send a limit.
	DefaultLimit = 10
	// MaxLimit caps page sizes.
	MaxLimit = 100
)

// Pagination contains metadata for paginated listings.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// PageRequest is the normalised page/limit pair of a list call.
type PageRequest struct {
	Page  int
	Limit int
}

// Offset returns the SQL offset for the page.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// NewPageRequest clamps page and limit into a usable range.
func NewPageRequest(page, limit int) PageRequest {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return PageRequest{Page: page, Limit: limit}
}

// PageRequestFromQuery reads ?page= and ?limit= from the request.
func PageRequestFromQuery(r *http.Request) PageRequest {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return NewPageRequest(page, limit)
}

// NewPagination computes pagination metadata.
func NewPagination(req PageRequest, total int) Pagination {
	req = NewPageRequest(req.Page, req.Limit)
	totalPages := int(math.Ceil(float64(total) / float64(req.Limit)))
	return Pagination{Page: req.Page, Limit: req.Limit, Total: total, TotalPages: totalPages}
}
