// Package pagination normalizes the page/limit query parameters shared by
// every list endpoint.
package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	// MaxLimit caps a single page; large listings page through instead.
	MaxLimit = 100
	MinLimit = 1
)

// Params carries normalized paging values. Offset is precomputed so
// repositories can pass it straight to the query.
type Params struct {
	Page   int
	Limit  int
	Offset int
}

// Parse reads page and limit from the query string. Missing, malformed or
// out-of-range values fall back to the defaults rather than erroring, so a
// bad paging parameter never fails a list request.
func Parse(c *gin.Context) Params {
	page := intQuery(c, "page", DefaultPage)
	if page < 1 {
		page = DefaultPage
	}

	limit := intQuery(c, "limit", DefaultLimit)
	switch {
	case limit < MinLimit:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}

	return Params{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
