package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 10

	paginationKey = "pagination"
)

type Pagination struct {
	Page int
	Size int
}

// ParsePagination reads the raw page and size values. Anything that isn't
// a number falls back to the defaults, negative pages become 0 and sizes
// outside 1..MaxPageSize become DefaultPageSize.
func ParsePagination(page, size string) Pagination {
	p, err := strconv.Atoi(page)
	if err != nil || p < 0 {
		p = 0
	}

	s, err := strconv.Atoi(size)
	if err != nil || s < 1 || s > MaxPageSize {
		s = DefaultPageSize
	}

	return Pagination{Page: p, Size: s}
}

func NewPaginationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(paginationKey, ParsePagination(c.Query("page"), c.Query("size")))
		c.Next()
	}
}

// GetPagination returns the parsed pagination, or the defaults if the
// middleware didn't run
func GetPagination(c *gin.Context) Pagination {
	if v, ok := c.Get(paginationKey); ok {
		if p, ok := v.(Pagination); ok {
			return p
		}
	}

	return Pagination{Page: 0, Size: DefaultPageSize}
}
