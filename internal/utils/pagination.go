package utils

import "github.com/gofiber/fiber/v2"

const (
	defaultPageLimit = 20
	// MaxPageLimit bounds the rows a single listing page can request.
	MaxPageLimit = 100
)

// Pagination is a resolved page window.
type Pagination struct {
	Page   int
	Limit  int
	Offset int
}

// NewPagination normalises page and limit: pages start at 1, a missing or
// non-positive limit falls back to the default and large limits are capped.
func NewPagination(page, limit int) Pagination {
	if page <= 0 {
		page = 1
	}
	switch {
	case limit <= 0:
		limit = defaultPageLimit
	case limit > MaxPageLimit:
		limit = MaxPageLimit
	}
	return Pagination{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// ParsePagination reads ?page= and ?limit= from the request.
func ParsePagination(c *fiber.Ctx) Pagination {
	return NewPagination(c.QueryInt("page", 1), c.QueryInt("limit", defaultPageLimit))
}
