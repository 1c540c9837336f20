// Package pagination reads page/limit query parameters and builds the meta
// block returned with list endpoints.
package pagination

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
	maxPage      = 10_000
)

// Params is a resolved page request
type Params struct {
	Page   int
	Limit  int
	Offset int
}

// Meta describes the page that was returned
type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// Page is a list payload with its meta block
type Page struct {
	Items interface{} `json:"items"`
	Meta  Meta        `json:"meta"`
}

// FromQuery reads ?page=&limit=, clamping both into range. Unparseable values
// fall back to the defaults.
func FromQuery(c *fiber.Ctx) Params {
	page := clamp(c.Query("page"), 1, 1, maxPage)
	limit := clamp(c.Query("limit"), DefaultLimit, 1, MaxLimit)

	return Params{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// NewPage wraps items with their meta block
func NewPage(items interface{}, p Params, total int64) Page {
	pages := int((total + int64(p.Limit) - 1) / int64(p.Limit))
	return Page{
		Items: items,
		Meta: Meta{
			Page:       p.Page,
			Limit:      p.Limit,
			Total:      total,
			TotalPages: pages,
			HasNext:    p.Page < pages,
		},
	}
}

func clamp(raw string, def, lo, hi int) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
