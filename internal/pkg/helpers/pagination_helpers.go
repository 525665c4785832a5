package helpers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yigit/swimdesk/internal/app/models/dto"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
	DefaultPage     = 1
)

// Page is a 1-based page request with its size already clamped to [1, MaxPageSize]
type Page struct {
	Number int
	Size   int
}

// NewPage normalizes a page request. Oversized pages are cut to MaxPageSize.
func NewPage(number, size int) Page {
	if number < 1 {
		number = DefaultPage
	}
	switch {
	case size <= 0:
		size = DefaultPageSize
	case size > MaxPageSize:
		size = MaxPageSize
	}
	return Page{Number: number, Size: size}
}

// PageFromQuery reads ?page= and ?size=, falling back to the defaults on junk input
func PageFromQuery(c *gin.Context) Page {
	number, err := strconv.Atoi(c.Query("page"))
	if err != nil {
		number = DefaultPage
	}
	size, err := strconv.Atoi(c.Query("size"))
	if err != nil {
		size = DefaultPageSize
	}
	return NewPage(number, size)
}

// Offset is the number of rows skipped before this page
func (p Page) Offset() uint64 {
	return uint64(p.Number-1) * uint64(p.Size)
}

// Info describes this page of a list holding total items.
// An empty list still reports one (empty) first page.
func (p Page) Info(total int64) dto.PaginationInfo {
	pages := int((total + int64(p.Size) - 1) / int64(p.Size))
	current := p.Number
	if pages == 0 && current == 1 {
		pages = 1
	}
	if pages > 0 && current > pages {
		current = pages
	}
	return dto.PaginationInfo{
		CurrentPage: current,
		TotalPages:  pages,
		PageSize:    p.Size,
		TotalItems:  total,
	}
}

// Window returns the [start, end) bounds of this page over n in-memory items
func (p Page) Window(n int) (start, end int) {
	start = min(int(p.Offset()), n)
	end = min(start+p.Size, n)
	return start, end
}

// Paginate cuts one page out of an already complete, ordered list
func Paginate[T any](items []T, p Page) ([]T, dto.PaginationInfo) {
	start, end := p.Window(len(items))
	return items[start:end], p.Info(int64(len(items)))
}
