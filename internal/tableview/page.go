package tableview

import (
	"errors"
	"fmt"
)

// Page size limits.
const (
	DefaultPageSize = 10
	MinPageSize     = 1
	MaxPageSize     = 1000
)

// Page validation errors.
var (
	ErrInvalidPageIndex = errors.New("page index must be non-negative")
	ErrInvalidPageSize  = errors.New("page size must be between 1 and 1000")
)

// PageSpec is a zero-based page window.
type PageSpec struct {
	Index int
	Size  int
}

// NewPageSpec returns the first page of the given size.
func NewPageSpec(size int) PageSpec {
	return PageSpec{Index: 0, Size: size}
}

// Validate checks Index >= 0 and Size within bounds.
func (p PageSpec) Validate() error {
	if p.Index < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidPageIndex, p.Index)
	}
	if p.Size < MinPageSize || p.Size > MaxPageSize {
		return fmt.Errorf("%w: got %d", ErrInvalidPageSize, p.Size)
	}
	return nil
}

// WithSize changes the page size and returns to the first page.
func (p PageSpec) WithSize(size int) PageSpec {
	return PageSpec{Index: 0, Size: size}
}

// Next advances one page unless the current page is the last one for total rows.
func (p PageSpec) Next(total int) PageSpec {
	if p.Index+1 < TotalPages(total, p.Size) {
		p.Index++
	}
	return p
}

// Prev goes back one page, stopping at the first.
func (p PageSpec) Prev() PageSpec {
	if p.Index > 0 {
		p.Index--
	}
	return p
}

// Bounds returns the [start, end) slice bounds of the page over total rows.
// Out-of-range pages return start == end.
//
//nolint:nonamedreturns // Named returns document the half-open range.
func (p PageSpec) Bounds(total int) (start, end int) {
	if p.Size <= 0 || p.Index < 0 || total <= 0 {
		return 0, 0
	}
	start = p.Index * p.Size
	if start >= total {
		return total, total
	}
	end = start + p.Size
	if end > total {
		end = total
	}
	return start, end
}

// TotalPages returns the number of pages needed for total rows.
func TotalPages(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	pages := total / size
	if total%size > 0 {
		pages++
	}
	return pages
}

// Paginate returns the rows in page. The result shares no backing array
// with rows, so callers may modify it.
func Paginate[T any](rows []T, page PageSpec) []T {
	start, end := page.Bounds(len(rows))
	out := make([]T, end-start)
	copy(out, rows[start:end])
	return out
}
