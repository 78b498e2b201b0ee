package tableview

import (
	"fmt"
	"sort"
)

// Sort returns a stable-sorted copy of rows ordered by spec. A zero spec
// returns an unsorted copy; a field missing from the schema is an error.
func Sort[T any](rows []T, schema Schema[T], spec SortSpec, cmp *Comparer) ([]T, error) {
	sorted := make([]T, len(rows))
	copy(sorted, rows)

	if spec.IsZero() {
		return sorted, nil
	}

	col, ok := schema.Column(spec.Field)
	if !ok {
		return nil, fmt.Errorf("%w: %q (valid: %v)", ErrUnknownField, spec.Field, schema.Fields())
	}

	desc := spec.direction() == Desc
	sort.SliceStable(sorted, func(i, j int) bool {
		c := cmp.Compare(col.Value(sorted[i]), col.Value(sorted[j]), col.Kind)
		if desc {
			c = -c
		}
		return c < 0
	})
	return sorted, nil
}

// View sorts rows by spec and returns the requested page plus its metadata.
func View[T any](rows []T, schema Schema[T], spec SortSpec, page PageSpec, cmp *Comparer) ([]T, Meta, error) {
	sorted, err := Sort(rows, schema, spec, cmp)
	if err != nil {
		return nil, Meta{}, err
	}
	return Paginate(sorted, page), NewMeta(page, len(sorted)), nil
}

// Controller holds the user-controlled view state for one table: the rows
// currently loaded plus the sort and page specs. It is not safe for
// concurrent use; UI models own one each.
type Controller[T any] struct {
	schema Schema[T]
	cmp    *Comparer
	rows   []T
	sort   SortSpec
	page   PageSpec
}

// NewController returns a controller over schema with the given page size.
func NewController[T any](schema Schema[T], cmp *Comparer, pageSize int, initial SortSpec) *Controller[T] {
	if pageSize < MinPageSize {
		pageSize = DefaultPageSize
	}
	return &Controller[T]{
		schema: schema,
		cmp:    cmp,
		sort:   initial,
		page:   NewPageSpec(pageSize),
	}
}

// SetRows replaces the loaded rows. The page index is kept unless it no
// longer exists, in which case the view moves to the last page.
func (c *Controller[T]) SetRows(rows []T) {
	c.rows = rows
	if pages := TotalPages(len(rows), c.page.Size); c.page.Index >= pages {
		c.page.Index = max(0, pages-1)
	}
}

// SortBy selects or toggles the sort column.
func (c *Controller[T]) SortBy(field string) error {
	if !c.schema.IsValidField(field) {
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	c.sort = c.sort.Select(field)
	return nil
}

// SetPageSize changes the page size and resets to the first page.
func (c *Controller[T]) SetPageSize(size int) error {
	next := c.page.WithSize(size)
	if err := next.Validate(); err != nil {
		return err
	}
	c.page = next
	return nil
}

// NextPage moves forward one page when possible.
func (c *Controller[T]) NextPage() { c.page = c.page.Next(len(c.rows)) }

// PrevPage moves back one page when possible.
func (c *Controller[T]) PrevPage() { c.page = c.page.Prev() }

// Sort returns the current sort spec.
func (c *Controller[T]) Sort() SortSpec { return c.sort }

// Page returns the current page spec.
func (c *Controller[T]) Page() PageSpec { return c.page }

// Schema returns the table schema.
func (c *Controller[T]) Schema() Schema[T] { return c.schema }

// Len returns the number of loaded rows.
func (c *Controller[T]) Len() int { return len(c.rows) }

// View returns the current page.
func (c *Controller[T]) View() ([]T, Meta, error) {
	return View(c.rows, c.schema, c.sort, c.page, c.cmp)
}
