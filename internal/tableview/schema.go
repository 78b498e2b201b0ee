package tableview

import (
	"fmt"
	"sort"
)

// Align is the horizontal alignment renderers should use for a column.
type Align int

// Alignments.
const (
	AlignLeft Align = iota
	AlignRight
)

// Column exposes one named field of a row type.
type Column[T any] struct {
	// Name is the sort key used in SortSpec.Field and --sort flags.
	Name string
	// Title is the header shown to users.
	Title string
	Kind  Kind
	Align Align
	// Width is a rendering hint in cells; zero lets the renderer decide.
	Width int
	// Value extracts the sortable value from a row.
	Value func(T) any
	// Format renders the cell; nil falls back to fmt.Sprint(Value(row)).
	Format func(T) string
}

// Cell renders the column's value for row.
func (c Column[T]) Cell(row T) string {
	if c.Format != nil {
		return c.Format(row)
	}
	return fmt.Sprint(c.Value(row))
}

// Schema is the ordered set of columns for a row type.
type Schema[T any] struct {
	columns []Column[T]
	index   map[string]int
}

// NewSchema builds a schema. Column names must be unique and non-empty
// and every column needs a Value func.
func NewSchema[T any](columns ...Column[T]) (Schema[T], error) {
	s := Schema[T]{
		columns: make([]Column[T], 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for _, c := range columns {
		if c.Name == "" {
			return Schema[T]{}, fmt.Errorf("column name cannot be empty")
		}
		if c.Value == nil {
			return Schema[T]{}, fmt.Errorf("column %q has no Value func", c.Name)
		}
		if _, dup := s.index[c.Name]; dup {
			return Schema[T]{}, fmt.Errorf("duplicate column %q", c.Name)
		}
		s.index[c.Name] = len(s.columns)
		s.columns = append(s.columns, c)
	}
	return s, nil
}

// MustSchema is NewSchema for package-level schemas; it panics on error.
func MustSchema[T any](columns ...Column[T]) Schema[T] {
	s, err := NewSchema(columns...)
	if err != nil {
		panic(err)
	}
	return s
}

// Columns returns the columns in display order.
func (s Schema[T]) Columns() []Column[T] {
	out := make([]Column[T], len(s.columns))
	copy(out, s.columns)
	return out
}

// Column looks up a column by name.
func (s Schema[T]) Column(name string) (Column[T], bool) {
	i, ok := s.index[name]
	if !ok {
		return Column[T]{}, false
	}
	return s.columns[i], true
}

// IsValidField reports whether name is a column of the schema.
func (s Schema[T]) IsValidField(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Fields returns the column names sorted alphabetically, for help text.
func (s Schema[T]) Fields() []string {
	fields := make([]string, 0, len(s.columns))
	for _, c := range s.columns {
		fields = append(fields, c.Name)
	}
	sort.Strings(fields)
	return fields
}

// Len returns the number of columns.
func (s Schema[T]) Len() int {
	return len(s.columns)
}
