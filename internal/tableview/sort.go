package tableview

import (
	"errors"
	"fmt"
	"strings"
)

// Direction is the sort direction of a column.
type Direction string

// Sort directions.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// sortPartsMax is the maximum number of parts in a sort string (field:order).
const sortPartsMax = 2

// Sort parsing errors.
var (
	ErrInvalidSortFormat = errors.New("invalid sort format: use 'field' or 'field:order' (e.g., 'date:desc')")
	ErrEmptySortField    = errors.New("sort field cannot be empty")
	ErrInvalidSortOrder  = errors.New("sort order must be 'asc' or 'desc'")
	ErrUnknownField      = errors.New("unknown sort field")
)

// ParseDirection parses "asc" or "desc" (case-insensitive). Empty means Asc.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case "", Asc:
		return Asc, nil
	case Desc:
		return Desc, nil
	default:
		return "", fmt.Errorf("%w: got %q", ErrInvalidSortOrder, s)
	}
}

// Opposite returns the other direction.
func (d Direction) Opposite() Direction {
	if d == Desc {
		return Asc
	}
	return Desc
}

// SortSpec selects the column and direction rows are ordered by.
// The zero value keeps rows in input order.
type SortSpec struct {
	Field     string
	Direction Direction
}

// Select returns the spec after the user picks field: a newly selected
// field starts ascending, reselecting the current field toggles direction.
func (s SortSpec) Select(field string) SortSpec {
	if s.Field == field {
		return SortSpec{Field: field, Direction: s.direction().Opposite()}
	}
	return SortSpec{Field: field, Direction: Asc}
}

// IsZero reports whether no field is selected.
func (s SortSpec) IsZero() bool {
	return s.Field == ""
}

func (s SortSpec) direction() Direction {
	if s.Direction == Desc {
		return Desc
	}
	return Asc
}

// String formats the spec as "field:order".
func (s SortSpec) String() string {
	if s.IsZero() {
		return ""
	}
	return s.Field + ":" + string(s.direction())
}

// ParseSort parses a sort string in the format "field" or "field:order".
// Examples: "date", "approxKg:desc". The empty string yields the zero spec.
func ParseSort(sortStr string) (SortSpec, error) {
	if strings.TrimSpace(sortStr) == "" {
		return SortSpec{}, nil
	}

	parts := strings.Split(sortStr, ":")
	if len(parts) > sortPartsMax {
		return SortSpec{}, fmt.Errorf("%w: %q", ErrInvalidSortFormat, sortStr)
	}

	field := strings.TrimSpace(parts[0])
	if field == "" {
		return SortSpec{}, ErrEmptySortField
	}

	order := ""
	if len(parts) == sortPartsMax {
		order = parts[1]
	}
	dir, err := ParseDirection(order)
	if err != nil {
		return SortSpec{}, err
	}

	return SortSpec{Field: field, Direction: dir}, nil
}
