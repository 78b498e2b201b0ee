package tableview

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fvbommel/sortorder"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Kind tells the comparator how to order a column's values.
type Kind int

// Column kinds.
const (
	// KindAuto compares numbers numerically and everything else as text.
	KindAuto Kind = iota
	// KindString compares with locale-aware collation.
	KindString
	// KindNumber compares numerically; non-numeric values sort first.
	KindNumber
	// KindDate parses values as dates and compares timestamps.
	KindDate
	// KindNatural compares text with embedded numbers in natural order ("Lote 2" < "Lote 10").
	KindNatural
)

// StrictDateLayout is tried first for date columns (DD/MM/YYYY).
const StrictDateLayout = "02/01/2006"

// permissiveDateLayouts are tried in order when the strict layout fails.
//
//nolint:gochecknoglobals // Read-only lookup table.
var permissiveDateLayouts = []string{
	time.DateOnly,
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	time.DateTime,
	"2/1/2006",
	"01/02/2006",
	"2006/01/02",
}

// ParseDate parses s with StrictDateLayout, falling back to common ISO and
// slash layouts. The boolean is false when nothing matched.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(StrictDateLayout, s); err == nil {
		return t, true
	}
	for _, layout := range permissiveDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Comparer orders cell values. It wraps a collator, which is not safe for
// concurrent use, behind a mutex.
type Comparer struct {
	mu       sync.Mutex
	collator *collate.Collator
}

// NewComparer returns a Comparer collating text for locale (a BCP 47 tag
// such as "pt-BR"). An empty or unknown locale falls back to natural order.
func NewComparer(locale string) *Comparer {
	if locale == "" {
		return &Comparer{}
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return &Comparer{}
	}
	return &Comparer{collator: collate.New(tag)}
}

// Compare returns -1, 0 or +1 ordering a before, equal to, or after b.
func (c *Comparer) Compare(a, b any, kind Kind) int {
	switch kind {
	case KindDate:
		return compareDates(a, b)
	case KindNumber:
		return compareNumbers(a, b)
	case KindNatural:
		return compareNatural(toText(a), toText(b))
	case KindString:
		return c.compareText(toText(a), toText(b))
	case KindAuto:
		if fa, ok := toNumber(a); ok {
			if fb, okB := toNumber(b); okB {
				return sign(fa - fb)
			}
		}
		return c.compareText(toText(a), toText(b))
	default:
		return c.compareText(toText(a), toText(b))
	}
}

func (c *Comparer) compareText(a, b string) int {
	if c == nil || c.collator == nil {
		return compareNatural(a, b)
	}
	c.mu.Lock()
	r := c.collator.CompareString(a, b)
	c.mu.Unlock()
	if r != 0 {
		return r
	}
	return compareNatural(a, b)
}

func compareNatural(a, b string) int {
	switch {
	case a == b:
		return 0
	case sortorder.NaturalLess(a, b):
		return -1
	case sortorder.NaturalLess(b, a):
		return 1
	default:
		return strings.Compare(a, b)
	}
}

// compareDates orders unparsable values before parsable ones; two
// unparsable values fall back to text order.
func compareDates(a, b any) int {
	ta, okA := toTime(a)
	tb, okB := toTime(b)
	switch {
	case okA && okB:
		return ta.Compare(tb)
	case okA:
		return 1
	case okB:
		return -1
	default:
		return strings.Compare(toText(a), toText(b))
	}
}

func compareNumbers(a, b any) int {
	fa, okA := toNumber(a)
	fb, okB := toNumber(b)
	switch {
	case okA && okB:
		return sign(fa - fb)
	case okA:
		return 1
	case okB:
		return -1
	default:
		return 0
	}
}

func toTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case *time.Time:
		if t == nil {
			return time.Time{}, false
		}
		return *t, !t.IsZero()
	case string:
		return ParseDate(t)
	default:
		return time.Time{}, false
	}
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

func toText(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(v)
	}
}

func sign(f float64) int {
	switch {
	case f < 0:
		return -1
	case f > 0:
		return 1
	default:
		return 0
	}
}
