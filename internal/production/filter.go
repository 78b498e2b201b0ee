package production

import (
	"fmt"
	"strings"
	"time"
)

// AllProducts is the Filter.ProductID that selects every product.
const AllProducts = "__ALL__"

// DefaultDaysRange is how many days back the default filter starts.
const DefaultDaysRange = 7

// Filter selects the sessions shown on the dashboard. Dates are ISO
// (2006-01-02); an empty date leaves that side of the range open.
type Filter struct {
	ProductID string `json:"productId" yaml:"product_id"`
	StartDate string `json:"startDate" yaml:"start_date"`
	EndDate   string `json:"endDate"   yaml:"end_date"`
}

// DefaultFilter covers every product from DefaultDaysRange days before now
// up to now, in UTC.
func DefaultFilter(now time.Time) Filter {
	return LastDays(now, DefaultDaysRange)
}

// LastDays covers every product over the given number of days up to now.
func LastDays(now time.Time, days int) Filter {
	now = now.UTC()
	return Filter{
		ProductID: AllProducts,
		StartDate: now.AddDate(0, 0, -days).Format(time.DateOnly),
		EndDate:   now.Format(time.DateOnly),
	}
}

// AllSelected reports whether the filter includes every product.
func (f Filter) AllSelected() bool {
	return f.ProductID == "" || f.ProductID == AllProducts
}

// Range is the from/to query window the backend expects.
type Range struct {
	From string
	To   string
}

// IsZero reports whether neither bound is set.
func (r Range) IsZero() bool { return r.From == "" && r.To == "" }

// Range converts the filter dates to the backend's datetime bounds:
// the start of StartDate and the last second of EndDate, both UTC.
func (f Filter) Range() Range {
	var r Range
	if f.StartDate != "" {
		r.From = f.StartDate + "T00:00:00Z"
	}
	if f.EndDate != "" {
		r.To = f.EndDate + "T23:59:59Z"
	}
	return r
}

// Validate checks date formats and that the start is not after the end.
func (f Filter) Validate() error {
	var start, end time.Time
	var err error
	if f.StartDate != "" {
		if start, err = time.Parse(time.DateOnly, f.StartDate); err != nil {
			return &ValidationError{Field: "startDate", Message: MsgInvalidDate}
		}
	}
	if f.EndDate != "" {
		if end, err = time.Parse(time.DateOnly, f.EndDate); err != nil {
			return &ValidationError{Field: "endDate", Message: MsgInvalidDate}
		}
	}
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		return &ValidationError{Field: "startDate", Message: MsgStartAfterEnd}
	}
	return nil
}

// Key identifies the filter for caching and change detection.
func (f Filter) Key() string {
	product := f.ProductID
	if f.AllSelected() {
		product = AllProducts
	}
	return strings.Join([]string{product, f.StartDate, f.EndDate}, "|")
}

// String implements fmt.Stringer.
func (f Filter) String() string {
	product := f.ProductID
	if f.AllSelected() {
		product = "all products"
	}
	return fmt.Sprintf("%s, %s to %s", product, orDash(f.StartDate), orDash(f.EndDate))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
