package production

import (
	"math"
	"sort"
	"strings"
)

// FilterSessions keeps sessions of the named product. An empty name keeps
// everything, which is also what happens when a product id could not be
// resolved to a name.
func FilterSessions(sessions []Session, productName string) []Session {
	if productName == "" {
		out := make([]Session, len(sessions))
		copy(out, sessions)
		return out
	}
	out := make([]Session, 0, len(sessions))
	for _, s := range sessions {
		if s.Product == productName {
			out = append(out, s)
		}
	}
	return out
}

// ProductName resolves a filter product id against a catalog. It returns
// "" for AllProducts or an id that is not in the catalog.
func ProductName(products []Product, productID string) string {
	if productID == "" || productID == AllProducts {
		return ""
	}
	for _, p := range products {
		if p.ID == productID {
			return p.Name
		}
	}
	return ""
}

// DailyProduction sums kilograms per day. Days are ISO dates in ascending order.
func DailyProduction(sessions []Session) []DailyPoint {
	totals := make(map[string]float64)
	for _, s := range sessions {
		totals[ISODate(s.Date)] += s.TotalKg
	}
	out := make([]DailyPoint, 0, len(totals))
	for date, kg := range totals {
		out = append(out, DailyPoint{Date: date, Kg: kg})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// ProductShare returns each product's rounded percentage of total
// kilograms, largest first. Products rounding to 0% are dropped.
func ProductShare(sessions []Session) []SharePoint {
	totals := make(map[string]float64)
	var sum float64
	for _, s := range sessions {
		totals[s.Product] += s.TotalKg
		sum += s.TotalKg
	}
	if sum <= 0 {
		return []SharePoint{}
	}
	out := make([]SharePoint, 0, len(totals))
	for name, kg := range totals {
		pct := int(roundHalfUp(kg / sum * 100))
		if pct > 0 {
			out = append(out, SharePoint{Name: name, Percent: pct})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Percent != out[j].Percent {
			return out[i].Percent > out[j].Percent
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Trend sums kilograms per day keeping the backend's day label, ordered by date.
func Trend(sessions []Session) []TrendPoint {
	totals := make(map[string]float64)
	for _, s := range sessions {
		totals[s.Date] += s.TotalKg
	}
	out := make([]TrendPoint, 0, len(totals))
	for day, kg := range totals {
		out = append(out, TrendPoint{Day: day, Kg: kg})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := ISODate(out[i].Day), ISODate(out[j].Day)
		if a != b {
			return a < b
		}
		return out[i].Day < out[j].Day
	})
	return out
}

// ComputeMetrics totals the sessions. KgPerBatch is rounded to a whole
// kilogram and TotalMinutes drops partial minutes.
func ComputeMetrics(sessions []Session) Metrics {
	var m Metrics
	var seconds int64
	for _, s := range sessions {
		m.TotalKg += s.TotalKg
		m.TotalBatches += s.Batches
		seconds += s.DurationSeconds
	}
	if m.TotalBatches > 0 {
		m.KgPerBatch = roundHalfUp(m.TotalKg / float64(m.TotalBatches))
	}
	m.TotalMinutes = seconds / 60
	return m
}

// ToTableRows maps sessions to report table rows.
func ToTableRows(sessions []Session) []TableRow {
	rows := make([]TableRow, len(sessions))
	for i, s := range sessions {
		rows[i] = TableRow{
			Date:     s.Date,
			Shift:    s.Shift,
			Product:  s.Product,
			Batches:  s.Batches,
			ApproxKg: s.TotalKg,
		}
	}
	return rows
}

// ReportRows maps planned reports to report table rows.
func ReportRows(reports []Report) []TableRow {
	rows := make([]TableRow, len(reports))
	for i, r := range reports {
		rows[i] = TableRow{
			Date:     r.Date,
			Shift:    r.Shift,
			Product:  r.Product,
			Batches:  r.Batches,
			ApproxKg: r.TotalKg,
		}
	}
	return rows
}

// ISODate converts D/M/YYYY to YYYY-MM-DD, zero-padding day and month.
// Anything else is returned unchanged.
func ISODate(date string) string {
	parts := strings.Split(strings.TrimSpace(date), "/")
	if len(parts) != 3 {
		return date
	}
	return parts[2] + "-" + pad2(parts[1]) + "-" + pad2(parts[0])
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// roundHalfUp rounds to the nearest integer, halves toward +Inf.
func roundHalfUp(f float64) float64 {
	return math.Floor(f + 0.5)
}
