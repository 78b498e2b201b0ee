package production

import (
	"fmt"
	"strings"
	"time"
)

// Shift is a production shift as the backend encodes it.
type Shift string

// Shifts.
const (
	ShiftMorning   Shift = "MORNING"
	ShiftAfternoon Shift = "AFTERNOON"
	ShiftNight     Shift = "NIGHT"
)

// Shifts lists the valid shifts in day order.
func Shifts() []Shift {
	return []Shift{ShiftMorning, ShiftAfternoon, ShiftNight}
}

// Label returns the display label of the shift.
func (s Shift) Label() string {
	switch s {
	case ShiftMorning:
		return "Manhã"
	case ShiftAfternoon:
		return "Tarde"
	case ShiftNight:
		return "Noite"
	default:
		return string(s)
	}
}

// String implements fmt.Stringer.
func (s Shift) String() string { return s.Label() }

// ParseShift accepts a wire code or a display label, case-insensitively.
func ParseShift(v string) (Shift, error) {
	v = strings.TrimSpace(v)
	for _, s := range Shifts() {
		if strings.EqualFold(v, string(s)) || strings.EqualFold(v, s.Label()) {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownShift, v)
}

// ShiftFromWire maps a backend code or label to a Shift. Anything
// unrecognized is reported as night, matching how reports label it.
func ShiftFromWire(v string) Shift {
	s, err := ParseShift(v)
	if err != nil {
		return ShiftNight
	}
	return s
}

// Unit is the unit a product is measured in.
type Unit string

// Units.
const (
	UnitKg    Unit = "KG"
	UnitUnits Unit = "UN"
)

// Product is a catalog item.
type Product struct {
	ID        string    `json:"id"        yaml:"id"`
	Name      string    `json:"name"      yaml:"name"`
	Unit      Unit      `json:"unit"      yaml:"unit"`
	Type      string    `json:"type"      yaml:"type"`
	Active    bool      `json:"active"    yaml:"active"`
	CreatedAt time.Time `json:"createdAt" yaml:"created_at"`
}

// Session is one recorded production run.
type Session struct {
	// Date is DD/MM/YYYY as the backend reports it.
	Date            string  `json:"date"     yaml:"date"`
	Shift           Shift   `json:"shift"    yaml:"shift"`
	Product         string  `json:"product"  yaml:"product"`
	Batches         int     `json:"batches"  yaml:"batches"`
	TotalKg         float64 `json:"totalKg"  yaml:"total_kg"`
	DurationSeconds int64   `json:"duration" yaml:"duration_seconds"`
}

// Report is one planned-production line.
type Report struct {
	Date    string  `json:"date"    yaml:"date"`
	Shift   Shift   `json:"shift"   yaml:"shift"`
	Product string  `json:"product" yaml:"product"`
	Batches int     `json:"batches" yaml:"batches"`
	TotalKg float64 `json:"totalKg" yaml:"total_kg"`
}

// Total is the planned kilograms of one product.
type Total struct {
	Product string  `json:"product" yaml:"product"`
	TotalKg float64 `json:"totalKg" yaml:"total_kg"`
}

// TableRow is one line of the production report table.
type TableRow struct {
	Date     string  `json:"date"     yaml:"date"`
	Shift    Shift   `json:"shift"    yaml:"shift"`
	Product  string  `json:"product"  yaml:"product"`
	Batches  int     `json:"batches"  yaml:"batches"`
	ApproxKg float64 `json:"approxKg" yaml:"approx_kg"`
}

// Metrics are the dashboard KPIs.
type Metrics struct {
	TotalKg      float64 `json:"totalKg"      yaml:"total_kg"`
	TotalBatches int     `json:"totalBatches" yaml:"total_batches"`
	TotalMinutes int64   `json:"totalMinutes" yaml:"total_minutes"`
	KgPerBatch   float64 `json:"kgPerBatch"   yaml:"kg_per_batch"`
}

// DailyPoint is total kilograms produced on one ISO date.
type DailyPoint struct {
	Date string  `json:"date" yaml:"date"`
	Kg   float64 `json:"kg"   yaml:"kg"`
}

// SharePoint is a product's rounded percentage of total production.
type SharePoint struct {
	Name    string `json:"name"  yaml:"name"`
	Percent int    `json:"value" yaml:"percent"`
}

// TrendPoint is total kilograms for one day, labeled as the backend reported it.
type TrendPoint struct {
	Day string  `json:"day" yaml:"day"`
	Kg  float64 `json:"kg"  yaml:"kg"`
}

// Summary is the backend's aggregate report for a filter.
type Summary struct {
	TotalKg      float64 `json:"totalKg"      yaml:"total_kg"`
	TotalBatches int     `json:"totalBatches" yaml:"total_batches"`
	TotalMinutes int64   `json:"totalMinutes" yaml:"total_minutes"`
}

// Metrics converts the summary into dashboard KPIs.
func (s Summary) Metrics() Metrics {
	batches := max(s.TotalBatches, 1)
	return Metrics{
		TotalKg:      s.TotalKg,
		TotalBatches: s.TotalBatches,
		TotalMinutes: s.TotalMinutes,
		KgPerBatch:   roundHalfUp(s.TotalKg / float64(batches)),
	}
}

// PlanRequest schedules a production plan.
type PlanRequest struct {
	ProductID       string  `json:"product_id"       yaml:"product_id"`
	PlannedQuantity float64 `json:"planned_quantity" yaml:"planned_quantity"`
	Shift           Shift   `json:"shift"            yaml:"shift"`
	// PlannedDate is an ISO date (2006-01-02).
	PlannedDate     string  `json:"planned_date"     yaml:"planned_date"`
}

// Validate checks the request before it is sent.
func (p PlanRequest) Validate() error {
	if strings.TrimSpace(p.ProductID) == "" {
		return &ValidationError{Field: "product_id", Message: MsgSelectProduct}
	}
	if p.PlannedQuantity < MinQuantityKg {
		return &ValidationError{Field: "planned_quantity", Message: MsgMinQuantity}
	}
	if _, err := ParseShift(string(p.Shift)); err != nil {
		return &ValidationError{Field: "shift", Message: err.Error()}
	}
	if _, err := time.Parse(time.DateOnly, p.PlannedDate); err != nil {
		return &ValidationError{Field: "planned_date", Message: MsgInvalidDate}
	}
	return nil
}
