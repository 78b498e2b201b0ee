package api

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/sgmi/proddash/internal/production"
)

// number decodes a JSON number or numeric string. Anything else is zero,
// since the backend sends aggregates as strings for some databases.
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*n = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			*n = 0
			return nil
		}
		b = []byte(strings.TrimSpace(s))
	}
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = number(f)
	return nil
}

func (n number) Float() float64 { return float64(n) }
func (n number) Int() int       { return int(n) }
func (n number) Int64() int64   { return int64(n) }

type wireTotal struct {
	ProductName   string `json:"product_name"`
	TotalPlanned  number `json:"total_planned"`
	TotalProduced number `json:"total_produced"`
}

func (w wireTotal) kg() float64 {
	if w.TotalProduced != 0 {
		return w.TotalProduced.Float()
	}
	return w.TotalPlanned.Float()
}

// wireReport covers both shapes /director/reports/production has used.
type wireReport struct {
	PlannedDate   string `json:"planned_date"`
	Date          string `json:"date"`
	Shift         string `json:"shift"`
	ProductName   string `json:"product_name"`
	TotalBatches  number `json:"total_batches"`
	BatchesCount  number `json:"batches_count"`
	TotalProduced number `json:"total_produced"`
	EstimatedKg   number `json:"estimated_kg"`
}

func (w wireReport) report() production.Report {
	date := w.PlannedDate
	if date == "" {
		date = w.Date
	}
	batches := w.TotalBatches
	if batches == 0 {
		batches = w.BatchesCount
	}
	kg := w.TotalProduced
	if kg == 0 {
		kg = w.EstimatedKg
	}
	return production.Report{
		Date:    displayDate(date),
		Shift:   production.ShiftFromWire(w.Shift),
		Product: w.ProductName,
		Batches: batches.Int(),
		TotalKg: kg.Float(),
	}
}

type wireSession struct {
	Date     string `json:"date"`
	Shift    string `json:"shift"`
	Product  string `json:"product"`
	Batches  number `json:"batches"`
	TotalKg  number `json:"totalKg"`
	Duration number `json:"duration"`
}

func (w wireSession) session() production.Session {
	return production.Session{
		Date:            w.Date,
		Shift:           production.ShiftFromWire(w.Shift),
		Product:         w.Product,
		Batches:         w.Batches.Int(),
		TotalKg:         w.TotalKg.Float(),
		DurationSeconds: w.Duration.Int64(),
	}
}

type wireDaily struct {
	Date             string `json:"date"`
	TotalEstimatedKg number `json:"total_estimated_kg"`
}

type wireSummary struct {
	TotalEstimatedKg       number `json:"total_estimated_kg"`
	TotalBatches           number `json:"total_batches"`
	TotalProductionMinutes number `json:"total_production_minutes"`
}

type wireProduct struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Unit      production.Unit `json:"unit"`
	Type      string          `json:"type"`
	Active    bool            `json:"active"`
	CreatedAt string          `json:"createdAt"`
}

func (w wireProduct) product() production.Product {
	created, _ := parseTime(w.CreatedAt)
	return production.Product{
		ID:        w.ID,
		Name:      w.Name,
		Unit:      w.Unit,
		Type:      w.Type,
		Active:    w.Active,
		CreatedAt: created,
	}
}

type wireCreated struct {
	ID string `json:"id"`
}

type wireToken struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	// ExpiresAt is Unix milliseconds.
	ExpiresAt int64 `json:"expiresAt"`
}

type wireUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type wireLogin struct {
	User  wireUser  `json:"user"`
	Token wireToken `json:"token"`
}

type wireChatRequest struct {
	Messages any `json:"messages"`
}

type wireChatReply struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// parseTime accepts RFC 3339 timestamps and bare ISO dates.
func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly, time.DateTime} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// displayDate renders a backend timestamp as DD/MM/YYYY. Values that are
// not timestamps pass through unchanged.
func displayDate(s string) string {
	t, ok := parseTime(s)
	if !ok {
		return s
	}
	return t.UTC().Format("02/01/2006")
}

// isoDate renders a backend timestamp as YYYY-MM-DD.
func isoDate(s string) string {
	t, ok := parseTime(s)
	if !ok {
		return s
	}
	return t.UTC().Format(time.DateOnly)
}

// dayMonth renders a backend timestamp as DD/MM.
func dayMonth(s string) string {
	t, ok := parseTime(s)
	if !ok {
		return s
	}
	return t.UTC().Format("02/01")
}
