package production

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func sampleSessions() []Session {
	return []Session{
		{Date: "10/08/2025", Shift: ShiftMorning, Product: "Pão Francês", Batches: 4, TotalKg: 120, DurationSeconds: 3600},
		{Date: "10/08/2025", Shift: ShiftAfternoon, Product: "Bolo de Milho", Batches: 2, TotalKg: 40, DurationSeconds: 1830},
		{Date: "9/8/2025", Shift: ShiftNight, Product: "Pão Francês", Batches: 3, TotalKg: 90, DurationSeconds: 2700},
		{Date: "12/08/2025", Shift: ShiftMorning, Product: "Broa", Batches: 1, TotalKg: 1, DurationSeconds: 59},
	}
}

func TestFilterSessions(t *testing.T) {
	sessions := sampleSessions()

	got := FilterSessions(sessions, "Pão Francês")
	assert.Len(t, got, 2)
	for _, s := range got {
		assert.Equal(t, "Pão Francês", s.Product)
	}

	all := FilterSessions(sessions, "")
	assert.Equal(t, sessions, all)
	all[0].Product = "changed"
	assert.Equal(t, "Pão Francês", sessions[0].Product, "result must not alias input")
}

func TestProductName(t *testing.T) {
	products := []Product{{ID: "a", Name: "Broa"}, {ID: "b", Name: "Bolo"}}
	assert.Equal(t, "Bolo", ProductName(products, "b"))
	assert.Empty(t, ProductName(products, AllProducts))
	assert.Empty(t, ProductName(products, "missing"))
}

func TestDailyProduction(t *testing.T) {
	want := []DailyPoint{
		{Date: "2025-08-09", Kg: 90},
		{Date: "2025-08-10", Kg: 160},
		{Date: "2025-08-12", Kg: 1},
	}
	if diff := cmp.Diff(want, DailyProduction(sampleSessions())); diff != "" {
		t.Errorf("DailyProduction mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, DailyProduction(nil))
}

func TestProductShare(t *testing.T) {
	// 210 / 251 = 83.7%, 40 / 251 = 15.9%, 1 / 251 = 0.4% (dropped).
	want := []SharePoint{
		{Name: "Pão Francês", Percent: 84},
		{Name: "Bolo de Milho", Percent: 16},
	}
	if diff := cmp.Diff(want, ProductShare(sampleSessions())); diff != "" {
		t.Errorf("ProductShare mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, ProductShare([]Session{{Product: "x", TotalKg: 0}}))
}

func TestTrend(t *testing.T) {
	want := []TrendPoint{
		{Day: "9/8/2025", Kg: 90},
		{Day: "10/08/2025", Kg: 160},
		{Day: "12/08/2025", Kg: 1},
	}
	if diff := cmp.Diff(want, Trend(sampleSessions())); diff != "" {
		t.Errorf("Trend mismatch (-want +got):\n%s", diff)
	}
}

func TestComputeMetrics(t *testing.T) {
	tests := []struct {
		name     string
		sessions []Session
		want     Metrics
	}{
		{
			name:     "sample",
			sessions: sampleSessions(),
			// 251 kg / 10 batches = 25.1, 8189 s = 136 min.
			want: Metrics{TotalKg: 251, TotalBatches: 10, TotalMinutes: 136, KgPerBatch: 25},
		},
		{
			name:     "half rounds up",
			sessions: []Session{{TotalKg: 5, Batches: 2, DurationSeconds: 119}},
			want:     Metrics{TotalKg: 5, TotalBatches: 2, TotalMinutes: 1, KgPerBatch: 3},
		},
		{
			name:     "no batches",
			sessions: []Session{{TotalKg: 10}},
			want:     Metrics{TotalKg: 10},
		},
		{name: "empty", want: Metrics{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ComputeMetrics(tt.sessions)); diff != "" {
				t.Errorf("ComputeMetrics mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSummaryMetrics(t *testing.T) {
	assert.Equal(t, Metrics{TotalKg: 100, TotalBatches: 0, KgPerBatch: 100}, Summary{TotalKg: 100}.Metrics())
	assert.Equal(t, Metrics{TotalKg: 100, TotalBatches: 3, TotalMinutes: 9, KgPerBatch: 33},
		Summary{TotalKg: 100, TotalBatches: 3, TotalMinutes: 9}.Metrics())
}

func TestToTableRows(t *testing.T) {
	rows := ToTableRows(sampleSessions()[:1])
	want := []TableRow{{Date: "10/08/2025", Shift: ShiftMorning, Product: "Pão Francês", Batches: 4, ApproxKg: 120}}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("ToTableRows mismatch (-want +got):\n%s", diff)
	}

	reports := ReportRows([]Report{{Date: "01/08/2025", Shift: ShiftNight, Product: "Broa", Batches: 2, TotalKg: 8}})
	assert.Equal(t, 8.0, reports[0].ApproxKg)
}

func TestISODate(t *testing.T) {
	tests := map[string]string{
		"10/08/2025": "2025-08-10",
		"1/2/2025":   "2025-02-01",
		"2025-08-10": "2025-08-10",
		"garbage":    "garbage",
	}
	for in, want := range tests {
		assert.Equal(t, want, ISODate(in), in)
	}
}
