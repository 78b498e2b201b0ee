package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgmi/proddash/internal/production"
)

type fakeSource struct {
	sessions    []production.Session
	products    []production.Product
	sessionsErr error
	productsErr error
	gotRange    atomic.Value
}

func (f *fakeSource) Sessions(ctx context.Context, r production.Range) ([]production.Session, error) {
	f.gotRange.Store(r)
	if f.sessionsErr != nil {
		return nil, f.sessionsErr
	}
	return f.sessions, nil
}

func (f *fakeSource) ActiveProducts(ctx context.Context) ([]production.Product, error) {
	// Blocks until the sibling load fails, proving both run concurrently.
	if f.sessionsErr != nil {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.productsErr != nil {
		return nil, f.productsErr
	}
	return f.products, nil
}

func (f *fakeSource) Totals(context.Context, production.Range) ([]production.Total, error) {
	return []production.Total{{Product: "Broa", TotalKg: 12}}, nil
}

func (f *fakeSource) Reports(context.Context, production.Range) ([]production.Report, error) {
	return []production.Report{{Date: "12/08/2025", Shift: production.ShiftMorning, Product: "Broa", Batches: 1, TotalKg: 12}}, nil
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		sessions: []production.Session{
			{Date: "10/08/2025", Shift: production.ShiftMorning, Product: "Pão Francês", Batches: 4, TotalKg: 120, DurationSeconds: 3600},
			{Date: "10/08/2025", Shift: production.ShiftAfternoon, Product: "Bolo de Milho", Batches: 2, TotalKg: 40, DurationSeconds: 1830},
			{Date: "9/8/2025", Shift: production.ShiftNight, Product: "Pão Francês", Batches: 3, TotalKg: 90, DurationSeconds: 2700},
		},
		products: []production.Product{
			{ID: "p-pao", Name: "Pão Francês", Active: true},
			{ID: "p-bolo", Name: "Bolo de Milho", Active: true},
		},
	}
}

var fixedNow = time.Date(2025, 8, 12, 12, 0, 0, 0, time.UTC)

func newTestDashboard(src Source) *Dashboard {
	d := NewDashboard(src, zerolog.Nop())
	d.now = func() time.Time { return fixedNow }
	return d
}

func TestDashboard_LoadAllProducts(t *testing.T) {
	src := newFakeSource()
	f := production.DefaultFilter(fixedNow)

	snap, err := newTestDashboard(src).Load(context.Background(), f)
	require.NoError(t, err)

	assert.Equal(t, production.Range{From: "2025-08-05T00:00:00Z", To: "2025-08-12T23:59:59Z"}, src.gotRange.Load())
	assert.Empty(t, snap.Product)
	assert.Equal(t, production.Metrics{TotalKg: 250, TotalBatches: 9, TotalMinutes: 135, KgPerBatch: 28}, snap.Metrics)
	assert.Len(t, snap.Rows, 3)
	assert.Len(t, snap.Products, 2)
	assert.Equal(t, fixedNow, snap.LoadedAt)

	wantDaily := []production.DailyPoint{{Date: "2025-08-09", Kg: 90}, {Date: "2025-08-10", Kg: 160}}
	if diff := cmp.Diff(wantDaily, snap.Daily); diff != "" {
		t.Errorf("Daily mismatch (-want +got):\n%s", diff)
	}
	wantShare := []production.SharePoint{{Name: "Pão Francês", Percent: 84}, {Name: "Bolo de Milho", Percent: 16}}
	if diff := cmp.Diff(wantShare, snap.Share); diff != "" {
		t.Errorf("Share mismatch (-want +got):\n%s", diff)
	}
}

func TestDashboard_LoadOneProduct(t *testing.T) {
	f := production.DefaultFilter(fixedNow)
	f.ProductID = "p-pao"

	snap, err := newTestDashboard(newFakeSource()).Load(context.Background(), f)
	require.NoError(t, err)
	assert.Equal(t, "Pão Francês", snap.Product)
	assert.Equal(t, production.Metrics{TotalKg: 210, TotalBatches: 7, TotalMinutes: 105, KgPerBatch: 30}, snap.Metrics)
	for _, row := range snap.Rows {
		assert.Equal(t, "Pão Francês", row.Product)
	}
}

func TestDashboard_UnknownProductShowsAll(t *testing.T) {
	f := production.DefaultFilter(fixedNow)
	f.ProductID = "gone"

	snap, err := newTestDashboard(newFakeSource()).Load(context.Background(), f)
	require.NoError(t, err)
	assert.Len(t, snap.Rows, 3)
}

func TestDashboard_CatalogFailureShowsAll(t *testing.T) {
	src := newFakeSource()
	src.productsErr = errors.New("catalog down")
	f := production.DefaultFilter(fixedNow)
	f.ProductID = "p-pao"

	snap, err := newTestDashboard(src).Load(context.Background(), f)
	require.NoError(t, err)
	assert.Len(t, snap.Rows, 3)
	assert.Empty(t, snap.Product)
	assert.Empty(t, snap.Products)
	assert.InDelta(t, 250.0, snap.Metrics.TotalKg, 0.001)
}

func TestDashboard_LoadErrors(t *testing.T) {
	t.Run("invalid filter", func(t *testing.T) {
		_, err := newTestDashboard(newFakeSource()).Load(context.Background(),
			production.Filter{StartDate: "2025-08-12", EndDate: "2025-08-01"})
		var verr *production.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, production.MsgStartAfterEnd, verr.Message)
	})

	t.Run("source failure cancels the sibling load", func(t *testing.T) {
		src := newFakeSource()
		boom := errors.New("backend down")
		src.sessionsErr = boom

		_, err := newTestDashboard(src).Load(context.Background(), production.DefaultFilter(fixedNow))
		require.ErrorIs(t, err, boom)
	})
}

func TestLoadReport(t *testing.T) {
	got, err := LoadReport(context.Background(), newFakeSource(), production.Range{})
	require.NoError(t, err)
	assert.Equal(t, []production.Total{{Product: "Broa", TotalKg: 12}}, got.Totals)
	assert.Equal(t, []production.TableRow{{Date: "12/08/2025", Shift: production.ShiftMorning, Product: "Broa", Batches: 1, ApproxKg: 12}}, got.Rows)
}
