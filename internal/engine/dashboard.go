package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/sgmi/proddash/internal/logging"
	"github.com/sgmi/proddash/internal/production"
)

// Source provides the raw session data behind the dashboard.
type Source interface {
	Sessions(ctx context.Context, r production.Range) ([]production.Session, error)
	ActiveProducts(ctx context.Context) ([]production.Product, error)
}

// ReportSource provides the planned-production reports.
type ReportSource interface {
	Totals(ctx context.Context, r production.Range) ([]production.Total, error)
	Reports(ctx context.Context, r production.Range) ([]production.Report, error)
}

// Snapshot is everything the dashboard shows for one filter.
type Snapshot struct {
	Filter   production.Filter       `json:"filter"   yaml:"filter"`
	Product  string                  `json:"product"  yaml:"product"`
	Metrics  production.Metrics      `json:"metrics"  yaml:"metrics"`
	Daily    []production.DailyPoint `json:"daily"    yaml:"daily"`
	Share    []production.SharePoint `json:"share"    yaml:"share"`
	Trend    []production.TrendPoint `json:"trend"    yaml:"trend"`
	Rows     []production.TableRow   `json:"rows"     yaml:"rows"`
	Products []production.Product    `json:"products" yaml:"products"`
	LoadedAt time.Time               `json:"loadedAt" yaml:"loaded_at"`
}

// DirectorReport is the planned-production view: per-product totals and
// report lines.
type DirectorReport struct {
	Totals []production.Total    `json:"totals" yaml:"totals"`
	Rows   []production.TableRow `json:"rows"   yaml:"rows"`
}

// Dashboard composes backend data into dashboard snapshots.
type Dashboard struct {
	source Source
	logger zerolog.Logger
	now    func() time.Time
}

// NewDashboard returns a dashboard reading from source.
func NewDashboard(source Source, logger zerolog.Logger) *Dashboard {
	return &Dashboard{
		source: source,
		logger: logging.ComponentLogger(logger, "engine"),
		now:    time.Now,
	}
}

// Load fetches sessions and the product catalog concurrently and derives
// the charts, KPIs and table rows for f. A product id missing from the
// catalog selects every session, as does a catalog that failed to load.
func (d *Dashboard) Load(ctx context.Context, f production.Filter) (Snapshot, error) {
	if err := f.Validate(); err != nil {
		return Snapshot{}, err
	}

	var (
		sessions   []production.Session
		products   []production.Product
		catalogErr error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sessions, err = d.source.Sessions(gctx, f.Range())
		return err
	})
	g.Go(func() error {
		products, catalogErr = d.source.ActiveProducts(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, fmt.Errorf("load dashboard: %w", err)
	}
	if catalogErr != nil {
		d.logger.Warn().Ctx(ctx).Err(catalogErr).
			Str("operation", "load_dashboard").
			Msg("product catalog unavailable, showing all sessions")
		products = nil
	}

	name := production.ProductName(products, f.ProductID)
	if !f.AllSelected() && name == "" {
		d.logger.Warn().Ctx(ctx).
			Str("operation", "load_dashboard").
			Str("product_id", f.ProductID).
			Msg("product not in catalog, showing all sessions")
	}
	selected := production.FilterSessions(sessions, name)

	d.logger.Debug().Ctx(ctx).
		Str("operation", "load_dashboard").
		Str("filter", f.String()).
		Int("sessions", len(sessions)).
		Int("selected", len(selected)).
		Msg("dashboard loaded")

	return Snapshot{
		Filter:   f,
		Product:  name,
		Metrics:  production.ComputeMetrics(selected),
		Daily:    production.DailyProduction(selected),
		Share:    production.ProductShare(selected),
		Trend:    production.Trend(selected),
		Rows:     production.ToTableRows(selected),
		Products: products,
		LoadedAt: d.now(),
	}, nil
}

// LoadReport fetches totals and report lines for r concurrently.
func LoadReport(ctx context.Context, src ReportSource, r production.Range) (DirectorReport, error) {
	var out DirectorReport
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		totals, err := src.Totals(gctx, r)
		out.Totals = totals
		return err
	})
	g.Go(func() error {
		reports, err := src.Reports(gctx, r)
		out.Rows = production.ReportRows(reports)
		return err
	})
	if err := g.Wait(); err != nil {
		return DirectorReport{}, fmt.Errorf("load report: %w", err)
	}
	return out, nil
}
