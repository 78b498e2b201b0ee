package api

import (
	"context"
	"math"
	"net/url"

	"github.com/sgmi/proddash/internal/production"
)

// Backend paths.
const (
	PathSessions   = "/production/sessions"
	PathTotals     = "/director/production-totals"
	PathReports    = "/director/reports/production"
	PathDailyTrend = "/director/reports/daily-trend"
	PathSummary    = "/director/reports/summary"
	PathProducts   = "/products"
	PathPlans      = "/director/production-plans"
	PathLogin      = "/auth/login"
	PathRefresh    = "/auth/refresh"
	PathChat       = "/chat"
)

const (
	queryProductID = "product_id"
	queryInactive  = "include_inactive"
)

func rangeQuery(r production.Range) url.Values {
	q := url.Values{}
	if r.From != "" {
		q.Set("from", r.From)
	}
	if r.To != "" {
		q.Set("to", r.To)
	}
	return q
}

func filterQuery(f production.Filter) url.Values {
	q := rangeQuery(f.Range())
	if !f.AllSelected() {
		q.Set(queryProductID, f.ProductID)
	}
	return q
}

// Totals returns planned kilograms per product in r.
func (c *Client) Totals(ctx context.Context, r production.Range) ([]production.Total, error) {
	var wire []wireTotal
	if err := c.getData(ctx, PathTotals, rangeQuery(r), &wire); err != nil {
		return nil, wrap("get production totals", "Erro ao carregar totais de produção", err)
	}
	out := make([]production.Total, len(wire))
	for i, w := range wire {
		out[i] = production.Total{Product: w.ProductName, TotalKg: w.TotalPlanned.Float()}
	}
	return out, nil
}

// Reports returns planned production lines in r.
func (c *Client) Reports(ctx context.Context, r production.Range) ([]production.Report, error) {
	var wire []wireReport
	if err := c.getData(ctx, PathReports, rangeQuery(r), &wire); err != nil {
		return nil, wrap("get production reports", "Erro ao carregar relatórios de produção", err)
	}
	out := make([]production.Report, len(wire))
	for i, w := range wire {
		out[i] = w.report()
	}
	return out, nil
}

// Sessions returns recorded production sessions in r.
func (c *Client) Sessions(ctx context.Context, r production.Range) ([]production.Session, error) {
	var wire []wireSession
	if err := c.getData(ctx, PathSessions, rangeQuery(r), &wire); err != nil {
		return nil, wrap("get production sessions", "Erro ao carregar sessões de produção", err)
	}
	out := make([]production.Session, len(wire))
	for i, w := range wire {
		out[i] = w.session()
	}
	return out, nil
}

// ReportTable returns the report table rows for f.
func (c *Client) ReportTable(ctx context.Context, f production.Filter) ([]production.TableRow, error) {
	var wire []wireReport
	if err := c.getData(ctx, PathReports, filterQuery(f), &wire); err != nil {
		return nil, wrap("get report table", "Erro ao carregar tabela de produção", err)
	}
	reports := make([]production.Report, len(wire))
	for i, w := range wire {
		reports[i] = w.report()
	}
	return production.ReportRows(reports), nil
}

// DailyTrend returns estimated kilograms per ISO date for f.
func (c *Client) DailyTrend(ctx context.Context, f production.Filter) ([]production.DailyPoint, error) {
	var wire []wireDaily
	if err := c.getData(ctx, PathDailyTrend, filterQuery(f), &wire); err != nil {
		return nil, wrap("get daily production", "Erro ao carregar produção diária", err)
	}
	out := make([]production.DailyPoint, len(wire))
	for i, w := range wire {
		out[i] = production.DailyPoint{Date: isoDate(w.Date), Kg: w.TotalEstimatedKg.Float()}
	}
	return out, nil
}

// Trend returns estimated kilograms per DD/MM day for f.
func (c *Client) Trend(ctx context.Context, f production.Filter) ([]production.TrendPoint, error) {
	var wire []wireDaily
	if err := c.getData(ctx, PathDailyTrend, filterQuery(f), &wire); err != nil {
		return nil, wrap("get production trend", "Erro ao carregar tendência de produção", err)
	}
	out := make([]production.TrendPoint, len(wire))
	for i, w := range wire {
		out[i] = production.TrendPoint{Day: dayMonth(w.Date), Kg: w.TotalEstimatedKg.Float()}
	}
	return out, nil
}

// Share returns each product's rounded share of the kilograms in f.
// Products rounding to zero are left out.
func (c *Client) Share(ctx context.Context, f production.Filter) ([]production.SharePoint, error) {
	var wire []wireTotal
	if err := c.getData(ctx, PathTotals, filterQuery(f), &wire); err != nil {
		return nil, wrap("get product share", "Erro ao carregar participação por produto", err)
	}
	var sum float64
	for _, w := range wire {
		sum += w.kg()
	}
	out := make([]production.SharePoint, 0, len(wire))
	if sum <= 0 {
		return out, nil
	}
	for _, w := range wire {
		pct := int(math.Floor(w.kg()/sum*100 + 0.5))
		if pct > 0 {
			out = append(out, production.SharePoint{Name: w.ProductName, Percent: pct})
		}
	}
	return out, nil
}

// Summary returns the aggregate figures for f.
func (c *Client) Summary(ctx context.Context, f production.Filter) (production.Summary, error) {
	var wire wireSummary
	if err := c.getData(ctx, PathSummary, filterQuery(f), &wire); err != nil {
		return production.Summary{}, wrap("get production summary", "Erro ao carregar indicadores de produção", err)
	}
	return production.Summary{
		TotalKg:      wire.TotalEstimatedKg.Float(),
		TotalBatches: wire.TotalBatches.Int(),
		TotalMinutes: wire.TotalProductionMinutes.Int64(),
	}, nil
}
