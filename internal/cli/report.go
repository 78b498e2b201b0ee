package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sgmi/proddash/internal/engine"
	"github.com/sgmi/proddash/internal/production"
)

// buildFilter resolves --product (id or name) against the active catalog
// and combines it with the range flags.
func buildFilter(ctx context.Context, e *env, rf *rangeFlags, productQuery string) (production.Filter, string, error) {
	productID, name := "", ""
	if productQuery != "" {
		products, err := e.client.ActiveProducts(ctx)
		if err != nil {
			return production.Filter{}, "", err
		}
		p, err := resolveProduct(products, productQuery)
		if err != nil {
			return production.Filter{}, "", err
		}
		productID, name = p.ID, p.Name
	}
	f, err := rf.filter(time.Now(), productID)
	return f, name, err
}

// NewReportCmd prints the planned-production report with per-product totals.
func NewReportCmd() *cobra.Command {
	var (
		rf      rangeFlags
		list    listFlags
		product string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show the planned-production report",
		Long: `Shows planned production lines for a period with per-product totals.
Rows can be sorted by any column and are paged like the dashboard table.`,
		Example: `  proddash report --from 2025-08-01 --to 2025-08-07
  proddash report --product broa --sort batches:desc --page 2 --page-size 20
  proddash report --output ndjson`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd)
			e, err := newEnv()
			if err != nil {
				return err
			}
			schema := production.ReportSchema(e.format)
			spec, page, format, err := list.parsed(schema.Fields())
			if err != nil {
				return err
			}
			filter, name, err := buildFilter(ctx, e, &rf, product)
			if err != nil {
				return err
			}

			report, err := engine.LoadReport(ctx, e.client, filter.Range())
			if err != nil {
				return err
			}
			rows := report.Rows
			if name != "" {
				rows = filterRowsByProduct(rows, name)
			}
			logger.Debug().Ctx(ctx).
				Str("operation", "report").
				Str("filter", filter.String()).
				Int("rows", len(rows)).
				Msg("report loaded")

			if err := renderPage(cmd, format, schema, rows, spec, page,
				e.cfg.Dashboard.Locale, &filter, report.Totals); err != nil {
				return err
			}
			if format != engine.OutputTable {
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "\nTotais planejados por produto")
			return engine.RenderTable(cmd.OutOrStdout(), production.TotalSchema(e.format), report.Totals)
		},
	}

	rf.register(cmd)
	list.register(cmd, production.ColDate+":desc")
	cmd.Flags().StringVar(&product, "product", "", "product id or name")
	return cmd
}

func filterRowsByProduct(rows []production.TableRow, name string) []production.TableRow {
	out := make([]production.TableRow, 0, len(rows))
	for _, r := range rows {
		if r.Product == name {
			out = append(out, r)
		}
	}
	return out
}

// NewSessionsCmd prints the recorded production sessions behind the dashboard.
func NewSessionsCmd() *cobra.Command {
	var (
		rf      rangeFlags
		list    listFlags
		product string
	)

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List recorded production sessions",
		Example: `  proddash sessions --days 14
  proddash sessions --product "Pão Francês" --sort approxKg:desc`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd)
			e, err := newEnv()
			if err != nil {
				return err
			}
			schema := production.ReportSchema(e.format)
			spec, page, format, err := list.parsed(schema.Fields())
			if err != nil {
				return err
			}
			filter, _, err := buildFilter(ctx, e, &rf, product)
			if err != nil {
				return err
			}

			snap, err := engine.NewDashboard(e.client, logger).Load(ctx, filter)
			if err != nil {
				return err
			}
			return renderPage(cmd, format, schema, snap.Rows, spec, page,
				e.cfg.Dashboard.Locale, &filter, snap.Metrics)
		},
	}

	rf.register(cmd)
	list.register(cmd, production.ColDate+":desc")
	cmd.Flags().StringVar(&product, "product", "", "product id or name")
	return cmd
}

// NewTotalsCmd prints planned kilograms per product.
func NewTotalsCmd() *cobra.Command {
	var (
		rf   rangeFlags
		list listFlags
	)

	cmd := &cobra.Command{
		Use:     "totals",
		Short:   "Show planned kilograms per product",
		Example: `  proddash totals --from 2025-08-01 --sort totalKg:desc`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd)
			e, err := newEnv()
			if err != nil {
				return err
			}
			schema := production.TotalSchema(e.format)
			spec, page, format, err := list.parsed(schema.Fields())
			if err != nil {
				return err
			}
			filter, err := rf.filter(time.Now(), "")
			if err != nil {
				return err
			}

			totals, err := e.client.Totals(ctx, filter.Range())
			if err != nil {
				return err
			}
			return renderPage(cmd, format, schema, totals, spec, page, e.cfg.Dashboard.Locale, &filter, nil)
		},
	}

	rf.register(cmd)
	list.register(cmd, production.ColTotalKg+":desc")
	return cmd
}

// metricsOutput is the structured form of the metrics command.
type metricsOutput struct {
	Filter  production.Filter       `json:"filter"  yaml:"filter"`
	Product string                  `json:"product" yaml:"product"`
	Metrics production.Metrics      `json:"metrics" yaml:"metrics"`
	Daily   []production.DailyPoint `json:"daily"   yaml:"daily"`
	Share   []production.SharePoint `json:"share"   yaml:"share"`
	Trend   []production.TrendPoint `json:"trend"   yaml:"trend"`
}

// NewMetricsCmd prints the dashboard KPIs and chart data for a period.
func NewMetricsCmd() *cobra.Command {
	var (
		rf      rangeFlags
		output  string
		product string
	)

	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Show production KPIs for a period",
		Example: `  proddash metrics
  proddash metrics --product broa --days 30 --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd)
			format, err := engine.ParseOutputFormat(output)
			if err != nil {
				return err
			}
			e, err := newEnv()
			if err != nil {
				return err
			}
			filter, _, err := buildFilter(ctx, e, &rf, product)
			if err != nil {
				return err
			}

			snap, err := engine.NewDashboard(e.client, logger).Load(ctx, filter)
			if err != nil {
				return err
			}
			out := metricsOutput{
				Filter:  snap.Filter,
				Product: snap.Product,
				Metrics: snap.Metrics,
				Daily:   snap.Daily,
				Share:   snap.Share,
				Trend:   snap.Trend,
			}
			return renderValue(cmd, format, out, func() error {
				w := cmd.OutOrStdout()
				label := snap.Product
				if label == "" {
					label = "Todos os produtos"
				}
				fmt.Fprintf(w, "%s · %s a %s\n\n", label, filter.StartDate, filter.EndDate)
				if err := engine.RenderMetrics(w, snap.Metrics, e.format); err != nil {
					return err
				}
				if len(snap.Share) == 0 {
					return nil
				}
				fmt.Fprintln(w, "\nParticipação por produto")
				for _, s := range snap.Share {
					fmt.Fprintf(w, "  %-24s %s\n", s.Name, e.format.Percent(s.Percent))
				}
				return nil
			})
		},
	}

	rf.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", string(engine.OutputTable), "output format: table, json, yaml")
	cmd.Flags().StringVar(&product, "product", "", "product id or name")
	return cmd
}
