package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/sgmi/proddash/internal/chat"
	"github.com/sgmi/proddash/internal/engine"
	"github.com/sgmi/proddash/internal/production"
	"github.com/sgmi/proddash/internal/tableview"
	"github.com/sgmi/proddash/internal/tui"
)

// NewDashboardCmd opens the interactive production dashboard. When stdout is
// not a terminal it prints the KPIs and the session table instead.
func NewDashboardCmd() *cobra.Command {
	var (
		rf      rangeFlags
		product string
		offline bool
		noChat  bool
	)

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Open the interactive production dashboard",
		Long: `Opens the production dashboard: KPIs, daily production, product share and
the session table. Keys: 1-5 sort, n/p page, +/- page size, f product,
d period, r retry, c assistant, q quit.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := commandContext(cmd)
			e, err := newEnv()
			if err != nil {
				return err
			}
			filter, _, err := buildFilter(ctx, e, &rf, product)
			if err != nil {
				return err
			}
			dash := engine.NewDashboard(e.client, logger)

			if !isTerminal(os.Stdout) {
				return printDashboard(ctx, cmd, e, dash, filter)
			}

			ctx, cancel := context.WithCancel(ctx)
			defer cancel()
			e.startRefresher(ctx)

			dcfg := tui.DashboardConfig{
				Filter:     filter,
				PageSize:   e.cfg.Dashboard.PageSize,
				Locale:     e.cfg.Dashboard.Locale,
				MinLatency: e.cfg.Dashboard.MinLatency,
				Logger:     logger,
			}
			if !noChat {
				dcfg.Chat = chat.NewSession(chatSender(e, offline), logger)
			}
			model := tui.NewDashboardModel(ctx, dash, dcfg)
			defer model.Close()

			p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("running dashboard: %w", err)
			}
			return nil
		},
	}

	rf.register(cmd)
	cmd.Flags().StringVar(&product, "product", "", "product id or name")
	cmd.Flags().BoolVar(&offline, "offline", false, "simulate assistant replies when the backend is unreachable")
	cmd.Flags().BoolVar(&noChat, "no-chat", false, "disable the assistant pane")
	return cmd
}

// printDashboard writes a one-shot dashboard for pipes and CI logs.
func printDashboard(
	ctx context.Context,
	cmd *cobra.Command,
	e *env,
	dash *engine.Dashboard,
	filter production.Filter,
) error {
	snap, err := dash.Load(ctx, filter)
	if err != nil {
		return err
	}
	logSnapshot(ctx, snap)
	w := cmd.OutOrStdout()
	label := snap.Product
	if label == "" {
		label = "Todos os produtos"
	}
	fmt.Fprintf(w, "Produção · %s · %s a %s\n\n", label, filter.StartDate, filter.EndDate)
	if err := engine.RenderMetrics(w, snap.Metrics, e.format); err != nil {
		return err
	}
	fmt.Fprintln(w)

	spec := tableview.SortSpec{Field: production.ColDate, Direction: tableview.Desc}
	page := tableview.PageSpec{Index: 0, Size: e.cfg.Dashboard.PageSize}
	return renderPage(cmd, engine.OutputTable, production.ReportSchema(e.format), snap.Rows,
		spec, page, e.cfg.Dashboard.Locale, &snap.Filter, nil)
}

func logSnapshot(ctx context.Context, snap engine.Snapshot) {
	logger.Debug().Ctx(ctx).Int("rows", len(snap.Rows)).Time("loaded_at", snap.LoadedAt).
		Dur("age", time.Since(snap.LoadedAt)).Msg("dashboard snapshot")
}
