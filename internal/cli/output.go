package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/sgmi/proddash/internal/engine"
	"github.com/sgmi/proddash/internal/production"
	"github.com/sgmi/proddash/internal/tableview"
)

// renderPage sorts and pages rows and writes them in format.
func renderPage[T any](
	cmd *cobra.Command,
	format engine.OutputFormat,
	schema tableview.Schema[T],
	rows []T,
	spec tableview.SortSpec,
	page tableview.PageSpec,
	locale string,
	filter *production.Filter,
	summary any,
) error {
	view, meta, err := tableview.View(rows, schema, spec, page, tableview.NewComparer(locale))
	if err != nil {
		return err
	}
	md := engine.OutputMetadata{Filter: filter, Sort: spec.String(), GeneratedAt: time.Now().UTC()}
	return engine.RenderList(cmd.OutOrStdout(), format, schema, view, meta, md, summary)
}

// renderValue writes a single document. The table format falls back to
// tableFn.
func renderValue(cmd *cobra.Command, format engine.OutputFormat, v any, tableFn func() error) error {
	switch format {
	case engine.OutputJSON, engine.OutputNDJSON:
		return engine.RenderJSON(cmd.OutOrStdout(), v)
	case engine.OutputYAML:
		return engine.RenderYAML(cmd.OutOrStdout(), v)
	default:
		return tableFn()
	}
}
