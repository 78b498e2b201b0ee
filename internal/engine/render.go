package engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sgmi/proddash/internal/production"
	"github.com/sgmi/proddash/internal/tableview"
)

// OutputFormat selects how command results are written.
type OutputFormat string

// Output formats.
const (
	OutputTable  OutputFormat = "table"
	OutputJSON   OutputFormat = "json"
	OutputYAML   OutputFormat = "yaml"
	OutputNDJSON OutputFormat = "ndjson"
)

// ErrUnknownFormat is returned by ParseOutputFormat.
var ErrUnknownFormat = errors.New("unknown output format")

// tabwriterPadding is the minimum padding between table columns.
const tabwriterPadding = 2

// OutputFormats lists the accepted --output values.
func OutputFormats() []string {
	return []string{string(OutputTable), string(OutputJSON), string(OutputYAML), string(OutputNDJSON)}
}

// ParseOutputFormat validates an --output value. Empty means table.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return OutputTable, nil
	case OutputTable, OutputJSON, OutputYAML, OutputNDJSON:
		return f, nil
	default:
		return "", fmt.Errorf("%w %q (use %s)", ErrUnknownFormat, s, strings.Join(OutputFormats(), ", "))
	}
}

// OutputMetadata heads structured output.
type OutputMetadata struct {
	Filter      *production.Filter `json:"filter,omitempty" yaml:"filter,omitempty"`
	Sort        string             `json:"sort,omitempty"   yaml:"sort,omitempty"`
	GeneratedAt time.Time          `json:"generatedAt"      yaml:"generated_at"`
}

// ListOutput is the JSON/YAML document for a paged list.
type ListOutput[T any] struct {
	Metadata OutputMetadata `json:"metadata"          yaml:"metadata"`
	Items    []T            `json:"items"             yaml:"items"`
	Page     tableview.Meta `json:"page"              yaml:"page"`
	Summary  any            `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// RenderList writes one page of rows in the requested format. The table
// format prints schema titles and a page footer; NDJSON prints one row per
// line with no wrapper.
func RenderList[T any](
	w io.Writer,
	format OutputFormat,
	schema tableview.Schema[T],
	rows []T,
	page tableview.Meta,
	meta OutputMetadata,
	summary any,
) error {
	switch format {
	case OutputJSON, OutputYAML:
		items := rows
		if items == nil {
			items = []T{}
		}
		doc := ListOutput[T]{Metadata: meta, Items: items, Page: page, Summary: summary}
		if format == OutputJSON {
			return RenderJSON(w, doc)
		}
		return RenderYAML(w, doc)
	case OutputNDJSON:
		return RenderNDJSON(w, rows)
	default:
		if err := RenderTable(w, schema, rows); err != nil {
			return err
		}
		return renderPageFooter(w, page, meta.Sort)
	}
}

// RenderTable writes rows as an aligned text table using the schema's
// titles and cell formatters.
func RenderTable[T any](w io.Writer, schema tableview.Schema[T], rows []T) error {
	tw := tabwriter.NewWriter(w, 0, 0, tabwriterPadding, ' ', 0)
	cols := schema.Columns()

	titles := make([]string, len(cols))
	rules := make([]string, len(cols))
	for i, c := range cols {
		titles[i] = strings.ToUpper(c.Title)
		rules[i] = strings.Repeat("-", len([]rune(c.Title)))
	}
	if _, err := fmt.Fprintln(tw, strings.Join(titles, "\t")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	if _, err := fmt.Fprintln(tw, strings.Join(rules, "\t")); err != nil {
		return fmt.Errorf("writing separator: %w", err)
	}

	cells := make([]string, len(cols))
	for _, row := range rows {
		for i, c := range cols {
			cells[i] = c.Cell(row)
		}
		if _, err := fmt.Fprintln(tw, strings.Join(cells, "\t")); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	return tw.Flush()
}

func renderPageFooter(w io.Writer, page tableview.Meta, sort string) error {
	if page.TotalItems == 0 {
		_, err := fmt.Fprintln(w, "\nNenhum registro encontrado.")
		return err
	}
	line := fmt.Sprintf("\nPágina %d de %d · %d registros", page.Page, page.TotalPages, page.TotalItems)
	if sort != "" {
		line += " · ordenado por " + sort
	}
	_, err := fmt.Fprintln(w, line)
	return err
}

// RenderMetrics writes the dashboard KPIs as a label/value table.
func RenderMetrics(w io.Writer, m production.Metrics, f *production.Formatter) error {
	tw := tabwriter.NewWriter(w, 0, 0, tabwriterPadding, ' ', 0)
	lines := [][2]string{
		{"Total produzido", f.Kg(m.TotalKg)},
		{"Lotes", f.Int(int64(m.TotalBatches))},
		{"Minutos", f.Int(m.TotalMinutes)},
		{"Kg por lote", f.Kg(m.KgPerBatch)},
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(tw, "%s\t%s\n", l[0], l[1]); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}
	return tw.Flush()
}

// RenderJSON writes v as indented JSON.
func RenderJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

// RenderYAML writes v as YAML.
func RenderYAML(w io.Writer, v any) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	return encoder.Close()
}

// RenderNDJSON writes each row as one JSON line.
func RenderNDJSON[T any](w io.Writer, rows []T) error {
	for _, row := range rows {
		data, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("marshaling row: %w", err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
			return fmt.Errorf("writing NDJSON line: %w", err)
		}
	}
	return nil
}
