package cli

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sgmi/proddash/internal/config"
	"github.com/sgmi/proddash/internal/engine"
	"github.com/sgmi/proddash/internal/production"
	"github.com/sgmi/proddash/internal/tableview"
)

// dateLayouts are the accepted --from/--to formats.
//
//nolint:gochecknoglobals // Fixed layout list.
var dateLayouts = []string{time.DateOnly, "02/01/2006", time.RFC3339}

// rangeFlags select the reporting period.
type rangeFlags struct {
	from string
	to   string
	days int
}

func (f *rangeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.from, "from", "", "start date (YYYY-MM-DD or DD/MM/YYYY)")
	cmd.Flags().StringVar(&f.to, "to", "", "end date (YYYY-MM-DD or DD/MM/YYYY, default today)")
	cmd.Flags().IntVar(&f.days, "days", 0, "days before --to when --from is not set (default dashboard.default_days)")
}

// filter builds a validated filter for productID over the flag range.
func (f *rangeFlags) filter(now time.Time, productID string) (production.Filter, error) {
	end := now.UTC()
	if f.to != "" {
		t, err := ParseDate(f.to)
		if err != nil {
			return production.Filter{}, fmt.Errorf("parsing --to: %w", err)
		}
		end = t
	}

	days := f.days
	if days <= 0 {
		days = config.GetGlobalConfig().Dashboard.DefaultDays
	}
	filter := production.LastDays(end, days)
	if f.from != "" {
		t, err := ParseDate(f.from)
		if err != nil {
			return production.Filter{}, fmt.Errorf("parsing --from: %w", err)
		}
		filter.StartDate = t.Format(time.DateOnly)
	}
	if productID != "" {
		filter.ProductID = productID
	}
	if err := filter.Validate(); err != nil {
		return production.Filter{}, err
	}
	return filter, nil
}

// ParseDate parses a date in any of the accepted layouts.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, fmt.Errorf("unable to parse date %q (use YYYY-MM-DD): %w", s, lastErr)
}

// listFlags control sorting, paging and the output format of list commands.
type listFlags struct {
	sort     string
	page     int
	pageSize int
	output   string
}

func (f *listFlags) register(cmd *cobra.Command, defaultSort string) {
	cmd.Flags().StringVar(&f.sort, "sort", defaultSort, "sort as field or field:asc|desc")
	cmd.Flags().IntVar(&f.page, "page", 1, "page number (1-based)")
	cmd.Flags().IntVar(&f.pageSize, "page-size", 0, "rows per page (default dashboard.page_size)")
	cmd.Flags().StringVarP(&f.output, "output", "o", string(engine.OutputTable),
		"output format: "+strings.Join(engine.OutputFormats(), ", "))
}

// errInvalidPage is returned for --page values below 1.
var errInvalidPage = errors.New("--page must be >= 1")

// parsed validates the flags against schema.
func (f *listFlags) parsed(fields []string) (tableview.SortSpec, tableview.PageSpec, engine.OutputFormat, error) {
	format, err := engine.ParseOutputFormat(f.output)
	if err != nil {
		return tableview.SortSpec{}, tableview.PageSpec{}, "", err
	}

	spec, err := tableview.ParseSort(f.sort)
	if err != nil {
		return tableview.SortSpec{}, tableview.PageSpec{}, "", err
	}
	if !spec.IsZero() && !slices.Contains(fields, spec.Field) {
		return tableview.SortSpec{}, tableview.PageSpec{}, "", fmt.Errorf("%w: %q (valid: %s)",
			tableview.ErrUnknownField, spec.Field, strings.Join(fields, ", "))
	}

	if f.page < 1 {
		return tableview.SortSpec{}, tableview.PageSpec{}, "", errInvalidPage
	}
	size := f.pageSize
	if size == 0 {
		size = config.GetGlobalConfig().Dashboard.PageSize
	}
	page := tableview.PageSpec{Index: f.page - 1, Size: size}
	if err := page.Validate(); err != nil {
		return tableview.SortSpec{}, tableview.PageSpec{}, "", err
	}
	return spec, page, format, nil
}

