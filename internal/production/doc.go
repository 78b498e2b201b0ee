// Package production holds the production-tracking domain: products,
// sessions, planned reports and totals, the dashboard filter, the
// session-based chart aggregations and the input validation rules shared
// by the CLI and the TUI.
package production
