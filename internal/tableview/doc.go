// Package tableview sorts and paginates in-memory rows for display.
//
// The package is UI agnostic and has three parts:
//   - SortSpec: single-column ordering with an ascending/descending toggle
//   - PageSpec: page windowing over the sorted rows
//   - Schema: the named, typed columns a caller exposes for sorting
//
// View combines them: it stable-sorts a copy of the rows and returns one
// page. The input slice is never mutated, and a page past the end is
// empty rather than wrapped or clamped.
package tableview
