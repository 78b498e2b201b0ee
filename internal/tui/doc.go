// Package tui implements the interactive production dashboard and the
// assistant chat with Bubble Tea.
//
// The dashboard model owns a fetch controller over engine.Dashboard.
// Controller states reach the update loop through a one-slot bridge that
// keeps only the newest state, so a slow terminal never blocks a load.
// The report table is a tableview.Controller rendered into a bubbles table.
package tui
