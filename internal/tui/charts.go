package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sgmi/proddash/internal/production"
)

const barRune = "█"

// renderDailyBars draws one horizontal bar per day, scaled to the largest day.
func renderDailyBars(points []production.DailyPoint, width int, f *production.Formatter) string {
	if len(points) == 0 {
		return SubtleStyle.Render("Sem produção no período")
	}

	var peak float64
	for _, p := range points {
		peak = max(peak, p.Kg)
	}

	labelWidth := len("2006-01-02") + 1
	valueWidth := 14
	barWidth := max(width-labelWidth-valueWidth-borderPadding, minBarWidth)

	lines := make([]string, 0, len(points))
	for _, p := range points {
		n := 0
		if peak > 0 {
			n = int(p.Kg / peak * float64(barWidth))
		}
		if n == 0 && p.Kg > 0 {
			n = 1
		}
		lines = append(lines, fmt.Sprintf("%-*s%s %s",
			labelWidth, p.Date,
			BarStyle.Render(strings.Repeat(barRune, n))+strings.Repeat(" ", barWidth-n),
			ValueStyle.Render(f.Kg(p.Kg))))
	}
	return strings.Join(lines, "\n")
}

// renderShare lists each product's share with a proportional bar.
func renderShare(points []production.SharePoint, width int, f *production.Formatter) string {
	if len(points) == 0 {
		return SubtleStyle.Render("Sem dados")
	}

	nameWidth := 0
	for _, p := range points {
		nameWidth = max(nameWidth, lipgloss.Width(p.Name))
	}
	barWidth := max(width-nameWidth-8-borderPadding, minBarWidth)

	lines := make([]string, 0, len(points))
	for _, p := range points {
		n := p.Percent * barWidth / 100
		pad := strings.Repeat(" ", nameWidth-lipgloss.Width(p.Name))
		lines = append(lines, fmt.Sprintf("%s%s %5s %s",
			p.Name, pad, f.Percent(p.Percent), BarStyle.Render(strings.Repeat(barRune, n))))
	}
	return strings.Join(lines, "\n")
}

// renderCards draws the KPI cards side by side.
func renderCards(m production.Metrics, f *production.Formatter) string {
	cards := []struct{ label, value string }{
		{"Total produzido", f.Kg(m.TotalKg)},
		{"Lotes", f.Int(int64(m.TotalBatches))},
		{"Minutos", f.Int(m.TotalMinutes)},
		{"Kg por lote", f.Kg(m.KgPerBatch)},
	}
	rendered := make([]string, len(cards))
	for i, c := range cards {
		rendered[i] = CardStyle.Render(LabelStyle.Render(c.label) + "\n" + ValueStyle.Render(c.value))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
}
