package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sgmi/proddash/internal/engine"
	"github.com/sgmi/proddash/internal/tableview"
)

const helpLine = "1-5 ordenar · n/p página · +/- tamanho · f produto · d período · r recarregar · c assistente · q sair"

// View renders the dashboard (Bubble Tea interface).
func (m DashboardModel) View() string {
	if m.state == ViewStateQuitting {
		return ""
	}
	if m.showChat && m.chat != nil {
		return m.chat.View()
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	switch {
	case !m.current.HasData() && m.current.Failed():
		b.WriteString(m.renderError())
	case !m.current.HasData():
		b.WriteString(m.loading.View() + " Carregando dados de produção...")
	default:
		if m.current.Failed() {
			b.WriteString(m.renderError())
			b.WriteString("\n")
		}
		b.WriteString(m.renderBody(*m.current.Data))
	}

	b.WriteString("\n")
	if m.notice != "" {
		b.WriteString(WarningStyle.Render(m.notice) + "\n")
	}
	b.WriteString(SubtleStyle.Render(helpLine))
	return b.String()
}

func (m DashboardModel) renderHeader() string {
	title := HeaderStyle.Render("Produção")
	product := "Todos os produtos"
	if m.current.Data != nil && m.current.Data.Product != "" {
		product = m.current.Data.Product
	}
	period := fmt.Sprintf("%s → %s", m.filter.StartDate, m.filter.EndDate)
	status := ""
	if m.current.Loading && m.current.HasData() {
		status = " " + m.loading.View()
	}
	return title + "  " + LabelStyle.Render(product+" · "+period) + status
}

func (m DashboardModel) renderError() string {
	msg := CriticalStyle.Render(m.current.Err) + "\n" + SubtleStyle.Render("Pressione r para tentar novamente")
	return ErrorBoxStyle.Render(msg)
}

func (m DashboardModel) renderBody(s engine.Snapshot) string {
	half := max((m.width-borderPadding*2)/2, minBarWidth*2)

	daily := BoxStyle.Width(half).Render(LabelStyle.Render("Produção diária (kg)") + "\n" +
		renderDailyBars(s.Daily, half-borderPadding, m.format))
	share := BoxStyle.Width(half).Render(LabelStyle.Render("Participação por produto") + "\n" +
		renderShare(s.Share, half-borderPadding, m.format))

	_, meta, _ := m.rows.View()
	return strings.Join([]string{
		renderCards(s.Metrics, m.format),
		lipgloss.JoinHorizontal(lipgloss.Top, daily, share),
		m.table.View(),
		renderFooter(meta, m.rows.Sort()),
	}, "\n")
}

func renderFooter(meta tableview.Meta, sort tableview.SortSpec) string {
	if meta.TotalItems == 0 {
		return SubtleStyle.Render("Nenhum registro no período")
	}
	return SubtleStyle.Render(fmt.Sprintf("Página %d/%d · %d registros · %d por página · ordenado por %s",
		meta.Page, meta.TotalPages, meta.TotalItems, meta.PageSize, sort))
}
