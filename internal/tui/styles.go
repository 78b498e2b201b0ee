package tui

import "github.com/charmbracelet/lipgloss"

// Layout defaults.
const (
	defaultWidth  = 100
	defaultHeight = 32
	borderPadding = 2
	minHeight     = 5
	minBarWidth   = 10
	chromeHeight  = 18
)

// Colors.
const (
	colorPrimary = lipgloss.Color("39")
	colorAccent  = lipgloss.Color("214")
	colorSubtle  = lipgloss.Color("241")
	colorOK      = lipgloss.Color("42")
	colorWarn    = lipgloss.Color("220")
	colorError   = lipgloss.Color("196")
	colorWhite   = lipgloss.Color("255")
)

//nolint:gochecknoglobals // Shared lipgloss styles.
var (
	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)

	LabelStyle = lipgloss.NewStyle().Foreground(colorSubtle)

	ValueStyle = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)

	SubtleStyle = lipgloss.NewStyle().Foreground(colorSubtle)

	InfoStyle = lipgloss.NewStyle().Foreground(colorPrimary)

	OKStyle = lipgloss.NewStyle().Foreground(colorOK)

	WarningStyle = lipgloss.NewStyle().Foreground(colorWarn)

	CriticalStyle = lipgloss.NewStyle().Bold(true).Foreground(colorError)

	BarStyle = lipgloss.NewStyle().Foreground(colorAccent)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(0, 1)

	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 1)

	ErrorBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorError).
			Padding(0, 1)

	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorPrimary).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(colorSubtle)

	TableSelectedStyle = lipgloss.NewStyle().
				Foreground(colorWhite).
				Background(lipgloss.Color("24"))

	UserStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)

	AssistantStyle = lipgloss.NewStyle().Bold(true).Foreground(colorPrimary)
)
