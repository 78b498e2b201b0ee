package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/sgmi/proddash/internal/chat"
)

const (
	chatInputHeight  = 3
	chatHeaderHeight = 2
	chatCharLimit    = 2000
)

// chatReplyMsg reports that a send finished.
type chatReplyMsg struct{ err error }

// chatClosedMsg asks the dashboard to hide the chat pane.
type chatClosedMsg struct{}

// ChatModel is the assistant conversation pane. Standalone models quit the
// program on esc; embedded ones hand control back to the dashboard.
//
//nolint:recvcheck // Bubble Tea requires value receivers for Init/Update/View interface methods.
type ChatModel struct {
	ctx        context.Context
	session    *chat.Session
	standalone bool

	input    textinput.Model
	spinner  spinner.Model
	viewport viewport.Model
	renderer *glamour.TermRenderer
	width    int
	quitting bool
}

// NewChatModel returns a chat pane over session.
func NewChatModel(ctx context.Context, session *chat.Session, standalone bool) ChatModel {
	ti := textinput.New()
	ti.Placeholder = "Pergunte sobre a produção... (Enter envia, Esc volta)"
	ti.Prompt = "│ "
	ti.CharLimit = chatCharLimit
	ti.PromptStyle = UserStyle
	if standalone {
		ti.Focus()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = BarStyle

	m := ChatModel{
		ctx:        ctx,
		session:    session,
		standalone: standalone,
		input:      ti,
		spinner:    sp,
		viewport:   viewport.New(defaultWidth, defaultHeight-chatInputHeight-chatHeaderHeight),
	}
	m.SetWidth(defaultWidth)
	return m
}

// SetWidth resizes the input and re-creates the markdown renderer.
func (m *ChatModel) SetWidth(width int) {
	m.width = width
	m.input.Width = max(width-borderPadding*2, minBarWidth)
	m.viewport.Width = width
	m.renderer, _ = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(max(width-borderPadding*2, minBarWidth)),
	)
	m.refresh()
}

// Focus gives the input the cursor.
func (m *ChatModel) Focus() tea.Cmd {
	m.refresh()
	return m.input.Focus()
}

// Init focuses the input (Bubble Tea interface).
func (m ChatModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Update handles input, replies and resizes (Bubble Tea interface).
func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetWidth(msg.Width)
		m.viewport.Height = max(msg.Height-chatInputHeight-chatHeaderHeight, minHeight)
		m.refresh()
		return m, nil
	case chatReplyMsg:
		m.refresh()
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.session.Sending() {
			m.refresh()
		}
		return m, cmd
	case tea.KeyMsg:
		switch msg.String() {
		case keyCtrlC:
			m.quitting = true
			return m, tea.Quit
		case keyEsc:
			if m.standalone {
				m.quitting = true
				return m, tea.Quit
			}
			m.input.Blur()
			return m, func() tea.Msg { return chatClosedMsg{} }
		case keyEnter:
			text := m.input.Value()
			if strings.TrimSpace(text) == "" || m.session.Sending() {
				return m, nil
			}
			m.input.Reset()
			return m, tea.Batch(m.send(func(ctx context.Context) error {
				return m.session.Send(ctx, text)
			}), m.spinner.Tick)
		case keyCtrlR:
			if m.session.Sending() {
				return m, nil
			}
			return m, tea.Batch(m.send(m.session.Retry), m.spinner.Tick)
		case keyPgUp, keyPgDown:
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// send runs fn off the update loop and reports its result.
func (m ChatModel) send(fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		err := fn(ctx)
		if errors.Is(err, chat.ErrEmptyMessage) || errors.Is(err, chat.ErrBusy) {
			err = nil
		}
		return chatReplyMsg{err: err}
	}
}

func (m *ChatModel) refresh() {
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
}

func (m ChatModel) renderHistory() string {
	msgs := m.session.Messages()
	if len(msgs) == 0 {
		return SubtleStyle.Render("Nenhuma mensagem ainda.")
	}

	var b strings.Builder
	for _, msg := range msgs {
		switch {
		case msg.Role == chat.RoleUser:
			b.WriteString(UserStyle.Render("Você") + "\n" + msg.Content + "\n\n")
		case msg.Pending:
			b.WriteString(AssistantStyle.Render("Assistente") + "\n" + m.spinner.View() + " " +
				SubtleStyle.Render(msg.Content) + "\n\n")
		case msg.Error:
			b.WriteString(AssistantStyle.Render("Assistente") + "\n" + CriticalStyle.Render(msg.Content) + "\n\n")
		default:
			b.WriteString(AssistantStyle.Render("Assistente") + "\n" + m.markdown(msg.Content) + "\n")
		}
	}
	return b.String()
}

func (m ChatModel) markdown(s string) string {
	if m.renderer == nil {
		return s + "\n"
	}
	out, err := m.renderer.Render(s)
	if err != nil {
		return s + "\n"
	}
	return out
}

// View renders the conversation and the input (Bubble Tea interface).
func (m ChatModel) View() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(HeaderStyle.Render("Assistente de produção") + "\n\n")
	b.WriteString(m.viewport.View() + "\n")
	if errMsg := m.session.Err(); errMsg != "" {
		b.WriteString(CriticalStyle.Render(errMsg) + SubtleStyle.Render(" · ctrl+r tenta novamente") + "\n")
	}
	b.WriteString(m.input.View())
	return b.String()
}
