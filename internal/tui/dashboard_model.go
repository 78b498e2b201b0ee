package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/sgmi/proddash/internal/chat"
	"github.com/sgmi/proddash/internal/engine"
	"github.com/sgmi/proddash/internal/fetch"
	"github.com/sgmi/proddash/internal/logging"
	"github.com/sgmi/proddash/internal/production"
	"github.com/sgmi/proddash/internal/tableview"
)

// dayRanges are the periods the days key cycles through.
//
//nolint:gochecknoglobals // Fixed option list.
var dayRanges = []int{7, 14, 30}

// DashboardStateMsg carries a fetch controller state into the update loop.
type DashboardStateMsg struct {
	State fetch.State[engine.Snapshot]
}

// DashboardConfig configures NewDashboardModel.
type DashboardConfig struct {
	Filter     production.Filter
	PageSize   int
	Locale     string
	MinLatency time.Duration
	// Chat enables the assistant pane. Nil disables the chat key.
	Chat   *chat.Session
	Logger zerolog.Logger
	// Now is used for date-range changes; defaults to time.Now.
	Now func() time.Time
}

// DashboardModel is the Bubble Tea model for the production dashboard.
//
//nolint:recvcheck // Bubble Tea requires value receivers for Init/Update/View interface methods.
type DashboardModel struct {
	ctx    context.Context
	logger zerolog.Logger
	now    func() time.Time

	// Data
	fetch    *fetch.Controller[engine.Snapshot]
	bridge   *stateBridge[engine.Snapshot]
	unsub    func()
	loader   *loader
	current  fetch.State[engine.Snapshot]
	rows     *tableview.Controller[production.TableRow]
	format   *production.Formatter
	filter   production.Filter
	daysIdx  int
	products []production.Product

	// View
	state    ViewState
	table    table.Model
	loading  *LoadingState
	chat     *ChatModel
	showChat bool
	width    int
	height   int
	notice   string
}

// NewDashboardModel wires a fetch controller over dash and returns the
// model. Call Close once the program exits.
func NewDashboardModel(ctx context.Context, dash *engine.Dashboard, cfg DashboardConfig) DashboardModel {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Filter == (production.Filter{}) {
		cfg.Filter = production.DefaultFilter(cfg.Now())
	}
	format := production.NewFormatter(cfg.Locale)
	logger := logging.ComponentLogger(cfg.Logger, "tui")

	ld := &loader{dash: dash, filter: cfg.Filter}
	ctrl := fetch.New(ld.Load,
		fetch.WithMinLatency(cfg.MinLatency),
		fetch.WithLogger(cfg.Logger),
		fetch.WithFallbackMessage("Erro ao carregar dados de produção"),
	)
	bridge := newStateBridge[engine.Snapshot]()

	m := DashboardModel{
		ctx:     ctx,
		logger:  logger,
		now:     cfg.Now,
		fetch:   ctrl,
		bridge:  bridge,
		unsub:   ctrl.Subscribe(bridge.push),
		loader:  ld,
		current: ctrl.State(),
		rows: tableview.NewController(
			production.ReportSchema(format),
			tableview.NewComparer(cfg.Locale),
			cfg.PageSize,
			tableview.SortSpec{Field: production.ColDate, Direction: tableview.Desc},
		),
		format:  format,
		filter:  cfg.Filter,
		state:   ViewStateLoading,
		loading: NewLoadingState(),
		width:   defaultWidth,
		height:  defaultHeight,
	}
	if cfg.Chat != nil {
		cm := NewChatModel(ctx, cfg.Chat, false)
		m.chat = &cm
	}
	m.table = m.buildTable()
	return m
}

// Init starts the first fetch cycle, the spinner and the state listener.
func (m DashboardModel) Init() tea.Cmd {
	m.fetch.Observe(m.ctx, m.filter.Key())
	return tea.Batch(m.loading.Init(), m.waitForState())
}

// Close stops the fetch controller and waits for in-flight loads.
func (m DashboardModel) Close() {
	if m.unsub != nil {
		m.unsub()
	}
	m.fetch.Close()
}

// waitForState blocks until the controller commits a new state.
func (m DashboardModel) waitForState() tea.Cmd {
	ch := m.bridge.ch
	return func() tea.Msg {
		select {
		case s := <-ch:
			return DashboardStateMsg{State: s}
		case <-m.ctx.Done():
			return nil
		}
	}
}

// Update handles messages and updates the model state (Bubble Tea interface).
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.chat != nil {
			m.chat.SetWidth(msg.Width)
		}
		m.table = m.buildTable()
		return m, nil
	case DashboardStateMsg:
		m.applyState(msg.State)
		return m, m.waitForState()
	case chatClosedMsg:
		m.showChat = false
		return m, nil
	case chatReplyMsg:
		if m.chat == nil {
			return m, nil
		}
		return m, m.updateChat(msg)
	case spinner.TickMsg:
		cmds := []tea.Cmd{m.loading.Update(msg)}
		if m.chat != nil {
			cmds = append(cmds, m.updateChat(msg))
		}
		return m, tea.Batch(cmds...)
	}

	if m.showChat && m.chat != nil {
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == keyCtrlC {
			m.state = ViewStateQuitting
			return m, tea.Quit
		}
		return m, m.updateChat(msg)
	}

	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		return m.handleKeypress(keyMsg)
	}
	return m, m.loading.Update(msg)
}

func (m *DashboardModel) updateChat(msg tea.Msg) tea.Cmd {
	next, cmd := m.chat.Update(msg)
	cm := next.(ChatModel)
	m.chat = &cm
	return cmd
}

func (m DashboardModel) handleKeypress(keyMsg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := keyMsg.String()
	switch key {
	case keyQuit, keyCtrlC:
		m.state = ViewStateQuitting
		return m, tea.Quit
	case keyRetry:
		return m, m.retry()
	case keyNext, keyPgDown:
		m.rows.NextPage()
	case keyPrev, keyPgUp:
		m.rows.PrevPage()
	case keyGrow:
		m.resizePage(1)
	case keyShrink:
		m.resizePage(-1)
	case keyFilter:
		m.cycleProduct()
	case keyDays:
		m.cycleDays()
	case keyChat:
		if m.chat != nil {
			m.showChat = true
			return m, m.chat.Focus()
		}
		return m, nil
	default:
		if idx := indexOf(sortKeys, key); idx >= 0 {
			m.sortColumn(idx)
			break
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(keyMsg)
		return m, cmd
	}
	m.table = m.buildTable()
	return m, nil
}

// retry re-runs the fetch in the background of the update loop; the result
// arrives through the state listener.
func (m DashboardModel) retry() tea.Cmd {
	ctrl, ctx := m.fetch, m.ctx
	return func() tea.Msg {
		ctrl.Retry(ctx)
		return nil
	}
}

func (m *DashboardModel) applyState(s fetch.State[engine.Snapshot]) {
	m.current = s
	switch {
	case s.Loading:
		m.state = ViewStateLoading
	case s.Failed():
		m.state = ViewStateError
	default:
		m.state = ViewStateList
	}
	if s.Data != nil {
		m.rows.SetRows(s.Data.Rows)
		m.products = s.Data.Products
	}
	m.table = m.buildTable()
}

// sortColumn sorts by the idx-th column in header order.
func (m *DashboardModel) sortColumn(idx int) {
	cols := m.rows.Schema().Columns()
	if idx >= len(cols) {
		return
	}
	if err := m.rows.SortBy(cols[idx].Name); err != nil {
		m.notice = err.Error()
	}
}

// resizePage steps the page size; changing it returns to the first page.
func (m *DashboardModel) resizePage(dir int) {
	steps := []int{5, 10, 20, 50, 100}
	cur := m.rows.Page().Size
	next := cur
	if dir > 0 {
		for _, s := range steps {
			if s > cur {
				next = s
				break
			}
		}
	} else {
		for i := len(steps) - 1; i >= 0; i-- {
			if steps[i] < cur {
				next = steps[i]
				break
			}
		}
	}
	if next == cur {
		return
	}
	if err := m.rows.SetPageSize(next); err != nil {
		m.notice = err.Error()
	}
}

// cycleProduct moves the product filter to the next active product, then
// back to all products.
func (m *DashboardModel) cycleProduct() {
	next := production.AllProducts
	if m.filter.AllSelected() {
		if len(m.products) > 0 {
			next = m.products[0].ID
		}
	} else {
		for i, p := range m.products {
			if p.ID == m.filter.ProductID && i+1 < len(m.products) {
				next = m.products[i+1].ID
				break
			}
		}
	}
	m.filter.ProductID = next
	m.observeFilter()
}

// cycleDays switches the period between the preset day ranges, ending today.
func (m *DashboardModel) cycleDays() {
	m.daysIdx = (m.daysIdx + 1) % len(dayRanges)
	product := m.filter.ProductID
	m.filter = production.LastDays(m.now(), dayRanges[m.daysIdx])
	m.filter.ProductID = product
	m.observeFilter()
}

func (m *DashboardModel) observeFilter() {
	m.loader.SetFilter(m.filter)
	if m.fetch.Observe(m.ctx, m.filter.Key()) {
		m.logger.Debug().Ctx(m.ctx).Str("filter", m.filter.String()).Msg("filter changed")
	}
}

// buildTable renders the current page into a bubbles table.
func (m *DashboardModel) buildTable() table.Model {
	schema := m.rows.Schema()
	sort := m.rows.Sort()

	cols := schema.Columns()
	columns := make([]table.Column, len(cols))
	for i, c := range cols {
		title := fmt.Sprintf("%d %s", i+1, c.Title)
		if sort.Field == c.Name {
			title += sortArrow(sort)
		}
		columns[i] = table.Column{Title: title, Width: c.Width + 2}
	}

	page, _, err := m.rows.View()
	if err != nil {
		m.notice = err.Error()
	}
	rows := make([]table.Row, len(page))
	for i, r := range page {
		row := make(table.Row, len(cols))
		for j, c := range cols {
			row[j] = c.Cell(r)
		}
		rows[i] = row
	}

	height := max(m.height-chromeHeight, minHeight)
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(min(height, max(len(rows), 1)+1)),
	)
	s := table.DefaultStyles()
	s.Header = TableHeaderStyle
	s.Selected = TableSelectedStyle
	t.SetStyles(s)
	return t
}

func sortArrow(s tableview.SortSpec) string {
	if s.Direction == tableview.Desc {
		return " ▼"
	}
	return " ▲"
}

func indexOf(keys, key string) int {
	if len(key) != 1 {
		return -1
	}
	for i := range len(keys) {
		if keys[i] == key[0] {
			return i
		}
	}
	return -1
}

// State returns the current view state.
func (m DashboardModel) State() ViewState { return m.state }

// Filter returns the active filter.
func (m DashboardModel) Filter() production.Filter { return m.filter }
