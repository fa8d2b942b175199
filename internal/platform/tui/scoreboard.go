package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/ctor/internal/engine"
	"github.com/vovakirdan/ctor/internal/multiplayer"
	"github.com/vovakirdan/ctor/internal/storage"
)

// Scoreboard layout constants
const (
	minWidthForSidebar = 80  // Minimum width to show the view list sidebar
	sidebarWidth       = 20  // Width of the view list sidebar
	maxRows            = 100 // Max rows to load per view
)

// ScoreboardView is a page of the scoreboard.
type ScoreboardView int

const (
	ViewRecent ScoreboardView = iota
	ViewStandings
)

var scoreboardViews = []struct {
	view  ScoreboardView
	title string
}{
	{ViewRecent, "Recent games"},
	{ViewStandings, "Standings"},
}

// ScoreboardKeyMap defines the key bindings for the scoreboard.
type ScoreboardKeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Select   key.Binding
	NextView key.Binding
	PrevView key.Binding
	Back     key.Binding
	Quit     key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ScoreboardKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Select, k.NextView, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k ScoreboardKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select},
		{k.NextView, k.PrevView, k.Back, k.Quit},
	}
}

// DefaultScoreboardKeyMap returns default key bindings.
func DefaultScoreboardKeyMap() ScoreboardKeyMap {
	return ScoreboardKeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("up/k", "scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("down/j", "scroll down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "replay"),
		),
		NextView: key.NewBinding(
			key.WithKeys("tab", "right", "l"),
			key.WithHelp("tab", "next view"),
		),
		PrevView: key.NewBinding(
			key.WithKeys("shift+tab", "left", "h"),
			key.WithHelp("S-tab", "prev view"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc/b", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ScoreboardModel shows archived games and player standings.
type ScoreboardModel struct {
	store       *storage.Store
	view        int // index into scoreboardViews
	games       []multiplayer.GameRecord
	standings   []storage.Standing
	loadErr     error
	table       table.Model
	help        help.Model
	keys        ScoreboardKeyMap
	width       int
	height      int
	quitting    bool
	goingBack   bool
	selected    *multiplayer.GameRecord // Set when a game is picked for replay
	showSidebar bool
}

// NewScoreboardModel creates a new scoreboard model.
func NewScoreboardModel(store *storage.Store, width, height int) ScoreboardModel {
	h := help.New()
	h.ShowAll = false

	m := ScoreboardModel{
		store:       store,
		keys:        DefaultScoreboardKeyMap(),
		help:        h,
		width:       width,
		height:      height,
		showSidebar: width >= minWidthForSidebar,
	}
	m.load()
	m.table = m.createTable()
	m.updateTableRows()
	return m
}

func (m *ScoreboardModel) load() {
	if m.store == nil {
		return
	}
	games, err := m.store.RecentGames(maxRows)
	if err != nil {
		m.loadErr = err
		return
	}
	standings, err := m.store.Standings(maxRows)
	if err != nil {
		m.loadErr = err
		return
	}
	m.games = games
	m.standings = standings
}

func (m ScoreboardModel) current() ScoreboardView {
	return scoreboardViews[m.view].view
}

// columns returns the columns of the current view sized to the window.
func (m ScoreboardModel) columns() []table.Column {
	tableWidth := m.width - 8 // Margins and border
	if m.showSidebar {
		tableWidth -= sidebarWidth + 3
	}

	if m.current() == ViewStandings {
		name := max(tableWidth-4*8, 12)
		return []table.Column{
			{Title: "Player", Width: min(name, 24)},
			{Title: "Games", Width: 6},
			{Title: "Wins", Width: 6},
			{Title: "Losses", Width: 6},
			{Title: "Draws", Width: 6},
		}
	}

	name := max((tableWidth-6-8-12)/2, 8)
	return []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Red", Width: min(name, 16)},
		{Title: "Blue", Width: min(name, 16)},
		{Title: "Score", Width: 8},
		{Title: "Result", Width: 10},
	}
}

// createTable creates a new table with the current view's columns.
func (m ScoreboardModel) createTable() table.Model {
	t := table.New(
		table.WithColumns(m.columns()),
		table.WithFocused(true),
		table.WithHeight(max(m.height-8, 3)), // Leave room for header, help, and margins
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return t
}

// updateTableRows fills the table with the current view.
func (m *ScoreboardModel) updateTableRows() {
	var rows []table.Row
	switch m.current() {
	case ViewRecent:
		rows = make([]table.Row, len(m.games))
		for i, g := range m.games {
			rows[i] = table.Row{
				g.FinishedAt.Format("Jan 02 15:04"),
				g.Player1,
				g.Player2,
				fmt.Sprintf("%d:%d", g.Scores.Player1, g.Scores.Player2),
				resultOf(g),
			}
		}
	case ViewStandings:
		rows = make([]table.Row, len(m.standings))
		for i, s := range m.standings {
			rows[i] = table.Row{
				s.PlayerID,
				fmt.Sprintf("%d", s.Games),
				fmt.Sprintf("%d", s.Wins),
				fmt.Sprintf("%d", s.Losses),
				fmt.Sprintf("%d", s.Draws),
			}
		}
	}
	m.table.SetRows(rows)
	m.table.GotoTop()
}

func resultOf(g multiplayer.GameRecord) string {
	switch {
	case g.EndReason == multiplayer.EndDisconnect:
		return sideName(g.Winner) + " (ff)"
	case g.Winner == engine.None:
		return "Draw"
	}
	return sideName(g.Winner)
}

func (m *ScoreboardModel) switchView(dir int) {
	m.view = (m.view + dir + len(scoreboardViews)) % len(scoreboardViews)
	m.table = m.createTable()
	m.updateTableRows()
}

// Init initializes the scoreboard model.
func (m ScoreboardModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the scoreboard.
func (m ScoreboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.Back):
			m.goingBack = true
			return m, tea.Quit

		case key.Matches(msg, m.keys.NextView):
			m.switchView(1)
			return m, nil

		case key.Matches(msg, m.keys.PrevView):
			m.switchView(-1)
			return m, nil

		case key.Matches(msg, m.keys.Select):
			if m.current() == ViewRecent && len(m.games) > 0 {
				rec := m.games[m.table.Cursor()]
				m.selected = &rec
				return m, tea.Quit
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.showSidebar = m.width >= minWidthForSidebar
		m.table = m.createTable()
		m.updateTableRows()
		m.help.Width = msg.Width
		return m, nil
	}

	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the scoreboard.
func (m ScoreboardModel) View() string {
	if m.quitting || m.goingBack {
		return ""
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		MarginBottom(1)
	title := "SCOREBOARD - " + scoreboardViews[m.view].title
	b.WriteString(titleStyle.Render(centerText(title, m.width)))
	b.WriteString("\n\n")

	if m.showSidebar {
		b.WriteString(m.renderWideLayout())
	} else {
		b.WriteString(m.renderNarrowLayout())
	}

	b.WriteString("\n")
	helpStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	b.WriteString(helpStyle.Render(m.help.View(m.keys)))

	return b.String()
}

// renderWideLayout renders the view list next to the table.
func (m ScoreboardModel) renderWideLayout() string {
	sidebarStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(sidebarWidth).
		Padding(0, 1)

	var sidebar strings.Builder
	sidebar.WriteString("History\n")
	sidebar.WriteString(strings.Repeat("-", sidebarWidth-4))
	sidebar.WriteString("\n")
	for i, v := range scoreboardViews {
		cursor := "  "
		style := lipgloss.NewStyle()
		if i == m.view {
			cursor = "> "
			style = style.Bold(true).Foreground(lipgloss.Color("229"))
		}
		sidebar.WriteString(style.Render(cursor + v.title))
		sidebar.WriteString("\n")
	}

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)

	return lipgloss.JoinHorizontal(lipgloss.Top,
		sidebarStyle.Render(sidebar.String()), "  ", tableStyle.Render(m.renderTableContent()))
}

// renderNarrowLayout renders view tabs above the table.
func (m ScoreboardModel) renderNarrowLayout() string {
	var b strings.Builder

	tabStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
	activeTabStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Padding(0, 1)

	tabs := make([]string, len(scoreboardViews))
	for i, v := range scoreboardViews {
		if i == m.view {
			tabs[i] = activeTabStyle.Render(v.title)
		} else {
			tabs[i] = tabStyle.Render(" " + v.title + " ")
		}
	}
	b.WriteString(centerText(strings.Join(tabs, " "), m.width))
	b.WriteString("\n\n")

	tableStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1)
	b.WriteString(tableStyle.Render(m.renderTableContent()))

	return b.String()
}

// renderTableContent renders the table or an empty message.
func (m ScoreboardModel) renderTableContent() string {
	emptyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Italic(true).
		Padding(2, 4)

	switch {
	case m.store == nil:
		return emptyStyle.Render("No history database.")
	case m.loadErr != nil:
		return emptyStyle.Render("Could not load history:\n" + m.loadErr.Error())
	case m.current() == ViewRecent && len(m.games) == 0,
		m.current() == ViewStandings && len(m.standings) == 0:
		return emptyStyle.Render("No games archived yet.\nFinish a game to fill the board!")
	}
	return m.table.View()
}

// Selected returns the game picked for replay, or nil.
func (m ScoreboardModel) Selected() *multiplayer.GameRecord {
	return m.selected
}

// IsGoingBack returns true if user wants to go back to menu.
func (m ScoreboardModel) IsGoingBack() bool {
	return m.goingBack
}

// IsQuitting returns true if user wants to quit entirely.
func (m ScoreboardModel) IsQuitting() bool {
	return m.quitting
}

// RunScoreboard runs the scoreboard screen. It returns the game picked
// for replay, if any.
func RunScoreboard(store *storage.Store, width, height int) (*multiplayer.GameRecord, error) {
	model := NewScoreboardModel(store, width, height)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}

	m, ok := finalModel.(ScoreboardModel)
	if !ok {
		return nil, nil
	}
	return m.Selected(), nil
}
