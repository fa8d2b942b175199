package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// MenuChoice identifies a main menu entry.
type MenuChoice int

const (
	ChoiceLocal MenuChoice = iota
	ChoiceHost
	ChoiceJoin
	ChoiceScoreboard
	ChoiceReplay
	ChoiceQuit
)

// MenuItem represents a selectable entry in the menu.
type MenuItem struct {
	Choice MenuChoice
	Title  string
	Hint   string
}

// MenuOptions selects which entries the menu offers.
type MenuOptions struct {
	Online  bool // a coordinator is available
	History bool // an archive is available
}

var menuTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229"))

var menuHintStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

// MenuModel is the Bubble Tea model for the main menu.
type MenuModel struct {
	items    []MenuItem
	cursor   int
	width    int
	height   int
	quitting bool
	selected *MenuItem // Set when user selects an entry
}

// NewMenuModel creates a new menu model.
func NewMenuModel(opts MenuOptions, width, height int) MenuModel {
	items := []MenuItem{{Choice: ChoiceLocal, Title: "Local game", Hint: "two players, one keyboard"}}
	if opts.Online {
		items = append(items,
			MenuItem{Choice: ChoiceHost, Title: "Host online game", Hint: "get a code to share"},
			MenuItem{Choice: ChoiceJoin, Title: "Join online game", Hint: "enter a code"},
		)
	}
	if opts.History {
		items = append(items,
			MenuItem{Choice: ChoiceScoreboard, Title: "Scoreboard", Hint: "recent games and standings"},
			MenuItem{Choice: ChoiceReplay, Title: "Replay", Hint: "watch the last archived game"},
		)
	}
	items = append(items, MenuItem{Choice: ChoiceQuit, Title: "Quit"})

	return MenuModel{
		items:  items,
		width:  width,
		height: height,
	}
}

// Init initializes the menu model.
func (m MenuModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the menu.
func (m MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	}
	return m, nil
}

func (m MenuModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch MapKeyToMenuAction(msg) {
	case MenuActionQuit:
		m.quitting = true
		return m, tea.Quit
	case MenuActionUp:
		if m.cursor > 0 {
			m.cursor--
		}
	case MenuActionDown:
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case MenuActionSelect:
		selected := m.items[m.cursor]
		if selected.Choice == ChoiceQuit {
			m.quitting = true
			return m, tea.Quit
		}
		m.selected = &selected
		return m, tea.Quit // Exit menu to open the entry
	}
	return m, nil
}

// View renders the menu.
func (m MenuModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(menuTitleStyle.Render(centerText("  C T O R  ", m.width)))
	b.WriteString("\n\n")
	b.WriteString(centerText("Capture the torus", m.width))
	b.WriteString("\n\n")

	for i, item := range m.items {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		b.WriteString(centerText(fmt.Sprintf("%s%-18s", cursor, item.Title), m.width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if hint := m.items[m.cursor].Hint; hint != "" {
		b.WriteString(menuHintStyle.Render(centerText(hint, m.width)))
	}
	b.WriteString("\n\n")
	b.WriteString(centerText("Up/Down: Navigate  |  Enter: Select  |  Q: Quit", m.width))
	b.WriteString("\n")
	return b.String()
}

// Selected returns the selected menu item, or nil if none selected.
func (m MenuModel) Selected() *MenuItem {
	return m.selected
}

// IsQuitting returns true if user requested to quit.
func (m MenuModel) IsQuitting() bool {
	return m.quitting
}

// centerText centers text within given width.
func centerText(text string, width int) string {
	n := lipgloss.Width(text)
	if n >= width {
		return text
	}
	return strings.Repeat(" ", (width-n)/2) + text
}
