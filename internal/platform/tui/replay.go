package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/ctor/internal/core"
	"github.com/vovakirdan/ctor/internal/engine"
	"github.com/vovakirdan/ctor/internal/multiplayer"
	"github.com/vovakirdan/ctor/internal/storage"
)

// playbackSpeeds are the speed steps offered by the viewer.
var playbackSpeeds = []float64{0.25, 0.5, 1, 2, 4, 8}

// ReplayKeyMap defines the key bindings of the replay viewer.
type ReplayKeyMap struct {
	Play   key.Binding
	Next   key.Binding
	Prev   key.Binding
	First  key.Binding
	Last   key.Binding
	Faster key.Binding
	Slower key.Binding
	Back   key.Binding
	Quit   key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ReplayKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.Prev, k.Next, k.Faster, k.Slower, k.Back}
}

// FullHelp returns key bindings for the full help view.
func (k ReplayKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Play, k.Prev, k.Next, k.First, k.Last},
		{k.Faster, k.Slower, k.Back, k.Quit},
	}
}

// DefaultReplayKeyMap returns default key bindings.
func DefaultReplayKeyMap() ReplayKeyMap {
	return ReplayKeyMap{
		Play: key.NewBinding(
			key.WithKeys(" ", "p"),
			key.WithHelp("space", "play/pause"),
		),
		Next: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "next"),
		),
		Prev: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", "prev"),
		),
		First: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g", "start"),
		),
		Last: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G", "end"),
		),
		Faster: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "faster"),
		),
		Slower: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "slower"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "b"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// OpenReplay loads an archived game and builds a replay cursor over it.
func OpenReplay(store *storage.Store, rec multiplayer.GameRecord, interval time.Duration) (*multiplayer.Replay, error) {
	moves, err := store.Moves(rec.ID)
	if err != nil {
		return nil, fmt.Errorf("load moves: %w", err)
	}
	return multiplayer.ReplayRecord(rec, moves, interval)
}

// ReplayModel steps through an archived game.
type ReplayModel struct {
	replay *multiplayer.Replay
	record multiplayer.GameRecord
	seq    int // invalidates scheduled ticks

	screen     *core.Screen
	keys       ReplayKeyMap
	help       help.Model
	width      int
	height     int
	quitting   bool
	backToMenu bool
	standalone bool // Back quits the program
}

// NewReplayModel creates a paused viewer at the empty board.
func NewReplayModel(r *multiplayer.Replay, rec multiplayer.GameRecord, width, height int) ReplayModel {
	return ReplayModel{
		replay: r,
		record: rec,
		screen: core.NewScreen(width, height-helpHeight),
		keys:   DefaultReplayKeyMap(),
		help:   help.New(),
		width:  width,
		height: height,
	}
}

// Init initializes the model.
func (m ReplayModel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m ReplayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.screen.Resize(msg.Width, msg.Height-helpHeight)
		m.help.Width = msg.Width
	case ReplayTickMsg:
		if msg.Seq != m.seq || !m.replay.Playing() {
			return m, nil
		}
		if !m.replay.Next() || m.replay.Done() {
			m.replay.Pause()
			return m, nil
		}
		return m, replayTickCmd(m.replay.Interval(), m.seq)
	}
	return m, nil
}

func (m ReplayModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		m.replay.Pause()
		m.backToMenu = true
		if m.standalone {
			return m, tea.Quit
		}
	case key.Matches(msg, m.keys.Play):
		if m.replay.Playing() {
			m.replay.Pause()
			m.seq++
			return m, nil
		}
		m.replay.Play()
		m.seq++
		return m, replayTickCmd(m.replay.Interval(), m.seq)
	case key.Matches(msg, m.keys.Next):
		m.pause()
		m.replay.Next()
	case key.Matches(msg, m.keys.Prev):
		m.pause()
		m.replay.Prev()
	case key.Matches(msg, m.keys.First):
		m.pause()
		_ = m.replay.Goto(0)
	case key.Matches(msg, m.keys.Last):
		m.pause()
		_ = m.replay.Goto(m.replay.Total())
	case key.Matches(msg, m.keys.Faster):
		return m, m.changeSpeed(1)
	case key.Matches(msg, m.keys.Slower):
		return m, m.changeSpeed(-1)
	}
	return m, nil
}

func (m *ReplayModel) pause() {
	m.replay.Pause()
	m.seq++
}

// changeSpeed moves one step along playbackSpeeds and reschedules a
// running playback at the new interval.
func (m *ReplayModel) changeSpeed(dir int) tea.Cmd {
	cur := m.replay.Speed()
	i := 0
	for j, s := range playbackSpeeds {
		if s <= cur {
			i = j
		}
	}
	i = core.Clamp(i+dir, 0, len(playbackSpeeds)-1)
	if err := m.replay.SetSpeed(playbackSpeeds[i]); err != nil {
		return nil
	}
	if !m.replay.Playing() {
		return nil
	}
	m.seq++
	return replayTickCmd(m.replay.Interval(), m.seq)
}

// View renders the replay at the cursor.
func (m ReplayModel) View() string {
	if m.quitting {
		return ""
	}

	state := m.replay.State()
	m.screen.Clear()
	frame := boardRect(state.Board.Size)
	pos := m.screen.Bounds().Centered(frame.W, frame.H+5)

	title := fmt.Sprintf("REPLAY  %s vs %s  %s", m.record.Player1, m.record.Player2,
		m.record.FinishedAt.Format("Jan 02 15:04"))
	m.screen.DrawTextCentered(pos.Y, title, core.ColorBrightWhite)
	m.screen.DrawTextCentered(pos.Y+1, scoreLine(state), core.ColorDefault)

	view := boardView{board: state.Board}
	last, ok := m.replay.Move()
	if ok && last.Position != nil {
		view.cursor = *last.Position
		view.showCursor = true
	}
	drawBoard(m.screen, pos.X, pos.Y+2, view)

	below := pos.Y + frame.H + 3
	m.screen.DrawTextCentered(below, m.progressLine(), core.ColorDefault)
	if ok {
		m.screen.DrawTextCentered(below+1, moveText(last), colorOf(last.Player))
	}
	if m.replay.Done() && state.GameOver {
		m.screen.DrawTextCentered(below+2, resultLine(state), core.ColorYellow)
	}

	return RenderScreen(m.screen) + "\n" + m.help.View(m.keys)
}

func (m ReplayModel) progressLine() string {
	mode := "paused"
	if m.replay.Playing() {
		mode = "playing"
	}
	return fmt.Sprintf("move %d/%d   %s x%g", m.replay.Index(), m.replay.Total(), mode, m.replay.Speed())
}

// moveText describes a single archived move.
func moveText(mv engine.Move) string {
	side := sideName(mv.Player)
	switch mv.Type {
	case engine.MovePlace:
		return fmt.Sprintf("%s placed at %d,%d", side, mv.Position.X, mv.Position.Y)
	case engine.MoveReplace:
		return fmt.Sprintf("%s captured %d,%d", side, mv.Position.X, mv.Position.Y)
	case engine.MoveEndTurn:
		return side + " ended the turn"
	}
	return side + " " + string(mv.Type)
}

// Replay returns the cursor being viewed.
func (m ReplayModel) Replay() *multiplayer.Replay {
	return m.replay
}

// IsQuitting returns true if user wants to quit entirely.
func (m ReplayModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user wants to go back.
func (m ReplayModel) BackToMenu() bool {
	return m.backToMenu
}

// RunReplay starts a standalone replay viewer.
func RunReplay(r *multiplayer.Replay, rec multiplayer.GameRecord, width, height int) error {
	model := NewReplayModel(r, rec, width, height)
	model.standalone = true

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
