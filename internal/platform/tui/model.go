package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/ctor/internal/core"
	"github.com/vovakirdan/ctor/internal/engine"
	"github.com/vovakirdan/ctor/internal/multiplayer"
	"github.com/vovakirdan/ctor/internal/storage"
)

// LocalOptions configures a hot-seat game.
type LocalOptions struct {
	Size        engine.Size
	Rules       engine.Rules
	AutoEndTurn bool
	// Players are the ids recorded in history for seat 1 and 2.
	Players [2]string
}

// LocalModel is a hot-seat game: both players share one keyboard.
type LocalModel struct {
	opts   LocalOptions
	engine *engine.Engine
	store  *storage.Store // Optional, can be nil
	logger *log.Logger

	state     engine.GameState
	moves     []engine.Move
	cursor    engine.Position
	hints     bool
	flipped   map[engine.Position]bool
	message   string
	startedAt time.Time
	saved     bool

	screen     *core.Screen
	keys       BoardKeyMap
	help       help.Model
	width      int
	height     int
	quitting   bool
	backToMenu bool
	standalone bool // Back quits the program
}

// NewLocalModel creates a hot-seat game. store may be nil, in which case
// finished games are not archived.
func NewLocalModel(opts LocalOptions, store *storage.Store, logger *log.Logger, width, height int) LocalModel {
	if opts.Players[0] == "" {
		opts.Players[0] = "local-red"
	}
	if opts.Players[1] == "" {
		opts.Players[1] = "local-blue"
	}
	if logger == nil {
		logger = log.Default()
	}
	m := LocalModel{
		opts:   opts,
		engine: engine.New(opts.Rules),
		store:  store,
		logger: logger,
		screen: core.NewScreen(width, height-helpHeight),
		keys:   DefaultBoardKeyMap(),
		help:   help.New(),
		width:  width,
		height: height,
	}
	m.reset()
	return m
}

func (m *LocalModel) reset() {
	state, err := m.engine.CreateInitialState(m.opts.Size)
	if err != nil {
		// Sizes are validated by the config layer; fall back to the default.
		state, _ = m.engine.CreateInitialState(engine.DefaultSize())
	}
	m.state = state
	m.moves = nil
	m.cursor = engine.Pos(state.Board.Size.Width/2, state.Board.Size.Height/2)
	m.flipped = nil
	m.message = ""
	m.startedAt = time.Now()
	m.saved = false
}

// Init initializes the model.
func (m LocalModel) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model state.
func (m LocalModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.screen.Resize(msg.Width, msg.Height-helpHeight)
		m.help.Width = msg.Width
	}
	return m, nil
}

func (m LocalModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if cursor, ok := m.keys.moveCursor(msg, m.cursor, m.state.Board.Size); ok {
		m.cursor = cursor
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		m.backToMenu = true
		if m.standalone {
			return m, tea.Quit
		}
		return m, nil
	case key.Matches(msg, m.keys.Restart):
		m.reset()
	case key.Matches(msg, m.keys.Hints):
		m.hints = !m.hints
	case key.Matches(msg, m.keys.Place):
		m.play(engine.PlaceAt(m.state.CurrentPlayer, m.cursor.X, m.cursor.Y))
	case key.Matches(msg, m.keys.EndTurn):
		m.play(engine.EndTurn(m.state.CurrentPlayer))
	}
	return m, nil
}

// play applies a move for the player to move, ending the turn on their
// behalf when the budget is spent and auto end-turn is on.
func (m *LocalModel) play(move engine.Move) {
	player := m.state.CurrentPlayer
	move.Timestamp = time.Now().UnixMilli()

	out, err := m.engine.Apply(m.state, move, player)
	if err != nil {
		m.message = reasonText(err)
		return
	}
	if !out.Converged {
		m.logger.Warn("capture resolution did not converge", "flips", len(out.Flips))
	}
	m.moves = append(m.moves, normalized(out.State.Board.Size, move))
	m.state = out.State
	m.flipped = flipSet(out.Flips)
	m.message = ""

	if m.opts.AutoEndTurn && move.Type != engine.MoveEndTurn && out.TurnComplete() {
		end := engine.EndTurn(player)
		end.Timestamp = move.Timestamp
		if state, err := m.engine.ApplyMove(m.state, end, player); err == nil {
			m.moves = append(m.moves, end)
			m.state = state
		}
	}

	if m.state.GameOver {
		m.archive()
	}
}

func normalized(size engine.Size, m engine.Move) engine.Move {
	if m.Position != nil {
		p := size.Normalize(*m.Position)
		m.Position = &p
	}
	return m
}

// archive stores the finished game once.
func (m *LocalModel) archive() {
	if m.saved || m.store == nil {
		return
	}
	m.saved = true

	now := time.Now()
	rec := multiplayer.GameRecord{
		ID:         uuid.NewString(),
		Player1:    m.opts.Players[0],
		Player2:    m.opts.Players[1],
		Size:       m.state.Board.Size,
		Rules:      m.engine.Rules(),
		Status:     multiplayer.StatusFinished,
		Scores:     m.state.Scores,
		Winner:     m.state.Winner,
		EndReason:  multiplayer.EndCompleted,
		MoveCount:  m.state.MoveCount,
		CreatedAt:  m.startedAt,
		StartedAt:  m.startedAt,
		FinishedAt: now,
		Duration:   now.Sub(m.startedAt),
	}
	if err := m.store.SaveGameWithMoves(rec, m.moves); err != nil {
		m.logger.Warn("could not archive local game", "error", err)
		m.message = "Game could not be saved."
	}
}

// View renders the current state to a string for display.
func (m LocalModel) View() string {
	if m.quitting {
		return ""
	}

	m.screen.Clear()
	frame := boardRect(m.state.Board.Size)
	pos := m.screen.Bounds().Centered(frame.W, frame.H+4)

	m.screen.DrawTextCentered(pos.Y, "C T O R", core.ColorBrightWhite)
	m.screen.DrawTextCentered(pos.Y+1, scoreLine(m.state), core.ColorDefault)

	view := boardView{
		board:      m.state.Board,
		cursor:     m.cursor,
		showCursor: !m.state.GameOver,
		flipped:    m.flipped,
	}
	if m.hints && !m.state.GameOver {
		view.candidates = candidateSet(m.engine.AvailableReplaces(m.state, m.state.CurrentPlayer))
	}
	drawBoard(m.screen, pos.X, pos.Y+2, view)

	status := m.message
	switch {
	case m.state.GameOver:
		status = resultLine(m.state) + "  Press r for a new game."
	case status == "":
		status = turnLine(m.state)
	}
	m.screen.DrawTextCentered(pos.Y+frame.H+3, status, core.ColorDefault)

	return RenderScreen(m.screen) + "\n" + m.help.View(m.keys)
}

// turnLine describes whose turn it is and what is left of it.
func turnLine(state engine.GameState) string {
	side := sideName(state.CurrentPlayer)
	switch left := state.CurrentTurn.PlaceOperationsLeft; left {
	case 0:
		return side + " to move: end the turn (e)"
	case 1:
		return side + " to move: 1 placement left"
	default:
		return fmt.Sprintf("%s to move: %d placements left", side, left)
	}
}

// State returns the current game state.
func (m LocalModel) State() engine.GameState {
	return m.state
}

// Moves returns the moves played so far.
func (m LocalModel) Moves() []engine.Move {
	return m.moves
}

// IsQuitting returns true if user requested to quit entirely.
func (m LocalModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m LocalModel) BackToMenu() bool {
	return m.backToMenu
}

// RunLocal starts a standalone hot-seat game.
func RunLocal(opts LocalOptions, store *storage.Store, logger *log.Logger, width, height int) error {
	model := NewLocalModel(opts, store, logger, width, height)
	model.standalone = true

	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
