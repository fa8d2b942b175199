package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/ctor/internal/core"
	"github.com/vovakirdan/ctor/internal/engine"
	"github.com/vovakirdan/ctor/internal/multiplayer"
)

// OnlineStage is the step of the online flow.
type OnlineStage int

const (
	OnlineStageCreating    OnlineStage = iota // Waiting for the coordinator to open a game
	OnlineStageHostWaiting                    // Hosting, waiting for a joiner
	OnlineStageEnterCode                      // Typing a join code
	OnlineStagePlaying                        // In a running game
	OnlineStageEnded                          // Game over or expired
)

// seatedMsg carries the result of a create or join request.
type seatedMsg struct {
	seated multiplayer.Seated
	err    error
}

// OnlineModel plays a game through the in-process coordinator. It is a
// coordinator session like any WebSocket client.
type OnlineModel struct {
	coord    *multiplayer.Coordinator
	session  *multiplayer.ChannelSession
	playerID string

	stage    OnlineStage
	input    textinput.Model
	gameID   string
	code     string
	player   engine.Player
	state    engine.GameState
	deadline time.Time
	now      time.Time

	cursor       engine.Position
	hints        bool
	candidates   map[engine.Position]bool
	flipped      map[engine.Position]bool
	message      string
	opponentAway bool

	screen     *core.Screen
	keys       BoardKeyMap
	help       help.Model
	width      int
	height     int
	quitting   bool
	backToMenu bool
}

// NewOnlineModel registers a new session with coord. With join set the
// model asks for a code; otherwise it hosts a game.
func NewOnlineModel(coord *multiplayer.Coordinator, playerID string, join bool, width, height int) OnlineModel {
	session := multiplayer.NewChannelSession(multiplayer.NewSessionID(), 64)
	coord.Sessions().Register(session)

	input := textinput.New()
	input.Placeholder = "CODE"
	input.CharLimit = coord.Config().CodeLength
	input.Width = 10

	m := OnlineModel{
		coord:    coord,
		session:  session,
		playerID: playerID,
		stage:    OnlineStageCreating,
		input:    input,
		now:      time.Now(),
		screen:   core.NewScreen(width, height-helpHeight),
		keys:     DefaultBoardKeyMap(),
		help:     help.New(),
		width:    width,
		height:   height,
	}
	if join {
		m.stage = OnlineStageEnterCode
		m.input.Focus()
	}
	return m
}

// Init starts listening for events and, when hosting, opens the game.
func (m OnlineModel) Init() tea.Cmd {
	if m.stage == OnlineStageCreating {
		return tea.Batch(m.waitForEvent(), m.createGame())
	}
	return tea.Batch(m.waitForEvent(), textinput.Blink)
}

func (m OnlineModel) createGame() tea.Cmd {
	coord, sid, playerID := m.coord, m.session.ID(), m.playerID
	return func() tea.Msg {
		seated, err := coord.CreateGame(sid, playerID, engine.Size{})
		return seatedMsg{seated: seated, err: err}
	}
}

func (m OnlineModel) joinGame(code string) tea.Cmd {
	coord, sid, playerID := m.coord, m.session.ID(), m.playerID
	return func() tea.Msg {
		seated, err := coord.JoinGame(sid, code, playerID)
		return seatedMsg{seated: seated, err: err}
	}
}

// waitForEvent returns a command that waits for the next coordinator event.
// Exactly one is outstanding at a time.
func (m OnlineModel) waitForEvent() tea.Cmd {
	events, done := m.session.Events(), m.session.Done()
	return func() tea.Msg {
		select {
		case evt := <-events:
			return evt
		case <-done:
			return nil
		}
	}
}

// Update handles messages.
func (m OnlineModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.screen.Resize(msg.Width, msg.Height-helpHeight)
		m.help.Width = msg.Width
		return m, nil
	case ClockMsg:
		m.now = time.Time(msg)
		if m.stage == OnlineStagePlaying {
			return m, clockCmd()
		}
		return m, nil
	case seatedMsg:
		return m.handleSeated(msg)
	case multiplayer.SessionEvent:
		m = m.handleEvent(msg)
		cmd := m.waitForEvent()
		if _, ok := msg.(multiplayer.GameStartedEvent); ok {
			cmd = tea.Batch(cmd, clockCmd())
		}
		return m, cmd
	}

	if m.stage == OnlineStageEnterCode {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m OnlineModel) handleSeated(msg seatedMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.message = errorText(msg.err)
		if m.stage == OnlineStageCreating {
			m.stage = OnlineStageEnded
		}
		return m, nil
	}

	s := msg.seated
	m.gameID = s.GameID
	m.code = s.Code
	m.player = s.Player
	m.state = s.State
	m.cursor = engine.Pos(s.State.Board.Size.Width/2, s.State.Board.Size.Height/2)
	m.message = ""
	if m.stage == OnlineStageCreating {
		m.stage = OnlineStageHostWaiting
	}
	return m, nil
}

func (m OnlineModel) handleEvent(evt multiplayer.SessionEvent) OnlineModel {
	switch e := evt.(type) {
	case multiplayer.GameStartedEvent:
		m.gameID = e.GameID
		m.code = e.Code
		m.player = e.Player
		m.state = e.State
		m.deadline = fromMillis(e.TurnDeadline)
		m.cursor = engine.Pos(e.State.Board.Size.Width/2, e.State.Board.Size.Height/2)
		m.stage = OnlineStagePlaying
		m.input.Blur()
	case multiplayer.GameStateUpdatedEvent:
		m.state = e.State
		m.deadline = fromMillis(e.TurnDeadline)
		m.flipped = flipSet(e.Flips)
		m.candidates = nil
	case multiplayer.AvailableReplacesEvent:
		if e.Player == m.player {
			m.candidates = candidateSet(e.Candidates)
		}
	case multiplayer.GameOverEvent:
		m.state = e.State
		m.stage = OnlineStageEnded
		m.message = overText(e, m.player)
	case multiplayer.PlayerDisconnectedEvent:
		m.opponentAway = true
		m.message = fmt.Sprintf("Opponent disconnected. They have until %s to return.",
			fromMillis(e.Deadline).Format("15:04:05"))
	case multiplayer.PlayerReconnectedEvent:
		if e.Player != m.player {
			m.opponentAway = false
			m.message = "Opponent is back."
		}
	case multiplayer.GameExpiredEvent:
		m.stage = OnlineStageEnded
		m.message = "Game expired (" + e.Reason + ")."
	case multiplayer.ErrorEvent:
		m.message = e.Message
	}
	return m
}

func (m OnlineModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.Leave()
		m.quitting = true
		return m, tea.Quit
	}

	switch m.stage {
	case OnlineStageEnterCode:
		return m.handleCodeKey(msg)
	case OnlineStagePlaying:
		return m.handleBoardKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Leave()
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		m.Leave()
		m.backToMenu = true
	}
	return m, nil
}

func (m OnlineModel) handleCodeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Leave()
		m.backToMenu = true
		return m, nil
	case "enter":
		code := strings.TrimSpace(m.input.Value())
		if code == "" {
			return m, nil
		}
		m.message = "Joining " + strings.ToUpper(code) + "..."
		return m, m.joinGame(code)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m OnlineModel) handleBoardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if cursor, ok := m.keys.moveCursor(msg, m.cursor, m.state.Board.Size); ok {
		m.cursor = cursor
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Leave()
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Back):
		m.Leave()
		m.backToMenu = true
	case key.Matches(msg, m.keys.Hints):
		m.hints = !m.hints
		if m.hints {
			m.coord.Send(multiplayer.GetAvailableReplacesMsg{SessionID: m.session.ID(), GameID: m.gameID})
		}
	case key.Matches(msg, m.keys.Place):
		m.move(multiplayer.MoveRequest{Type: engine.MovePlace, Position: &m.cursor})
	case key.Matches(msg, m.keys.EndTurn):
		m.move(multiplayer.MoveRequest{Type: engine.MoveEndTurn})
	}
	return m, nil
}

// move submits a move. The resulting state arrives as an event.
func (m *OnlineModel) move(req multiplayer.MoveRequest) {
	if req.Position != nil {
		p := *req.Position
		req.Position = &p
	}
	if _, err := m.coord.MakeMove(m.session.ID(), m.gameID, req); err != nil {
		m.message = errorText(err)
		return
	}
	m.message = ""
}

// Leave releases the session. A running game keeps the seat until the
// reconnect timeout.
func (m OnlineModel) Leave() {
	sid := m.session.ID()
	m.coord.Disconnect(sid)
	m.coord.Sessions().Unregister(sid)
	m.session.Close()
}

// View renders the current stage.
func (m OnlineModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	switch m.stage {
	case OnlineStageCreating:
		b.WriteString("\n")
		b.WriteString(centerText("Opening a game...", m.width))
	case OnlineStageHostWaiting:
		b.WriteString("\n")
		b.WriteString(centerText("HOSTING GAME", m.width))
		b.WriteString("\n\n")
		b.WriteString(centerText("Share this code with your opponent:", m.width))
		b.WriteString("\n\n")
		b.WriteString(centerText(fmt.Sprintf("[ %s ]", m.code), m.width))
		b.WriteString("\n\n")
		b.WriteString(centerText("Waiting for player to join...", m.width))
		b.WriteString("\n\n")
		b.WriteString(centerText("Esc: Cancel  |  Q: Quit", m.width))
	case OnlineStageEnterCode:
		b.WriteString("\n")
		b.WriteString(centerText("JOIN GAME", m.width))
		b.WriteString("\n\n")
		b.WriteString(centerText("Enter the game code:", m.width))
		b.WriteString("\n\n")
		b.WriteString(centerText(m.input.View(), m.width))
		b.WriteString("\n\n")
		if m.message != "" {
			b.WriteString(centerText(m.message, m.width))
			b.WriteString("\n\n")
		}
		b.WriteString(centerText("Enter: Join  |  Esc: Back", m.width))
	case OnlineStagePlaying, OnlineStageEnded:
		if m.gameID == "" {
			b.WriteString("\n")
			b.WriteString(centerText(m.message, m.width))
			b.WriteString("\n\n")
			b.WriteString(centerText("Esc: Back  |  Q: Quit", m.width))
			break
		}
		return m.viewBoard()
	}
	return b.String()
}

func (m OnlineModel) viewBoard() string {
	m.screen.Clear()
	frame := boardRect(m.state.Board.Size)
	pos := m.screen.Bounds().Centered(frame.W, frame.H+5)

	title := fmt.Sprintf("C T O R   game %s   you are %s", m.code, sideName(m.player))
	m.screen.DrawTextCentered(pos.Y, title, core.ColorBrightWhite)
	m.screen.DrawTextCentered(pos.Y+1, scoreLine(m.state), core.ColorDefault)

	playing := m.stage == OnlineStagePlaying
	view := boardView{
		board:      m.state.Board,
		cursor:     m.cursor,
		showCursor: playing,
		flipped:    m.flipped,
	}
	if m.hints && playing {
		view.candidates = m.candidates
	}
	drawBoard(m.screen, pos.X, pos.Y+2, view)

	below := pos.Y + frame.H + 3
	switch {
	case !playing:
		m.screen.DrawTextCentered(below, m.message, core.ColorYellow)
		m.screen.DrawTextCentered(below+1, "Esc: Menu  |  Q: Quit", core.ColorGray)
	default:
		m.screen.DrawTextCentered(below, m.turnText(), core.ColorDefault)
		if m.message != "" {
			m.screen.DrawTextCentered(below+1, m.message, core.ColorYellow)
		}
	}
	return RenderScreen(m.screen) + "\n" + m.help.View(m.keys)
}

func (m OnlineModel) turnText() string {
	var who string
	if m.state.CurrentPlayer == m.player {
		who = turnLine(m.state)
	} else {
		who = "Waiting for " + sideName(m.state.CurrentPlayer)
	}
	if m.deadline.IsZero() {
		return who
	}
	left := max(m.deadline.Sub(m.now), 0).Round(time.Second)
	return fmt.Sprintf("%s   ⏱ %d:%02d", who, int(left.Minutes()), int(left.Seconds())%60)
}

// Stage returns the current stage.
func (m OnlineModel) Stage() OnlineStage {
	return m.stage
}

// GameID returns the id of the game the session is seated in, if any.
func (m OnlineModel) GameID() string {
	return m.gameID
}

// IsQuitting returns true if user wants to quit entirely.
func (m OnlineModel) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user wants to go back to menu.
func (m OnlineModel) BackToMenu() bool {
	return m.backToMenu
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}

// errorText renders a coordinator or engine error for the status line.
func errorText(err error) string {
	if engine.ReasonOf(err) != engine.ReasonNone {
		return reasonText(err)
	}
	switch multiplayer.CodeFor(err) {
	case multiplayer.CodeGameNotFound:
		return "No game with that code."
	case multiplayer.CodeInvalidGameCode:
		return "Codes are letters A-Z and digits 2-7."
	case multiplayer.CodeGameFull, multiplayer.CodeGameAlreadyStarted:
		return "That game has already started."
	case multiplayer.CodeGameEnded:
		return "That game has ended."
	}
	return err.Error()
}

func overText(e multiplayer.GameOverEvent, me engine.Player) string {
	var text string
	switch e.Winner {
	case engine.None:
		text = "Draw."
	case me:
		text = "You win!"
	default:
		text = "You lose."
	}
	if e.Reason == multiplayer.EndDisconnect {
		text += " (opponent left)"
		if e.Winner != me {
			text = "Game forfeited."
		}
	}
	return fmt.Sprintf("%s  Red %d : %d Blue", text, e.Scores.Player1, e.Scores.Player2)
}
