package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/ctor/internal/config"
	"github.com/vovakirdan/ctor/internal/multiplayer"
	"github.com/vovakirdan/ctor/internal/storage"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.ctor/host_key.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration
}

// SSHServerConfigFrom extracts the SSH settings from cfg.
func SSHServerConfigFrom(cfg config.Config) SSHServerConfig {
	return SSHServerConfig{
		Address:     cfg.Server.SSHAddr,
		HostKeyPath: cfg.Server.HostKeyPath,
		IdleTimeout: cfg.Server.IdleTimeout,
	}
}

// SessionDeps are the collaborators shared by every terminal session.
type SessionDeps struct {
	Coord          *multiplayer.Coordinator // nil disables online play
	Store          *storage.Store           // nil disables history
	Local          LocalOptions
	ReplayInterval time.Duration
	Logger         *log.Logger
}

// SSHServer wraps a Wish SSH server. Every connection gets its own
// SessionModel; online games go through the shared coordinator.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	deps   SessionDeps
	logger *log.Logger
}

// NewSSHServer creates a new SSH server with the given configuration.
func NewSSHServer(cfg SSHServerConfig, deps SessionDeps) (*SSHServer, error) {
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}
	srv := &SSHServer{
		config: cfg,
		deps:   deps,
		logger: deps.Logger.WithPrefix("ssh"),
	}

	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", err)
		}
		hostKeyPath = filepath.Join(home, ".ctor", "host_key")
	}
	if err := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); err != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", err)
	}

	server, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	model := NewSessionModel(s.deps, sshSession.User(), pty.Window.Width, pty.Window.Height)

	// A dropped connection never reaches the model's own Leave; release
	// the coordinator seat here so the reconnect clock starts.
	go func() {
		<-sshSession.Context().Done()
		model.online.leave()
	}()

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
	}
}

// ListenAndServe serves until Shutdown is called.
func (s *SSHServer) ListenAndServe() error {
	s.logger.Info("starting SSH server", "address", s.config.Address)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

// onlineSlot remembers how to release the online session a terminal
// session currently holds. It is shared by all copies of a SessionModel.
type onlineSlot struct {
	mu      sync.Mutex
	release func()
}

func (o *onlineSlot) set(fn func()) {
	o.mu.Lock()
	o.release = fn
	o.mu.Unlock()
}

func (o *onlineSlot) leave() {
	o.mu.Lock()
	fn := o.release
	o.release = nil
	o.mu.Unlock()
	if fn != nil {
		fn()
	}
}

type sessionScreen int

const (
	screenMenu sessionScreen = iota
	screenLocal
	screenOnline
	screenScoreboard
	screenReplay
)

// SessionModel manages the full terminal flow: menu, then one of the
// local game, online game, scoreboard or replay, then back to the menu.
// This is the top-level model used for SSH sessions and `ctor menu`.
type SessionModel struct {
	deps     SessionDeps
	playerID string
	width    int
	height   int
	screen   sessionScreen
	notice   string

	menu   MenuModel
	local  LocalModel
	online *onlineSlot
	game   OnlineModel
	board  ScoreboardModel
	replay ReplayModel

	quitting bool
}

// NewSessionModel creates a new session model for the given player.
func NewSessionModel(deps SessionDeps, playerID string, width, height int) SessionModel {
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}
	if playerID == "" {
		playerID = "guest"
	}
	return SessionModel{
		deps:     deps,
		playerID: playerID,
		width:    width,
		height:   height,
		online:   &onlineSlot{},
		menu:     NewMenuModel(deps.menuOptions(), width, height),
	}
}

func (d SessionDeps) menuOptions() MenuOptions {
	return MenuOptions{Online: d.Coord != nil, History: d.Store != nil}
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.width = wsm.Width
		m.height = wsm.Height
	}

	switch m.screen {
	case screenLocal:
		return m.updateLocal(msg)
	case screenOnline:
		return m.updateOnline(msg)
	case screenScoreboard:
		return m.updateScoreboard(msg)
	case screenReplay:
		return m.updateReplay(msg)
	}
	return m.updateMenu(msg)
}

// updateMenu handles updates when in menu mode.
func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menuModel, ok := newMenu.(MenuModel); ok {
		m.menu = menuModel
	}

	if m.menu.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}

	selected := m.menu.Selected()
	if selected == nil {
		return m, cmd
	}
	m.notice = ""

	switch selected.Choice {
	case ChoiceLocal:
		m.local = NewLocalModel(m.deps.Local, m.deps.Store, m.deps.Logger, m.width, m.height)
		m.screen = screenLocal
		return m, m.local.Init()

	case ChoiceHost, ChoiceJoin:
		m.game = NewOnlineModel(m.deps.Coord, m.playerID, selected.Choice == ChoiceJoin, m.width, m.height)
		m.online.set(m.game.Leave)
		m.screen = screenOnline
		return m, m.game.Init()

	case ChoiceScoreboard:
		m.board = NewScoreboardModel(m.deps.Store, m.width, m.height)
		m.screen = screenScoreboard
		return m, m.board.Init()

	case ChoiceReplay:
		recent, err := m.deps.Store.RecentGames(1)
		switch {
		case err != nil:
			m.deps.Logger.Warn("could not load recent games", "error", err)
			return m.toMenu("Could not load history.")
		case len(recent) == 0:
			return m.toMenu("No archived games yet.")
		}
		return m.openReplay(recent[0])
	}
	return m.toMenu("")
}

func (m SessionModel) openReplay(rec multiplayer.GameRecord) (tea.Model, tea.Cmd) {
	r, err := OpenReplay(m.deps.Store, rec, m.deps.ReplayInterval)
	if err != nil {
		m.deps.Logger.Warn("could not open replay", "game", rec.ID, "error", err)
		return m.toMenu("Could not open that replay.")
	}
	m.replay = NewReplayModel(r, rec, m.width, m.height)
	m.screen = screenReplay
	return m, m.replay.Init()
}

func (m SessionModel) toMenu(notice string) (tea.Model, tea.Cmd) {
	m.screen = screenMenu
	m.notice = notice
	m.menu = NewMenuModel(m.deps.menuOptions(), m.width, m.height)
	return m, m.menu.Init()
}

func (m SessionModel) updateLocal(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.local.Update(msg)
	if local, ok := newModel.(LocalModel); ok {
		m.local = local
	}
	switch {
	case m.local.IsQuitting():
		m.quitting = true
		return m, tea.Quit
	case m.local.BackToMenu():
		return m.toMenu("")
	}
	return m, cmd
}

func (m SessionModel) updateOnline(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.game.Update(msg)
	if game, ok := newModel.(OnlineModel); ok {
		m.game = game
	}
	switch {
	case m.game.IsQuitting():
		m.online.set(nil)
		m.quitting = true
		return m, tea.Quit
	case m.game.BackToMenu():
		m.online.set(nil)
		return m.toMenu("")
	}
	return m, cmd
}

func (m SessionModel) updateScoreboard(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.board.Update(msg)
	if board, ok := newModel.(ScoreboardModel); ok {
		m.board = board
	}
	switch {
	case m.board.IsQuitting():
		m.quitting = true
		return m, tea.Quit
	case m.board.IsGoingBack():
		return m.toMenu("")
	case m.board.Selected() != nil:
		return m.openReplay(*m.board.Selected())
	}
	return m, cmd
}

func (m SessionModel) updateReplay(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.replay.Update(msg)
	if replay, ok := newModel.(ReplayModel); ok {
		m.replay = replay
	}
	switch {
	case m.replay.IsQuitting():
		m.quitting = true
		return m, tea.Quit
	case m.replay.BackToMenu():
		return m.toMenu("")
	}
	return m, cmd
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.screen {
	case screenLocal:
		return m.local.View()
	case screenOnline:
		return m.game.View()
	case screenScoreboard:
		return m.board.View()
	case screenReplay:
		return m.replay.View()
	}

	view := m.menu.View()
	if m.notice != "" {
		view += "\n" + menuHintStyle.Render(centerText(m.notice, m.width)) + "\n"
	}
	return view
}
