package multiplayer

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/ctor/internal/config"
	"github.com/vovakirdan/ctor/internal/engine"
)

// CoordinatorConfig holds configuration for the coordinator.
type CoordinatorConfig struct {
	Size        engine.Size
	Rules       engine.Rules
	AutoEndTurn bool
	CodeLength  int

	GameTTL          time.Duration // idle live games expire after this
	FinishedTTL      time.Duration // finished games stay readable this long
	TurnTimeout      time.Duration // 0 disables the turn clock
	ReconnectTimeout time.Duration
	MaxGameDuration  time.Duration // 0 disables the cap
	CleanupPeriod    time.Duration
}

// CoordinatorConfigFrom extracts the coordinator settings from cfg.
func CoordinatorConfigFrom(cfg config.Config) CoordinatorConfig {
	return CoordinatorConfig{
		Size:             cfg.BoardSize(),
		Rules:            cfg.EngineRules(),
		AutoEndTurn:      cfg.Rules.AutoEndTurn,
		CodeLength:       cfg.Session.CodeLength,
		GameTTL:          cfg.Session.GameTTL,
		FinishedTTL:      cfg.Session.FinishedTTL,
		TurnTimeout:      cfg.Session.TurnTimeout,
		ReconnectTimeout: cfg.Session.ReconnectTimeout,
		MaxGameDuration:  cfg.Session.MaxGameDuration,
		CleanupPeriod:    cfg.Session.CleanupPeriod,
	}
}

// DefaultCoordinatorConfig returns the settings of the default config file.
func DefaultCoordinatorConfig() CoordinatorConfig {
	return CoordinatorConfigFrom(config.DefaultConfig())
}

// Seated describes a session's seat after create, join or reconnect.
type Seated struct {
	GameID   string
	Code     string
	Player   engine.Player
	PlayerID string
	Token    string
	State    engine.GameState
}

// MoveRequest is a move as submitted by a client. Player may be left zero;
// the seat of the sending session is used.
type MoveRequest struct {
	Type     engine.MoveType  `json:"type"`
	Position *engine.Position `json:"position,omitempty"`
	Player   engine.Player    `json:"player,omitempty"`
}

// Coordinator owns the lifecycle of live games. Every state change runs
// under the store's per-game lock: read, one engine call, write back.
// Events are sent and the archive is written after the lock is released.
type Coordinator struct {
	config   CoordinatorConfig
	engine   *engine.Engine
	store    GameStore
	sessions *SessionRegistry
	archive  Archive // Optional, can be nil
	log      *log.Logger
	now      func() time.Time

	mu          sync.Mutex
	matches     map[string]*match    // gameID -> timers
	sessionGame map[SessionID]string // sessionID -> gameID

	// Message channel for async processing
	msgChan  chan CoordinatorMessage
	done     chan struct{}
	stopOnce sync.Once
}

// NewCoordinator creates a new coordinator. A nil logger discards output.
func NewCoordinator(cfg CoordinatorConfig, store GameStore, sessions *SessionRegistry, logger *log.Logger) *Coordinator {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if cfg.CodeLength < 4 || cfg.CodeLength > 8 {
		cfg.CodeLength = 4
	}
	if cfg.CleanupPeriod <= 0 {
		cfg.CleanupPeriod = 30 * time.Second
	}
	if cfg.Size == (engine.Size{}) {
		cfg.Size = engine.DefaultSize()
	}
	return &Coordinator{
		config:      cfg,
		engine:      engine.New(cfg.Rules),
		store:       store,
		sessions:    sessions,
		log:         logger,
		now:         time.Now,
		matches:     make(map[string]*match),
		sessionGame: make(map[SessionID]string),
		msgChan:     make(chan CoordinatorMessage, 256),
		done:        make(chan struct{}),
	}
}

// SetArchive sets the optional history archive.
func (c *Coordinator) SetArchive(a Archive) {
	c.archive = a
}

// Engine returns the rule engine used for live games.
func (c *Coordinator) Engine() *engine.Engine {
	return c.engine
}

// Config returns the coordinator settings.
func (c *Coordinator) Config() CoordinatorConfig {
	return c.config
}

// Sessions returns the session registry.
func (c *Coordinator) Sessions() *SessionRegistry {
	return c.sessions
}

// Start begins the coordinator's background processing.
func (c *Coordinator) Start() {
	go c.processMessages()
	go c.cleanupLoop()
}

// Stop shuts down the coordinator and its timers.
func (c *Coordinator) Stop() {
	c.stopOnce.Do(func() {
		close(c.done)
		c.mu.Lock()
		for id, m := range c.matches {
			m.stop()
			delete(c.matches, id)
		}
		c.mu.Unlock()
	})
}

// Send sends a message to the coordinator for async processing. Failures
// are reported to the sending session as an ErrorEvent.
func (c *Coordinator) Send(msg CoordinatorMessage) {
	select {
	case c.msgChan <- msg:
	case <-c.done:
	}
}

func (c *Coordinator) processMessages() {
	for {
		select {
		case msg := <-c.msgChan:
			c.handleMessage(msg)
		case <-c.done:
			return
		}
	}
}

func (c *Coordinator) handleMessage(msg CoordinatorMessage) {
	var (
		sid SessionID
		err error
	)
	switch m := msg.(type) {
	case CreateGameMsg:
		sid = m.SessionID
		_, err = c.CreateGame(m.SessionID, m.PlayerID, engine.Size{Width: m.Width, Height: m.Height})
	case JoinGameMsg:
		sid = m.SessionID
		_, err = c.JoinGame(m.SessionID, m.Code, m.PlayerID)
	case MakeMoveMsg:
		sid = m.SessionID
		_, err = c.MakeMove(m.SessionID, m.GameID, m.Move)
	case EndTurnMsg:
		sid = m.SessionID
		_, err = c.EndTurn(m.SessionID, m.GameID)
	case GetAvailableReplacesMsg:
		sid = m.SessionID
		_, err = c.AvailableReplaces(m.SessionID, m.GameID)
	case ReconnectMsg:
		sid = m.SessionID
		_, err = c.Reconnect(m.SessionID, m.Code, m.Token)
	case SessionDisconnectedMsg:
		c.Disconnect(m.SessionID)
	}
	if err != nil {
		c.sessions.Send(sid, NewErrorEvent(err))
	}
}

// CreateGame opens a waiting game with the session in seat 1. Zero size
// fields select the configured board. An empty playerID gets a random id.
func (c *Coordinator) CreateGame(sid SessionID, playerID string, size engine.Size) (Seated, error) {
	if size.Width == 0 {
		size.Width = c.config.Size.Width
	}
	if size.Height == 0 {
		size.Height = c.config.Size.Height
	}
	state, err := c.engine.CreateInitialState(size)
	if err != nil {
		return Seated{}, fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}

	id := uuid.NewString()
	c.mu.Lock()
	if _, busy := c.sessionGame[sid]; busy {
		c.mu.Unlock()
		return Seated{}, ErrAlreadySeated
	}
	code := c.generateUniqueCode()
	c.sessionGame[sid] = id
	c.mu.Unlock()

	if playerID == "" {
		playerID = uuid.NewString()
	}
	now := c.now()
	g := Game{
		ID:        id,
		Code:      code,
		Status:    StatusWaiting,
		State:     state,
		Rules:     c.engine.Rules(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	g.Seats[0] = Seat{PlayerID: playerID, Session: sid, Token: uuid.NewString(), Connected: true}
	if err := c.store.Put(g, c.config.GameTTL); err != nil {
		c.release(sid, id)
		return Seated{}, err
	}

	c.log.Info("game created", "game", id, "code", code, "player", playerID, "size", fmt.Sprintf("%dx%d", size.Width, size.Height))
	c.sessions.Send(sid, GameCreatedEvent{
		GameID:   id,
		Code:     code,
		Player:   engine.Player1,
		PlayerID: playerID,
		Token:    g.Seats[0].Token,
		Size:     size,
	})
	return seatedAs(g, engine.Player1), nil
}

// JoinGame seats the session as player 2 and starts the game.
func (c *Coordinator) JoinGame(sid SessionID, code, playerID string) (Seated, error) {
	code, err := c.normalizeCode(code)
	if err != nil {
		return Seated{}, err
	}
	found, err := c.store.GetByCode(code)
	if err != nil {
		return Seated{}, err
	}
	if err := c.reserve(sid, found.ID); err != nil {
		return Seated{}, err
	}

	unlock := c.store.Lock(found.ID)
	g, err := c.store.Get(found.ID)
	if err == nil {
		err = joinable(g, sid)
	}
	if err != nil {
		unlock()
		c.release(sid, found.ID)
		return Seated{}, err
	}

	if playerID == "" {
		playerID = uuid.NewString()
	}
	now := c.now()
	g.Seats[1] = Seat{PlayerID: playerID, Session: sid, Token: uuid.NewString(), Connected: true}
	g.Status = StatusPlaying
	g.StartedAt = now
	g.UpdatedAt = now
	g.TurnSeq = 1
	g.TurnDeadline = c.deadline(now)
	err = c.store.Put(g, c.config.GameTTL)
	unlock()
	if err != nil {
		c.release(sid, g.ID)
		return Seated{}, err
	}

	c.log.Info("game joined", "game", g.ID, "code", g.Code, "player", playerID)
	c.saveGame(g)
	c.armTurnTimer(g)

	c.sessions.Send(sid, GameJoinedEvent{
		GameID:   g.ID,
		Code:     g.Code,
		Player:   engine.Player2,
		PlayerID: playerID,
		Token:    g.Seats[1].Token,
	})
	for i, s := range g.Seats {
		c.sessions.Send(s.Session, GameStartedEvent{
			GameID:       g.ID,
			Code:         g.Code,
			Player:       engine.Player(i + 1),
			State:        g.State,
			TurnDeadline: unixMilli(g.TurnDeadline),
		})
	}
	c.sendReplaces(g)
	return seatedAs(g, engine.Player2), nil
}

func joinable(g Game, sid SessionID) error {
	switch g.Status {
	case StatusFinished:
		return ErrGameEnded
	case StatusPlaying:
		if g.Seats[0].Connected && g.Seats[1].Connected {
			return ErrGameFull
		}
		return ErrGameAlreadyStarted
	}
	if g.Seats[0].Session == sid {
		return ErrAlreadySeated
	}
	return nil
}

// MakeMove applies a move for the session's seat. On success the new state
// is broadcast to both seats.
func (c *Coordinator) MakeMove(sid SessionID, gameID string, req MoveRequest) (engine.GameState, error) {
	if err := validGameID(gameID); err != nil {
		return engine.GameState{}, err
	}

	unlock := c.store.Lock(gameID)
	g, err := c.store.Get(gameID)
	if err != nil {
		unlock()
		return engine.GameState{}, err
	}
	player := g.PlayerOf(sid)
	if player == engine.None {
		unlock()
		return g.State, ErrNotInGame
	}
	if err := playable(g); err != nil {
		unlock()
		return g.State, err
	}

	if req.Player == engine.None {
		req.Player = player
	}
	move := engine.Move{
		Type:      req.Type,
		Position:  req.Position,
		Player:    req.Player,
		Timestamp: c.now().UnixMilli(),
	}
	if move.Position != nil {
		pos := g.State.Board.Size.Normalize(*move.Position)
		move.Position = &pos
	}

	res, err := c.apply(&g, move, player)
	if err != nil {
		unlock()
		c.log.Debug("move rejected", "game", gameID, "player", player, "type", move.Type, "reason", engine.ReasonOf(err))
		return g.State, err
	}
	err = c.store.Put(g, c.ttlFor(g))
	unlock()
	if err != nil {
		return g.State, err
	}

	c.afterMoves(g, res)
	return g.State, nil
}

// EndTurn ends the session's turn voluntarily.
func (c *Coordinator) EndTurn(sid SessionID, gameID string) (engine.GameState, error) {
	return c.MakeMove(sid, gameID, MoveRequest{Type: engine.MoveEndTurn})
}

func playable(g Game) error {
	switch g.Status {
	case StatusWaiting:
		return ErrGameNotStarted
	case StatusFinished:
		// A game decided on the board is left to the engine, which reports
		// GAME_OVER.
		if !g.State.GameOver {
			return ErrGameEnded
		}
	}
	return nil
}

// applied is what one coordinator step did to a game.
type applied struct {
	moves    []engine.Move
	flips    []engine.Flip
	firstSeq int
	handOff  bool
}

// apply runs move through the engine and updates g in place. Must be called
// with the game lock held.
func (c *Coordinator) apply(g *Game, move engine.Move, player engine.Player) (applied, error) {
	out, err := c.engine.Apply(g.State, move, player)
	if err != nil {
		return applied{}, err
	}
	if !out.Converged {
		c.log.Warn("capture resolution did not converge", "game", g.ID, "flips", len(out.Flips))
	}

	res := applied{moves: []engine.Move{move}, flips: out.Flips, firstSeq: g.MoveSeq + 1}
	state := out.State
	if c.config.AutoEndTurn && move.Type != engine.MoveEndTurn && out.TurnComplete() {
		end := engine.EndTurn(player)
		end.Timestamp = move.Timestamp
		state, err = c.engine.ApplyMove(state, end, player)
		if err != nil {
			return applied{}, err
		}
		res.moves = append(res.moves, end)
	}

	now := c.now()
	if state.CurrentPlayer != g.State.CurrentPlayer {
		g.TurnSeq++
		g.TurnDeadline = c.deadline(now)
		res.handOff = true
	}
	g.State = state
	g.MoveSeq += len(res.moves)
	g.UpdatedAt = now
	if state.GameOver {
		g.Status = StatusFinished
		g.EndReason = EndCompleted
		g.Winner = state.Winner
		g.FinishedAt = now
		g.TurnDeadline = time.Time{}
	}
	return res, nil
}

// afterMoves archives and broadcasts a step. Called without the game lock.
func (c *Coordinator) afterMoves(g Game, res applied) {
	for i, m := range res.moves {
		c.saveMove(g.ID, res.firstSeq+i, m)
	}
	c.broadcast(g, GameStateUpdatedEvent{
		GameID:       g.ID,
		State:        g.State,
		Moves:        res.moves,
		Flips:        res.flips,
		TurnDeadline: unixMilli(g.TurnDeadline),
	})

	if g.Status == StatusFinished {
		c.finish(g)
		return
	}
	if res.handOff {
		c.armTurnTimer(g)
	}
	c.sendReplaces(g)
}

// AvailableReplaces returns the session's capture candidates and sends
// them as an event.
func (c *Coordinator) AvailableReplaces(sid SessionID, gameID string) ([]engine.ReplaceCandidate, error) {
	if err := validGameID(gameID); err != nil {
		return nil, err
	}
	g, err := c.store.Get(gameID)
	if err != nil {
		return nil, err
	}
	player := g.PlayerOf(sid)
	if player == engine.None {
		return nil, ErrNotInGame
	}
	candidates := c.engine.AvailableReplaces(g.State, player)
	c.sessions.Send(sid, AvailableReplacesEvent{GameID: g.ID, Player: player, Candidates: candidates})
	return candidates, nil
}

// Disconnect releases a session. A waiting game loses its host and is
// deleted; a running game holds the seat for the reconnect timeout.
func (c *Coordinator) Disconnect(sid SessionID) {
	c.mu.Lock()
	id, ok := c.sessionGame[sid]
	delete(c.sessionGame, sid)
	c.mu.Unlock()
	if !ok {
		return
	}

	unlock := c.store.Lock(id)
	g, err := c.store.Get(id)
	if err != nil {
		unlock()
		return
	}
	player := g.PlayerOf(sid)
	if player == engine.None {
		unlock()
		return
	}

	switch g.Status {
	case StatusWaiting:
		c.store.Delete(id)
		unlock()
		c.log.Info("waiting game abandoned", "game", id, "code", g.Code)

	case StatusPlaying:
		now := c.now()
		seat := g.Seat(player)
		seat.Session = ""
		seat.Connected = false
		seat.DisconnectedAt = now
		g.UpdatedAt = now
		err := c.store.Put(g, c.ttlFor(g))
		unlock()
		if err != nil {
			return
		}

		c.log.Info("player disconnected", "game", id, "player", player)
		c.sessions.Send(g.Seat(player.Opponent()).Session, PlayerDisconnectedEvent{
			GameID:   id,
			Player:   player,
			Deadline: now.Add(c.config.ReconnectTimeout).UnixMilli(),
		})
		c.armReconnectTimer(id, player, now)

	default:
		unlock()
	}
}

// Reconnect binds a new session to the seat owning token.
func (c *Coordinator) Reconnect(sid SessionID, code, token string) (Seated, error) {
	code, err := c.normalizeCode(code)
	if err != nil {
		return Seated{}, err
	}
	found, err := c.store.GetByCode(code)
	if err != nil {
		return Seated{}, err
	}
	if err := c.reserve(sid, found.ID); err != nil {
		return Seated{}, err
	}

	unlock := c.store.Lock(found.ID)
	g, err := c.store.Get(found.ID)
	player := engine.None
	if err == nil {
		player, err = reclaimable(g, token)
	}
	if err != nil {
		unlock()
		c.release(sid, found.ID)
		return Seated{}, err
	}

	seat := g.Seat(player)
	seat.Session = sid
	seat.Connected = true
	seat.DisconnectedAt = time.Time{}
	g.UpdatedAt = c.now()
	err = c.store.Put(g, c.ttlFor(g))
	unlock()
	if err != nil {
		c.release(sid, g.ID)
		return Seated{}, err
	}

	c.stopReconnectTimer(g.ID, player)
	c.log.Info("player reconnected", "game", g.ID, "player", player)
	c.broadcast(g, PlayerReconnectedEvent{GameID: g.ID, Player: player})
	c.sessions.Send(sid, GameStateUpdatedEvent{
		GameID:       g.ID,
		State:        g.State,
		TurnDeadline: unixMilli(g.TurnDeadline),
	})
	c.sendReplaces(g)
	return seatedAs(g, player), nil
}

func reclaimable(g Game, token string) (engine.Player, error) {
	for i, s := range g.Seats {
		if !s.Taken() || token == "" || s.Token != token {
			continue
		}
		if g.Status == StatusFinished {
			return engine.None, ErrGameEnded
		}
		if s.Connected {
			return engine.None, ErrSeatConnected
		}
		return engine.Player(i + 1), nil
	}
	return engine.None, ErrInvalidToken
}

// forfeit finishes a game whose seat was not reclaimed in time.
func (c *Coordinator) forfeit(gameID string, player engine.Player, since time.Time) {
	unlock := c.store.Lock(gameID)
	g, err := c.store.Get(gameID)
	if err != nil || g.Status != StatusPlaying {
		unlock()
		return
	}
	seat := g.Seat(player)
	if seat.Connected || !seat.DisconnectedAt.Equal(since) {
		unlock()
		return
	}

	now := c.now()
	g.Status = StatusFinished
	g.EndReason = EndDisconnect
	g.FinishedAt = now
	g.UpdatedAt = now
	g.TurnDeadline = time.Time{}
	g.Winner = engine.None
	if g.Seat(player.Opponent()).Connected {
		g.Winner = player.Opponent()
	}
	err = c.store.Put(g, c.config.FinishedTTL)
	unlock()
	if err != nil {
		return
	}
	c.finish(g)
}

// finish stops the game's timers, notifies both seats and archives the result.
func (c *Coordinator) finish(g Game) {
	c.forget(g)
	c.broadcast(g, GameOverEvent{
		GameID: g.ID,
		Winner: g.Winner,
		Scores: g.State.Scores,
		Reason: g.EndReason,
		State:  g.State,
	})
	c.saveGame(g)
	c.log.Info("game finished", "game", g.ID, "reason", g.EndReason, "winner", g.Winner,
		"score1", g.State.Scores.Player1, "score2", g.State.Scores.Player2,
		"duration", g.Duration(c.now()).Round(time.Second))
}

// expire ends an unfinished game from the cleanup loop.
func (c *Coordinator) expire(g Game, reason string) {
	now := c.now()
	g.Status = StatusFinished
	g.EndReason = EndExpired
	g.Winner = engine.None
	g.TurnDeadline = time.Time{}
	if g.FinishedAt.IsZero() {
		g.FinishedAt = now
	}

	c.forget(g)
	c.broadcast(g, GameExpiredEvent{GameID: g.ID, Reason: reason})
	if !g.StartedAt.IsZero() {
		c.saveGame(g)
	}
	c.log.Info("game expired", "game", g.ID, "code", g.Code, "reason", reason)
}

// forget drops timers and session bindings of a game.
func (c *Coordinator) forget(g Game) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if m, ok := c.matches[g.ID]; ok {
		m.stop()
		delete(c.matches, g.ID)
	}
	for sid, id := range c.sessionGame {
		if id == g.ID {
			delete(c.sessionGame, sid)
		}
	}
}

func (c *Coordinator) cleanupLoop() {
	ticker := time.NewTicker(c.config.CleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.done:
			return
		}
	}
}

// cleanup expires idle and overlong games and drops finished ones.
func (c *Coordinator) cleanup() {
	now := c.now()
	for _, g := range c.store.Sweep(now) {
		if g.Status == StatusFinished {
			c.forget(g)
			continue
		}
		c.expire(g, "idle")
	}

	if c.config.MaxGameDuration <= 0 {
		return
	}
	for _, g := range c.store.List() {
		if g.Status != StatusPlaying || g.Duration(now) <= c.config.MaxGameDuration {
			continue
		}
		unlock := c.store.Lock(g.ID)
		cur, err := c.store.Get(g.ID)
		if err != nil || cur.Status != StatusPlaying {
			unlock()
			continue
		}
		cur.Status = StatusFinished
		cur.EndReason = EndExpired
		cur.FinishedAt = now
		err = c.store.Put(cur, c.config.FinishedTTL)
		unlock()
		if err == nil {
			c.expire(cur, "max duration")
		}
	}
}

// Game returns a live game by id.
func (c *Coordinator) Game(id string) (Game, error) {
	if err := validGameID(id); err != nil {
		return Game{}, err
	}
	return c.store.Get(id)
}

// Games returns all live games.
func (c *Coordinator) Games() []Game {
	return c.store.List()
}

// GameOf returns the game a session is seated in.
func (c *Coordinator) GameOf(sid SessionID) (Game, bool) {
	c.mu.Lock()
	id, ok := c.sessionGame[sid]
	c.mu.Unlock()
	if !ok {
		return Game{}, false
	}
	g, err := c.store.Get(id)
	return g, err == nil
}

func (c *Coordinator) broadcast(g Game, evt SessionEvent) {
	for _, sid := range g.Sessions() {
		c.sessions.Send(sid, evt)
	}
}

// sendReplaces tells the player to move which captures are in reach.
func (c *Coordinator) sendReplaces(g Game) {
	if g.Status != StatusPlaying {
		return
	}
	p := g.State.CurrentPlayer
	seat := g.Seat(p)
	if !seat.Connected {
		return
	}
	c.sessions.Send(seat.Session, AvailableReplacesEvent{
		GameID:     g.ID,
		Player:     p,
		Candidates: c.engine.AvailableReplaces(g.State, p),
	})
}

func (c *Coordinator) saveGame(g Game) {
	if c.archive == nil {
		return
	}
	if err := c.archive.SaveGame(g.Record(c.now())); err != nil {
		c.log.Warn("archive game failed", "game", g.ID, "error", err)
	}
}

func (c *Coordinator) saveMove(gameID string, seq int, m engine.Move) {
	if c.archive == nil {
		return
	}
	if err := c.archive.SaveMove(gameID, seq, m); err != nil {
		c.log.Warn("archive move failed", "game", gameID, "seq", seq, "error", err)
	}
}

// reserve binds a session to a game, failing if it is already seated elsewhere.
func (c *Coordinator) reserve(sid SessionID, gameID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.sessionGame[sid]; busy {
		return ErrAlreadySeated
	}
	c.sessionGame[sid] = gameID
	return nil
}

func (c *Coordinator) release(sid SessionID, gameID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sessionGame[sid] == gameID {
		delete(c.sessionGame, sid)
	}
}

func (c *Coordinator) ttlFor(g Game) time.Duration {
	if g.Status == StatusFinished {
		return c.config.FinishedTTL
	}
	return c.config.GameTTL
}

func (c *Coordinator) deadline(now time.Time) time.Time {
	if c.config.TurnTimeout <= 0 {
		return time.Time{}
	}
	return now.Add(c.config.TurnTimeout)
}

func seatedAs(g Game, p engine.Player) Seated {
	s := g.Seats[int(p)-1]
	return Seated{
		GameID:   g.ID,
		Code:     g.Code,
		Player:   p,
		PlayerID: s.PlayerID,
		Token:    s.Token,
		State:    g.State,
	}
}

func unixMilli(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func validGameID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidGameID, id)
	}
	return nil
}

// codeAlphabet is the base32 alphabet join codes are drawn from.
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

func (c *Coordinator) normalizeCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != c.config.CodeLength {
		return "", fmt.Errorf("%w: %q", ErrInvalidGameCode, code)
	}
	for _, r := range code {
		if !strings.ContainsRune(codeAlphabet, r) {
			return "", fmt.Errorf("%w: %q", ErrInvalidGameCode, code)
		}
	}
	return code, nil
}

// generateUniqueCode must be called with c.mu held so concurrent creates
// cannot pick the same code.
func (c *Coordinator) generateUniqueCode() string {
	for {
		code := generateJoinCode(c.config.CodeLength)
		if !c.store.CodeInUse(code) {
			return code
		}
	}
}

// generateJoinCode creates an n-character code from the base32 alphabet.
func generateJoinCode(n int) string {
	b := make([]byte, 5) // 40 bits encode to 8 base32 chars
	if _, err := rand.Read(b); err != nil {
		// Fallback to timestamp-based
		ts := time.Now().UnixNano()
		for i := range b {
			b[i] = byte(ts >> (8 * i))
		}
	}
	return base32.StdEncoding.EncodeToString(b)[:n]
}
