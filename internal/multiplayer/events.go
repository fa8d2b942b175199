package multiplayer

import "github.com/vovakirdan/ctor/internal/engine"

// SessionEvent represents an event sent from the coordinator to a session.
// Name is the event name used on the wire.
type SessionEvent interface {
	Name() string
}

// GameCreatedEvent is sent to the host when a game is created.
type GameCreatedEvent struct {
	GameID   string        `json:"gameId"`
	Code     string        `json:"code"`
	Player   engine.Player `json:"playerNumber"`
	PlayerID string        `json:"playerId"`
	Token    string        `json:"token"`
	Size     engine.Size   `json:"size"`
}

func (GameCreatedEvent) Name() string { return "gameCreated" }

// GameJoinedEvent is sent to the joiner once seated.
type GameJoinedEvent struct {
	GameID   string        `json:"gameId"`
	Code     string        `json:"code"`
	Player   engine.Player `json:"playerNumber"`
	PlayerID string        `json:"playerId"`
	Token    string        `json:"token"`
}

func (GameJoinedEvent) Name() string { return "gameJoined" }

// GameStartedEvent is sent to both seats when the second player arrives.
// Player is the recipient's seat.
type GameStartedEvent struct {
	GameID       string           `json:"gameId"`
	Code         string           `json:"code"`
	Player       engine.Player    `json:"playerNumber"`
	State        engine.GameState `json:"gameState"`
	TurnDeadline int64            `json:"turnDeadline,omitempty"`
}

func (GameStartedEvent) Name() string { return "gameStarted" }

// GameStateUpdatedEvent is broadcast after every applied move.
type GameStateUpdatedEvent struct {
	GameID       string           `json:"gameId"`
	State        engine.GameState `json:"gameState"`
	Moves        []engine.Move    `json:"moves,omitempty"`
	Flips        []engine.Flip    `json:"flips,omitempty"`
	TurnDeadline int64            `json:"turnDeadline,omitempty"`
}

func (GameStateUpdatedEvent) Name() string { return "gameStateUpdated" }

// AvailableReplacesEvent lists capture candidates for the player to move.
type AvailableReplacesEvent struct {
	GameID     string                    `json:"gameId"`
	Player     engine.Player             `json:"playerNumber"`
	Candidates []engine.ReplaceCandidate `json:"replacements"`
}

func (AvailableReplacesEvent) Name() string { return "availableReplaces" }

// GameOverEvent is sent to both seats when a game finishes.
type GameOverEvent struct {
	GameID string           `json:"gameId"`
	Winner engine.Player    `json:"winner"`
	Scores engine.Scores    `json:"scores"`
	Reason EndReason        `json:"reason"`
	State  engine.GameState `json:"gameState"`
}

func (GameOverEvent) Name() string { return "gameOver" }

// PlayerDisconnectedEvent tells the opponent a seat lost its session.
type PlayerDisconnectedEvent struct {
	GameID string        `json:"gameId"`
	Player engine.Player `json:"playerNumber"`
	// Deadline is the unix millisecond time the seat is forfeited.
	Deadline int64 `json:"reconnectDeadline"`
}

func (PlayerDisconnectedEvent) Name() string { return "playerDisconnected" }

// PlayerReconnectedEvent is sent to both seats when a seat is reclaimed.
type PlayerReconnectedEvent struct {
	GameID string        `json:"gameId"`
	Player engine.Player `json:"playerNumber"`
}

func (PlayerReconnectedEvent) Name() string { return "playerReconnected" }

// GameExpiredEvent is sent when the cleanup loop removes an unfinished game.
type GameExpiredEvent struct {
	GameID string `json:"gameId"`
	Reason string `json:"reason"`
}

func (GameExpiredEvent) Name() string { return "gameExpired" }

// ErrorEvent reports a failed request.
type ErrorEvent struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (ErrorEvent) Name() string { return "error" }

// NewErrorEvent builds an ErrorEvent from err.
func NewErrorEvent(err error) ErrorEvent {
	return ErrorEvent{Code: CodeFor(err), Message: err.Error()}
}

// CoordinatorMessage represents a message from a session to the coordinator.
type CoordinatorMessage interface {
	coordinatorMessage()
}

// CreateGameMsg requests a new game. Zero dimensions select the configured size.
type CreateGameMsg struct {
	SessionID SessionID
	PlayerID  string
	Width     int
	Height    int
}

func (CreateGameMsg) coordinatorMessage() {}

// JoinGameMsg requests the second seat of a waiting game.
type JoinGameMsg struct {
	SessionID SessionID
	Code      string
	PlayerID  string
}

func (JoinGameMsg) coordinatorMessage() {}

// MakeMoveMsg submits a move.
type MakeMoveMsg struct {
	SessionID SessionID
	GameID    string
	Move      MoveRequest
}

func (MakeMoveMsg) coordinatorMessage() {}

// EndTurnMsg ends the sender's turn.
type EndTurnMsg struct {
	SessionID SessionID
	GameID    string
}

func (EndTurnMsg) coordinatorMessage() {}

// GetAvailableReplacesMsg asks for the sender's capture candidates.
type GetAvailableReplacesMsg struct {
	SessionID SessionID
	GameID    string
}

func (GetAvailableReplacesMsg) coordinatorMessage() {}

// ReconnectMsg reclaims a seat with its token.
type ReconnectMsg struct {
	SessionID SessionID
	Code      string
	Token     string
}

func (ReconnectMsg) coordinatorMessage() {}

// SessionDisconnectedMsg is sent when a session disconnects.
type SessionDisconnectedMsg struct {
	SessionID SessionID
}

func (SessionDisconnectedMsg) coordinatorMessage() {}
