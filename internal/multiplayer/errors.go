package multiplayer

import (
	"errors"

	"github.com/vovakirdan/ctor/internal/engine"
)

// Lifecycle errors returned by the coordinator.
var (
	ErrInvalidGameID      = errors.New("invalid game id")
	ErrInvalidGameCode    = errors.New("invalid game code")
	ErrGameNotFound       = errors.New("game not found")
	ErrGameFull           = errors.New("game is full")
	ErrGameAlreadyStarted = errors.New("game already started")
	ErrGameNotStarted     = errors.New("game has not started")
	ErrGameEnded          = errors.New("game has ended")
	ErrNotInGame          = errors.New("session is not seated in this game")
	ErrAlreadySeated      = errors.New("session is already seated in a game")
	ErrInvalidToken       = errors.New("invalid reconnect token")
	ErrSeatConnected      = errors.New("seat is still connected")
	ErrInvalidEvent       = errors.New("invalid event")
	ErrUnknownSession     = errors.New("unknown session")
)

// ErrorCode is the machine-readable error sent to clients.
type ErrorCode string

const (
	CodeInvalidGameID      ErrorCode = "INVALID_GAME_ID"
	CodeInvalidGameCode    ErrorCode = "INVALID_GAME_CODE"
	CodeGameNotFound       ErrorCode = "GAME_NOT_FOUND"
	CodeGameFull           ErrorCode = "GAME_FULL"
	CodeGameAlreadyStarted ErrorCode = "GAME_ALREADY_STARTED"
	CodeGameEnded          ErrorCode = "GAME_ENDED"
	CodeGameOver           ErrorCode = "GAME_OVER"
	CodeInvalidMove        ErrorCode = "INVALID_MOVE"
	CodeNotYourTurn        ErrorCode = "NOT_YOUR_TURN"
	CodeInvalidState       ErrorCode = "INVALID_STATE"
	CodeInvalidEvent       ErrorCode = "INVALID_EVENT"
	CodeInternal           ErrorCode = "INTERNAL_ERROR"
)

// CodeFor maps an error from the coordinator or the engine to its wire code.
func CodeFor(err error) ErrorCode {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidGameID):
		return CodeInvalidGameID
	case errors.Is(err, ErrInvalidGameCode):
		return CodeInvalidGameCode
	case errors.Is(err, ErrGameNotFound):
		return CodeGameNotFound
	case errors.Is(err, ErrGameFull):
		return CodeGameFull
	case errors.Is(err, ErrGameAlreadyStarted):
		return CodeGameAlreadyStarted
	case errors.Is(err, ErrGameEnded):
		return CodeGameEnded
	case errors.Is(err, engine.ErrGameOver):
		return CodeGameOver
	case engine.ReasonOf(err) == engine.ReasonNotYourTurn:
		return CodeNotYourTurn
	case errors.Is(err, engine.ErrInvalidMove):
		return CodeInvalidMove
	case errors.Is(err, ErrInvalidEvent):
		return CodeInvalidEvent
	case errors.Is(err, ErrGameNotStarted),
		errors.Is(err, ErrNotInGame),
		errors.Is(err, ErrAlreadySeated),
		errors.Is(err, ErrInvalidToken),
		errors.Is(err, ErrSeatConnected),
		errors.Is(err, ErrUnknownSession):
		return CodeInvalidState
	default:
		return CodeInternal
	}
}
