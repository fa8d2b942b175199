package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMove is returned for moves that fail validation.
	ErrInvalidMove = errors.New("engine: invalid move")
	// ErrGameOver is returned for actions attempted after the game ended.
	ErrGameOver = errors.New("engine: game is over")
	// ErrInternalInconsistency marks a malformed GameState handed to the engine.
	// It is not retryable.
	ErrInternalInconsistency = errors.New("engine: internal inconsistency")
)

// Reason is a machine-readable validation failure code.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonGameOver         Reason = "GAME_OVER"
	ReasonNotYourTurn      Reason = "NOT_YOUR_TURN"
	ReasonInvalidPlayer    Reason = "INVALID_PLAYER"
	ReasonInvalidPosition  Reason = "INVALID_POSITION"
	ReasonCellOccupied     Reason = "CELL_OCCUPIED"
	ReasonNoOperationsLeft Reason = "NO_OPERATIONS_LEFT"
	ReasonNotCapturable    Reason = "NOT_CAPTURABLE"
	ReasonUnknownMoveType  Reason = "UNKNOWN_MOVE_TYPE"
	ReasonInvalidBoard     Reason = "INVALID_BOARD"
)

// MoveError carries enough detail about a rejected move for a boundary
// layer to render a message.
type MoveError struct {
	Reason   Reason
	Type     MoveType
	Position *Position
	Player   Player
}

func (e *MoveError) Error() string {
	if e.Position != nil {
		return fmt.Sprintf("engine: %s move by %s at (%d,%d) rejected: %s",
			e.Type, e.Player, e.Position.X, e.Position.Y, e.Reason)
	}
	return fmt.Sprintf("engine: %s move by %s rejected: %s", e.Type, e.Player, e.Reason)
}

// Unwrap lets errors.Is match ErrGameOver or ErrInvalidMove.
func (e *MoveError) Unwrap() error {
	if e.Reason == ReasonGameOver {
		return ErrGameOver
	}
	return ErrInvalidMove
}

// InconsistencyError reports a precondition the caller broke.
type InconsistencyError struct {
	Detail string
	// Err is an optional more specific cause, such as ErrGameOver.
	Err error
}

func (e *InconsistencyError) Error() string {
	return "engine: internal inconsistency: " + e.Detail
}

// Unwrap matches ErrInternalInconsistency and, when set, the cause.
func (e *InconsistencyError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInternalInconsistency}
	}
	return []error{ErrInternalInconsistency, e.Err}
}

// ReasonOf extracts the validation reason from err, or ReasonNone.
func ReasonOf(err error) Reason {
	var me *MoveError
	if errors.As(err, &me) {
		return me.Reason
	}
	return ReasonNone
}
