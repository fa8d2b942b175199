package engine

// Validation is the outcome of checking a move.
type Validation struct {
	Valid  bool
	Reason Reason
}

func reject(r Reason) Validation {
	return Validation{Reason: r}
}

var accepted = Validation{Valid: true}

// ValidateMove checks move against state on behalf of actingPlayer.
// Checks short-circuit in this order: game over, board shape, turn
// ownership, position, cell occupancy for placements, and operation budget.
func (e *Engine) ValidateMove(state GameState, move Move, actingPlayer Player) Validation {
	if state.GameOver {
		return reject(ReasonGameOver)
	}
	if state.Board.Size.Validate() != nil || !state.Board.wellFormed() {
		return reject(ReasonInvalidBoard)
	}
	if !move.Player.Valid() || move.Player != actingPlayer {
		return reject(ReasonInvalidPlayer)
	}
	if move.Player != state.CurrentPlayer {
		return reject(ReasonNotYourTurn)
	}
	if move.Type.NeedsPosition() && move.Position == nil {
		return reject(ReasonInvalidPosition)
	}

	switch move.Type {
	case MovePlace:
		if state.Board.Cell(*move.Position) != None {
			return reject(ReasonCellOccupied)
		}
		if state.CurrentTurn.PlaceOperationsLeft <= 0 {
			return reject(ReasonNoOperationsLeft)
		}
		return accepted

	case MoveReplace:
		if state.CurrentTurn.PlaceOperationsLeft <= 0 {
			return reject(ReasonNoOperationsLeft)
		}
		target := state.Board.Size.Normalize(*move.Position)
		if state.Board.Cell(target) != move.Player.Opponent() {
			return reject(ReasonNotCapturable)
		}
		if countAdjacent(state.Board, target, move.Player) < e.rules.CaptureThreshold {
			return reject(ReasonNotCapturable)
		}
		return accepted

	case MoveEndTurn:
		return accepted

	default:
		return reject(ReasonUnknownMoveType)
	}
}

// IsValidMove is ValidateMove reduced to a boolean.
func (e *Engine) IsValidMove(state GameState, move Move, actingPlayer Player) bool {
	return e.ValidateMove(state, move, actingPlayer).Valid
}
