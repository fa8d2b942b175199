package engine

import "fmt"

// TurnState is the bookkeeping for the turn in progress. The player owning
// the turn is GameState.CurrentPlayer.
type TurnState struct {
	PlaceOperationsLeft int    `json:"placeOperationsLeft"`
	Moves               []Move `json:"moves"`
}

// Phase is the turn controller state.
type Phase int

const (
	// PhaseAwaitingMove means placement operations remain.
	PhaseAwaitingMove Phase = iota
	// PhaseTurnComplete means the budget is spent and only end_turn is accepted.
	PhaseTurnComplete
	// PhaseGameOver is terminal.
	PhaseGameOver
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitingMove:
		return "AWAITING_MOVE"
	case PhaseTurnComplete:
		return "TURN_COMPLETE"
	case PhaseGameOver:
		return "GAME_OVER"
	default:
		return "UNKNOWN"
	}
}

// Phase derives the controller state from s.
func (s GameState) Phase() Phase {
	switch {
	case s.GameOver:
		return PhaseGameOver
	case s.CurrentTurn.PlaceOperationsLeft == 0:
		return PhaseTurnComplete
	default:
		return PhaseAwaitingMove
	}
}

// turnBudget is the number of placements a turn starts with.
func (e *Engine) turnBudget(first bool) int {
	if first {
		return e.rules.FirstTurnOperations
	}
	return e.rules.TurnOperations
}

func (e *Engine) newTurn(first bool) TurnState {
	return TurnState{PlaceOperationsLeft: e.turnBudget(first), Moves: []Move{}}
}

// record appends m to the turn log, spending one operation when spend is set.
func (t TurnState) record(m Move, spend bool) (TurnState, error) {
	out := TurnState{
		PlaceOperationsLeft: t.PlaceOperationsLeft,
		Moves:               append(append([]Move(nil), t.Moves...), m),
	}
	if spend {
		out.PlaceOperationsLeft--
	}
	if out.PlaceOperationsLeft < 0 {
		return t, &InconsistencyError{
			Detail: fmt.Sprintf("placement operations went negative (%d)", out.PlaceOperationsLeft),
		}
	}
	return out, nil
}

// handOff ends the current turn and starts the opponent's. Only the opening
// turn of the game gets the reduced budget, so every handoff starts a full one.
func (e *Engine) handOff(s GameState) GameState {
	s.CurrentPlayer = s.CurrentPlayer.Opponent()
	s.IsFirstTurn = false
	s.CurrentTurn = e.newTurn(false)
	return s
}
