package engine

import "fmt"

// Turn budget defaults.
const (
	DefaultFirstTurnOperations = 1
	DefaultTurnOperations      = 2
)

// Rules are the tunable parameters of a game.
type Rules struct {
	CaptureThreshold     int `json:"captureThreshold"`
	MaxCaptureIterations int `json:"maxCaptureIterations"`
	FirstTurnOperations  int `json:"firstTurnOperations"`
	TurnOperations       int `json:"turnOperations"`
	// MaxMoves ends the game after this many placements. Zero means the
	// game runs until the board is full.
	MaxMoves int `json:"maxMoves"`
}

// DefaultRules returns the standard rule set.
func DefaultRules() Rules {
	return Rules{
		CaptureThreshold:     DefaultCaptureThreshold,
		MaxCaptureIterations: DefaultMaxCaptureIterations,
		FirstTurnOperations:  DefaultFirstTurnOperations,
		TurnOperations:       DefaultTurnOperations,
	}
}

// Capture returns the resolver parameters of r.
func (r Rules) Capture() CaptureRules {
	return CaptureRules{Threshold: r.CaptureThreshold, MaxIterations: r.MaxCaptureIterations}
}

// GameState is the complete state of one game.
type GameState struct {
	Board         Board     `json:"board"`
	CurrentPlayer Player    `json:"currentPlayer"`
	CurrentTurn   TurnState `json:"currentTurn"`
	Scores        Scores    `json:"scores"`
	IsFirstTurn   bool      `json:"isFirstTurn"`
	GameOver      bool      `json:"gameOver"`
	// Winner is None until GameOver, and stays None on a draw.
	Winner    Player `json:"winner"`
	MoveCount int    `json:"moveCount"`
}

// Outcome is the full result of applying one move.
type Outcome struct {
	State GameState
	// Flips lists the cells captured while resolving this move.
	Flips []Flip
	// Converged is false when capture resolution hit its pass cap.
	Converged bool
}

// TurnComplete reports whether the mover has spent the turn budget.
func (o Outcome) TurnComplete() bool {
	return o.State.Phase() == PhaseTurnComplete
}

// Engine applies a fixed rule set. It holds no game state and is safe for
// concurrent use.
type Engine struct {
	rules Rules
}

// New creates an engine. Zero-valued rule fields fall back to the defaults.
func New(rules Rules) *Engine {
	def := DefaultRules()
	if rules.CaptureThreshold <= 0 {
		rules.CaptureThreshold = def.CaptureThreshold
	}
	if rules.MaxCaptureIterations <= 0 {
		rules.MaxCaptureIterations = def.MaxCaptureIterations
	}
	if rules.FirstTurnOperations <= 0 {
		rules.FirstTurnOperations = def.FirstTurnOperations
	}
	if rules.TurnOperations <= 0 {
		rules.TurnOperations = def.TurnOperations
	}
	if rules.MaxMoves < 0 {
		rules.MaxMoves = 0
	}
	return &Engine{rules: rules}
}

// Default returns an engine with DefaultRules.
func Default() *Engine {
	return New(DefaultRules())
}

// Rules returns the engine's rule set.
func (e *Engine) Rules() Rules {
	return e.rules
}

// CreateInitialState returns a fresh game on an empty board of the given
// size. A zero size selects DefaultSize. Player 1 opens with the reduced
// first-turn budget.
func (e *Engine) CreateInitialState(size Size) (GameState, error) {
	if size == (Size{}) {
		size = DefaultSize()
	}
	if err := size.Validate(); err != nil {
		return GameState{}, err
	}
	return GameState{
		Board:         NewBoard(size),
		CurrentPlayer: Player1,
		CurrentTurn:   e.newTurn(true),
		IsFirstTurn:   true,
	}, nil
}

// ApplyMove is Apply without the resolution details.
func (e *Engine) ApplyMove(state GameState, move Move, player Player) (GameState, error) {
	out, err := e.Apply(state, move, player)
	if err != nil {
		return state, err
	}
	return out.State, nil
}

// Apply validates move and, if accepted, runs the whole pipeline: place,
// resolve captures, rescore, advance the turn, and detect the end of the game.
//
// A rejected move returns a *MoveError. A malformed or finished state returns
// an *InconsistencyError. In both cases the returned Outcome carries the
// input state unchanged.
func (e *Engine) Apply(state GameState, move Move, player Player) (Outcome, error) {
	unchanged := Outcome{State: state, Converged: true}

	if err := e.checkConsistency(state); err != nil {
		return unchanged, err
	}
	if v := e.ValidateMove(state, move, player); !v.Valid {
		return unchanged, &MoveError{
			Reason:   v.Reason,
			Type:     move.Type,
			Position: move.Position,
			Player:   move.Player,
		}
	}

	next := state
	switch move.Type {
	case MoveEndTurn:
		return Outcome{State: e.handOff(next), Converged: true}, nil

	case MovePlace, MoveReplace:
		pos := state.Board.Size.Normalize(*move.Position)
		move.Position = &pos

		// A placement fills an empty cell; a replace takes over an enemy one.
		// Either way the target ends up owned by the mover.
		res := ResolveCaptures(state.Board.SetCell(pos, move.Player), e.rules.Capture())

		turn, err := state.CurrentTurn.record(move, move.Type == MovePlace)
		if err != nil {
			return unchanged, err
		}

		next.Board = res.Board
		next.CurrentTurn = turn
		if move.Type == MovePlace {
			next.MoveCount++
		}
		e.settle(&next)
		return Outcome{State: next, Flips: res.Flips, Converged: res.Converged}, nil
	}

	// ValidateMove rejects unknown types, so this is unreachable for
	// well-formed input.
	return unchanged, &InconsistencyError{Detail: fmt.Sprintf("unhandled move type %q", move.Type)}
}

// settle recomputes scores and the end-of-game condition.
func (e *Engine) settle(s *GameState) {
	s.Scores = ComputeScores(s.Board)
	capped := e.rules.MaxMoves > 0 && s.MoveCount >= e.rules.MaxMoves
	if s.Board.Full() || capped {
		s.GameOver = true
		s.Winner = Winner(s.Scores)
	}
}

// AvailableReplaces lists the opponent cells adjacent to player's pieces,
// marking those that meet the capture threshold. The state is not modified.
func (e *Engine) AvailableReplaces(state GameState, player Player) []ReplaceCandidate {
	return replaceCandidates(state.Board, player, e.rules.CaptureThreshold)
}

// checkConsistency rejects states that could not have been produced by
// this engine.
func (e *Engine) checkConsistency(s GameState) error {
	if s.GameOver {
		return &InconsistencyError{Detail: "move applied to a finished game", Err: ErrGameOver}
	}
	if err := s.Board.Size.Validate(); err != nil {
		return &InconsistencyError{Detail: err.Error()}
	}
	if !s.Board.wellFormed() {
		return &InconsistencyError{Detail: "board cells do not match board size"}
	}
	if !s.CurrentPlayer.Valid() {
		return &InconsistencyError{Detail: fmt.Sprintf("current player %d", s.CurrentPlayer)}
	}
	ops := s.CurrentTurn.PlaceOperationsLeft
	if ops < 0 || ops > e.turnBudget(s.IsFirstTurn) {
		return &InconsistencyError{
			Detail: fmt.Sprintf("placement operations %d outside 0..%d", ops, e.turnBudget(s.IsFirstTurn)),
		}
	}
	return nil
}
