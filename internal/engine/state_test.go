package engine

import (
	"errors"
	"math/rand/v2"
	"testing"
)

func mustInitial(t *testing.T, e *Engine, size Size) GameState {
	t.Helper()
	s, err := e.CreateInitialState(size)
	if err != nil {
		t.Fatalf("CreateInitialState(%v) failed: %v", size, err)
	}
	return s
}

func mustApply(t *testing.T, e *Engine, s GameState, m Move) GameState {
	t.Helper()
	next, err := e.ApplyMove(s, m, m.Player)
	if err != nil {
		t.Fatalf("ApplyMove(%+v) failed: %v", m, err)
	}
	return next
}

func TestCreateInitialState(t *testing.T) {
	e := Default()
	s := mustInitial(t, e, Size{})

	if s.Board.Size != DefaultSize() {
		t.Errorf("board size = %v, want %v", s.Board.Size, DefaultSize())
	}
	if s.CurrentPlayer != Player1 {
		t.Errorf("CurrentPlayer = %v, want %v", s.CurrentPlayer, Player1)
	}
	if s.CurrentTurn.PlaceOperationsLeft != 1 {
		t.Errorf("PlaceOperationsLeft = %d, want 1", s.CurrentTurn.PlaceOperationsLeft)
	}
	if !s.IsFirstTurn || s.GameOver || s.Winner != None {
		t.Errorf("unexpected flags: first=%v over=%v winner=%v", s.IsFirstTurn, s.GameOver, s.Winner)
	}
	if s.Phase() != PhaseAwaitingMove {
		t.Errorf("Phase() = %v, want %v", s.Phase(), PhaseAwaitingMove)
	}

	if _, err := e.CreateInitialState(Size{Width: 2, Height: 8}); err == nil {
		t.Error("CreateInitialState accepted a 2x8 board")
	}
}

func TestFirstMove(t *testing.T) {
	e := Default()
	s := mustInitial(t, e, Size{})

	s = mustApply(t, e, s, PlaceAt(Player1, 0, 0))

	if s.Board.Cells[0][0] != Player1 {
		t.Errorf("board[0][0] = %v, want %v", s.Board.Cells[0][0], Player1)
	}
	if s.Scores.Player1 != 1 {
		t.Errorf("scores.player1 = %d, want 1", s.Scores.Player1)
	}
	if s.CurrentTurn.PlaceOperationsLeft != 0 {
		t.Errorf("PlaceOperationsLeft = %d, want 0", s.CurrentTurn.PlaceOperationsLeft)
	}
	if s.CurrentPlayer != Player1 {
		t.Errorf("CurrentPlayer = %v, want %v until end of turn", s.CurrentPlayer, Player1)
	}
	if s.Phase() != PhaseTurnComplete {
		t.Errorf("Phase() = %v, want %v", s.Phase(), PhaseTurnComplete)
	}
	if len(s.CurrentTurn.Moves) != 1 {
		t.Errorf("turn log has %d moves, want 1", len(s.CurrentTurn.Moves))
	}

	// The budget is spent; another placement is refused.
	_, err := e.ApplyMove(s, PlaceAt(Player1, 1, 0), Player1)
	if ReasonOf(err) != ReasonNoOperationsLeft {
		t.Errorf("second placement reason = %q, want %q", ReasonOf(err), ReasonNoOperationsLeft)
	}

	s = mustApply(t, e, s, EndTurn(Player1))
	if s.CurrentPlayer != Player2 {
		t.Errorf("CurrentPlayer after end turn = %v, want %v", s.CurrentPlayer, Player2)
	}
	if s.CurrentTurn.PlaceOperationsLeft != 2 {
		t.Errorf("PlaceOperationsLeft after end turn = %d, want 2", s.CurrentTurn.PlaceOperationsLeft)
	}
	if s.IsFirstTurn {
		t.Error("IsFirstTurn still set after the opening turn")
	}
	if len(s.CurrentTurn.Moves) != 0 {
		t.Errorf("new turn log has %d moves, want 0", len(s.CurrentTurn.Moves))
	}
}

func TestValidateMoveReasons(t *testing.T) {
	e := Default()
	base := mustInitial(t, e, Size{})
	base = mustApply(t, e, base, PlaceAt(Player1, 0, 0))
	base = mustApply(t, e, base, EndTurn(Player1))
	// Player 2 to move with two operations.

	finished := base
	finished.GameOver = true

	spent := base
	spent.CurrentTurn.PlaceOperationsLeft = 0

	// A zero board would make position wrapping divide by zero.
	zero := base
	zero.Board = Board{}

	ragged := base
	ragged.Board = base.Board.Clone()
	ragged.Board.Cells = ragged.Board.Cells[:2]

	tests := []struct {
		name   string
		state  GameState
		move   Move
		actor  Player
		reason Reason
	}{
		{"game over wins over everything", finished, PlaceAt(Player1, 0, 0), Player1, ReasonGameOver},
		{"zero-size board", zero, PlaceAt(Player2, 1, 1), Player2, ReasonInvalidBoard},
		{"zero-size board end turn", zero, EndTurn(Player2), Player2, ReasonInvalidBoard},
		{"cells do not match size", ragged, PlaceAt(Player2, 7, 7), Player2, ReasonInvalidBoard},
		{"acting for someone else", base, PlaceAt(Player2, 1, 1), Player1, ReasonInvalidPlayer},
		{"not a player", base, PlaceAt(None, 1, 1), None, ReasonInvalidPlayer},
		{"wrong turn", base, PlaceAt(Player1, 1, 1), Player1, ReasonNotYourTurn},
		{"missing position", base, Move{Type: MovePlace, Player: Player2}, Player2, ReasonInvalidPosition},
		{"occupied", base, PlaceAt(Player2, 0, 0), Player2, ReasonCellOccupied},
		{"occupied through wrap", base, PlaceAt(Player2, 8, -8), Player2, ReasonCellOccupied},
		{"no operations", spent, PlaceAt(Player2, 3, 3), Player2, ReasonNoOperationsLeft},
		{"replace empty cell", base, ReplaceAt(Player2, 3, 3), Player2, ReasonNotCapturable},
		{"replace lone piece", base, ReplaceAt(Player2, 0, 0), Player2, ReasonNotCapturable},
		{"unknown type", base, Move{Type: "jump", Player: Player2}, Player2, ReasonUnknownMoveType},
		{"place", base, PlaceAt(Player2, 3, 3), Player2, ReasonNone},
		{"end turn early", base, EndTurn(Player2), Player2, ReasonNone},
		{"end turn with budget spent", spent, EndTurn(Player2), Player2, ReasonNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := e.ValidateMove(tt.state, tt.move, tt.actor)
			if v.Reason != tt.reason {
				t.Errorf("ValidateMove() reason = %q, want %q", v.Reason, tt.reason)
			}
			if v.Valid != (tt.reason == ReasonNone) {
				t.Errorf("ValidateMove() valid = %v with reason %q", v.Valid, v.Reason)
			}
			if e.IsValidMove(tt.state, tt.move, tt.actor) != v.Valid {
				t.Error("IsValidMove disagrees with ValidateMove")
			}
		})
	}
}

func TestApplyMoveRejectionLeavesStateUntouched(t *testing.T) {
	e := Default()
	s := mustInitial(t, e, Size{})
	s = mustApply(t, e, s, PlaceAt(Player1, 2, 2))
	before := s.Board.Clone()

	got, err := e.ApplyMove(s, PlaceAt(Player1, 2, 2), Player1)
	if !errors.Is(err, ErrInvalidMove) {
		t.Fatalf("error = %v, want ErrInvalidMove", err)
	}
	var me *MoveError
	if !errors.As(err, &me) || me.Position == nil || *me.Position != Pos(2, 2) || me.Player != Player1 {
		t.Errorf("MoveError = %+v", me)
	}
	if !s.Board.Equal(before) || !got.Board.Equal(before) {
		t.Error("rejected move changed the board")
	}
	if got.CurrentTurn.PlaceOperationsLeft != s.CurrentTurn.PlaceOperationsLeft {
		t.Error("rejected move changed the operation budget")
	}
}

func TestApplyMoveInconsistency(t *testing.T) {
	e := Default()
	s := mustInitial(t, e, Size{})

	over := s
	over.GameOver = true
	_, err := e.ApplyMove(over, PlaceAt(Player1, 0, 0), Player1)
	if !errors.Is(err, ErrInternalInconsistency) || !errors.Is(err, ErrGameOver) {
		t.Errorf("finished game: error = %v", err)
	}

	negative := s
	negative.CurrentTurn.PlaceOperationsLeft = -1
	_, err = e.ApplyMove(negative, EndTurn(Player1), Player1)
	if !errors.Is(err, ErrInternalInconsistency) {
		t.Errorf("negative budget: error = %v", err)
	}
	if errors.Is(err, ErrInvalidMove) {
		t.Error("inconsistency reported as an invalid move")
	}

	ragged := s
	ragged.Board = Board{Size: DefaultSize(), Cells: [][]Player{{None}}}
	_, err = e.ApplyMove(ragged, PlaceAt(Player1, 0, 0), Player1)
	if !errors.Is(err, ErrInternalInconsistency) {
		t.Errorf("ragged board: error = %v", err)
	}
}

func TestApplyMoveCaptures(t *testing.T) {
	e := Default()
	s := mustInitial(t, e, Size{})
	s.IsFirstTurn = false
	s.CurrentTurn.PlaceOperationsLeft = 2
	s.Board = boardWith(DefaultSize(),
		[]Position{{0, 0}, {0, 1}, {0, 2}, {1, 0}},
		[]Position{{1, 1}},
	)

	out, err := e.Apply(s, PlaceAt(Player1, 1, 2), Player1)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if got := out.State.Board.Cell(Pos(1, 1)); got != Player1 {
		t.Errorf("cell (1,1) = %v, want %v", got, Player1)
	}
	if len(out.Flips) != 1 || !out.Converged {
		t.Errorf("flips = %v, converged = %v", out.Flips, out.Converged)
	}
	if out.State.Scores != (Scores{Player1: 6, Player2: 0}) {
		t.Errorf("scores = %+v", out.State.Scores)
	}
	if out.TurnComplete() {
		t.Error("turn complete after one of two placements")
	}
}

func TestExplicitReplace(t *testing.T) {
	e := Default()
	s := mustInitial(t, e, Size{})
	s.IsFirstTurn = false
	s.CurrentTurn.PlaceOperationsLeft = 2
	// An unresolved board, as a caller might have stored it.
	s.Board = boardWith(DefaultSize(),
		[]Position{{0, 0}, {0, 1}, {0, 2}, {1, 0}, {1, 2}},
		[]Position{{1, 1}},
	)

	s = mustApply(t, e, s, ReplaceAt(Player1, 1, 1))
	if s.Board.Cell(Pos(1, 1)) != Player1 {
		t.Errorf("cell (1,1) = %v, want %v", s.Board.Cell(Pos(1, 1)), Player1)
	}
	if s.CurrentTurn.PlaceOperationsLeft != 2 {
		t.Errorf("replace spent an operation: %d left", s.CurrentTurn.PlaceOperationsLeft)
	}
	if s.MoveCount != 0 {
		t.Errorf("MoveCount = %d, want 0", s.MoveCount)
	}
	if len(s.CurrentTurn.Moves) != 1 || s.CurrentTurn.Moves[0].Type != MoveReplace {
		t.Errorf("turn log = %+v", s.CurrentTurn.Moves)
	}
}

func TestDrawDetection(t *testing.T) {
	// 2x2 blocks in a checkerboard on a 4x4 torus: every cell sees four
	// neighbours of each color, so nothing flips.
	e := Default()
	size := Size{Width: 4, Height: 4}
	b := NewBoard(size)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if (x/2+y/2)%2 == 0 {
				b.Cells[y][x] = Player1
			} else {
				b.Cells[y][x] = Player2
			}
		}
	}
	b.Cells[1][1] = None

	s := GameState{
		Board:         b,
		CurrentPlayer: Player1,
		CurrentTurn:   TurnState{PlaceOperationsLeft: 2},
		Scores:        ComputeScores(b),
	}

	s = mustApply(t, e, s, PlaceAt(Player1, 1, 1))
	if !s.GameOver {
		t.Fatal("full board did not end the game")
	}
	if s.Winner != None {
		t.Errorf("Winner = %v, want draw", s.Winner)
	}
	if s.Scores != (Scores{Player1: 8, Player2: 8}) {
		t.Errorf("scores = %+v, want 8/8", s.Scores)
	}
	if s.Phase() != PhaseGameOver {
		t.Errorf("Phase() = %v, want %v", s.Phase(), PhaseGameOver)
	}
	if e.IsValidMove(s, EndTurn(Player1), Player1) {
		t.Error("move accepted after game over")
	}
}

func TestMaxMovesCap(t *testing.T) {
	e := New(Rules{MaxMoves: 1})
	s := mustInitial(t, e, Size{})

	s = mustApply(t, e, s, PlaceAt(Player1, 4, 4))
	if !s.GameOver {
		t.Fatal("move cap did not end the game")
	}
	if s.Winner != Player1 {
		t.Errorf("Winner = %v, want %v", s.Winner, Player1)
	}
}

func TestWinner(t *testing.T) {
	tests := []struct {
		scores Scores
		want   Player
	}{
		{Scores{Player1: 3, Player2: 1}, Player1},
		{Scores{Player1: 1, Player2: 3}, Player2},
		{Scores{Player1: 2, Player2: 2}, None},
		{Scores{}, None},
	}
	for _, tt := range tests {
		if got := Winner(tt.scores); got != tt.want {
			t.Errorf("Winner(%+v) = %v, want %v", tt.scores, got, tt.want)
		}
	}
}

// TestRandomGames plays random legal games to completion and checks the turn
// budget and score bookkeeping after every move.
func TestRandomGames(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	e := Default()

	for game := 0; game < 20; game++ {
		size := Size{Width: 3 + rng.IntN(8), Height: 3 + rng.IntN(8)}
		s := mustInitial(t, e, size)
		turn := 0
		placed := 0

		for !s.GameOver {
			var m Move
			if s.CurrentTurn.PlaceOperationsLeft > 0 && rng.IntN(10) > 0 {
				x, y := randomEmpty(rng, s.Board)
				m = PlaceAt(s.CurrentPlayer, x, y)
			} else {
				m = EndTurn(s.CurrentPlayer)
			}

			next := mustApply(t, e, s, m)
			if m.Type == MovePlace {
				placed++
			} else {
				budget := 2
				if turn == 0 {
					budget = 1
				}
				if placed > budget {
					t.Fatalf("turn %d placed %d pieces, budget %d", turn, placed, budget)
				}
				turn++
				placed = 0
			}

			if next.CurrentTurn.PlaceOperationsLeft < 0 {
				t.Fatalf("negative budget after %+v", m)
			}
			empty := next.Board.Count(None)
			if next.Scores.Player1+next.Scores.Player2+empty != size.Area() {
				t.Fatalf("scores %+v + %d empty != %d", next.Scores, empty, size.Area())
			}
			if next.Scores != ComputeScores(next.Board) {
				t.Fatalf("scores %+v do not match board", next.Scores)
			}
			s = next
		}

		if s.Winner != Winner(s.Scores) {
			t.Errorf("game %d: winner %v does not match scores %+v", game, s.Winner, s.Scores)
		}
	}
}

func randomEmpty(rng *rand.Rand, b Board) (int, int) {
	var empty []Position
	for y, row := range b.Cells {
		for x, c := range row {
			if c == None {
				empty = append(empty, Pos(x, y))
			}
		}
	}
	p := empty[rng.IntN(len(empty))]
	return p.X, p.Y
}
