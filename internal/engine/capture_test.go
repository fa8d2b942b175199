package engine

import (
	"math/rand/v2"
	"testing"
)

// boardWith places pieces on an empty board of the given size.
func boardWith(size Size, p1, p2 []Position) Board {
	b := NewBoard(size)
	for _, p := range p1 {
		b.Cells[p.Y][p.X] = Player1
	}
	for _, p := range p2 {
		b.Cells[p.Y][p.X] = Player2
	}
	return b
}

func TestResolveCapturesBasic(t *testing.T) {
	tests := []struct {
		name string
		p1   []Position
		want Player
	}{
		{
			name: "five neighbours flip",
			p1:   []Position{{0, 0}, {0, 1}, {0, 2}, {1, 0}, {1, 2}},
			want: Player1,
		},
		{
			name: "four neighbours hold",
			p1:   []Position{{0, 0}, {0, 1}, {0, 2}, {1, 0}},
			want: Player2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := boardWith(DefaultSize(), tt.p1, []Position{{1, 1}})
			res := ResolveCaptures(b, DefaultCaptureRules())

			if got := res.Board.Cell(Pos(1, 1)); got != tt.want {
				t.Errorf("cell (1,1) = %v, want %v", got, tt.want)
			}
			if !res.Converged {
				t.Error("resolution did not converge")
			}
			if b.Cell(Pos(1, 1)) != Player2 {
				t.Error("ResolveCaptures modified its input")
			}
		})
	}
}

func TestResolveCapturesAcrossEdges(t *testing.T) {
	// Player 2 at the corner, surrounded through the wrap.
	p1 := []Position{{7, 7}, {0, 7}, {1, 7}, {7, 0}, {1, 0}}
	b := boardWith(DefaultSize(), p1, []Position{{0, 0}})

	res := ResolveCaptures(b, DefaultCaptureRules())
	if got := res.Board.Cell(Pos(0, 0)); got != Player1 {
		t.Errorf("corner cell = %v, want %v", got, Player1)
	}
	if len(res.Flips) != 1 {
		t.Fatalf("got %d flips, want 1", len(res.Flips))
	}
	f := res.Flips[0]
	if f.Position != Pos(0, 0) || f.From != Player2 || f.To != Player1 || f.Iteration != 1 {
		t.Errorf("flip = %+v", f)
	}
}

func TestResolveCapturesChainReaction(t *testing.T) {
	// (2,1) only reaches five player-1 neighbours once (1,1) has flipped.
	p1 := []Position{
		{0, 0}, {1, 0}, {3, 0},
		{0, 1}, {3, 1},
		{0, 2}, {1, 2},
	}
	b := boardWith(DefaultSize(), p1, []Position{{1, 1}, {2, 1}})

	res := ResolveCaptures(b, DefaultCaptureRules())
	if got := res.Board.Cell(Pos(1, 1)); got != Player1 {
		t.Errorf("cell (1,1) = %v, want %v", got, Player1)
	}
	if got := res.Board.Cell(Pos(2, 1)); got != Player1 {
		t.Errorf("cell (2,1) = %v, want %v", got, Player1)
	}
	if res.Iterations != 2 || !res.Converged {
		t.Errorf("Iterations = %d, Converged = %v", res.Iterations, res.Converged)
	}
}

func TestResolveCapturesSimultaneous(t *testing.T) {
	// Both player-2 cells already see six player-1 neighbours at the start
	// of the pass, so both flip in the first iteration regardless of scan order.
	p1 := []Position{
		{0, 0}, {1, 0}, {2, 0}, {3, 0},
		{0, 2}, {1, 2}, {2, 2}, {3, 2},
	}
	b := boardWith(DefaultSize(), p1, []Position{{1, 1}, {2, 1}})

	res := ResolveCaptures(b, DefaultCaptureRules())
	for _, p := range []Position{{1, 1}, {2, 1}} {
		if got := res.Board.Cell(p); got != Player1 {
			t.Errorf("cell %v = %v, want %v", p, got, Player1)
		}
	}
	for _, f := range res.Flips {
		if f.Iteration != 1 {
			t.Errorf("flip %v happened in iteration %d, want 1", f.Position, f.Iteration)
		}
	}
}

func TestResolveCapturesIterationCap(t *testing.T) {
	p1 := []Position{
		{0, 0}, {1, 0}, {3, 0},
		{0, 1}, {3, 1},
		{0, 2}, {1, 2},
	}
	b := boardWith(DefaultSize(), p1, []Position{{1, 1}, {2, 1}})

	res := ResolveCaptures(b, CaptureRules{Threshold: 5, MaxIterations: 1})
	if res.Iterations != 1 {
		t.Errorf("Iterations = %d, want 1", res.Iterations)
	}
	if res.Converged {
		t.Error("expected capped resolution to report Converged = false")
	}
}

func TestResolveCapturesProperties(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 7))
	rules := DefaultCaptureRules()

	for i := 0; i < 200; i++ {
		size := Size{Width: 3 + rng.IntN(8), Height: 3 + rng.IntN(8)}
		b := NewBoard(size)
		for y := range b.Cells {
			for x := range b.Cells[y] {
				b.Cells[y][x] = Player(rng.IntN(3))
			}
		}

		res := ResolveCaptures(b, rules)
		if got, want := res.Board.Count(None), b.Count(None); got != want {
			t.Fatalf("board %d: empty cells %d -> %d", i, want, got)
		}
		if !res.Converged {
			continue
		}
		again := ResolveCaptures(res.Board, rules)
		if !again.Board.Equal(res.Board) || len(again.Flips) != 0 {
			t.Fatalf("board %d: resolution is not idempotent", i)
		}
	}
}

func TestAvailableReplaces(t *testing.T) {
	p1 := []Position{{0, 0}, {1, 0}, {2, 0}, {0, 1}, {2, 1}}
	b := boardWith(DefaultSize(), p1, []Position{{1, 1}, {5, 5}, {3, 0}})

	got := replaceCandidates(b, Player1, DefaultCaptureThreshold)
	if len(got) != 2 {
		t.Fatalf("got %d candidates, want 2: %+v", len(got), got)
	}

	first := got[0]
	if first.Position != Pos(1, 1) || !first.IsValid || first.AdjacentCount != 5 {
		t.Errorf("first candidate = %+v", first)
	}
	if first.Priority <= got[1].Priority {
		t.Errorf("candidates not ordered by priority: %d then %d", first.Priority, got[1].Priority)
	}

	second := got[1]
	if second.Position != Pos(3, 0) || second.IsValid || second.AdjacentCount != 2 {
		t.Errorf("second candidate = %+v", second)
	}
}
