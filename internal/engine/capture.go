package engine

import "sort"

// Capture defaults.
const (
	DefaultCaptureThreshold     = 5
	DefaultMaxCaptureIterations = 10
)

// CaptureRules parameterizes the capture resolver.
type CaptureRules struct {
	// Threshold is the number of opposing neighbours (out of 8) that flips a cell.
	Threshold int
	// MaxIterations bounds the number of full-board passes.
	MaxIterations int
}

// DefaultCaptureRules returns the 5-of-8 rule with a 10 pass cap.
func DefaultCaptureRules() CaptureRules {
	return CaptureRules{
		Threshold:     DefaultCaptureThreshold,
		MaxIterations: DefaultMaxCaptureIterations,
	}
}

// Flip records a single cell changing owner during resolution.
type Flip struct {
	Position  Position `json:"position"`
	From      Player   `json:"from"`
	To        Player   `json:"to"`
	Iteration int      `json:"iteration"`
}

// Resolution is the result of ResolveCaptures.
type Resolution struct {
	Board      Board
	Flips      []Flip
	Iterations int
	// Converged is false when the pass cap was hit while flips were still
	// being produced. Board then holds the state after the last pass.
	Converged bool
}

// ResolveCaptures flips every occupied cell that has at least
// rules.Threshold neighbours of the opposing color, repeating until a pass
// produces no flips or rules.MaxIterations passes have run.
//
// Each pass decides all flips against the board as it stood at the start of
// the pass and applies them together, so the result does not depend on scan
// order. The input board is not modified. Empty cells are never touched.
func ResolveCaptures(b Board, rules CaptureRules) Resolution {
	res := Resolution{Board: b.Clone()}
	if rules.Threshold <= 0 || rules.MaxIterations <= 0 {
		res.Converged = true
		return res
	}

	for res.Iterations < rules.MaxIterations {
		pending := capturable(res.Board, rules.Threshold)
		if len(pending) == 0 {
			res.Converged = true
			return res
		}
		res.Iterations++
		for i := range pending {
			pending[i].Iteration = res.Iterations
			res.Board.Cells[pending[i].Position.Y][pending[i].Position.X] = pending[i].To
		}
		res.Flips = append(res.Flips, pending...)
	}

	// Cap reached; one more scan tells us whether we actually stopped at a fixpoint.
	res.Converged = len(capturable(res.Board, rules.Threshold)) == 0
	return res
}

// capturable scans b once and returns every flip due under threshold,
// in row-major order.
func capturable(b Board, threshold int) []Flip {
	var out []Flip
	for y, row := range b.Cells {
		for x, owner := range row {
			if owner == None {
				continue
			}
			p := Position{X: x, Y: y}
			enemy := owner.Opponent()
			if countAdjacent(b, p, enemy) >= threshold {
				out = append(out, Flip{Position: p, From: owner, To: enemy})
			}
		}
	}
	return out
}

func countAdjacent(b Board, p Position, color Player) int {
	n := 0
	for _, a := range AdjacentPositions(p, b.Size) {
		if b.Cells[a.Y][a.X] == color {
			n++
		}
	}
	return n
}

// ReplaceCandidate describes an opponent cell the player is pressing on.
// Candidates are derived on demand and never stored in GameState.
type ReplaceCandidate struct {
	Position          Position   `json:"position"`
	IsValid           bool       `json:"isValid"`
	AdjacentCount     int        `json:"adjacentCount"`
	AdjacentPositions []Position `json:"adjacentPositions"`
	// Priority ranks candidates for display; higher is more urgent.
	// It is the adjacent count, boosted by the threshold for cells that
	// already qualify.
	Priority int `json:"priority"`
}

// replaceCandidates scans b for opponent cells that touch at least one of
// player's pieces. Results are ordered by priority, then row-major.
func replaceCandidates(b Board, player Player, threshold int) []ReplaceCandidate {
	enemy := player.Opponent()
	if enemy == None {
		return nil
	}

	var out []ReplaceCandidate
	for y, row := range b.Cells {
		for x, owner := range row {
			if owner != enemy {
				continue
			}
			p := Position{X: x, Y: y}
			adj := b.AdjacentOf(p, player)
			if len(adj) == 0 {
				continue
			}
			c := ReplaceCandidate{
				Position:          p,
				IsValid:           len(adj) >= threshold,
				AdjacentCount:     len(adj),
				AdjacentPositions: adj,
				Priority:          len(adj),
			}
			if c.IsValid {
				c.Priority += threshold
			}
			out = append(out, c)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})
	return out
}
