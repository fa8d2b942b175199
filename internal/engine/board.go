// Package engine implements the CTOR rule engine: a toroidal board, capture
// resolution, move validation, turn bookkeeping and scoring.
//
// Everything in this package is pure. Functions take values and return new
// values; nothing here performs I/O, logs, or keeps state between calls.
// Callers that share a GameState between goroutines must serialize access
// themselves.
package engine

import "fmt"

// Board size limits.
const (
	DefaultBoardSize = 8
	MinBoardSize     = 3
	MaxBoardSize     = 10
)

// Player identifies a side. None doubles as the empty cell value.
type Player int

const (
	None Player = iota
	Player1
	Player2
)

// Valid reports whether p is one of the two seated players.
func (p Player) Valid() bool {
	return p == Player1 || p == Player2
}

// Opponent returns the other player. None has no opponent.
func (p Player) Opponent() Player {
	switch p {
	case Player1:
		return Player2
	case Player2:
		return Player1
	default:
		return None
	}
}

// String returns a human-readable name for the player.
func (p Player) String() string {
	switch p {
	case Player1:
		return "Player 1"
	case Player2:
		return "Player 2"
	default:
		return "None"
	}
}

// Position is a board coordinate. It does not have to be normalized;
// board lookups wrap it onto the torus.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Pos is shorthand for Position{X: x, Y: y}.
func Pos(x, y int) Position {
	return Position{X: x, Y: y}
}

// Size is the board dimensions.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DefaultSize returns the standard 8x8 board.
func DefaultSize() Size {
	return Size{Width: DefaultBoardSize, Height: DefaultBoardSize}
}

// Validate checks that both sides are within [MinBoardSize, MaxBoardSize].
func (s Size) Validate() error {
	if s.Width < MinBoardSize || s.Width > MaxBoardSize ||
		s.Height < MinBoardSize || s.Height > MaxBoardSize {
		return fmt.Errorf("engine: board size %dx%d outside %d..%d",
			s.Width, s.Height, MinBoardSize, MaxBoardSize)
	}
	return nil
}

// Area returns the number of cells.
func (s Size) Area() int {
	return s.Width * s.Height
}

// Normalize wraps p onto the board.
func (s Size) Normalize(p Position) Position {
	return Position{X: wrap(p.X, s.Width), Y: wrap(p.Y, s.Height)}
}

func wrap(v, n int) int {
	return ((v % n) + n) % n
}

// neighbourOffsets lists the Moore neighbourhood in row-major order:
// NW, N, NE, W, E, SW, S, SE.
var neighbourOffsets = [8]Position{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// AdjacentPositions returns the eight toroidally wrapped neighbours of p
// in the fixed order NW, N, NE, W, E, SW, S, SE.
func AdjacentPositions(p Position, size Size) [8]Position {
	var out [8]Position
	for i, d := range neighbourOffsets {
		out[i] = size.Normalize(Position{X: p.X + d.X, Y: p.Y + d.Y})
	}
	return out
}

// Board is a fixed-size toroidal grid. Cells is indexed [y][x].
//
// Board values share their cell storage when copied. Mutating helpers
// (SetCell) always return a fresh copy, so a Board obtained from a
// GameState can be treated as immutable.
type Board struct {
	Size  Size       `json:"size"`
	Cells [][]Player `json:"cells"`
}

// NewBoard creates a board with every cell empty.
func NewBoard(size Size) Board {
	cells := make([][]Player, size.Height)
	for y := range cells {
		cells[y] = make([]Player, size.Width)
	}
	return Board{Size: size, Cells: cells}
}

// Cell returns the value at p after wrapping it onto the board.
func (b Board) Cell(p Position) Player {
	p = b.Size.Normalize(p)
	return b.Cells[p.Y][p.X]
}

// SetCell returns a copy of the board with the cell at p set to v.
// The receiver is left untouched.
func (b Board) SetCell(p Position, v Player) Board {
	out := b.Clone()
	p = b.Size.Normalize(p)
	out.Cells[p.Y][p.X] = v
	return out
}

// Clone returns a deep copy of the board.
func (b Board) Clone() Board {
	cells := make([][]Player, len(b.Cells))
	for y, row := range b.Cells {
		cells[y] = append([]Player(nil), row...)
	}
	return Board{Size: b.Size, Cells: cells}
}

// Count returns the number of cells holding v.
func (b Board) Count(v Player) int {
	n := 0
	for _, row := range b.Cells {
		for _, c := range row {
			if c == v {
				n++
			}
		}
	}
	return n
}

// Full reports whether no empty cell remains.
func (b Board) Full() bool {
	return b.Count(None) == 0
}

// Equal reports whether two boards have the same size and contents.
func (b Board) Equal(o Board) bool {
	if b.Size != o.Size || len(b.Cells) != len(o.Cells) {
		return false
	}
	for y := range b.Cells {
		if len(b.Cells[y]) != len(o.Cells[y]) {
			return false
		}
		for x := range b.Cells[y] {
			if b.Cells[y][x] != o.Cells[y][x] {
				return false
			}
		}
	}
	return true
}

// AdjacentOf returns the neighbours of p that hold color, in neighbour order.
func (b Board) AdjacentOf(p Position, color Player) []Position {
	var out []Position
	for _, n := range AdjacentPositions(p, b.Size) {
		if b.Cells[n.Y][n.X] == color {
			out = append(out, n)
		}
	}
	return out
}

// wellFormed reports whether the cell matrix matches the declared size.
func (b Board) wellFormed() bool {
	if len(b.Cells) != b.Size.Height {
		return false
	}
	for _, row := range b.Cells {
		if len(row) != b.Size.Width {
			return false
		}
		for _, c := range row {
			if c != None && !c.Valid() {
				return false
			}
		}
	}
	return true
}
