package engine

// MoveType distinguishes board mutations from control moves.
type MoveType string

const (
	// MovePlace puts a piece on an empty cell and uses one operation.
	MovePlace MoveType = "place"
	// MoveReplace explicitly captures an opponent cell that already
	// satisfies the capture threshold for the mover.
	MoveReplace MoveType = "replace"
	// MoveEndTurn hands the turn to the opponent.
	MoveEndTurn MoveType = "end_turn"
)

// NeedsPosition reports whether moves of this type target a cell.
func (t MoveType) NeedsPosition() bool {
	return t == MovePlace || t == MoveReplace
}

// Move is a single player action. Timestamp is unix milliseconds.
type Move struct {
	Type      MoveType  `json:"type"`
	Position  *Position `json:"position,omitempty"`
	Player    Player    `json:"player"`
	Timestamp int64     `json:"timestamp"`
}

// PlaceAt builds a placement move.
func PlaceAt(p Player, x, y int) Move {
	pos := Pos(x, y)
	return Move{Type: MovePlace, Position: &pos, Player: p}
}

// ReplaceAt builds an explicit capture move.
func ReplaceAt(p Player, x, y int) Move {
	pos := Pos(x, y)
	return Move{Type: MoveReplace, Position: &pos, Player: p}
}

// EndTurn builds an end-of-turn move.
func EndTurn(p Player) Move {
	return Move{Type: MoveEndTurn, Player: p}
}
