package engine

// Scores holds piece counts. They are always derived from the board.
type Scores struct {
	Player1 int `json:"player1"`
	Player2 int `json:"player2"`
}

// Of returns the score for p.
func (s Scores) Of(p Player) int {
	switch p {
	case Player1:
		return s.Player1
	case Player2:
		return s.Player2
	default:
		return 0
	}
}

// ComputeScores counts the pieces of each color on b.
func ComputeScores(b Board) Scores {
	var s Scores
	for _, row := range b.Cells {
		for _, c := range row {
			switch c {
			case Player1:
				s.Player1++
			case Player2:
				s.Player2++
			}
		}
	}
	return s
}

// Winner returns the player with the strictly higher score, or None on a tie.
func Winner(s Scores) Player {
	switch {
	case s.Player1 > s.Player2:
		return Player1
	case s.Player2 > s.Player1:
		return Player2
	default:
		return None
	}
}
