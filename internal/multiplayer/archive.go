package multiplayer

import (
	"time"

	"github.com/vovakirdan/ctor/internal/engine"
)

// Archive records game history. Implementations must be safe for
// concurrent use. The coordinator treats archive failures as non-fatal.
type Archive interface {
	// SaveGame inserts or updates a game header.
	SaveGame(rec GameRecord) error
	// SaveMove appends a move at its sequence number within the game.
	SaveMove(gameID string, seq int, m engine.Move) error
}

// GameRecord is the archived header of a game.
type GameRecord struct {
	ID         string        `json:"id"`
	Code       string        `json:"code"`
	Player1    string        `json:"player1"`
	Player2    string        `json:"player2"`
	Size       engine.Size   `json:"size"`
	Rules      engine.Rules  `json:"rules"`
	Status     GameStatus    `json:"status"`
	Scores     engine.Scores `json:"scores"`
	Winner     engine.Player `json:"winner"`
	EndReason  EndReason     `json:"endReason,omitempty"`
	MoveCount  int           `json:"moveCount"`
	CreatedAt  time.Time     `json:"createdAt"`
	StartedAt  time.Time     `json:"startedAt,omitzero"`
	FinishedAt time.Time     `json:"finishedAt,omitzero"`
	Duration   time.Duration `json:"duration"`
}

// WinnerID returns the player id of the winner, or "" for a draw or an
// unfinished game.
func (r GameRecord) WinnerID() string {
	switch r.Winner {
	case engine.Player1:
		return r.Player1
	case engine.Player2:
		return r.Player2
	}
	return ""
}
