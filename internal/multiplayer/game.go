// Package multiplayer runs live CTOR games between two sessions: seating,
// move handling under a per-game lock, turn clocks, reconnects, expiry and
// replays of archived games.
package multiplayer

import (
	"time"

	"github.com/vovakirdan/ctor/internal/engine"
)

// SessionID uniquely identifies a connected client (WebSocket connection,
// SSH session or local terminal).
type SessionID string

// GameStatus is the lifecycle stage of a live game.
type GameStatus string

const (
	StatusWaiting  GameStatus = "waiting"
	StatusPlaying  GameStatus = "playing"
	StatusFinished GameStatus = "finished"
)

// EndReason describes why a game finished.
type EndReason string

const (
	EndCompleted  EndReason = "completed"
	EndDisconnect EndReason = "disconnect"
	EndExpired    EndReason = "expired"
)

// Seat is one of the two player slots of a game.
type Seat struct {
	// PlayerID is the stable identity recorded in history and standings.
	PlayerID       string    `json:"playerId"`
	Session        SessionID `json:"-"`
	Token          string    `json:"-"`
	Connected      bool      `json:"connected"`
	DisconnectedAt time.Time `json:"-"`
}

// Taken reports whether a player holds the seat.
func (s Seat) Taken() bool {
	return s.PlayerID != ""
}

// Game is a live game as held by a GameStore. Values are copied in and out
// of the store; the engine state is copy-on-write so copies are cheap.
type Game struct {
	ID        string           `json:"id"`
	Code      string           `json:"code"`
	Status    GameStatus       `json:"status"`
	State     engine.GameState `json:"state"`
	Seats     [2]Seat          `json:"seats"`
	EndReason EndReason        `json:"endReason,omitempty"`
	Winner    engine.Player    `json:"winner"`
	// Rules are fixed when the game is created.
	Rules engine.Rules `json:"rules"`

	// TurnSeq increases on every hand-off; stale turn timers compare it.
	TurnSeq int `json:"turnSeq"`
	// MoveSeq counts archived moves, including synthetic end_turn moves.
	MoveSeq      int       `json:"moveSeq"`
	TurnDeadline time.Time `json:"turnDeadline,omitzero"`

	CreatedAt  time.Time `json:"createdAt"`
	StartedAt  time.Time `json:"startedAt,omitzero"`
	UpdatedAt  time.Time `json:"updatedAt"`
	FinishedAt time.Time `json:"finishedAt,omitzero"`
}

// Seat returns the seat of p. p must be Player1 or Player2.
func (g *Game) Seat(p engine.Player) *Seat {
	return &g.Seats[int(p)-1]
}

// PlayerOf returns the seat held by a session, or None.
func (g Game) PlayerOf(id SessionID) engine.Player {
	for i, s := range g.Seats {
		if s.Taken() && s.Session == id {
			return engine.Player(i + 1)
		}
	}
	return engine.None
}

// Sessions returns the sessions of both taken seats.
func (g Game) Sessions() []SessionID {
	out := make([]SessionID, 0, 2)
	for _, s := range g.Seats {
		if s.Taken() && s.Session != "" {
			out = append(out, s.Session)
		}
	}
	return out
}

// Duration is the playing time so far, or of the finished game.
func (g Game) Duration(now time.Time) time.Duration {
	if g.StartedAt.IsZero() {
		return 0
	}
	end := now
	if !g.FinishedAt.IsZero() {
		end = g.FinishedAt
	}
	return end.Sub(g.StartedAt)
}

// Record converts the game to its archive header.
func (g Game) Record(now time.Time) GameRecord {
	return GameRecord{
		ID:         g.ID,
		Code:       g.Code,
		Player1:    g.Seats[0].PlayerID,
		Player2:    g.Seats[1].PlayerID,
		Size:       g.State.Board.Size,
		Rules:      g.Rules,
		Status:     g.Status,
		Scores:     g.State.Scores,
		Winner:     g.Winner,
		EndReason:  g.EndReason,
		MoveCount:  g.State.MoveCount,
		CreatedAt:  g.CreatedAt,
		StartedAt:  g.StartedAt,
		FinishedAt: g.FinishedAt,
		Duration:   g.Duration(now),
	}
}
