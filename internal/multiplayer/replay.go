package multiplayer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vovakirdan/ctor/internal/engine"
)

// ErrReplayRange is returned for a move index outside the replay.
var ErrReplayRange = errors.New("replay: move index out of range")

// Playback speed limits, as multiples of the base interval.
const (
	MinPlaybackSpeed = 0.25
	MaxPlaybackSpeed = 8
)

// Replay is a cursor over an archived game. States are rebuilt by running
// every archived move through the engine, so a replay shows exactly what
// the players saw. Safe for concurrent use.
type Replay struct {
	gameID string
	moves  []engine.Move
	states []engine.GameState // states[i] is the board after i moves
	base   time.Duration

	mu      sync.Mutex
	index   int
	playing bool
	speed   float64
}

// NewReplay rebuilds a game of the given size from its move log. base is
// the playback interval at speed 1.
func NewReplay(eng *engine.Engine, gameID string, size engine.Size, moves []engine.Move, base time.Duration) (*Replay, error) {
	state, err := eng.CreateInitialState(size)
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}
	states := make([]engine.GameState, 0, len(moves)+1)
	states = append(states, state)
	for i, m := range moves {
		state, err = eng.ApplyMove(state, m, m.Player)
		if err != nil {
			return nil, fmt.Errorf("replay: move %d: %w", i+1, err)
		}
		states = append(states, state)
	}
	if base <= 0 {
		base = time.Second
	}
	return &Replay{
		gameID: gameID,
		moves:  moves,
		states: states,
		base:   base,
		speed:  1,
	}, nil
}

// ReplayRecord rebuilds an archived game under the rules it was played
// with. Zero rule fields mean the defaults.
func ReplayRecord(rec GameRecord, moves []engine.Move, base time.Duration) (*Replay, error) {
	return NewReplay(engine.New(rec.Rules), rec.ID, rec.Size, moves, base)
}

// GameID returns the replayed game.
func (r *Replay) GameID() string {
	return r.gameID
}

// Total returns the number of moves.
func (r *Replay) Total() int {
	return len(r.moves)
}

// Index returns how many moves have been applied at the cursor.
func (r *Replay) Index() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.index
}

// State returns the game state at the cursor.
func (r *Replay) State() engine.GameState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.states[r.index]
}

// Move returns the move that led to the cursor, if any.
func (r *Replay) Move() (engine.Move, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.index == 0 {
		return engine.Move{}, false
	}
	return r.moves[r.index-1], true
}

// Next advances one move. It reports false at the end.
func (r *Replay) Next() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.index >= len(r.moves) {
		r.playing = false
		return false
	}
	r.index++
	return true
}

// Prev steps back one move. It reports false at the start.
func (r *Replay) Prev() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.index == 0 {
		return false
	}
	r.index--
	return true
}

// Goto moves the cursor to after move i (0 is the empty board).
func (r *Replay) Goto(i int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i < 0 || i > len(r.moves) {
		return fmt.Errorf("%w: %d of %d", ErrReplayRange, i, len(r.moves))
	}
	r.index = i
	return nil
}

// Done reports whether the cursor is at the last move.
func (r *Replay) Done() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.index >= len(r.moves)
}

// Play starts playback; a finished replay restarts from the beginning.
func (r *Replay) Play() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.index >= len(r.moves) {
		r.index = 0
	}
	r.playing = true
}

// Pause stops playback.
func (r *Replay) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.playing = false
}

// Playing reports whether playback is running.
func (r *Replay) Playing() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.playing
}

// SetSpeed sets the playback speed multiplier.
func (r *Replay) SetSpeed(speed float64) error {
	if speed < MinPlaybackSpeed || speed > MaxPlaybackSpeed {
		return fmt.Errorf("replay: speed %v outside %v..%v", speed, MinPlaybackSpeed, MaxPlaybackSpeed)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.speed = speed
	return nil
}

// Speed returns the playback speed multiplier.
func (r *Replay) Speed() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.speed
}

// Interval is the delay between moves at the current speed.
func (r *Replay) Interval() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	return time.Duration(float64(r.base) / r.speed)
}
