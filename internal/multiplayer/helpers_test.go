package multiplayer

import (
	"sync"
	"testing"
	"time"

	"github.com/vovakirdan/ctor/internal/engine"
)

// fakeArchive records what the coordinator archives.
type fakeArchive struct {
	mu    sync.Mutex
	games map[string]GameRecord
	moves map[string][]engine.Move
}

func newFakeArchive() *fakeArchive {
	return &fakeArchive{
		games: make(map[string]GameRecord),
		moves: make(map[string][]engine.Move),
	}
}

func (a *fakeArchive) SaveGame(rec GameRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.games[rec.ID] = rec
	return nil
}

func (a *fakeArchive) SaveMove(gameID string, seq int, m engine.Move) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if seq != len(a.moves[gameID])+1 {
		panic("moves archived out of order")
	}
	a.moves[gameID] = append(a.moves[gameID], m)
	return nil
}

func (a *fakeArchive) game(id string) (GameRecord, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	rec, ok := a.games[id]
	return rec, ok
}

func (a *fakeArchive) movesOf(id string) []engine.Move {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]engine.Move(nil), a.moves[id]...)
}

// testClock is a settable clock shared by a coordinator and its store.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type testEnv struct {
	coord    *Coordinator
	store    *MemoryStore
	sessions *SessionRegistry
	archive  *fakeArchive
}

func newTestEnv(t *testing.T, mutate ...func(*CoordinatorConfig)) *testEnv {
	t.Helper()
	cfg := DefaultCoordinatorConfig()
	cfg.TurnTimeout = 0
	for _, m := range mutate {
		m(&cfg)
	}
	env := &testEnv{
		store:    NewMemoryStore(),
		sessions: NewSessionRegistry(),
		archive:  newFakeArchive(),
	}
	env.coord = NewCoordinator(cfg, env.store, env.sessions, nil)
	env.coord.SetArchive(env.archive)
	t.Cleanup(env.coord.Stop)
	return env
}

func (e *testEnv) useClock(c *testClock) {
	e.coord.now = c.Now
	e.store.now = c.Now
}

func (e *testEnv) connect(name string) *ChannelSession {
	s := NewChannelSession(SessionID(name), 64)
	e.sessions.Register(s)
	return s
}

// startGame creates a game as host and joins it as guest.
func (e *testEnv) startGame(t *testing.T, host, guest *ChannelSession) Seated {
	t.Helper()
	created, err := e.coord.CreateGame(host.ID(), "alice", engine.Size{})
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	if _, err := e.coord.JoinGame(guest.ID(), created.Code, "bob"); err != nil {
		t.Fatalf("JoinGame: %v", err)
	}
	drain(host)
	drain(guest)
	return created
}

// drain returns every queued event without blocking.
func drain(s *ChannelSession) []SessionEvent {
	var out []SessionEvent
	for {
		select {
		case evt := <-s.Events():
			out = append(out, evt)
		default:
			return out
		}
	}
}

func eventsOf[T SessionEvent](events []SessionEvent) []T {
	var out []T
	for _, e := range events {
		if v, ok := e.(T); ok {
			out = append(out, v)
		}
	}
	return out
}
