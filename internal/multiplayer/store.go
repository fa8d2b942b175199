package multiplayer

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// GameStore holds live games. Every read-modify-write of a game must happen
// between Lock and the returned unlock func.
type GameStore interface {
	// Put inserts or replaces a game and resets its expiry to now+ttl.
	Put(g Game, ttl time.Duration) error
	// Get returns a live game by id.
	Get(id string) (Game, error)
	// GetByCode returns a live game by join code.
	GetByCode(code string) (Game, error)
	// CodeInUse reports whether a join code belongs to a live game.
	CodeInUse(code string) bool
	// Delete removes a game. The caller holds the game's lock.
	Delete(id string)
	// Lock acquires the per-game lock.
	Lock(id string) (unlock func())
	// List returns all live games ordered by creation time.
	List() []Game
	// Sweep removes and returns games whose expiry is before now. Each game
	// is removed under its lock, so a game written back by a lock holder
	// with a fresh ttl survives. The caller must not hold any game lock.
	Sweep(now time.Time) []Game
}

type storedGame struct {
	game      Game
	expiresAt time.Time
}

// MemoryStore is an in-process GameStore.
type MemoryStore struct {
	now func() time.Time

	mu    sync.RWMutex
	games map[string]*storedGame
	codes map[string]string // code -> game id

	lockMu sync.Mutex
	locks  map[string]*gameLock
}

// gameLock is a per-game mutex shared by every holder and waiter.
type gameLock struct {
	mu   sync.Mutex
	refs int // guarded by MemoryStore.lockMu
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:   time.Now,
		games: make(map[string]*storedGame),
		codes: make(map[string]string),
		locks: make(map[string]*gameLock),
	}
}

// Put stores g. A non-positive ttl never expires.
func (s *MemoryStore) Put(g Game, ttl time.Duration) error {
	var exp time.Time
	if ttl > 0 {
		exp = s.now().Add(ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.games[g.ID] = &storedGame{game: g, expiresAt: exp}
	if g.Code != "" {
		s.codes[g.Code] = g.ID
	}
	return nil
}

func (s *MemoryStore) live(sg *storedGame) bool {
	return sg.expiresAt.IsZero() || s.now().Before(sg.expiresAt)
}

// Get returns a game by id. Expired games are reported as not found even
// before the next sweep.
func (s *MemoryStore) Get(id string) (Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sg, ok := s.games[id]
	if !ok || !s.live(sg) {
		return Game{}, ErrGameNotFound
	}
	return sg.game, nil
}

// GetByCode returns a game by join code, case-insensitively.
func (s *MemoryStore) GetByCode(code string) (Game, error) {
	s.mu.RLock()
	id, ok := s.codes[strings.ToUpper(code)]
	s.mu.RUnlock()
	if !ok {
		return Game{}, ErrGameNotFound
	}
	return s.Get(id)
}

// CodeInUse reports whether code is held by a stored game.
func (s *MemoryStore) CodeInUse(code string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.codes[strings.ToUpper(code)]
	return ok
}

// Delete removes a game and frees its code. The lock entry stays until
// its last holder releases it.
func (s *MemoryStore) Delete(id string) {
	s.mu.Lock()
	s.deleteLocked(id)
	s.mu.Unlock()
}

func (s *MemoryStore) deleteLocked(id string) {
	sg, ok := s.games[id]
	if !ok {
		return
	}
	if s.codes[sg.game.Code] == id {
		delete(s.codes, sg.game.Code)
	}
	delete(s.games, id)
}

// Lock acquires the lock for game id. The game does not need to exist.
// The entry is dropped when nobody holds or waits for it.
func (s *MemoryStore) Lock(id string) func() {
	s.lockMu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &gameLock{}
		s.locks[id] = l
	}
	l.refs++
	s.lockMu.Unlock()

	l.mu.Lock()
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Unlock()
			s.lockMu.Lock()
			l.refs--
			if l.refs == 0 {
				delete(s.locks, id)
			}
			s.lockMu.Unlock()
		})
	}
}

// List returns live games, oldest first.
func (s *MemoryStore) List() []Game {
	s.mu.RLock()
	out := make([]Game, 0, len(s.games))
	for _, sg := range s.games {
		if s.live(sg) {
			out = append(out, sg.game)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Sweep removes expired games and returns them. Expiry is checked again
// under each game's lock.
func (s *MemoryStore) Sweep(now time.Time) []Game {
	s.mu.RLock()
	var ids []string
	for id, sg := range s.games {
		if expiredAt(sg, now) {
			ids = append(ids, id)
		}
	}
	s.mu.RUnlock()

	var expired []Game
	for _, id := range ids {
		unlock := s.Lock(id)
		s.mu.Lock()
		if sg, ok := s.games[id]; ok && expiredAt(sg, now) {
			expired = append(expired, sg.game)
			s.deleteLocked(id)
		}
		s.mu.Unlock()
		unlock()
	}
	return expired
}

func expiredAt(sg *storedGame, now time.Time) bool {
	return !sg.expiresAt.IsZero() && !now.Before(sg.expiresAt)
}

// lockCount returns the number of lock entries in use.
func (s *MemoryStore) lockCount() int {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	return len(s.locks)
}

// Count returns the number of stored games, including expired ones not yet swept.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.games)
}

var _ GameStore = (*MemoryStore)(nil)
