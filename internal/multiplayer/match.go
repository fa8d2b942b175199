package multiplayer

import (
	"time"

	"github.com/vovakirdan/ctor/internal/engine"
)

// match holds the timers of a running game. The game itself lives in the
// GameStore; timers re-read it under the game lock when they fire.
type match struct {
	turnTimer       *time.Timer
	reconnectTimers [2]*time.Timer
}

func (m *match) stop() {
	if m.turnTimer != nil {
		m.turnTimer.Stop()
		m.turnTimer = nil
	}
	for i, t := range m.reconnectTimers {
		if t != nil {
			t.Stop()
			m.reconnectTimers[i] = nil
		}
	}
}

// matchFor returns the timers of a game. Must be called with c.mu held.
func (c *Coordinator) matchFor(gameID string) *match {
	m, ok := c.matches[gameID]
	if !ok {
		m = &match{}
		c.matches[gameID] = m
	}
	return m
}

// armTurnTimer (re)starts the turn clock for the game's current turn.
func (c *Coordinator) armTurnTimer(g Game) {
	if c.config.TurnTimeout <= 0 || g.TurnDeadline.IsZero() {
		return
	}
	id, seq := g.ID, g.TurnSeq
	d := g.TurnDeadline.Sub(c.now())

	c.mu.Lock()
	defer c.mu.Unlock()
	select {
	case <-c.done:
		return
	default:
	}
	m := c.matchFor(id)
	if m.turnTimer != nil {
		m.turnTimer.Stop()
	}
	m.turnTimer = time.AfterFunc(d, func() {
		c.turnTimedOut(id, seq)
	})
}

// turnTimedOut ends the turn on behalf of a player who ran out of time,
// unless the turn already moved on.
func (c *Coordinator) turnTimedOut(gameID string, seq int) {
	unlock := c.store.Lock(gameID)
	g, err := c.store.Get(gameID)
	if err != nil || g.Status != StatusPlaying || g.TurnSeq != seq {
		unlock()
		return
	}

	player := g.State.CurrentPlayer
	end := engine.EndTurn(player)
	end.Timestamp = c.now().UnixMilli()
	res, err := c.apply(&g, end, player)
	if err != nil {
		unlock()
		c.log.Error("turn timeout failed", "game", gameID, "player", player, "error", err)
		return
	}
	err = c.store.Put(g, c.ttlFor(g))
	unlock()
	if err != nil {
		return
	}

	c.log.Info("turn timed out", "game", gameID, "player", player)
	c.afterMoves(g, res)
}

// armReconnectTimer forfeits the seat of player unless it is reclaimed
// within the reconnect timeout.
func (c *Coordinator) armReconnectTimer(gameID string, player engine.Player, since time.Time) {
	if c.config.ReconnectTimeout <= 0 {
		c.forfeit(gameID, player, since)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	select {
	case <-c.done:
		return
	default:
	}
	m := c.matchFor(gameID)
	i := int(player) - 1
	if m.reconnectTimers[i] != nil {
		m.reconnectTimers[i].Stop()
	}
	m.reconnectTimers[i] = time.AfterFunc(c.config.ReconnectTimeout, func() {
		c.forfeit(gameID, player, since)
	})
}

func (c *Coordinator) stopReconnectTimer(gameID string, player engine.Player) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.matches[gameID]
	if !ok {
		return
	}
	i := int(player) - 1
	if m.reconnectTimers[i] != nil {
		m.reconnectTimers[i].Stop()
		m.reconnectTimers[i] = nil
	}
}
