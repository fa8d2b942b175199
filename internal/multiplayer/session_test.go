package multiplayer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelSessionDropsOldest(t *testing.T) {
	s := NewChannelSession("s", 2)
	s.Send(GameExpiredEvent{GameID: "1"})
	s.Send(GameExpiredEvent{GameID: "2"})
	s.Send(GameExpiredEvent{GameID: "3"})

	evts := drain(s)
	require.Len(t, evts, 2)
	assert.Equal(t, "2", evts[0].(GameExpiredEvent).GameID)
	assert.Equal(t, "3", evts[1].(GameExpiredEvent).GameID)
}

func TestChannelSessionClose(t *testing.T) {
	s := NewChannelSession("s", 4)
	s.Close()
	s.Close()
	s.Send(GameExpiredEvent{})

	select {
	case <-s.Done():
	default:
		t.Fatal("Done not closed")
	}
	assert.Empty(t, drain(s))
}

func TestSessionRegistry(t *testing.T) {
	r := NewSessionRegistry()
	s := NewChannelSession(NewSessionID(), 4)
	r.Register(s)
	assert.Equal(t, 1, r.Count())

	assert.True(t, r.Send(s.ID(), ErrorEvent{Code: CodeInternal}))
	assert.Len(t, drain(s), 1)

	r.Unregister(s.ID())
	assert.False(t, r.Send(s.ID(), ErrorEvent{}))
	_, ok := r.Get(s.ID())
	assert.False(t, ok)
}
