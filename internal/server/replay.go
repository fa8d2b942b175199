package server

import (
	"fmt"
	"time"

	"github.com/vovakirdan/ctor/internal/multiplayer"
)

// Replay events. Each carries the cursor after the operation.
type (
	replayStateEvent     replayView
	replayPausedEvent    replayView
	replayResumedEvent   replayView
	replayCompletedEvent replayView
)

func (replayStateEvent) Name() string     { return "REPLAY_STATE_UPDATED" }
func (replayPausedEvent) Name() string    { return "REPLAY_PAUSED" }
func (replayResumedEvent) Name() string   { return "REPLAY_RESUMED" }
func (replayCompletedEvent) Name() string { return "REPLAY_COMPLETED" }

type replayErrorEvent struct {
	GameID  string                `json:"gameId,omitempty"`
	Code    multiplayer.ErrorCode `json:"code"`
	Message string                `json:"message"`
}

func (replayErrorEvent) Name() string { return "REPLAY_ERROR" }

type startReplayRequest struct {
	GameID string `json:"gameId"`
	Paused bool   `json:"paused"`
}

// playback is a connection's replay and the goroutine advancing it.
type playback struct {
	replay *multiplayer.Replay
	stop   chan struct{}
}

func (cl *client) current() *playback {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return cl.replay
}

// startReplay replaces any running replay with gameID.
func (cl *client) startReplay(data startReplayRequest) {
	r, err := cl.srv.loadReplay(data.GameID)
	if err != nil {
		cl.replayError(data.GameID, err)
		return
	}

	cl.endReplay()
	p := &playback{replay: r, stop: make(chan struct{})}
	cl.mu.Lock()
	cl.replay = p
	cl.mu.Unlock()

	if !data.Paused {
		r.Play()
	}
	cl.log.Debug("replay started", "game", data.GameID, "moves", r.Total())
	cl.session.Send(replayStateEvent(viewOf(r)))
	go cl.play(p)
}

// play advances the replay while it is playing. The interval is re-read
// every step so speed changes apply to the next move.
func (cl *client) play(p *playback) {
	r := p.replay
	for {
		timer := time.NewTimer(r.Interval())
		select {
		case <-p.stop:
			timer.Stop()
			return
		case <-cl.session.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		if !r.Playing() {
			continue
		}
		if !r.Next() {
			cl.session.Send(replayCompletedEvent(viewOf(r)))
			continue
		}
		cl.session.Send(replayStateEvent(viewOf(r)))
		if r.Done() {
			r.Pause()
			cl.session.Send(replayCompletedEvent(viewOf(r)))
		}
	}
}

func (cl *client) controlReplay(env envelope) {
	p := cl.current()
	if p == nil {
		cl.session.Send(replayErrorEvent{
			Code:    multiplayer.CodeInvalidState,
			Message: "no active replay",
		})
		return
	}
	r := p.replay

	switch env.Event {
	case evPauseReplay:
		r.Pause()
		cl.session.Send(replayPausedEvent(viewOf(r)))
		return
	case evResumeReplay:
		r.Play()
		cl.session.Send(replayResumedEvent(viewOf(r)))
		return
	case evNextMove:
		if !r.Next() {
			cl.session.Send(replayCompletedEvent(viewOf(r)))
			return
		}
	case evPrevMove:
		r.Prev()
	case evGotoMove:
		var req gotoRequest
		if err := decode(env, &req); err != nil {
			cl.replayError(r.GameID(), err)
			return
		}
		if err := r.Goto(req.Move); err != nil {
			cl.replayError(r.GameID(), fmt.Errorf("%w: %w", multiplayer.ErrInvalidEvent, err))
			return
		}
	case evSetPlaybackSpeed:
		var req speedRequest
		if err := decode(env, &req); err != nil {
			cl.replayError(r.GameID(), err)
			return
		}
		if err := r.SetSpeed(req.Speed); err != nil {
			cl.replayError(r.GameID(), fmt.Errorf("%w: %w", multiplayer.ErrInvalidEvent, err))
			return
		}
	}

	cl.session.Send(replayStateEvent(viewOf(r)))
	if env.Event == evNextMove && r.Done() {
		cl.session.Send(replayCompletedEvent(viewOf(r)))
	}
}

// endReplay stops the connection's replay, if any.
func (cl *client) endReplay() {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	if cl.replay != nil {
		close(cl.replay.stop)
		cl.replay = nil
	}
}

func (cl *client) replayError(gameID string, err error) {
	cl.session.Send(replayErrorEvent{
		GameID:  gameID,
		Code:    multiplayer.CodeFor(err),
		Message: err.Error(),
	})
}
