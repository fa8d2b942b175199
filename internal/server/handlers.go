package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vovakirdan/ctor/internal/engine"
	"github.com/vovakirdan/ctor/internal/multiplayer"
)

const (
	defaultLimit = 20
	maxLimit     = 200
)

// replayView is a replay cursor position as sent to clients.
type replayView struct {
	GameID   string           `json:"gameId"`
	Move     int              `json:"move"`
	Total    int              `json:"total"`
	State    engine.GameState `json:"gameState"`
	LastMove *engine.Move     `json:"lastMove,omitempty"`
	Playing  bool             `json:"playing"`
	Speed    float64          `json:"speed"`
}

func viewOf(r *multiplayer.Replay) replayView {
	v := replayView{
		GameID:  r.GameID(),
		Move:    r.Index(),
		Total:   r.Total(),
		State:   r.State(),
		Playing: r.Playing(),
		Speed:   r.Speed(),
	}
	if m, ok := r.Move(); ok {
		v.LastMove = &m
	}
	return v
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"games":    len(s.coord.Games()),
		"sessions": s.coord.Sessions().Count(),
		"archive":  s.history != nil,
	})
}

// handleListGames returns live games and, when an archive is configured,
// the most recent archived ones.
func (s *Server) handleListGames(c *gin.Context) {
	limit, err := queryLimit(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	recent := []multiplayer.GameRecord{}
	if s.history != nil {
		recent, err = s.history.RecentGames(limit)
		if err != nil {
			s.fail(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"live":   s.coord.Games(),
		"recent": recent,
	})
}

// handleGetGame prefers the live game and falls back to the archive header.
func (s *Server) handleGetGame(c *gin.Context) {
	id := c.Param("id")
	g, err := s.coord.Game(id)
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"source": "live", "game": g})
		return
	}
	if !errors.Is(err, multiplayer.ErrGameNotFound) {
		s.fail(c, err)
		return
	}

	rec, err := s.archived(id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"source": "archive", "game": rec})
}

func (s *Server) handleGameMoves(c *gin.Context) {
	id := c.Param("id")
	if _, err := s.archived(id); err != nil {
		s.fail(c, err)
		return
	}
	moves, err := s.history.Moves(id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"gameId": id, "moves": moves})
}

// handleReplayAt returns the board after ?move=N, or the final board when
// move is absent.
func (s *Server) handleReplayAt(c *gin.Context) {
	r, err := s.loadReplay(c.Param("id"))
	if err != nil {
		s.fail(c, err)
		return
	}

	n := r.Total()
	if raw := c.Query("move"); raw != "" {
		n, err = strconv.Atoi(raw)
		if err != nil {
			s.fail(c, fmt.Errorf("%w: move %q is not a number", multiplayer.ErrInvalidEvent, raw))
			return
		}
	}
	if err := r.Goto(n); err != nil {
		s.fail(c, fmt.Errorf("%w: %w", multiplayer.ErrInvalidEvent, err))
		return
	}
	c.JSON(http.StatusOK, viewOf(r))
}

func (s *Server) handlePlayerGames(c *gin.Context) {
	limit, err := queryLimit(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	if s.history == nil {
		s.fail(c, ErrNoHistory)
		return
	}
	games, err := s.history.PlayerGames(c.Param("id"), limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	if games == nil {
		games = []multiplayer.GameRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"playerId": c.Param("id"), "games": games})
}

func (s *Server) handleStandings(c *gin.Context) {
	limit, err := queryLimit(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	if s.history == nil {
		s.fail(c, ErrNoHistory)
		return
	}
	standings, err := s.history.Standings(limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"standings": standings})
}

// archived looks up an archive header, mapping a miss to ErrGameNotFound.
func (s *Server) archived(id string) (*multiplayer.GameRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, multiplayer.ErrInvalidGameID
	}
	if s.history == nil {
		return nil, ErrNoHistory
	}
	rec, err := s.history.GameByID(id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, multiplayer.ErrGameNotFound
	}
	return rec, nil
}

// loadReplay rebuilds an archived game for playback.
func (s *Server) loadReplay(id string) (*multiplayer.Replay, error) {
	rec, err := s.archived(id)
	if err != nil {
		return nil, err
	}
	moves, err := s.history.Moves(id)
	if err != nil {
		return nil, err
	}
	return multiplayer.ReplayRecord(*rec, moves, s.opts.ReplayInterval)
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "path", c.Request.URL.Path, "error", err)
	}
	c.JSON(status, multiplayer.NewErrorEvent(err))
}

func statusFor(err error) int {
	if errors.Is(err, ErrNoHistory) {
		return http.StatusServiceUnavailable
	}
	switch multiplayer.CodeFor(err) {
	case multiplayer.CodeInvalidGameID, multiplayer.CodeInvalidGameCode, multiplayer.CodeInvalidEvent:
		return http.StatusBadRequest
	case multiplayer.CodeGameNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func queryLimit(c *gin.Context) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return defaultLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: limit %q", multiplayer.ErrInvalidEvent, raw)
	}
	return min(n, maxLimit), nil
}
