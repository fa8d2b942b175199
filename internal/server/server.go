// Package server exposes the coordinator over HTTP: a WebSocket endpoint
// for live play and replays, and a read-only REST API over live games and
// the archive.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/vovakirdan/ctor/internal/config"
	"github.com/vovakirdan/ctor/internal/engine"
	"github.com/vovakirdan/ctor/internal/multiplayer"
	"github.com/vovakirdan/ctor/internal/storage"
)

// History is the read side of the game archive.
type History interface {
	GameByID(id string) (*multiplayer.GameRecord, error)
	RecentGames(limit int) ([]multiplayer.GameRecord, error)
	PlayerGames(playerID string, limit int) ([]multiplayer.GameRecord, error)
	Moves(gameID string) ([]engine.Move, error)
	Standings(limit int) ([]storage.Standing, error)
}

var _ History = (*storage.Store)(nil)

// ErrNoHistory is returned by archive endpoints when no archive is configured.
var ErrNoHistory = errors.New("server: history is not available")

// Options holds transport settings.
type Options struct {
	Addr           string
	ReplayInterval time.Duration // playback delay at speed 1
	EventBuffer    int           // undelivered events per connection
}

// OptionsFrom extracts the server settings from cfg.
func OptionsFrom(cfg config.Config) Options {
	return Options{
		Addr:           cfg.Server.HTTPAddr,
		ReplayInterval: cfg.Replay.PlaybackInterval,
		EventBuffer:    cfg.Session.EventBuffer,
	}
}

// Server serves the HTTP and WebSocket API.
type Server struct {
	opts    Options
	coord   *multiplayer.Coordinator
	history History // Optional, can be nil
	log     *log.Logger
	router  *gin.Engine
	http    *http.Server
}

// New builds a server around a running coordinator. history may be nil, in
// which case archive endpoints answer 503.
func New(coord *multiplayer.Coordinator, history History, opts Options, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if opts.ReplayInterval <= 0 {
		opts.ReplayInterval = time.Second
	}
	if opts.EventBuffer < 1 {
		opts.EventBuffer = 64
	}

	s := &Server{
		opts:    opts,
		coord:   coord,
		history: history,
		log:     logger,
	}
	s.router = s.routes()
	s.http = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(s.log))

	r.GET("/healthz", s.handleHealth)
	r.GET("/ws", s.handleWS)

	api := r.Group("/api")
	api.GET("/games", s.handleListGames)
	api.GET("/games/:id", s.handleGetGame)
	api.GET("/games/:id/moves", s.handleGameMoves)
	api.GET("/games/:id/replay", s.handleReplayAt)
	api.GET("/players/:id/games", s.handlePlayerGames)
	api.GET("/standings", s.handleStandings)
	return r
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on the configured address until Shutdown.
func (s *Server) ListenAndServe() error {
	s.log.Info("http server listening", "addr", s.opts.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests and waits for handlers to return.
// Hijacked WebSocket connections are not waited for.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// requestLogger writes one line per request through the charm logger.
func requestLogger(logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		logger.Info("http request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
