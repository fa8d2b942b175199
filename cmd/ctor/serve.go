package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/ctor/internal/multiplayer"
	"github.com/vovakirdan/ctor/internal/platform/tui"
	"github.com/vovakirdan/ctor/internal/server"
)

var (
	flagHTTPAddr    string
	flagSSHAddr     string
	flagNoSSH       bool
	flagHostKey     string
	flagIdleTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the CTOR servers",
	Long: `Start the HTTP/WebSocket server and the SSH server. Both share one
game coordinator, so a browser client and an SSH player can meet in the
same game. Finished games are archived to the history database.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.ctor/host_key

Examples:
  ctor serve                          # HTTP on :3000, SSH on :23234
  ctor serve --http :8080 --no-ssh    # WebSocket clients only
  ctor serve --preset blitz           # 15 second turn clock

Players can connect with:
  ssh localhost -p 23234`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagHTTPAddr, "http", "", "HTTP server address (overrides config)")
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (overrides config)")
	serveCmd.Flags().BoolVar(&flagNoSSH, "no-ssh", false, "Do not start the SSH server")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().DurationVar(&flagIdleTimeout, "idle-timeout", 0, "SSH idle timeout (overrides config)")
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagHTTPAddr != "" {
		cfg.Server.HTTPAddr = flagHTTPAddr
	}
	if flagSSHAddr != "" {
		cfg.Server.SSHAddr = flagSSHAddr
	}
	if flagHostKey != "" {
		cfg.Server.HostKeyPath = flagHostKey
	}
	if flagIdleTimeout > 0 {
		cfg.Server.IdleTimeout = flagIdleTimeout
	}

	logger := newLogger(cfg)
	store := openStore(cfg, logger)
	if store != nil {
		defer store.Close()
	}

	coord := multiplayer.NewCoordinator(
		multiplayer.CoordinatorConfigFrom(cfg),
		multiplayer.NewMemoryStore(),
		multiplayer.NewSessionRegistry(),
		logger.WithPrefix("coordinator"),
	)
	var history server.History
	if store != nil {
		coord.SetArchive(store)
		history = store
	}
	coord.Start()
	defer coord.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errs := make(chan error, 2)

	httpSrv := server.New(coord, history, server.OptionsFrom(cfg), logger.WithPrefix("http"))
	go func() {
		errs <- httpSrv.ListenAndServe()
	}()

	var sshSrv *tui.SSHServer
	if !flagNoSSH {
		deps := tui.SessionDeps{
			Coord: coord,
			Store: store,
			Local: tui.LocalOptions{
				Size:        cfg.BoardSize(),
				Rules:       cfg.EngineRules(),
				AutoEndTurn: cfg.Rules.AutoEndTurn,
			},
			ReplayInterval: cfg.Replay.PlaybackInterval,
			Logger:         logger,
		}
		sshSrv, err = tui.NewSSHServer(tui.SSHServerConfigFrom(cfg), deps)
		if err != nil {
			return err
		}
		go func() {
			errs <- sshSrv.ListenAndServe()
		}()
		logger.Info("connect with ssh", "address", sshSrv.Addr())
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down...")
	case err := <-errs:
		if err != nil {
			logger.Error("server error", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var firstErr error
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		firstErr = fmt.Errorf("http shutdown: %w", err)
	}
	if sshSrv != nil {
		if err := sshSrv.Shutdown(shutdownCtx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("ssh shutdown: %w", err)
		}
	}
	return firstErr
}
