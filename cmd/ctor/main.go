// ctor is the CTOR game: a two-player territory game on a toroidal board,
// played in the terminal, over SSH or through the WebSocket server.
//
// Usage:
//
//	ctor serve               - Start the HTTP/WebSocket and SSH servers
//	ctor play                - Play a hot-seat game in this terminal
//	ctor menu                - Start the interactive menu
//	ctor list                - List recently archived games
//	ctor scores              - Show player standings
//	ctor replay <game-id>    - Print an archived game at a move
//
// Global flags:
//
//	--config <path>     - Config file (default: ~/.ctor/configs/ctor.yaml)
//	--db <path>         - History database path
//	--log-level <lvl>   - debug, info, warn or error
//	--preset <name>     - Rule preset: classic, quick, blitz, marathon
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/ctor/internal/config"
	"github.com/vovakirdan/ctor/internal/storage"
)

var (
	// Global flags
	flagConfig   string
	flagDBPath   string
	flagLogLevel string
	flagPreset   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ctor",
	Short: "CTOR - capture the torus",
	Long: `CTOR is a two-player game on a board whose edges wrap around.
Players place pieces; a cell surrounded by five or more opponent pieces
changes hands. The player holding more cells when the board fills wins.

Available commands:
  serve    - Start the HTTP/WebSocket and SSH servers
  play     - Hot-seat game in this terminal
  menu     - Interactive menu
  list     - Recently archived games
  scores   - Player standings
  replay   - Print an archived game

Examples:
  ctor play
  ctor play --width 6 --height 6
  ctor serve --http :3000 --ssh :2222
  ctor replay 5b0c8f7e-3c1a-4d2e-9f6b-1a2b3c4d5e6f --move 12`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to history database (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagPreset, "preset", "", "Rule preset: classic, quick, blitz, marathon")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(replayCmd)
}

// loadConfig loads the config file and applies the global flags.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	preset, err := config.ParsePreset(flagPreset)
	if err != nil {
		return cfg, err
	}
	config.ApplyPreset(&cfg, preset)
	if flagDBPath != "" {
		cfg.Server.DBPath = flagDBPath
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}
	return cfg, cfg.Validate()
}

// newLogger builds the process logger at the configured level.
func newLogger(cfg config.Config) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "ctor",
	})
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		logger.Warn("unknown log level, using info", "level", cfg.Log.Level)
		level = log.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// openStore opens the history database. Terminal commands keep working
// without it, so failures are logged and a nil store returned.
func openStore(cfg config.Config, logger *log.Logger) *storage.Store {
	store, err := storage.Open(cfg.Server.DBPath)
	if err != nil {
		logger.Warn("could not open history database", "path", cfg.Server.DBPath, "error", err)
		return nil
	}
	return store
}

// terminalSize returns the size of stdout, or 80x24.
func terminalSize() (int, int) {
	width, height := 80, 24
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width, height = w, h
	}
	return width, height
}
