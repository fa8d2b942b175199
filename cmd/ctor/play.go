package main

import (
	"github.com/spf13/cobra"

	"github.com/vovakirdan/ctor/internal/platform/tui"
)

var (
	flagWidth  int
	flagHeight int
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a hot-seat game",
	Long: `Start a two-player game in this terminal. Players take turns at the
same keyboard; Red moves first with a single placement, every later turn
has two.

Controls:
  Arrows/WASD  - Move the cursor (wraps around the edges)
  Enter/Space  - Place a piece
  E            - End the turn
  H            - Highlight cells that can be captured
  R            - New game
  Q/Ctrl+C     - Quit

The finished game is archived and can be watched with 'ctor replay'.

Examples:
  ctor play
  ctor play --width 6 --height 6
  ctor play --preset quick`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().IntVar(&flagWidth, "width", 0, "Board width, 3..10 (overrides config)")
	playCmd.Flags().IntVar(&flagHeight, "height", 0, "Board height, 3..10 (overrides config)")
}

func runPlay(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagWidth > 0 {
		cfg.Board.Width = flagWidth
	}
	if flagHeight > 0 {
		cfg.Board.Height = flagHeight
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(cfg)
	store := openStore(cfg, logger)
	if store != nil {
		defer store.Close()
	}

	width, height := terminalSize()
	opts := tui.LocalOptions{
		Size:        cfg.BoardSize(),
		Rules:       cfg.EngineRules(),
		AutoEndTurn: cfg.Rules.AutoEndTurn,
	}
	return tui.RunLocal(opts, store, logger, width, height)
}
