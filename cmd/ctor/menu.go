package main

import (
	"os"
	"os/user"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/ctor/internal/platform/tui"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start the interactive menu",
	Long: `Start CTOR in interactive menu mode: local games, the scoreboard of
archived games and the replay viewer. Online play needs 'ctor serve';
connect to it over SSH to host or join games.

Controls:
  Up/Down/j/k  - Navigate menu
  Enter/Space  - Select
  Q            - Quit

Examples:
  ctor menu
  ctor menu --db ./ctor.db`,
	RunE: runMenu,
}

func runMenu(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	store := openStore(cfg, logger)
	if store != nil {
		defer store.Close()
	}

	deps := tui.SessionDeps{
		Store: store,
		Local: tui.LocalOptions{
			Size:        cfg.BoardSize(),
			Rules:       cfg.EngineRules(),
			AutoEndTurn: cfg.Rules.AutoEndTurn,
		},
		ReplayInterval: cfg.Replay.PlaybackInterval,
		Logger:         logger,
	}
	width, height := terminalSize()
	model := tui.NewSessionModel(deps, localUser(), width, height)

	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}

func localUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return os.Getenv("USER")
}
