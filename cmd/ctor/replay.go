package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/ctor/internal/engine"
	"github.com/vovakirdan/ctor/internal/platform/tui"
)

var (
	flagMove  int
	flagWatch bool
)

var replayCmd = &cobra.Command{
	Use:   "replay <game-id>",
	Short: "Print or watch an archived game",
	Long: `Rebuild an archived game from its move log and print the board after
a given move (the final position by default). With --watch the game opens
in the interactive replay viewer instead.

Examples:
  ctor replay 5b0c8f7e-3c1a-4d2e-9f6b-1a2b3c4d5e6f
  ctor replay 5b0c8f7e-3c1a-4d2e-9f6b-1a2b3c4d5e6f --move 3
  ctor replay 5b0c8f7e-3c1a-4d2e-9f6b-1a2b3c4d5e6f --watch`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().IntVar(&flagMove, "move", -1, "Show the board after this many moves (default: last)")
	replayCmd.Flags().BoolVar(&flagWatch, "watch", false, "Open the interactive viewer")
}

func runReplay(_ *cobra.Command, args []string) error {
	id, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid game id %q", args[0])
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store := openStore(cfg, newLogger(cfg))
	if store == nil {
		return errNoHistory
	}
	defer store.Close()

	rec, err := store.GameByID(id.String())
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("game %s not found", id)
	}

	r, err := tui.OpenReplay(store, *rec, cfg.Replay.PlaybackInterval)
	if err != nil {
		return err
	}

	if flagWatch {
		width, height := terminalSize()
		return tui.RunReplay(r, *rec, width, height)
	}

	move := flagMove
	if move < 0 {
		move = r.Total()
	}
	if err := r.Goto(move); err != nil {
		return err
	}

	state := r.State()
	fmt.Printf("Game %s  %s (Red) vs %s (Blue)\n", rec.ID, rec.Player1, rec.Player2)
	fmt.Printf("Move %d/%d  Red %d : %d Blue\n", r.Index(), r.Total(), state.Scores.Player1, state.Scores.Player2)
	fmt.Println()

	var last *engine.Position
	if m, ok := r.Move(); ok {
		last = m.Position
	}
	fmt.Println(tui.BoardText(state, last))

	if state.GameOver {
		fmt.Println()
		switch state.Winner {
		case engine.None:
			fmt.Println("Result: draw")
		default:
			fmt.Printf("Result: %s wins\n", rec.WinnerID())
		}
	}
	return nil
}
