package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/ctor/internal/multiplayer"
	"github.com/vovakirdan/ctor/internal/storage"
)

var (
	flagLimit  int
	flagPlayer string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recently archived games",
	Long: `Shows the most recently finished games from the history database.

Examples:
  ctor list
  ctor list --limit 50
  ctor list --player alice`,
	RunE: runList,
}

func init() {
	listCmd.Flags().IntVar(&flagLimit, "limit", 20, "Number of games to show")
	listCmd.Flags().StringVar(&flagPlayer, "player", "", "Only games of this player id")
}

// errNoHistory is returned by commands that need the history database.
var errNoHistory = errors.New("history database unavailable")

func openHistory() (*storage.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	store := openStore(cfg, newLogger(cfg))
	if store == nil {
		return nil, errNoHistory
	}
	return store, nil
}

func runList(_ *cobra.Command, _ []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	var games []multiplayer.GameRecord
	if flagPlayer != "" {
		games, err = store.PlayerGames(flagPlayer, flagLimit)
	} else {
		games, err = store.RecentGames(flagLimit)
	}
	if err != nil {
		return fmt.Errorf("retrieving games: %w", err)
	}

	if len(games) == 0 {
		fmt.Println("No games archived yet.")
		fmt.Println()
		fmt.Println("Run 'ctor play' to play one.")
		return nil
	}

	fmt.Printf("  %-36s  %-16s  %-12s  %-12s  %-5s  %-10s  %s\n",
		"ID", "Finished", "Red", "Blue", "Score", "Result", "Moves")
	fmt.Printf("  %-36s  %-16s  %-12s  %-12s  %-5s  %-10s  %s\n",
		"--", "--------", "---", "----", "-----", "------", "-----")
	for _, g := range games {
		fmt.Printf("  %-36s  %-16s  %-12s  %-12s  %-5s  %-10s  %d\n",
			g.ID,
			g.FinishedAt.Format("2006-01-02 15:04"),
			g.Player1,
			g.Player2,
			fmt.Sprintf("%d:%d", g.Scores.Player1, g.Scores.Player2),
			result(g),
			g.MoveCount,
		)
	}

	fmt.Println()
	fmt.Println("Run 'ctor replay <id>' to watch a game.")
	return nil
}

func result(g multiplayer.GameRecord) string {
	id := g.WinnerID()
	switch {
	case id == "":
		return "draw"
	case g.EndReason == multiplayer.EndDisconnect:
		return id + " (ff)"
	}
	return id
}
