package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var flagScoresLimit int

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show player standings",
	Long: `Display wins, losses and draws per player across all archived games.

Examples:
  ctor scores
  ctor scores --limit 5`,
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().IntVar(&flagScoresLimit, "limit", 10, "Number of players to show")
}

func runScores(_ *cobra.Command, _ []string) error {
	store, err := openHistory()
	if err != nil {
		return err
	}
	defer store.Close()

	standings, err := store.Standings(flagScoresLimit)
	if err != nil {
		return fmt.Errorf("retrieving standings: %w", err)
	}

	fmt.Println("Standings")
	fmt.Println()

	if len(standings) == 0 {
		fmt.Println("No games archived yet.")
		return nil
	}

	fmt.Printf("  %-4s  %-20s  %5s  %5s  %6s  %5s\n", "Rank", "Player", "Games", "Wins", "Losses", "Draws")
	fmt.Printf("  %-4s  %-20s  %5s  %5s  %6s  %5s\n", "----", "------", "-----", "----", "------", "-----")
	for i, s := range standings {
		fmt.Printf("  %-4d  %-20s  %5d  %5d  %6d  %5d\n", i+1, s.PlayerID, s.Games, s.Wins, s.Losses, s.Draws)
	}
	return nil
}
