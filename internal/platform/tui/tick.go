// Package tui is the Bubble Tea client: a hot-seat board, online play
// against the in-process coordinator, the history scoreboard, a replay
// viewer and the SSH server that hosts them.
package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// ClockMsg refreshes the turn clock of an online game.
type ClockMsg time.Time

// clockCmd schedules the next turn clock refresh.
func clockCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return ClockMsg(t)
	})
}

// ReplayTickMsg advances a playing replay. Seq discards ticks scheduled
// before the last pause or speed change.
type ReplayTickMsg struct {
	Seq int
}

func replayTickCmd(interval time.Duration, seq int) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return ReplayTickMsg{Seq: seq}
	})
}
