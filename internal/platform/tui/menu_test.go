package tui

import (
	"testing"
	"time"

	"github.com/vovakirdan/ctor/internal/engine"
	"github.com/vovakirdan/ctor/internal/multiplayer"
)

func choices(m MenuModel) []MenuChoice {
	out := make([]MenuChoice, len(m.items))
	for i, it := range m.items {
		out[i] = it.Choice
	}
	return out
}

func TestMenuEntries(t *testing.T) {
	tests := []struct {
		name string
		opts MenuOptions
		want []MenuChoice
	}{
		{"offline", MenuOptions{}, []MenuChoice{ChoiceLocal, ChoiceQuit}},
		{"history", MenuOptions{History: true}, []MenuChoice{ChoiceLocal, ChoiceScoreboard, ChoiceReplay, ChoiceQuit}},
		{"full", MenuOptions{Online: true, History: true}, []MenuChoice{ChoiceLocal, ChoiceHost, ChoiceJoin, ChoiceScoreboard, ChoiceReplay, ChoiceQuit}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := choices(NewMenuModel(tt.opts, 80, 24))
			if len(got) != len(tt.want) {
				t.Fatalf("entries = %v, expected %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("entry %d = %v, expected %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestMenuNavigation(t *testing.T) {
	m := NewMenuModel(MenuOptions{Online: true}, 80, 24)

	m = press(t, m, "up")
	if m.cursor != 0 {
		t.Errorf("cursor moved above the first entry: %d", m.cursor)
	}
	m = press(t, m, "down", "j", "down", "down")
	if m.cursor != len(m.items)-1 {
		t.Errorf("cursor = %d, expected to stop at the last entry", m.cursor)
	}

	m = press(t, NewMenuModel(MenuOptions{Online: true}, 80, 24), "down", "enter")
	if sel := m.Selected(); sel == nil || sel.Choice != ChoiceHost {
		t.Errorf("selected = %+v, expected host", sel)
	}
}

func TestMenuQuitEntry(t *testing.T) {
	m := press(t, NewMenuModel(MenuOptions{}, 80, 24), "down", "enter")
	if !m.IsQuitting() || m.Selected() != nil {
		t.Error("selecting Quit should quit without a selection")
	}
}

func TestSessionLocalRoundTrip(t *testing.T) {
	deps := SessionDeps{Local: LocalOptions{Size: engine.Size{Width: 4, Height: 4}, Rules: engine.DefaultRules()}}
	m := NewSessionModel(deps, "alice", 80, 24)

	m = press(t, m, "enter")
	if m.screen != screenLocal {
		t.Fatalf("screen = %v, expected the local game", m.screen)
	}
	if m.local.State().Board.Size != (engine.Size{Width: 4, Height: 4}) {
		t.Errorf("local game ignored the configured size")
	}

	m = press(t, m, "esc")
	if m.screen != screenMenu {
		t.Errorf("screen = %v, expected the menu after esc", m.screen)
	}
}

func TestSessionReplayWithoutGames(t *testing.T) {
	deps := SessionDeps{Store: openTestStore(t), Local: LocalOptions{Rules: engine.DefaultRules()}}
	m := NewSessionModel(deps, "alice", 80, 24)

	// Local, Scoreboard, Replay, Quit
	m = press(t, m, "down", "down", "enter")
	if m.screen != screenMenu {
		t.Fatalf("screen = %v, expected to stay on the menu", m.screen)
	}
	if m.notice != "No archived games yet." {
		t.Errorf("notice = %q", m.notice)
	}
}

func TestSessionReplayOpensLastGame(t *testing.T) {
	store := openTestStore(t)
	deps := SessionDeps{Store: store, Local: LocalOptions{Rules: engine.DefaultRules()}}

	size := engine.Size{Width: 3, Height: 3}
	moves := []engine.Move{engine.PlaceAt(engine.Player1, 0, 0), engine.EndTurn(engine.Player1)}
	rec := multiplayer.GameRecord{
		ID:        "5b0c8f7e-3c1a-4d2e-9f6b-1a2b3c4d5e6f",
		Player1:   "alice",
		Player2:   "bob",
		Size:      size,
		Status:    multiplayer.StatusFinished,
		CreatedAt: time.Now(),
	}
	if err := store.SaveGameWithMoves(rec, moves); err != nil {
		t.Fatalf("SaveGameWithMoves() failed: %v", err)
	}

	m := press(t, NewSessionModel(deps, "alice", 80, 24), "down", "down", "enter")
	if m.screen != screenReplay {
		t.Fatalf("screen = %v, expected the replay viewer (notice %q)", m.screen, m.notice)
	}
	if got := m.replay.Replay().Total(); got != 2 {
		t.Errorf("replay has %d moves, expected 2", got)
	}
}
