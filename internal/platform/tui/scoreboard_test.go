package tui

import (
	"testing"
	"time"

	"github.com/vovakirdan/ctor/internal/engine"
	"github.com/vovakirdan/ctor/internal/multiplayer"
)

func TestScoreboardViewsAndSelection(t *testing.T) {
	store := openTestStore(t)
	now := time.Now()
	for i, id := range []string{"11111111-1111-4111-8111-111111111111", "22222222-2222-4222-8222-222222222222"} {
		rec := multiplayer.GameRecord{
			ID:         id,
			Player1:    "alice",
			Player2:    "bob",
			Size:       engine.DefaultSize(),
			Status:     multiplayer.StatusFinished,
			Winner:     engine.Player1,
			EndReason:  multiplayer.EndCompleted,
			CreatedAt:  now.Add(time.Duration(i) * time.Minute),
			FinishedAt: now.Add(time.Duration(i)*time.Minute + time.Second),
		}
		if err := store.SaveGame(rec); err != nil {
			t.Fatalf("SaveGame() failed: %v", err)
		}
	}

	m := NewScoreboardModel(store, 100, 30)
	if len(m.games) != 2 || len(m.table.Rows()) != 2 {
		t.Fatalf("loaded %d games, %d rows", len(m.games), len(m.table.Rows()))
	}

	m = press(t, m, "tab")
	if m.current() != ViewStandings {
		t.Fatalf("view = %v, expected standings", m.current())
	}
	if len(m.standings) != 2 || len(m.table.Rows()) != 2 {
		t.Errorf("standings %d rows %d, expected both players", len(m.standings), len(m.table.Rows()))
	}

	// Enter does nothing on the standings page.
	m = press(t, m, "enter")
	if m.Selected() != nil {
		t.Error("standings row was selected for replay")
	}

	m = press(t, m, "tab", "down", "enter")
	sel := m.Selected()
	if sel == nil {
		t.Fatal("no game selected")
	}
	if sel.ID != "11111111-1111-4111-8111-111111111111" {
		t.Errorf("selected %s, expected the older game on the second row", sel.ID)
	}
}

func TestScoreboardWithoutStore(t *testing.T) {
	m := NewScoreboardModel(nil, 60, 20)
	if m.showSidebar {
		t.Error("narrow window shows the sidebar")
	}
	m = press(t, m, "esc")
	if !m.IsGoingBack() {
		t.Error("esc should go back")
	}
}
