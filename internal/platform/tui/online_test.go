package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/ctor/internal/engine"
	"github.com/vovakirdan/ctor/internal/multiplayer"
)

func newTestCoordinator(t *testing.T) *multiplayer.Coordinator {
	t.Helper()
	cfg := multiplayer.DefaultCoordinatorConfig()
	cfg.Size = engine.Size{Width: 5, Height: 5}
	cfg.TurnTimeout = 0
	cfg.AutoEndTurn = true
	coord := multiplayer.NewCoordinator(cfg, multiplayer.NewMemoryStore(), multiplayer.NewSessionRegistry(), nil)
	coord.Start()
	t.Cleanup(coord.Stop)
	return coord
}

// deliver feeds a command's message back into the model.
func deliver(t *testing.T, m OnlineModel, cmd tea.Cmd) OnlineModel {
	t.Helper()
	next, _ := m.Update(cmd())
	return next.(OnlineModel)
}

// pump applies every event already queued for the model's session.
func pump(t *testing.T, m OnlineModel) OnlineModel {
	t.Helper()
	for {
		select {
		case evt := <-m.session.Events():
			next, _ := m.Update(evt)
			m = next.(OnlineModel)
		default:
			return m
		}
	}
}

func startOnline(t *testing.T, coord *multiplayer.Coordinator) (host, guest OnlineModel) {
	t.Helper()
	host = NewOnlineModel(coord, "alice", false, 80, 24)
	host = deliver(t, host, host.createGame())
	if host.Stage() != OnlineStageHostWaiting || host.code == "" {
		t.Fatalf("host stage %v code %q, message %q", host.Stage(), host.code, host.message)
	}

	guest = NewOnlineModel(coord, "bob", true, 80, 24)
	guest.input.SetValue(host.code)
	next, cmd := guest.Update(keyMsg("enter"))
	guest = next.(OnlineModel)
	if cmd == nil {
		t.Fatal("enter with a code did not issue a join")
	}
	guest = deliver(t, guest, cmd)

	host, guest = pump(t, host), pump(t, guest)
	if host.Stage() != OnlineStagePlaying || guest.Stage() != OnlineStagePlaying {
		t.Fatalf("stages host %v guest %v, expected both playing", host.Stage(), guest.Stage())
	}
	return host, guest
}

func TestOnlineHostAndJoin(t *testing.T) {
	coord := newTestCoordinator(t)
	host, guest := startOnline(t, coord)

	if host.player != engine.Player1 || guest.player != engine.Player2 {
		t.Errorf("seats host %v guest %v", host.player, guest.player)
	}
	if host.GameID() == "" || host.GameID() != guest.GameID() {
		t.Errorf("game ids %q and %q", host.GameID(), guest.GameID())
	}
}

func TestOnlineMovesReachBothSides(t *testing.T) {
	coord := newTestCoordinator(t)
	host, guest := startOnline(t, coord)

	guest = press(t, guest, "enter")
	if guest.message != "Not your turn." {
		t.Errorf("guest message = %q", guest.message)
	}

	host = press(t, host, "enter")
	host, guest = pump(t, host), pump(t, guest)

	center := engine.Pos(2, 2)
	for name, m := range map[string]OnlineModel{"host": host, "guest": guest} {
		if m.state.Board.Cell(center) != engine.Player1 {
			t.Errorf("%s does not see Red's piece", name)
		}
		if m.state.CurrentPlayer != engine.Player2 {
			t.Errorf("%s sees %v to move, expected Blue", name, m.state.CurrentPlayer)
		}
	}
}

func TestOnlineJoinUnknownCode(t *testing.T) {
	coord := newTestCoordinator(t)
	guest := NewOnlineModel(coord, "bob", true, 80, 24)
	guest.input.SetValue(strings.Repeat("Z", coord.Config().CodeLength))

	next, cmd := guest.Update(keyMsg("enter"))
	guest = deliver(t, next.(OnlineModel), cmd)

	if guest.Stage() != OnlineStageEnterCode {
		t.Errorf("stage = %v, expected to stay on the code prompt", guest.Stage())
	}
	if guest.message != "No game with that code." {
		t.Errorf("message = %q", guest.message)
	}
}

func TestOnlineOpponentLeaves(t *testing.T) {
	coord := newTestCoordinator(t)
	host, guest := startOnline(t, coord)

	guest = press(t, guest, "esc")
	if !guest.BackToMenu() {
		t.Fatal("esc did not leave the game")
	}

	host = pump(t, host)
	if !host.opponentAway {
		t.Error("host was not told the opponent left")
	}
	if _, ok := coord.GameOf(guest.session.ID()); ok {
		t.Error("guest session is still seated")
	}
}
