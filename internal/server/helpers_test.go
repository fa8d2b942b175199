package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/ctor/internal/engine"
	"github.com/vovakirdan/ctor/internal/multiplayer"
	"github.com/vovakirdan/ctor/internal/storage"
)

const archivedID = "5b0c8f7e-3c1a-4d2e-9f6b-1a2b3c4d5e6f"

// fakeHistory is an in-memory History.
type fakeHistory struct {
	records   map[string]multiplayer.GameRecord
	moves     map[string][]engine.Move
	standings []storage.Standing
}

func (h *fakeHistory) GameByID(id string) (*multiplayer.GameRecord, error) {
	rec, ok := h.records[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (h *fakeHistory) RecentGames(limit int) ([]multiplayer.GameRecord, error) {
	return h.filter(limit, func(multiplayer.GameRecord) bool { return true }), nil
}

func (h *fakeHistory) PlayerGames(playerID string, limit int) ([]multiplayer.GameRecord, error) {
	return h.filter(limit, func(r multiplayer.GameRecord) bool {
		return r.Player1 == playerID || r.Player2 == playerID
	}), nil
}

func (h *fakeHistory) filter(limit int, keep func(multiplayer.GameRecord) bool) []multiplayer.GameRecord {
	out := []multiplayer.GameRecord{}
	for _, r := range h.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (h *fakeHistory) Moves(gameID string) ([]engine.Move, error) {
	return h.moves[gameID], nil
}

func (h *fakeHistory) Standings(limit int) ([]storage.Standing, error) {
	return h.standings, nil
}

// archivedMoves is a legal six-move game on a 5x5 board.
func archivedMoves() []engine.Move {
	return []engine.Move{
		engine.PlaceAt(engine.Player1, 0, 0),
		engine.EndTurn(engine.Player1),
		engine.PlaceAt(engine.Player2, 1, 1),
		engine.PlaceAt(engine.Player2, 2, 2),
		engine.EndTurn(engine.Player2),
		engine.PlaceAt(engine.Player1, 3, 3),
	}
}

func newFakeHistory() *fakeHistory {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return &fakeHistory{
		records: map[string]multiplayer.GameRecord{
			archivedID: {
				ID:         archivedID,
				Code:       "ABCD",
				Player1:    "alice",
				Player2:    "bob",
				Size:       engine.Size{Width: 5, Height: 5},
				Status:     multiplayer.StatusFinished,
				Scores:     engine.Scores{Player1: 2, Player2: 2},
				EndReason:  multiplayer.EndCompleted,
				MoveCount:  6,
				CreatedAt:  created,
				StartedAt:  created,
				FinishedAt: created.Add(3 * time.Minute),
				Duration:   3 * time.Minute,
			},
		},
		moves: map[string][]engine.Move{
			archivedID: archivedMoves(),
		},
		standings: []storage.Standing{
			{PlayerID: "alice", Games: 1, Draws: 1},
			{PlayerID: "bob", Games: 1, Draws: 1},
		},
	}
}

type testServer struct {
	srv   *Server
	coord *multiplayer.Coordinator
	http  *httptest.Server
}

// newTestServer starts a coordinator and an HTTP test server. Pass a nil
// History to run without an archive.
func newTestServer(t *testing.T, history History, opts Options) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := multiplayer.DefaultCoordinatorConfig()
	cfg.TurnTimeout = 0
	coord := multiplayer.NewCoordinator(cfg, multiplayer.NewMemoryStore(), multiplayer.NewSessionRegistry(), nil)
	coord.Start()

	srv := New(coord, history, opts, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		coord.Stop()
	})
	return &testServer{srv: srv, coord: coord, http: ts}
}

func (ts *testServer) get(t *testing.T, path string, out any) int {
	t.Helper()
	resp, err := http.Get(ts.http.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (ts *testServer) dial(t *testing.T) *wsClient {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.http.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return &wsClient{conn: conn}
}

type wsClient struct {
	conn *websocket.Conn
}

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func (c *wsClient) send(t *testing.T, event string, data any) {
	t.Helper()
	require.NoError(t, c.conn.WriteJSON(map[string]any{"event": event, "data": data}))
}

// await reads frames until one named event arrives and decodes its data
// into out.
func (c *wsClient) await(t *testing.T, event string, out any) {
	t.Helper()
	require.NoError(t, c.conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		var f frame
		require.NoError(t, c.conn.ReadJSON(&f), "waiting for %s", event)
		if f.Event != event {
			continue
		}
		if out != nil {
			require.NoError(t, json.Unmarshal(f.Data, out))
		}
		return
	}
}
