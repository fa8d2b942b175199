package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/ctor/internal/engine"
	"github.com/vovakirdan/ctor/internal/multiplayer"
	"github.com/vovakirdan/ctor/internal/storage"
)

func TestHealth(t *testing.T) {
	ts := newTestServer(t, nil, Options{})

	var body struct {
		Status  string `json:"status"`
		Games   int    `json:"games"`
		Archive bool   `json:"archive"`
	}
	require.Equal(t, http.StatusOK, ts.get(t, "/healthz", &body))
	assert.Equal(t, "ok", body.Status)
	assert.Zero(t, body.Games)
	assert.False(t, body.Archive)
}

func TestListGames(t *testing.T) {
	ts := newTestServer(t, newFakeHistory(), Options{})
	seated, err := ts.coord.CreateGame(multiplayer.NewSessionID(), "carol", engine.Size{})
	require.NoError(t, err)

	var body struct {
		Live   []multiplayer.Game       `json:"live"`
		Recent []multiplayer.GameRecord `json:"recent"`
	}
	require.Equal(t, http.StatusOK, ts.get(t, "/api/games", &body))
	require.Len(t, body.Live, 1)
	assert.Equal(t, seated.GameID, body.Live[0].ID)
	assert.Equal(t, multiplayer.StatusWaiting, body.Live[0].Status)
	require.Len(t, body.Recent, 1)
	assert.Equal(t, archivedID, body.Recent[0].ID)

	var errBody multiplayer.ErrorEvent
	assert.Equal(t, http.StatusBadRequest, ts.get(t, "/api/games?limit=zero", &errBody))
	assert.Equal(t, multiplayer.CodeInvalidEvent, errBody.Code)
}

func TestGetGame(t *testing.T) {
	ts := newTestServer(t, newFakeHistory(), Options{})
	seated, err := ts.coord.CreateGame(multiplayer.NewSessionID(), "carol", engine.Size{})
	require.NoError(t, err)

	type gameBody struct {
		Source string `json:"source"`
		Game   struct {
			ID string `json:"id"`
		} `json:"game"`
	}

	t.Run("live", func(t *testing.T) {
		var body gameBody
		require.Equal(t, http.StatusOK, ts.get(t, "/api/games/"+seated.GameID, &body))
		assert.Equal(t, "live", body.Source)
		assert.Equal(t, seated.GameID, body.Game.ID)
	})

	t.Run("archive", func(t *testing.T) {
		var body gameBody
		require.Equal(t, http.StatusOK, ts.get(t, "/api/games/"+archivedID, &body))
		assert.Equal(t, "archive", body.Source)
		assert.Equal(t, archivedID, body.Game.ID)
	})

	tests := []struct {
		name   string
		id     string
		status int
		code   multiplayer.ErrorCode
	}{
		{"unknown", "00000000-0000-4000-8000-000000000000", http.StatusNotFound, multiplayer.CodeGameNotFound},
		{"malformed", "not-a-uuid", http.StatusBadRequest, multiplayer.CodeInvalidGameID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body multiplayer.ErrorEvent
			assert.Equal(t, tt.status, ts.get(t, "/api/games/"+tt.id, &body))
			assert.Equal(t, tt.code, body.Code)
		})
	}
}

func TestGameMoves(t *testing.T) {
	ts := newTestServer(t, newFakeHistory(), Options{})

	var body struct {
		GameID string        `json:"gameId"`
		Moves  []engine.Move `json:"moves"`
	}
	require.Equal(t, http.StatusOK, ts.get(t, "/api/games/"+archivedID+"/moves", &body))
	assert.Equal(t, archivedID, body.GameID)
	assert.Equal(t, archivedMoves(), body.Moves)
}

func TestReplayAt(t *testing.T) {
	ts := newTestServer(t, newFakeHistory(), Options{})

	var view replayView
	require.Equal(t, http.StatusOK, ts.get(t, "/api/games/"+archivedID+"/replay?move=2", &view))
	assert.Equal(t, 2, view.Move)
	assert.Equal(t, 6, view.Total)
	assert.Equal(t, engine.Player1, view.State.Board.Cell(engine.Pos(0, 0)))
	assert.Equal(t, engine.Player2, view.State.CurrentPlayer)
	require.NotNil(t, view.LastMove)
	assert.Equal(t, engine.MoveEndTurn, view.LastMove.Type)

	view = replayView{}
	require.Equal(t, http.StatusOK, ts.get(t, "/api/games/"+archivedID+"/replay", &view))
	assert.Equal(t, 6, view.Move)
	assert.Equal(t, engine.Player1, view.State.Board.Cell(engine.Pos(3, 3)))

	for _, q := range []string{"?move=7", "?move=-1", "?move=two"} {
		var body multiplayer.ErrorEvent
		assert.Equal(t, http.StatusBadRequest, ts.get(t, "/api/games/"+archivedID+"/replay"+q, &body), q)
		assert.Equal(t, multiplayer.CodeInvalidEvent, body.Code, q)
	}
}

func TestReplayUsesArchivedRules(t *testing.T) {
	const cappedID = "0e6a4b2c-8d1f-4a3b-b5c7-9e2f1d3c4b5a"
	history := newFakeHistory()
	rec := history.records[archivedID]
	rec.ID = cappedID
	rec.Rules = engine.Rules{MaxMoves: 3}
	rec.Scores = engine.Scores{Player1: 1, Player2: 2}
	rec.Winner = engine.Player2
	rec.MoveCount = 3
	history.records[cappedID] = rec
	history.moves[cappedID] = archivedMoves()[:4]

	ts := newTestServer(t, history, Options{})

	var view replayView
	require.Equal(t, http.StatusOK, ts.get(t, "/api/games/"+cappedID+"/replay", &view))
	assert.Equal(t, 4, view.Total)
	assert.True(t, view.State.GameOver)
	assert.Equal(t, engine.Player2, view.State.Winner)

	// The uncapped game on the same server still replays to its last move.
	view = replayView{}
	require.Equal(t, http.StatusOK, ts.get(t, "/api/games/"+archivedID+"/replay", &view))
	assert.Equal(t, 6, view.Move)
	assert.False(t, view.State.GameOver)
}

func TestPlayerGamesAndStandings(t *testing.T) {
	ts := newTestServer(t, newFakeHistory(), Options{})

	var games struct {
		PlayerID string                   `json:"playerId"`
		Games    []multiplayer.GameRecord `json:"games"`
	}
	require.Equal(t, http.StatusOK, ts.get(t, "/api/players/bob/games", &games))
	assert.Equal(t, "bob", games.PlayerID)
	require.Len(t, games.Games, 1)
	assert.Equal(t, "bob", games.Games[0].Player2)

	games.Games = nil
	require.Equal(t, http.StatusOK, ts.get(t, "/api/players/nobody/games", &games))
	assert.Empty(t, games.Games)

	var standings struct {
		Standings []storage.Standing `json:"standings"`
	}
	require.Equal(t, http.StatusOK, ts.get(t, "/api/standings", &standings))
	require.Len(t, standings.Standings, 2)
	assert.Equal(t, "alice", standings.Standings[0].PlayerID)
}

func TestArchiveEndpointsWithoutHistory(t *testing.T) {
	ts := newTestServer(t, nil, Options{})

	for _, path := range []string{
		"/api/standings",
		"/api/players/alice/games",
		"/api/games/" + archivedID + "/moves",
		"/api/games/" + archivedID + "/replay",
	} {
		assert.Equal(t, http.StatusServiceUnavailable, ts.get(t, path, nil), path)
	}

	var body struct {
		Recent []multiplayer.GameRecord `json:"recent"`
	}
	require.Equal(t, http.StatusOK, ts.get(t, "/api/games", &body))
	assert.Empty(t, body.Recent)
}
