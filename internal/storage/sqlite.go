// Package storage provides SQLite-based persistence for finished and
// running CTOR games: game headers, move logs and player standings.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/ctor/internal/engine"
	"github.com/vovakirdan/ctor/internal/multiplayer"
)

// timeLayout is how DATETIME columns are written.
const timeLayout = "2006-01-02 15:04:05"

// Store manages the SQLite database connection for the game archive.
type Store struct {
	db *sql.DB
}

// Standing is a player's record over finished games. Expired games are not
// counted.
type Standing struct {
	PlayerID string `json:"playerId"`
	Games    int    `json:"games"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
	Draws    int    `json:"draws"`
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS games (
			id TEXT PRIMARY KEY,
			code TEXT NOT NULL,
			player1 TEXT NOT NULL,
			player2 TEXT NOT NULL DEFAULT '',
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			status TEXT NOT NULL,
			score1 INTEGER NOT NULL DEFAULT 0,
			score2 INTEGER NOT NULL DEFAULT 0,
			winner INTEGER NOT NULL DEFAULT 0,
			end_reason TEXT NOT NULL DEFAULT '',
			move_count INTEGER NOT NULL DEFAULT 0,
			capture_threshold INTEGER NOT NULL DEFAULT 5,
			capture_iterations INTEGER NOT NULL DEFAULT 10,
			first_turn_ops INTEGER NOT NULL DEFAULT 1,
			turn_ops INTEGER NOT NULL DEFAULT 2,
			max_moves INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			started_at DATETIME,
			finished_at DATETIME,
			duration_secs INTEGER NOT NULL DEFAULT 0
		);
		CREATE INDEX IF NOT EXISTS idx_games_created ON games(created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_games_player1 ON games(player1);
		CREATE INDEX IF NOT EXISTS idx_games_player2 ON games(player2);

		CREATE TABLE IF NOT EXISTS moves (
			game_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			type TEXT NOT NULL,
			x INTEGER,
			y INTEGER,
			player INTEGER NOT NULL,
			ts INTEGER NOT NULL,
			PRIMARY KEY (game_id, seq)
		);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return s.addRuleColumns()
}

// ruleColumns are the per-game rule columns, in engine.Rules field order,
// with the defaults that databases created before they existed get.
var ruleColumns = []struct {
	name string
	def  int
}{
	{"capture_threshold", engine.DefaultCaptureThreshold},
	{"capture_iterations", engine.DefaultMaxCaptureIterations},
	{"first_turn_ops", engine.DefaultFirstTurnOperations},
	{"turn_ops", engine.DefaultTurnOperations},
	{"max_moves", 0},
}

// addRuleColumns upgrades a games table that predates the rule columns.
func (s *Store) addRuleColumns() error {
	rows, err := s.db.Query(`SELECT name FROM pragma_table_info('games')`)
	if err != nil {
		return err
	}
	have := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return err
		}
		have[name] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for _, c := range ruleColumns {
		if have[c.name] {
			continue
		}
		stmt := fmt.Sprintf(`ALTER TABLE games ADD COLUMN %s INTEGER NOT NULL DEFAULT %d`, c.name, c.def)
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("add column %s: %w", c.name, err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// SaveGame inserts a game header or updates the existing one.
// Implements multiplayer.Archive.
func (s *Store) SaveGame(rec multiplayer.GameRecord) error {
	return saveGame(s.db, rec)
}

func saveGame(db execer, rec multiplayer.GameRecord) error {
	rules := engine.New(rec.Rules).Rules()
	_, err := db.Exec(
		`INSERT INTO games
		 (id, code, player1, player2, width, height, status, score1, score2, winner,
		  end_reason, move_count, created_at, started_at, finished_at, duration_secs,
		  capture_threshold, capture_iterations, first_turn_ops, turn_ops, max_moves)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		  player2 = excluded.player2,
		  status = excluded.status,
		  score1 = excluded.score1,
		  score2 = excluded.score2,
		  winner = excluded.winner,
		  end_reason = excluded.end_reason,
		  move_count = excluded.move_count,
		  started_at = excluded.started_at,
		  finished_at = excluded.finished_at,
		  duration_secs = excluded.duration_secs`,
		rec.ID,
		rec.Code,
		rec.Player1,
		rec.Player2,
		rec.Size.Width,
		rec.Size.Height,
		string(rec.Status),
		rec.Scores.Player1,
		rec.Scores.Player2,
		int(rec.Winner),
		string(rec.EndReason),
		rec.MoveCount,
		formatTime(rec.CreatedAt),
		formatTime(rec.StartedAt),
		formatTime(rec.FinishedAt),
		int(rec.Duration/time.Second),
		rules.CaptureThreshold,
		rules.MaxCaptureIterations,
		rules.FirstTurnOperations,
		rules.TurnOperations,
		rules.MaxMoves,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save game: %w", err)
	}
	return nil
}

// SaveMove records the seq-th move of a game. Saving the same seq twice
// keeps the latest move. Implements multiplayer.Archive.
func (s *Store) SaveMove(gameID string, seq int, m engine.Move) error {
	return saveMove(s.db, gameID, seq, m)
}

func saveMove(db execer, gameID string, seq int, m engine.Move) error {
	var x, y sql.NullInt64
	if m.Position != nil {
		x = sql.NullInt64{Int64: int64(m.Position.X), Valid: true}
		y = sql.NullInt64{Int64: int64(m.Position.Y), Valid: true}
	}
	_, err := db.Exec(
		`INSERT OR REPLACE INTO moves (game_id, seq, type, x, y, player, ts)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		gameID, seq, string(m.Type), x, y, int(m.Player), m.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save move: %w", err)
	}
	return nil
}

// SaveGameWithMoves writes a complete game in one transaction. Used for
// local games that are only archived once finished.
func (s *Store) SaveGameWithMoves(rec multiplayer.GameRecord, moves []engine.Move) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := saveGame(tx, rec); err != nil {
		return err
	}
	for i, m := range moves {
		if err := saveMove(tx, rec.ID, i+1, m); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage: cannot commit game: %w", err)
	}
	return nil
}

const gameColumns = `id, code, player1, player2, width, height, status, score1, score2, winner,
	end_reason, move_count, created_at, started_at, finished_at, duration_secs,
	capture_threshold, capture_iterations, first_turn_ops, turn_ops, max_moves`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner) (multiplayer.GameRecord, error) {
	var (
		rec                            multiplayer.GameRecord
		status, reason                 string
		winner, durationSecs           int
		createdAt, startedAt, finished any
	)
	err := row.Scan(
		&rec.ID,
		&rec.Code,
		&rec.Player1,
		&rec.Player2,
		&rec.Size.Width,
		&rec.Size.Height,
		&status,
		&rec.Scores.Player1,
		&rec.Scores.Player2,
		&winner,
		&reason,
		&rec.MoveCount,
		&createdAt,
		&startedAt,
		&finished,
		&durationSecs,
		&rec.Rules.CaptureThreshold,
		&rec.Rules.MaxCaptureIterations,
		&rec.Rules.FirstTurnOperations,
		&rec.Rules.TurnOperations,
		&rec.Rules.MaxMoves,
	)
	if err != nil {
		return rec, err
	}
	rec.Status = multiplayer.GameStatus(status)
	rec.EndReason = multiplayer.EndReason(reason)
	rec.Winner = engine.Player(winner)
	rec.Duration = time.Duration(durationSecs) * time.Second
	rec.CreatedAt = parseTime(createdAt)
	rec.StartedAt = parseTime(startedAt)
	rec.FinishedAt = parseTime(finished)
	return rec, nil
}

// GameByID retrieves a game header. Returns nil if the game is unknown.
func (s *Store) GameByID(id string) (*multiplayer.GameRecord, error) {
	rec, err := scanGame(s.db.QueryRow(
		`SELECT `+gameColumns+` FROM games WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query game: %w", err)
	}
	return &rec, nil
}

// RecentGames retrieves the most recently created games.
func (s *Store) RecentGames(limit int) ([]multiplayer.GameRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.queryGames(
		`SELECT `+gameColumns+` FROM games ORDER BY created_at DESC, id LIMIT ?`,
		limit,
	)
}

// PlayerGames retrieves the games a player took part in, newest first.
func (s *Store) PlayerGames(playerID string, limit int) ([]multiplayer.GameRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.queryGames(
		`SELECT `+gameColumns+` FROM games
		 WHERE player1 = ? OR player2 = ?
		 ORDER BY created_at DESC, id LIMIT ?`,
		playerID, playerID, limit,
	)
}

func (s *Store) queryGames(query string, args ...any) ([]multiplayer.GameRecord, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query games: %w", err)
	}
	defer rows.Close()

	var out []multiplayer.GameRecord
	for rows.Next() {
		rec, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		out = append(out, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return out, nil
}

// Moves retrieves the move log of a game in order.
func (s *Store) Moves(gameID string) ([]engine.Move, error) {
	rows, err := s.db.Query(
		`SELECT type, x, y, player, ts FROM moves WHERE game_id = ? ORDER BY seq`,
		gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query moves: %w", err)
	}
	defer rows.Close()

	moves := []engine.Move{}
	for rows.Next() {
		var (
			m      engine.Move
			typ    string
			x, y   sql.NullInt64
			player int
		)
		if err := rows.Scan(&typ, &x, &y, &player, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("storage: cannot scan move: %w", err)
		}
		m.Type = engine.MoveType(typ)
		m.Player = engine.Player(player)
		if x.Valid && y.Valid {
			p := engine.Pos(int(x.Int64), int(y.Int64))
			m.Position = &p
		}
		moves = append(moves, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return moves, nil
}

// Standings aggregates wins, losses and draws per player over completed
// and forfeited games, best record first.
func (s *Store) Standings(limit int) ([]Standing, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT player,
		        COUNT(*),
		        SUM(CASE WHEN winner = seat THEN 1 ELSE 0 END) AS wins,
		        SUM(CASE WHEN winner != 0 AND winner != seat THEN 1 ELSE 0 END),
		        SUM(CASE WHEN winner = 0 THEN 1 ELSE 0 END) AS draws
		 FROM (
		   SELECT player1 AS player, 1 AS seat, winner FROM games
		   WHERE status = 'finished' AND end_reason IN ('completed', 'disconnect')
		   UNION ALL
		   SELECT player2 AS player, 2 AS seat, winner FROM games
		   WHERE status = 'finished' AND end_reason IN ('completed', 'disconnect') AND player2 != ''
		 )
		 GROUP BY player
		 ORDER BY wins DESC, draws DESC, player
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query standings: %w", err)
	}
	defer rows.Close()

	var out []Standing
	for rows.Next() {
		var st Standing
		if err := rows.Scan(&st.PlayerID, &st.Games, &st.Wins, &st.Losses, &st.Draws); err != nil {
			return nil, fmt.Errorf("storage: cannot scan standing: %w", err)
		}
		out = append(out, st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return out, nil
}

// Ensure Store implements Archive
var _ multiplayer.Archive = (*Store)(nil)

func formatTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(timeLayout)
}

// parseTime reads a DATETIME column, which the driver may hand back as
// time.Time or as the stored string.
func parseTime(v any) time.Time {
	switch v := v.(type) {
	case time.Time:
		return v.UTC()
	case string:
		if parsed, err := time.Parse(timeLayout, v); err == nil {
			return parsed
		}
	case []byte:
		if parsed, err := time.Parse(timeLayout, string(v)); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
