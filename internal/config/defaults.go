package config

import (
	_ "embed"
	"time"

	"github.com/vovakirdan/ctor/internal/engine"
)

//go:embed defaults/ctor.yaml
var defaultCtorYAML []byte

// DefaultConfig returns the built-in configuration. It mirrors
// defaults/ctor.yaml and is used when the embedded file cannot be parsed.
func DefaultConfig() Config {
	return Config{
		Board: BoardConfig{
			Width:  engine.DefaultBoardSize,
			Height: engine.DefaultBoardSize,
		},
		Rules: RulesConfig{
			CaptureThreshold:     engine.DefaultCaptureThreshold,
			MaxCaptureIterations: engine.DefaultMaxCaptureIterations,
			FirstTurnOperations:  engine.DefaultFirstTurnOperations,
			TurnOperations:       engine.DefaultTurnOperations,
			MaxMoves:             0,
			AutoEndTurn:          true,
		},
		Server: ServerConfig{
			HTTPAddr:    ":3000",
			SSHAddr:     ":23234",
			IdleTimeout: 30 * time.Minute,
			DBPath:      "~/.ctor/ctor.db",
		},
		Session: SessionConfig{
			CodeLength:       4,
			GameTTL:          time.Hour,
			FinishedTTL:      time.Hour,
			TurnTimeout:      5 * time.Minute,
			ReconnectTimeout: 5 * time.Minute,
			MaxGameDuration:  2 * time.Hour,
			CleanupPeriod:    30 * time.Second,
			EventBuffer:      64,
		},
		Replay: ReplayConfig{
			PlaybackInterval: time.Second,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultCtorYAML
}
