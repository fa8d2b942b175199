// Package config provides YAML-based configuration loading for the CTOR
// server, rule engine and terminal client.
package config

import (
	"fmt"
	"time"

	"github.com/vovakirdan/ctor/internal/engine"
)

// Config is the root configuration document (ctor.yaml).
type Config struct {
	Board   BoardConfig   `yaml:"board"`
	Rules   RulesConfig   `yaml:"rules"`
	Server  ServerConfig  `yaml:"server"`
	Session SessionConfig `yaml:"session"`
	Replay  ReplayConfig  `yaml:"replay"`
	Log     LogConfig     `yaml:"log"`
}

// BoardConfig defines the board dimensions. Each side must be 3..10.
type BoardConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// RulesConfig defines the game rules.
type RulesConfig struct {
	CaptureThreshold     int `yaml:"capture_threshold"`
	MaxCaptureIterations int `yaml:"max_capture_iterations"`
	FirstTurnOperations  int `yaml:"first_turn_operations"`
	TurnOperations       int `yaml:"turn_operations"`
	// MaxMoves caps placements per game; 0 plays until the board is full.
	MaxMoves int `yaml:"max_moves"`
	// AutoEndTurn hands the turn over as soon as the budget is spent.
	AutoEndTurn bool `yaml:"auto_end_turn"`
}

// ServerConfig defines listener and storage settings.
type ServerConfig struct {
	HTTPAddr    string        `yaml:"http_addr"`
	SSHAddr     string        `yaml:"ssh_addr"`
	HostKeyPath string        `yaml:"host_key"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
	DBPath      string        `yaml:"db_path"`
}

// SessionConfig defines live game lifecycle timing.
type SessionConfig struct {
	CodeLength       int           `yaml:"code_length"`
	GameTTL          time.Duration `yaml:"game_ttl"`
	FinishedTTL      time.Duration `yaml:"finished_ttl"`
	TurnTimeout      time.Duration `yaml:"turn_timeout"`
	ReconnectTimeout time.Duration `yaml:"reconnect_timeout"`
	MaxGameDuration  time.Duration `yaml:"max_game_duration"`
	CleanupPeriod    time.Duration `yaml:"cleanup_period"`
	EventBuffer      int           `yaml:"event_buffer"`
}

// ReplayConfig defines replay playback.
type ReplayConfig struct {
	PlaybackInterval time.Duration `yaml:"playback_interval"`
}

// LogConfig defines logging output.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Validate checks the configuration for values the engine or server cannot use.
func (c Config) Validate() error {
	if err := c.BoardSize().Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	r := c.Rules
	if r.CaptureThreshold < 1 || r.CaptureThreshold > 8 {
		return fmt.Errorf("config: capture_threshold %d outside 1..8", r.CaptureThreshold)
	}
	if r.MaxCaptureIterations < 1 {
		return fmt.Errorf("config: max_capture_iterations must be positive")
	}
	if r.FirstTurnOperations < 1 || r.TurnOperations < 1 {
		return fmt.Errorf("config: turn operations must be positive")
	}
	if r.MaxMoves < 0 {
		return fmt.Errorf("config: max_moves must not be negative")
	}
	if n := c.Session.CodeLength; n < 4 || n > 8 {
		return fmt.Errorf("config: code_length %d outside 4..8", n)
	}
	return nil
}

// BoardSize returns the configured board size.
func (c Config) BoardSize() engine.Size {
	return engine.Size{Width: c.Board.Width, Height: c.Board.Height}
}

// EngineRules converts the rules section for the engine.
func (c Config) EngineRules() engine.Rules {
	return engine.Rules{
		CaptureThreshold:     c.Rules.CaptureThreshold,
		MaxCaptureIterations: c.Rules.MaxCaptureIterations,
		FirstTurnOperations:  c.Rules.FirstTurnOperations,
		TurnOperations:       c.Rules.TurnOperations,
		MaxMoves:             c.Rules.MaxMoves,
	}
}
