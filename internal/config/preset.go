package config

import (
	"fmt"
	"time"
)

// Preset is a named rule variant.
type Preset string

const (
	PresetClassic  Preset = "classic"
	PresetQuick    Preset = "quick"
	PresetBlitz    Preset = "blitz"
	PresetMarathon Preset = "marathon"
)

// Presets lists the known presets in display order.
func Presets() []Preset {
	return []Preset{PresetClassic, PresetQuick, PresetBlitz, PresetMarathon}
}

// ParsePreset validates a preset name. The empty string selects classic.
func ParsePreset(name string) (Preset, error) {
	if name == "" {
		return PresetClassic, nil
	}
	for _, p := range Presets() {
		if string(p) == name {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown preset %q", name)
}

// ApplyPreset modifies the config for a preset. Classic leaves the
// configured values alone.
func ApplyPreset(cfg *Config, preset Preset) {
	switch preset {
	case PresetQuick:
		cfg.Board.Width, cfg.Board.Height = 6, 6
		cfg.Rules.MaxMoves = 24
	case PresetBlitz:
		cfg.Session.TurnTimeout = 15 * time.Second
		cfg.Session.ReconnectTimeout = 30 * time.Second
	case PresetMarathon:
		cfg.Board.Width, cfg.Board.Height = 10, 10
		cfg.Session.TurnTimeout = 10 * time.Minute
	}
}
