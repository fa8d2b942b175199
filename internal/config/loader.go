package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads the CTOR configuration and applies environment overrides.
// Search order: customPath -> ~/.ctor/configs/ctor.yaml -> ./configs/ctor.yaml -> embedded default.
// Fields missing from a file keep their default values.
func Load(customPath string) (Config, error) {
	cfg, err := loadFile(customPath)
	if err != nil {
		return cfg, err
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadFile(customPath string) (Config, error) {
	cfg := DefaultConfig()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath("ctor.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err == nil {
				return cfg, nil
			}
			cfg = DefaultConfig()
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", "ctor.yaml")); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err == nil {
			return cfg, nil
		}
		cfg = DefaultConfig()
	}

	// Use embedded default YAML
	if err := yaml.Unmarshal(defaultCtorYAML, &cfg); err != nil {
		return DefaultConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".ctor", "configs", filename)
}

// applyEnv overrides selected settings from CTOR_* environment variables.
// A set but malformed number or duration is an error.
func applyEnv(cfg *Config) error {
	cfg.Server.HTTPAddr = getenv("CTOR_HTTP_ADDR", cfg.Server.HTTPAddr)
	cfg.Server.SSHAddr = getenv("CTOR_SSH_ADDR", cfg.Server.SSHAddr)
	cfg.Server.DBPath = getenv("CTOR_DB_PATH", cfg.Server.DBPath)
	cfg.Log.Level = getenv("CTOR_LOG_LEVEL", cfg.Log.Level)

	var err error
	if cfg.Board.Width, err = getenvInt("CTOR_BOARD_WIDTH", cfg.Board.Width); err != nil {
		return err
	}
	if cfg.Board.Height, err = getenvInt("CTOR_BOARD_HEIGHT", cfg.Board.Height); err != nil {
		return err
	}
	if cfg.Session.TurnTimeout, err = getenvDuration("CTOR_TURN_TIMEOUT", cfg.Session.TurnTimeout); err != nil {
		return err
	}
	return nil
}

func getenv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("invalid %s %q: not an integer", key, v)
	}
	return i, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}
