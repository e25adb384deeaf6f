package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Load reads the configuration file at path (YAML or TOML, chosen by
// extension), applies environment overrides and validates the result.
// An empty path skips the file and uses the environment alone.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		if err := decodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func decodeFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse toml config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("parse yaml config: %w", err)
		}
	}

	return nil
}

// applyEnv lets the process environment override file values. Keys match the
// variables the service has always read (GEMINI_API_KEY, WHISPER_MODEL, ...).
func applyEnv(cfg *Config) {
	overrides := []struct {
		key    string
		target *string
	}{
		{"GEMINI_API_KEY", &cfg.Gemini.APIKey},
		{"GEMINI_MODEL", &cfg.Gemini.Model},
		{"WHISPER_MODEL", &cfg.Whisper.Model},
		{"WHISPER_MODEL_PATH", &cfg.Whisper.ModelPath},
		{"WHISPER_BINARY", &cfg.Whisper.BinaryPath},
		{"DOWNLOAD_DIR", &cfg.Paths.Download},
		{"AUDIO_FORMAT", &cfg.Audio.Format},
		{"PORT", &cfg.Server.Port},
		{"LOG_LEVEL", &cfg.Logging.Level},
		{"HISTORY_DRIVER", &cfg.History.Driver},
		{"HISTORY_DSN", &cfg.History.DSN},
		{"SUPABASE_URL", &cfg.Auth.SupabaseURL},
		{"SUPABASE_KEY", &cfg.Auth.SupabaseKey},
	}

	for _, o := range overrides {
		if val, ok := os.LookupEnv(o.key); ok && strings.TrimSpace(val) != "" {
			*o.target = strings.TrimSpace(val)
		}
	}
}
