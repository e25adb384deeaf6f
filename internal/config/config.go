package config

import (
	"fmt"
	"strings"
)

type Config struct {
	Server      ServerConfig      `yaml:"server" toml:"server"`
	Gemini      GeminiConfig      `yaml:"gemini" toml:"gemini"`
	Whisper     WhisperConfig     `yaml:"whisper" toml:"whisper"`
	Downloader  DownloaderConfig  `yaml:"downloader" toml:"downloader"`
	Audio       AudioConfig       `yaml:"audio" toml:"audio"`
	Paths       PathsConfig       `yaml:"paths" toml:"paths"`
	History     HistoryConfig     `yaml:"history" toml:"history"`
	Auth        AuthConfig        `yaml:"auth" toml:"auth"`
	Watch       WatchConfig       `yaml:"watch" toml:"watch"`
	Logging     LoggingConfig     `yaml:"logging" toml:"logging"`
	Performance PerformanceConfig `yaml:"performance" toml:"performance"`
}

type ServerConfig struct {
	Port           string   `yaml:"port" toml:"port"`
	MaxBodyBytes   int64    `yaml:"max_body_bytes" toml:"max_body_bytes"`
	AllowedOrigins []string `yaml:"allowed_origins" toml:"allowed_origins"`
}

type GeminiConfig struct {
	APIKey string `yaml:"api_key" toml:"api_key"`
	Model  string `yaml:"model" toml:"model"`
}

type WhisperConfig struct {
	// Model selects the ggml model by name ("base", "small", ...).
	Model string `yaml:"model" toml:"model"`
	// ModelPath overrides the path derived from Model.
	ModelPath  string `yaml:"model_path" toml:"model_path"`
	BinaryPath string `yaml:"binary_path" toml:"binary_path"`
	Language   string `yaml:"language" toml:"language"`
	Prompt     string `yaml:"prompt" toml:"prompt"`
	Threads    int    `yaml:"threads" toml:"threads"`
}

type DownloaderConfig struct {
	BinaryPath   string `yaml:"binary_path" toml:"binary_path"`
	AudioQuality string `yaml:"audio_quality" toml:"audio_quality"`
}

type AudioConfig struct {
	Format string `yaml:"format" toml:"format"`
}

type PathsConfig struct {
	Download  string `yaml:"download" toml:"download"`
	Data      string `yaml:"data" toml:"data"`
	Inbox     string `yaml:"inbox" toml:"inbox"`
	Output    string `yaml:"output" toml:"output"`
	KeepAudio bool   `yaml:"keep_audio" toml:"keep_audio"`
}

type HistoryConfig struct {
	Driver       string `yaml:"driver" toml:"driver"`
	DSN          string `yaml:"dsn" toml:"dsn"`
	Database     string `yaml:"database" toml:"database"`
	MaxOpenConns int    `yaml:"max_open_conns" toml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns" toml:"max_idle_conns"`
	// ConnMaxLifetimeSeconds recycles pooled postgres connections; 0 keeps
	// them open indefinitely.
	ConnMaxLifetimeSeconds int `yaml:"conn_max_lifetime_seconds" toml:"conn_max_lifetime_seconds"`
}

type AuthConfig struct {
	SupabaseURL string `yaml:"supabase_url" toml:"supabase_url"`
	SupabaseKey string `yaml:"supabase_key" toml:"supabase_key"`
}

type WatchConfig struct {
	// UserID, when set, persists watch results into that user's history.
	UserID string `yaml:"user_id" toml:"user_id"`
}

type LoggingConfig struct {
	Level string `yaml:"level" toml:"level"`
}

type PerformanceConfig struct {
	MaxConcurrent int `yaml:"max_concurrent" toml:"max_concurrent"`
}

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Gemini.APIKey) == "" {
		return fmt.Errorf("gemini.api_key is required")
	}

	if c.Whisper.Model == "" {
		c.Whisper.Model = "base"
	}
	if c.Whisper.BinaryPath == "" {
		c.Whisper.BinaryPath = "whisper-cli"
	}
	if c.Whisper.ModelPath == "" {
		c.Whisper.ModelPath = fmt.Sprintf("models/ggml-%s.bin", c.Whisper.Model)
	}
	if c.Whisper.Language == "" {
		c.Whisper.Language = "auto"
	}
	if c.Whisper.Threads == 0 {
		c.Whisper.Threads = 4
	}
	if c.Downloader.BinaryPath == "" {
		c.Downloader.BinaryPath = "yt-dlp"
	}
	if c.Downloader.AudioQuality == "" {
		c.Downloader.AudioQuality = "192K"
	}
	if c.Audio.Format == "" {
		c.Audio.Format = "mp3"
	}
	c.Audio.Format = strings.TrimPrefix(strings.ToLower(c.Audio.Format), ".")
	if c.Paths.Download == "" {
		c.Paths.Download = "downloads"
	}
	if c.Paths.Data == "" {
		c.Paths.Data = "data"
	}
	if c.Paths.Inbox == "" {
		c.Paths.Inbox = "data/inbox"
	}
	if c.Paths.Output == "" {
		c.Paths.Output = "data/output"
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-1.5-flash"
	}
	if c.Server.Port == "" {
		c.Server.Port = "8000"
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = 1 << 20
	}
	if c.Performance.MaxConcurrent == 0 {
		c.Performance.MaxConcurrent = 2
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	c.History.Driver = strings.ToLower(strings.TrimSpace(c.History.Driver))
	switch c.History.Driver {
	case "":
		c.History.Driver = DriverSQLite
	case DriverSQLite:
	case DriverPostgres, DriverMongo:
		if c.History.DSN == "" {
			return fmt.Errorf("history.dsn is required for driver %q", c.History.Driver)
		}
	default:
		return fmt.Errorf("history.driver %q is not supported", c.History.Driver)
	}
	if c.History.Driver == DriverMongo && c.History.Database == "" {
		c.History.Database = "edusummarize"
	}

	if c.Performance.MaxConcurrent < 0 {
		return fmt.Errorf("performance.max_concurrent must not be negative")
	}

	return nil
}
