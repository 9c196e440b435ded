// Package config provides configuration management for the sqlview CLI.
package config

import "time"

// Config holds all CLI configuration options.
type Config struct {
	UploadDir    string   `koanf:"upload_dir"`
	Verbose      bool     `koanf:"verbose"`
	OutputFormat string   `koanf:"output"`
	UI           UIConfig `koanf:"ui"`
	// Engines holds per-engine adapter params, keyed by engine name.
	Engines map[string]map[string]any `koanf:"engines"`
}

// UIConfig holds configuration for the UI server.
type UIConfig struct {
	Host                 string        `koanf:"host"`
	Port                 int           `koanf:"port"`
	AutoOpen             bool          `koanf:"auto_open"`
	Watch                bool          `koanf:"watch"`
	SessionSecret        string        `koanf:"session_secret"`
	PreviewLimit         int           `koanf:"preview_limit"`
	MaxRows              int           `koanf:"max_rows"`
	QueryTimeout         time.Duration `koanf:"query_timeout"`
	MaxUploadMB          int64         `koanf:"max_upload_mb"`
	WorkspaceIdleTimeout time.Duration `koanf:"workspace_idle_timeout"`
}

// Default configuration values.
const (
	DefaultUploadDir            = "uploaded_dbs"
	DefaultOutput               = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultHost                 = "localhost"
	DefaultPort                 = 8765
	DefaultPreviewLimit         = 1000
	DefaultMaxRows              = 10000
	DefaultQueryTimeout         = 30 * time.Second
	DefaultMaxUploadMB          = 3072
	DefaultWorkspaceIdleTimeout = 24 * time.Hour
)

// Default returns a Config with every default applied.
func Default() *Config {
	return &Config{
		UploadDir:    DefaultUploadDir,
		OutputFormat: DefaultOutput,
		UI: UIConfig{
			Host:                 DefaultHost,
			Port:                 DefaultPort,
			AutoOpen:             true,
			Watch:                true,
			PreviewLimit:         DefaultPreviewLimit,
			MaxRows:              DefaultMaxRows,
			QueryTimeout:         DefaultQueryTimeout,
			MaxUploadMB:          DefaultMaxUploadMB,
			WorkspaceIdleTimeout: DefaultWorkspaceIdleTimeout,
		},
	}
}
