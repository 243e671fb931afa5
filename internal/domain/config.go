package domain

import (
	"bytes"
	_ "embed"
	"fmt"
	"path/filepath"
	"text/template"
	"time"
)

//go:embed config_template.toml
var configTemplateContent string

// Config represents the application configuration.
// Fields are ordered to minimize memory padding.
type Config struct {
	Warnings []string     `toml:"-"`
	Server   ServerConfig `toml:"server"`
	Log      LogConfig    `toml:"log"`
	TUI      TUIConfig    `toml:"tui"`
}

// ServerConfig holds API server settings from [server] section.
type ServerConfig struct {
	URL     string        `toml:"url"`     // Base URL of the server (without /api)
	Timeout time.Duration `toml:"timeout"` // Per-request timeout
}

// APIBaseURL returns the base URL all API paths are relative to.
func (c ServerConfig) APIBaseURL() string {
	return trimTrailingSlash(c.URL) + APIPathPrefix
}

// LogConfig holds logging settings from [log] section.
type LogConfig struct {
	Level string `toml:"level,omitempty"` // Log level: debug, info, warn, error
}

// TUIConfig holds TUI settings from [tui] section.
type TUIConfig struct {
	ConfirmDelete *bool `toml:"confirm_delete,omitempty"` // Ask before deleting (default true)
}

// ShouldConfirmDelete returns whether deletions must be confirmed.
func (c TUIConfig) ShouldConfirmDelete() bool {
	return c.ConfirmDelete == nil || *c.ConfirmDelete
}

// Default configuration values.
const (
	DefaultServerURL = "http://127.0.0.1:5000"
	DefaultTimeout   = 15 * time.Second
	DefaultLogLevel  = "info"
	APIPathPrefix    = "/api"
)

// File and directory names.
const (
	AppDirName             = "tasker"
	ConfigFileName         = "config.toml"
	ConfigOverrideFileName = "config.override.toml"
	CredentialFileName     = "credential.json"
	LogsDirName            = "logs"
	LogFileName            = "tasker.log"
)

// Environment variables that override file configuration.
const (
	EnvServerURL = "TASKER_SERVER_URL"
	EnvLogLevel  = "TASKER_LOG_LEVEL"
)

// NewDefaultConfig returns a Config with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			URL:     DefaultServerURL,
			Timeout: DefaultTimeout,
		},
		Log: LogConfig{
			Level: DefaultLogLevel,
		},
	}
}

// GlobalConfigDir returns the global config directory path.
// configHome is typically XDG_CONFIG_HOME or ~/.config (resolved by caller).
func GlobalConfigDir(configHome string) string {
	return filepath.Join(configHome, AppDirName)
}

// StateDir returns the directory for the credential and logs.
// stateHome is typically XDG_STATE_HOME or ~/.local/state (resolved by caller).
func StateDir(stateHome string) string {
	return filepath.Join(stateHome, AppDirName)
}

// CredentialPath returns the path of the persisted credential.
func CredentialPath(stateDir string) string {
	return filepath.Join(stateDir, CredentialFileName)
}

// LogPath returns the path of the log file.
func LogPath(stateDir string) string {
	return filepath.Join(stateDir, LogsDirName, LogFileName)
}

// templateData holds all data for rendering the config template.
type templateData struct {
	ServerURL string
	Timeout   string
	LogLevel  string
}

// RenderConfigTemplate renders the commented config template from the given Config.
func RenderConfigTemplate(cfg *Config) string {
	data := templateData{
		ServerURL: cfg.Server.URL,
		Timeout:   cfg.Server.Timeout.String(),
		LogLevel:  cfg.Log.Level,
	}

	tmpl, err := template.New("config").Delims("<<", ">>").Parse(configTemplateContent)
	if err != nil {
		// Should never happen with embedded template
		panic(fmt.Sprintf("failed to parse config template: %v", err))
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		panic(fmt.Sprintf("failed to execute config template: %v", err))
	}

	return buf.String()
}

func trimTrailingSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
