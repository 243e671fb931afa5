// Package config provides configuration loading functionality.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/runoshun/tasker/internal/domain"
)

// Ensure Loader implements domain.ConfigLoader.
var _ domain.ConfigLoader = (*Loader)(nil)

// Loader loads configuration from TOML files and the environment.
type Loader struct {
	getenv        func(string) string
	globalConfDir string // Path to global config directory (e.g., ~/.config/tasker)
}

// NewLoader creates a new Loader.
func NewLoader() *Loader {
	return &Loader{
		globalConfDir: DefaultGlobalConfigDir(),
		getenv:        os.Getenv,
	}
}

// NewLoaderWithGlobalDir creates a new Loader with a custom global config directory.
// This is useful for testing.
func NewLoaderWithGlobalDir(globalConfDir string) *Loader {
	return &Loader{
		globalConfDir: globalConfDir,
		getenv:        os.Getenv,
	}
}

// DefaultGlobalConfigDir returns the default global config directory.
func DefaultGlobalConfigDir() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return domain.GlobalConfigDir(configHome)
}

// DefaultStateDir returns the default directory for the credential and logs.
func DefaultStateDir() string {
	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	return domain.StateDir(stateHome)
}

// Load returns the merged configuration.
// Precedence: default <- global <- override <- environment.
func (l *Loader) Load() (*domain.Config, error) {
	base := domain.NewDefaultConfig()

	for _, name := range []string{domain.ConfigFileName, domain.ConfigOverrideFileName} {
		cfg, err := l.loadNamed(name)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, err
		}
		base = mergeConfigs(base, cfg)
	}

	l.applyEnv(base)
	return base, nil
}

// LoadGlobal returns only the global configuration file.
func (l *Loader) LoadGlobal() (*domain.Config, error) {
	return l.loadNamed(domain.ConfigFileName)
}

func (l *Loader) loadNamed(name string) (*domain.Config, error) {
	if l.globalConfDir == "" {
		return nil, os.ErrNotExist
	}
	return l.loadFile(filepath.Join(l.globalConfDir, name))
}

// loadFile loads a configuration from a file.
func (l *Loader) loadFile(path string) (*domain.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return convertRawToDomainConfig(raw), nil
}

// applyEnv applies environment overrides. Invalid values are reported as warnings.
func (l *Loader) applyEnv(cfg *domain.Config) {
	if v := strings.TrimSpace(l.getenv(domain.EnvServerURL)); v != "" {
		if err := validateServerURL(v); err != nil {
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("invalid %s: %v", domain.EnvServerURL, err))
		} else {
			cfg.Server.URL = v
		}
	}
	if v := strings.TrimSpace(l.getenv(domain.EnvLogLevel)); v != "" {
		if !isValidLogLevel(v) {
			cfg.Warnings = append(cfg.Warnings, fmt.Sprintf("invalid %s: %q", domain.EnvLogLevel, v))
		} else {
			cfg.Log.Level = strings.ToLower(v)
		}
	}
}

// convertRawToDomainConfig converts the raw map to domain config and collects warnings.
func convertRawToDomainConfig(raw map[string]any) *domain.Config {
	res := &domain.Config{}
	var warnings []string

	for section, value := range raw {
		m, ok := value.(map[string]any)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("unknown key: %s", section))
			continue
		}
		switch section {
		case "server":
			for k, v := range m {
				switch k {
				case "url":
					s, ok := v.(string)
					if !ok {
						warnings = append(warnings, "invalid value for [server] url: must be a string")
						continue
					}
					if err := validateServerURL(s); err != nil {
						warnings = append(warnings, fmt.Sprintf("invalid value for [server] url: %v", err))
						continue
					}
					res.Server.URL = s
				case "timeout":
					d, err := parseTimeout(v)
					if err != nil {
						warnings = append(warnings, fmt.Sprintf("invalid value for [server] timeout: %v", err))
						continue
					}
					res.Server.Timeout = d
				default:
					warnings = append(warnings, fmt.Sprintf("unknown key in [server]: %s", k))
				}
			}
		case "log":
			for k, v := range m {
				switch k {
				case "level":
					s, ok := v.(string)
					if !ok || !isValidLogLevel(s) {
						warnings = append(warnings, fmt.Sprintf("invalid value for [log] level: %v", v))
						continue
					}
					res.Log.Level = strings.ToLower(s)
				default:
					warnings = append(warnings, fmt.Sprintf("unknown key in [log]: %s", k))
				}
			}
		case "tui":
			for k, v := range m {
				switch k {
				case "confirm_delete":
					b, ok := v.(bool)
					if !ok {
						warnings = append(warnings, "invalid value for [tui] confirm_delete: must be a boolean")
						continue
					}
					res.TUI.ConfirmDelete = &b
				default:
					warnings = append(warnings, fmt.Sprintf("unknown key in [tui]: %s", k))
				}
			}
		default:
			warnings = append(warnings, fmt.Sprintf("unknown section: %s", section))
		}
	}

	sort.Strings(warnings)
	res.Warnings = warnings
	return res
}

// parseTimeout accepts a duration string ("15s") or a number of seconds.
func parseTimeout(v any) (time.Duration, error) {
	var d time.Duration
	switch t := v.(type) {
	case string:
		parsed, err := time.ParseDuration(t)
		if err != nil {
			return 0, err
		}
		d = parsed
	case int64:
		d = time.Duration(t) * time.Second
	case float64:
		d = time.Duration(t * float64(time.Second))
	default:
		return 0, fmt.Errorf("unsupported type %T", v)
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive, got %s", d)
	}
	return d, nil
}

func validateServerURL(s string) error {
	u, err := url.Parse(s)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%q must use http or https", s)
	}
	if u.Host == "" {
		return fmt.Errorf("%q has no host", s)
	}
	return nil
}

func isValidLogLevel(s string) bool {
	switch strings.ToLower(s) {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// mergeConfigs merges two configs, with override taking precedence.
func mergeConfigs(base, override *domain.Config) *domain.Config {
	result := &domain.Config{
		Server:   base.Server,
		Log:      base.Log,
		TUI:      base.TUI,
		Warnings: append([]string{}, base.Warnings...),
	}

	// Add override warnings
	result.Warnings = append(result.Warnings, override.Warnings...)

	if override.Server.URL != "" {
		result.Server.URL = override.Server.URL
	}
	if override.Server.Timeout > 0 {
		result.Server.Timeout = override.Server.Timeout
	}
	if override.Log.Level != "" {
		result.Log.Level = override.Log.Level
	}
	if override.TUI.ConfirmDelete != nil {
		v := *override.TUI.ConfirmDelete
		result.TUI.ConfirmDelete = &v
	}

	return result
}
