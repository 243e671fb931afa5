// Package config provides configuration loading functionality.
package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/runoshun/tasker/internal/domain"
)

// Ensure Manager implements domain.ConfigManager.
var _ domain.ConfigManager = (*Manager)(nil)

// Manager manages configuration files.
type Manager struct {
	globalConfDir string // Path to global config directory (e.g., ~/.config/tasker)
}

// NewManager creates a new Manager.
func NewManager() *Manager {
	return &Manager{
		globalConfDir: DefaultGlobalConfigDir(),
	}
}

// NewManagerWithGlobalDir creates a new Manager with a custom global config directory.
// This is useful for testing.
func NewManagerWithGlobalDir(globalConfDir string) *Manager {
	return &Manager{
		globalConfDir: globalConfDir,
	}
}

// GetGlobalConfigInfo returns information about the global config file.
func (m *Manager) GetGlobalConfigInfo() domain.ConfigInfo {
	return m.getNamedInfo(domain.ConfigFileName)
}

// GetOverrideConfigInfo returns information about the override config file.
func (m *Manager) GetOverrideConfigInfo() domain.ConfigInfo {
	return m.getNamedInfo(domain.ConfigOverrideFileName)
}

func (m *Manager) getNamedInfo(name string) domain.ConfigInfo {
	if m.globalConfDir == "" {
		return domain.ConfigInfo{
			Path:   "",
			Exists: false,
		}
	}
	return m.getConfigInfo(filepath.Join(m.globalConfDir, name))
}

// getConfigInfo reads a config file and returns its info.
func (m *Manager) getConfigInfo(path string) domain.ConfigInfo {
	content, err := os.ReadFile(path)
	if err != nil {
		return domain.ConfigInfo{
			Path:   path,
			Exists: false,
		}
	}
	return domain.ConfigInfo{
		Path:    path,
		Content: string(content),
		Exists:  true,
	}
}

// InitGlobalConfig creates the global config file with the default template.
// It returns domain.ErrConfigExists if the file is already present.
func (m *Manager) InitGlobalConfig() error {
	if m.globalConfDir == "" {
		return errors.New("global config directory not available")
	}
	path := filepath.Join(m.globalConfDir, domain.ConfigFileName)

	// Create parent directory if it doesn't exist
	if err := os.MkdirAll(m.globalConfDir, 0o700); err != nil {
		return err
	}

	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return domain.ErrConfigExists
	}

	content := domain.RenderConfigTemplate(domain.NewDefaultConfig())
	return os.WriteFile(path, []byte(content), 0o600)
}
