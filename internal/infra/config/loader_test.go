package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/runoshun/tasker/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestLoader returns a Loader over globalDir with a fixed environment.
func newTestLoader(globalDir string, env map[string]string) *Loader {
	l := NewLoaderWithGlobalDir(globalDir)
	l.getenv = func(key string) string { return env[key] }
	return l
}

func writeConfig(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoader_Load_Defaults(t *testing.T) {
	loader := newTestLoader(t.TempDir(), nil)

	cfg, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultServerURL, cfg.Server.URL)
	assert.Equal(t, domain.DefaultTimeout, cfg.Server.Timeout)
	assert.Equal(t, domain.DefaultLogLevel, cfg.Log.Level)
	assert.True(t, cfg.TUI.ShouldConfirmDelete())
	assert.Empty(t, cfg.Warnings)
}

func TestLoader_Load_GlobalConfig(t *testing.T) {
	globalDir := t.TempDir()
	writeConfig(t, globalDir, domain.ConfigFileName, `
[server]
url = "https://tasks.example.com"
timeout = "30s"

[log]
level = "debug"

[tui]
confirm_delete = false
`)

	cfg, err := newTestLoader(globalDir, nil).Load()
	require.NoError(t, err)

	assert.Equal(t, "https://tasks.example.com", cfg.Server.URL)
	assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.False(t, cfg.TUI.ShouldConfirmDelete())
	assert.Empty(t, cfg.Warnings)
}

func TestLoader_Load_TimeoutAsSeconds(t *testing.T) {
	globalDir := t.TempDir()
	writeConfig(t, globalDir, domain.ConfigFileName, "[server]\ntimeout = 5\n")

	cfg, err := newTestLoader(globalDir, nil).Load()
	require.NoError(t, err)

	assert.Equal(t, 5*time.Second, cfg.Server.Timeout)
}

func TestLoader_Load_OverrideTakesPrecedence(t *testing.T) {
	globalDir := t.TempDir()
	writeConfig(t, globalDir, domain.ConfigFileName, `
[server]
url = "http://global:5000"
timeout = "20s"

[log]
level = "warn"
`)
	writeConfig(t, globalDir, domain.ConfigOverrideFileName, `
[server]
url = "http://override:5000"
`)

	cfg, err := newTestLoader(globalDir, nil).Load()
	require.NoError(t, err)

	assert.Equal(t, "http://override:5000", cfg.Server.URL)
	assert.Equal(t, 20*time.Second, cfg.Server.Timeout) // Not overridden
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoader_Load_EnvTakesPrecedence(t *testing.T) {
	globalDir := t.TempDir()
	writeConfig(t, globalDir, domain.ConfigOverrideFileName, "[server]\nurl = \"http://override:5000\"\n")

	cfg, err := newTestLoader(globalDir, map[string]string{
		domain.EnvServerURL: "http://env:8080",
		domain.EnvLogLevel:  "ERROR",
	}).Load()
	require.NoError(t, err)

	assert.Equal(t, "http://env:8080", cfg.Server.URL)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestLoader_Load_InvalidEnvIsWarning(t *testing.T) {
	cfg, err := newTestLoader(t.TempDir(), map[string]string{
		domain.EnvServerURL: "ftp://nope",
		domain.EnvLogLevel:  "loud",
	}).Load()
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultServerURL, cfg.Server.URL)
	assert.Equal(t, domain.DefaultLogLevel, cfg.Log.Level)
	assert.Len(t, cfg.Warnings, 2)
}

func TestLoader_Load_Warnings(t *testing.T) {
	globalDir := t.TempDir()
	writeConfig(t, globalDir, domain.ConfigFileName, `
[server]
url = "not a url"
timeout = "-1s"
extra = 1

[log]
level = "verbose"

[tui]
confirm_delete = "yes"

[workers]
default = "x"
`)

	cfg, err := newTestLoader(globalDir, nil).Load()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"invalid value for [log] level: verbose",
		`invalid value for [server] timeout: must be positive, got -1s`,
		`invalid value for [server] url: "not a url" must use http or https`,
		"invalid value for [tui] confirm_delete: must be a boolean",
		"unknown key in [server]: extra",
		"unknown section: workers",
	}, cfg.Warnings)

	// Invalid values keep defaults
	assert.Equal(t, domain.DefaultServerURL, cfg.Server.URL)
	assert.Equal(t, domain.DefaultTimeout, cfg.Server.Timeout)
	assert.Equal(t, domain.DefaultLogLevel, cfg.Log.Level)
	assert.True(t, cfg.TUI.ShouldConfirmDelete())
}

func TestLoader_Load_ParseError(t *testing.T) {
	globalDir := t.TempDir()
	writeConfig(t, globalDir, domain.ConfigFileName, "[server\nurl = ")

	_, err := newTestLoader(globalDir, nil).Load()

	assert.Error(t, err)
}

func TestLoader_Load_NoGlobalDir(t *testing.T) {
	cfg, err := newTestLoader("", nil).Load()
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultServerURL, cfg.Server.URL)
}

func TestLoader_Load_RenderedTemplateHasNoWarnings(t *testing.T) {
	globalDir := t.TempDir()
	writeConfig(t, globalDir, domain.ConfigFileName, domain.RenderConfigTemplate(domain.NewDefaultConfig()))

	cfg, err := newTestLoader(globalDir, nil).Load()
	require.NoError(t, err)

	assert.Empty(t, cfg.Warnings)
	assert.Equal(t, domain.DefaultServerURL, cfg.Server.URL)
	assert.Equal(t, domain.DefaultTimeout, cfg.Server.Timeout)
}

func TestParseTimeout(t *testing.T) {
	tests := []struct {
		input   any
		want    time.Duration
		wantErr bool
	}{
		{"15s", 15 * time.Second, false},
		{"1m30s", 90 * time.Second, false},
		{int64(10), 10 * time.Second, false},
		{1.5, 1500 * time.Millisecond, false},
		{"soon", 0, true},
		{int64(0), 0, true},
		{true, 0, true},
	}

	for _, tt := range tests {
		got, err := parseTimeout(tt.input)
		if tt.wantErr {
			assert.Error(t, err, "input %v", tt.input)
			continue
		}
		require.NoError(t, err, "input %v", tt.input)
		assert.Equal(t, tt.want, got)
	}
}
