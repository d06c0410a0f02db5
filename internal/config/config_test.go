package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte(body), 0o600))
}

func TestDefaultConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, filepath.Join("/tmp/xdg", AppName), DefaultConfigDir())
}

func TestNew_Defaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := New(dir)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Dir)
	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.Equal(t, filepath.Join(dir, DatabaseFile), cfg.Database.Path)
	assert.Equal(t, 5*time.Second, cfg.REST.Timeout)
	assert.Equal(t, filepath.Join(dir, "token.json"), cfg.TokenPath())
	assert.Equal(t, filepath.Join(dir, "oauth_client.json"), cfg.OAuthClientPath())
}

func TestLoad_NoFile(t *testing.T) {
	t.Setenv(BackendEnv, "")
	dir := t.TempDir()

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.Equal(t, "Task Board", cfg.GoogleTasks.BoardList)
	assert.Equal(t, "Task Board History", cfg.GoogleTasks.HistoryList)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestLoad_File(t *testing.T) {
	t.Setenv(BackendEnv, "")
	dir := t.TempDir()
	writeConfig(t, dir, `
backend: REST
rest:
  base_url: http://board.local:8080
  timeout: 2s
board:
  policy: local
log:
  level: debug
  file: /tmp/taskboard.log
`)

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Dir)
	assert.Equal(t, BackendREST, cfg.Backend)
	assert.Equal(t, "http://board.local:8080", cfg.REST.BaseURL)
	assert.Equal(t, 2*time.Second, cfg.REST.Timeout)
	assert.Equal(t, "local", cfg.Board.Policy)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/taskboard.log", cfg.Log.File)
	assert.Equal(t, filepath.Join(dir, DatabaseFile), cfg.Database.Path, "unset fields keep defaults")
}

func TestLoad_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "backend: rest\n")
	t.Setenv(BackendEnv, "googletasks")

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, BackendGoogleTasks, cfg.Backend)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv(BackendEnv, "")

	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown backend", "backend: postgres\n", "unknown backend"},
		{"mysql without dsn", "backend: mysql\n", "database.dsn"},
		{"bad policy", "board:\n  policy: sometimes\n", "board.policy"},
		{"same lists", "googletasks:\n  board_list: Board\n  history_list: board\n", "must differ"},
		{"malformed", "backend: [\n", "parse config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, tt.body)

			_, err := Load(dir)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestConfig_TokenHelpers(t *testing.T) {
	cfg, err := New(filepath.Join(t.TempDir(), "nested"))
	require.NoError(t, err)

	require.NoError(t, cfg.EnsureDir())
	assert.False(t, cfg.HasToken())
	assert.False(t, cfg.HasOAuthClient())

	require.NoError(t, os.WriteFile(cfg.TokenPath(), []byte("{}"), 0o600))
	assert.True(t, cfg.HasToken())
	require.NoError(t, cfg.RemoveToken())
	assert.False(t, cfg.HasToken())
}
