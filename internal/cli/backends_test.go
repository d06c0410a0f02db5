package cli_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskboard/internal/backend/rest"
	"taskboard/internal/backend/sqlstore"
	"taskboard/internal/cli"
	"taskboard/internal/config"
	"taskboard/internal/service"
)

func TestNewService_SQLite(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig(dir)
	cfg.Backend = config.BackendSQLite
	cfg.Database.Path = filepath.Join(dir, "nested", "board.db")

	svc, err := cli.NewService(context.Background(), &cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.(io.Closer).Close() })

	assert.IsType(t, &sqlstore.Store{}, svc)
	assert.FileExists(t, cfg.Database.Path)
}

func TestNewService_REST(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	cfg := config.DefaultConfig(t.TempDir())
	cfg.Backend = config.BackendREST
	cfg.REST.BaseURL = srv.URL

	svc, err := cli.NewService(context.Background(), &cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.IsType(t, &rest.Client{}, svc)

	tasks, err := svc.ListTasks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestNewService_GoogleTasksNeedsCredentials(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig(dir)
	cfg.Backend = config.BackendGoogleTasks

	_, err := cli.NewService(context.Background(), &cfg, zerolog.Nop())
	assert.ErrorIs(t, err, service.ErrAuth)
	assert.ErrorContains(t, err, "oauth_client.json not found")

	require.NoError(t, os.WriteFile(cfg.OAuthClientPath(), []byte(`{"installed":{}}`), 0600))
	_, err = cli.NewService(context.Background(), &cfg, zerolog.Nop())
	assert.ErrorIs(t, err, service.ErrAuth)
	assert.ErrorContains(t, err, "not logged in")
}

func TestNewService_UnknownBackend(t *testing.T) {
	cfg := config.DefaultConfig(t.TempDir())
	cfg.Backend = "ftp"

	_, err := cli.NewService(context.Background(), &cfg, zerolog.Nop())
	assert.EqualError(t, err, `unknown backend "ftp"`)
}
