// Package cli parses the command line, opens the configured backend and
// dispatches to commands.
package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"taskboard/internal/backend/googletasks"
	"taskboard/internal/backend/rest"
	"taskboard/internal/backend/sqlstore"
	"taskboard/internal/config"
	"taskboard/internal/logging"
	"taskboard/internal/service"
)

// NewService is the production ServiceFactory. It opens the backend named
// by cfg.Backend.
func NewService(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (service.Service, error) {
	logger = logging.Component(logger, cfg.Backend)

	switch cfg.Backend {
	case config.BackendSQLite:
		return openSQL(ctx, sqlstore.DialectSQLite, cfg.Database.Path, logger)
	case config.BackendMySQL:
		return openSQL(ctx, sqlstore.DialectMySQL, cfg.Database.DSN, logger)
	case config.BackendREST:
		c, err := rest.New(cfg.REST.BaseURL, cfg.REST.Timeout, logger)
		if err != nil {
			return nil, err
		}
		return c, nil
	case config.BackendGoogleTasks:
		if !cfg.HasOAuthClient() {
			return nil, fmt.Errorf("%w: oauth_client.json not found in %s", service.ErrAuth, cfg.Dir)
		}
		if !cfg.HasToken() {
			return nil, fmt.Errorf("%w: not logged in (run: taskboard login)", service.ErrAuth)
		}
		c, err := googletasks.New(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

func openSQL(ctx context.Context, dialect sqlstore.Dialect, dsn string, logger zerolog.Logger) (service.Service, error) {
	s, err := sqlstore.Open(ctx, dialect, dsn, logger)
	if err != nil {
		return nil, err
	}
	return s, nil
}
