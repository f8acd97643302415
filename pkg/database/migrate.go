package database

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/waypace/walk-eta/pkg/config"
	"github.com/waypace/walk-eta/pkg/logger"
)

// RunMigrations applies all pending migrations from the configured directory.
// A missing migrations directory is an error; an up-to-date schema is not.
func RunMigrations(cfg *config.DatabaseConfig) error {
	sourceURL := fmt.Sprintf("file://%s", cfg.MigrationsDir)

	m, err := migrate.New(sourceURL, cfg.MigrateURL())
	if err != nil {
		return fmt.Errorf("unable to initialize migrations: %w", err)
	}
	defer func() {
		sourceErr, dbErr := m.Close()
		if sourceErr != nil {
			logger.Warn("closing migration source", zap.Error(sourceErr))
		}
		if dbErr != nil {
			logger.Warn("closing migration database", zap.Error(dbErr))
		}
	}()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("database schema up to date")
			return nil
		}
		return fmt.Errorf("applying migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("reading migration version: %w", err)
	}

	logger.Info("database migrations applied",
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
	)
	return nil
}
