package postgres

import (
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/config"
	"github.com/dicksonmayoyo1-lang/MedicalNER/internal/infrastructure/monitoring/logging"
	"github.com/dicksonmayoyo1-lang/MedicalNER/pkg/errors"
)

// Migrator applies the SQL migrations under the configured migration path.
type Migrator struct {
	m      *migrate.Migrate
	logger logging.Logger
}

// NewMigrator prepares a migrator for the database in cfg. path is a
// directory of golang-migrate up/down SQL files.
func NewMigrator(cfg config.DatabaseConfig, logger logging.Logger) (*Migrator, error) {
	path := cfg.MigrationPath
	if path == "" {
		path = "migrations"
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	m, err := migrate.New("file://"+path, "pgx5://"+DSN(cfg)[len("postgres://"):])
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeDatabaseError, "postgres: initializing migrator")
	}
	return &Migrator{m: m, logger: logger.Named("migrator")}, nil
}

// Up applies all pending migrations. An already current schema is not an
// error.
func (mg *Migrator) Up() error {
	if err := mg.m.Up(); err != nil && err != migrate.ErrNoChange {
		return errors.Wrap(err, errors.CodeDatabaseError, "postgres: applying migrations")
	}
	version, dirty, err := mg.m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return errors.Wrap(err, errors.CodeDatabaseError, "postgres: reading schema version")
	}
	mg.logger.Info("schema migrated",
		logging.Int("version", int(version)),
		logging.Bool("dirty", dirty))
	return nil
}

// Down rolls back a single migration.
func (mg *Migrator) Down() error {
	if err := mg.m.Steps(-1); err != nil && err != migrate.ErrNoChange {
		return errors.Wrap(err, errors.CodeDatabaseError, "postgres: rolling back migration")
	}
	return nil
}

// Close releases the migrator's connections.
func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	if srcErr != nil {
		return srcErr
	}
	return dbErr
}
