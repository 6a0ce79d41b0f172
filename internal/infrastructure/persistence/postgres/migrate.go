package postgres

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/uit-hub/academic-ledger/pkg/logger"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationStatus is the schema version after a migration run.
type MigrationStatus struct {
	Version uint
	Dirty   bool
}

// Migrate applies every pending embedded migration.
func (c *Connection) Migrate(log *logger.Logger) (MigrationStatus, error) {
	return c.runMigration(log, func(m *migrate.Migrate) error { return m.Up() })
}

// MigrateDown rolls back the given number of migrations.
func (c *Connection) MigrateDown(log *logger.Logger, steps int) (MigrationStatus, error) {
	if steps <= 0 {
		return MigrationStatus{}, fmt.Errorf("%w: steps must be positive", ErrMigrationFailed)
	}
	return c.runMigration(log, func(m *migrate.Migrate) error { return m.Steps(-steps) })
}

func (c *Connection) runMigration(log *logger.Logger, run func(*migrate.Migrate) error) (MigrationStatus, error) {
	if log == nil {
		log = logger.Nop()
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return MigrationStatus{}, fmt.Errorf("%w: load migrations: %v", ErrMigrationFailed, err)
	}

	db := stdlib.OpenDBFromPool(c.Pool())
	defer db.Close()

	driver, err := migratepgx.WithInstance(db, &migratepgx.Config{})
	if err != nil {
		return MigrationStatus{}, fmt.Errorf("%w: create driver: %v", ErrMigrationFailed, err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "pgx5", driver)
	if err != nil {
		return MigrationStatus{}, fmt.Errorf("%w: init: %v", ErrMigrationFailed, err)
	}
	defer m.Close()
	m.Log = log

	if err := run(m); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return MigrationStatus{}, fmt.Errorf("%w: %v", ErrMigrationFailed, err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return MigrationStatus{}, fmt.Errorf("%w: read version: %v", ErrMigrationFailed, err)
	}

	status := MigrationStatus{Version: version, Dirty: dirty}
	if dirty {
		log.Warn("database migration is dirty", logger.F("version", version))
	} else {
		log.Info("database migration complete", logger.F("version", version))
	}
	return status, nil
}
