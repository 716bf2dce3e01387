package postgres

import (
	"embed"
	"errors"

	"github.com/golang-migrate/migrate/v4"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/samber/oops"
	"github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// RunMigrations applies every pending embedded migration to the database at dsn.
func RunMigrations(dsn string, logger logrus.FieldLogger) error {
	m, err := newMigrate(dsn)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	logger.Info("running migrations...")
	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info("no migrations to run")
			return nil
		}
		return oops.Code("MIGRATION_FAILED").Wrap(err)
	}
	version, _, _ := m.Version()
	logger.WithField("version", version).Info("migrations applied")
	return nil
}

func newMigrate(dsn string) (*migrate.Migrate, error) {
	connCfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, oops.Code("DB_CONFIG_INVALID").Wrap(err)
	}
	db := stdlib.OpenDB(*connCfg)

	driver, err := pgmigrate.WithInstance(db, &pgmigrate.Config{})
	if err != nil {
		_ = db.Close()
		return nil, oops.Code("MIGRATION_FAILED").With("operation", "postgres driver").Wrap(err)
	}
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, oops.Code("MIGRATION_FAILED").With("operation", "embedded source").Wrap(err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, oops.Code("MIGRATION_FAILED").Wrap(err)
	}
	return m, nil
}
