package backoffice

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/fernanden/fernanden.go/pkg/connection/sqlstore"
	"github.com/fernanden/fernanden.go/pkg/query"
)

//go:embed migrations
var migrations embed.FS

// MigrateDirection selects whether Migrate applies or reverts migrations.
type MigrateDirection string

const (
	MigrateUp   MigrateDirection = "up"
	MigrateDown MigrateDirection = "down"
)

// Migrate applies the embedded schema migrations to a postgres or sqlite
// backend. steps > 0 limits how many migrations run; 0 means all.
func (a *App) Migrate(direction MigrateDirection, steps int) error {
	conn, ok := a.db.Connection().(*sqlstore.Connection)
	if !ok {
		return fmt.Errorf("migrations need a postgres or sqlite backend, not %s", a.config.Backend)
	}

	var (
		dir    string
		name   string
		driver database.Driver
		err    error
	)
	switch conn.Dialect() {
	case query.Postgres:
		dir, name = "migrations/postgres", "pgx5"
		driver, err = migratepgx.WithInstance(conn.DB(), &migratepgx.Config{})
	case query.SQLite:
		dir, name = "migrations/sqlite", "sqlite"
		driver, err = migratesqlite.WithInstance(conn.DB(), &migratesqlite.Config{})
	default:
		return fmt.Errorf("no migrations for dialect %s", conn.Dialect())
	}
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	src, err := iofs.New(migrations, dir)
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, name, driver)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}

	switch {
	case steps > 0 && direction == MigrateDown:
		err = m.Steps(-steps)
	case steps > 0:
		err = m.Steps(steps)
	case direction == MigrateDown:
		err = m.Down()
	default:
		err = m.Up()
	}
	if errors.Is(err, migrate.ErrNoChange) {
		a.log.Info("schema is up to date")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		return verr
	}
	a.log.Info("migrations applied", "direction", string(direction), "version", version, "dirty", dirty)
	return nil
}
