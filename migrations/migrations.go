// Package migrations embeds the schema and applies it with golang-migrate.
package migrations

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed *.sql
var files embed.FS

// Up returns the names of the forward migrations in apply order.
func Up() ([]string, error) {
	names, err := fs.Glob(files, "*.up.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

// Source returns a migration source driver over the embedded files.
func Source() (source.Driver, error) {
	d, err := iofs.New(files, ".")
	if err != nil {
		return nil, fmt.Errorf("migrations: source: %w", err)
	}
	return d, nil
}

// New returns a migrator for the PostgreSQL database at dsn.
func New(dsn string) (*migrate.Migrate, error) {
	src, err := Source()
	if err != nil {
		return nil, err
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, DriverURL(dsn))
	if err != nil {
		return nil, fmt.Errorf("migrations: open: %w", err)
	}
	return m, nil
}

// Apply migrates the database to the latest version and returns that version.
// An already current schema is not an error.
func Apply(dsn string) (uint, error) {
	m, err := New(dsn)
	if err != nil {
		return 0, err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("migrations: up: %w", err)
	}
	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("migrations: version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("migrations: version %d is dirty", version)
	}
	return version, nil
}

// Rollback reverts steps migrations. Zero reverts all of them.
func Rollback(dsn string, steps int) error {
	m, err := New(dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	if steps == 0 {
		err = m.Down()
	} else {
		err = m.Steps(-steps)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrations: down: %w", err)
	}
	return nil
}

// DriverURL rewrites a postgres URL to the scheme of the pgx v5 migrate driver.
func DriverURL(dsn string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(dsn, prefix) {
			return "pgx5://" + strings.TrimPrefix(dsn, prefix)
		}
	}
	return dsn
}
