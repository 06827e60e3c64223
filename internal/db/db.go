// internal/db/db.go
package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/codr1/chroma/internal/config"
	dbgen "github.com/codr1/chroma/internal/db/generated"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	DriverSQLite3 = "sqlite3"
	DriverSQLite  = "sqlite"
)

type DB struct {
	*sql.DB
	Queries *dbgen.Queries
	driver  string
}

// New opens a SQLite database with the mattn driver for the given data source name,
// applies embedded migrations, and returns a DB with generated queries bound to the connection.
func New(dataSourceName string) (*DB, error) {
	return open(DriverSQLite3, dataSourceName)
}

// NewFromConfig creates the configured database directory if needed, then opens it with
// the configured driver ("sqlite3" for mattn/go-sqlite3, "sqlite" for modernc.org/sqlite)
// and applies migrations.
func NewFromConfig(cfg *config.Config) (*DB, error) {
	switch cfg.Database.Driver {
	case DriverSQLite3, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Filename), 0755); err != nil {
		return nil, fmt.Errorf("error creating database directory: %w", err)
	}
	return open(cfg.Database.Driver, cfg.Database.Filename)
}

func open(driver, dataSourceName string) (*DB, error) {
	if driver == DriverSQLite {
		dataSourceName = ensureBusyTimeoutPragma(dataSourceName)
	}
	sqlDB, err := sql.Open(driver, dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	// Single writer: the themes slot is rewritten in full on every change.
	sqlDB.SetMaxOpenConns(1)

	// Run migrations
	if err := runMigrations(sqlDB, driver); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("error running migrations: %w", err)
	}

	return &DB{
		DB:      sqlDB,
		Queries: dbgen.New(sqlDB),
		driver:  driver,
	}, nil
}

// ensureBusyTimeoutPragma adds a modernc busy_timeout pragma unless the DSN already sets one.
func ensureBusyTimeoutPragma(dataSourceName string) string {
	if strings.Contains(dataSourceName, "busy_timeout") {
		return dataSourceName
	}
	if strings.Contains(dataSourceName, "?") {
		return dataSourceName + "&_pragma=busy_timeout(5000)"
	}
	return dataSourceName + "?_pragma=busy_timeout(5000)"
}

// runMigrations applies the embedded SQL migrations from migrationsFS to the provided database.
// A "no change" result is not treated as an error.
func runMigrations(db *sql.DB, driverName string) error {
	m, err := newMigrator(db, driverName)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	return nil
}

// newMigrator binds the embedded migrations to an open connection. The returned instance
// must not be closed since that would close db as well.
func newMigrator(db *sql.DB, driverName string) (*migrate.Migrate, error) {
	var (
		driver database.Driver
		err    error
	)
	switch driverName {
	case DriverSQLite:
		driver, err = sqlite.WithInstance(db, &sqlite.Config{})
	default:
		driver, err = sqlite3.WithInstance(db, &sqlite3.Config{})
	}
	if err != nil {
		return nil, fmt.Errorf("could not create migrate driver: %w", err)
	}

	// Create source instance
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("could not create source: %w", err)
	}

	m, err := migrate.NewWithInstance(
		"iofs", source,
		driverName, driver,
	)
	if err != nil {
		return nil, fmt.Errorf("could not create migrate instance: %w", err)
	}
	return m, nil
}

// SchemaVersion reports the applied migration version. A database with no migrations
// applied reports version 0.
func (db *DB) SchemaVersion() (uint, bool, error) {
	m, err := newMigrator(db.DB, db.driver)
	if err != nil {
		return 0, false, err
	}
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("could not read schema version: %w", err)
	}
	return version, dirty, nil
}

// MigrateDown rolls back every applied migration. Saved themes are lost.
func (db *DB) MigrateDown() error {
	m, err := newMigrator(db.DB, db.driver)
	if err != nil {
		return err
	}
	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not roll back migrations: %w", err)
	}
	return nil
}

// SlotStore adapts the generated slot queries to the key/value contract used by the
// theme store.
type SlotStore struct {
	queries *dbgen.Queries
}

func (db *DB) Slots() *SlotStore {
	return &SlotStore{queries: db.Queries}
}

// Get returns the slot value and whether the slot exists.
func (s *SlotStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.queries.GetSlot(ctx, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read slot %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SlotStore) Put(ctx context.Context, key, value string) error {
	if err := s.queries.PutSlot(ctx, dbgen.PutSlotParams{Key: key, Value: value}); err != nil {
		return fmt.Errorf("write slot %s: %w", key, err)
	}
	return nil
}

// Keys lists stored slot keys in key order, including preserved corrupt copies.
func (s *SlotStore) Keys(ctx context.Context) ([]string, error) {
	slots, err := s.queries.ListSlots(ctx)
	if err != nil {
		return nil, fmt.Errorf("list slots: %w", err)
	}
	keys := make([]string, 0, len(slots))
	for _, slot := range slots {
		keys = append(keys, slot.Key)
	}
	return keys, nil
}

func (s *SlotStore) Delete(ctx context.Context, key string) (bool, error) {
	deleted, err := s.queries.DeleteSlot(ctx, key)
	if err != nil {
		return false, fmt.Errorf("delete slot %s: %w", key, err)
	}
	return deleted > 0, nil
}
