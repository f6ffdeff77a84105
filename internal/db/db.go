// internal/db/db.go
package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/clubfutbol/clubsite/internal/config"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

type DB struct {
	*sql.DB
	Dialect Dialect
	Queries *Queries
}

// New opens a SQLite database for the given data source name, ensures SQLite
// foreign keys are enabled in the DSN, applies embedded migrations, and
// returns a DB with queries bound to the connection.
func New(dataSourceName string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite3", ensureForeignKeysEnabledDSN(dataSourceName))
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	return open(sqlDB, DialectSQLite)
}

// NewFromConfig opens the configured database, applies migrations, and
// returns a DB with queries bound to the connection.
func NewFromConfig(cfg *config.Config) (*DB, error) {
	sqlDB, dialect, err := OpenSQL(cfg)
	if err != nil {
		return nil, err
	}
	return open(sqlDB, dialect)
}

// OpenSQL opens the configured connection without migrating it. It supports
// "sqlite" (creating the database directory if needed) and "postgres".
func OpenSQL(cfg *config.Config) (*sql.DB, Dialect, error) {
	var sqlDB *sql.DB
	var dialect Dialect
	var err error

	switch cfg.Database.Driver {
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Filename), 0755); err != nil {
			return nil, "", fmt.Errorf("error creating database directory: %w", err)
		}
		dialect = DialectSQLite
		sqlDB, err = sql.Open("sqlite3", ensureForeignKeysEnabledDSN(cfg.Database.Filename))

	case "postgres":
		dialect = DialectPostgres
		sqlDB, err = sql.Open("postgres", cfg.Database.URL)

	default:
		return nil, "", fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}

	if err != nil {
		return nil, "", fmt.Errorf("error opening database: %w", err)
	}
	return sqlDB, dialect, nil
}

func open(sqlDB *sql.DB, dialect Dialect) (*DB, error) {
	if err := RunMigrations(sqlDB, dialect); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("error running migrations: %w", err)
	}

	return &DB{
		DB:      sqlDB,
		Dialect: dialect,
		Queries: NewQueries(sqlDB, dialect),
	}, nil
}

// ensureForeignKeysEnabledDSN adds the `_fk=1` query parameter to a SQLite
// DSN unless `_fk=` is already present.
func ensureForeignKeysEnabledDSN(dataSourceName string) string {
	if strings.Contains(dataSourceName, "_fk=") {
		return dataSourceName
	}
	if strings.Contains(dataSourceName, "?") {
		return dataSourceName + "&_fk=1"
	}
	return dataSourceName + "?_fk=1"
}

// NewMigrate builds a migrate instance over the embedded migrations for an
// already opened connection.
func NewMigrate(sqlDB *sql.DB, dialect Dialect) (*migrate.Migrate, error) {
	var driver database.Driver
	var err error
	switch dialect {
	case DialectSQLite:
		driver, err = sqlite3.WithInstance(sqlDB, &sqlite3.Config{})
	case DialectPostgres:
		driver, err = postgres.WithInstance(sqlDB, &postgres.Config{})
	default:
		return nil, fmt.Errorf("unsupported dialect: %s", dialect)
	}
	if err != nil {
		return nil, fmt.Errorf("could not create migrate driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations/"+string(dialect))
	if err != nil {
		return nil, fmt.Errorf("could not create source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, dialect.MigrateDriverName(), driver)
	if err != nil {
		return nil, fmt.Errorf("could not create migrate instance: %w", err)
	}
	return m, nil
}

// RunMigrations applies the embedded migrations. A "no change" result is not an error.
func RunMigrations(sqlDB *sql.DB, dialect Dialect) error {
	m, err := NewMigrate(sqlDB, dialect)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	return nil
}

// WithTx creates a new DB instance whose queries run on the given transaction
func (db *DB) WithTx(tx *sql.Tx) *DB {
	return &DB{
		DB:      db.DB,
		Dialect: db.Dialect,
		Queries: NewQueries(tx, db.Dialect),
	}
}

// BeginTx starts a transaction
func (db *DB) BeginTx(ctx context.Context) (*sql.Tx, error) {
	tx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("error beginning transaction: %w", err)
	}
	return tx, nil
}

// RunInTx runs the given function in a transaction
func (db *DB) RunInTx(ctx context.Context, fn func(*DB) error) error {
	tx, err := db.BeginTx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	txDB := db.WithTx(tx)
	if err := fn(txDB); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("error rolling back: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing: %w", err)
	}

	return nil
}
