package store

import (
	"context"
	"fmt"
	"slices"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/cesargomez89/sparkify/internal/constants"
)

// DB is the single connection an ETL run loads through.
type DB struct {
	*sqlx.DB
	driver string
}

// Open connects to the target database and verifies the connection.
// driver is constants.DriverPostgres or constants.DriverSQLite.
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	var sqlDriver string
	switch driver {
	case constants.DriverPostgres:
		sqlDriver = "pgx"
	case constants.DriverSQLite:
		sqlDriver = "sqlite"
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sqlx.Open(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	// One long-lived connection for the whole run; files are loaded one after another.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close() //nolint:errcheck // already failing
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	if driver == constants.DriverSQLite {
		for _, pragma := range []string{
			"PRAGMA journal_mode=WAL",
			"PRAGMA busy_timeout=30000",
			"PRAGMA foreign_keys=ON",
		} {
			if _, err := db.ExecContext(ctx, pragma); err != nil {
				db.Close() //nolint:errcheck // already failing
				return nil, fmt.Errorf("failed to set %q: %w", pragma, err)
			}
		}
	}

	return &DB{DB: db, driver: driver}, nil
}

// Driver returns the configured driver name.
func (db *DB) Driver() string {
	return db.driver
}

func (db *DB) Close() error {
	return db.DB.Close()
}

// Count returns the number of rows in one of the star schema tables.
func (db *DB) Count(ctx context.Context, table string) (int, error) {
	if !slices.Contains(constants.Tables, table) {
		return 0, fmt.Errorf("unknown table: %s", table)
	}
	var n int
	if err := db.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+table); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}
