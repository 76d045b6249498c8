package store

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cesargomez89/sparkify/internal/constants"
)

//go:embed schema_postgres.sql
var postgresSchema string

//go:embed schema_sqlite.sql
var sqliteSchema string

// Schema returns the DDL of the star schema for the given driver.
func Schema(driver string) (string, error) {
	switch driver {
	case constants.DriverPostgres:
		return postgresSchema, nil
	case constants.DriverSQLite:
		return sqliteSchema, nil
	}
	return "", fmt.Errorf("unsupported driver: %s", driver)
}

// CreateSchema creates any missing table. Existing tables and rows are left alone.
func (db *DB) CreateSchema(ctx context.Context) error {
	ddl, err := Schema(db.driver)
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
