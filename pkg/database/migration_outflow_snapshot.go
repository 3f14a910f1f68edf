package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddNamedMigrationContext("00003_outflow_snapshot_columns.go", upOutflowSnapshot, downOutflowSnapshot)
}

// snapshotColumns are the outflow columns added after the first release.
// Stores created by that release lack them, newer stores may already have them.
var snapshotColumns = []struct {
	name string
	ddl  string
}{
	{"category", "ALTER TABLE outflow ADD COLUMN category TEXT NOT NULL DEFAULT ''"},
	{"price", "ALTER TABLE outflow ADD COLUMN price REAL DEFAULT 0"},
	{"total_price", "ALTER TABLE outflow ADD COLUMN total_price REAL DEFAULT 0"},
}

func upOutflowSnapshot(ctx context.Context, tx *sql.Tx) error {
	for _, col := range snapshotColumns {
		exists, err := columnExists(ctx, tx, "outflow", col.name)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if _, err := tx.ExecContext(ctx, col.ddl); err != nil {
			return fmt.Errorf("add outflow.%s: %w", col.name, err)
		}
	}
	return nil
}

func downOutflowSnapshot(ctx context.Context, tx *sql.Tx) error {
	for i := len(snapshotColumns) - 1; i >= 0; i-- {
		col := snapshotColumns[i]
		exists, err := columnExists(ctx, tx, "outflow", col.name)
		if err != nil {
			return err
		}
		if !exists {
			continue
		}
		if _, err := tx.ExecContext(ctx, "ALTER TABLE outflow DROP COLUMN "+col.name); err != nil {
			return fmt.Errorf("drop outflow.%s: %w", col.name, err)
		}
	}
	return nil
}

func columnExists(ctx context.Context, tx *sql.Tx, table, column string) (bool, error) {
	var n int
	err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?", table, column,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("inspect %s.%s: %w", table, column, err)
	}
	return n > 0, nil
}
