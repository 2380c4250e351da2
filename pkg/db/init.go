package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"
)

// SchemaVersion is stored in PRAGMA user_version once the schema is in
// place.
const SchemaVersion = 1

// schemas lists every table in creation order; foreign keys point backwards.
var schemas = []Schema{
	schemaUsers,
	schemaMain,
	schemaTags,
	schemaRelation,
	schemaKeys,
}

// Init creates the tables, indexes and triggers that are missing and stamps
// the schema version. Calling it on an initialized database is a no-op.
func (r *SQLite) Init(ctx context.Context) error {
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, s := range schemas {
			stmts := append([]string{s.SQL}, s.Index...)
			stmts = append(stmts, s.Trigger...)

			for _, q := range stmts {
				if _, err := tx.ExecContext(ctx, q); err != nil {
					return fmt.Errorf("schema %q: %w", s.Name, err)
				}
			}

			slog.Debug("schema ready", "table", s.Name)
		}

		_, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", SchemaVersion))

		return err
	})
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}

	return nil
}

// Version returns the schema version recorded in the database, 0 when it
// was never initialized.
func (r *SQLite) Version(ctx context.Context) (int, error) {
	var v int
	if err := r.DB.GetContext(ctx, &v, "PRAGMA user_version"); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}

	return v, nil
}

// IsInitialized reports whether every table exists.
func (r *SQLite) IsInitialized(ctx context.Context) (bool, error) {
	names := make([]Table, 0, len(schemas))
	for _, s := range schemas {
		names = append(names, s.Name)
	}

	q, args, err := sqlx.In("SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN (?)", names)
	if err != nil {
		return false, err
	}

	var n int
	if err := r.DB.GetContext(ctx, &n, r.DB.Rebind(q), args...); err != nil {
		return false, fmt.Errorf("listing tables: %w", err)
	}

	if n != len(names) {
		slog.Warn("database schema incomplete", "tables", n, "want", len(names))
		return false, nil
	}

	return true, nil
}
