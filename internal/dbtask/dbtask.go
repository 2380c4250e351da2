// Package dbtask provides maintenance tasks for the SQLite database.
package dbtask

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/mateconpizza/sbm/pkg/db"
)

// Default date format for backup names.
const defaultDateFormat = "20060102-150405"

var (
	ErrBackupExists = errors.New("backup already exists")
	ErrBackupMemory = errors.New("cannot back up an in-memory database")
	ErrDBCorrupted  = errors.New("database corrupted")
)

// BackupName returns the file name of a backup of dbName taken at t, like
// 20060102-150405_stupidbookmarks.db.
func BackupName(dbName string, t time.Time) string {
	return fmt.Sprintf("%s_%s", t.Format(defaultDateFormat), dbName)
}

// Backup writes a compacted copy of r into dir and verifies its integrity.
// It returns the path of the new file.
func Backup(ctx context.Context, r *db.SQLite, dir string, t time.Time) (string, error) {
	if r.Cfg.Path == "" {
		return "", ErrBackupMemory
	}

	dest := filepath.Join(dir, BackupName(r.Name(), t))
	slog.Info("creating SQLite backup",
		"src", r.Cfg.Fullpath(),
		"dest", dest,
	)

	if _, err := os.Stat(dest); err == nil {
		return "", fmt.Errorf("%w: %q", ErrBackupExists, dest)
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("creating backup dir: %w", err)
	}

	if _, err := r.DB.ExecContext(ctx, "VACUUM INTO ?", dest); err != nil {
		return "", fmt.Errorf("backup: %w", err)
	}

	if err := VerifyIntegrity(ctx, r.Cfg.Driver, dest); err != nil {
		return "", err
	}

	return dest, nil
}

// VerifyIntegrity runs SQLite's integrity check on the database file at
// path.
func VerifyIntegrity(ctx context.Context, driver, path string) error {
	slog.Debug("verifying SQLite integrity", "path", path)

	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: %q", db.ErrDBNotFound, path)
	}

	conn, err := db.OpenDatabase(driver, path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDBCorrupted, err)
	}

	defer func() {
		if err := conn.Close(); err != nil {
			slog.Error("error closing db", "error", err)
		}
	}()

	return check(conn.QueryRowxContext(ctx, "PRAGMA integrity_check;").Scan)
}

// Check runs SQLite's integrity check on an open repository.
func Check(ctx context.Context, r *db.SQLite) error {
	return check(r.DB.QueryRowxContext(ctx, "PRAGMA integrity_check;").Scan)
}

func check(scan func(...any) error) error {
	var result string
	if err := scan(&result); err != nil {
		return fmt.Errorf("%w: %w", ErrDBCorrupted, err)
	}

	if result != "ok" {
		return fmt.Errorf("%w: integrity check: %q", ErrDBCorrupted, result)
	}

	slog.Debug("SQLite integrity verified", "result", result)

	return nil
}
