package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// APIKey is a stored API key. Only the hash of the key is kept.
type APIKey struct {
	ID        int64   `db:"id"          json:"id"`
	UserID    int64   `db:"user_id"     json:"-"`
	Name      string  `db:"name"        json:"name"`
	Hash      string  `db:"key_hash"    json:"-"`
	Preview   string  `db:"key_preview" json:"key_preview"`
	Active    bool    `db:"active"      json:"active"`
	CreatedAt string  `db:"created_at"  json:"created_at"`
	LastUsed  *string `db:"last_used"   json:"last_used"`
}

// InsertAPIKey stores k and sets its ID.
func (r *SQLite) InsertAPIKey(ctx context.Context, k *APIKey) (int64, error) {
	if k.CreatedAt == "" {
		k.CreatedAt = now()
	}

	res, err := r.DB.NamedExecContext(ctx, `
    INSERT INTO api_keys (user_id, name, key_hash, key_preview, active, created_at)
    VALUES (:user_id, :name, :key_hash, :key_preview, :active, :created_at)`, k)
	if err != nil {
		return 0, fmt.Errorf("creating api key: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w", err)
	}

	k.ID = id

	return id, nil
}

// APIKeys returns the user's keys, newest first.
func (r *SQLite) APIKeys(ctx context.Context, userID int64) ([]*APIKey, error) {
	var keys []*APIKey

	err := r.DB.SelectContext(ctx, &keys,
		"SELECT * FROM api_keys WHERE user_id = ? ORDER BY created_at DESC, id DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("getting api keys: %w", err)
	}

	return keys, nil
}

// APIKeyByHash returns the active key with the given hash.
func (r *SQLite) APIKeyByHash(ctx context.Context, hash string) (*APIKey, error) {
	var k APIKey

	err := r.DB.GetContext(ctx, &k, "SELECT * FROM api_keys WHERE key_hash = ? AND active = TRUE", hash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAPIKeyNotFound
		}

		return nil, fmt.Errorf("%w: %w", ErrRecordScan, err)
	}

	return &k, nil
}

// TouchAPIKey records t as the last use of the key.
func (r *SQLite) TouchAPIKey(ctx context.Context, id int64, t time.Time) error {
	_, err := r.DB.ExecContext(ctx, "UPDATE api_keys SET last_used = ? WHERE id = ?",
		t.UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("updating api key: %w", err)
	}

	return nil
}

// DeleteAPIKey removes the user's key with the given ID. It reports whether
// a key was removed.
func (r *SQLite) DeleteAPIKey(ctx context.Context, userID, id int64) (bool, error) {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM api_keys WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return false, fmt.Errorf("deleting api key: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w", err)
	}

	return n > 0, nil
}
