//nolint:perfsprint //ignore
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/mateconpizza/sbm/pkg/bookmark"
)

// ListOpts filters and pages a bookmark listing. A zero Limit means no
// limit.
type ListOpts struct {
	Tag    string
	Limit  int
	Offset int
}

// InsertOne creates a new record in the main table, with its tags.
func (r *SQLite) InsertOne(ctx context.Context, b *bookmark.Bookmark) (int64, error) {
	var id int64
	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		var err error
		id, err = r.insertIntoTx(ctx, tx, b)
		return err
	})

	return id, err
}

func (r *SQLite) insertIntoTx(ctx context.Context, tx *sqlx.Tx, b *bookmark.Bookmark) (int64, error) {
	exists, err := hasTx(ctx, tx, b.UserID, b.URL)
	if err != nil {
		return 0, err
	}

	if exists {
		return 0, fmt.Errorf("%w: %q", ErrRecordDuplicate, b.URL)
	}

	id, err := insertRecord(ctx, tx, b)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", err, b.URL)
	}

	if err := r.associateTags(ctx, tx, b.UserID, id, b.Tags); err != nil {
		return 0, fmt.Errorf("failed to associate tags: %w", err)
	}

	return id, nil
}

func hasTx(ctx context.Context, tx *sqlx.Tx, userID int64, u string) (bool, error) {
	var exists bool

	err := tx.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM bookmarks WHERE user_id = ? AND url = ?)", userID, u)
	if err != nil {
		return false, fmt.Errorf("%w", err)
	}

	return exists, nil
}

func insertRecord(ctx context.Context, tx *sqlx.Tx, b *bookmark.Bookmark) (int64, error) {
	if b.CreatedAt == "" {
		b.CreatedAt = now()
	}

	if b.UpdatedAt == "" {
		b.UpdatedAt = b.CreatedAt
	}

	res, err := tx.NamedExecContext(ctx, `
    INSERT INTO bookmarks (
      user_id,
      url,
      title,
      description,
      created_at,
      updated_at
    )
    VALUES (
      :user_id,
      :url,
      :title,
      :description,
      :created_at,
      :updated_at
    )`, b)
	if err != nil {
		return 0, fmt.Errorf("%w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w", err)
	}

	b.ID = id

	return id, nil
}

// AddTags associates tags with an existing bookmark, ignoring the ones it
// already has.
func (r *SQLite) AddTags(ctx context.Context, userID, bID int64, tags []string) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		var owned bool
		err := tx.GetContext(ctx, &owned,
			"SELECT EXISTS(SELECT 1 FROM bookmarks WHERE id = ? AND user_id = ?)", bID, userID)
		if err != nil {
			return fmt.Errorf("%w", err)
		}

		if !owned {
			return fmt.Errorf("%w with id: %d", ErrRecordNotFound, bID)
		}

		return r.associateTags(ctx, tx, userID, bID, tags)
	})
}

// List returns the user's bookmarks, newest first.
func (r *SQLite) List(ctx context.Context, userID int64, o ListOpts) ([]*bookmark.Bookmark, error) {
	where, args := bookmarkFilter(userID, o.Tag)

	limit := o.Limit
	if limit <= 0 {
		limit = -1
	}

	q := fmt.Sprintf(`
    SELECT
      b.*
    FROM
      bookmarks b
    WHERE
      %s
    ORDER BY
      b.created_at DESC,
      b.id DESC
    LIMIT ? OFFSET ?`, where)

	args = append(args, limit, max(o.Offset, 0))

	return r.bySQL(ctx, q, args...)
}

// All returns all of the user's bookmarks, newest first.
func (r *SQLite) All(ctx context.Context, userID int64) ([]*bookmark.Bookmark, error) {
	bs, err := r.List(ctx, userID, ListOpts{})
	if err != nil {
		return nil, err
	}

	slog.Debug("getting all records", "got", len(bs))

	return bs, nil
}

// Count returns the number of the user's bookmarks, optionally only those
// carrying tag.
func (r *SQLite) Count(ctx context.Context, userID int64, tag string) (int, error) {
	where, args := bookmarkFilter(userID, tag)

	var n int
	err := r.DB.GetContext(ctx, &n, "SELECT COUNT(*) FROM bookmarks b WHERE "+where, args...)
	if err != nil {
		return 0, fmt.Errorf("counting records: %w", err)
	}

	return n, nil
}

func bookmarkFilter(userID int64, tag string) (string, []any) {
	where := "b.user_id = ?"
	args := []any{userID}

	if tag = strings.TrimSpace(tag); tag != "" {
		where += `
      AND EXISTS (
        SELECT 1 FROM bookmark_tags bt
        JOIN tags t ON t.id = bt.tag_id
        WHERE bt.bookmark_id = b.id AND t.name = ?
      )`
		args = append(args, tag)
	}

	return where, args
}

// ByID returns the user's bookmark with the given ID.
func (r *SQLite) ByID(ctx context.Context, userID, bID int64) (*bookmark.Bookmark, error) {
	return r.one(ctx, "SELECT * FROM bookmarks WHERE user_id = ? AND id = ?", userID, bID)
}

// ByURL returns the user's bookmark with the given URL.
func (r *SQLite) ByURL(ctx context.Context, userID int64, u string) (*bookmark.Bookmark, error) {
	return r.one(ctx, "SELECT * FROM bookmarks WHERE user_id = ? AND url = ?", userID, u)
}

func (r *SQLite) one(ctx context.Context, q string, args ...any) (*bookmark.Bookmark, error) {
	var b bookmark.Bookmark
	if err := r.DB.GetContext(ctx, &b, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %v", ErrRecordNotFound, args[len(args)-1])
		}

		return nil, fmt.Errorf("%w: %w", ErrRecordScan, err)
	}

	if err := r.loadTags(ctx, []*bookmark.Bookmark{&b}); err != nil {
		return nil, err
	}

	return &b, nil
}

func (r *SQLite) bySQL(ctx context.Context, q string, args ...any) ([]*bookmark.Bookmark, error) {
	var bb []*bookmark.Bookmark
	err := r.DB.SelectContext(ctx, &bb, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	if err := r.loadTags(ctx, bb); err != nil {
		return nil, err
	}

	return bb, nil
}

// loadTags fills the tags of each bookmark in association order.
func (r *SQLite) loadTags(ctx context.Context, bs []*bookmark.Bookmark) error {
	if len(bs) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(bs))
	byID := make(map[int64]*bookmark.Bookmark, len(bs))
	for _, b := range bs {
		ids = append(ids, b.ID)
		byID[b.ID] = b
	}

	q, args, err := sqlx.In(`
    SELECT
      bt.bookmark_id,
      t.name
    FROM
      bookmark_tags bt
      JOIN tags t ON t.id = bt.tag_id
    WHERE
      bt.bookmark_id IN (?)
    ORDER BY
      bt.rowid ASC`, ids)
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	var rows []struct {
		BookmarkID int64  `db:"bookmark_id"`
		Name       string `db:"name"`
	}

	if err := r.DB.SelectContext(ctx, &rows, r.DB.Rebind(q), args...); err != nil {
		return fmt.Errorf("loading tags: %w", err)
	}

	for _, row := range rows {
		if b, ok := byID[row.BookmarkID]; ok {
			b.Tags = append(b.Tags, row.Name)
		}
	}

	return nil
}

// DeleteOne removes the user's bookmark with the given ID. It reports
// whether a bookmark was removed.
func (r *SQLite) DeleteOne(ctx context.Context, userID, bID int64) (bool, error) {
	var deleted bool

	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
      DELETE FROM bookmark_tags
      WHERE bookmark_id IN (SELECT id FROM bookmarks WHERE id = ? AND user_id = ?)`, bID, userID)
		if err != nil {
			return fmt.Errorf("failed to delete tags: %w", err)
		}

		res, err := tx.ExecContext(ctx, "DELETE FROM bookmarks WHERE id = ? AND user_id = ?", bID, userID)
		if err != nil {
			return fmt.Errorf("failed to delete record: %w", err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("%w", err)
		}

		deleted = n > 0

		return cleanOrphanTagsTx(ctx, tx, userID)
	})

	return deleted, err
}

// DeleteAll removes every bookmark of the user and returns how many were
// removed.
func (r *SQLite) DeleteAll(ctx context.Context, userID int64) (int64, error) {
	var n int64

	err := r.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
      DELETE FROM bookmark_tags
      WHERE bookmark_id IN (SELECT id FROM bookmarks WHERE user_id = ?)`, userID)
		if err != nil {
			return fmt.Errorf("failed to delete tags: %w", err)
		}

		res, err := tx.ExecContext(ctx, "DELETE FROM bookmarks WHERE user_id = ?", userID)
		if err != nil {
			return fmt.Errorf("failed to delete records: %w", err)
		}

		if n, err = res.RowsAffected(); err != nil {
			return fmt.Errorf("%w", err)
		}

		return cleanOrphanTagsTx(ctx, tx, userID)
	})
	if err != nil {
		return 0, err
	}

	slog.Info("deleted all records", "user_id", userID, "count", n)

	return n, nil
}
