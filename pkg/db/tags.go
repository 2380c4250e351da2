package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"
)

// Tag font sizes in a tag cloud.
const (
	tagSizeBase = 12
	tagSizeStep = 2
	tagSizeMax  = 24
)

// TagCount is a tag with the number of bookmarks carrying it.
type TagCount struct {
	Name  string `db:"name"  json:"name"`
	Color string `db:"color" json:"color"`
	Count int    `db:"count" json:"count"`
	Size  int    `db:"-"     json:"size"`
}

// getOrCreateTag returns the tag ID.
func (r *SQLite) getOrCreateTag(ctx context.Context, tx *sqlx.Tx, userID int64, s string) (int64, error) {
	if s == "" {
		// no tag to process
		return 0, nil
	}
	// try to get the tag within the transaction
	tagID, err := getTag(ctx, tx, userID, s)
	if err != nil {
		return 0, fmt.Errorf("getting tag: error retrieving tag: %w", err)
	}
	// if the tag doesn't exist, create it within the transaction
	if tagID == 0 {
		tagID, err = createTag(ctx, tx, userID, s)
		if err != nil {
			return 0, fmt.Errorf("creating tag: error creating tag: %w", err)
		}
	}

	return tagID, nil
}

// associateTags associates tags to the given record. Tags differing only in
// case are the same tag.
func (r *SQLite) associateTags(ctx context.Context, tx *sqlx.Tx, userID, bID int64, tags []string) error {
	slog.Debug("associating tags with bookmark", "tags", tags, "id", bID)

	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		key := strings.ToLower(tag)
		if tag == "" || seen[key] {
			continue
		}
		seen[key] = true

		tagID, err := r.getOrCreateTag(ctx, tx, userID, tag)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO bookmark_tags (bookmark_id, tag_id) VALUES (?, ?)", bID, tagID)
		if err != nil {
			return fmt.Errorf("associating tag %q: %w", tag, err)
		}
	}

	return nil
}

// getTag returns the tag ID, or zero when the user has no such tag.
func getTag(ctx context.Context, tx *sqlx.Tx, userID int64, tag string) (int64, error) {
	var tagID int64

	err := tx.QueryRowxContext(ctx, "SELECT id FROM tags WHERE user_id = ? AND name = ?", userID, tag).Scan(&tagID)
	if errors.Is(err, sql.ErrNoRows) {
		// tag not found
		return 0, nil
	} else if err != nil {
		return 0, fmt.Errorf("getTag: error querying tag: %w", err)
	}

	return tagID, nil
}

// createTag creates a new tag.
func createTag(ctx context.Context, tx *sqlx.Tx, userID int64, tag string) (int64, error) {
	result, err := tx.ExecContext(ctx,
		"INSERT INTO tags (user_id, name, color) VALUES (?, ?, ?)", userID, tag, DefaultTagColor)
	if err != nil {
		return 0, fmt.Errorf("CreateTag: %w", err)
	}

	tagID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("CreateTag: error getting last insert ID: %w", err)
	}

	return tagID, nil
}

// TagCloud returns the user's tags in use, most used first, each with a
// font size that grows with its count.
func (r *SQLite) TagCloud(ctx context.Context, userID int64) ([]TagCount, error) {
	q := `
    SELECT
      t.name,
      t.color,
      COUNT(bt.bookmark_id) AS count
    FROM
      tags t
      JOIN bookmark_tags bt ON t.id = bt.tag_id
      JOIN bookmarks b ON b.id = bt.bookmark_id
    WHERE
      b.user_id = ?
    GROUP BY
      t.id,
      t.name,
      t.color
    ORDER BY
      count DESC,
      t.name ASC`

	var tags []TagCount
	if err := r.DB.SelectContext(ctx, &tags, q, userID); err != nil {
		return nil, fmt.Errorf("error querying tags count: %w", err)
	}

	for i := range tags {
		tags[i].Size = TagSize(tags[i].Count)
	}

	return tags, nil
}

// TagSize returns the cloud font size for a tag used count times.
func TagSize(count int) int {
	return min(count*tagSizeStep+tagSizeBase, tagSizeMax)
}

// CountTags returns the number of distinct tags on the user's bookmarks.
func (r *SQLite) CountTags(ctx context.Context, userID int64) (int, error) {
	var n int

	err := r.DB.GetContext(ctx, &n, `
    SELECT COUNT(DISTINCT bt.tag_id)
    FROM bookmark_tags bt
    JOIN bookmarks b ON b.id = bt.bookmark_id
    WHERE b.user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("counting tags: %w", err)
	}

	return n, nil
}
