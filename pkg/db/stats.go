package db

import (
	"context"
	"fmt"
	"time"
)

// Stats holds bookmark counters for a user.
type Stats struct {
	Bookmarks int `json:"total_bookmarks"`
	Tags      int `json:"total_tags"`
	Recent    int `json:"recent_bookmarks"`
}

// Stats returns the user's counters. Recent counts bookmarks created at or
// after since.
func (r *SQLite) Stats(ctx context.Context, userID int64, since time.Time) (*Stats, error) {
	s := &Stats{}

	var err error
	if s.Bookmarks, err = r.Count(ctx, userID, ""); err != nil {
		return nil, err
	}

	if s.Tags, err = r.CountTags(ctx, userID); err != nil {
		return nil, err
	}

	err = r.DB.GetContext(ctx, &s.Recent,
		"SELECT COUNT(*) FROM bookmarks WHERE user_id = ? AND created_at >= ?",
		userID, since.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("counting recent records: %w", err)
	}

	return s, nil
}

// URLs returns the URL of every bookmark of the user.
func (r *SQLite) URLs(ctx context.Context, userID int64) ([]string, error) {
	var urls []string
	if err := r.DB.SelectContext(ctx, &urls, "SELECT url FROM bookmarks WHERE user_id = ?", userID); err != nil {
		return nil, fmt.Errorf("getting urls: %w", err)
	}

	return urls, nil
}
