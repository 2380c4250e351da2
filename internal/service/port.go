package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/mateconpizza/sbm/pkg/bookio"
	"github.com/mateconpizza/sbm/pkg/bookmark"
	"github.com/mateconpizza/sbm/pkg/db"
)

// Port moves bookmarks in and out of the Netscape bookmark format.
type Port struct {
	*Options
	db *db.SQLite
}

// NewPort returns the import/export service backed by r.
func NewPort(r *db.SQLite, opts ...OptFn) *Port {
	return &Port{Options: newOptions(opts), db: r}
}

// MaxSize returns the largest accepted import document in bytes. Zero or a
// negative value means no limit.
func (p *Port) MaxSize() int {
	return p.maxSize
}

// Import stores every link in data for the user. A link whose URL is
// already bookmarked gets its tags merged into the stored bookmark.
func (p *Port) Import(ctx context.Context, userID int64, data []byte) bookio.Result {
	opts := []bookio.ImportOptFn{bookio.WithMaxSize(p.maxSize)}
	if p.observer != nil {
		opts = append(opts, bookio.WithObserver(p.observer))
	}

	im := bookio.NewImporter(p.creator(ctx, userID), opts...)
	res := im.ImportBytes(data)

	slog.Info("import finished",
		"user_id", userID,
		"imported", res.Imported,
		"skipped", res.Skipped,
		"errors", len(res.Errors),
	)

	return res
}

func (p *Port) creator(ctx context.Context, userID int64) bookio.CreateFunc {
	return func(r bookio.Record) error {
		b := bookmark.New()
		b.UserID = userID
		b.URL = bookmark.NormalizeURL(r.URL)
		b.Title = strings.TrimSpace(r.Title)
		b.Desc = r.Description
		b.Tags = bookmark.ParseTags(r.TagString())

		if b.Title == "" {
			b.Title = bookmark.DefaultTitle
		}

		if !r.CreatedAt.IsZero() {
			b.CreatedAt = r.CreatedAt.UTC().Format(time.RFC3339)
		}

		if err := bookmark.Validate(b); err != nil {
			return err
		}

		_, err := p.db.InsertOne(ctx, b)
		if !errors.Is(err, db.ErrRecordDuplicate) {
			return err
		}

		stored, err := p.db.ByURL(ctx, userID, b.URL)
		if err != nil {
			return err
		}

		slog.Debug("import: merging tags", "url", b.URL, "tags", b.Tags)

		return p.db.AddTags(ctx, userID, stored.ID, b.Tags)
	}
}

// Export returns all of the user's bookmarks as a Netscape document.
func (p *Port) Export(ctx context.Context, userID int64) (string, error) {
	var sb strings.Builder
	if err := p.ExportTo(ctx, &sb, userID); err != nil {
		return "", err
	}

	return sb.String(), nil
}

// ExportTo writes all of the user's bookmarks to w as a Netscape document.
func (p *Port) ExportTo(ctx context.Context, w io.Writer, userID int64) error {
	bs, err := p.db.All(ctx, userID)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}

	return bookio.NewExporter(bookio.WithClock(p.now)).ExportTo(w, bookmark.Records(bs))
}

// ExportFilename returns the download name for an export made at t.
func ExportFilename(t time.Time) string {
	return "bookmarks_" + t.Format("20060102") + ".html"
}
