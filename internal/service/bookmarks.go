package service

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/mateconpizza/sbm/pkg/bookmark"
	"github.com/mateconpizza/sbm/pkg/db"
)

// NewBookmark is the user input for a bookmark, as typed in a form or sent
// to the API.
type NewBookmark struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Tags        string `json:"tags"`
}

// Page is one page of a bookmark listing.
type Page struct {
	Bookmarks  []*bookmark.Bookmark
	Tag        string
	Pagination Pagination
}

// DomainCount is the number of bookmarks pointing to a domain.
type DomainCount struct {
	Domain string `json:"domain"`
	Count  int    `json:"count"`
}

// Statistics summarizes the bookmarks of a user.
type Statistics struct {
	db.Stats

	TopDomains      []DomainCount `json:"top_domains"`
	TopDomainsCount int           `json:"top_domains_count"`
}

// Bookmarks manages the bookmarks of a user.
type Bookmarks struct {
	*Options
	db *db.SQLite
}

// NewBookmarks returns the bookmarks service backed by r.
func NewBookmarks(r *db.SQLite, opts ...OptFn) *Bookmarks {
	return &Bookmarks{Options: newOptions(opts), db: r}
}

// List returns the given page of the user's bookmarks, newest first,
// optionally only those carrying tag.
func (s *Bookmarks) List(ctx context.Context, userID int64, tag string, page int) (*Page, error) {
	tag = strings.TrimSpace(tag)

	total, err := s.db.Count(ctx, userID, tag)
	if err != nil {
		return nil, err
	}

	p := NewPagination(page, total, s.pageSize)

	bs, err := s.db.List(ctx, userID, db.ListOpts{Tag: tag, Limit: p.PerPage, Offset: p.Start})
	if err != nil {
		return nil, err
	}

	return &Page{Bookmarks: bs, Tag: tag, Pagination: p}, nil
}

// Query returns up to limit of the user's bookmarks after skipping offset.
// A non-positive limit means DefaultQueryLimit.
func (s *Bookmarks) Query(ctx context.Context, userID int64, tag string, limit, offset int) ([]*bookmark.Bookmark, error) {
	if limit <= 0 {
		limit = DefaultQueryLimit
	}

	return s.db.List(ctx, userID, db.ListOpts{Tag: tag, Limit: limit, Offset: max(offset, 0)})
}

// Add stores a new bookmark for the user. A blank title is fetched from the
// page, falling back to bookmark.DefaultTitle.
func (s *Bookmarks) Add(ctx context.Context, userID int64, nb NewBookmark) (*bookmark.Bookmark, error) {
	b := bookmark.New()
	b.UserID = userID
	b.URL = bookmark.NormalizeURL(nb.URL)
	b.Title = strings.TrimSpace(nb.Title)
	b.Desc = strings.TrimSpace(nb.Description)
	b.Tags = bookmark.ParseTags(nb.Tags)

	if b.URL == "" {
		return nil, bookmark.ErrURLEmpty
	}

	if b.Title == "" {
		b.Title = s.fetchTitle(ctx, b.URL)
	}

	if err := bookmark.Validate(b); err != nil {
		return nil, fmt.Errorf("%w: %w", bookmark.ErrInvalid, err)
	}

	if _, err := s.db.InsertOne(ctx, b); err != nil {
		return nil, err
	}

	slog.Info("bookmark added", "user_id", userID, "url", b.URL)

	// reload to get the stored timestamps and tag casing
	return s.db.ByID(ctx, userID, b.ID)
}

func (s *Bookmarks) fetchTitle(ctx context.Context, u string) string {
	if s.fetcher == nil {
		return bookmark.DefaultTitle
	}

	t, err := s.fetcher.Title(ctx, u)
	if err != nil {
		slog.Warn("fetching title", "url", u, "error", err)
		return bookmark.DefaultTitle
	}

	return t
}

// Delete removes the user's bookmark with the given ID.
func (s *Bookmarks) Delete(ctx context.Context, userID, id int64) error {
	ok, err := s.db.DeleteOne(ctx, userID, id)
	if err != nil {
		return err
	}

	if !ok {
		return fmt.Errorf("%w: id %d", bookmark.ErrNotFound, id)
	}

	return nil
}

// DeleteAll removes every bookmark of the user and returns how many were
// removed.
func (s *Bookmarks) DeleteAll(ctx context.Context, userID int64) (int64, error) {
	return s.db.DeleteAll(ctx, userID)
}

// TagCloud returns the user's tags, most used first.
func (s *Bookmarks) TagCloud(ctx context.Context, userID int64) ([]db.TagCount, error) {
	return s.db.TagCloud(ctx, userID)
}

// Statistics returns the counters shown in the admin dashboard.
func (s *Bookmarks) Statistics(ctx context.Context, userID int64) (*Statistics, error) {
	st, err := s.db.Stats(ctx, userID, s.now().Add(-RecentWindow))
	if err != nil {
		return nil, err
	}

	urls, err := s.db.URLs(ctx, userID)
	if err != nil {
		return nil, err
	}

	top := TopDomains(urls, TopDomainsLimit)

	return &Statistics{Stats: *st, TopDomains: top, TopDomainsCount: len(top)}, nil
}

// TopDomains counts urls per domain and returns the n most common, ties
// broken by name.
func TopDomains(urls []string, n int) []DomainCount {
	counts := make(map[string]int)
	for _, u := range urls {
		b := &bookmark.Bookmark{URL: u}
		if d := b.Domain(); d != "" {
			counts[d]++
		}
	}

	dc := make([]DomainCount, 0, len(counts))
	for d, c := range counts {
		dc = append(dc, DomainCount{Domain: d, Count: c})
	}

	slices.SortFunc(dc, func(a, b DomainCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}

		return cmp.Compare(a.Domain, b.Domain)
	})

	if n > 0 && len(dc) > n {
		dc = dc[:n]
	}

	return dc
}

// IsNotFound reports whether err means a missing bookmark.
func IsNotFound(err error) bool {
	return errors.Is(err, bookmark.ErrNotFound) || errors.Is(err, db.ErrRecordNotFound)
}
