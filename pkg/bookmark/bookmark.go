// Package bookmark contains the bookmark record.
package bookmark

import (
	"errors"
	"strings"
	"time"

	"github.com/mateconpizza/sbm/pkg/bookio"
)

// DefaultTitle is used when no title is given and none can be fetched.
const DefaultTitle = "Untitled"

var (
	ErrDuplicate    = errors.New("bookmark already exists")
	ErrInvalid      = errors.New("bookmark invalid")
	ErrInvalidID    = errors.New("invalid bookmark id")
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("no bookmark found")
	ErrTitleEmpty   = errors.New("title cannot be empty")
	ErrURLEmpty     = errors.New("URL cannot be empty")
	ErrURLInvalid   = errors.New("URL is not valid")
)

// Bookmark represents a bookmark.
type Bookmark struct {
	ID        int64    `db:"id"          json:"id"`
	UserID    int64    `db:"user_id"     json:"-"`
	URL       string   `db:"url"         json:"url"`
	Title     string   `db:"title"       json:"title"`
	Desc      string   `db:"description" json:"description"`
	CreatedAt string   `db:"created_at"  json:"created_at"`
	UpdatedAt string   `db:"updated_at"  json:"updated_at"`
	Tags      []string `db:"-"           json:"tags"`
}

// New creates a new bookmark.
func New() *Bookmark {
	return &Bookmark{}
}

// Domain returns the host of the bookmark URL without the "www." prefix.
func (b *Bookmark) Domain() string {
	d, err := domain(b.URL)
	if err != nil {
		return ""
	}

	return d
}

// Created returns the creation time of the bookmark.
func (b *Bookmark) Created() (time.Time, bool) {
	return parseTime(b.CreatedAt)
}

// TagsString returns the tags joined by a single space.
func (b *Bookmark) TagsString() string {
	return strings.Join(b.Tags, " ")
}

// HasTag reports whether the bookmark carries the tag, ignoring case.
func (b *Bookmark) HasTag(tag string) bool {
	for _, t := range b.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}

	return false
}

// Record converts the bookmark into an interchange record.
func (b *Bookmark) Record() bookio.Record {
	r := bookio.Record{
		URL:         b.URL,
		Title:       b.Title,
		Description: b.Desc,
		Tags:        append([]string(nil), b.Tags...),
	}
	if t, ok := b.Created(); ok {
		r.CreatedAt = t
	}

	return r
}

// Records converts a slice of bookmarks into interchange records.
func Records(bs []*Bookmark) []bookio.Record {
	rs := make([]bookio.Record, 0, len(bs))
	for _, b := range bs {
		rs = append(rs, b.Record())
	}

	return rs
}

// Equals reports whether b and o have the same URL, Tags, Title and Desc.
func (b *Bookmark) Equals(o *Bookmark) bool {
	if b == nil || o == nil {
		return b == o
	}

	if b.URL != o.URL || b.Title != o.Title || b.Desc != o.Desc {
		return false
	}

	if len(b.Tags) != len(o.Tags) {
		return false
	}

	for i := range b.Tags {
		if b.Tags[i] != o.Tags[i] {
			return false
		}
	}

	return true
}

func parseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range []string{time.RFC3339, time.DateTime} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}
