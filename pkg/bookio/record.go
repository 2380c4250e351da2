// Package bookio reads and writes bookmark collections in the Netscape
// Bookmark HTML format used by every major browser for import and export.
package bookio

import (
	"errors"
	"strings"
	"time"
)

// DefaultMaxSize is the largest document accepted by the importer.
const DefaultMaxSize = 32 << 20

var (
	ErrNoNetscapeFile = errors.New("file does not appear to be a valid Netscape bookmark file")
	ErrTooLarge       = errors.New("document exceeds maximum size")
)

// Record is a single bookmark as it travels through the interchange format.
type Record struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tags        []string  `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
}

// TagString returns the tags joined by a single space.
func (r *Record) TagString() string {
	return strings.Join(r.Tags, " ")
}

// Result summarizes an import run.
type Result struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
}

// Total returns the number of links seen.
func (r *Result) Total() int {
	return r.Imported + r.Skipped
}
