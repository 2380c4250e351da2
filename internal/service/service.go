// Package service holds the application operations shared by the web
// server and the command line: listing and adding bookmarks, importing and
// exporting Netscape files, logging in and managing API keys.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/mateconpizza/sbm/internal/auth"
	"github.com/mateconpizza/sbm/pkg/bookio"
)

const (
	DefaultPageSize   = 20
	DefaultQueryLimit = 50
	RecentWindow      = 7 * 24 * time.Hour
	TopDomainsLimit   = 5
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrAPIKeyRequired     = errors.New("api key required")
	ErrAPIKeyInvalid      = errors.New("invalid api key")
)

// TitleFetcher fetches the title of a web page.
type TitleFetcher interface {
	Title(ctx context.Context, url string) (string, error)
}

// OptFn is an option function for the services.
type OptFn func(*Options)

// Options holds the dependencies and settings shared by the services.
type Options struct {
	fetcher  TitleFetcher
	pageSize int
	maxSize  int
	observer bookio.Observer
	hasher   auth.Hasher
	now      func() time.Time
}

// WithTitleFetcher sets the fetcher used when a bookmark has no title.
func WithTitleFetcher(f TitleFetcher) OptFn {
	return func(o *Options) {
		o.fetcher = f
	}
}

// WithPageSize sets the number of bookmarks per page.
func WithPageSize(n int) OptFn {
	return func(o *Options) {
		if n > 0 {
			o.pageSize = n
		}
	}
}

// WithMaxImportSize sets the largest accepted import document.
func WithMaxImportSize(n int) OptFn {
	return func(o *Options) {
		o.maxSize = n
	}
}

// WithObserver sets the observer notified of import events.
func WithObserver(obs bookio.Observer) OptFn {
	return func(o *Options) {
		o.observer = obs
	}
}

// WithHasher sets the password hasher.
func WithHasher(h auth.Hasher) OptFn {
	return func(o *Options) {
		o.hasher = h
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) OptFn {
	return func(o *Options) {
		o.now = now
	}
}

func newOptions(opts []OptFn) *Options {
	o := &Options{
		pageSize: DefaultPageSize,
		maxSize:  bookio.DefaultMaxSize,
		hasher:   auth.NewBcryptHasher(),
		now:      time.Now,
	}
	for _, fn := range opts {
		fn(o)
	}

	return o
}
