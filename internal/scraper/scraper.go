// Package scraper fetches web pages to fill in bookmark details.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout   = 5 * time.Second
	defaultUserAgent = "StupidBookmarks/1.0"
	maxBodySize      = 10 * 1024 * 1024 // 10MB
)

var (
	ErrNoTitle           = errors.New("page has no title")
	ErrRateLimited       = errors.New("rate limited")
	ErrStatus            = errors.New("unexpected status code")
	ErrUnsupportedScheme = errors.New("unsupported scheme")
)

type OptFn func(*Options)

type Options struct {
	timeout   time.Duration
	userAgent string
	transport http.RoundTripper
	rateLimit rate.Limit
}

// WithTimeout sets the timeout of a whole request.
func WithTimeout(d time.Duration) OptFn {
	return func(o *Options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) OptFn {
	return func(o *Options) {
		if ua != "" {
			o.userAgent = ua
		}
	}
}

// WithRateLimit caps outgoing requests per second. Zero or less means no
// limit.
func WithRateLimit(perSecond float64) OptFn {
	return func(o *Options) {
		if perSecond > 0 {
			o.rateLimit = rate.Limit(perSecond)
		}
	}
}

// WithTransport sets the HTTP transport.
func WithTransport(rt http.RoundTripper) OptFn {
	return func(o *Options) {
		o.transport = rt
	}
}

// Scraper fetches page titles.
type Scraper struct {
	client    *http.Client
	userAgent string
	limiter   *rate.Limiter
}

func defaults() *Options {
	return &Options{
		timeout:   defaultTimeout,
		userAgent: defaultUserAgent,
		rateLimit: rate.Inf,
	}
}

// New creates a new Scraper.
func New(opts ...OptFn) *Scraper {
	o := defaults()
	for _, opt := range opts {
		opt(o)
	}

	transport := o.transport
	if transport == nil {
		transport = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		}
	}

	return &Scraper{
		client:    &http.Client{Timeout: o.timeout, Transport: transport},
		userAgent: o.userAgent,
		limiter:   rate.NewLimiter(o.rateLimit, 1),
	}
}

// Title fetches rawURL and returns the trimmed text of its <title>.
func (s *Scraper) Title(ctx context.Context, rawURL string) (string, error) {
	doc, err := s.fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}

	t := strings.TrimSpace(doc.Find("title").First().Text())
	if t == "" {
		return "", fmt.Errorf("%w: %s", ErrNoTitle, rawURL)
	}

	return t, nil
}

func (s *Scraper) fetch(ctx context.Context, rawURL string) (*goquery.Document, error) {
	if !isSupportedScheme(rawURL) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, rawURL)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRateLimited, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	setHeaders(req, s.userAgent)

	startTime := time.Now()

	res, err := s.client.Do(req)
	if err != nil {
		slog.Warn("request failed", "url", rawURL, "error", err, "duration", time.Since(startTime))
		return nil, fmt.Errorf("fetching %q: %w", rawURL, err)
	}

	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("error closing response body", "url", rawURL, "error", err)
		}
	}()

	slog.Debug("received response", "url", rawURL, "status", res.StatusCode, "duration", time.Since(startTime))

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %d", ErrStatus, res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(res.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	return doc, nil
}

func setHeaders(r *http.Request, ua string) {
	r.Header.Set("User-Agent", ua)
	r.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	r.Header.Set("Accept-Language", "en-US,en;q=0.5")
}

// isSupportedScheme checks if the given URL scheme is supported.
func isSupportedScheme(rawURL string) bool {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return false
	}

	return parsed.Scheme == "http" || parsed.Scheme == "https"
}
