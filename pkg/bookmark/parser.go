package bookmark

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"unicode"
)

// ParseTags splits a free-form tag string on runs of commas and whitespace,
// lowercases each tag and drops empties and repeats, keeping first-seen
// order.
//
//	from: "Go, web  go,,tools"
//	to:   ["go", "web", "tools"]
func ParseTags(tags string) []string {
	split := strings.FieldsFunc(tags, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})

	for i := range split {
		split[i] = strings.ToLower(split[i])
	}

	return uniqueTags(split)
}

// uniqueTags returns a slice of unique tags.
func uniqueTags(t []string) []string {
	var (
		tags []string
		seen = make(map[string]bool)
	)

	for _, tag := range t {
		if tag == "" {
			continue
		}

		if !seen[tag] {
			seen[tag] = true

			tags = append(tags, tag)
		}
	}

	return tags
}

// NormalizeURL trims the URL and prefixes "https://" when it has no scheme.
func NormalizeURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return ""
	}

	lower := strings.ToLower(rawURL)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return rawURL
	}

	if u, err := url.Parse(rawURL); err == nil && u.Scheme != "" && u.Host != "" {
		return rawURL
	}

	return "https://" + rawURL
}

// domain extracts the domain from a URL.
func domain(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing url: %w", err)
	}

	// normalize domain
	domain := strings.ToLower(u.Hostname())

	return strings.TrimPrefix(domain, "www."), nil
}

// Validate validates the bookmark.
func Validate(b *Bookmark) error {
	if strings.TrimSpace(b.URL) == "" {
		slog.Error("bookmark is invalid. URL is empty")
		return ErrURLEmpty
	}

	if _, err := url.Parse(b.URL); err != nil {
		slog.Error("bookmark is invalid", "url", b.URL, "error", err)
		return fmt.Errorf("%w: %w", ErrURLInvalid, err)
	}

	if strings.TrimSpace(b.Title) == "" {
		slog.Error("bookmark is invalid. Title is empty")
		return ErrTitleEmpty
	}

	return nil
}
