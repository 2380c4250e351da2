package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mateconpizza/sbm/internal/auth"
	"github.com/mateconpizza/sbm/pkg/db"
)

var fixedNow = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

type fakeFetcher struct {
	title string
	err   error
	calls int
}

func (f *fakeFetcher) Title(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.title, f.err
}

var errFetch = errors.New("fetch failed")

func testHasher() auth.Hasher {
	return &auth.BcryptHasher{Cost: 4}
}

func setupTestDB(t *testing.T) *db.SQLite {
	t.Helper()

	p := fmt.Sprintf("file:svc_%d?mode=memory", time.Now().UnixNano())
	r, err := db.Open(t.Context(), p)
	require.NoError(t, err)

	t.Cleanup(r.Close)

	return r
}

func testUser(t *testing.T, r *db.SQLite, password string) *db.User {
	t.Helper()

	a := NewAuth(r, auth.NewSessions(8, time.Hour, false), WithHasher(testHasher()))
	u, err := a.EnsureDefaultUser(t.Context(), password)
	require.NoError(t, err)

	return u
}

func TestPagination(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		page       int
		total      int
		wantPage   int
		wantPages  int
		wantStart  int
		wantEnd    int
		wantPrev   bool
		wantNext   bool
		wantNextNo int
	}{
		{"empty", 1, 0, 1, 0, 0, 0, false, false, 1},
		{"first of three", 1, 45, 1, 3, 0, 20, false, true, 2},
		{"last partial", 3, 45, 3, 3, 40, 45, true, false, 3},
		{"beyond range clamps", 9, 45, 3, 3, 40, 45, true, false, 3},
		{"zero page", 0, 45, 1, 3, 0, 20, false, true, 2},
		{"negative page", -4, 10, 1, 1, 0, 10, false, false, 1},
		{"exact multiple", 2, 40, 2, 2, 20, 40, true, false, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := NewPagination(tt.page, tt.total, 20)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantPages, p.Pages)
			assert.Equal(t, tt.wantStart, p.Start)
			assert.Equal(t, tt.wantEnd, p.End)
			assert.Equal(t, tt.wantPrev, p.HasPrev())
			assert.Equal(t, tt.wantNext, p.HasNext())
			assert.Equal(t, tt.wantNextNo, p.Next())
		})
	}
}

func TestTopDomains(t *testing.T) {
	t.Parallel()

	urls := []string{
		"https://www.github.com/a",
		"https://github.com/b",
		"https://go.dev/doc",
		"https://example.com",
		"https://go.dev/blog",
		"https://github.com/c",
		"https://a.org",
		"https://b.org",
		"not a url at all",
	}

	got := TopDomains(urls, 3)
	assert.Equal(t, []DomainCount{
		{Domain: "github.com", Count: 3},
		{Domain: "go.dev", Count: 2},
		{Domain: "a.org", Count: 1},
	}, got)

	assert.Len(t, TopDomains(urls, 0), 5)
	assert.Empty(t, TopDomains(nil, 5))
}

func TestExportFilename(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "bookmarks_20240506.html", ExportFilename(fixedNow))
}
