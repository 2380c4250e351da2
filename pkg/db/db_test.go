//nolint:paralleltest,funlen //test
package db

import (
	"fmt"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/mateconpizza/sbm/pkg/bookmark"
)

func setupTestDB(t *testing.T) *SQLite {
	t.Helper()

	return setupTestDBDriver(t, DriverModernc)
}

func setupTestDBDriver(t *testing.T, driver string) *SQLite {
	t.Helper()

	p := fmt.Sprintf("file:testdb_%d?mode=memory", time.Now().UnixNano())
	c, err := NewSQLiteCfg(p, WithDriver(driver))
	require.NoError(t, err)

	db, err := OpenDatabase(c.Driver, p)
	require.NoError(t, err, "failed to open database")

	r := newSQLiteRepository(db, c)
	require.NoError(t, r.Init(t.Context()), "failed to initialize database")

	t.Cleanup(func() { teardownthewall(db) })

	return r
}

func teardownthewall(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		panic(err)
	}
}

func testUser(t *testing.T, r *SQLite) *User {
	t.Helper()

	u := &User{Username: "admin", PasswordHash: "hash"}
	_, err := r.CreateUser(t.Context(), u)
	require.NoError(t, err)

	return u
}

func testSingleBookmark(userID int64) *bookmark.Bookmark {
	return &bookmark.Bookmark{
		UserID: userID,
		URL:    "https://www.example.com",
		Title:  "Title",
		Tags:   []string{"test", "tag1", "go"},
		Desc:   "Description",
	}
}

func testSliceBookmarks(userID int64, n int) []*bookmark.Bookmark {
	bs := make([]*bookmark.Bookmark, 0, n)
	for i := range n {
		b := testSingleBookmark(userID)
		b.Title = fmt.Sprintf("Title %d", i)
		b.URL = fmt.Sprintf("https://www.example%d.com", i)
		b.Tags = []string{"test", fmt.Sprintf("tag%d", i), "go"}
		b.Desc = fmt.Sprintf("Description %d", i)
		b.CreatedAt = time.Date(2024, 1, 1, 0, 0, i, 0, time.UTC).Format(time.RFC3339)
		bs = append(bs, b)
	}

	return bs
}

func testPopulatedDB(t *testing.T, n int) (*SQLite, *User) {
	t.Helper()

	r := setupTestDB(t)
	u := testUser(t, r)

	for _, b := range testSliceBookmarks(u.ID, n) {
		_, err := r.InsertOne(t.Context(), b)
		require.NoError(t, err)
	}

	return r, u
}
