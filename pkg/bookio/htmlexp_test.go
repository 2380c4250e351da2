package bookio

import (
	"bytes"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

func testExporter() *Exporter {
	return NewExporter(WithClock(func() time.Time { return fixedNow }))
}

func testRecords() []Record {
	return []Record{
		{URL: "https://go.dev", Title: "Go", Description: "The Go site", Tags: []string{"go", "lang"}},
		{URL: "https://example.com/?a=1&b=2", Title: "Tom & <Jerry>", Tags: nil},
		{URL: "https://rust-lang.org", Title: "Rust", Tags: []string{"lang"}, CreatedAt: time.Unix(1600000000, 0)},
		{URL: "https://news.example", Title: "News", Description: "daily \"news\"", Tags: []string{"bookmarks", "news"}},
		{URL: "https://plain.example", Title: "Plain"},
	}
}

func sortedTags(tags []string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, t := range tags {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	sort.Strings(out)

	return out
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	rs := testRecords()
	doc := testExporter().Export(rs)

	got := map[string]Record{}
	res := NewImporter(func(r Record) error {
		prev, ok := got[r.URL]
		if ok {
			r.Tags = append(prev.Tags, r.Tags...)
		}
		got[r.URL] = r

		return nil
	}).Import(doc)

	require.Empty(t, res.Errors)
	require.Len(t, got, len(rs))

	for _, want := range rs {
		r, ok := got[want.URL]
		require.True(t, ok, want.URL)
		assert.Equal(t, want.Title, r.Title, want.URL)
		assert.Equal(t, want.Description, r.Description, want.URL)
		assert.Equal(t, sortedTags(want.Tags), sortedTags(r.Tags), want.URL)
	}
}

func TestRoundTripSingleImportCarriesAllTags(t *testing.T) {
	t.Parallel()

	r := Record{URL: "https://multi.example", Title: "Multi", Tags: []string{"a", "b", "c"}}
	doc := testExporter().Export([]Record{r})

	c := &collector{}
	res := NewImporter(c.create).Import(doc)
	require.Equal(t, 3, res.Imported)

	// every copy already carries the complete tag set
	for _, got := range c.records {
		assert.Equal(t, []string{"a", "b", "c"}, sortedTags(got.Tags))
	}
}

func TestExportGrouping(t *testing.T) {
	t.Parallel()

	doc := testExporter().Export(testRecords())

	assert.True(t, strings.HasPrefix(doc, "<!DOCTYPE NETSCAPE-Bookmark-file-1>\n"))
	assert.Contains(t, doc, `<META HTTP-EQUIV="Content-Type" CONTENT="text/html; charset=UTF-8">`)
	assert.Contains(t, doc, "<TITLE>Bookmarks</TITLE>")
	assert.Contains(t, doc, "<H1>Bookmarks</H1>")
	assert.True(t, strings.HasSuffix(doc, "</DL><p>\n"))

	// folders in first-seen order
	goIdx := strings.Index(doc, ">go</H3>")
	langIdx := strings.Index(doc, ">lang</H3>")
	bmIdx := strings.Index(doc, ">bookmarks</H3>")
	newsIdx := strings.Index(doc, ">news</H3>")
	require.Positive(t, goIdx)
	assert.Less(t, goIdx, langIdx)
	assert.Less(t, langIdx, bmIdx)
	assert.Less(t, bmIdx, newsIdx)
	assert.Equal(t, 4, strings.Count(doc, "<H3 "))

	// untagged first
	firstFolder := strings.Index(doc, "<DT><H3")
	assert.Less(t, strings.Index(doc, `HREF="https://plain.example"`), firstFolder)
	assert.Less(t, strings.Index(doc, `HREF="https://example.com/?a=1&amp;b=2"`), firstFolder)

	// a record appears once per tag
	assert.Equal(t, 2, strings.Count(doc, `HREF="https://go.dev"`))
	assert.Equal(t, 2, strings.Count(doc, `HREF="https://news.example"`))
	assert.Equal(t, 1, strings.Count(doc, `HREF="https://rust-lang.org"`))
	assert.Equal(t, 2, strings.Count(doc, `TAGS="go,lang"`))
}

func TestExportEscaping(t *testing.T) {
	t.Parallel()

	doc := testExporter().Export(testRecords())

	assert.Contains(t, doc, ">Tom &amp; &lt;Jerry&gt;</A>")
	assert.Contains(t, doc, "<DD>daily &#34;news&#34;\n")
	assert.NotContains(t, doc, "<Jerry>")
}

func TestExportTimestamps(t *testing.T) {
	t.Parallel()

	doc := testExporter().Export(testRecords())

	assert.Contains(t, doc, `<DT><H3 ADD_DATE="1714979289" LAST_MODIFIED="1714979289">go</H3>`)
	assert.Contains(t, doc, `<DT><A HREF="https://rust-lang.org" ADD_DATE="1600000000" LAST_MODIFIED="1600000000" TAGS="lang">Rust</A>`)
	assert.Contains(t, doc, `<DT><A HREF="https://plain.example" ADD_DATE="1714979289" LAST_MODIFIED="1714979289">Plain</A>`)
}

func TestExportEmpty(t *testing.T) {
	t.Parallel()

	doc := testExporter().Export(nil)
	assert.Equal(t, netscapeHeader+"</DL><p>\n", doc)

	res := NewImporter(func(Record) error { return nil }).Import(doc)
	assert.Zero(t, res.Imported)
	assert.Empty(t, res.Errors)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestExportToWriterError(t *testing.T) {
	t.Parallel()

	err := testExporter().ExportTo(failingWriter{}, testRecords())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	var buf bytes.Buffer
	require.NoError(t, testExporter().ExportTo(&buf, testRecords()))
	assert.Equal(t, testExporter().Export(testRecords()), buf.String())
}
