package bookio

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const browserExport = `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<META HTTP-EQUIV="Content-Type" CONTENT="text/html; charset=UTF-8">
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
    <DT><H3 ADD_DATE="1600000000" PERSONAL_TOOLBAR_FOLDER="true">Bookmarks bar</H3>
    <DL><p>
        <DT><H3>Dev</H3>
        <DL><p>
            <DT><H3>Go</H3>
            <DL><p>
                <DT><A HREF="https://go.dev" ADD_DATE="1700000000" TAGS="lang, tools,,">The Go Language</A>
                <DD>Go home page
            </DL><p>
            <DT><A HREF="https://github.com">GitHub</A>
        </DL><p>
    </DL><p>
    <DT><A HREF="https://example.com">Example</A>
</DL><p>
`

// collector records every created record and optionally fails some.
type collector struct {
	records []Record
	failOn  map[string]error
}

func (c *collector) create(r Record) error {
	if err, ok := c.failOn[r.URL]; ok {
		return err
	}
	c.records = append(c.records, r)

	return nil
}

func (c *collector) byURL(u string) (Record, bool) {
	for _, r := range c.records {
		if r.URL == u {
			return r, true
		}
	}

	return Record{}, false
}

type eventLog struct {
	skipped  []int
	imported []string
	failed   []string
	parse    []error
}

func (e *eventLog) Skipped(i int)            { e.skipped = append(e.skipped, i) }
func (e *eventLog) Imported(u string)        { e.imported = append(e.imported, u) }
func (e *eventLog) Failed(u string, _ error) { e.failed = append(e.failed, u) }
func (e *eventLog) ParseFailed(err error)    { e.parse = append(e.parse, err) }

func TestImportFolderTags(t *testing.T) {
	t.Parallel()

	c := &collector{}
	res := NewImporter(c.create).Import(browserExport)

	assert.Equal(t, 3, res.Imported)
	assert.Zero(t, res.Skipped)
	assert.Empty(t, res.Errors)

	goDev, ok := c.byURL("https://go.dev")
	require.True(t, ok)
	assert.Equal(t, "The Go Language", goDev.Title)
	assert.Equal(t, "Go home page", goDev.Description)
	assert.Equal(t, []string{"Dev", "Go", "lang", "tools"}, goDev.Tags)
	assert.Equal(t, "Dev Go lang tools", goDev.TagString())
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), goDev.CreatedAt)

	gh, ok := c.byURL("https://github.com")
	require.True(t, ok)
	assert.Equal(t, []string{"Dev"}, gh.Tags)
	assert.Empty(t, gh.Description)

	ex, ok := c.byURL("https://example.com")
	require.True(t, ok)
	assert.Empty(t, ex.Tags)
	assert.True(t, ex.CreatedAt.IsZero())
}

func TestImportGenericFolderNames(t *testing.T) {
	t.Parallel()

	names := []string{
		"Bookmarks", "FAVORITES", "Bookmark Bar", "Bookmarks Bar",
		"Bookmarks Menu", "Other Bookmarks", "Personal Toolbar Folder",
	}

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			doc := fmt.Sprintf(`<DL><p>
<DT><H3>%s</H3>
<DL><p>
<DT><H3>news</H3>
<DL><p>
<DT><A HREF="https://news.example">News</A>
</DL><p>
</DL><p>
</DL><p>`, name)

			c := &collector{}
			res := NewImporter(c.create).Import(doc)
			require.Equal(t, 1, res.Imported)
			assert.Equal(t, []string{"news"}, c.records[0].Tags)
		})
	}
}

func TestImportFolderWithDescription(t *testing.T) {
	t.Parallel()

	doc := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<DL><p>
<DT><H3>Reading</H3>
<DD>Articles to read later
<DL><p>
<DT><A HREF="https://blog.example/post">Post</A>
<DD>A long post
</DL><p>
<DT><A HREF="https://top.example">Top</A>
</DL>`

	c := &collector{}
	res := NewImporter(c.create).Import(doc)
	require.Equal(t, 2, res.Imported)

	post, ok := c.byURL("https://blog.example/post")
	require.True(t, ok)
	assert.Equal(t, []string{"Reading"}, post.Tags)
	assert.Equal(t, "A long post", post.Description)

	top, ok := c.byURL("https://top.example")
	require.True(t, ok)
	assert.Empty(t, top.Tags)
}

func TestImportSkipsEmptyHref(t *testing.T) {
	t.Parallel()

	doc := `<DL><p>
<DT><A HREF="">Empty</A>
<DT><A HREF="   ">Blank</A>
<DT><A NAME="anchor">No href</A>
<DT><A HREF="https://ok.example">OK</A>
</DL>`

	c := &collector{}
	ev := &eventLog{}
	res := NewImporter(c.create, WithObserver(ev)).Import(doc)

	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 3, res.Skipped)
	assert.Empty(t, res.Errors)
	assert.Len(t, c.records, 1)
	assert.Equal(t, []int{0, 1, 2}, ev.skipped)
	assert.Equal(t, []string{"https://ok.example"}, ev.imported)
}

func TestImportTitleFallback(t *testing.T) {
	t.Parallel()

	doc := `<DL><p>
<DT><A HREF="https://a.example"></A>
<DT><A HREF="https://b.example">   </A>
<DT><A HREF="https://c.example"> <b>Bold</b> title </A>
</DL>`

	c := &collector{}
	res := NewImporter(c.create).Import(doc)
	require.Equal(t, 3, res.Imported)

	assert.Equal(t, "https://a.example", c.records[0].Title)
	assert.Equal(t, "https://b.example", c.records[1].Title)
	assert.Equal(t, "Bold title", c.records[2].Title)
}

func TestImportPartialFailure(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	sb.WriteString("<DL><p>\n")
	for i := 1; i <= 5; i++ {
		fmt.Fprintf(&sb, "<DT><A HREF=\"https://%d.example\">Link %d</A>\n", i, i)
	}
	sb.WriteString("</DL><p>\n")

	errBoom := errors.New("boom")
	c := &collector{failOn: map[string]error{"https://3.example": errBoom}}
	ev := &eventLog{}
	res := NewImporter(c.create, WithObserver(ev)).Import(sb.String())

	assert.Equal(t, 4, res.Imported)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "Error importing https://3.example: boom", res.Errors[0])
	assert.Equal(t, []string{"https://3.example"}, ev.failed)
	assert.Len(t, c.records, 4)
	assert.Equal(t, 5, res.Total())
}

func TestImportRecoversPanic(t *testing.T) {
	t.Parallel()

	calls := 0
	create := func(r Record) error {
		calls++
		if r.URL == "https://panic.example" {
			panic("kaboom")
		}

		return nil
	}

	doc := `<DL><p>
<DT><A HREF="https://panic.example">Panic</A>
<DT><A HREF="https://fine.example">Fine</A>
</DL>`

	var res Result
	assert.NotPanics(t, func() {
		res = NewImporter(create).Import(doc)
	})

	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "Error importing https://panic.example:")
	assert.Contains(t, res.Errors[0], "kaboom")
}

func TestImportMaxSize(t *testing.T) {
	t.Parallel()

	doc := `<DL><p><DT><A HREF="https://a.example">A</A></DL>`

	called := false
	ev := &eventLog{}
	im := NewImporter(func(Record) error {
		called = true
		return nil
	}, WithMaxSize(10), WithObserver(ev))

	res := im.Import(doc)
	assert.False(t, called)
	assert.Zero(t, res.Imported)
	require.Len(t, res.Errors, 1)
	assert.True(t, strings.HasPrefix(res.Errors[0], "Error parsing HTML: "))
	require.Len(t, ev.parse, 1)
	assert.ErrorIs(t, ev.parse[0], ErrTooLarge)

	res = im.ImportBytes([]byte(doc))
	require.Len(t, res.Errors, 1)

	// limit disabled
	res = NewImporter(func(Record) error { return nil }, WithMaxSize(0)).Import(doc)
	assert.Equal(t, 1, res.Imported)
}

func TestImportLatin1(t *testing.T) {
	t.Parallel()

	// "Café" in ISO-8859-1 is not valid UTF-8
	data := []byte("<DL><p><DT><A HREF=\"https://cafe.example\">Caf\xe9</A><DD>cr\xe8me</DL>")

	c := &collector{}
	res := NewImporter(c.create).ImportBytes(data)
	require.Equal(t, 1, res.Imported)
	assert.Equal(t, "Café", c.records[0].Title)
	assert.Equal(t, "crème", c.records[0].Description)
}

func TestImportNoLinks(t *testing.T) {
	t.Parallel()

	res := NewImporter(func(Record) error { return nil }).Import("just some text")
	assert.Zero(t, res.Imported)
	assert.Zero(t, res.Skipped)
	assert.Empty(t, res.Errors)
}

func TestImportUnclosedLinks(t *testing.T) {
	t.Parallel()

	type want struct {
		title, desc string
		tags        []string
	}

	tests := []struct {
		name string
		doc  string
		want map[string]want
	}{
		{
			name: "description after open link",
			doc: `<DL><p>
<DT><A HREF="https://a.test">A
<DD>desc of a
<DT><A HREF="https://b.test">B</A>
</DL>`,
			want: map[string]want{
				"https://a.test": {title: "A", desc: "desc of a"},
				"https://b.test": {title: "B"},
			},
		},
		{
			name: "folder after open link",
			doc: `<DL><p>
<DT><A HREF="https://a.test">A
<DT><H3>Folder</H3>
<DL><p>
<DT><A HREF="https://b.test">B
</DL><p>
</DL>`,
			want: map[string]want{
				"https://a.test": {title: "A"},
				"https://b.test": {title: "B", tags: []string{"Folder"}},
			},
		},
		{
			name: "inline markup stays in title",
			doc: `<DL><p>
<DT><A HREF="https://a.test"><B>Bold</B> <i>link</i>
<DD>note
</DL>`,
			want: map[string]want{
				"https://a.test": {title: "Bold link", desc: "note"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := &collector{}
			res := NewImporter(c.create).Import(tt.doc)
			assert.Equal(t, len(tt.want), res.Imported)
			assert.Zero(t, res.Skipped)
			require.Len(t, c.records, len(tt.want))

			for u, w := range tt.want {
				r, ok := c.byURL(u)
				require.True(t, ok, u)
				assert.Equal(t, w.title, r.Title)
				assert.Equal(t, w.desc, r.Description)
				if len(w.tags) == 0 {
					assert.Empty(t, r.Tags)
				} else {
					assert.Equal(t, w.tags, r.Tags)
				}
			}
		})
	}
}

func TestImportTrimsWhitespace(t *testing.T) {
	t.Parallel()

	doc := `<DL><p>
<DT><A HREF="  https://pad.test  ">  padded title  </A>
<DD>   padded note
</DL>`

	c := &collector{}
	res := NewImporter(c.create).Import(doc)
	require.Equal(t, 1, res.Imported)

	r := c.records[0]
	assert.Equal(t, "https://pad.test", r.URL)
	assert.Equal(t, "padded title", r.Title)
	assert.Equal(t, "padded note", r.Description)
}

func TestParseUnix(t *testing.T) {
	t.Parallel()

	want := time.Unix(1700000000, 0).UTC()
	assert.Equal(t, want, parseUnix("1700000000"))
	assert.Equal(t, want, parseUnix("1700000000000"))
	assert.Equal(t, want, parseUnix("1700000000000000"))
	assert.True(t, parseUnix("").IsZero())
	assert.True(t, parseUnix("-5").IsZero())
	assert.True(t, parseUnix("soon").IsZero())
}
