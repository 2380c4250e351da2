package bookio

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrCreatePanic wraps a panic raised by a CreateFunc. The link is skipped
// and the import goes on.
var ErrCreatePanic = errors.New("create callback panicked")

// genericFolders are container names browsers add on export; they never
// become tags.
var genericFolders = map[string]bool{
	"bookmarks":               true,
	"favorites":               true,
	"bookmark bar":            true,
	"bookmarks bar":           true,
	"bookmarks menu":          true,
	"other bookmarks":         true,
	"personal toolbar folder": true,
}

// CreateFunc stores one imported record. A returned error marks the link
// as skipped and is reported in the Result.
type CreateFunc func(r Record) error

// ImportOptions configures an Importer.
type ImportOptions struct {
	observer Observer
	maxSize  int
}

// ImportOptFn is an option function for an Importer.
type ImportOptFn func(*ImportOptions)

// WithObserver sets the observer notified of each link event.
func WithObserver(o Observer) ImportOptFn {
	return func(opts *ImportOptions) {
		if o != nil {
			opts.observer = o
		}
	}
}

// WithMaxSize sets the largest accepted document in bytes. Zero or a
// negative value disables the limit.
func WithMaxSize(n int) ImportOptFn {
	return func(opts *ImportOptions) {
		opts.maxSize = n
	}
}

// Importer parses Netscape bookmark documents and hands every link to a
// CreateFunc.
type Importer struct {
	*ImportOptions
	create CreateFunc
}

// NewImporter returns an Importer that stores records through create.
func NewImporter(create CreateFunc, opts ...ImportOptFn) *Importer {
	o := &ImportOptions{
		observer: nopObserver{},
		maxSize:  DefaultMaxSize,
	}
	for _, fn := range opts {
		fn(o)
	}

	return &Importer{ImportOptions: o, create: create}
}

// ImportBytes decodes data (UTF-8, falling back to ISO-8859-1) and imports
// it.
func (im *Importer) ImportBytes(data []byte) Result {
	if err := im.checkSize(len(data)); err != nil {
		return im.parseFailed(Result{}, err)
	}

	return im.Import(Decode(data))
}

// Import parses text and creates a record for every link in it. It never
// fails: problems are counted and described in the returned Result. Titles
// and descriptions are stored with surrounding whitespace trimmed.
func (im *Importer) Import(text string) Result {
	res := Result{}

	if err := im.checkSize(len(text)); err != nil {
		return im.parseFailed(res, err)
	}

	t, err := ParseTree(strings.NewReader(text))
	if err != nil {
		return im.parseFailed(res, err)
	}

	w := &walker{tree: t, folders: make(map[int]folder)}
	for i, a := range t.Elements("a") {
		r, ok := w.record(a)
		if !ok {
			res.Skipped++
			im.observer.Skipped(i)

			continue
		}

		if err := im.safeCreate(r); err != nil {
			res.Skipped++
			res.Errors = append(res.Errors, fmt.Sprintf("Error importing %s: %v", r.URL, err))
			im.observer.Failed(r.URL, err)

			continue
		}

		res.Imported++
		im.observer.Imported(r.URL)
	}

	return res
}

func (im *Importer) checkSize(n int) error {
	if im.maxSize > 0 && n > im.maxSize {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, n, im.maxSize)
	}

	return nil
}

func (im *Importer) parseFailed(res Result, err error) Result {
	res.Errors = append(res.Errors, fmt.Sprintf("Error parsing HTML: %v", err))
	im.observer.ParseFailed(err)

	return res
}

func (im *Importer) safeCreate(r Record) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%w: %v", ErrCreatePanic, p)
		}
	}()

	return im.create(r)
}

type folder struct {
	name string
	ok   bool
}

// walker extracts records from one parsed document. Folder names are
// resolved once per list.
type walker struct {
	tree    *Tree
	folders map[int]folder
}

func (w *walker) record(a int) (Record, bool) {
	n := w.tree.Node(a)

	href, _ := n.Attr("href")
	href = strings.TrimSpace(href)
	if href == "" {
		return Record{}, false
	}

	r := Record{URL: href}

	r.Title = w.tree.Text(a)
	if r.Title == "" {
		r.Title = href
	}

	r.Description = w.description(a)
	r.Tags = append(w.folderTags(a), explicitTags(n)...)

	if v, ok := n.Attr("add_date"); ok {
		r.CreatedAt = parseUnix(v)
	}

	return r, true
}

// description returns the text of the <dd> that directly follows the
// link's <dt> entry.
func (w *walker) description(a int) string {
	dt, ok := w.tree.Ancestor(a, "dt", "dl")
	if !ok {
		return ""
	}

	next, ok := w.tree.NextElement(dt)
	if !ok || !w.tree.Node(next).IsElement("dd") {
		return ""
	}

	return w.tree.Text(next)
}

// folderTags returns the names of the folders enclosing a, outermost first.
func (w *walker) folderTags(a int) []string {
	var tags []string

	for dl, ok := w.tree.Ancestor(a, "dl"); ok; dl, ok = w.tree.Ancestor(dl, "dl") {
		f := w.folder(dl)
		if !f.ok || genericFolders[strings.ToLower(f.name)] {
			continue
		}

		tags = append([]string{f.name}, tags...)
	}

	return tags
}

func (w *walker) folder(dl int) folder {
	if f, ok := w.folders[dl]; ok {
		return f
	}

	f := w.heading(dl)
	w.folders[dl] = f

	return f
}

// heading finds the <h3> naming the list dl. It looks at the entries that
// precede the list on its own level, nearest first: a bare <h3>, or a <dt>
// holding one. Lists nested in a folder's <dd> continue the search from
// that <dd>.
func (w *walker) heading(dl int) folder {
	from := dl
	for {
		for s, ok := w.tree.PrevElement(from); ok; s, ok = w.tree.PrevElement(s) {
			switch w.tree.Node(s).Tag {
			case "h3":
				return w.named(s)
			case "dt":
				h, found := w.tree.Find(s, "h3")
				if !found {
					return folder{}
				}

				return w.named(h)
			}
		}

		p := w.tree.Node(from).Parent
		if p == noNode || !w.tree.Node(p).IsElement("dd") {
			return folder{}
		}

		from = p
	}
}

func (w *walker) named(h3 int) folder {
	name := w.tree.Text(h3)
	return folder{name: name, ok: name != ""}
}

func explicitTags(n *Node) []string {
	v, ok := n.Attr("tags")
	if !ok {
		return nil
	}

	var tags []string
	for t := range strings.SplitSeq(v, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}

	return tags
}

// parseUnix parses an ADD_DATE value. Some browsers write milliseconds or
// microseconds instead of seconds.
func parseUnix(v string) time.Time {
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || n <= 0 {
		return time.Time{}
	}

	switch {
	case n > 1e14:
		return time.UnixMicro(n).UTC()
	case n > 1e11:
		return time.UnixMilli(n).UTC()
	default:
		return time.Unix(n, 0).UTC()
	}
}
