package bookio

import (
	"bufio"
	"fmt"
	"html"
	"io"
	"strings"
	"time"
)

const netscapeHeader = `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<!-- This is an automatically generated file.
     It will be read and overwritten.
     DO NOT EDIT! -->
<META HTTP-EQUIV="Content-Type" CONTENT="text/html; charset=UTF-8">
<TITLE>Bookmarks</TITLE>
<H1>Bookmarks</H1>
<DL><p>
`

const indent = "    "

// ExportOptFn is an option function for an Exporter.
type ExportOptFn func(*Exporter)

// WithClock sets the clock used for timestamps of folders and of records
// without a creation time.
func WithClock(now func() time.Time) ExportOptFn {
	return func(e *Exporter) {
		if now != nil {
			e.now = now
		}
	}
}

// Exporter writes records as a Netscape bookmark document, one folder per
// tag.
type Exporter struct {
	now func() time.Time
}

// NewExporter returns an Exporter.
func NewExporter(opts ...ExportOptFn) *Exporter {
	e := &Exporter{now: time.Now}
	for _, fn := range opts {
		fn(e)
	}

	return e
}

// Export returns the document for rs.
func (e *Exporter) Export(rs []Record) string {
	var sb strings.Builder
	// strings.Builder never fails
	_ = e.ExportTo(&sb, rs)

	return sb.String()
}

// ExportTo writes the document for rs to w.
//
// Untagged records come first at the top level. Then every tag gets a
// folder, in the order tags are first seen, holding each record that carries
// it; a record with several tags is written once per tag. Each link keeps
// its full tag set in a TAGS attribute.
func (e *Exporter) ExportTo(w io.Writer, rs []Record) error {
	bw := bufio.NewWriter(w)
	ts := e.now().Unix()

	untagged, order, groups := groupByTags(rs)

	bw.WriteString(netscapeHeader)

	for _, r := range untagged {
		writeEntry(bw, indent, r, ts)
	}

	for _, tag := range order {
		writeFolder(bw, tag, groups[tag], ts)
	}

	bw.WriteString("</DL><p>\n")

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing bookmarks: %w", err)
	}

	return nil
}

// groupByTags splits rs into untagged records and per-tag groups, returning
// the tags in first-seen order.
func groupByTags(rs []Record) (untagged []Record, order []string, groups map[string][]Record) {
	groups = make(map[string][]Record)

	for _, r := range rs {
		if len(r.Tags) == 0 {
			untagged = append(untagged, r)
			continue
		}

		seen := make(map[string]bool, len(r.Tags))
		for _, tag := range r.Tags {
			if seen[tag] {
				continue
			}
			seen[tag] = true

			if _, ok := groups[tag]; !ok {
				order = append(order, tag)
			}
			groups[tag] = append(groups[tag], r)
		}
	}

	return untagged, order, groups
}

// writeFolder writes a folder containing bookmarks.
func writeFolder(w *bufio.Writer, name string, rs []Record, ts int64) {
	fmt.Fprintf(w, "%s<DT><H3 ADD_DATE=\"%d\" LAST_MODIFIED=\"%d\">%s</H3>\n", indent, ts, ts, html.EscapeString(name))
	fmt.Fprintf(w, "%s<DL><p>\n", indent)

	for _, r := range rs {
		writeEntry(w, indent+indent, r, ts)
	}

	fmt.Fprintf(w, "%s</DL><p>\n", indent)
}

// writeEntry writes a single bookmark entry.
func writeEntry(w *bufio.Writer, pad string, r Record, fallback int64) {
	ts := fallback
	if !r.CreatedAt.IsZero() {
		ts = r.CreatedAt.Unix()
	}

	tags := ""
	if len(r.Tags) > 0 {
		tags = fmt.Sprintf(` TAGS="%s"`, html.EscapeString(strings.Join(r.Tags, ",")))
	}

	fmt.Fprintf(w, "%s<DT><A HREF=\"%s\" ADD_DATE=\"%d\" LAST_MODIFIED=\"%d\"%s>%s</A>\n",
		pad, html.EscapeString(r.URL), ts, ts, tags, html.EscapeString(r.Title))

	if r.Description != "" {
		fmt.Fprintf(w, "%s<DD>%s\n", pad, html.EscapeString(r.Description))
	}
}
