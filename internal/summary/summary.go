// Package summary renders short plain-text reports for the terminal.
package summary

import (
	"fmt"
	"io"
	"strings"

	"github.com/mateconpizza/sbm/internal/service"
	"github.com/mateconpizza/sbm/pkg/db"
)

// labelWidth pads every label so the values line up.
const labelWidth = 10

func paddedLine(label string, v any) string {
	return fmt.Sprintf("%-*s%v", labelWidth, label, v)
}

// Repo writes the database summary: location, counters and top domains.
func Repo(w io.Writer, path string, st *service.Statistics) error {
	var sb strings.Builder

	sb.WriteString(paddedLine("path:", path) + "\n")
	sb.WriteString(paddedLine("records:", st.Bookmarks) + "\n")
	sb.WriteString(paddedLine("tags:", st.Tags) + "\n")
	sb.WriteString(paddedLine("recent:", st.Recent) + "\n")

	if len(st.TopDomains) > 0 {
		sb.WriteString("domains:\n")
		for _, d := range st.TopDomains {
			sb.WriteString("  " + paddedLine(d.Domain, d.Count) + "\n")
		}
	}

	_, err := io.WriteString(w, sb.String())

	return err
}

// Tags writes one line per tag with its bookmark count.
func Tags(w io.Writer, tags []db.TagCount) error {
	if len(tags) == 0 {
		_, err := io.WriteString(w, "no tags\n")
		return err
	}

	width := 0
	for _, t := range tags {
		width = max(width, len(t.Name))
	}

	var sb strings.Builder
	for _, t := range tags {
		fmt.Fprintf(&sb, "%-*s %d\n", width, t.Name, t.Count)
	}

	_, err := io.WriteString(w, sb.String())

	return err
}
