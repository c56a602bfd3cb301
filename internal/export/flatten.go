package export

import (
	"strings"

	"github.com/dgallion1/tocgest/internal/doctree"
)

// PathSeparator joins ancestor titles in Row.Path.
const PathSeparator = " > "

// Row is one section laid out for a spreadsheet.
type Row struct {
	ID         string
	Title      string
	Level      int
	PageNumber int
	Path       string // ancestor titles and the section's own, joined by PathSeparator
	Content    string
	Depth      int // 0 for roots
}

// Flatten lists every section in document order.
func Flatten(sections []*doctree.Section) []Row {
	return flatten(sections, func(*doctree.Section) bool { return true })
}

// FlattenSelected lists the selected sections in document order. Paths still
// name unselected ancestors.
func FlattenSelected(sections []*doctree.Section) []Row {
	return flatten(sections, func(s *doctree.Section) bool { return s.Selected })
}

func flatten(sections []*doctree.Section, keep func(*doctree.Section) bool) []Row {
	var rows []Row
	var trail []string
	doctree.Walk(sections, func(s *doctree.Section, depth int) bool {
		trail = append(trail[:depth], s.Title)
		if keep(s) {
			rows = append(rows, Row{
				ID:         s.ID,
				Title:      s.Title,
				Level:      s.Level,
				PageNumber: s.PageNumber,
				Path:       strings.Join(trail, PathSeparator),
				Content:    s.Content,
				Depth:      depth,
			})
		}
		return true
	})
	return rows
}
