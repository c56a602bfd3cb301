package outline

import (
	"strings"

	"github.com/dgallion1/tocgest/internal/doctree"
)

// PlaceholderContent is used when a heading has no body text of its own.
func PlaceholderContent(title string) string {
	return "Content for section: " + title
}

// FillContent sets Content on every section in the forest to the non-blank
// lines between its heading and the next heading in document order. Sections
// are matched to headings by id, so the forest must come from Build over the
// same text. Sections that have no body, or that are not found, get
// PlaceholderContent.
func FillContent(sections []*doctree.Section, text string) {
	lines := strings.Split(text, "\n")
	headings := Headings(text)

	bodies := make(map[string]string, len(headings))
	for i, h := range headings {
		end := len(lines)
		if i+1 < len(headings) {
			end = headings[i+1].Line
		}
		bodies[h.Section.ID] = body(lines[h.Line+1 : end])
	}

	doctree.Walk(sections, func(s *doctree.Section, _ int) bool {
		if b := bodies[s.ID]; b != "" {
			s.Content = b
		} else {
			s.Content = PlaceholderContent(s.Title)
		}
		return true
	})
}

func body(lines []string) string {
	var kept []string
	for _, l := range lines {
		if l = trimLine(l); l != "" {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n")
}
