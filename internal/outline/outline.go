// Package outline rebuilds a section hierarchy from the plain text of a
// contract using surface patterns on each line.
//
// Detection is permissive: any capitalised word at the start of a line counts
// as a heading. Detection and level assignment use different pattern sets, so
// headings found only by the title-case or ARTICLE/SECTION patterns always
// land on level 1.
package outline

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/dgallion1/tocgest/internal/doctree"
)

const (
	// Confidence is reported for every pattern-matched outline.
	Confidence = 0.85
	// Method tags outlines produced by this package.
	Method = "pattern-matching"

	pageWindow  = 2
	defaultPage = 1
	maxPage     = 10000
)

var (
	romanRe   = regexp.MustCompile(`^[IVX]+\.`)
	decimalRe = regexp.MustCompile(`^\d+\.`)
	upperRe   = regexp.MustCompile(`^[A-Z]\.`)
	lowerRe   = regexp.MustCompile(`^[a-z]\.`)
	titleRe   = regexp.MustCompile(`^[A-Z][a-z]+`)
	articleRe = regexp.MustCompile(`(?i)^ARTICLE\s+\d+`)
	sectionRe = regexp.MustCompile(`(?i)^SECTION\s+\d+`)
	numberRe  = regexp.MustCompile(`\d+`)

	headingPatterns = []*regexp.Regexp{romanRe, decimalRe, upperRe, titleRe, articleRe, sectionRe}
)

// IsHeading reports whether a trimmed line looks like a section title.
func IsHeading(line string) bool {
	for _, re := range headingPatterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// Level returns the hierarchy level implied by a heading's prefix.
func Level(line string) int {
	switch {
	case romanRe.MatchString(line):
		return 1
	case decimalRe.MatchString(line):
		return 2
	case upperRe.MatchString(line):
		return 3
	case lowerRe.MatchString(line):
		return 4
	}
	return 1
}

// PageNumber scans lines[i-2..i+2] in ascending order and returns the first
// integer in (0, 10000). Only the first integer on each line is considered.
// It returns 1 when nothing qualifies.
func PageNumber(lines []string, i int) int {
	lo := max(0, i-pageWindow)
	hi := min(len(lines)-1, i+pageWindow)
	for j := lo; j <= hi; j++ {
		m := numberRe.FindString(lines[j])
		if m == "" {
			continue
		}
		n, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		if n > 0 && n < maxPage {
			return n
		}
	}
	return defaultPage
}

// trimLine strips surrounding white space and byte-order marks, so a BOM at
// the start of a file does not hide the first heading.
func trimLine(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
}

// Heading is a detected heading together with the line it came from.
type Heading struct {
	Section *doctree.Section
	Line    int
}

// Headings runs detection, level assignment and page lookup over text and
// returns the flat heading list in document order. Ids are section-1,
// section-2, ... in scan order.
func Headings(text string) []Heading {
	lines := strings.Split(text, "\n")
	var out []Heading
	next := 1
	for i, raw := range lines {
		line := trimLine(raw)
		if !IsHeading(line) {
			continue
		}
		out = append(out, Heading{
			Section: &doctree.Section{
				ID:          fmt.Sprintf("section-%d", next),
				Title:       line,
				Level:       Level(line),
				PageNumber:  PageNumber(lines, i),
				Subsections: []*doctree.Section{},
			},
			Line: i,
		})
		next++
	}
	return out
}

// Reduce nests a flat heading list into a forest. A heading closes every
// open section whose level is greater than or equal to its own, then becomes
// a child of whatever is left open (or a root).
func Reduce(headings []Heading) []*doctree.Section {
	roots := []*doctree.Section{}
	var stack []*doctree.Section
	for _, h := range headings {
		s := h.Section
		for len(stack) > 0 && stack[len(stack)-1].Level >= s.Level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, s)
		} else {
			parent := stack[len(stack)-1]
			parent.Subsections = append(parent.Subsections, s)
		}
		stack = append(stack, s)
	}
	return roots
}

// Build returns the section forest for text. It never fails; empty text
// yields an empty forest.
func Build(text string) []*doctree.Section {
	return Reduce(Headings(text))
}

// Detect wraps Build with the fixed confidence and method tag.
func Detect(text string) doctree.TOCDetectionResult {
	return doctree.TOCDetectionResult{
		Sections:        Build(text),
		Confidence:      Confidence,
		DetectionMethod: Method,
	}
}
