package export

import (
	"path/filepath"
	"regexp"
	"strings"
)

var (
	nonSlugRe = regexp.MustCompile(`[^a-z0-9-]`)
	dashesRe  = regexp.MustCompile(`-+`)
)

// Slugify converts a string to a URL/path-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonSlugRe.ReplaceAllString(s, "-")
	s = dashesRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > 50 {
		s = strings.TrimRight(s[:50], "-")
	}
	return s
}

// DefaultFileName names the workbook exported for a source document.
func DefaultFileName(source string) string {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	slug := Slugify(base)
	if slug == "" {
		slug = "document"
	}
	return slug + "-toc.xlsx"
}
