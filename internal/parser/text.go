package parser

import (
	"io"
	"strings"
)

// TextParser handles plain text files.
type TextParser struct{}

// Parse returns the file with CRLF line endings folded to LF. Lines of any
// length are kept whole.
func (p *TextParser) Parse(r io.Reader, filename string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	return strings.TrimSuffix(text, "\n"), nil
}
