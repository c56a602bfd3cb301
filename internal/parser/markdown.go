package parser

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. Markup is dropped;
// each heading becomes one line and block text keeps its own line breaks.
// Ordered list items get their number back ("1. Purpose") since clause
// numbering is what the outline builder keys on.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (string, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	var lines []string
	collectBlocks(doc.FirstChild(), src, &lines)
	return strings.Join(lines, "\n"), nil
}

// collectBlocks appends the text of n and its following siblings.
func collectBlocks(n ast.Node, src []byte, lines *[]string) {
	for ; n != nil; n = n.NextSibling() {
		switch n.Kind() {
		case ast.KindHeading, ast.KindParagraph, ast.KindTextBlock,
			ast.KindFencedCodeBlock, ast.KindCodeBlock:
			if t := extractText(n, src); t != "" {
				*lines = append(*lines, t)
			}
		case ast.KindListItem:
			first := n.FirstChild()
			if first == nil {
				continue
			}
			if t := extractText(first, src); t != "" {
				*lines = append(*lines, listPrefix(n)+t)
			}
			collectBlocks(first.NextSibling(), src, lines)
		default:
			collectBlocks(n.FirstChild(), src, lines)
		}
	}
}

func listPrefix(item ast.Node) string {
	list, ok := item.Parent().(*ast.List)
	if !ok || !list.IsOrdered() {
		return ""
	}
	idx := 0
	for s := item.PreviousSibling(); s != nil; s = s.PreviousSibling() {
		idx++
	}
	return fmt.Sprintf("%d%c ", list.Start+idx, list.Marker)
}

// extractText gets the text content of a goldmark AST node.
func extractText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	if n.Type() == ast.TypeBlock && !n.HasChildren() {
		lines := n.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			buf.Write(line.Value(src))
		}
	}
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*ast.Text); ok {
			buf.Write(t.Value(src))
			if t.HardLineBreak() || t.SoftLineBreak() {
				buf.WriteByte('\n')
			}
		} else {
			buf.WriteString(extractText(c, src))
		}
	}
	return strings.TrimSpace(buf.String())
}
