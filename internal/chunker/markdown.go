package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// StripMarkdown reduces a markdown document to plain text so headings,
// emphasis markers and link targets do not pollute the embedding space.
// Fenced code blocks (DDL snippets, examples) are kept verbatim.
func StripMarkdown(markdown string) string {
	source := []byte(markdown)
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(source))

	var sb strings.Builder
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		switch n := node.(type) {
		case *ast.FencedCodeBlock:
			for i := 0; i < n.Lines().Len(); i++ {
				line := n.Lines().At(i)
				sb.Write(line.Value(source))
			}
			sb.WriteString("\n")
		default:
			txt := blockText(node, source)
			if txt == "" {
				continue
			}
			sb.WriteString(txt)
			sb.WriteString("\n")
		}
	}
	return strings.TrimSpace(sb.String())
}

// blockText joins the text segments of one block. A separator is only
// inserted where neither side already carries whitespace: line breaks need
// one, inline spans (emphasis, code) must not be padded apart.
func blockText(n ast.Node, source []byte) string {
	var sb strings.Builder
	endsWithSpace := true
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || node.Kind() != ast.KindText {
			return ast.WalkContinue, nil
		}
		segment := node.(*ast.Text).Segment.Value(source)
		if len(segment) == 0 {
			return ast.WalkContinue, nil
		}
		first, _ := utf8.DecodeRune(segment)
		if !endsWithSpace && !unicode.IsSpace(first) {
			sb.WriteByte(' ')
		}
		sb.Write(segment)
		last, _ := utf8.DecodeLastRune(segment)
		endsWithSpace = unicode.IsSpace(last)
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}
