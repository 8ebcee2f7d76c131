package extract

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// markdownToText strips markdown structure, keeping the readable text.
// Embedding prose without the marker characters gives cleaner vectors than
// embedding raw markdown.
func markdownToText(source []byte) string {
	md := goldmark.New()
	reader := text.NewReader(source)
	doc := md.Parser().Parse(reader)

	var b strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			// Blank line between top-level blocks.
			if n.Type() == ast.TypeBlock && n.Parent() == doc {
				b.WriteString("\n\n")
			}
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Text:
			b.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteString("\n")
			}
		case *ast.FencedCodeBlock:
			writeCodeLines(&b, node.Lines(), source)
		case *ast.CodeBlock:
			writeCodeLines(&b, node.Lines(), source)
		case *ast.CodeSpan:
			// Children are Text nodes, handled above.
		case *ast.AutoLink:
			b.Write(node.URL(source))
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(b.String())
}

func writeCodeLines(b *strings.Builder, lines *text.Segments, source []byte) {
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		b.Write(seg.Value(source))
	}
}
