// Package text turns input documents into plain text the encoder can play.
package text

import (
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold strips combining marks so accented letters fall back to their base
// letter ("é" becomes "e").
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

// PlainText extracts the readable text from markdown. Code blocks and raw
// HTML are skipped; block boundaries become line breaks.
func PlainText(markdown string) string {
	source := []byte(markdown)
	doc := goldmark.New().Parser().Parse(gmtext.NewReader(source))

	var buf strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.CodeBlock, *ast.FencedCodeBlock, *ast.HTMLBlock, *ast.RawHTML:
			return ast.WalkSkipChildren, nil

		case *ast.Text:
			if entering {
				buf.Write(node.Segment.Value(source))
				if node.SoftLineBreak() || node.HardLineBreak() {
					buf.WriteByte(' ')
				}
			}

		case *ast.String:
			if entering {
				buf.Write(node.Value)
			}

		case *ast.Paragraph, *ast.TextBlock, *ast.Heading, *ast.ListItem, *ast.Blockquote:
			if !entering {
				buf.WriteByte('\n')
			}
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(collapseBlankLines(buf.String()))
}

// collapseBlankLines trims every line and drops empty ones.
func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// IsMarkdown reports whether path looks like a markdown file.
func IsMarkdown(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range []string{".md", ".markdown", ".mdown", ".mkdn", ".mkd"} {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
