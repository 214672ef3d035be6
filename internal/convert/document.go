package convert

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gerunddev/mdsite/internal/htmlnode"
	"github.com/gerunddev/mdsite/internal/parser"
)

// ErrMissingTitle is returned when a document has no "# " heading line
var ErrMissingTitle = errors.New("no h1 header found in markdown")

// MarkdownToHTMLNode converts a whole document into a div holding one
// subtree per block, in document order. The first failing block aborts the
// conversion.
func MarkdownToHTMLNode(markdown string) (*htmlnode.Parent, error) {
	blocks := parser.Segment(markdown)

	children := make([]htmlnode.Node, 0, len(blocks))
	for i, block := range blocks {
		node, err := BlockToNode(block)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i+1, err)
		}
		children = append(children, node)
	}
	return htmlnode.NewParent("div", children), nil
}

// MarkdownToHTML converts a document and serializes it
func MarkdownToHTML(markdown string) (string, error) {
	root, err := MarkdownToHTMLNode(markdown)
	if err != nil {
		return "", err
	}
	return htmlnode.ToHTML(root), nil
}

// ExtractTitle returns the text of the first line that starts with "# "
func ExtractTitle(markdown string) (string, error) {
	for _, line := range strings.Split(markdown, "\n") {
		if title, ok := strings.CutPrefix(line, "# "); ok {
			return strings.TrimSpace(title), nil
		}
	}
	return "", ErrMissingTitle
}
