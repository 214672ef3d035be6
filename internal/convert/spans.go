// Package convert turns markdown blocks into HTML node trees.
package convert

import (
	"errors"
	"fmt"

	"github.com/gerunddev/mdsite/internal/htmlnode"
	"github.com/gerunddev/mdsite/internal/parser"
)

// ErrUnknownSpanKind means a span kind has no HTML mapping. It indicates a
// bug, not bad input.
var ErrUnknownSpanKind = errors.New("unknown span kind")

// SpanToHTML maps an inline span to its leaf node
func SpanToHTML(span parser.Span) (htmlnode.Node, error) {
	switch span.Kind {
	case parser.Plain:
		return htmlnode.NewText(span.Text), nil
	case parser.Bold:
		return htmlnode.NewLeaf("b", span.Text), nil
	case parser.Italic:
		return htmlnode.NewLeaf("i", span.Text), nil
	case parser.Code:
		return htmlnode.NewLeaf("code", span.Text), nil
	case parser.Link:
		return htmlnode.NewLeaf("a", span.Text,
			htmlnode.Attr{Key: "href", Value: span.URL}), nil
	case parser.Image:
		return htmlnode.NewLeaf("img", "",
			htmlnode.Attr{Key: "src", Value: span.URL},
			htmlnode.Attr{Key: "alt", Value: span.Text}), nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownSpanKind, span.Kind)
	}
}

// TextToChildren tokenizes inline text and converts each span to a node
func TextToChildren(text string) ([]htmlnode.Node, error) {
	spans, err := parser.Tokenize(text)
	if err != nil {
		return nil, err
	}

	children := make([]htmlnode.Node, 0, len(spans))
	for _, span := range spans {
		node, err := SpanToHTML(span)
		if err != nil {
			return nil, err
		}
		children = append(children, node)
	}
	return children, nil
}
