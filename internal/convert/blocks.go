package convert

import (
	"fmt"
	"strings"

	"github.com/gerunddev/mdsite/internal/htmlnode"
	"github.com/gerunddev/mdsite/internal/parser"
)

// BlockToNode classifies a block and builds its HTML subtree
func BlockToNode(block string) (htmlnode.Node, error) {
	c := parser.Classify(block)

	switch c.Kind {
	case parser.Heading:
		return HeadingToNode(block, c.Level)
	case parser.CodeBlock:
		return CodeToNode(block), nil
	case parser.Quote:
		return QuoteToNode(block)
	case parser.UnorderedList:
		return UnorderedListToNode(block)
	case parser.OrderedList:
		return OrderedListToNode(block)
	default:
		return ParagraphToNode(block)
	}
}

// HeadingToNode builds an h1-h6 element
// ## Title → <h2>Title</h2>
func HeadingToNode(block string, level int) (htmlnode.Node, error) {
	children, err := TextToChildren(block[level+1:])
	if err != nil {
		return nil, err
	}
	return htmlnode.NewParent(fmt.Sprintf("h%d", level), children), nil
}

// CodeToNode wraps the fenced content in pre > code. The content is not
// inline-parsed.
func CodeToNode(block string) htmlnode.Node {
	text := strings.TrimPrefix(block, parser.Fence)
	text = strings.TrimSuffix(text, parser.Fence)
	text = strings.TrimSpace(text)

	code := htmlnode.NewLeaf("code", text)
	return htmlnode.NewParent("pre", []htmlnode.Node{code})
}

// QuoteToNode joins the quoted lines with single spaces into a blockquote
func QuoteToNode(block string) (htmlnode.Node, error) {
	lines := strings.Split(block, "\n")
	stripped := make([]string, 0, len(lines))
	for _, line := range lines {
		stripped = append(stripped, strings.TrimSpace(strings.TrimLeft(line, ">")))
	}

	children, err := TextToChildren(strings.Join(stripped, " "))
	if err != nil {
		return nil, err
	}
	return htmlnode.NewParent("blockquote", children), nil
}

// UnorderedListToNode builds a ul with one li per "- " line
func UnorderedListToNode(block string) (htmlnode.Node, error) {
	lines := strings.Split(block, "\n")
	items := make([]string, 0, len(lines))
	for _, line := range lines {
		items = append(items, strings.TrimPrefix(line, "- "))
	}
	return listToNode("ul", items)
}

// OrderedListToNode builds an ol with one li per "N. " line
func OrderedListToNode(block string) (htmlnode.Node, error) {
	lines := strings.Split(block, "\n")
	items := make([]string, 0, len(lines))
	for _, line := range lines {
		_, item, found := strings.Cut(line, ". ")
		if !found {
			item = line
		}
		items = append(items, item)
	}
	return listToNode("ol", items)
}

func listToNode(tag string, items []string) (htmlnode.Node, error) {
	list := htmlnode.NewParent(tag, nil)
	for _, item := range items {
		children, err := TextToChildren(item)
		if err != nil {
			return nil, err
		}
		list.Append(htmlnode.NewParent("li", children))
	}
	return list, nil
}

// ParagraphToNode folds newlines into spaces and wraps the text in p
func ParagraphToNode(block string) (htmlnode.Node, error) {
	children, err := TextToChildren(strings.ReplaceAll(block, "\n", " "))
	if err != nil {
		return nil, err
	}
	return htmlnode.NewParent("p", children), nil
}
