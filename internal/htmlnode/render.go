package htmlnode

import (
	"fmt"
	"strings"
)

// ToHTML serializes a node depth-first. Text is written verbatim, nothing is
// escaped and no whitespace is inserted between elements. Every tagged node,
// img included, gets a matching close tag.
func ToHTML(n Node) string {
	var b strings.Builder
	write(&b, n)
	return b.String()
}

func write(b *strings.Builder, n Node) {
	switch n := n.(type) {
	case *Leaf:
		if n.Tag == "" {
			b.WriteString(n.Value)
			return
		}
		openTag(b, n.Tag, n.Attrs)
		b.WriteString(n.Value)
		closeTag(b, n.Tag)
	case *Parent:
		openTag(b, n.Tag, n.Attrs)
		for _, child := range n.Children {
			write(b, child)
		}
		closeTag(b, n.Tag)
	default:
		panic(fmt.Sprintf("htmlnode: unknown node type %T", n))
	}
}

func openTag(b *strings.Builder, tag string, attrs Attrs) {
	b.WriteByte('<')
	b.WriteString(tag)
	b.WriteString(attrsToHTML(attrs))
	b.WriteByte('>')
}

func closeTag(b *strings.Builder, tag string) {
	b.WriteString("</")
	b.WriteString(tag)
	b.WriteByte('>')
}

// attrsToHTML renders ` key="value"` for each attribute
func attrsToHTML(attrs Attrs) string {
	if len(attrs) == 0 {
		return ""
	}
	var b strings.Builder
	for _, attr := range attrs {
		fmt.Fprintf(&b, ` %s="%s"`, attr.Key, attr.Value)
	}
	return b.String()
}
