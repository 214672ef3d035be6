// Package parser splits markdown documents into blocks and block text into
// typed inline spans.
package parser

import "fmt"

// SpanKind identifies how a span of inline text is styled
type SpanKind int

const (
	Plain SpanKind = iota
	Bold
	Italic
	Code
	Link
	Image
)

var spanKindNames = map[SpanKind]string{
	Plain:  "plain",
	Bold:   "bold",
	Italic: "italic",
	Code:   "code",
	Link:   "link",
	Image:  "image",
}

func (k SpanKind) String() string {
	if name, ok := spanKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("SpanKind(%d)", int(k))
}

// Span is a run of inline text. URL is only meaningful for Link and Image;
// for Image, Text holds the alt text.
type Span struct {
	Kind SpanKind
	Text string
	URL  string
}

// NewSpan creates a span without a URL
func NewSpan(text string, kind SpanKind) Span {
	return Span{Kind: kind, Text: text}
}

// NewLinkSpan creates a Link span
func NewLinkSpan(text, url string) Span {
	return Span{Kind: Link, Text: text, URL: url}
}

// NewImageSpan creates an Image span
func NewImageSpan(alt, url string) Span {
	return Span{Kind: Image, Text: alt, URL: url}
}

func (s Span) String() string {
	if s.Kind == Link || s.Kind == Image {
		return fmt.Sprintf("%s(%q, %q)", s.Kind, s.Text, s.URL)
	}
	return fmt.Sprintf("%s(%q)", s.Kind, s.Text)
}
