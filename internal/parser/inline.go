package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrUnbalancedDelimiter is returned when an inline delimiter has no
// closing partner
var ErrUnbalancedDelimiter = errors.New("unbalanced delimiter")

var (
	imagePattern = regexp.MustCompile(`!\[(.*?)\]\((.*?)\)`)
	linkPattern  = regexp.MustCompile(`\[(.*?)\]\((.*?)\)`)
)

// Tokenize splits text into inline spans. Stages run in a fixed order and
// each one only looks at spans that are still Plain:
// images, links, bold (**), italic (_), code (`).
func Tokenize(text string) ([]Span, error) {
	spans := []Span{NewSpan(text, Plain)}
	spans = SplitImages(spans)
	spans = SplitLinks(spans)

	var err error
	for _, d := range []struct {
		delim string
		kind  SpanKind
	}{
		{"**", Bold},
		{"_", Italic},
		{"`", Code},
	} {
		spans, err = SplitDelimiter(spans, d.delim, d.kind)
		if err != nil {
			return nil, err
		}
	}
	return spans, nil
}

// SplitImages extracts ![alt](url) patterns from Plain spans
func SplitImages(spans []Span) []Span {
	return splitPattern(spans, imagePattern, NewImageSpan)
}

// SplitLinks extracts [text](url) patterns from Plain spans
func SplitLinks(spans []Span) []Span {
	return splitPattern(spans, linkPattern, NewLinkSpan)
}

func splitPattern(spans []Span, re *regexp.Regexp, build func(text, url string) Span) []Span {
	out := make([]Span, 0, len(spans))
	for _, span := range spans {
		if span.Kind != Plain {
			out = append(out, span)
			continue
		}

		matches := re.FindAllStringSubmatchIndex(span.Text, -1)
		if len(matches) == 0 {
			out = append(out, span)
			continue
		}

		text := span.Text
		last := 0
		for _, m := range matches {
			if m[0] > last {
				out = append(out, NewSpan(text[last:m[0]], Plain))
			}
			out = append(out, build(text[m[2]:m[3]], text[m[4]:m[5]]))
			last = m[1]
		}
		if last < len(text) {
			out = append(out, NewSpan(text[last:], Plain))
		}
	}
	return out
}

// SplitDelimiter splits Plain spans on a literal delimiter. Parts alternate
// plain and styled, starting with plain; empty parts are dropped. An even
// number of parts means a delimiter was left open.
func SplitDelimiter(spans []Span, delim string, kind SpanKind) ([]Span, error) {
	out := make([]Span, 0, len(spans))
	for _, span := range spans {
		if span.Kind != Plain {
			out = append(out, span)
			continue
		}

		parts := strings.Split(span.Text, delim)
		if len(parts)%2 == 0 {
			return nil, fmt.Errorf("%w %q in %q", ErrUnbalancedDelimiter, delim, span.Text)
		}

		for i, part := range parts {
			if part == "" {
				continue
			}
			if i%2 == 0 {
				out = append(out, NewSpan(part, Plain))
			} else {
				out = append(out, NewSpan(part, kind))
			}
		}
	}
	return out, nil
}
