package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSegment(t *testing.T) {
	assert.Equal(t, []string{"# Title", "Body text"}, Segment("# Title\n\nBody text"))

	md := `
This is **bolded** paragraph

This is another paragraph with _italic_ text and ` + "`code`" + ` here
This is the same paragraph on a new line



- This is a list
- with items
`
	assert.Equal(t, []string{
		"This is **bolded** paragraph",
		"This is another paragraph with _italic_ text and `code` here\nThis is the same paragraph on a new line",
		"- This is a list\n- with items",
	}, Segment(md))
}

func TestSegmentEmpty(t *testing.T) {
	assert.Empty(t, Segment(""))
	assert.Empty(t, Segment("\n\n   \n\n"))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		block string
		want  Classification
	}{
		{"h1", "# H", Classification{Kind: Heading, Level: 1}},
		{"h3", "### Sub", Classification{Kind: Heading, Level: 3}},
		{"h6", "###### H", Classification{Kind: Heading, Level: 6}},
		{"seven hashes", "####### H", Classification{Kind: Paragraph}},
		{"hash without space", "#hashtag", Classification{Kind: Paragraph}},
		{"code", "```\ncode\n```", Classification{Kind: CodeBlock}},
		{"code missing close", "```\ncode", Classification{Kind: Paragraph}},
		{"lone fence", "```", Classification{Kind: Paragraph}},
		{"quote", "> a\n> b", Classification{Kind: Quote}},
		{"quote without space", ">a\n>b", Classification{Kind: Quote}},
		{"partial quote", "> a\nb", Classification{Kind: Paragraph}},
		{"unordered", "- a\n- b", Classification{Kind: UnorderedList}},
		{"unordered needs space", "-a\n-b", Classification{Kind: Paragraph}},
		{"ordered", "1. a\n2. b", Classification{Kind: OrderedList}},
		{"ordered ten items", "1. a\n2. b\n3. c\n4. d\n5. e\n6. f\n7. g\n8. h\n9. i\n10. j", Classification{Kind: OrderedList}},
		{"ordered wrong start", "2. a\n3. b", Classification{Kind: Paragraph}},
		{"ordered skipped number", "1. a\n3. b", Classification{Kind: Paragraph}},
		{"paragraph", "just text", Classification{Kind: Paragraph}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.block))
		})
	}
}

func TestBlockKindString(t *testing.T) {
	assert.Equal(t, "ordered_list", OrderedList.String())
	assert.Equal(t, "paragraph", Paragraph.String())
	assert.Equal(t, "BlockKind(42)", BlockKind(42).String())
}
