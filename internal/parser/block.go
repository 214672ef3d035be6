package parser

import (
	"fmt"
	"strconv"
	"strings"
)

// BlockKind is the structural kind of a block
type BlockKind int

const (
	Paragraph BlockKind = iota
	Heading
	CodeBlock
	Quote
	UnorderedList
	OrderedList
)

var blockKindNames = map[BlockKind]string{
	Paragraph:     "paragraph",
	Heading:       "heading",
	CodeBlock:     "code",
	Quote:         "quote",
	UnorderedList: "unordered_list",
	OrderedList:   "ordered_list",
}

func (k BlockKind) String() string {
	if name, ok := blockKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("BlockKind(%d)", int(k))
}

// Fence opens and closes a code block
const Fence = "```"

// Classification is the result of Classify. Level is set for headings only.
type Classification struct {
	Kind  BlockKind
	Level int
}

// Segment splits a document into blocks on blank lines. Blocks are trimmed
// and empty blocks are dropped.
func Segment(document string) []string {
	var blocks []string
	for _, block := range strings.Split(document, "\n\n") {
		block = strings.TrimSpace(block)
		if block != "" {
			blocks = append(blocks, block)
		}
	}
	return blocks
}

// Classify determines the kind of a block. Anything that does not fully
// match a structured kind is a paragraph.
func Classify(block string) Classification {
	if level := HeadingLevel(block); level > 0 {
		return Classification{Kind: Heading, Level: level}
	}

	lines := strings.Split(block, "\n")
	switch {
	case len(lines) > 1 && lines[0] == Fence && lines[len(lines)-1] == Fence:
		return Classification{Kind: CodeBlock}
	case allLines(lines, func(_ int, line string) bool { return strings.HasPrefix(line, ">") }):
		return Classification{Kind: Quote}
	case allLines(lines, func(_ int, line string) bool { return strings.HasPrefix(line, "- ") }):
		return Classification{Kind: UnorderedList}
	case allLines(lines, func(i int, line string) bool { return strings.HasPrefix(line, OrderedPrefix(i+1)) }):
		return Classification{Kind: OrderedList}
	}
	return Classification{Kind: Paragraph}
}

// HeadingLevel returns 1-6 when block starts with that many '#' followed by
// a space, 0 otherwise
func HeadingLevel(block string) int {
	level := 0
	for level < len(block) && block[level] == '#' {
		level++
	}
	if level == 0 || level > 6 || level >= len(block) || block[level] != ' ' {
		return 0
	}
	return level
}

// OrderedPrefix returns the list marker for item n, e.g. "3. "
func OrderedPrefix(n int) string {
	return strconv.Itoa(n) + ". "
}

func allLines(lines []string, pred func(i int, line string) bool) bool {
	for i, line := range lines {
		if !pred(i, line) {
			return false
		}
	}
	return true
}
