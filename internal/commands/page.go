package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gerunddev/mdsite/internal/convert"
	"github.com/gerunddev/mdsite/internal/diff"
	"github.com/gerunddev/mdsite/internal/styles"
)

// Render prints the HTML fragment of a single markdown file
func Render(args []string) {
	markdown := readSource(args, "render")

	html, err := convert.MarkdownToHTML(markdown)
	if err != nil {
		fail("Error converting markdown: %v", err)
	}
	fmt.Println(html)
}

// Title prints the title of a single markdown file
func Title(args []string) {
	markdown := readSource(args, "title")

	title, err := convert.ExtractTitle(markdown)
	if err != nil {
		fail("Error: %v", err)
	}
	fmt.Println(title)
}

// Diff shows how the generated page for a markdown file would change
func Diff(args []string) {
	files := positional(args)
	if len(files) != 1 {
		fail("Usage: mdsite diff FILE [--plain]")
	}

	cfg := loadConfig()

	src, err := filepath.Abs(files[0])
	if err != nil {
		fail("Error: %v", err)
	}

	format := diff.FormatTerminal
	if hasFlag(args, "--plain") || !isTerminal() {
		format = diff.FormatPlain
	}

	out, err := diff.Generate(cfg, src, format)
	if err != nil {
		fail("Error generating diff: %v", err)
	}
	if out == "" {
		fmt.Println(styles.SuccessStyle.Render("✓ Output is up to date"))
		return
	}
	fmt.Print(out)
}

// readSource reads the single FILE argument of a command, "-" meaning stdin
func readSource(args []string, command string) string {
	files := positional(args)
	if len(files) != 1 {
		fail("Usage: mdsite %s FILE", command)
	}

	var data []byte
	var err error
	if files[0] == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(files[0])
	}
	if err != nil {
		fail("Error reading %s: %v", files[0], err)
	}
	return string(data)
}
