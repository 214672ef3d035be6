// Package diff shows how a page's generated HTML would change if the site
// were rebuilt now.
package diff

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"

	"github.com/gerunddev/mdsite/internal/config"
	"github.com/gerunddev/mdsite/internal/page"
)

// Format represents the output format for diffs
type Format int

const (
	// FormatTerminal renders the diff with glamour (default)
	FormatTerminal Format = iota
	// FormatPlain returns the raw unified diff
	FormatPlain
)

// Generate renders src with the configured template and diffs it against
// the page currently in the output directory. An empty string means the
// output is up to date.
func Generate(cfg *config.Config, src string, format Format) (string, error) {
	dest, err := page.OutputPath(cfg.ContentDir, cfg.OutputDir, src)
	if err != nil {
		return "", err
	}

	markdown, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("failed to read markdown file: %w", err)
	}
	template, err := os.ReadFile(cfg.Template)
	if err != nil {
		return "", fmt.Errorf("failed to read template: %w", err)
	}

	p, err := page.Render(string(markdown), string(template), cfg.BasePath)
	if err != nil {
		return "", err
	}

	oldName := filepath.Base(dest)
	current, err := os.ReadFile(dest)
	if os.IsNotExist(err) {
		oldName = "/dev/null"
	} else if err != nil {
		return "", fmt.Errorf("failed to read generated page: %w", err)
	}

	unified := Unified(oldName, filepath.Base(dest), string(current), p.HTML)
	if unified == "" {
		return "", nil
	}

	switch format {
	case FormatPlain:
		return unified, nil
	case FormatTerminal:
		return render(unified), nil
	default:
		return "", fmt.Errorf("unsupported diff format: %d", format)
	}
}

// Unified returns a unified diff between two HTML documents with one tag
// per line, or "" when they are identical
func Unified(oldName, newName, oldHTML, newHTML string) string {
	if oldHTML == newHTML {
		return ""
	}
	before, after := splitTags(oldHTML), splitTags(newHTML)
	edits := myers.ComputeEdits(span.URIFromPath(oldName), before, after)
	return fmt.Sprint(gotextdiff.ToUnified(oldName, newName, before, edits))
}

// splitTags breaks adjacent tags onto their own lines
func splitTags(html string) string {
	if html == "" {
		return ""
	}
	html = strings.ReplaceAll(html, "><", ">\n<")
	if !strings.HasSuffix(html, "\n") {
		html += "\n"
	}
	return html
}

func render(unified string) string {
	// Wrap in a diff fence so + and - lines get colored
	fenced := fmt.Sprintf("```diff\n%s```\n", unified)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		return fenced
	}

	rendered, err := renderer.Render(fenced)
	if err != nil {
		return fenced
	}
	return rendered
}
