// Package page renders markdown files into HTML pages using a template.
package page

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gerunddev/mdsite/internal/convert"
)

// Template placeholders
const (
	TitlePlaceholder   = "{{ Title }}"
	ContentPlaceholder = "{{ Content }}"
)

// Page is a rendered page
type Page struct {
	Title string
	HTML  string
}

// Render converts markdown, fills the template and rewrites root-relative
// href and src attributes to basePath
func Render(markdown, template, basePath string) (*Page, error) {
	content, err := convert.MarkdownToHTML(markdown)
	if err != nil {
		return nil, fmt.Errorf("failed to convert markdown: %w", err)
	}

	title, err := convert.ExtractTitle(markdown)
	if err != nil {
		return nil, err
	}

	html := strings.ReplaceAll(template, TitlePlaceholder, title)
	html = strings.ReplaceAll(html, ContentPlaceholder, content)
	html = RewriteBasePath(html, basePath)

	return &Page{Title: title, HTML: html}, nil
}

// RewriteBasePath points href="/ and src="/ at basePath
func RewriteBasePath(html, basePath string) string {
	if basePath == "" || basePath == "/" {
		return html
	}
	html = strings.ReplaceAll(html, `href="/`, `href="`+basePath)
	return strings.ReplaceAll(html, `src="/`, `src="`+basePath)
}

// Generate renders the markdown file at src with the template at tmplPath
// and writes the result to dest, creating parent directories as needed
func Generate(src, tmplPath, dest, basePath string) (*Page, error) {
	markdown, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read markdown file: %w", err)
	}

	template, err := os.ReadFile(tmplPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read template: %w", err)
	}

	p, err := Render(string(markdown), string(template), basePath)
	if err != nil {
		return nil, err
	}

	if err := Write(dest, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Write stores a rendered page at dest
func Write(dest string, p *Page) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(dest, []byte(p.HTML), 0644); err != nil {
		return fmt.Errorf("failed to write page: %w", err)
	}
	return nil
}

// OutputPath maps a markdown file under contentDir to its .html path under
// outputDir, keeping the relative directory structure
// content/blog/post.md → docs/blog/post.html
func OutputPath(contentDir, outputDir, src string) (string, error) {
	rel, err := filepath.Rel(contentDir, src)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", src, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside %s", src, contentDir)
	}
	return filepath.Join(outputDir, strings.TrimSuffix(rel, filepath.Ext(rel))+".html"), nil
}
