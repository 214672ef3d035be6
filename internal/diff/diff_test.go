package diff

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gerunddev/mdsite/internal/config"
	"github.com/gerunddev/mdsite/internal/page"
)

func setupSite(t *testing.T) (*config.Config, string) {
	t.Helper()
	tmpDir := t.TempDir()

	cfg := &config.Config{
		ContentDir: filepath.Join(tmpDir, "content"),
		OutputDir:  filepath.Join(tmpDir, "docs"),
		Template:   filepath.Join(tmpDir, "template.html"),
		BasePath:   "/",
	}
	if err := os.MkdirAll(cfg.ContentDir, 0755); err != nil {
		t.Fatalf("Failed to create content dir: %v", err)
	}
	if err := os.WriteFile(cfg.Template, []byte("<title>{{ Title }}</title><main>{{ Content }}</main>"), 0644); err != nil {
		t.Fatalf("Failed to write template: %v", err)
	}

	src := filepath.Join(cfg.ContentDir, "index.md")
	if err := os.WriteFile(src, []byte("# Home\n\nHello"), 0644); err != nil {
		t.Fatalf("Failed to write page: %v", err)
	}
	return cfg, src
}

func TestGenerateUpToDate(t *testing.T) {
	cfg, src := setupSite(t)

	dest, err := page.OutputPath(cfg.ContentDir, cfg.OutputDir, src)
	if err != nil {
		t.Fatalf("OutputPath failed: %v", err)
	}
	if _, err := page.Generate(src, cfg.Template, dest, cfg.BasePath); err != nil {
		t.Fatalf("Generate page failed: %v", err)
	}

	out, err := Generate(cfg, src, FormatPlain)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if out != "" {
		t.Errorf("Expected no diff, got:\n%s", out)
	}
}

func TestGenerateChanged(t *testing.T) {
	cfg, src := setupSite(t)

	dest, _ := page.OutputPath(cfg.ContentDir, cfg.OutputDir, src)
	if _, err := page.Generate(src, cfg.Template, dest, cfg.BasePath); err != nil {
		t.Fatalf("Generate page failed: %v", err)
	}
	if err := os.WriteFile(src, []byte("# Home\n\nGoodbye"), 0644); err != nil {
		t.Fatalf("Failed to update page: %v", err)
	}

	out, err := Generate(cfg, src, FormatPlain)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.Contains(out, "-<p>Hello</p>") {
		t.Errorf("Expected removed line, got:\n%s", out)
	}
	if !strings.Contains(out, "+<p>Goodbye</p>") {
		t.Errorf("Expected added line, got:\n%s", out)
	}
	if !strings.Contains(out, "--- index.html") {
		t.Errorf("Expected file header, got:\n%s", out)
	}
}

func TestGenerateNotBuilt(t *testing.T) {
	cfg, src := setupSite(t)

	out, err := Generate(cfg, src, FormatPlain)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.Contains(out, "--- /dev/null") {
		t.Errorf("Expected new file header, got:\n%s", out)
	}
	if !strings.Contains(out, "+<title>Home</title>") {
		t.Errorf("Expected whole page added, got:\n%s", out)
	}
}

func TestGenerateTerminal(t *testing.T) {
	cfg, src := setupSite(t)

	out, err := Generate(cfg, src, FormatTerminal)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.Contains(out, "Home") {
		t.Errorf("Expected rendered diff to mention the title, got:\n%s", out)
	}
}

func TestGenerateErrors(t *testing.T) {
	cfg, src := setupSite(t)

	if _, err := Generate(cfg, filepath.Join(cfg.ContentDir, "missing.md"), FormatPlain); err == nil {
		t.Error("Expected error for missing source")
	}
	if _, err := Generate(cfg, "/elsewhere/page.md", FormatPlain); err == nil {
		t.Error("Expected error for source outside content dir")
	}
	if _, err := Generate(cfg, src, Format(42)); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestUnified(t *testing.T) {
	if got := Unified("a", "b", "<p>x</p>", "<p>x</p>"); got != "" {
		t.Errorf("Expected empty diff for identical input, got %q", got)
	}

	got := Unified("a.html", "b.html", "<div><p>x</p></div>", "<div><p>y</p></div>")
	if !strings.Contains(got, "-<p>x</p>") || !strings.Contains(got, "+<p>y</p>") {
		t.Errorf("Expected tag-level diff, got:\n%s", got)
	}
	if !strings.Contains(got, " <div>") {
		t.Errorf("Expected unchanged context line, got:\n%s", got)
	}
}
