package site

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gerunddev/mdsite/internal/config"
	"github.com/gerunddev/mdsite/internal/convert"
	"github.com/gerunddev/mdsite/internal/logger"
	"github.com/gerunddev/mdsite/internal/state"
)

const testTemplate = `<html><head><title>{{ Title }}</title><link href="/css/style.css"></head><body>{{ Content }}</body></html>`

// newTestSite lays out content, static and template files under a temp dir
func newTestSite(t *testing.T) *config.Config {
	t.Helper()
	tmpDir := t.TempDir()

	cfg := &config.Config{
		ContentDir: filepath.Join(tmpDir, "content"),
		StaticDir:  filepath.Join(tmpDir, "static"),
		OutputDir:  filepath.Join(tmpDir, "docs"),
		Template:   filepath.Join(tmpDir, "template.html"),
		BasePath:   "/",
		Workers:    2,
		Clean:      true,
	}

	writeFile(t, filepath.Join(cfg.ContentDir, "index.md"), "# Hello\n\nSome **bold** text")
	writeFile(t, filepath.Join(cfg.ContentDir, "blog", "post.md"), "# First Post\n\n- one\n- two")
	writeFile(t, filepath.Join(cfg.StaticDir, "css", "style.css"), "body { margin: 0; }")
	writeFile(t, cfg.Template, testTemplate)

	return cfg
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}

// touchFuture rewrites a file and pushes its mtime forward so the change is
// seen regardless of filesystem timestamp resolution
func touchFuture(t *testing.T, path, content string) {
	t.Helper()
	writeFile(t, path, content)
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatalf("Failed to touch %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read %s: %v", path, err)
	}
	return string(data)
}

func TestBuild(t *testing.T) {
	cfg := newTestSite(t)
	st := state.NewState()

	var logBuf bytes.Buffer
	builder := NewBuilder(cfg, st)
	builder.SetLogger(logger.New(&logBuf))

	result, err := builder.Build(context.Background())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if result.PagesBuilt != 2 {
		t.Errorf("Expected 2 pages built, got %d", result.PagesBuilt)
	}
	if result.AssetsCopied != 1 {
		t.Errorf("Expected 1 asset copied, got %d", result.AssetsCopied)
	}
	if result.Failed() {
		t.Errorf("Expected no errors, got %v", result.Errors)
	}
	if result.BuildID == "" {
		t.Error("BuildID should be set")
	}

	index := readFile(t, filepath.Join(cfg.OutputDir, "index.html"))
	if !strings.Contains(index, "<title>Hello</title>") {
		t.Errorf("Title not filled in: %s", index)
	}
	if !strings.Contains(index, "<p>Some <b>bold</b> text</p>") {
		t.Errorf("Content not filled in: %s", index)
	}
	if !strings.Contains(index, `href="/css/style.css"`) {
		t.Errorf("Root path should be left untouched: %s", index)
	}

	post := readFile(t, filepath.Join(cfg.OutputDir, "blog", "post.html"))
	if !strings.Contains(post, "<ul><li>one</li><li>two</li></ul>") {
		t.Errorf("Nested page not rendered: %s", post)
	}

	if got := readFile(t, filepath.Join(cfg.OutputDir, "css", "style.css")); got != "body { margin: 0; }" {
		t.Errorf("Static file not copied, got %q", got)
	}

	logOutput := logBuf.String()
	if !strings.Contains(logOutput, "build started") {
		t.Error("Expected 'build started' in log")
	}
	if !strings.Contains(logOutput, "page generated") {
		t.Error("Expected 'page generated' in log")
	}
	if !strings.Contains(logOutput, "build completed") {
		t.Error("Expected 'build completed' in log")
	}

	if st.LastBuildID != result.BuildID {
		t.Errorf("Manifest build id mismatch: got %s, want %s", st.LastBuildID, result.BuildID)
	}
	pages := st.Pages()
	if len(pages) != 2 {
		t.Fatalf("Expected 2 pages in manifest, got %d", len(pages))
	}
	if pages[0].Title != "First Post" || pages[1].Title != "Hello" {
		t.Errorf("Unexpected manifest titles: %q, %q", pages[0].Title, pages[1].Title)
	}
}

func TestBuildBasePath(t *testing.T) {
	cfg := newTestSite(t)
	cfg.BasePath = "/repo/"

	builder := NewBuilder(cfg, state.NewState())
	if _, err := builder.Build(context.Background()); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	index := readFile(t, filepath.Join(cfg.OutputDir, "index.html"))
	if !strings.Contains(index, `href="/repo/css/style.css"`) {
		t.Errorf("Expected rewritten href, got: %s", index)
	}
}

func TestBuildCleansOutput(t *testing.T) {
	cfg := newTestSite(t)
	stale := filepath.Join(cfg.OutputDir, "stale.html")
	writeFile(t, stale, "old")

	builder := NewBuilder(cfg, state.NewState())
	if _, err := builder.Build(context.Background()); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("Stale file should be removed by a clean build")
	}
}

func TestBuildNoClean(t *testing.T) {
	cfg := newTestSite(t)
	cfg.Clean = false
	keep := filepath.Join(cfg.OutputDir, "CNAME")
	writeFile(t, keep, "example.com")

	builder := NewBuilder(cfg, state.NewState())
	if _, err := builder.Build(context.Background()); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if _, err := os.Stat(keep); err != nil {
		t.Errorf("File should survive when clean is off: %v", err)
	}
}

func TestBuildIncremental(t *testing.T) {
	cfg := newTestSite(t)
	st := state.NewState()

	if _, err := NewBuilder(cfg, st).Build(context.Background()); err != nil {
		t.Fatalf("Initial build failed: %v", err)
	}

	builder := NewBuilder(cfg, st)
	builder.Incremental = true

	// Nothing changed
	result, err := builder.Build(context.Background())
	if err != nil {
		t.Fatalf("Incremental build failed: %v", err)
	}
	if result.PagesBuilt != 0 || result.PagesSkipped != 2 {
		t.Errorf("Expected 0 built and 2 skipped, got %d built and %d skipped",
			result.PagesBuilt, result.PagesSkipped)
	}

	// One page changed
	touchFuture(t, filepath.Join(cfg.ContentDir, "index.md"), "# Hello again")
	result, err = builder.Build(context.Background())
	if err != nil {
		t.Fatalf("Incremental build failed: %v", err)
	}
	if result.PagesBuilt != 1 || result.PagesSkipped != 1 {
		t.Errorf("Expected 1 built and 1 skipped, got %d built and %d skipped",
			result.PagesBuilt, result.PagesSkipped)
	}
	if index := readFile(t, filepath.Join(cfg.OutputDir, "index.html")); !strings.Contains(index, "<h1>Hello again</h1>") {
		t.Errorf("Changed page not rebuilt: %s", index)
	}

	// Template changed invalidates everything
	touchFuture(t, cfg.Template, "<main>{{ Content }}</main>")
	result, err = builder.Build(context.Background())
	if err != nil {
		t.Fatalf("Incremental build failed: %v", err)
	}
	if result.PagesBuilt != 2 || result.PagesSkipped != 0 {
		t.Errorf("Expected 2 built and 0 skipped, got %d built and %d skipped",
			result.PagesBuilt, result.PagesSkipped)
	}
}

func TestBuildIncrementalMissingOutput(t *testing.T) {
	cfg := newTestSite(t)
	st := state.NewState()

	if _, err := NewBuilder(cfg, st).Build(context.Background()); err != nil {
		t.Fatalf("Initial build failed: %v", err)
	}
	if err := os.Remove(filepath.Join(cfg.OutputDir, "index.html")); err != nil {
		t.Fatalf("Failed to remove output: %v", err)
	}

	builder := NewBuilder(cfg, st)
	builder.Incremental = true
	result, err := builder.Build(context.Background())
	if err != nil {
		t.Fatalf("Incremental build failed: %v", err)
	}
	if result.PagesBuilt != 1 {
		t.Errorf("Expected the missing page to be rebuilt, got %d built", result.PagesBuilt)
	}
}

func TestBuildRemovesDeletedPages(t *testing.T) {
	cfg := newTestSite(t)
	st := state.NewState()

	if _, err := NewBuilder(cfg, st).Build(context.Background()); err != nil {
		t.Fatalf("Initial build failed: %v", err)
	}

	src := filepath.Join(cfg.ContentDir, "blog", "post.md")
	if err := os.Remove(src); err != nil {
		t.Fatalf("Failed to remove source: %v", err)
	}

	builder := NewBuilder(cfg, st)
	builder.Incremental = true
	result, err := builder.Build(context.Background())
	if err != nil {
		t.Fatalf("Incremental build failed: %v", err)
	}

	if len(result.Removed) != 1 || result.Removed[0] != src {
		t.Errorf("Expected %s to be removed, got %v", src, result.Removed)
	}
	if _, err := os.Stat(filepath.Join(cfg.OutputDir, "blog", "post.html")); !os.IsNotExist(err) {
		t.Error("Output of a deleted page should be removed")
	}
	if _, ok := st.Get(src); ok {
		t.Error("Deleted page should be dropped from the manifest")
	}
}

func TestBuildRemovesFailedPageAfterDeletion(t *testing.T) {
	cfg := newTestSite(t)
	st := state.NewState()

	if _, err := NewBuilder(cfg, st).Build(context.Background()); err != nil {
		t.Fatalf("Initial build failed: %v", err)
	}

	src := filepath.Join(cfg.ContentDir, "blog", "post.md")
	out := filepath.Join(cfg.OutputDir, "blog", "post.html")
	touchFuture(t, src, "# First Post\n\nan **unclosed run")

	builder := NewBuilder(cfg, st)
	builder.Incremental = true
	result, err := builder.Build(context.Background())
	if err != nil {
		t.Fatalf("Incremental build failed: %v", err)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("Expected the broken page to fail, got %v", result.Errors)
	}

	if err := os.Remove(src); err != nil {
		t.Fatalf("Failed to remove source: %v", err)
	}
	changed, err := builder.Changed()
	if err != nil {
		t.Fatalf("Changed failed: %v", err)
	}
	if !changed {
		t.Error("Deleting a failed page should be reported")
	}

	result, err = builder.Build(context.Background())
	if err != nil {
		t.Fatalf("Build after deletion failed: %v", err)
	}
	if len(result.Removed) != 1 || result.Removed[0] != src {
		t.Errorf("Expected %s to be removed, got %v", src, result.Removed)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("Output of a deleted page should be removed even after a failed build")
	}
}

func TestBuildRemovesDeletedAssets(t *testing.T) {
	cfg := newTestSite(t)
	st := state.NewState()
	builder := NewBuilder(cfg, st)
	builder.Incremental = true

	if _, err := builder.Build(context.Background()); err != nil {
		t.Fatalf("Initial build failed: %v", err)
	}

	asset := filepath.Join(cfg.StaticDir, "css", "style.css")
	copied := filepath.Join(cfg.OutputDir, "css", "style.css")
	if _, err := os.Stat(copied); err != nil {
		t.Fatalf("Asset should be copied: %v", err)
	}
	if err := os.Remove(asset); err != nil {
		t.Fatalf("Failed to remove asset: %v", err)
	}

	changed, err := builder.Changed()
	if err != nil {
		t.Fatalf("Changed failed: %v", err)
	}
	if !changed {
		t.Error("Deleted static file should be reported")
	}

	result, err := builder.Build(context.Background())
	if err != nil {
		t.Fatalf("Build after deletion failed: %v", err)
	}
	if len(result.Removed) != 1 || result.Removed[0] != asset {
		t.Errorf("Expected %s to be removed, got %v", asset, result.Removed)
	}
	if _, ok := st.Get(asset); ok {
		t.Error("Deleted asset should be dropped from the manifest")
	}
	if _, err := os.Stat(copied); !os.IsNotExist(err) {
		t.Error("Copied asset should be removed from the output")
	}
}

func TestBuildDryRun(t *testing.T) {
	cfg := newTestSite(t)
	st := state.NewState()

	var logBuf bytes.Buffer
	builder := NewBuilder(cfg, st)
	builder.SetLogger(logger.New(&logBuf))
	builder.DryRun = true

	result, err := builder.Build(context.Background())
	if err != nil {
		t.Fatalf("Dry run failed: %v", err)
	}

	if result.PagesBuilt != 2 {
		t.Errorf("Expected 2 pages rendered, got %d", result.PagesBuilt)
	}
	if _, err := os.Stat(cfg.OutputDir); !os.IsNotExist(err) {
		t.Error("Dry run should not create the output directory")
	}
	if len(st.Files) != 0 {
		t.Errorf("Dry run should not touch the manifest, got %d entries", len(st.Files))
	}
	if !strings.Contains(logBuf.String(), "would generate page") {
		t.Error("Expected 'would generate page' in log")
	}
	if !strings.HasPrefix(result.String(), "Dry run complete") {
		t.Errorf("Unexpected summary: %s", result.String())
	}
}

func TestBuildPageError(t *testing.T) {
	cfg := newTestSite(t)
	broken := filepath.Join(cfg.ContentDir, "broken.md")
	writeFile(t, broken, "no heading here")

	var logBuf bytes.Buffer
	builder := NewBuilder(cfg, state.NewState())
	builder.SetLogger(logger.New(&logBuf))

	result, err := builder.Build(context.Background())
	if err != nil {
		t.Fatalf("Build should not fail as a whole: %v", err)
	}

	if len(result.Errors) != 1 {
		t.Fatalf("Expected 1 error, got %d: %v", len(result.Errors), result.Errors)
	}
	if !errors.Is(result.Errors[0], convert.ErrMissingTitle) {
		t.Errorf("Expected ErrMissingTitle, got %v", result.Errors[0])
	}
	if !strings.Contains(result.Errors[0].Error(), broken) {
		t.Errorf("Error should name the source file: %v", result.Errors[0])
	}
	if result.PagesBuilt != 2 {
		t.Errorf("Other pages should still build, got %d", result.PagesBuilt)
	}
	if !strings.Contains(logBuf.String(), "conversion failed") {
		t.Error("Expected 'conversion failed' in log")
	}
}

func TestBuildExcludes(t *testing.T) {
	cfg := newTestSite(t)
	cfg.ExcludePatterns = []string{"drafts/**", "**/_*.md"}
	writeFile(t, filepath.Join(cfg.ContentDir, "drafts", "wip.md"), "# WIP")
	writeFile(t, filepath.Join(cfg.ContentDir, "blog", "_partial.md"), "# Partial")

	builder := NewBuilder(cfg, state.NewState())
	result, err := builder.Build(context.Background())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if result.PagesBuilt != 2 {
		t.Errorf("Expected 2 pages built, got %d", result.PagesBuilt)
	}
	for _, p := range []string{"drafts/wip.html", "blog/_partial.html"} {
		if _, err := os.Stat(filepath.Join(cfg.OutputDir, p)); !os.IsNotExist(err) {
			t.Errorf("Excluded page %s should not be built", p)
		}
	}
}

func TestBuildMissingTemplate(t *testing.T) {
	cfg := newTestSite(t)
	cfg.Template = filepath.Join(t.TempDir(), "missing.html")

	if _, err := NewBuilder(cfg, state.NewState()).Build(context.Background()); err == nil {
		t.Error("Expected error for missing template")
	}
}

func TestBuildWithoutStaticDir(t *testing.T) {
	cfg := newTestSite(t)
	cfg.StaticDir = filepath.Join(t.TempDir(), "nothing-here")

	result, err := NewBuilder(cfg, state.NewState()).Build(context.Background())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if result.AssetsCopied != 0 {
		t.Errorf("Expected no assets, got %d", result.AssetsCopied)
	}
}

func TestBuildOutputOverlap(t *testing.T) {
	cfg := newTestSite(t)
	cfg.OutputDir = filepath.Join(cfg.ContentDir, "out")

	_, err := NewBuilder(cfg, state.NewState()).Build(context.Background())
	if !errors.Is(err, ErrOutputOverlaps) {
		t.Errorf("Expected ErrOutputOverlaps, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(cfg.ContentDir, "index.md")); statErr != nil {
		t.Error("Content must not be touched when output overlaps it")
	}
}

func TestBuildCanceled(t *testing.T) {
	cfg := newTestSite(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewBuilder(cfg, state.NewState()).Build(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestBuildReportsProgress(t *testing.T) {
	cfg := newTestSite(t)

	var calls, lastTotal int
	builder := NewBuilder(cfg, state.NewState())
	builder.OnPage = func(source string, done, total int) {
		calls++
		lastTotal = total
	}

	if _, err := builder.Build(context.Background()); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if calls != 2 || lastTotal != 2 {
		t.Errorf("Expected 2 progress calls with total 2, got %d calls, total %d", calls, lastTotal)
	}
}

func TestChanged(t *testing.T) {
	cfg := newTestSite(t)
	st := state.NewState()
	builder := NewBuilder(cfg, st)

	changed, err := builder.Changed()
	if err != nil {
		t.Fatalf("Changed failed: %v", err)
	}
	if !changed {
		t.Error("Unbuilt site should report changes")
	}

	if _, err := builder.Build(context.Background()); err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	changed, err = builder.Changed()
	if err != nil {
		t.Fatalf("Changed failed: %v", err)
	}
	if changed {
		t.Error("Freshly built site should not report changes")
	}

	touchFuture(t, filepath.Join(cfg.StaticDir, "css", "style.css"), "body { margin: 1em; }")
	changed, err = builder.Changed()
	if err != nil {
		t.Fatalf("Changed failed: %v", err)
	}
	if !changed {
		t.Error("Changed static file should be reported")
	}

	if _, err := builder.Build(context.Background()); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if err := os.Remove(filepath.Join(cfg.ContentDir, "index.md")); err != nil {
		t.Fatalf("Failed to remove page: %v", err)
	}
	changed, err = builder.Changed()
	if err != nil {
		t.Fatalf("Changed failed: %v", err)
	}
	if !changed {
		t.Error("Deleted page should be reported")
	}
}

func TestScanDirectory(t *testing.T) {
	tmpDir := t.TempDir()

	testFiles := []string{
		"file1.md",
		"file2.md",
		"subdir/file3.md",
		"subdir/deep/file4.md",
		"drafts/file5.md",
		"image.png",
	}
	for _, f := range testFiles {
		writeFile(t, filepath.Join(tmpDir, f), "test")
	}

	tests := []struct {
		name     string
		ext      string
		excludes []string
		want     int
	}{
		{"markdown", ".md", nil, 5},
		{"all files", "", nil, 6},
		{"excluded dir", ".md", []string{"drafts/**"}, 4},
		{"excluded by name", ".md", []string{"**/file4.md"}, 4},
		{"no match", ".org", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := ScanDirectory(tmpDir, tt.ext, tt.excludes)
			if err != nil {
				t.Fatalf("ScanDirectory failed: %v", err)
			}
			if len(files) != tt.want {
				t.Errorf("Expected %d files, got %d: %v", tt.want, len(files), files)
			}
		})
	}

	if _, err := ScanDirectory(filepath.Join(tmpDir, "missing"), ".md", nil); err == nil {
		t.Error("Expected error for missing directory")
	}
}

func TestMatchExclude(t *testing.T) {
	patterns := []string{"drafts/**", "*.tmp.md"}

	if pattern, ok := MatchExclude("drafts/a/b.md", patterns); !ok || pattern != "drafts/**" {
		t.Errorf("Expected drafts/** to match, got %q %v", pattern, ok)
	}
	if pattern, ok := MatchExclude("notes.tmp.md", patterns); !ok || pattern != "*.tmp.md" {
		t.Errorf("Expected *.tmp.md to match, got %q %v", pattern, ok)
	}
	if _, ok := MatchExclude("blog/post.md", patterns); ok {
		t.Error("blog/post.md should not be excluded")
	}
}

func TestCopyDir(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "out")

	writeFile(t, filepath.Join(src, "a.txt"), "hello")
	writeFile(t, filepath.Join(src, "img", "b.txt"), "world!")

	var copied []string
	files, written, err := CopyDir(src, dst, func(from, to string) {
		copied = append(copied, from)
	})
	if err != nil {
		t.Fatalf("CopyDir failed: %v", err)
	}

	if files != 2 {
		t.Errorf("Expected 2 files, got %d", files)
	}
	if written != 11 {
		t.Errorf("Expected 11 bytes, got %d", written)
	}
	if len(copied) != 2 {
		t.Errorf("Expected callback per file, got %d", len(copied))
	}
	if got := readFile(t, filepath.Join(dst, "img", "b.txt")); got != "world!" {
		t.Errorf("Unexpected content %q", got)
	}
}

func TestCleanDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	writeFile(t, filepath.Join(dir, "nested", "old.html"), "old")

	if err := CleanDir(dir); err != nil {
		t.Fatalf("CleanDir failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("Directory should exist: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected empty directory, got %d entries", len(entries))
	}
}

func TestResultString(t *testing.T) {
	start := time.Now()
	result := &Result{
		PagesBuilt:   3,
		PagesSkipped: 1,
		AssetsCopied: 2,
		BytesWritten: 2048,
		Errors:       []error{errors.New("boom")},
		StartTime:    start,
		EndTime:      start.Add(1500 * time.Millisecond),
	}

	want := "Build complete: 3 pages built, 1 skipped, 2 assets copied, 2.0 kB written, 1 errors (took 1.5s)"
	if got := result.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
