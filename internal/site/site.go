// Package site builds a static site from a content directory of markdown
// pages, a static asset directory and a single HTML template.
package site

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/gerunddev/mdsite/internal/config"
	"github.com/gerunddev/mdsite/internal/logger"
	"github.com/gerunddev/mdsite/internal/page"
	"github.com/gerunddev/mdsite/internal/state"
)

// ErrOutputOverlaps is returned when the output directory would swallow
// the content or static directory.
var ErrOutputOverlaps = errors.New("output directory overlaps source directory")

// Builder renders the content directory into the output directory
type Builder struct {
	config *config.Config
	state  *state.State
	log    *logger.Logger

	// DryRun renders pages without writing anything or touching the manifest.
	DryRun bool
	// Incremental skips unchanged pages and never cleans the output directory.
	Incremental bool
	// OnPage is called after each page is processed.
	OnPage func(source string, done, total int)
}

// NewBuilder creates a new builder instance
func NewBuilder(cfg *config.Config, st *state.State) *Builder {
	return &Builder{
		config: cfg,
		state:  st,
		log:    logger.Discard(),
	}
}

// SetLogger sets the logger for the builder
func (b *Builder) SetLogger(l *logger.Logger) {
	b.log = l
}

// Result represents the result of a build
type Result struct {
	BuildID      string
	PagesBuilt   int
	PagesSkipped int
	AssetsCopied int
	BytesWritten int64
	Removed      []string
	Errors       []error
	DryRun       bool
	StartTime    time.Time
	EndTime      time.Time
}

type pageJob struct {
	source string
	dest   string
}

type pageResult struct {
	source  string
	skipped bool
	bytes   int64
	err     error
}

// Build runs one full or incremental build. Per-page failures are collected
// in Result.Errors; the returned error is reserved for failures that stop
// the build as a whole.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	result := &Result{
		BuildID:   uuid.New().String(),
		DryRun:    b.DryRun,
		StartTime: time.Now(),
	}
	cfg := b.config

	b.log.BuildStarted(result.BuildID, cfg.ContentDir, cfg.OutputDir)

	if err := b.checkOutputDir(); err != nil {
		return nil, err
	}

	tmpl, err := os.ReadFile(cfg.Template)
	if err != nil {
		return nil, fmt.Errorf("failed to read template: %w", err)
	}

	// A changed template invalidates every page.
	templateChanged := true
	if b.Incremental {
		templateChanged, err = b.state.HasChanged(cfg.Template)
		if err != nil {
			return nil, fmt.Errorf("failed to check template: %w", err)
		}
	}

	if cfg.Clean && !b.Incremental && !b.DryRun {
		if err := CleanDir(cfg.OutputDir); err != nil {
			return nil, err
		}
	}

	tracked := []string{cfg.Template}

	assets, err := b.copyStatic(result)
	if err != nil {
		return nil, err
	}
	tracked = append(tracked, assets...)

	sources, err := b.ScanContent()
	if err != nil {
		return nil, fmt.Errorf("failed to scan content: %w", err)
	}
	tracked = append(tracked, sources...)

	jobs := make([]pageJob, 0, len(sources))
	for _, src := range sources {
		dest, err := page.OutputPath(cfg.ContentDir, cfg.OutputDir, src)
		if err != nil {
			result.Errors = append(result.Errors, err)
			continue
		}
		jobs = append(jobs, pageJob{source: src, dest: dest})
	}

	if err := b.renderPages(ctx, jobs, string(tmpl), templateChanged, result); err != nil {
		return nil, err
	}

	if !b.DryRun {
		if err := b.state.Update(cfg.Template, "", ""); err != nil {
			b.log.StateError("update template", err)
		}
		result.Removed = b.prune(tracked)
	}

	result.EndTime = time.Now()
	if !b.DryRun {
		b.state.RecordBuild(result.BuildID, result.EndTime)
	}

	b.log.BuildCompleted(result.BuildID, result.PagesBuilt, result.PagesSkipped,
		len(result.Errors), result.EndTime.Sub(result.StartTime))

	return result, nil
}

// ScanContent lists the markdown pages of the content directory, skipping
// files matched by the configured exclude patterns
func (b *Builder) ScanContent() ([]string, error) {
	var files []string
	all, err := ScanDirectory(b.config.ContentDir, ".md", nil)
	if err != nil {
		return nil, err
	}
	for _, f := range all {
		rel, err := filepath.Rel(b.config.ContentDir, f)
		if err != nil {
			return nil, err
		}
		if pattern, ok := MatchExclude(filepath.ToSlash(rel), b.config.ExcludePatterns); ok {
			b.log.Excluded(f, pattern)
			continue
		}
		files = append(files, f)
	}
	return files, nil
}

// Changed reports whether any template, static or content file changed
// since the last build, including files added or removed
func (b *Builder) Changed() (bool, error) {
	cfg := b.config

	paths := []string{cfg.Template}
	if _, err := os.Stat(cfg.StaticDir); err == nil {
		assets, err := ScanDirectory(cfg.StaticDir, "", nil)
		if err != nil {
			return false, err
		}
		paths = append(paths, assets...)
	}
	sources, err := b.ScanContent()
	if err != nil {
		return false, err
	}
	paths = append(paths, sources...)

	seen := make(map[string]bool, len(paths))
	for _, p := range paths {
		seen[p] = true
		changed, err := b.state.HasChanged(p)
		if err != nil {
			return false, err
		}
		if changed {
			return true, nil
		}
	}

	for _, p := range b.state.Paths() {
		if !seen[p] {
			return true, nil
		}
	}
	return false, nil
}

func (b *Builder) checkOutputDir() error {
	out, err := filepath.Abs(b.config.OutputDir)
	if err != nil {
		return err
	}
	for _, dir := range []string{b.config.ContentDir, b.config.StaticDir} {
		if dir == "" {
			continue
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			return err
		}
		if within(abs, out) || within(out, abs) {
			return fmt.Errorf("%w: %s and %s", ErrOutputOverlaps, b.config.OutputDir, dir)
		}
	}
	return nil
}

// copyStatic copies the static directory into the output directory and
// returns the copied source files. A missing static directory is not an
// error.
func (b *Builder) copyStatic(result *Result) ([]string, error) {
	cfg := b.config
	if _, err := os.Stat(cfg.StaticDir); os.IsNotExist(err) {
		b.log.Debug("no static directory", "dir", cfg.StaticDir)
		return nil, nil
	}

	if b.DryRun {
		assets, err := ScanDirectory(cfg.StaticDir, "", nil)
		if err != nil {
			return nil, fmt.Errorf("failed to scan static files: %w", err)
		}
		return assets, nil
	}

	var assets []string
	n, written, err := CopyDir(cfg.StaticDir, cfg.OutputDir, func(src, dst string) {
		assets = append(assets, src)
		b.log.AssetCopied(src, dst)
		if err := b.state.Update(src, "", ""); err != nil {
			b.log.StateError("update asset", err)
		}
	})
	result.AssetsCopied = n
	result.BytesWritten += written
	if err != nil {
		return nil, err
	}
	return assets, nil
}

func (b *Builder) renderPages(ctx context.Context, jobs []pageJob, tmpl string, templateChanged bool, result *Result) error {
	workers := b.config.Workers
	if workers < 1 {
		workers = 1
	}

	jobCh := make(chan pageJob)
	resCh := make(chan pageResult)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				resCh <- b.renderPage(job, tmpl, templateChanged)
			}
		}()
	}

	go func() {
		defer close(jobCh)
		for _, job := range jobs {
			select {
			case jobCh <- job:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resCh)
	}()

	done := 0
	for res := range resCh {
		done++
		switch {
		case res.err != nil:
			result.Errors = append(result.Errors, res.err)
		case res.skipped:
			result.PagesSkipped++
		default:
			result.PagesBuilt++
			result.BytesWritten += res.bytes
		}
		if b.OnPage != nil {
			b.OnPage(res.source, done, len(jobs))
		}
	}

	return ctx.Err()
}

func (b *Builder) renderPage(job pageJob, tmpl string, templateChanged bool) pageResult {
	res := pageResult{source: job.source}

	if b.Incremental && !templateChanged {
		changed, err := b.state.HasChanged(job.source)
		if err != nil {
			b.log.FileError(job.source, err)
			res.err = fmt.Errorf("%s: %w", job.source, err)
			return res
		}
		if fs, ok := b.state.Get(job.source); !changed && ok && fs.Output != "" {
			if _, err := os.Stat(job.dest); err == nil {
				b.log.PageSkipped(job.source, "unchanged")
				res.skipped = true
				return res
			}
		}
	}

	markdown, err := os.ReadFile(job.source)
	if err != nil {
		b.log.FileError(job.source, err)
		res.err = fmt.Errorf("%s: %w", job.source, err)
		return res
	}

	p, err := page.Render(string(markdown), tmpl, b.config.BasePath)
	if err != nil {
		b.log.ConversionError(job.source, job.dest, err)
		res.err = fmt.Errorf("%s: %w", job.source, err)
		// Remember the broken source so watch mode waits for the next edit.
		if !b.DryRun {
			if err := b.state.Update(job.source, "", ""); err != nil {
				b.log.StateError("update page", err)
			}
		}
		return res
	}
	res.bytes = int64(len(p.HTML))

	if b.DryRun {
		b.log.Info("would generate page", "source", job.source, "dest", job.dest)
		return res
	}

	if err := page.Write(job.dest, p); err != nil {
		b.log.ConversionError(job.source, job.dest, err)
		res.err = fmt.Errorf("%s: %w", job.source, err)
		return res
	}
	b.log.PageGenerated(job.source, job.dest, b.config.Template)

	if err := b.state.Update(job.source, job.dest, p.Title); err != nil {
		b.log.StateError("update page", err)
	}
	return res
}

// prune drops manifest entries for files that no longer exist and removes
// the outputs generated or copied from them
func (b *Builder) prune(tracked []string) []string {
	recorded := make(map[string]string)
	for _, entry := range b.state.Pages() {
		recorded[entry.Source] = entry.Output
	}

	removed := b.state.Prune(tracked)
	for _, src := range removed {
		out := recorded[src]
		if out == "" {
			out = b.outputOf(src)
		}
		if out == "" {
			continue
		}
		if err := os.Remove(out); err != nil {
			if !os.IsNotExist(err) {
				b.log.FileError(out, err)
			}
			continue
		}
		b.log.Info("output removed", "source", src, "dest", out)
	}
	return removed
}

// outputOf maps a source to the file the build writes for it. Pages that
// failed to render have no recorded output, so it is derived from the path.
func (b *Builder) outputOf(src string) string {
	cfg := b.config
	switch {
	case filepath.Ext(src) == ".md" && within(src, cfg.ContentDir):
		dest, err := page.OutputPath(cfg.ContentDir, cfg.OutputDir, src)
		if err != nil {
			return ""
		}
		return dest
	case cfg.StaticDir != "" && within(src, cfg.StaticDir):
		rel, err := filepath.Rel(cfg.StaticDir, src)
		if err != nil || rel == "." {
			return ""
		}
		return filepath.Join(cfg.OutputDir, rel)
	}
	return ""
}

// Failed reports whether any page failed to build
func (r *Result) Failed() bool {
	return len(r.Errors) > 0
}

// String returns a human-readable summary of the build result
func (r *Result) String() string {
	duration := r.EndTime.Sub(r.StartTime).Round(time.Millisecond)
	verb := "Build complete"
	if r.DryRun {
		verb = "Dry run complete"
	}
	return fmt.Sprintf(
		"%s: %d pages built, %d skipped, %d assets copied, %s written, %d errors (took %v)",
		verb,
		r.PagesBuilt,
		r.PagesSkipped,
		r.AssetsCopied,
		humanize.Bytes(uint64(r.BytesWritten)),
		len(r.Errors),
		duration,
	)
}
