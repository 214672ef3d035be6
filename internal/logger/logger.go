package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

// Logger is a charm/log logger with one method per build event
type Logger struct {
	*log.Logger
}

func options(level log.Level) log.Options {
	return log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           level,
	}
}

// New returns an info-level logger writing to w
func New(w io.Writer) *Logger {
	return NewWithLevel(w, log.InfoLevel)
}

// NewWithLevel returns a logger writing to w that drops events below level
func NewWithLevel(w io.Writer, level log.Level) *Logger {
	return &Logger{Logger: log.NewWithOptions(w, options(level))}
}

// OpenLogFile opens path for appending, creating its directory if needed
func OpenLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
}

// NewFileLogger appends to the log file at path. The returned func closes it.
func NewFileLogger(path string) (*Logger, func(), error) {
	f, err := OpenLogFile(path)
	if err != nil {
		return nil, nil, err
	}
	return New(f), func() { _ = f.Close() }, nil
}

// NewMultiLogger fans every event out to all writers
func NewMultiLogger(writers ...io.Writer) *Logger {
	return New(io.MultiWriter(writers...))
}

// Discard drops everything
func Discard() *Logger {
	return New(io.Discard)
}

// BuildStarted logs the start of a site build
func (l *Logger) BuildStarted(buildID, contentDir, outputDir string) {
	l.Info("build started",
		"build_id", buildID,
		"content_dir", contentDir,
		"output_dir", outputDir)
}

// BuildCompleted logs the completion of a site build
func (l *Logger) BuildCompleted(buildID string, pagesBuilt, pagesSkipped, errors int, duration time.Duration) {
	l.Info("build completed",
		"build_id", buildID,
		"pages_built", pagesBuilt,
		"pages_skipped", pagesSkipped,
		"errors", errors,
		"duration", duration.Round(time.Millisecond))
}

// PageGenerated logs a successfully written page
func (l *Logger) PageGenerated(source, dest, template string) {
	l.Info("page generated",
		"source", source,
		"dest", dest,
		"template", template)
}

// PageSkipped logs a page left untouched by an incremental build
func (l *Logger) PageSkipped(source, reason string) {
	l.Debug("page skipped",
		"source", source,
		"reason", reason)
}

// AssetCopied logs a static file copy
func (l *Logger) AssetCopied(source, dest string) {
	l.Debug("asset copied",
		"source", source,
		"dest", dest)
}

// FileError logs an error for a specific file
func (l *Logger) FileError(file string, err error) {
	l.Error("file error",
		"file", file,
		"error", err)
}

// ConversionError logs a page that failed to render
func (l *Logger) ConversionError(source, dest string, err error) {
	l.Error("conversion failed",
		"source", source,
		"dest", dest,
		"error", err)
}

// StateError logs a state-related error
func (l *Logger) StateError(operation string, err error) {
	l.Error("state error",
		"operation", operation,
		"error", err)
}

// ConfigLoaded logs successful config loading
func (l *Logger) ConfigLoaded(contentDir, outputDir, basePath string, workers int) {
	l.Debug("config loaded",
		"content_dir", contentDir,
		"output_dir", outputDir,
		"base_path", basePath,
		"workers", workers)
}

// Excluded logs a content file matched by an exclude pattern
func (l *Logger) Excluded(file, pattern string) {
	l.Debug("file excluded",
		"file", file,
		"pattern", pattern)
}
