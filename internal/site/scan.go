package site

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// ScanDirectory scans a directory for files with the given extension.
// Paths whose slash-separated location relative to dir matches one of
// excludePatterns are skipped. An empty ext matches every file.
func ScanDirectory(dir string, ext string, excludePatterns []string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		if _, excluded := MatchExclude(filepath.ToSlash(rel), excludePatterns); excluded {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if !info.IsDir() && (ext == "" || filepath.Ext(path) == ext) {
			files = append(files, path)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// MatchExclude returns the first pattern matching rel
func MatchExclude(rel string, patterns []string) (string, bool) {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return pattern, true
		}
	}
	return "", false
}
