package site

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// CleanDir removes dir with everything in it and recreates it empty
func CleanDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	return nil
}

// CopyDir recursively copies src into dst. onCopy, if set, is called for
// every copied file. Returns the number of files and bytes copied.
func CopyDir(src, dst string, onCopy func(src, dst string)) (int, int64, error) {
	var files int
	var written int64

	err := filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if info.IsDir() {
			return os.MkdirAll(target, 0755)
		}

		n, err := copyFile(path, target, info.Mode().Perm())
		if err != nil {
			return err
		}
		files++
		written += n
		if onCopy != nil {
			onCopy(path, target)
		}
		return nil
	})
	if err != nil {
		return files, written, fmt.Errorf("failed to copy %s: %w", src, err)
	}

	return files, written, nil
}

func copyFile(src, dst string, perm os.FileMode) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm)
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return n, err
}

// within reports whether path is dir itself or inside it
func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
