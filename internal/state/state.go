package state

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// FileState represents the state of a single input file. Output and Title
// are only set for markdown pages.
type FileState struct {
	MTime  int64  `json:"mtime"`
	Hash   string `json:"hash"`
	Output string `json:"output,omitempty"`
	Title  string `json:"title,omitempty"`
}

// State is the build manifest
type State struct {
	LastBuildID string                `json:"last_build_id,omitempty"`
	LastBuild   time.Time             `json:"last_build,omitempty"`
	Files       map[string]*FileState `json:"files"`

	mu sync.Mutex
}

// PageEntry is a page recorded in the manifest
type PageEntry struct {
	Source string
	FileState
}

// NewState creates a new empty state
func NewState() *State {
	return &State{
		Files: make(map[string]*FileState),
	}
}

// Load reads state from the state file
func Load(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewState(), nil
		}
		return nil, err
	}

	state := NewState()
	if err := json.Unmarshal(data, state); err != nil {
		return nil, err
	}

	if state.Files == nil {
		state.Files = make(map[string]*FileState)
	}

	return state, nil
}

// Save writes state to the state file
func (s *State) Save(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}

	return nil
}

// ComputeHash computes SHA256 hash of a file
func ComputeHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}

	return fmt.Sprintf("sha256:%x", h.Sum(nil)), nil
}

// HasChanged checks if a file has changed since the last build
// Uses hybrid mtime + hash approach
func (s *State) HasChanged(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}

	mtime := info.ModTime().Unix()

	s.mu.Lock()
	fileState, exists := s.Files[path]
	s.mu.Unlock()
	if !exists {
		// New file
		return true, nil
	}

	// Fast path: check mtime first
	if mtime == fileState.MTime {
		return false, nil
	}

	// mtime changed, compute hash to check for actual content changes
	hash, err := ComputeHash(path)
	if err != nil {
		return false, err
	}

	return hash != fileState.Hash, nil
}

// Update records the current mtime and hash of a file. output and title
// may be empty for non-page inputs.
func (s *State) Update(path, output, title string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	hash, err := ComputeHash(path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.Files[path] = &FileState{
		MTime:  info.ModTime().Unix(),
		Hash:   hash,
		Output: output,
		Title:  title,
	}

	return nil
}

// Get returns the recorded state of a file
func (s *State) Get(path string) (*FileState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fs, ok := s.Files[path]
	return fs, ok
}

// Forget drops a file from the manifest
func (s *State) Forget(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Files, path)
}

// Prune drops every file not in existing and returns the dropped paths
func (s *State) Prune(existing []string) []string {
	keep := make(map[string]bool, len(existing))
	for _, p := range existing {
		keep[p] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []string
	for p := range s.Files {
		if !keep[p] {
			removed = append(removed, p)
			delete(s.Files, p)
		}
	}
	sort.Strings(removed)
	return removed
}

// RecordBuild stores the id and time of a finished build
func (s *State) RecordBuild(id string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastBuildID = id
	s.LastBuild = at
}

// Pages returns the recorded pages sorted by source path
func (s *State) Pages() []PageEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pages []PageEntry
	for src, fs := range s.Files {
		if fs.Output == "" {
			continue
		}
		pages = append(pages, PageEntry{Source: src, FileState: *fs})
	}
	sort.Slice(pages, func(i, j int) bool {
		return pages[i].Source < pages[j].Source
	})
	return pages
}

// Paths returns every tracked file, sorted
func (s *State) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	paths := make([]string, 0, len(s.Files))
	for p := range s.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// GetMTime returns the modification time for a file
func (s *State) GetMTime(path string) time.Time {
	if fileState, exists := s.Get(path); exists {
		return time.Unix(fileState.MTime, 0)
	}
	return time.Time{}
}
