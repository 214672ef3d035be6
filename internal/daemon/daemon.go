// Package daemon tracks a background watch process through a PID file.
package daemon

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/adrg/xdg"
)

// ErrNotRunning is returned when no live watch process is recorded
var ErrNotRunning = errors.New("watch is not running")

// PIDFile records the process ID of the watch loop
type PIDFile struct {
	Path string
}

// Default returns the PID file under the XDG state directory
func Default() *PIDFile {
	return &PIDFile{Path: filepath.Join(xdg.StateHome, "mdsite", "watch.pid")}
}

// Claim records the current process, failing if another live process
// already holds the file
func (f *PIDFile) Claim() error {
	if pid, _, err := f.Owner(); err == nil && pid != os.Getpid() {
		return fmt.Errorf("watch already running with PID %d", pid)
	}

	if err := os.MkdirAll(filepath.Dir(f.Path), 0755); err != nil {
		return fmt.Errorf("failed to create PID directory: %w", err)
	}
	if err := os.WriteFile(f.Path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0644); err != nil {
		return fmt.Errorf("failed to write PID file: %w", err)
	}
	return nil
}

// Release removes the PID file. A missing file is not an error.
func (f *PIDFile) Release() error {
	if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove PID file: %w", err)
	}
	return nil
}

// Owner returns the live process recorded in the file and when it was
// recorded. A file naming a dead process is removed and reported as
// ErrNotRunning.
func (f *PIDFile) Owner() (int, time.Time, error) {
	info, err := os.Stat(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, time.Time{}, ErrNotRunning
	}
	if err != nil {
		return 0, time.Time{}, err
	}

	content, err := os.ReadFile(f.Path)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to read PID file: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(content)))
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("invalid PID in file: %w", err)
	}

	if !alive(pid) {
		_ = f.Release()
		return 0, time.Time{}, ErrNotRunning
	}
	return pid, info.ModTime(), nil
}

// Terminate sends SIGTERM to the recorded process
func (f *PIDFile) Terminate() error {
	pid, _, err := f.Owner()
	if err != nil {
		return err
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process: %w", err)
	}
	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to send SIGTERM: %w", err)
	}
	return nil
}

// WaitGone polls until the recorded process has exited or timeout passes
func (f *PIDFile) WaitGone(timeout, every time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if _, _, err := f.Owner(); errors.Is(err, ErrNotRunning) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		time.Sleep(every)
	}
}

// alive probes pid with signal 0
func alive(pid int) bool {
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}

// Detach re-executes the current binary with args in the background
func Detach(args []string) error {
	executable, err := os.Executable()
	if err != nil {
		return fmt.Errorf("failed to get executable path: %w", err)
	}

	cmd := exec.Command(executable, args...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = nil, nil, nil

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start watch: %w", err)
	}
	if err := cmd.Process.Release(); err != nil {
		return fmt.Errorf("failed to release watch process: %w", err)
	}
	return nil
}
