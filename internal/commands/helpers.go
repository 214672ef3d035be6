package commands

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/gerunddev/mdsite/internal/config"
	"github.com/gerunddev/mdsite/internal/logger"
	"github.com/gerunddev/mdsite/internal/state"
	"github.com/gerunddev/mdsite/internal/styles"
)

// ParseLogFile reads the last N lines from the log file and extracts the
// most recent build
func ParseLogFile(logPath string, maxLines int) ([]string, time.Time, int) {
	content, err := os.ReadFile(logPath)
	if err != nil {
		return []string{"Unable to read log file"}, time.Time{}, 0
	}

	lines := strings.Split(strings.TrimRight(string(content), "\n"), "\n")

	startIdx := 0
	if len(lines) > maxLines {
		startIdx = len(lines) - maxLines
	}
	recentLines := lines[startIdx:]

	var lastBuild time.Time
	pagesBuilt := 0

	// Format: 2025-11-27 14:11:57 INFO build completed build_id=... pages_built=3
	for i := len(recentLines) - 1; i >= 0; i-- {
		line := recentLines[i]
		if !strings.Contains(line, "build completed") {
			continue
		}
		if len(line) > 19 {
			if t, err := time.ParseInLocation(time.DateTime, line[:19], time.Local); err == nil {
				lastBuild = t
			}
		}
		if idx := strings.Index(line, "pages_built="); idx != -1 {
			_, _ = fmt.Sscanf(line[idx:], "pages_built=%d", &pagesBuilt) //nolint:errcheck // best effort parsing
		}
		break
	}

	return recentLines, lastBuild, pagesBuilt
}

// flagValue returns the value following name in args
func flagValue(args []string, name string) (string, bool) {
	for i, arg := range args {
		if arg == name && i+1 < len(args) {
			return args[i+1], true
		}
		if v, ok := strings.CutPrefix(arg, name+"="); ok {
			return v, true
		}
	}
	return "", false
}

// hasFlag reports whether name appears in args
func hasFlag(args []string, name string) bool {
	for _, arg := range args {
		if arg == name {
			return true
		}
	}
	return false
}

// positional returns args that are neither flags nor flag values.
// valueFlags lists flags that consume the following argument.
func positional(args []string, valueFlags ...string) []string {
	var out []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if strings.HasPrefix(arg, "-") && arg != "-" {
			for _, f := range valueFlags {
				if arg == f {
					i++
					break
				}
			}
			continue
		}
		out = append(out, arg)
	}
	return out
}

// isTerminal reports whether stdout is an interactive terminal
func isTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// fail prints an error in the error style and exits
func fail(format string, args ...any) {
	fmt.Println(styles.ErrorStyle.Render("✗ " + fmt.Sprintf(format, args...)))
	os.Exit(1)
}

// loadConfig loads and validates the configuration, exiting on error
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fail("Error loading config: %v", err)
	}
	return cfg
}

// loadState loads the build manifest, exiting on error
func loadState() *state.State {
	st, err := state.Load(config.StateFilePath())
	if err != nil {
		fail("Error loading state: %v", err)
	}
	return st
}

// openLogger returns the configured file logger, also writing to extra
// when given. The returned cleanup is always safe to call.
func openLogger(cfg *config.Config, extra io.Writer) (*logger.Logger, func()) {
	if cfg.LogFile == "" {
		if extra != nil {
			return logger.New(extra), func() {}
		}
		return logger.Discard(), func() {}
	}

	if extra == nil {
		l, cleanup, err := logger.NewFileLogger(cfg.LogFile)
		if err != nil {
			return logger.Discard(), func() {}
		}
		return l, cleanup
	}

	f, err := logger.OpenLogFile(cfg.LogFile)
	if err != nil {
		return logger.New(extra), func() {}
	}
	return logger.NewMultiLogger(f, extra), func() { f.Close() }
}
