package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gerunddev/mdsite/internal/config"
	"github.com/gerunddev/mdsite/internal/daemon"
	"github.com/gerunddev/mdsite/internal/logger"
	"github.com/gerunddev/mdsite/internal/site"
	"github.com/gerunddev/mdsite/internal/state"
	"github.com/gerunddev/mdsite/internal/styles"
	"github.com/gerunddev/mdsite/internal/tui"
)

// Watch rebuilds the site whenever a content, static or template file
// changes, showing a live dashboard
func Watch(args []string) {
	if hasFlag(args, "--detach") {
		startDetached(args)
		return
	}

	cfg := loadConfig()
	applyBasePath(cfg, args)
	if v, ok := flagValue(args, "--interval"); ok {
		interval, err := time.ParseDuration(v)
		if err != nil {
			fail("Invalid interval: %v", err)
		}
		cfg.Interval = interval
	}
	if err := cfg.Validate(); err != nil {
		fail("Invalid configuration: %v", err)
	}
	st := loadState()
	useTUI := !hasFlag(args, "--no-tui") && isTerminal()

	var log *logger.Logger
	var cleanup func()
	if useTUI {
		log, cleanup = openLogger(cfg, nil)
	} else {
		log, cleanup = openLogger(cfg, os.Stderr)
	}
	defer cleanup()

	pidFile := daemon.Default()
	if err := pidFile.Claim(); err != nil {
		fail("%v", err)
	}
	defer func() {
		if err := pidFile.Release(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to remove PID file on shutdown: %v\n", err)
		}
	}()

	log.Info("watch started",
		"pid", os.Getpid(),
		"interval", cfg.Interval)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := newWatcher(cfg, st, log)
	doneCh := make(chan struct{})
	go func() {
		defer close(doneCh)
		w.run(ctx)
	}()

	if !useTUI {
		<-ctx.Done()
		<-doneCh
		log.Info("watch stopped")
		return
	}

	p := tea.NewProgram(tui.InitWatchModel(), tea.WithInput(os.Stdin), tea.WithContext(ctx))

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			p.Send(tui.WatchMsg{Data: w.snapshot()})
			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()

	_, err := p.Run()
	cancel()
	<-doneCh
	log.Info("watch stopped")

	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		fmt.Println(styles.ErrorStyle.Render("✗ Error: " + err.Error()))
		_ = pidFile.Release()
		os.Exit(1)
	}
}

// startDetached re-runs watch in the background without the TUI
func startDetached(args []string) {
	detached := []string{"watch", "--no-tui"}
	for _, arg := range args {
		if arg != "--detach" && arg != "--no-tui" {
			detached = append(detached, arg)
		}
	}

	pidFile := daemon.Default()
	if pid, _, err := pidFile.Owner(); err == nil {
		fail("Watch already running with PID %d", pid)
	}

	if err := daemon.Detach(detached); err != nil {
		fail("Failed to start watch: %v", err)
	}

	// Give it a moment to write its PID file
	for i := 0; i < 10; i++ {
		time.Sleep(200 * time.Millisecond)
		if pid, _, err := pidFile.Owner(); err == nil {
			fmt.Println(styles.SuccessStyle.Render(fmt.Sprintf("✓ Watch started with PID %d", pid)))
			fmt.Println(styles.DimStyle.Render("  Run 'mdsite stop' to stop it"))
			return
		}
	}
	fail("Watch failed to start")
}

// Stop stops a detached watch process
func Stop() {
	pidFile := daemon.Default()
	pid, _, err := pidFile.Owner()
	if errors.Is(err, daemon.ErrNotRunning) {
		fmt.Println(styles.DimStyle.Render("Watch is not running"))
		return
	}
	if err != nil {
		fail("Error reading PID file: %v", err)
	}

	fmt.Printf("Stopping watch (PID %d)...\n", pid)
	if err := pidFile.Terminate(); err != nil {
		fail("Failed to stop watch: %v", err)
	}

	if !pidFile.WaitGone(5*time.Second, 250*time.Millisecond) {
		fail("Watch did not stop gracefully")
	}
	fmt.Println(styles.SuccessStyle.Render("✓ Watch stopped"))
}

// watcher owns the rebuild loop and the data shown on the dashboard
type watcher struct {
	cfg     *config.Config
	st      *state.State
	log     *logger.Logger
	builder *site.Builder

	mu   sync.Mutex
	data tui.WatchData
}

func newWatcher(cfg *config.Config, st *state.State, log *logger.Logger) *watcher {
	builder := site.NewBuilder(cfg, st)
	builder.SetLogger(log)

	return &watcher{
		cfg:     cfg,
		st:      st,
		log:     log,
		builder: builder,
		data: tui.WatchData{
			ContentDir: cfg.ContentDir,
			OutputDir:  cfg.OutputDir,
			Interval:   cfg.Interval,
			StartTime:  time.Now(),
		},
	}
}

// run performs a full build, then polls every interval and rebuilds
// incrementally until ctx is done
func (w *watcher) run(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	w.rebuild(ctx)
	w.builder.Incremental = true

	for {
		select {
		case <-ticker.C:
			changed, err := w.builder.Changed()
			if err != nil {
				w.log.Error("change check failed", "error", err)
				w.record(nil, err)
				continue
			}
			if changed {
				w.rebuild(ctx)
			}

		case <-ctx.Done():
			if err := w.st.Save(config.StateFilePath()); err != nil {
				w.log.StateError("save on shutdown", err)
			}
			return
		}
	}
}

func (w *watcher) rebuild(ctx context.Context) {
	result, err := w.builder.Build(ctx)
	if err != nil {
		if ctx.Err() == nil {
			w.log.Error("build failed", "error", err)
		}
		w.record(nil, err)
		return
	}
	w.record(result, nil)

	if err := w.st.Save(config.StateFilePath()); err != nil {
		w.log.StateError("save", err)
	}
}

func (w *watcher) record(result *site.Result, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if result != nil {
		w.data.Builds++
		w.data.LastResult = result
	}
	w.data.LastError = err
}

// snapshot copies the dashboard data and refreshes the log tail
func (w *watcher) snapshot() *tui.WatchData {
	w.mu.Lock()
	data := w.data
	w.mu.Unlock()

	if w.cfg.LogFile != "" {
		data.LogLines, data.LoggedBuild, data.LoggedPages = ParseLogFile(w.cfg.LogFile, 10)
	}
	return &data
}
