package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gerunddev/mdsite/internal/config"
	"github.com/gerunddev/mdsite/internal/site"
	"github.com/gerunddev/mdsite/internal/styles"
	"github.com/gerunddev/mdsite/internal/tui"
)

// Build generates the site once
func Build(args []string) {
	dryRun := hasFlag(args, "--dry-run")
	incremental := hasFlag(args, "--incremental")
	useTUI := !hasFlag(args, "--no-tui") && isTerminal()

	cfg := loadConfig()
	applyBasePath(cfg, args)
	if err := cfg.Validate(); err != nil {
		fail("Invalid configuration: %v", err)
	}
	st := loadState()

	if useTUI {
		title := "mdsite build"
		if dryRun {
			title += " (DRY RUN)"
		}
		fmt.Println(styles.TitleStyle.Render(title))
		fmt.Printf("%s → %s\n", styles.DimStyle.Render(cfg.ContentDir), styles.DimStyle.Render(cfg.OutputDir))
		if dryRun {
			fmt.Println(styles.DimStyle.Render("(dry run - no files will be written)"))
		}
	}

	// Without the TUI, log lines are the progress display.
	var extra io.Writer
	if !useTUI {
		extra = os.Stderr
	}
	log, cleanup := openLogger(cfg, extra)
	defer cleanup()
	log.ConfigLoaded(cfg.ContentDir, cfg.OutputDir, cfg.BasePath, cfg.Workers)

	builder := site.NewBuilder(cfg, st)
	builder.SetLogger(log)
	builder.DryRun = dryRun
	builder.Incremental = incremental

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var result *site.Result
	var err error
	if useTUI {
		result, err = buildWithTUI(ctx, builder)
	} else {
		result, err = builder.Build(ctx)
		if err == nil {
			fmt.Println(result.String())
		}
	}

	if err != nil {
		if !useTUI {
			fmt.Println(styles.ErrorStyle.Render("✗ Build failed: " + err.Error()))
		}
		os.Exit(1)
	}

	if !dryRun {
		if err := st.Save(config.StateFilePath()); err != nil {
			log.StateError("save", err)
			fail("Error saving state: %v", err)
		}
	}

	if result.Failed() {
		os.Exit(1)
	}
}

// buildWithTUI runs the build behind the progress spinner. Quitting the
// TUI cancels the build.
func buildWithTUI(ctx context.Context, builder *site.Builder) (*site.Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(tui.InitBuildModel(), tea.WithInput(os.Stdin), tea.WithContext(ctx))
	builder.OnPage = func(source string, done, total int) {
		p.Send(tui.ProgressMsg{Source: source, Done: done, Total: total})
	}

	type outcome struct {
		result *site.Result
		err    error
	}
	doneCh := make(chan outcome, 1)

	go func() {
		result, err := builder.Build(ctx)
		doneCh <- outcome{result, err}
		p.Send(tui.BuildMsg{Result: result, Err: err})
	}()

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		cancel()
		<-doneCh
		return nil, err
	}

	cancel()
	out := <-doneCh
	return out.result, out.err
}

// applyBasePath overrides the configured base path from --base-path or a
// bare positional argument
func applyBasePath(cfg *config.Config, args []string) {
	if v, ok := flagValue(args, "--base-path"); ok {
		cfg.BasePath = config.NormalizeBasePath(v)
		return
	}
	if rest := positional(args, "--base-path", "--interval"); len(rest) > 0 {
		cfg.BasePath = config.NormalizeBasePath(rest[0])
	}
}
