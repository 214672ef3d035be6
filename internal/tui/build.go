package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/gerunddev/mdsite/internal/site"
	"github.com/gerunddev/mdsite/internal/styles"
)

// maxErrorLines caps the per-page errors listed after a build
const maxErrorLines = 5

// buildModel is the Bubble Tea model for the build progress display
type buildModel struct {
	spinner  spinner.Model
	status   string
	done     int
	total    int
	complete bool
	result   *site.Result
	err      error
}

// ProgressMsg is sent after each page is processed
type ProgressMsg struct {
	Source string
	Done   int
	Total  int
}

// BuildMsg is sent when the build completes
type BuildMsg struct {
	Result *site.Result
	Err    error
}

// InitBuildModel creates a new build progress model
func InitBuildModel() buildModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SpinnerStyle

	return buildModel{
		spinner: s,
		status:  "Scanning content...",
	}
}

func (m buildModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m buildModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}

	case ProgressMsg:
		m.done = msg.Done
		m.total = msg.Total
		m.status = fmt.Sprintf("Rendering pages (%d/%d) %s", msg.Done, msg.Total, styles.DimStyle.Render(msg.Source))
		return m, nil

	case BuildMsg:
		m.complete = true
		m.result = msg.Result
		m.err = msg.Err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m buildModel) View() string {
	if !m.complete {
		return fmt.Sprintf("\n%s %s\n\n", m.spinner.View(), m.status)
	}

	if m.err != nil {
		return styles.ErrorStyle.Render("✗ Build failed: "+m.err.Error()) + "\n"
	}

	return RenderResult(m.result)
}

// RenderResult formats a finished build for the terminal
func RenderResult(r *site.Result) string {
	var b strings.Builder

	took := styles.DimStyle.Render(fmt.Sprintf("Completed in %v", r.EndTime.Sub(r.StartTime).Round(time.Millisecond)))

	if r.PagesBuilt == 0 && r.PagesSkipped > 0 && !r.Failed() {
		b.WriteString(styles.SuccessStyle.Render("✓ Nothing to rebuild"))
		b.WriteString("\n" + took + "\n")
		return b.String()
	}

	verb := "Built"
	if r.DryRun {
		verb = "Would build"
	}
	b.WriteString(styles.SuccessStyle.Render(fmt.Sprintf("✓ %s %d page(s)", verb, r.PagesBuilt)))
	if r.PagesSkipped > 0 {
		b.WriteString(", " + styles.WarningStyle.Render(fmt.Sprintf("%d unchanged", r.PagesSkipped)))
	}
	if r.AssetsCopied > 0 {
		b.WriteString(", " + fmt.Sprintf("%d asset(s)", r.AssetsCopied))
	}
	if r.Failed() {
		b.WriteString(", " + styles.ErrorStyle.Render(fmt.Sprintf("%d error(s)", len(r.Errors))))
	}
	b.WriteString("\n")

	for i, err := range r.Errors {
		if i == maxErrorLines {
			b.WriteString(styles.DimStyle.Render(fmt.Sprintf("  … and %d more", len(r.Errors)-maxErrorLines)) + "\n")
			break
		}
		b.WriteString(styles.ErrorStyle.Render("  ✗ "+err.Error()) + "\n")
	}

	if len(r.Removed) > 0 {
		b.WriteString(styles.DimStyle.Render(fmt.Sprintf("Removed %d stale page(s)", len(r.Removed))) + "\n")
	}

	b.WriteString(took + "\n")
	return b.String()
}
