package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/gerunddev/mdsite/internal/site"
	"github.com/gerunddev/mdsite/internal/styles"
)

// WatchData holds watch loop status information
type WatchData struct {
	ContentDir string
	OutputDir  string
	Interval   time.Duration
	StartTime  time.Time
	Builds     int
	LastResult *site.Result
	LastError  error

	// Most recent build found in the log tail, possibly from an earlier run
	LoggedBuild time.Time
	LoggedPages int
	LogLines    []string
}

// WatchMsg is sent when watch data is refreshed
type WatchMsg struct {
	Data *WatchData
}

type watchModel struct {
	data *WatchData
}

// InitWatchModel creates a new watch dashboard model
func InitWatchModel() watchModel {
	return watchModel{}
}

func (m watchModel) Init() tea.Cmd {
	return nil
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case WatchMsg:
		m.data = msg.Data
		return m, nil
	}

	return m, nil
}

func (m watchModel) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("mdsite watch"))
	b.WriteString("\n\n")

	if m.data == nil {
		b.WriteString(styles.DimStyle.Render("Starting..."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(styles.LabelStyle.Render("Watching"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  Content:  %s\n", styles.PathStyle.Render(m.data.ContentDir)))
	b.WriteString(fmt.Sprintf("  Output:   %s\n", styles.PathStyle.Render(m.data.OutputDir)))
	b.WriteString(fmt.Sprintf("  Interval: %s\n", styles.ValueStyle.Render(m.data.Interval.String())))
	b.WriteString(fmt.Sprintf("  Uptime:   %s\n", styles.ValueStyle.Render(time.Since(m.data.StartTime).Round(time.Second).String())))
	b.WriteString("\n")

	b.WriteString(styles.LabelStyle.Render("Builds"))
	b.WriteString("\n")
	switch {
	case m.data.LastError != nil:
		b.WriteString(fmt.Sprintf("  %s\n", styles.ErrorStyle.Render("✗ "+m.data.LastError.Error())))
	case m.data.LastResult == nil && !m.data.LoggedBuild.IsZero():
		b.WriteString(fmt.Sprintf("  Previous build: %s (%d pages)\n",
			styles.ValueStyle.Render(humanize.Time(m.data.LoggedBuild)), m.data.LoggedPages))
	case m.data.LastResult == nil:
		b.WriteString(fmt.Sprintf("  %s\n", styles.DimStyle.Render("No build completed yet")))
	default:
		r := m.data.LastResult
		b.WriteString(fmt.Sprintf("  Builds run:  %s\n", styles.ValueStyle.Render(fmt.Sprintf("%d", m.data.Builds))))
		b.WriteString(fmt.Sprintf("  Last build:  %s\n", styles.ValueStyle.Render(humanize.Time(r.EndTime))))
		b.WriteString(fmt.Sprintf("  Pages built: %s\n", styles.ValueStyle.Render(fmt.Sprintf("%d", r.PagesBuilt))))
		if r.Failed() {
			b.WriteString(fmt.Sprintf("  %s\n", styles.ErrorStyle.Render(fmt.Sprintf("✗ %d page(s) failed", len(r.Errors)))))
		}
	}
	b.WriteString("\n")

	b.WriteString(styles.LabelStyle.Render("Recent Logs"))
	b.WriteString("\n")
	if len(m.data.LogLines) > 0 {
		for _, line := range m.data.LogLines {
			b.WriteString("  " + line + "\n")
		}
	} else {
		b.WriteString(styles.DimStyle.Render("  No logs available"))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	b.WriteString(styles.DimStyle.Render("q quit"))
	b.WriteString("\n")

	return b.String()
}
