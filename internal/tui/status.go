package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/gerunddev/mdsite/internal/styles"
)

// PageStatus is the state of a content page relative to the last build
type PageStatus string

const (
	StatusBuilt   PageStatus = "Built"
	StatusChanged PageStatus = "Changed"
	StatusNew     PageStatus = "New"
	StatusFailed  PageStatus = "Failed"
)

// PageRow is one content page in the status table
type PageRow struct {
	Source string
	Title  string
	Output string
	Status PageStatus
}

// StatusData holds all the information for the status display
type StatusData struct {
	ContentDir  string
	OutputDir   string
	Template    string
	BasePath    string
	LastBuildID string
	LastBuild   time.Time
	OutputBytes int64
	Pages       []PageRow
}

// Pending counts pages that the next incremental build would render
func (d *StatusData) Pending() int {
	n := 0
	for _, p := range d.Pages {
		if p.Status != StatusBuilt {
			n++
		}
	}
	return n
}

// StatusMsg is sent when status data is ready
type StatusMsg struct {
	Data *StatusData
	Err  error
}

type statusModel struct {
	spinner  spinner.Model
	data     *StatusData
	table    table.Model
	err      error
	scanning bool
}

// InitStatusModel creates a new status display model
func InitStatusModel() statusModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SpinnerStyle

	columns := []table.Column{
		{Title: "Page", Width: 32},
		{Title: "Title", Width: 28},
		{Title: "Status", Width: 10},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	t.SetStyles(styles.TableStyles())

	return statusModel{
		spinner:  s,
		scanning: true,
		table:    t,
	}
}

func (m statusModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m statusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		case "up", "k", "down", "j", "pgup", "pgdown", "home", "end":
			m.table, cmd = m.table.Update(msg)
			return m, cmd
		}

	case StatusMsg:
		m.scanning = false
		m.data = msg.Data
		m.err = msg.Err

		if m.data != nil {
			m.table.SetRows(pageRows(m.data))
		}
		return m, nil

	case spinner.TickMsg:
		if m.scanning {
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}

	return m, nil
}

// pageRows lists pages needing a build first
func pageRows(data *StatusData) []table.Row {
	rows := make([]table.Row, 0, len(data.Pages))
	for _, pass := range []bool{false, true} {
		for _, p := range data.Pages {
			if (p.Status == StatusBuilt) != pass {
				continue
			}
			rel, err := filepath.Rel(data.ContentDir, p.Source)
			if err != nil {
				rel = p.Source
			}
			rows = append(rows, table.Row{rel, p.Title, string(p.Status)})
		}
	}
	return rows
}

func (m statusModel) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("mdsite status"))
	b.WriteString("\n\n")

	if m.err != nil {
		return styles.ErrorStyle.Render("✗ Error: "+m.err.Error()) + "\n"
	}

	if m.scanning {
		b.WriteString(fmt.Sprintf("%s Scanning content...\n", m.spinner.View()))
		return b.String()
	}

	if m.data == nil {
		return b.String()
	}

	b.WriteString(RenderStatusSummary(m.data))

	if len(m.data.Pages) > 0 {
		b.WriteString(styles.LabelStyle.Render("Pages"))
		b.WriteString("\n")
		b.WriteString(styles.TableBoxStyle.Render(m.table.View()))
		b.WriteString("\n\n")
		b.WriteString(styles.DimStyle.Render("↑/k up • ↓/j down • q/ctrl+c quit"))
	} else {
		b.WriteString(styles.DimStyle.Render("q/ctrl+c quit"))
	}
	b.WriteString("\n")

	return b.String()
}

// RenderStatusSummary formats everything but the page table, for use
// without a terminal
func RenderStatusSummary(data *StatusData) string {
	var b strings.Builder

	b.WriteString(styles.LabelStyle.Render("Configuration"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  Content directory: %s\n", styles.PathStyle.Render(data.ContentDir)))
	b.WriteString(fmt.Sprintf("  Output directory:  %s\n", styles.PathStyle.Render(data.OutputDir)))
	b.WriteString(fmt.Sprintf("  Template:          %s\n", styles.PathStyle.Render(data.Template)))
	b.WriteString(fmt.Sprintf("  Base path:         %s\n", styles.ValueStyle.Render(data.BasePath)))
	b.WriteString("\n")

	b.WriteString(styles.LabelStyle.Render("Last Build"))
	b.WriteString("\n")
	if data.LastBuild.IsZero() {
		b.WriteString(fmt.Sprintf("  %s\n", styles.DimStyle.Render("Never built")))
	} else {
		b.WriteString(fmt.Sprintf("  When:   %s\n", styles.ValueStyle.Render(humanize.Time(data.LastBuild))))
		b.WriteString(fmt.Sprintf("  ID:     %s\n", styles.DimStyle.Render(data.LastBuildID)))
		b.WriteString(fmt.Sprintf("  Output: %s\n", styles.ValueStyle.Render(humanize.Bytes(uint64(data.OutputBytes)))))
	}
	b.WriteString("\n")

	b.WriteString(styles.LabelStyle.Render("Pending Changes"))
	b.WriteString("\n")
	if pending := data.Pending(); pending == 0 {
		b.WriteString(fmt.Sprintf("  %s\n", styles.SuccessStyle.Render("✓ Site is up to date")))
	} else {
		b.WriteString(fmt.Sprintf("  %s\n", styles.HighlightStyle.Render(
			fmt.Sprintf("● %d of %d page(s) need a build", pending, len(data.Pages)))))
	}
	b.WriteString("\n")

	return b.String()
}
