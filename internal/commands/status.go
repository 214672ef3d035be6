package commands

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gerunddev/mdsite/internal/config"
	"github.com/gerunddev/mdsite/internal/page"
	"github.com/gerunddev/mdsite/internal/site"
	"github.com/gerunddev/mdsite/internal/state"
	"github.com/gerunddev/mdsite/internal/styles"
	"github.com/gerunddev/mdsite/internal/tui"
)

// Status displays the manifest against the current content directory
func Status() {
	cfg := loadConfig()
	st := loadState()

	if !isTerminal() {
		data, err := collectStatus(cfg, st)
		if err != nil {
			fail("Error: %v", err)
		}
		fmt.Print(tui.RenderStatusSummary(data))
		for _, p := range data.Pages {
			fmt.Printf("%-8s %s\n", p.Status, p.Source)
		}
		return
	}

	p := tea.NewProgram(tui.InitStatusModel(), tea.WithInput(os.Stdin))

	go func() {
		data, err := collectStatus(cfg, st)
		p.Send(tui.StatusMsg{Data: data, Err: err})
	}()

	if _, err := p.Run(); err != nil {
		fmt.Println(styles.ErrorStyle.Render("✗ Error: " + err.Error()))
		os.Exit(1)
	}
}

// collectStatus compares every content page with its manifest entry
func collectStatus(cfg *config.Config, st *state.State) (*tui.StatusData, error) {
	builder := site.NewBuilder(cfg, st)
	sources, err := builder.ScanContent()
	if err != nil {
		return nil, fmt.Errorf("failed to scan content: %w", err)
	}

	// A changed template means every page needs a rebuild
	templateChanged, err := st.HasChanged(cfg.Template)
	if err != nil {
		return nil, fmt.Errorf("failed to check template: %w", err)
	}

	data := &tui.StatusData{
		ContentDir:  cfg.ContentDir,
		OutputDir:   cfg.OutputDir,
		Template:    cfg.Template,
		BasePath:    cfg.BasePath,
		LastBuildID: st.LastBuildID,
		LastBuild:   st.LastBuild,
	}

	for _, src := range sources {
		row := tui.PageRow{Source: src, Status: tui.StatusBuilt}

		fs, ok := st.Get(src)
		switch {
		case !ok:
			row.Status = tui.StatusNew
		case fs.Output == "":
			row.Status = tui.StatusFailed
		default:
			row.Title = fs.Title
			row.Output = fs.Output
			changed, err := st.HasChanged(src)
			if err != nil {
				return nil, err
			}
			if changed || templateChanged {
				row.Status = tui.StatusChanged
			}
			if info, err := os.Stat(fs.Output); err == nil {
				data.OutputBytes += info.Size()
			} else {
				row.Status = tui.StatusChanged
			}
		}

		if row.Output == "" {
			if dest, err := page.OutputPath(cfg.ContentDir, cfg.OutputDir, src); err == nil {
				row.Output = dest
			}
		}
		data.Pages = append(data.Pages, row)
	}

	return data, nil
}
