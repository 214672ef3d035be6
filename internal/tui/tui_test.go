package tui

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gerunddev/mdsite/internal/site"
)

func TestBuildModelProgress(t *testing.T) {
	m := InitBuildModel()

	updated, _ := m.Update(ProgressMsg{Source: "content/index.md", Done: 1, Total: 3})
	view := updated.View()
	if !strings.Contains(view, "Rendering pages (1/3)") {
		t.Errorf("Expected progress in view, got: %s", view)
	}
}

func TestBuildModelComplete(t *testing.T) {
	m := InitBuildModel()
	start := time.Now()

	updated, cmd := m.Update(BuildMsg{Result: &site.Result{
		PagesBuilt: 2,
		StartTime:  start,
		EndTime:    start.Add(time.Second),
	}})
	if cmd == nil {
		t.Fatal("Expected quit command after build")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Expected tea.QuitMsg")
	}

	view := updated.View()
	if !strings.Contains(view, "Built 2 page(s)") {
		t.Errorf("Expected summary in view, got: %s", view)
	}
}

func TestBuildModelFailed(t *testing.T) {
	m := InitBuildModel()
	updated, _ := m.Update(BuildMsg{Err: errors.New("template missing")})

	if view := updated.View(); !strings.Contains(view, "Build failed: template missing") {
		t.Errorf("Expected failure in view, got: %s", view)
	}
}

func TestRenderResult(t *testing.T) {
	start := time.Now()
	tests := []struct {
		name   string
		result *site.Result
		want   []string
	}{
		{
			name:   "nothing to do",
			result: &site.Result{PagesSkipped: 4},
			want:   []string{"Nothing to rebuild"},
		},
		{
			name:   "dry run",
			result: &site.Result{PagesBuilt: 3, DryRun: true},
			want:   []string{"Would build 3 page(s)"},
		},
		{
			name: "errors listed",
			result: &site.Result{
				PagesBuilt: 1,
				Errors: []error{
					errors.New("a.md: boom"), errors.New("b.md: boom"), errors.New("c.md: boom"),
					errors.New("d.md: boom"), errors.New("e.md: boom"), errors.New("f.md: boom"),
				},
			},
			want: []string{"6 error(s)", "a.md: boom", "e.md: boom", "and 1 more"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.result.StartTime = start
			tt.result.EndTime = start
			got := RenderResult(tt.result)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("Expected %q in %q", w, got)
				}
			}
		})
	}
}

func TestStatusModel(t *testing.T) {
	m := InitStatusModel()
	if view := m.View(); !strings.Contains(view, "Scanning content") {
		t.Errorf("Expected scanning view, got: %s", view)
	}

	data := &StatusData{
		ContentDir: "content",
		OutputDir:  "docs",
		Template:   "template.html",
		BasePath:   "/",
		LastBuild:  time.Now().Add(-time.Hour),
		Pages: []PageRow{
			{Source: "content/index.md", Title: "Home", Status: StatusBuilt},
			{Source: "content/blog/new.md", Status: StatusNew},
		},
	}
	updated, _ := m.Update(StatusMsg{Data: data})
	view := updated.View()

	for _, w := range []string{"Content directory", "1 hour ago", "1 of 2 page(s) need a build"} {
		if !strings.Contains(view, w) {
			t.Errorf("Expected %q in view", w)
		}
	}

	rows := pageRows(data)
	if len(rows) != 2 || rows[0][0] != "blog/new.md" {
		t.Errorf("Pending pages should come first, got %v", rows)
	}
}

func TestStatusSummaryUpToDate(t *testing.T) {
	data := &StatusData{Pages: []PageRow{{Source: "a.md", Status: StatusBuilt}}}
	got := RenderStatusSummary(data)
	if !strings.Contains(got, "Site is up to date") {
		t.Errorf("Expected up to date, got: %s", got)
	}
	if !strings.Contains(got, "Never built") {
		t.Errorf("Expected never built, got: %s", got)
	}
}

func TestWatchModel(t *testing.T) {
	m := InitWatchModel()
	if view := m.View(); !strings.Contains(view, "Starting") {
		t.Errorf("Expected starting view, got: %s", view)
	}

	updated, _ := m.Update(WatchMsg{Data: &WatchData{
		ContentDir: "content",
		Interval:   2 * time.Second,
		StartTime:  time.Now(),
		Builds:     3,
		LastResult: &site.Result{PagesBuilt: 1, EndTime: time.Now()},
		LogLines:   []string{"INFO build completed"},
	}})
	view := updated.View()
	for _, w := range []string{"Builds run:", "Pages built:", "INFO build completed"} {
		if !strings.Contains(view, w) {
			t.Errorf("Expected %q in view", w)
		}
	}

	updated, cmd := updated.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("Expected quit command")
	}
	_ = updated
}
