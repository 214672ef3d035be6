package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gerunddev/mdsite/internal/config"
	"github.com/gerunddev/mdsite/internal/styles"
)

const starterTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>{{ Title }}</title>
  <link href="/index.css" rel="stylesheet">
</head>
<body>
  <article>
    {{ Content }}
  </article>
</body>
</html>
`

const starterPage = `# Welcome

This site was generated by **mdsite**.

- Edit ` + "`content/index.md`" + `
- Run ` + "`mdsite build`" + `
`

const starterCSS = `body {
  max-width: 720px;
  margin: 2em auto;
  font-family: sans-serif;
}
`

// Init scaffolds a project in the working directory: mdsite.yaml, a
// template, a first page and a stylesheet. Existing files are left alone.
func Init() {
	cfg := config.DefaultConfig()
	// Leave machine-specific defaults out of the project file
	cfg.LogFile = ""
	cfg.Workers = 0

	created, err := scaffold(".", cfg)
	if err != nil {
		fail("Error initializing project: %v", err)
	}

	if len(created) == 0 {
		fmt.Println(styles.DimStyle.Render("Nothing to do, project already initialized"))
		return
	}
	for _, f := range created {
		fmt.Println(styles.SuccessStyle.Render("✓ Created " + f))
	}
	fmt.Println(styles.DimStyle.Render("  Run 'mdsite build' to generate the site"))
}

// scaffold writes the starter files under dir and returns the ones created
func scaffold(dir string, cfg *config.Config) ([]string, error) {
	var created []string

	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); errors.Is(err, os.ErrNotExist) {
		if err := cfg.SaveTo(cfgPath); err != nil {
			return created, err
		}
		created = append(created, cfgPath)
	}

	files := []struct {
		path    string
		content string
	}{
		{filepath.Join(dir, cfg.Template), starterTemplate},
		{filepath.Join(dir, cfg.ContentDir, "index.md"), starterPage},
		{filepath.Join(dir, cfg.StaticDir, "index.css"), starterCSS},
	}
	for _, f := range files {
		ok, err := writeIfMissing(f.path, f.content)
		if err != nil {
			return created, err
		}
		if ok {
			created = append(created, f.path)
		}
	}

	return created, nil
}

func writeIfMissing(path, content string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return false, err
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return false, err
	}
	return true, nil
}
