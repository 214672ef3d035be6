package main

import (
	"fmt"
	"os"

	"github.com/gerunddev/mdsite/internal/commands"
	"github.com/gerunddev/mdsite/internal/config"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "build":
		commands.Build(os.Args[2:])
	case "watch", "serve":
		commands.Watch(os.Args[2:])
	case "stop":
		commands.Stop()
	case "status":
		commands.Status()
	case "render":
		commands.Render(os.Args[2:])
	case "title":
		commands.Title(os.Args[2:])
	case "diff":
		commands.Diff(os.Args[2:])
	case "init":
		commands.Init()
	case "version", "-v", "--version":
		fmt.Printf("mdsite v%s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	usage := fmt.Sprintf(`mdsite - Static site generator for plain markdown

Usage:
  mdsite <command> [options]

Commands:
  build       Build the site (use --dry-run to preview)
  watch       Rebuild whenever content, static files or the template change
  stop        Stop a watch started with --detach
  status      Show which pages need a rebuild
  render      Print the HTML of a single markdown file
  title       Print the title of a single markdown file
  diff        Show how a page's output would change
  init        Create mdsite.yaml, a template and a first page
  version     Show version information
  help        Show this help message

Options:
  --base-path P   Prefix for root-relative links (default "/")
  --dry-run       Render without writing files (build)
  --incremental   Only rebuild changed pages (build)
  --interval D    Polling interval (watch)
  --detach        Run in the background (watch)
  --no-tui        Plain log output instead of the terminal UI
  --plain         Uncolored unified diff (diff)

Examples:
  mdsite init
  mdsite build
  mdsite build /my-repo/
  mdsite build --incremental --no-tui
  mdsite watch --interval 1s
  mdsite watch --detach
  mdsite stop
  mdsite render content/index.md
  mdsite diff content/blog/post.md

Configuration:
  Config file: %s
  State file:  %s
`, config.ConfigPath(), config.StateFilePath())
	fmt.Print(usage)
}
