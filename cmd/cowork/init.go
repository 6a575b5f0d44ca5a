package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/rainycowork/cowork/internal/config"
	"github.com/rainycowork/cowork/internal/state"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize cowork in the current project",
	Long: `Set up the current directory for cowork runs.

Creates the .cowork directory (signals, run history database), adds the
relevant .gitignore entries, and writes a .cowork.yaml template if one
doesn't exist.`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	fmt.Println("Initializing cowork...")
	fmt.Println()

	// Environment checks
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if _, source, err := config.ResolveAPIKey(cfg); err != nil {
		printStatus("⚠", "No Anthropic API key configured (set ANTHROPIC_API_KEY or use 'cowork config')", color.FgYellow)
	} else {
		printStatus("✓", fmt.Sprintf("Anthropic API key found (%s)", source), color.FgGreen)
	}

	// Directory structure
	for _, dir := range []string{
		filepath.Join(cwd, ".cowork"),
		filepath.Join(cwd, ".cowork", "signals"),
	} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	printStatus("✓", "Created .cowork directory structure", color.FgGreen)

	// Run history database
	db, err := state.OpenProject(cwd)
	if err != nil {
		return fmt.Errorf("open run history database: %w", err)
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migrate run history database: %w", err)
	}
	printStatus("✓", "Initialized run history database", color.FgGreen)

	// gitignore
	if err := updateGitignore(cwd); err != nil {
		printStatus("⚠", fmt.Sprintf("Could not update .gitignore: %v", err), color.FgYellow)
	} else {
		printStatus("✓", "Updated .gitignore", color.FgGreen)
	}

	// Project config template
	configPath := filepath.Join(cwd, ".cowork.yaml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := os.WriteFile(configPath, []byte(projectConfigTemplate), 0644); err != nil {
			return fmt.Errorf("write .cowork.yaml: %w", err)
		}
		printStatus("✓", "Created .cowork.yaml template", color.FgGreen)
	} else {
		printStatus("✓", ".cowork.yaml already exists", color.FgGreen)
	}

	fmt.Printf("\n%s cowork initialization complete!\n\n", color.GreenString("✓"))
	fmt.Println("Run a task with:")
	fmt.Println("  cowork run \"research X, then write a summary\"")
	return nil
}

// updateGitignore appends cowork entries to .gitignore if missing.
func updateGitignore(cwd string) error {
	path := filepath.Join(cwd, ".gitignore")
	entries := []string{".cowork/"}

	existing := ""
	if data, err := os.ReadFile(path); err == nil {
		existing = string(data)
	}

	var missing []string
	for _, e := range entries {
		if !strings.Contains(existing, e) {
			missing = append(missing, e)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	if existing != "" && !strings.HasSuffix(existing, "\n") {
		if _, err := f.WriteString("\n"); err != nil {
			return err
		}
	}
	_, err = f.WriteString("\n# cowork\n" + strings.Join(missing, "\n") + "\n")
	return err
}

// printStatus prints a colored status symbol and message.
func printStatus(symbol, message string, colorAttr color.Attribute) {
	c := color.New(colorAttr)
	c.Printf("%s ", symbol)
	fmt.Println(message)
}

const projectConfigTemplate = `# cowork project configuration
# Overrides ~/.config/cowork/config.yaml for this project.

# anthropic:
#   model: claude-sonnet-4-20250514
#   use_bedrock: false

# director:
#   poll_interval: 100ms
#   run_timeout: 10m

# workers:
#   researcher: 1
#   executor: 1
#   creator: 1
#   designer: 1
#   developer: 1
#   analyst: 1

# history:
#   enabled: true
#   purge_after: 720h
`
