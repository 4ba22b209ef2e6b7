package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ihavespoons/railguard/internal/agentsmd"
)

var (
	importDryRun bool
	importMerge  bool
)

var importCmd = &cobra.Command{
	Use:   "import-agents-md",
	Short: "Import conventions from AGENTS.md into railguard config",
	Long: `Read the project's AGENTS.md, map its conventions to rule packs and
rule settings, and write the result to railguard.yml.

Example:
  railguard import-agents-md --dry-run
  railguard import-agents-md --merge`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Preview config without writing")
	importCmd.Flags().BoolVar(&importMerge, "merge", false, "Merge with existing railguard.yml")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	projectDir := resolveProjectDir()

	agentsPath := agentsmd.Find(projectDir)
	if agentsPath == "" {
		return fmt.Errorf("no AGENTS.md found in project root")
	}

	content, err := os.ReadFile(agentsPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", agentsPath, err)
	}

	sections := agentsmd.Parse(string(content))
	if len(sections) == 0 {
		return fmt.Errorf("AGENTS.md is empty or has no sections")
	}

	mapped := agentsmd.MapToConfig(sections)

	fmt.Printf("Found AGENTS.md: %s\n", agentsPath)
	fmt.Printf("Detected packs: %s\n", strings.Join(mapped.Packs, ", "))
	if len(mapped.Rules) > 0 {
		ids := make([]string, 0, len(mapped.Rules))
		for id := range mapped.Rules {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		fmt.Printf("Detected rules: %s\n", strings.Join(ids, ", "))
	}

	configPath := filepath.Join(projectDir, "railguard.yml")

	var output []byte
	existing, readErr := os.ReadFile(configPath)
	if importMerge && readErr == nil {
		output, err = agentsmd.MergeConfig(existing, mapped)
		if err != nil {
			return fmt.Errorf("failed to merge config: %w", err)
		}
	} else {
		output, err = agentsmd.GenerateConfig(mapped)
		if err != nil {
			return fmt.Errorf("failed to generate config: %w", err)
		}
	}

	if importDryRun {
		fmt.Println("\n--- Generated config (dry run) ---")
		fmt.Print(string(output))
		return nil
	}

	if err := os.WriteFile(configPath, output, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	fmt.Printf("Wrote config to %s\n", configPath)
	return nil
}
