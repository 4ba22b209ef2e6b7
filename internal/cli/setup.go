package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ihavespoons/railguard/internal/config"
	"github.com/ihavespoons/railguard/internal/setup"
)

var setupGlobal bool

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Install railguard hooks into Claude Code settings",
	Long: `Install the railguard hook entries into a Claude Code settings file.

By default the hooks go into <project>/.claude/settings.json; --global
targets ~/.claude/settings.json instead. Entries from other tools are
preserved, and re-running setup replaces only railguard's own entries.

A starter railguard.yml is written too when the project has no config yet.`,
	RunE: runSetup,
}

func init() {
	setupCmd.Flags().BoolVarP(&setupGlobal, "global", "g", false, "Install to ~/.claude/settings.json")
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	projectDir := resolveProjectDir()

	scope := setup.ScopeProject
	if setupGlobal {
		scope = setup.ScopeUser
	}

	path, err := setup.SettingsPath(scope, projectDir)
	if err != nil {
		return fmt.Errorf("failed to resolve settings path: %w", err)
	}

	existing := setup.ReadSettings(path)
	updated := setup.MergeHooks(existing)
	if err := setup.WriteSettings(path, updated); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}

	fmt.Printf("Installed railguard hooks in %s\n", path)

	if config.FindConfigFile(projectDir) == "" {
		if err := writeStarterConfig(projectDir); err != nil {
			return err
		}
	}

	return nil
}
