package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ihavespoons/railguard/internal/setup"
)

var uninstallGlobal bool

var uninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove railguard hooks from Claude Code settings",
	RunE:  runUninstall,
}

func init() {
	uninstallCmd.Flags().BoolVarP(&uninstallGlobal, "global", "g", false, "Remove from ~/.claude/settings.json")
	rootCmd.AddCommand(uninstallCmd)
}

func runUninstall(cmd *cobra.Command, args []string) error {
	scope := setup.ScopeProject
	if uninstallGlobal {
		scope = setup.ScopeUser
	}

	path, err := setup.SettingsPath(scope, resolveProjectDir())
	if err != nil {
		return fmt.Errorf("failed to resolve settings path: %w", err)
	}

	existing := setup.ReadSettings(path)
	updated := setup.RemoveHooks(existing)

	if len(updated) > 0 {
		if err := setup.WriteSettings(path, updated); err != nil {
			return fmt.Errorf("failed to write settings: %w", err)
		}
	} else if _, err := os.Stat(path); err == nil {
		// Nothing left in the file but the hooks we installed.
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove settings file: %w", err)
		}
	}

	fmt.Printf("Removed railguard hooks from %s\n", path)
	return nil
}
