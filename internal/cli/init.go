package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ihavespoons/railguard/internal/detect"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize railguard configuration",
	Long: `Write a starter railguard.yml at the project root.

The packs list is pre-filled from the detected stack. Existing config files
are left untouched.`,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	projectDir := resolveProjectDir()
	return writeStarterConfig(projectDir)
}

func writeStarterConfig(projectDir string) error {
	configPath := filepath.Join(projectDir, "railguard.yml")
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s", configPath)
	}

	packs := detect.Detect(projectDir)

	var packLines []string
	for _, p := range packs {
		packLines = append(packLines, "  - "+p)
	}

	content := fmt.Sprintf(`# Railguard configuration
# Docs: https://github.com/ihavespoons/railguard

stack: auto

severity: standard  # strict | standard | relaxed

packs:
%s
  # - security  # opt-in: blocks Bash file writes, network exfiltration

rules: {}
  # Override individual rules:
  # max-file-size:
  #   limit: 300
  # git-checkpoint:
  #   enabled: true

# custom_rules_dir: .railguard/rules/
`, strings.Join(packLines, "\n"))

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("Created %s\n", configPath)
	fmt.Printf("Detected packs: %s\n", strings.Join(packs, ", "))
	return nil
}
