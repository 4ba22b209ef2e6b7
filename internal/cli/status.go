package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ihavespoons/railguard/internal/config"
	"github.com/ihavespoons/railguard/internal/session"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show railguard status for the current project",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	initLogging()
	projectDir := resolveProjectDir()

	cfg := config.MustLoad(projectDir)
	rules := activeRules(cfg, projectDir)

	store := session.NewStore()
	state := store.Load(session.Key())
	totalCalls := 0
	if budget, ok := state["token_budget"].(map[string]interface{}); ok {
		if v, ok := budget["total_calls"].(float64); ok {
			totalCalls = int(v)
		}
	}

	bold := color.New(color.Bold).SprintFunc()
	fmt.Printf("%s v%s | Severity: %s | Packs: %s\n",
		bold("railguard"), Version, cfg.Severity, strings.Join(cfg.Packs, ", "))
	fmt.Printf("Rules: %d active | Session: %d tool calls tracked\n", len(rules), totalCalls)
	return nil
}
