// Package cli wires the railguard commands. check and report are the hook
// entry points Claude Code invokes; the rest are for humans.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ihavespoons/railguard/internal/config"
	"github.com/ihavespoons/railguard/internal/custom"
	"github.com/ihavespoons/railguard/internal/engine"
	"github.com/ihavespoons/railguard/internal/logger"
	"github.com/ihavespoons/railguard/internal/packs"
	"github.com/ihavespoons/railguard/internal/rule"
	"github.com/ihavespoons/railguard/internal/session"
	"github.com/ihavespoons/railguard/internal/trace"
)

// Version information set via ldflags
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var (
	verbose        bool
	projectDirFlag string
)

var rootCmd = &cobra.Command{
	Use:   "railguard",
	Short: "Real-time quality guardrails for AI coding agents",
	Long: `Railguard evaluates coding-agent tool calls against rule packs before
and after they run, blocks the dangerous ones, and reports the rest.

It is wired into Claude Code as a hook: 'railguard setup' registers the
check and report commands in .claude/settings.json, and 'railguard init'
writes a starter railguard.yml.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("railguard %s\n", Version)
		fmt.Printf("  commit: %s\n", Commit)
		fmt.Printf("  built:  %s\n", Date)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&projectDirFlag, "project", "p", "", "Override project directory")

	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// resolveProjectDir applies the precedence flag > CLAUDE_PROJECT_DIR > cwd.
func resolveProjectDir() string {
	if projectDirFlag != "" {
		return projectDirFlag
	}
	if dir := os.Getenv("CLAUDE_PROJECT_DIR"); dir != "" {
		return dir
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}

// initLogging configures the logger for a command run. Hook invocations stay
// quiet unless RAILGUARD_LOG_LEVEL or --verbose say otherwise.
func initLogging() {
	if verbose {
		_ = logger.Init("debug", "")
		return
	}
	logger.InitFromEnv()
}

// activeRules assembles the rule set for a configuration: built-in packs
// first, then project-local custom rules.
func activeRules(cfg *config.Config, projectDir string) []rule.Rule {
	rules := packs.Load(cfg.Packs)
	if cfg.CustomRulesDir != "" {
		rules = append(rules, custom.Load(cfg.CustomRulesDir, projectDir)...)
	}
	return rules
}

// buildEngine assembles the full pipeline for a hook invocation. The returned
// closer releases the trace store when tracing is on.
func buildEngine(projectDir string) (*engine.Engine, func()) {
	cfg := config.MustLoad(projectDir)
	rules := activeRules(cfg, projectDir)
	store := session.NewStore()

	eng := engine.NewEngine(cfg, rules, store, projectDir)

	closer := func() {}
	if cfg.Trace.Enabled {
		rec, err := trace.NewSQLiteStore(cfg.Trace.StoragePath)
		if err != nil {
			logger.Debug().Err(err).Msg("Failed to open trace store, continuing without tracing")
		} else {
			eng.SetRecorder(rec)
			closer = func() { _ = rec.Close() }
		}
	}

	return eng, closer
}
