package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ihavespoons/railguard/internal/config"
	"github.com/ihavespoons/railguard/internal/rule"
	"github.com/ihavespoons/railguard/internal/trace"
)

var (
	traceLimit   int
	traceSession string
)

var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "Inspect the invocation audit trail",
	Long: `Inspect recorded hook invocations.

Recording is off by default; enable it with a trace block in railguard.yml:

  trace:
    enabled: true

Example:
  railguard trace list
  railguard trace list --session pid-1234
  railguard trace show <invocation-id>`,
}

var traceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded invocations",
	RunE:  runTraceList,
}

var traceShowCmd = &cobra.Command{
	Use:   "show <invocation-id>",
	Short: "Show one invocation with its findings",
	Args:  cobra.ExactArgs(1),
	RunE:  runTraceShow,
}

func init() {
	traceListCmd.Flags().IntVarP(&traceLimit, "limit", "n", 20, "Maximum number of invocations to show")
	traceListCmd.Flags().StringVar(&traceSession, "session", "", "Filter by session id")

	traceCmd.AddCommand(traceListCmd)
	traceCmd.AddCommand(traceShowCmd)
	rootCmd.AddCommand(traceCmd)
}

func openTraceStore() (*trace.SQLiteStore, error) {
	cfg := config.MustLoad(resolveProjectDir())
	store, err := trace.NewSQLiteStore(cfg.Trace.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open trace store: %w", err)
	}
	return store, nil
}

func runTraceList(cmd *cobra.Command, args []string) error {
	initLogging()

	store, err := openTraceStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	invs, err := store.ListInvocations(traceSession, traceLimit)
	if err != nil {
		return fmt.Errorf("failed to list invocations: %w", err)
	}

	if len(invs) == 0 {
		fmt.Println("No recorded invocations found.")
		return nil
	}

	fmt.Printf("%-36s  %-19s  %-12s  %-8s  %-8s  %s\n",
		"INVOCATION", "TIMESTAMP", "EVENT", "TOOL", "DECISION", "FINDINGS")
	fmt.Println(strings.Repeat("-", 100))

	for _, inv := range invs {
		fmt.Printf("%-36s  %-19s  %-12s  %-8s  %s  %d\n",
			inv.ID,
			inv.Timestamp.Format("2006-01-02 15:04:05"),
			inv.Event,
			inv.ToolName,
			decisionCell(inv.Decision),
			len(inv.Findings),
		)
	}

	if len(invs) == traceLimit {
		fmt.Printf("\n(Showing first %d invocations. Use --limit to see more.)\n", traceLimit)
	}
	return nil
}

func runTraceShow(cmd *cobra.Command, args []string) error {
	initLogging()

	store, err := openTraceStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	inv, err := store.GetInvocation(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Invocation: %s\n", inv.ID)
	fmt.Printf("Session:    %s\n", inv.SessionID)
	fmt.Printf("Timestamp:  %s\n", inv.Timestamp.Format(time.RFC3339))
	fmt.Printf("Event:      %s\n", inv.Event)
	if inv.ToolName != "" {
		fmt.Printf("Tool:       %s\n", inv.ToolName)
	}
	fmt.Printf("Decision:   %s (exit %d)\n", inv.Decision, inv.ExitCode)
	fmt.Printf("Rules:      %d evaluated in %s\n", inv.RulesEvaluated, inv.Duration)

	if len(inv.Findings) == 0 {
		fmt.Println("\nNo findings.")
		return nil
	}

	fmt.Printf("\nFindings (%d):\n", len(inv.Findings))
	fmt.Println(strings.Repeat("-", 60))
	for _, f := range inv.Findings {
		fmt.Printf("  %s [%s] %s\n", severityTag(f.Severity), f.RuleID, f.Message)
		if f.FilePath != "" {
			if f.Line > 0 {
				fmt.Printf("      %s:%d\n", f.FilePath, f.Line)
			} else {
				fmt.Printf("      %s\n", f.FilePath)
			}
		}
		if f.Suggestion != "" {
			fmt.Printf("      -> %s\n", f.Suggestion)
		}
	}
	return nil
}

func decisionCell(decision string) string {
	cell := fmt.Sprintf("%-8s", decision)
	switch decision {
	case trace.DecisionDeny:
		return color.New(color.FgRed).Sprint(cell)
	case trace.DecisionAdvisory:
		return color.New(color.FgYellow).Sprint(cell)
	default:
		return color.New(color.FgGreen).Sprint(cell)
	}
}

func severityTag(s rule.Severity) string {
	switch s {
	case rule.Error:
		return color.New(color.FgRed).Sprint(string(s))
	case rule.Warning:
		return color.New(color.FgYellow).Sprint(string(s))
	default:
		return color.New(color.FgCyan).Sprint(string(s))
	}
}
