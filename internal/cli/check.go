package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/logger"
)

var checkEvent string

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Evaluate rules against a tool call from stdin",
	Long: `Evaluate rules against a hook event read from stdin.

This is the hook entry point Claude Code invokes before and after tool
calls. It reads the hook payload as JSON, runs the active rule packs, and
prints the decision payload. A blocked pre-action exits 0 with a
structured deny; post-action blocks exit 2.

Example:
  echo '{"tool_name": "Bash", "tool_input": {"command": "git push --force"}}' | railguard check --event PreToolUse`,
	Run: runCheck,
}

func init() {
	checkCmd.Flags().StringVarP(&checkEvent, "event", "e", "", "Hook event type (required)")
	_ = checkCmd.MarkFlagRequired("event")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) {
	initLogging()

	event := hooks.EventType(checkEvent)
	if !hooks.Valid(event) {
		// An unknown event must not block the supervisor: log and allow.
		logger.Warn().Str("event", checkEvent).Msg("Unknown hook event, allowing")
		return
	}

	input, err := io.ReadAll(os.Stdin)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to read stdin, allowing")
		return
	}

	eng, closeTrace := buildEngine(resolveProjectDir())
	out := eng.Run(event, input)
	closeTrace()

	if out.Output != nil {
		if data, err := out.Output.Marshal(); err == nil {
			fmt.Println(string(data))
		}
	}

	if out.ExitCode != 0 {
		os.Exit(out.ExitCode)
	}
}
