package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate the end-of-session report (Stop hook)",
	Long: `Generate the end-of-session summary for the Stop event.

Runs the Stop rules over the session's tracked changes, prints the report
as a system message, and retires the session state.`,
	Run: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) {
	initLogging()

	// The Stop payload carries nothing the report needs, but stdin must be
	// drained so the supervisor never blocks on a full pipe.
	input, _ := io.ReadAll(os.Stdin)

	eng, closeTrace := buildEngine(resolveProjectDir())
	out := eng.RunReport(input)
	closeTrace()

	if out.Output != nil {
		if data, err := out.Output.Marshal(); err == nil {
			fmt.Println(string(data))
		}
	}
}
