package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ihavespoons/railguard/internal/packs"
	"github.com/ihavespoons/railguard/internal/rule"
)

var rulesPack string

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List available rules",
	Long: `List the available rules with their pack, event, and severity.

Example:
  railguard rules
  railguard rules --pack python`,
	RunE: runRules,
}

func init() {
	rulesCmd.Flags().StringVar(&rulesPack, "pack", "", "Filter rules by pack name")
	rootCmd.AddCommand(rulesCmd)
}

func runRules(cmd *cobra.Command, args []string) error {
	var rules []rule.Rule
	if rulesPack == "" {
		rules = packs.All()
	} else {
		rules = packs.Load([]string{rulesPack})
	}

	if len(rules) == 0 {
		if rulesPack != "" {
			fmt.Printf("No rules found for pack %q.\n", rulesPack)
		} else {
			fmt.Println("No rules found.")
		}
		return nil
	}

	metas := make([]rule.Meta, 0, len(rules))
	for _, r := range rules {
		metas = append(metas, r.Meta())
	}
	sort.Slice(metas, func(i, j int) bool {
		if metas[i].Pack != metas[j].Pack {
			return metas[i].Pack < metas[j].Pack
		}
		if firstEvent(metas[i]) != firstEvent(metas[j]) {
			return firstEvent(metas[i]) < firstEvent(metas[j])
		}
		return metas[i].ID < metas[j].ID
	})

	bold := color.New(color.Bold).SprintFunc()
	fmt.Printf("%s\n", bold(fmt.Sprintf("%-30s %-12s %-14s %-10s %s", "RULE ID", "PACK", "EVENT", "SEVERITY", "DESCRIPTION")))
	fmt.Println(strings.Repeat("-", 100))

	for _, m := range metas {
		event := firstEvent(m)
		if event == "" {
			event = "-"
		}
		fmt.Printf("%-30s %-12s %-14s %s %s\n",
			m.ID, m.Pack, event, severityCell(m.Severity), m.Description)
	}

	fmt.Printf("\n%d rules total.\n", len(metas))
	return nil
}

func firstEvent(m rule.Meta) string {
	if len(m.Events) == 0 {
		return ""
	}
	return string(m.Events[0])
}

// severityCell pads before coloring; ANSI escapes would break %-10s widths.
func severityCell(s rule.Severity) string {
	cell := fmt.Sprintf("%-10s", string(s))
	switch s {
	case rule.Error:
		return color.New(color.FgRed).Sprint(cell)
	case rule.Warning:
		return color.New(color.FgYellow).Sprint(cell)
	default:
		return color.New(color.FgCyan).Sprint(cell)
	}
}
