// Package report renders findings into the texts the supervisor shows the
// agent: the advisory system message, the deny reason for blocked actions,
// and the end-of-session summary.
package report

import (
	"fmt"
	"strings"

	"github.com/ihavespoons/railguard/internal/rule"
)

// Report holds one invocation's findings for formatting.
type Report struct {
	Findings       []rule.Finding
	RulesEvaluated int
}

// HasBlocking reports whether any finding is blocking.
func (r *Report) HasBlocking() bool {
	for _, f := range r.Findings {
		if f.Severity.IsBlocking() {
			return true
		}
	}
	return false
}

func (r *Report) bySeverity(s rule.Severity) []rule.Finding {
	var out []rule.Finding
	for _, f := range r.Findings {
		if f.Severity == s {
			out = append(out, f)
		}
	}
	return out
}

func appendEntries(lines []string, findings []rule.Finding, indent string) []string {
	for _, f := range findings {
		lines = append(lines, fmt.Sprintf("%s[%s] %s", indent, f.RuleID, f.Message))
		if f.Suggestion != "" {
			lines = append(lines, fmt.Sprintf("%s  -> %s", indent, f.Suggestion))
		}
	}
	return lines
}

// AdvisoryMessage formats findings grouped by severity band. Returns ""
// when there is nothing to report.
func (r *Report) AdvisoryMessage() string {
	if len(r.Findings) == 0 {
		return ""
	}

	lines := []string{"", "railguard:"}

	if errors := r.bySeverity(rule.Error); len(errors) > 0 {
		lines = append(lines, "  BLOCKED:")
		lines = appendEntries(lines, errors, "    ")
	}
	if warnings := r.bySeverity(rule.Warning); len(warnings) > 0 {
		lines = append(lines, "  WARNINGS:")
		lines = appendEntries(lines, warnings, "    ")
	}
	if infos := r.bySeverity(rule.Info); len(infos) > 0 {
		lines = append(lines, "  INFO:")
		lines = appendEntries(lines, infos, "    ")
	}

	return strings.Join(lines, "\n")
}

// DenyReason composes the reason for a pre-action deny: every blocking
// finding with its suggestion, then the non-blocking findings as context.
func (r *Report) DenyReason() string {
	lines := []string{"railguard blocked this action:"}
	lines = appendEntries(lines, r.bySeverity(rule.Error), "  ")

	var rest []rule.Finding
	rest = append(rest, r.bySeverity(rule.Warning)...)
	rest = append(rest, r.bySeverity(rule.Info)...)
	if len(rest) > 0 {
		lines = append(lines, "Also noted:")
		lines = appendEntries(lines, rest, "  ")
	}

	return strings.Join(lines, "\n")
}

// SessionReport formats the end-of-session summary for the Stop event.
func (r *Report) SessionReport(filesChanged int) string {
	errors := r.bySeverity(rule.Error)
	warnings := r.bySeverity(rule.Warning)

	lines := []string{
		"railguard session report",
		fmt.Sprintf("Files changed: %d  |  Rules evaluated: %d", filesChanged, r.RulesEvaluated),
		fmt.Sprintf("Passed: %d  |  Warnings: %d  |  Blocked: %d",
			r.RulesEvaluated-len(r.Findings), len(warnings), len(errors)),
	}

	if len(errors) > 0 {
		lines = append(lines, "", "Blocked actions:")
		for _, f := range errors {
			lines = append(lines, fmt.Sprintf("  [%s] %s", f.RuleID, f.Message))
		}
	}
	if len(warnings) > 0 {
		lines = append(lines, "", "Warnings:")
		for _, f := range warnings {
			lines = append(lines, fmt.Sprintf("  [%s] %s", f.RuleID, f.Message))
		}
	}

	return strings.Join(lines, "\n")
}
