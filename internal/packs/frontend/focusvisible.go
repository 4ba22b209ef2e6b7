package frontend

import (
	"regexp"
	"strings"

	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/rule"
)

var (
	outlineNoneRE = regexp.MustCompile(`\boutline-none\b`)
	focusRingRE   = regexp.MustCompile(`\bfocus(?:-visible)?:ring-`)
)

// FocusVisible flags focus indicators removed without replacement
// (WCAG 2.4.7).
type FocusVisible struct{}

func (FocusVisible) Meta() rule.Meta {
	return rule.Meta{
		ID:          "style-focus-visible",
		Description: "Ensures focus indicators are not removed without replacement",
		Severity:    rule.Warning,
		Events:      []hooks.EventType{hooks.PreToolUse},
		Pack:        Name,
	}
}

func (r FocusVisible) Evaluate(ctx *rule.Context) ([]rule.Finding, error) {
	if ctx.ToolName != "Write" && ctx.ToolName != "Edit" {
		return nil, nil
	}
	filePath := ctx.FilePath()
	if !isFrontendFile(filePath) {
		return nil, nil
	}

	content := ctx.Content()
	if content == "" {
		return nil, nil
	}

	m := r.Meta()
	var findings []rule.Finding

	for i, line := range strings.Split(content, "\n") {
		if outlineNoneRE.MatchString(line) && !focusRingRE.MatchString(line) {
			findings = append(findings, rule.Finding{
				RuleID:     m.ID,
				Message:    "outline-none without focus:ring replacement (WCAG 2.4.7)",
				Severity:   m.Severity,
				FilePath:   filePath,
				Line:       i + 1,
				Suggestion: "Add focus:ring-2 or focus-visible:ring-2 for keyboard users.",
			})
		}
	}

	return findings, nil
}
