package frontend

import (
	"regexp"
	"strings"

	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/rule"
)

var (
	// Icon buttons with small Tailwind sizing classes.
	smallIconButtonRE = regexp.MustCompile(`(?i)<button[^>]*class(?:Name)?\s*=\s*["'][^"']*\b(?:w-[1-9]|h-[1-9]|p-[12])\b[^"']*["'][^>]*>`)

	minSizeRE = regexp.MustCompile(`\bmin-[wh]-(?:1[1-9]|[2-9]\d)\b`)
)

// TouchTargets flags interactive elements too small for touch (WCAG 2.5.5).
type TouchTargets struct{}

func (TouchTargets) Meta() rule.Meta {
	return rule.Meta{
		ID:          "mobile-touch-targets",
		Description: "Ensures interactive elements meet minimum touch target size",
		Severity:    rule.Warning,
		Events:      []hooks.EventType{hooks.PreToolUse},
		Pack:        Name,
	}
}

func (r TouchTargets) Evaluate(ctx *rule.Context) ([]rule.Finding, error) {
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
		for _, tag := range smallIconButtonRE.FindAllString(line, -1) {
			if minSizeRE.MatchString(tag) {
				continue
			}
			findings = append(findings, rule.Finding{
				RuleID:     m.ID,
				Message:    "Button may be too small for touch targets (44x44px minimum)",
				Severity:   m.Severity,
				FilePath:   filePath,
				Line:       i + 1,
				Suggestion: "Add min-w-11 min-h-11 (44px) for accessible touch targets.",
			})
		}
	}

	return findings, nil
}
