package react

import (
	"regexp"
	"strings"

	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/rule"
)

var (
	mapCallRE     = regexp.MustCompile(`\.map\s*\(`)
	lengthCheckRE = regexp.MustCompile(`\.length\b`)
	mapGuardRE    = regexp.MustCompile(`&&\s*\w+\.map|\.length\s*[>!=]|\?\s*\w+\.map|\bif\s*\([^)]*\.length`)
)

// EmptyState suggests empty state handling for array.map() in JSX.
type EmptyState struct{}

func (EmptyState) Meta() rule.Meta {
	return rule.Meta{
		ID:          "react-empty-state",
		Description: "Suggests adding empty state handling for array.map() in JSX",
		Severity:    rule.Info,
		Events:      []hooks.EventType{hooks.PreToolUse},
		Pack:        Name,
	}
}

func (r EmptyState) Evaluate(ctx *rule.Context) ([]rule.Finding, error) {
	if ctx.ToolName != "Write" && ctx.ToolName != "Edit" {
		return nil, nil
	}
	filePath := ctx.FilePath()
	if !isReactFile(filePath) {
		return nil, nil
	}

	content := ctx.Content()
	if content == "" {
		return nil, nil
	}

	// A guard expression anywhere means the author is handling emptiness.
	if mapGuardRE.MatchString(content) {
		return nil, nil
	}

	m := r.Meta()
	var findings []rule.Finding
	for _, loc := range mapCallRE.FindAllStringIndex(content, -1) {
		// A .length within 200 chars either side counts as handled.
		start := loc[0] - 200
		if start < 0 {
			start = 0
		}
		end := loc[1] + 200
		if end > len(content) {
			end = len(content)
		}
		if lengthCheckRE.MatchString(content[start:end]) {
			continue
		}

		findings = append(findings, rule.Finding{
			RuleID:     m.ID,
			Message:    ".map() without empty state handling",
			Severity:   m.Severity,
			FilePath:   filePath,
			Line:       strings.Count(content[:loc[0]], "\n") + 1,
			Suggestion: "Add a .length check or empty state component for when the array is empty.",
		})
	}

	return findings, nil
}
