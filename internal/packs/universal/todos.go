package universal

import (
	"fmt"
	"os"
	"regexp"

	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/rule"
)

// Matches TODO, FIXME, HACK, XXX preceded by a comment marker (#, //, or /*).
var todoRE = regexp.MustCompile(`(?:#|//|/\*)\s*(?:TODO|FIXME|HACK|XXX)\b`)

// TodoLeft informs about TODO/FIXME/HACK/XXX comments left in changed files.
type TodoLeft struct{}

func (TodoLeft) Meta() rule.Meta {
	return rule.Meta{
		ID:          "no-todo-left",
		Description: "Detects leftover TODO/FIXME/HACK/XXX comments in changed files",
		Severity:    rule.Info,
		Events:      []hooks.EventType{hooks.Stop},
		Pack:        Name,
	}
}

func (r TodoLeft) Evaluate(ctx *rule.Context) ([]rule.Finding, error) {
	m := r.Meta()
	var findings []rule.Finding

	for _, filePath := range changedFiles(ctx) {
		data, err := os.ReadFile(filePath)
		if err != nil {
			continue
		}

		matches := todoRE.FindAllString(string(data), -1)
		if len(matches) == 0 {
			continue
		}

		findings = append(findings, rule.Finding{
			RuleID:     m.ID,
			Message:    fmt.Sprintf("Found %d TODO/FIXME comment(s) in %s", len(matches), filePath),
			Severity:   m.Severity,
			FilePath:   filePath,
			Suggestion: "Review and resolve TODO comments before finalizing.",
		})
	}

	return findings, nil
}
