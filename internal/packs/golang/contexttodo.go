package golang

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/rule"
)

var contextTODORE = regexp.MustCompile(`\bcontext\.TODO\(\)`)

// ContextTODO flags context.TODO() left behind after an edit.
type ContextTODO struct{}

func (ContextTODO) Meta() rule.Meta {
	return rule.Meta{
		ID:          "go-context-todo",
		Description: "Flags context.TODO() placeholders in committed code",
		Severity:    rule.Info,
		Events:      []hooks.EventType{hooks.PostToolUse},
		Pack:        Name,
	}
}

func (r ContextTODO) Evaluate(ctx *rule.Context) ([]rule.Finding, error) {
	if ctx.ToolName != "Write" && ctx.ToolName != "Edit" {
		return nil, nil
	}

	filePath := ctx.FilePath()
	if !strings.HasSuffix(filePath, ".go") || isGoTestFile(filePath) {
		return nil, nil
	}

	content := ctx.FileContent
	if content == "" {
		return nil, nil
	}

	m := r.Meta()
	var findings []rule.Finding
	for _, loc := range contextTODORE.FindAllStringIndex(content, -1) {
		line := strings.Count(content[:loc[0]], "\n") + 1
		findings = append(findings, rule.Finding{
			RuleID:     m.ID,
			Message:    fmt.Sprintf("context.TODO() at line %d", line),
			Severity:   m.Severity,
			FilePath:   filePath,
			Line:       line,
			Suggestion: "Thread a real context.Context through the call path.",
		})
	}

	return findings, nil
}
