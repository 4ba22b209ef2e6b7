package golang

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/rule"
)

var panicCallRE = regexp.MustCompile(`\bpanic\s*\(`)

// NoPanic flags panic calls in non-test Go code.
type NoPanic struct{}

func (NoPanic) Meta() rule.Meta {
	return rule.Meta{
		ID:          "go-no-panic",
		Description: "Discourages panic in library and service code",
		Severity:    rule.Warning,
		Events:      []hooks.EventType{hooks.PreToolUse},
		Pack:        Name,
	}
}

func (r NoPanic) Evaluate(ctx *rule.Context) ([]rule.Finding, error) {
	if ctx.ToolName != "Write" && ctx.ToolName != "Edit" {
		return nil, nil
	}

	filePath := ctx.FilePath()
	if !strings.HasSuffix(filePath, ".go") || isGoTestFile(filePath) {
		return nil, nil
	}

	content := ctx.Content()
	if content == "" {
		return nil, nil
	}

	m := r.Meta()
	allowIn := ctx.Settings(m.ID).StringSlice("allow_in")
	if allowIn == nil {
		allowIn = []string{"main.go"}
	}
	basename := filepath.Base(filePath)
	for _, allowed := range allowIn {
		if basename == allowed {
			return nil, nil
		}
	}

	var findings []rule.Finding
	for i, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "//") {
			continue
		}
		if panicCallRE.MatchString(line) {
			findings = append(findings, rule.Finding{
				RuleID:     m.ID,
				Message:    fmt.Sprintf("panic() call in %s", basename),
				Severity:   m.Severity,
				FilePath:   filePath,
				Line:       i + 1,
				Suggestion: "Return an error instead of panicking.",
			})
		}
	}

	return findings, nil
}
