package python

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/rule"
)

var wildcardImportRE = regexp.MustCompile(`^\s*from\s+\S+\s+import\s+\*`)

// WildcardImport detects from module import * statements.
type WildcardImport struct{}

func (WildcardImport) Meta() rule.Meta {
	return rule.Meta{
		ID:          "no-wildcard-import",
		Description: "Prevents wildcard imports that pollute the namespace",
		Severity:    rule.Warning,
		Events:      []hooks.EventType{hooks.PreToolUse},
		Pack:        Name,
	}
}

func (r WildcardImport) Evaluate(ctx *rule.Context) ([]rule.Finding, error) {
	if ctx.ToolName != "Write" && ctx.ToolName != "Edit" {
		return nil, nil
	}

	filePath := ctx.FilePath()
	if !strings.HasSuffix(filePath, ".py") {
		return nil, nil
	}

	content := ctx.Content()
	if content == "" {
		return nil, nil
	}

	m := r.Meta()
	allowIn := ctx.Settings(m.ID).StringSlice("allow_in")
	if allowIn == nil {
		allowIn = []string{"__init__.py"}
	}
	basename := filepath.Base(filePath)
	for _, allowed := range allowIn {
		if basename == allowed {
			return nil, nil
		}
	}

	var findings []rule.Finding
	for i, line := range strings.Split(content, "\n") {
		if wildcardImportRE.MatchString(line) {
			findings = append(findings, rule.Finding{
				RuleID:     m.ID,
				Message:    "Wildcard import (from ... import *) pollutes namespace",
				Severity:   m.Severity,
				FilePath:   filePath,
				Line:       i + 1,
				Suggestion: "Import specific names instead of using import *.",
			})
		}
	}

	return findings, nil
}
