package golang

import (
	"fmt"
	"path/filepath"

	"golang.org/x/mod/modfile"

	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/rule"
)

// LocalReplace flags filesystem replace directives being written to go.mod.
// They point at paths that only exist on one machine.
type LocalReplace struct{}

func (LocalReplace) Meta() rule.Meta {
	return rule.Meta{
		ID:          "go-local-replace",
		Description: "Flags local filesystem replace directives in go.mod",
		Severity:    rule.Warning,
		Events:      []hooks.EventType{hooks.PreToolUse},
		Pack:        Name,
	}
}

func (r LocalReplace) Evaluate(ctx *rule.Context) ([]rule.Finding, error) {
	if ctx.ToolName != "Write" && ctx.ToolName != "Edit" {
		return nil, nil
	}

	filePath := ctx.FilePath()
	if filepath.Base(filePath) != "go.mod" {
		return nil, nil
	}

	content := ctx.Content()
	if content == "" {
		return nil, nil
	}

	mf, err := modfile.Parse("go.mod", []byte(content), nil)
	if err != nil {
		// Partial edits often do not parse; that is not this rule's concern.
		return nil, nil
	}

	m := r.Meta()
	var findings []rule.Finding
	for _, rep := range mf.Replace {
		if rep.New.Version != "" || !modfile.IsDirectoryPath(rep.New.Path) {
			continue
		}
		line := 0
		if rep.Syntax != nil {
			line = rep.Syntax.Start.Line
		}
		findings = append(findings, rule.Finding{
			RuleID:     m.ID,
			Message:    fmt.Sprintf("Local replace directive for %s points at %s", rep.Old.Path, rep.New.Path),
			Severity:   m.Severity,
			FilePath:   filePath,
			Line:       line,
			Suggestion: "Drop the replace before committing, or pin a published version.",
		})
	}

	return findings, nil
}
