package universal

import (
	"fmt"
	"strings"

	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/rule"
)

const defaultLineLimit = 500

// MaxFileSize warns when a written or edited file exceeds a line-count
// threshold. It runs after the tool so the count reflects the file on disk.
type MaxFileSize struct{}

func (MaxFileSize) Meta() rule.Meta {
	return rule.Meta{
		ID:          "max-file-size",
		Description: "Warns when a file exceeds a configurable line-count limit after Write/Edit",
		Severity:    rule.Warning,
		Events:      []hooks.EventType{hooks.PostToolUse},
		Pack:        Name,
	}
}

func (r MaxFileSize) Evaluate(ctx *rule.Context) ([]rule.Finding, error) {
	if ctx.ToolName != "Write" && ctx.ToolName != "Edit" {
		return nil, nil
	}

	content := ctx.FileContent
	if content == "" {
		return nil, nil
	}

	m := r.Meta()
	limit := ctx.Settings(m.ID).Int("limit", defaultLineLimit)

	lineCount := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		lineCount++
	}

	if lineCount <= limit {
		return nil, nil
	}

	return []rule.Finding{{
		RuleID:     m.ID,
		Message:    fmt.Sprintf("File %s has %d lines (limit: %d)", ctx.FilePath(), lineCount, limit),
		Severity:   m.Severity,
		FilePath:   ctx.FilePath(),
		Suggestion: fmt.Sprintf("Consider splitting the file into smaller modules (limit is %d lines).", limit),
	}}, nil
}
