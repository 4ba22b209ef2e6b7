package universal

import (
	"fmt"

	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/rule"
)

// PushToMain warns on direct pushes to main or master. Force pushes are
// left to no-force-push so the two rules never double-report.
type PushToMain struct{}

func (PushToMain) Meta() rule.Meta {
	return rule.Meta{
		ID:          "no-push-to-main",
		Description: "Warns on direct pushes to main or master",
		Severity:    rule.Warning,
		Events:      []hooks.EventType{hooks.PreToolUse},
		Pack:        Name,
	}
}

func (r PushToMain) Evaluate(ctx *rule.Context) ([]rule.Finding, error) {
	if ctx.ToolName != "Bash" && ctx.ToolName != "bash" {
		return nil, nil
	}

	command := ctx.Command()
	if command == "" {
		return nil, nil
	}

	rest, ok := restOfPushLine(command)
	if !ok || forceFlagRE.MatchString(rest) {
		return nil, nil
	}
	branchMatch := mainBranchRE.FindStringSubmatch(rest)
	if branchMatch == nil {
		return nil, nil
	}

	m := r.Meta()
	return []rule.Finding{{
		RuleID:     m.ID,
		Message:    fmt.Sprintf("Direct push to '%s' detected", branchMatch[1]),
		Severity:   m.Severity,
		Suggestion: "Open a pull request from a feature branch instead of pushing directly.",
	}}, nil
}
