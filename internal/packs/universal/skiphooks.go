package universal

import (
	"regexp"

	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/rule"
)

var (
	noVerifyRE  = regexp.MustCompile(`(?i)\bgit\s+commit\b.*--no-verify\b`)
	noGpgSignRE = regexp.MustCompile(`(?i)\bgit\s+commit\b.*--no-gpg-sign\b`)
)

// SkipHooks warns on git commits that skip pre-commit hooks.
type SkipHooks struct{}

func (SkipHooks) Meta() rule.Meta {
	return rule.Meta{
		ID:          "no-skip-hooks",
		Description: "Warns on git commit --no-verify or --no-gpg-sign",
		Severity:    rule.Warning,
		Events:      []hooks.EventType{hooks.PreToolUse},
		Pack:        Name,
	}
}

func (r SkipHooks) Evaluate(ctx *rule.Context) ([]rule.Finding, error) {
	if ctx.ToolName != "Bash" {
		return nil, nil
	}

	command := ctx.Command()
	if command == "" {
		return nil, nil
	}

	m := r.Meta()
	var findings []rule.Finding

	if noVerifyRE.MatchString(command) {
		findings = append(findings, rule.Finding{
			RuleID:     m.ID,
			Message:    "git commit --no-verify skips pre-commit hooks",
			Severity:   m.Severity,
			Suggestion: "Remove --no-verify to run pre-commit hooks. Fix hook issues instead of bypassing them.",
		})
	}

	if noGpgSignRE.MatchString(command) {
		findings = append(findings, rule.Finding{
			RuleID:     m.ID,
			Message:    "git commit --no-gpg-sign skips commit signing",
			Severity:   m.Severity,
			Suggestion: "Remove --no-gpg-sign if your project requires signed commits.",
		})
	}

	return findings, nil
}
