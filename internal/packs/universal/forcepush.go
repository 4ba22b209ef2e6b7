package universal

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/rule"
)

// The force flag and the branch must both appear after `git push` on the
// same line. --force also covers --force-with-lease here: a lease does not
// make rewriting main history acceptable.
var (
	gitPushRE    = regexp.MustCompile(`(?i)git\s+push\b`)
	forceFlagRE  = regexp.MustCompile(`(?i)(?:--force|-f\b)`)
	mainBranchRE = regexp.MustCompile(`(?i)\b(main|master)\b`)
)

// restOfPushLine returns the text following the first `git push` up to the
// end of that line, or "" when the command has no git push.
func restOfPushLine(command string) (string, bool) {
	loc := gitPushRE.FindStringIndex(command)
	if loc == nil {
		return "", false
	}
	rest := command[loc[1]:]
	if i := strings.IndexByte(rest, '\n'); i >= 0 {
		rest = rest[:i]
	}
	return rest, true
}

// ForcePush blocks force pushes to main or master.
type ForcePush struct{}

func (ForcePush) Meta() rule.Meta {
	return rule.Meta{
		ID:          "no-force-push",
		Description: "Prevents force-pushing to main or master branches",
		Severity:    rule.Error,
		Events:      []hooks.EventType{hooks.PreToolUse},
		Pack:        Name,
	}
}

func (r ForcePush) Evaluate(ctx *rule.Context) ([]rule.Finding, error) {
	if ctx.ToolName != "Bash" && ctx.ToolName != "bash" {
		return nil, nil
	}

	command := ctx.Command()
	if command == "" {
		return nil, nil
	}

	rest, ok := restOfPushLine(command)
	if !ok || !forceFlagRE.MatchString(rest) {
		return nil, nil
	}
	branchMatch := mainBranchRE.FindStringSubmatch(rest)
	if branchMatch == nil {
		return nil, nil
	}

	m := r.Meta()
	branch := branchMatch[1]
	return []rule.Finding{{
		RuleID:     m.ID,
		Message:    fmt.Sprintf("Force push to '%s' is blocked", branch),
		Severity:   m.Severity,
		Suggestion: fmt.Sprintf("Never force-push to %s. Push to a feature branch instead.", branch),
	}}, nil
}
