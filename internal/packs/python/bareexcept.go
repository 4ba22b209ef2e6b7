package python

import (
	"regexp"
	"strings"

	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/rule"
)

var bareExceptRE = regexp.MustCompile(`^\s*except\s*:`)

// BareExcept detects bare except: clauses, which swallow SystemExit and
// KeyboardInterrupt along with everything else.
type BareExcept struct{}

func (BareExcept) Meta() rule.Meta {
	return rule.Meta{
		ID:          "no-bare-except",
		Description: "Prevents bare except: clauses that catch all exceptions",
		Severity:    rule.Warning,
		Events:      []hooks.EventType{hooks.PreToolUse},
		Pack:        Name,
	}
}

func (r BareExcept) Evaluate(ctx *rule.Context) ([]rule.Finding, error) {
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
	allowReraise := ctx.Settings(m.ID).Bool("allow_reraise", true)

	var findings []rule.Finding
	lines := strings.Split(content, "\n")

	for i, line := range lines {
		if !bareExceptRE.MatchString(line) {
			continue
		}

		// A block that immediately re-raises is a legitimate pattern.
		if allowReraise && blockReraises(lines[i+1:], indentWidth(line)) {
			continue
		}

		findings = append(findings, rule.Finding{
			RuleID:     m.ID,
			Message:    "Bare except: catches SystemExit and KeyboardInterrupt",
			Severity:   m.Severity,
			FilePath:   filePath,
			Line:       i + 1,
			Suggestion: "Use 'except Exception:' instead of bare 'except:'.",
		})
	}

	return findings, nil
}

// blockReraises scans the lines following an except: for a bare raise,
// stopping once indentation returns to the except level.
func blockReraises(following []string, indent int) bool {
	for _, line := range following {
		stripped := strings.TrimSpace(line)
		if stripped == "" || strings.HasPrefix(stripped, "#") {
			continue
		}
		if indentWidth(line) <= indent {
			return false
		}
		if stripped == "raise" || strings.HasPrefix(stripped, "raise ") {
			return true
		}
	}
	return false
}
