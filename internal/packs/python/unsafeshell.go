package python

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/rule"
)

var (
	osShellRE = regexp.MustCompile(`\bos\.(system|popen)\s*\(`)

	// The negated class crosses newlines, so a call split over several
	// lines still matches.
	subprocessShellRE = regexp.MustCompile(`\bsubprocess\.(call|run|Popen)\s*\([^)]*shell\s*=\s*True`)
)

// UnsafeShell detects unsafe shell execution in Python code being written.
type UnsafeShell struct{}

func (UnsafeShell) Meta() rule.Meta {
	return rule.Meta{
		ID:          "no-unsafe-shell",
		Description: "Prevents unsafe shell execution via subprocess with shell=True",
		Severity:    rule.Error,
		Events:      []hooks.EventType{hooks.PreToolUse},
		Pack:        Name,
	}
}

func (r UnsafeShell) Evaluate(ctx *rule.Context) ([]rule.Finding, error) {
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
	allowShellTrue := ctx.Settings(m.ID).Bool("allow_shell_true", false)

	var findings []rule.Finding

	for i, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimLeft(line, " \t"), "#") {
			continue
		}
		if osShellRE.MatchString(line) {
			findings = append(findings, rule.Finding{
				RuleID:     m.ID,
				Message:    "Unsafe shell execution detected",
				Severity:   m.Severity,
				FilePath:   filePath,
				Line:       i + 1,
				Suggestion: "Use subprocess.run() with a list of arguments instead.",
			})
		}
	}

	if !allowShellTrue {
		for _, loc := range subprocessShellRE.FindAllStringSubmatchIndex(content, -1) {
			lineNum := strings.Count(content[:loc[0]], "\n") + 1
			fn := content[loc[2]:loc[3]]
			findings = append(findings, rule.Finding{
				RuleID:     m.ID,
				Message:    fmt.Sprintf("Unsafe shell execution: subprocess.%s() with shell=True", fn),
				Severity:   m.Severity,
				FilePath:   filePath,
				Line:       lineNum,
				Suggestion: "Pass a list of arguments instead of a shell string.",
			})
		}
	}

	return findings, nil
}
