package python

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/rule"
)

var (
	asyncDefRE = regexp.MustCompile(`(?m)^(\s*)async\s+def\s+(\w+)\s*\(`)
	awaitRE    = regexp.MustCompile(`\bawait\b`)
)

var skipDecorators = map[string]bool{
	"property":       true,
	"override":       true,
	"abstractmethod": true,
}

var skipBodies = map[string]bool{
	"pass":                      true,
	"...":                       true,
	"raise NotImplementedError": true,
}

func isPyTestFile(filePath string) bool {
	lower := strings.ToLower(filePath)
	parts := strings.Split(lower, "/")
	basename := parts[len(parts)-1]
	return strings.HasPrefix(basename, "test_") ||
		strings.HasPrefix(basename, "conftest") ||
		strings.Contains(lower, "/test")
}

// UnnecessaryAsync flags async def functions whose body never awaits.
type UnnecessaryAsync struct{}

func (UnnecessaryAsync) Meta() rule.Meta {
	return rule.Meta{
		ID:          "no-unnecessary-async",
		Description: "Flags async functions that don't use await",
		Severity:    rule.Info,
		Events:      []hooks.EventType{hooks.PostToolUse},
		Pack:        Name,
	}
}

func (r UnnecessaryAsync) Evaluate(ctx *rule.Context) ([]rule.Finding, error) {
	if ctx.ToolName != "Write" && ctx.ToolName != "Edit" {
		return nil, nil
	}

	filePath := ctx.FilePath()
	if !strings.HasSuffix(filePath, ".py") || isPyTestFile(filePath) {
		return nil, nil
	}

	content := ctx.Content()
	if content == "" {
		return nil, nil
	}

	m := r.Meta()
	allSkip := make(map[string]bool, len(skipDecorators))
	for dec := range skipDecorators {
		allSkip[dec] = true
	}
	for _, dec := range ctx.Settings(m.ID).StringSlice("ignore_decorators") {
		allSkip[dec] = true
	}

	var findings []rule.Finding
	lines := strings.Split(content, "\n")

	for _, loc := range asyncDefRE.FindAllStringSubmatchIndex(content, -1) {
		funcIndent := loc[3] - loc[2]
		funcName := content[loc[4]:loc[5]]
		funcLine := strings.Count(content[:loc[0]], "\n")

		if hasSkipDecorator(lines, funcLine-1, allSkip) {
			continue
		}

		var bodyLines []string
		for _, line := range lines[funcLine+1:] {
			if strings.TrimSpace(line) == "" {
				bodyLines = append(bodyLines, line)
				continue
			}
			if indentWidth(line) <= funcIndent {
				break
			}
			bodyLines = append(bodyLines, line)
		}
		bodyText := strings.Join(bodyLines, "\n")

		if skipBodies[strings.TrimSpace(bodyText)] {
			continue
		}

		if awaitRE.MatchString(bodyText) {
			continue
		}

		findings = append(findings, rule.Finding{
			RuleID:     m.ID,
			Message:    fmt.Sprintf("async def %s() has no await expression", funcName),
			Severity:   m.Severity,
			FilePath:   filePath,
			Line:       funcLine + 1,
			Suggestion: fmt.Sprintf("Remove async from %s() or add await expressions.", funcName),
		})
	}

	return findings, nil
}

// hasSkipDecorator walks upward from the line above the def, through
// decorators, blanks, and comments, looking for a decorator that marks the
// function as intentionally async-shaped.
func hasSkipDecorator(lines []string, start int, skip map[string]bool) bool {
	for i := start; i >= 0; i-- {
		dline := strings.TrimSpace(lines[i])
		switch {
		case strings.HasPrefix(dline, "@"):
			name := strings.SplitN(dline[1:], "(", 2)[0]
			if idx := strings.LastIndex(name, "."); idx >= 0 {
				name = name[idx+1:]
			}
			if skip[name] {
				return true
			}
		case dline == "" || strings.HasPrefix(dline, "#"):
		default:
			return false
		}
	}
	return false
}
