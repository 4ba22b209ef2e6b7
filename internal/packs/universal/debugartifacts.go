package universal

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/rule"
)

var (
	consoleLogRE = regexp.MustCompile(`\bconsole\.log\(`)
	debuggerRE   = regexp.MustCompile(`\bdebugger\b`)
	printRE      = regexp.MustCompile(`\bprint\(`)
	pdbRE        = regexp.MustCompile(`\bpdb\.set_trace\(\)`)
	breakpointRE = regexp.MustCompile(`\bbreakpoint\(\)`)
)

// Python files where print() is legitimate.
var printAllowedNames = map[string]bool{
	"cli.py":      true,
	"__main__.py": true,
	"manage.py":   true,
	"setup.py":    true,
}

func allowsPrint(path, content string) bool {
	if printAllowedNames[strings.ToLower(filepath.Base(path))] {
		return true
	}
	return strings.Contains(content, "if __name__")
}

// DebugArtifacts warns about debug statements left in changed files at
// session end.
type DebugArtifacts struct{}

func (DebugArtifacts) Meta() rule.Meta {
	return rule.Meta{
		ID:          "no-debug-artifacts",
		Description: "Detects leftover debug statements (console.log, print, debugger, breakpoint)",
		Severity:    rule.Warning,
		Events:      []hooks.EventType{hooks.Stop},
		Pack:        Name,
	}
}

func (r DebugArtifacts) Evaluate(ctx *rule.Context) ([]rule.Finding, error) {
	m := r.Meta()
	var findings []rule.Finding

	for _, filePath := range changedFiles(ctx) {
		if isTestPath(filePath) {
			continue
		}

		data, err := os.ReadFile(filePath)
		if err != nil {
			continue
		}
		content := string(data)

		var artifacts []string
		switch filepath.Ext(filePath) {
		case ".js", ".ts", ".tsx":
			if consoleLogRE.MatchString(content) {
				artifacts = append(artifacts, "console.log()")
			}
			if debuggerRE.MatchString(content) {
				artifacts = append(artifacts, "debugger")
			}
		case ".py":
			if printRE.MatchString(content) && !allowsPrint(filePath, content) {
				artifacts = append(artifacts, "print()")
			}
			if pdbRE.MatchString(content) {
				artifacts = append(artifacts, "pdb.set_trace()")
			}
			if breakpointRE.MatchString(content) {
				artifacts = append(artifacts, "breakpoint()")
			}
		}

		if len(artifacts) > 0 {
			findings = append(findings, rule.Finding{
				RuleID:     m.ID,
				Message:    fmt.Sprintf("Debug artifacts in %s: %s", filePath, strings.Join(artifacts, ", ")),
				Severity:   m.Severity,
				FilePath:   filePath,
				Suggestion: "Remove debug statements before finalizing.",
			})
		}
	}

	return findings, nil
}
