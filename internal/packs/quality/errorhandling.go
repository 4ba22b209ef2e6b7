package quality

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/rule"
)

var (
	// Python error handling patterns.
	pyTryRE       = regexp.MustCompile(`(?m)^\s*try\s*:`)
	pyExceptRE    = regexp.MustCompile(`(?m)^\s*except\b`)
	pyNoneCheckRE = regexp.MustCompile(`\bif\s+\w+\s+is\s+(?:not\s+)?None\b`)

	// JS/TS error handling patterns.
	jsTryRE           = regexp.MustCompile(`\btry\s*\{`)
	jsCatchRE         = regexp.MustCompile(`\.catch\s*\(`)
	jsErrorBoundaryRE = regexp.MustCompile(`<ErrorBoundary\b`)

	testPathRE = regexp.MustCompile(`(?i)test[_/]|spec[_/]|_test\.|\.test\.|\.spec\.`)
)

func countErrorHandling(content, filePath string) int {
	count := 0
	if strings.HasSuffix(filePath, ".py") {
		count += len(pyTryRE.FindAllString(content, -1))
		count += len(pyExceptRE.FindAllString(content, -1))
		count += len(pyNoneCheckRE.FindAllString(content, -1))
	} else {
		count += len(jsTryRE.FindAllString(content, -1))
		count += len(jsCatchRE.FindAllString(content, -1))
		count += len(jsErrorBoundaryRE.FindAllString(content, -1))
	}
	return count
}

func isCodeFile(path string) bool {
	for _, ext := range []string{".py", ".js", ".jsx", ".ts", ".tsx"} {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// ErrorHandlingRemoval compares the incoming content of a Write or Edit with
// the file on disk and warns when every error handling pattern disappears.
type ErrorHandlingRemoval struct{}

func (ErrorHandlingRemoval) Meta() rule.Meta {
	return rule.Meta{
		ID:          "no-error-handling-removal",
		Description: "Warns when error handling patterns (try/except, .catch) are removed",
		Severity:    rule.Warning,
		Events:      []hooks.EventType{hooks.PreToolUse},
		Pack:        Name,
	}
}

func (r ErrorHandlingRemoval) Evaluate(ctx *rule.Context) ([]rule.Finding, error) {
	if ctx.ToolName != "Write" && ctx.ToolName != "Edit" {
		return nil, nil
	}

	filePath := ctx.FilePath()
	if filePath == "" || !isCodeFile(filePath) || testPathRE.MatchString(filePath) {
		return nil, nil
	}

	newContent := ctx.FileContent
	if newContent == "" {
		newContent = ctx.Content()
	}
	if newContent == "" {
		return nil, nil
	}

	oldContent := ctx.FileContentBefore
	if oldContent == "" {
		return nil, nil
	}

	oldCount := countErrorHandling(oldContent, filePath)
	newCount := countErrorHandling(newContent, filePath)
	if oldCount == 0 || newCount > 0 {
		return nil, nil
	}

	m := r.Meta()
	return []rule.Finding{{
		RuleID:     m.ID,
		Message:    fmt.Sprintf("Error handling removed: %d pattern(s) in previous version, 0 in new version", oldCount),
		Severity:   m.Severity,
		FilePath:   filePath,
		Suggestion: "Verify that error handling removal is intentional. Consider keeping try/except or .catch() blocks.",
	}}, nil
}
