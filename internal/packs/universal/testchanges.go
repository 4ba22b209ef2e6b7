package universal

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/rule"
)

var sourceExtensions = map[string]bool{
	".py":  true,
	".ts":  true,
	".tsx": true,
	".js":  true,
	".jsx": true,
}

// File name patterns to skip (migrations, configs, etc.).
var sourceSkipPatterns = []string{"migration", "alembic", "config", "settings", "conftest"}

func isSourceFile(path string) bool {
	ext := filepath.Ext(path)
	if !sourceExtensions[ext] {
		return false
	}
	stem := strings.ToLower(strings.TrimSuffix(filepath.Base(path), ext))
	for _, pattern := range sourceSkipPatterns {
		if strings.Contains(stem, pattern) {
			return false
		}
	}
	return true
}

// TestWithChanges warns when source files change without corresponding test
// changes.
type TestWithChanges struct{}

func (TestWithChanges) Meta() rule.Meta {
	return rule.Meta{
		ID:          "test-with-changes",
		Description: "Warns when source files are changed but no test files were updated",
		Severity:    rule.Warning,
		Events:      []hooks.EventType{hooks.Stop},
		Pack:        Name,
	}
}

func (r TestWithChanges) Evaluate(ctx *rule.Context) ([]rule.Finding, error) {
	files := changedFiles(ctx)
	if len(files) == 0 {
		return nil, nil
	}

	sourceCount := 0
	testCount := 0
	for _, f := range files {
		if isTestPath(f) {
			testCount++
		} else if isSourceFile(f) {
			sourceCount++
		}
	}

	if sourceCount == 0 || testCount > 0 {
		return nil, nil
	}

	m := r.Meta()
	return []rule.Finding{{
		RuleID:     m.ID,
		Message:    fmt.Sprintf("Changed %d source file(s) but no test files were updated", sourceCount),
		Severity:   m.Severity,
		Suggestion: "Consider adding or updating tests for the changed source files.",
	}}, nil
}
