// Package universal holds the stack-independent rules that apply to every
// project: credential hygiene, git safety, destructive command detection,
// and session-wide quality checks.
package universal

import (
	"path/filepath"
	"strings"

	"github.com/ihavespoons/railguard/internal/rule"
)

// Name is the pack identifier used in configuration.
const Name = "universal"

// Rules returns the universal pack in evaluation order: pre-action rules
// first, then post-action, then session-end rules.
func Rules() []rule.Rule {
	return []rule.Rule{
		Secrets{},
		EnvCommit{},
		ForcePush{},
		PushToMain{},
		DestructiveCommands{},
		SkipHooks{},
		DependencyHygiene{},
		TestWeakening{},
		GitCheckpoint{},
		MaxFileSize{},
		DriftDetector{},
		TokenBudget{},
		DebugArtifacts{},
		TodoLeft{},
		TestWithChanges{},
	}
}

// changedFiles returns the session's tracked changed-file paths. The list
// round-trips through JSON, so entries arrive as interface values.
func changedFiles(ctx *rule.Context) []string {
	raw, ok := ctx.Session["changed_files"].([]interface{})
	if !ok {
		return nil
	}
	files := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			files = append(files, s)
		}
	}
	return files
}

// isTestPath reports whether a path names a test file or lives under a test
// directory.
func isTestPath(path string) bool {
	if strings.Contains(strings.ToLower(filepath.Base(path)), "test") {
		return true
	}
	for _, part := range strings.Split(strings.ToLower(filepath.ToSlash(path)), "/") {
		switch part {
		case "tests", "test", "__tests__":
			return true
		}
	}
	return false
}
