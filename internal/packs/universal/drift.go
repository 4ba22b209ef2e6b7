package universal

import (
	"fmt"
	"strings"

	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/rule"
)

var testRunners = []string{"pytest", "vitest", "jest", "npm test", "make test"}

const defaultDriftThreshold = 10

// sessionInt reads an integer out of the session state. Values round-trip
// through JSON, so numbers may arrive as float64.
func sessionInt(state map[string]interface{}, key string, def int) int {
	switch v := state[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

func sessionBool(state map[string]interface{}, key string, def bool) bool {
	if v, ok := state[key].(bool); ok {
		return v
	}
	return def
}

// DriftDetector warns when many files are edited without running tests.
// The edit counter lives in session state and resets on every test run.
type DriftDetector struct{}

func (DriftDetector) Meta() rule.Meta {
	return rule.Meta{
		ID:          "drift-detector",
		Description: "Warns when many edits happen without running tests",
		Severity:    rule.Warning,
		Events:      []hooks.EventType{hooks.PostToolUse},
		Pack:        Name,
	}
}

func (r DriftDetector) Evaluate(ctx *rule.Context) ([]rule.Finding, error) {
	if ctx.Session == nil {
		ctx.Session = map[string]interface{}{}
	}
	state := ctx.Session

	m := r.Meta()
	threshold := ctx.Settings(m.ID).Int("threshold", defaultDriftThreshold)

	switch ctx.ToolName {
	case "Bash", "bash":
		command := ctx.Command()
		for _, runner := range testRunners {
			if strings.Contains(command, runner) {
				state["files_edited"] = 0
				state["last_test_run"] = true
				return nil, nil
			}
		}
	case "Write", "Edit", "write", "edit":
		state["files_edited"] = sessionInt(state, "files_edited", 0) + 1
		state["last_test_run"] = false
	}

	filesEdited := sessionInt(state, "files_edited", 0)
	lastTestRun := sessionBool(state, "last_test_run", true)

	if filesEdited <= threshold || lastTestRun {
		return nil, nil
	}

	return []rule.Finding{{
		RuleID:     m.ID,
		Message:    fmt.Sprintf("Edited %d files without running tests", filesEdited),
		Severity:   m.Severity,
		Suggestion: "Consider running your test suite to catch regressions early.",
	}}, nil
}
