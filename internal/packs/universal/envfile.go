package universal

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/rule"
)

// Template suffixes that are safe to write.
var envSafeSuffixes = []string{".example", ".template", ".sample"}

var envFileRE = regexp.MustCompile(`(^|/)\.env(\.local|\.production|\.staging|\.development)?$`)

// EnvCommit blocks writes to .env files that may contain real secrets.
type EnvCommit struct{}

func (EnvCommit) Meta() rule.Meta {
	return rule.Meta{
		ID:          "no-env-commit",
		Description: "Prevents writing to .env files that may contain secrets",
		Severity:    rule.Error,
		Events:      []hooks.EventType{hooks.PreToolUse},
		Pack:        Name,
	}
}

func (r EnvCommit) Evaluate(ctx *rule.Context) ([]rule.Finding, error) {
	if ctx.ToolName != "Write" && ctx.ToolName != "Edit" {
		return nil, nil
	}

	filePath := ctx.FilePath()
	if filePath == "" {
		return nil, nil
	}

	base := filepath.Base(filePath)
	for _, suffix := range envSafeSuffixes {
		if strings.HasSuffix(base, suffix) {
			return nil, nil
		}
	}

	if envFileRE.MatchString(filepath.ToSlash(filePath)) {
		m := r.Meta()
		return []rule.Finding{{
			RuleID:     m.ID,
			Message:    fmt.Sprintf("Writing to env file is blocked: %s", filePath),
			Severity:   m.Severity,
			FilePath:   filePath,
			Suggestion: "Use .env.example for templates; keep real .env out of version control.",
		}}, nil
	}

	return nil, nil
}
