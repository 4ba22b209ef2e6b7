package universal

import (
	"fmt"
	"regexp"
	"time"

	"github.com/ihavespoons/railguard/internal/gitutil"
	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/rule"
)

const checkpointPrefix = "railguard-checkpoint"

// Destructive command patterns that trigger checkpointing by default.
var defaultTriggerREs = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\brm\s+-[^\s]*r[^\s]*f|\brm\s+-[^\s]*f[^\s]*r`),
	regexp.MustCompile(`(?i)\bgit\s+reset\s+--hard\b`),
	regexp.MustCompile(`(?i)\bgit\s+checkout\s+\.(?:\s|$)`),
	regexp.MustCompile(`(?i)\bgit\s+clean\s+-fd\b`),
	regexp.MustCompile(`(?i)\bDROP\s+TABLE\b`),
	regexp.MustCompile(`(?i)\bDROP\s+DATABASE\b`),
}

// GitCheckpoint creates a git safety checkpoint before destructive operations.
//
// It runs `git stash push` when a destructive command is detected, preserving
// uncommitted work. Disabled by default, opt in via config.
//
// Config options:
//
//	enabled: false (default)
//	cleanup_hours: 24
//	triggers: [list of regex patterns]
type GitCheckpoint struct{}

func (GitCheckpoint) Meta() rule.Meta {
	return rule.Meta{
		ID:          "git-checkpoint",
		Description: "Creates a git safety checkpoint before destructive operations",
		Severity:    rule.Info,
		Events:      []hooks.EventType{hooks.PreToolUse, hooks.Stop},
		Pack:        Name,
	}
}

func (r GitCheckpoint) Evaluate(ctx *rule.Context) ([]rule.Finding, error) {
	if ctx.Event == hooks.Stop {
		return r.cleanup(ctx), nil
	}
	return r.checkpoint(ctx), nil
}

func (r GitCheckpoint) checkpoint(ctx *rule.Context) []rule.Finding {
	if ctx.ToolName != "Bash" {
		return nil
	}

	command := ctx.Command()
	if command == "" {
		return nil
	}

	m := r.Meta()
	if !anyMatch(triggerPatterns(ctx.Settings(m.ID)), command) {
		return nil
	}

	// Only checkpoint inside a git repo with uncommitted changes.
	if !gitutil.IsRepo(ctx.ProjectDir) || !gitutil.HasChanges(ctx.ProjectDir) {
		return nil
	}

	message := fmt.Sprintf("%s-%d", checkpointPrefix, time.Now().Unix())
	if !gitutil.StashPush(ctx.ProjectDir, message) {
		return nil
	}

	return []rule.Finding{{
		RuleID:     m.ID,
		Message:    "Created git checkpoint before destructive operation. Use `git stash pop` to recover if needed.",
		Severity:   m.Severity,
		Suggestion: fmt.Sprintf("Checkpoint saved as: %s", message),
	}}
}

// cleanup drops old checkpoints on the Stop event.
func (r GitCheckpoint) cleanup(ctx *rule.Context) []rule.Finding {
	m := r.Meta()
	cleanupHours := ctx.Settings(m.ID).Int("cleanup_hours", 24)

	if !gitutil.IsRepo(ctx.ProjectDir) {
		return nil
	}

	removed := gitutil.CleanStashes(ctx.ProjectDir, checkpointPrefix, time.Duration(cleanupHours)*time.Hour)
	if removed == 0 {
		return nil
	}

	return []rule.Finding{{
		RuleID:   m.ID,
		Message:  fmt.Sprintf("Cleaned up %d old checkpoint(s) (older than %dh).", removed, cleanupHours),
		Severity: rule.Info,
	}}
}

func triggerPatterns(settings rule.Settings) []*regexp.Regexp {
	custom := settings.StringSlice("triggers")
	if len(custom) == 0 {
		return defaultTriggerREs
	}
	exprs := make([]string, 0, len(custom))
	for _, t := range custom {
		exprs = append(exprs, "(?i)"+t)
	}
	return rule.Patterns(exprs)
}

func anyMatch(patterns []*regexp.Regexp, s string) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}
