package universal

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/rule"
)

// Directories that are safe to rm -rf.
var safeRmTargets = map[string]bool{
	"node_modules":  true,
	"__pycache__":   true,
	".cache":        true,
	"dist":          true,
	"build":         true,
	".venv":         true,
	".pytest_cache": true,
}

// Protected git branches.
var protectedBranches = map[string]bool{
	"main":       true,
	"master":     true,
	"develop":    true,
	"production": true,
	"release":    true,
}

var (
	rmRfRE         = regexp.MustCompile(`(?i)\brm\s+-[^\s]*r[^\s]*f|\brm\s+-[^\s]*f[^\s]*r`)
	dropTableRE    = regexp.MustCompile(`(?i)\bDROP\s+TABLE\b`)
	dropDatabaseRE = regexp.MustCompile(`(?i)\bDROP\s+DATABASE\b`)
	gitResetHardRE = regexp.MustCompile(`(?i)\bgit\s+reset\s+--hard\b`)
	gitCleanRE     = regexp.MustCompile(`(?i)\bgit\s+clean\s+-fd\b`)

	// Catastrophic rm patterns, always an error.
	rmRootRE = regexp.MustCompile(`\brm\s+-[^\s]*r[^\s]*f\s+/(?:\s|$)|\brm\s+-[^\s]*f[^\s]*r\s+/(?:\s|$)`)
	rmHomeRE = regexp.MustCompile(`(?i)\brm\s+-[^\s]*(?:rf|fr)\s+(?:~|\$HOME)(?:\s|/|$)`)

	chmod777RE        = regexp.MustCompile(`(?i)\bchmod\s+(?:-R\s+)?777\b`)
	mkfsRE            = regexp.MustCompile(`(?i)\bmkfs\b`)
	ddZeroRE          = regexp.MustCompile(`(?i)\bdd\b.*\bif=/dev/zero\b`)
	forkBombRE        = regexp.MustCompile(`:\(\)\s*\{\s*:\|:\s*&\s*\}\s*;|\./:0\b`)
	dockerPruneRE     = regexp.MustCompile(`(?i)\bdocker\s+system\s+prune\s+-a\b.*--volumes\b|\bdocker\s+system\s+prune\b.*-a\b.*--volumes\b`)
	kubectlDeleteNsRE = regexp.MustCompile(`(?i)\bkubectl\s+delete\s+namespace\b`)
	gitBranchDeleteRE = regexp.MustCompile(`(?i)\bgit\s+branch\s+-D\s+(\S+)`)

	rmFlagsSplitRE = regexp.MustCompile(`\brm\s+-\S+\s+`)
	commandSplitRE = regexp.MustCompile(`[;&|]`)
)

// rmTargetsSafe reports whether every rm -rf target is a known safe
// directory such as node_modules or dist.
func rmTargetsSafe(command string) bool {
	parts := rmFlagsSplitRE.Split(command, -1)
	if len(parts) < 2 {
		return false
	}

	// Only the target portion counts, up to the next pipe or separator.
	targetStr := strings.TrimSpace(commandSplitRE.Split(parts[len(parts)-1], 2)[0])
	targets := strings.Fields(targetStr)
	if len(targets) == 0 {
		return false
	}

	for _, t := range targets {
		cleaned := strings.TrimRight(strings.Trim(t, `'"`), "/")
		if cleaned == "" || !safeRmTargets[filepath.Base(cleaned)] {
			return false
		}
	}
	return true
}

func isCatastrophicRm(command string) bool {
	return rmRootRE.MatchString(command) || rmHomeRE.MatchString(command)
}

// DestructiveCommands warns on shell commands that may cause data loss.
type DestructiveCommands struct{}

func (DestructiveCommands) Meta() rule.Meta {
	return rule.Meta{
		ID:          "no-destructive-commands",
		Description: "Warns on destructive commands like rm -rf, DROP TABLE, git reset --hard",
		Severity:    rule.Warning,
		Events:      []hooks.EventType{hooks.PreToolUse},
		Pack:        Name,
	}
}

func (r DestructiveCommands) Evaluate(ctx *rule.Context) ([]rule.Finding, error) {
	if ctx.ToolName != "Bash" {
		return nil, nil
	}

	command := ctx.Command()
	if command == "" {
		return nil, nil
	}

	m := r.Meta()
	var findings []rule.Finding
	add := func(severity rule.Severity, message, suggestion string) {
		findings = append(findings, rule.Finding{
			RuleID:     m.ID,
			Message:    message,
			Severity:   severity,
			Suggestion: suggestion,
		})
	}

	if rmRfRE.MatchString(command) && isCatastrophicRm(command) {
		add(rule.Error,
			"Catastrophic command detected: rm -rf on root or home directory",
			"This would destroy critical system or user files. Never run rm -rf on / or ~.")
	} else if rmRfRE.MatchString(command) && !rmTargetsSafe(command) {
		add(m.Severity,
			"Destructive command detected: rm -rf",
			"Double-check the target path before running rm -rf.")
	}

	if dropTableRE.MatchString(command) {
		add(m.Severity,
			"Destructive command detected: DROP TABLE",
			"Ensure you have a backup before dropping tables.")
	}

	if dropDatabaseRE.MatchString(command) {
		add(m.Severity,
			"Destructive command detected: DROP DATABASE",
			"Ensure you have a backup before dropping databases.")
	}

	if gitResetHardRE.MatchString(command) {
		add(m.Severity,
			"Destructive command detected: git reset --hard",
			"Consider using git stash instead of git reset --hard.")
	}

	if gitCleanRE.MatchString(command) {
		add(m.Severity,
			"Destructive command detected: git clean -fd",
			"Run git clean -n first to preview what will be removed.")
	}

	if chmod777RE.MatchString(command) {
		add(m.Severity,
			"Overly permissive command detected: chmod 777",
			"Use more restrictive permissions (e.g. chmod 755 for dirs, 644 for files).")
	}

	if mkfsRE.MatchString(command) {
		add(rule.Error,
			"Catastrophic command detected: mkfs (filesystem format)",
			"mkfs will destroy all data on the target device.")
	}

	if ddZeroRE.MatchString(command) {
		add(rule.Error,
			"Catastrophic command detected: dd if=/dev/zero (disk wipe)",
			"dd if=/dev/zero will overwrite data irreversibly.")
	}

	if forkBombRE.MatchString(command) {
		add(rule.Error,
			"Fork bomb detected",
			"This command will exhaust system resources.")
	}

	if dockerPruneRE.MatchString(command) {
		add(m.Severity,
			"Destructive command detected: docker system prune -a --volumes",
			"This removes all unused containers, images, networks, and volumes.")
	}

	if kubectlDeleteNsRE.MatchString(command) {
		add(m.Severity,
			"Destructive command detected: kubectl delete namespace",
			"Verify you are not targeting a production namespace.")
	}

	if branchMatch := gitBranchDeleteRE.FindStringSubmatch(command); branchMatch != nil {
		if protectedBranches[strings.ToLower(branchMatch[1])] {
			add(rule.Error,
				fmt.Sprintf("Destructive command detected: git branch -D %s", branchMatch[1]),
				fmt.Sprintf("Deleting the '%s' branch is dangerous. Use a feature branch instead.", branchMatch[1]))
		}
	}

	return findings, nil
}
