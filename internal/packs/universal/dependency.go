package universal

import (
	"regexp"

	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/rule"
)

var (
	// pip install <something>, but not `pip install -e .` (local dev) or
	// `pip install -r` (lockfile).
	pipInstallRE      = regexp.MustCompile(`(?i)\bpip3?\s+install\b`)
	pipLocalDevRE     = regexp.MustCompile(`(?i)\bpip3?\s+install\s+-e\s+\.`)
	pipRequirementsRE = regexp.MustCompile(`(?i)\bpip3?\s+install\s+-r\s+`)

	// npm install <package>, but allow bare `npm install` and `npm ci`.
	// The char class keeps flags like -g or --save-dev from matching.
	npmInstallPkgRE = regexp.MustCompile(`(?i)\bnpm\s+install\s+[a-zA-Z@]`)
)

// DependencyHygiene warns on ad-hoc dependency installation and steers
// toward lockfile-based tools.
type DependencyHygiene struct{}

func (DependencyHygiene) Meta() rule.Meta {
	return rule.Meta{
		ID:          "dependency-hygiene",
		Description: "Suggests using lockfile-based tools instead of ad-hoc pip/npm install",
		Severity:    rule.Warning,
		Events:      []hooks.EventType{hooks.PreToolUse},
		Pack:        Name,
	}
}

func (r DependencyHygiene) Evaluate(ctx *rule.Context) ([]rule.Finding, error) {
	if ctx.ToolName != "Bash" {
		return nil, nil
	}

	command := ctx.Command()
	if command == "" {
		return nil, nil
	}

	m := r.Meta()
	var findings []rule.Finding

	if pipInstallRE.MatchString(command) && !pipLocalDevRE.MatchString(command) && !pipRequirementsRE.MatchString(command) {
		findings = append(findings, rule.Finding{
			RuleID:     m.ID,
			Message:    "Ad-hoc pip install detected",
			Severity:   m.Severity,
			Suggestion: "Use poetry/uv add to keep dependencies in a lockfile.",
		})
	}

	if npmInstallPkgRE.MatchString(command) {
		findings = append(findings, rule.Finding{
			RuleID:     m.ID,
			Message:    "Ad-hoc npm install <package> detected",
			Severity:   m.Severity,
			Suggestion: "Use npm ci for reproducible installs.",
		})
	}

	return findings, nil
}
