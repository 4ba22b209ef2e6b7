package security

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/rule"
)

// File-write patterns in Bash commands, checked in order.
var writePatterns = []struct {
	re    *regexp.Regexp
	label string
}{
	{regexp.MustCompile(`\b(?:cat|echo|printf)\b.*>{1,2}\s*(\S+)`), "redirect (>/>>)"},
	{regexp.MustCompile(`\btee\s+(?:-a\s+)?(\S+)`), "tee"},
	{regexp.MustCompile(`\bsed\s+(?:.*\s)?-i\s`), "sed -i"},
	{regexp.MustCompile(`\bcp\s+\S+\s+(\S+)`), "cp"},
	{regexp.MustCompile(`\bmv\s+\S+\s+(\S+)`), "mv"},
	{regexp.MustCompile(`\bperl\s+.*-[a-zA-Z]*p[a-zA-Z]*i`), "perl -pi -e"},
	{regexp.MustCompile(`\bawk\b.*>\s*(\S+)`), "awk >"},
	{regexp.MustCompile(`\bdd\b.*\bof=(\S+)`), "dd of="},
	{regexp.MustCompile(`\bpython[23]?\s+-c\s+.*(?:open\s*\(|\.write\s*\(|Path\s*\()`), "python -c write"},
	{regexp.MustCompile(`\bcat\b.*<<\s*['"\\]?\w+`), "heredoc"},
}

// Command substitution heredocs, $(cat <<'EOF' ...), pass multi-line strings
// as arguments (git commit -m, gh pr create --body). Those are not file
// writes and must not trip the heredoc pattern.
var heredocCmdSubRE = regexp.MustCompile(`\$\(\s*cat\s+<<`)

// Patterns that extract the target file path from a command.
var targetExtractors = []*regexp.Regexp{
	regexp.MustCompile(`>{1,2}\s*(\S+)`),
	regexp.MustCompile(`\btee\s+(?:-a\s+)?(\S+)`),
	regexp.MustCompile(`\bcp\s+\S+\s+(\S+)`),
	regexp.MustCompile(`\bmv\s+\S+\s+(\S+)`),
	regexp.MustCompile(`\bdd\b.*\bof=(\S+)`),
}

func extractTargetPaths(command string) []string {
	var paths []string
	for _, extractor := range targetExtractors {
		for _, match := range extractor.FindAllStringSubmatch(command, -1) {
			if path := strings.Trim(match[1], `'"`); path != "" {
				paths = append(paths, path)
			}
		}
	}
	return paths
}

func pathAllowed(path string, allowPaths []string) bool {
	for _, pattern := range allowPaths {
		if ok, err := filepath.Match(pattern, path); err == nil && ok {
			return true
		}
	}
	return false
}

func commandAllowed(command string, allowPatterns []*regexp.Regexp) bool {
	for _, pattern := range allowPatterns {
		if pattern.MatchString(command) {
			return true
		}
	}
	return false
}

// BashFileWrite blocks file writes via Bash that bypass the Write and Edit
// tools, and with them every file-scoped rule.
type BashFileWrite struct{}

func (BashFileWrite) Meta() rule.Meta {
	return rule.Meta{
		ID:          "no-bash-file-write",
		Description: "Blocks file writes via Bash (cat >, tee, sed -i, cp, heredocs, etc.)",
		Severity:    rule.Error,
		Events:      []hooks.EventType{hooks.PreToolUse},
		Pack:        Name,
	}
}

func (r BashFileWrite) Evaluate(ctx *rule.Context) ([]rule.Finding, error) {
	if ctx.ToolName != "Bash" {
		return nil, nil
	}

	command := ctx.Command()
	if command == "" {
		return nil, nil
	}

	m := r.Meta()
	settings := ctx.Settings(m.ID)
	allowPatterns := rule.Patterns(settings.StringSlice("allow_patterns"))
	allowPaths := settings.StringSlice("allow_paths")

	if len(allowPatterns) > 0 && commandAllowed(command, allowPatterns) {
		return nil, nil
	}

	for _, wp := range writePatterns {
		if !wp.re.MatchString(command) {
			continue
		}
		if wp.label == "heredoc" && heredocCmdSubRE.MatchString(command) {
			continue
		}

		targetPaths := extractTargetPaths(command)
		if len(allowPaths) > 0 && len(targetPaths) > 0 {
			allAllowed := true
			for _, p := range targetPaths {
				if !pathAllowed(p, allowPaths) {
					allAllowed = false
					break
				}
			}
			if allAllowed {
				continue
			}
		}

		filePath := ""
		if len(targetPaths) > 0 {
			filePath = targetPaths[0]
		}

		// One finding per command is sufficient.
		return []rule.Finding{{
			RuleID:     m.ID,
			Message:    fmt.Sprintf("Bash file write detected via %s", wp.label),
			Severity:   m.Severity,
			FilePath:   filePath,
			Suggestion: "Use the Write or Edit tool instead of writing files through Bash.",
		}}, nil
	}

	return nil, nil
}
