package quality

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/rule"
)

var (
	// Extracts the message from git commit -m "message" or -m 'message'.
	commitMsgRE = regexp.MustCompile(`(?i)\bgit\s+commit\b.*?-m\s+(?:"([^"]+)"|'([^']+)')`)

	conventionalRE = regexp.MustCompile(`^(feat|fix|chore|docs|refactor|test|ci|style|perf|build|revert)(\(.+?\))?!?:\s.+`)
)

// CommitMessageFormat validates git commit messages against the conventional
// commits format and a subject length limit.
type CommitMessageFormat struct{}

func (CommitMessageFormat) Meta() rule.Meta {
	return rule.Meta{
		ID:          "commit-message-format",
		Description: "Validates commit messages follow conventional format",
		Severity:    rule.Warning,
		Events:      []hooks.EventType{hooks.PreToolUse},
		Pack:        Name,
	}
}

func (r CommitMessageFormat) Evaluate(ctx *rule.Context) ([]rule.Finding, error) {
	if ctx.ToolName != "Bash" {
		return nil, nil
	}

	command := ctx.Command()
	if command == "" {
		return nil, nil
	}

	match := commitMsgRE.FindStringSubmatch(command)
	if match == nil {
		return nil, nil
	}
	message := match[1]
	if message == "" {
		message = match[2]
	}
	if message == "" {
		return nil, nil
	}

	m := r.Meta()
	settings := ctx.Settings(m.ID)
	maxLength := settings.Int("max_subject_length", 72)
	format := settings.String("format", "conventional")

	var findings []rule.Finding

	subject := strings.Split(message, "\n")[0]
	if length := utf8.RuneCountInString(subject); length > maxLength {
		findings = append(findings, rule.Finding{
			RuleID:     m.ID,
			Message:    fmt.Sprintf("Commit subject exceeds %d characters (%d)", maxLength, length),
			Severity:   m.Severity,
			Suggestion: fmt.Sprintf("Keep the subject line under %d characters.", maxLength),
		})
	}

	if format == "conventional" && !conventionalRE.MatchString(subject) {
		findings = append(findings, rule.Finding{
			RuleID:     m.ID,
			Message:    "Commit message does not follow conventional format",
			Severity:   m.Severity,
			Suggestion: "Use format: type(scope): description (e.g. feat: add login, fix(auth): token refresh)",
		})
	}

	return findings, nil
}
