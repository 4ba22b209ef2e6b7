package frontend

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/rule"
)

var defaultLinkAntiPatterns = []string{"click here", "read more", "learn more", "here"}

var (
	// div/span with onClick but missing role and tabIndex.
	clickableDivRE = regexp.MustCompile(`(?i)<(div|span)\s[^>]*onClick[^>]*>`)

	roleAttrRE = regexp.MustCompile(`\brole\s*=\s*["']`)
	tabIndexRE = regexp.MustCompile(`(?i)\btabIndex\s*=`)

	anchorRE = regexp.MustCompile(`(?i)<a\s[^>]*>([^<]*)</a>`)
)

// InteractiveElements flags clickable non-button elements without ARIA
// attributes and links with non-descriptive text.
type InteractiveElements struct{}

func (InteractiveElements) Meta() rule.Meta {
	return rule.Meta{
		ID:          "a11y-interactive-elements",
		Description: "Ensures interactive elements have proper ARIA attributes",
		Severity:    rule.Warning,
		Events:      []hooks.EventType{hooks.PreToolUse},
		Pack:        Name,
	}
}

func (r InteractiveElements) Evaluate(ctx *rule.Context) ([]rule.Finding, error) {
	if ctx.ToolName != "Write" && ctx.ToolName != "Edit" {
		return nil, nil
	}
	filePath := ctx.FilePath()
	if !isFrontendFile(filePath) {
		return nil, nil
	}

	content := ctx.Content()
	if content == "" {
		return nil, nil
	}

	m := r.Meta()
	antiPatterns := ctx.Settings(m.ID).StringSlice("link_anti_patterns")
	if len(antiPatterns) == 0 {
		antiPatterns = defaultLinkAntiPatterns
	}

	var findings []rule.Finding

	for i, line := range strings.Split(content, "\n") {
		for _, match := range clickableDivRE.FindAllStringSubmatch(line, -1) {
			tag := match[0]
			hasRole := roleAttrRE.MatchString(tag)
			hasTabIndex := tabIndexRE.MatchString(tag)
			if hasRole && hasTabIndex {
				continue
			}

			var missing []string
			if !hasRole {
				missing = append(missing, `role="button"`)
			}
			if !hasTabIndex {
				missing = append(missing, "tabIndex")
			}
			findings = append(findings, rule.Finding{
				RuleID:     m.ID,
				Message:    fmt.Sprintf("<%s> with onClick missing %s", match[1], strings.Join(missing, ", ")),
				Severity:   m.Severity,
				FilePath:   filePath,
				Line:       i + 1,
				Suggestion: `Add role="button" and tabIndex={0} for keyboard accessibility.`,
			})
		}

		for _, match := range anchorRE.FindAllStringSubmatch(line, -1) {
			linkText := strings.ToLower(strings.TrimSpace(match[1]))
			for _, anti := range antiPatterns {
				if linkText == anti {
					findings = append(findings, rule.Finding{
						RuleID:     m.ID,
						Message:    fmt.Sprintf("Link with non-descriptive text: %q", linkText),
						Severity:   m.Severity,
						FilePath:   filePath,
						Line:       i + 1,
						Suggestion: "Use descriptive link text that explains the destination.",
					})
					break
				}
			}
		}
	}

	return findings, nil
}
