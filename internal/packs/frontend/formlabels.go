package frontend

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/rule"
)

// Types that don't need labels.
var labelSkipTypes = map[string]bool{
	"hidden": true,
	"submit": true,
	"button": true,
}

var (
	formTagRE  = regexp.MustCompile(`(?i)<(input|select|textarea)\s([^>]*)/?>`)
	typeAttrRE = regexp.MustCompile(`(?i)type\s*=\s*["'](\w+)["']`)
)

// FormLabels flags form inputs without labels or aria-label (WCAG 1.3.1).
type FormLabels struct{}

func (FormLabels) Meta() rule.Meta {
	return rule.Meta{
		ID:          "a11y-form-labels",
		Description: "Ensures form inputs have associated labels",
		Severity:    rule.Warning,
		Events:      []hooks.EventType{hooks.PreToolUse},
		Pack:        Name,
	}
}

func (r FormLabels) Evaluate(ctx *rule.Context) ([]rule.Finding, error) {
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

	hasLabelTag := strings.Contains(strings.ToLower(content), "<label")

	m := r.Meta()
	var findings []rule.Finding

	for i, line := range strings.Split(content, "\n") {
		for _, match := range formTagRE.FindAllStringSubmatch(line, -1) {
			attrs := match[2]

			if typeMatch := typeAttrRE.FindStringSubmatch(attrs); typeMatch != nil {
				if labelSkipTypes[strings.ToLower(typeMatch[1])] {
					continue
				}
			}

			hasLabelAttr := strings.Contains(attrs, "aria-label") || strings.Contains(attrs, "aria-labelledby")
			hasID := strings.Contains(attrs, "id=") || strings.Contains(attrs, "id =")

			if hasLabelAttr || (hasID && hasLabelTag) {
				continue
			}

			findings = append(findings, rule.Finding{
				RuleID:     m.ID,
				Message:    fmt.Sprintf("<%s> without label or aria-label (WCAG 1.3.1)", match[1]),
				Severity:   m.Severity,
				FilePath:   filePath,
				Line:       i + 1,
				Suggestion: "Add aria-label, aria-labelledby, or an associated <label> element.",
			})
		}
	}

	return findings, nil
}
