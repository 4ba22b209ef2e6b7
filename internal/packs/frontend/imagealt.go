package frontend

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/rule"
)

var defaultImageComponents = []string{"Image", "img"}

var altAttrRE = regexp.MustCompile(`(?i)\balt\s*=`)

// buildImageTagRE matches an image tag of any of the given components. Alt
// presence is checked on the matched text, which runs to the tag's closing >.
func buildImageTagRE(components []string) (*regexp.Regexp, error) {
	escaped := make([]string, 0, len(components))
	for _, c := range components {
		escaped = append(escaped, regexp.QuoteMeta(c))
	}
	return regexp.Compile(`(?i)<(?:` + strings.Join(escaped, "|") + `)\s+[^>]*/?>`)
}

// ImageAlt flags images without alt text (WCAG 1.1.1).
type ImageAlt struct{}

func (ImageAlt) Meta() rule.Meta {
	return rule.Meta{
		ID:          "a11y-image-alt",
		Description: "Ensures images have alt text for accessibility",
		Severity:    rule.Warning,
		Events:      []hooks.EventType{hooks.PreToolUse},
		Pack:        Name,
	}
}

func (r ImageAlt) Evaluate(ctx *rule.Context) ([]rule.Finding, error) {
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
	components := defaultImageComponents
	if extra := ctx.Settings(m.ID).StringSlice("extra_components"); len(extra) > 0 {
		components = append(append([]string(nil), components...), extra...)
		sort.Strings(components)
	}
	tagRE, err := buildImageTagRE(components)
	if err != nil {
		return nil, err
	}

	var findings []rule.Finding
	for i, line := range strings.Split(content, "\n") {
		for _, tag := range tagRE.FindAllString(line, -1) {
			if altAttrRE.MatchString(tag) {
				continue
			}
			findings = append(findings, rule.Finding{
				RuleID:     m.ID,
				Message:    "Image element missing alt attribute (WCAG 1.1.1)",
				Severity:   m.Severity,
				FilePath:   filePath,
				Line:       i + 1,
				Suggestion: `Add alt="descriptive text" or alt="" for decorative images.`,
			})
		}
	}

	return findings, nil
}
