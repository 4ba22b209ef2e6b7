package frontend

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/rule"
)

var (
	// Hex colors in Tailwind: bg-[#...], text-[#...]
	hexColorRE = regexp.MustCompile(`\b(?:bg|text|border|ring|fill|stroke)-\[#[0-9a-fA-F]+\]`)

	// Pixel spacing: p-[24px], m-[16px], gap-[8px]. Arbitrary layout values
	// (w-[...], h-[...]) are allowed; only spacing bypasses the scale.
	pixelSpacingRE = regexp.MustCompile(`\b(?:p|px|py|pt|pr|pb|pl|m|mx|my|mt|mr|mb|ml|gap|space-[xy])-\[\d+px\]`)
)

// ArbitraryValues warns about arbitrary Tailwind values that bypass design
// tokens.
type ArbitraryValues struct{}

func (ArbitraryValues) Meta() rule.Meta {
	return rule.Meta{
		ID:          "style-no-arbitrary-values",
		Description: "Warns about arbitrary Tailwind values that bypass design tokens",
		Severity:    rule.Info,
		Events:      []hooks.EventType{hooks.PreToolUse},
		Pack:        Name,
	}
}

func (r ArbitraryValues) Evaluate(ctx *rule.Context) ([]rule.Finding, error) {
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
	var findings []rule.Finding

	for i, line := range strings.Split(content, "\n") {
		for _, match := range hexColorRE.FindAllString(line, -1) {
			findings = append(findings, rule.Finding{
				RuleID:     m.ID,
				Message:    fmt.Sprintf("Arbitrary hex color: %s", match),
				Severity:   m.Severity,
				FilePath:   filePath,
				Line:       i + 1,
				Suggestion: "Use a design token color (e.g., bg-primary, text-gray-500).",
			})
		}

		for _, match := range pixelSpacingRE.FindAllString(line, -1) {
			findings = append(findings, rule.Finding{
				RuleID:     m.ID,
				Message:    fmt.Sprintf("Arbitrary pixel spacing: %s", match),
				Severity:   m.Severity,
				FilePath:   filePath,
				Line:       i + 1,
				Suggestion: "Use Tailwind spacing scale (e.g., p-4, m-6, gap-2).",
			})
		}
	}

	return findings, nil
}
