package frontend

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/rule"
)

var (
	gridColsRE       = regexp.MustCompile(`\bgrid-cols-(\d+)\b`)
	responsiveGridRE = regexp.MustCompile(`\b(?:sm|md|lg|xl):grid-cols-`)

	fixedWidthRE = regexp.MustCompile(`\bw-\[(\d+)px\]`)

	hoverOnlyRE  = regexp.MustCompile(`(?i)\bonMouseEnter\b|\bonHover\b`)
	clickTouchRE = regexp.MustCompile(`(?i)\bonClick\b|\bonTouchStart\b`)
)

// ResponsivePatterns warns about desktop-only layout patterns: wide grids
// without breakpoints, fixed pixel widths, and hover-only interactions.
type ResponsivePatterns struct{}

func (ResponsivePatterns) Meta() rule.Meta {
	return rule.Meta{
		ID:          "mobile-responsive-patterns",
		Description: "Warns about desktop-only layout patterns",
		Severity:    rule.Info,
		Events:      []hooks.EventType{hooks.PreToolUse},
		Pack:        Name,
	}
}

func (r ResponsivePatterns) Evaluate(ctx *rule.Context) ([]rule.Finding, error) {
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
	minCols := ctx.Settings(m.ID).Int("min_grid_cols_warning", 4)

	var findings []rule.Finding
	add := func(line int, message, suggestion string) {
		findings = append(findings, rule.Finding{
			RuleID:     m.ID,
			Message:    message,
			Severity:   m.Severity,
			FilePath:   filePath,
			Line:       line,
			Suggestion: suggestion,
		})
	}

	for i, line := range strings.Split(content, "\n") {
		for _, match := range gridColsRE.FindAllStringSubmatch(line, -1) {
			cols, _ := strconv.Atoi(match[1])
			if cols >= minCols && !responsiveGridRE.MatchString(line) {
				add(i+1,
					fmt.Sprintf("grid-cols-%d without responsive breakpoint", cols),
					fmt.Sprintf("Add sm:grid-cols-2 md:grid-cols-%d for mobile.", cols))
			}
		}

		for _, match := range fixedWidthRE.FindAllStringSubmatch(line, -1) {
			width, _ := strconv.Atoi(match[1])
			if width >= 400 {
				add(i+1,
					fmt.Sprintf("Fixed width %dpx may cause horizontal scrolling on mobile", width),
					"Use max-w-* or responsive widths instead.")
			}
		}

		if hoverOnlyRE.MatchString(line) && !clickTouchRE.MatchString(line) {
			add(i+1,
				"Hover-only interaction without click/touch fallback",
				"Add onClick or onTouchStart for mobile users.")
		}
	}

	return findings, nil
}
