package frontend

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/rule"
)

var headingRE = regexp.MustCompile(`(?i)<h([1-6])\b`)

// HeadingHierarchy flags multiple h1 tags and skipped heading levels.
type HeadingHierarchy struct{}

func (HeadingHierarchy) Meta() rule.Meta {
	return rule.Meta{
		ID:          "a11y-heading-hierarchy",
		Description: "Ensures proper heading hierarchy",
		Severity:    rule.Info,
		Events:      []hooks.EventType{hooks.PreToolUse},
		Pack:        Name,
	}
}

func (r HeadingHierarchy) Evaluate(ctx *rule.Context) ([]rule.Finding, error) {
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
	maxH1 := ctx.Settings(m.ID).Int("max_h1", 1)

	type heading struct {
		level int
		line  int
	}
	var headings []heading
	for i, line := range strings.Split(content, "\n") {
		for _, match := range headingRE.FindAllStringSubmatch(line, -1) {
			level, _ := strconv.Atoi(match[1])
			headings = append(headings, heading{level, i + 1})
		}
	}

	var findings []rule.Finding

	var h1Lines []int
	for _, h := range headings {
		if h.level == 1 {
			h1Lines = append(h1Lines, h.line)
		}
	}
	if len(h1Lines) > maxH1 {
		for _, line := range h1Lines[maxH1:] {
			findings = append(findings, rule.Finding{
				RuleID:     m.ID,
				Message:    fmt.Sprintf("Multiple <h1> tags (max %d)", maxH1),
				Severity:   m.Severity,
				FilePath:   filePath,
				Line:       line,
				Suggestion: "Use only one <h1> per page for proper document outline.",
			})
		}
	}

	for i := 1; i < len(headings); i++ {
		prev := headings[i-1].level
		curr := headings[i]
		if curr.level > prev+1 {
			findings = append(findings, rule.Finding{
				RuleID:     m.ID,
				Message:    fmt.Sprintf("Skipped heading level: h%d to h%d", prev, curr.level),
				Severity:   m.Severity,
				FilePath:   filePath,
				Line:       curr.line,
				Suggestion: fmt.Sprintf("Add an <h%d> between <h%d> and <h%d>.", prev+1, prev, curr.level),
			})
		}
	}

	return findings, nil
}
