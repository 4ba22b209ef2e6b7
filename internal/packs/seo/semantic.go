package seo

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/rule"
)

var divTagRE = regexp.MustCompile(`<div\b`)

var semanticElements = []string{"<main", "<article", "<section", "<nav", "<aside", "<header", "<footer"}

// SemanticHTML flags pages with excessive divs and no semantic elements.
type SemanticHTML struct{}

func (SemanticHTML) Meta() rule.Meta {
	return rule.Meta{
		ID:          "seo-semantic-html",
		Description: "Encourages use of semantic HTML elements",
		Severity:    rule.Info,
		Events:      []hooks.EventType{hooks.PreToolUse},
		Pack:        Name,
	}
}

func (r SemanticHTML) Evaluate(ctx *rule.Context) ([]rule.Finding, error) {
	if ctx.ToolName != "Write" && ctx.ToolName != "Edit" {
		return nil, nil
	}

	filePath := ctx.FilePath()
	if !isPageFile(filePath, nil) {
		return nil, nil
	}

	content := ctx.Content()
	if content == "" {
		return nil, nil
	}

	m := r.Meta()
	minDivs := ctx.Settings(m.ID).Int("min_div_threshold", 10)
	contentLower := strings.ToLower(content)

	divCount := len(divTagRE.FindAllString(contentLower, -1))
	if divCount < minDivs {
		return nil, nil
	}

	for _, elem := range semanticElements {
		if strings.Contains(contentLower, elem) {
			return nil, nil
		}
	}

	return []rule.Finding{{
		RuleID:     m.ID,
		Message:    fmt.Sprintf("%d <div> elements and no semantic HTML elements", divCount),
		Severity:   m.Severity,
		FilePath:   filePath,
		Suggestion: "Replace some <div> elements with <main>, <section>, <article>, <nav>.",
	}}, nil
}
