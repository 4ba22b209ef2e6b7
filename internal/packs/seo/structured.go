package seo

import (
	"regexp"
	"strings"

	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/rule"
)

var defaultContentPatterns = []string{"product", "article", "blog", "post", "recipe", "event"}

var jsonldRE = regexp.MustCompile(`(?i)application/ld\+json`)

// StructuredData suggests JSON-LD structured data for content pages.
type StructuredData struct{}

func (StructuredData) Meta() rule.Meta {
	return rule.Meta{
		ID:          "seo-structured-data",
		Description: "Suggests adding JSON-LD structured data to content pages",
		Severity:    rule.Info,
		Events:      []hooks.EventType{hooks.PreToolUse},
		Pack:        Name,
	}
}

func (r StructuredData) Evaluate(ctx *rule.Context) ([]rule.Finding, error) {
	if ctx.ToolName != "Write" && ctx.ToolName != "Edit" {
		return nil, nil
	}

	filePath := ctx.FilePath()
	if filePath == "" || !hasSEOExtension(filePath) {
		return nil, nil
	}

	content := ctx.Content()
	if content == "" {
		return nil, nil
	}

	m := r.Meta()
	contentPatterns := ctx.Settings(m.ID).StringSlice("content_path_patterns")
	if len(contentPatterns) == 0 {
		contentPatterns = defaultContentPatterns
	}

	// Only paths that look like content pages are checked.
	pathLower := strings.ToLower(filePath)
	isContentPage := false
	for _, p := range contentPatterns {
		if strings.Contains(pathLower, p) {
			isContentPage = true
			break
		}
	}
	if !isContentPage {
		return nil, nil
	}

	if jsonldRE.MatchString(content) {
		return nil, nil
	}

	return []rule.Finding{{
		RuleID:     m.ID,
		Message:    "Content page without JSON-LD structured data",
		Severity:   m.Severity,
		FilePath:   filePath,
		Suggestion: `Add <script type="application/ld+json"> with appropriate schema.org data.`,
	}}, nil
}
