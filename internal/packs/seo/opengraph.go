package seo

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/rule"
)

var ogMetadataMarkers = []string{"<Head", "<Helmet", "<title", "generateMetadata", "metadata"}

var defaultOGProperties = []string{"og:description", "og:image", "og:title"}

// OpenGraph flags pages that carry metadata but lack Open Graph tags.
type OpenGraph struct{}

func (OpenGraph) Meta() rule.Meta {
	return rule.Meta{
		ID:          "seo-open-graph",
		Description: "Ensures pages with metadata also include Open Graph tags",
		Severity:    rule.Info,
		Events:      []hooks.EventType{hooks.PreToolUse},
		Pack:        Name,
	}
}

func (r OpenGraph) Evaluate(ctx *rule.Context) ([]rule.Finding, error) {
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

	// Only files that already carry some metadata are held to OG standards.
	hasMetadata := false
	for _, marker := range ogMetadataMarkers {
		if strings.Contains(content, marker) {
			hasMetadata = true
			break
		}
	}
	if !hasMetadata {
		return nil, nil
	}

	m := r.Meta()
	required := ctx.Settings(m.ID).StringSlice("required_properties")
	if len(required) == 0 {
		required = defaultOGProperties
	} else {
		required = append([]string(nil), required...)
		sort.Strings(required)
	}

	var missing []string
	for _, prop := range required {
		if !strings.Contains(content, prop) {
			missing = append(missing, prop)
		}
	}
	if len(missing) == 0 {
		return nil, nil
	}

	return []rule.Finding{{
		RuleID:     m.ID,
		Message:    fmt.Sprintf("Missing Open Graph tags: %s", strings.Join(missing, ", ")),
		Severity:   m.Severity,
		FilePath:   filePath,
		Suggestion: "Add og:title, og:description, and og:image meta tags.",
	}}, nil
}
