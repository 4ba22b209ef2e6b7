package seo

import (
	"strings"

	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/rule"
)

var defaultMetadataMarkers = []string{
	"<Head", "<Helmet", "<title", "generateMetadata", "metadata",
	"useHead", "useSeoMeta", "<svelte:head",
}

// PageMetadata flags page files missing title/description metadata.
type PageMetadata struct{}

func (PageMetadata) Meta() rule.Meta {
	return rule.Meta{
		ID:          "seo-page-metadata",
		Description: "Ensures page files include title and description metadata",
		Severity:    rule.Warning,
		Events:      []hooks.EventType{hooks.PreToolUse},
		Pack:        Name,
	}
}

func (r PageMetadata) Evaluate(ctx *rule.Context) ([]rule.Finding, error) {
	if ctx.ToolName != "Write" && ctx.ToolName != "Edit" {
		return nil, nil
	}

	m := r.Meta()
	settings := ctx.Settings(m.ID)
	filePath := ctx.FilePath()
	if !isPageFile(filePath, settings.StringSlice("page_patterns")) {
		return nil, nil
	}

	content := ctx.Content()
	if content == "" {
		return nil, nil
	}

	markers := append(append([]string(nil), defaultMetadataMarkers...),
		settings.StringSlice("metadata_components")...)
	for _, marker := range markers {
		if strings.Contains(content, marker) {
			return nil, nil
		}
	}

	return []rule.Finding{{
		RuleID:     m.ID,
		Message:    "Page file missing title/description metadata",
		Severity:   m.Severity,
		FilePath:   filePath,
		Suggestion: "Add <Head>, <Helmet>, or generateMetadata for SEO.",
	}}, nil
}
