// Package seo holds rules that keep page files discoverable: metadata,
// Open Graph tags, semantic markup, and structured data.
package seo

import (
	"strings"

	"github.com/ihavespoons/railguard/internal/rule"
)

// Name is the pack identifier used in configuration.
const Name = "seo"

// Rules returns the seo pack.
func Rules() []rule.Rule {
	return []rule.Rule{
		PageMetadata{},
		OpenGraph{},
		SemanticHTML{},
		StructuredData{},
	}
}

var seoExtensions = []string{".tsx", ".jsx", ".vue", ".svelte", ".html"}

var defaultPagePatterns = []string{"pages/", "app/", "routes/"}

func hasSEOExtension(filePath string) bool {
	for _, ext := range seoExtensions {
		if strings.HasSuffix(filePath, ext) {
			return true
		}
	}
	return false
}

// isPageFile reports whether the path looks like a page or route file with a
// frontend extension.
func isPageFile(filePath string, pagePatterns []string) bool {
	if filePath == "" || !hasSEOExtension(filePath) {
		return false
	}
	patterns := pagePatterns
	if len(patterns) == 0 {
		patterns = defaultPagePatterns
	}
	for _, p := range patterns {
		if strings.Contains(filePath, p) {
			return true
		}
	}
	return false
}
