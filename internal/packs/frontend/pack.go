// Package frontend holds markup-level rules for component files:
// accessibility (WCAG), mobile ergonomics, and styling consistency.
package frontend

import (
	"strings"

	"github.com/ihavespoons/railguard/internal/rule"
)

// Name is the pack identifier used in configuration.
const Name = "frontend"

// Rules returns the frontend pack.
func Rules() []rule.Rule {
	return []rule.Rule{
		ImageAlt{},
		FormLabels{},
		HeadingHierarchy{},
		InteractiveElements{},
		TouchTargets{},
		ResponsivePatterns{},
		FocusVisible{},
		ArbitraryValues{},
	}
}

var frontendExtensions = []string{".tsx", ".jsx", ".vue", ".svelte", ".html"}

func isFrontendFile(filePath string) bool {
	for _, ext := range frontendExtensions {
		if strings.HasSuffix(filePath, ext) {
			return true
		}
	}
	return false
}
