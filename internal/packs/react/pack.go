// Package react holds rules specific to React codebases: empty states for
// list rendering, lazy loading of heavy components, and query loading states.
package react

import (
	"strings"

	"github.com/ihavespoons/railguard/internal/rule"
)

// Name is the pack identifier used in configuration.
const Name = "react"

// Rules returns the react pack.
func Rules() []rule.Rule {
	return []rule.Rule{
		EmptyState{},
		LazyLoading{},
		QueryLoadingState{},
	}
}

func isReactFile(filePath string) bool {
	return strings.HasSuffix(filePath, ".tsx") || strings.HasSuffix(filePath, ".jsx")
}
