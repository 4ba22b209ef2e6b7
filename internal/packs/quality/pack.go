// Package quality holds rules about the shape of the work itself: commit
// hygiene, dead code, and end-of-session review prompts.
package quality

import (
	"github.com/ihavespoons/railguard/internal/rule"
)

// Name is the pack identifier used in configuration.
const Name = "quality"

// Rules returns the quality pack.
func Rules() []rule.Rule {
	return []rule.Rule{
		CommitMessageFormat{},
		DeadImports{},
		ErrorHandlingRemoval{},
		SelfReviewPrompt{},
	}
}
