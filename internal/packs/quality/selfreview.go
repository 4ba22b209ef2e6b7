package quality

import (
	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/rule"
)

const defaultReviewPrompt = "Before finishing, review your changes as if you were a senior engineer " +
	"who is skeptical of this code. Check for: logic errors, missing edge cases, " +
	"security issues, test coverage gaps, and any assumptions you made that might be wrong."

// SelfReviewPrompt injects an adversarial self-review prompt at session end.
type SelfReviewPrompt struct{}

func (SelfReviewPrompt) Meta() rule.Meta {
	return rule.Meta{
		ID:          "self-review-prompt",
		Description: "Injects a self-review prompt at session end to catch bugs",
		Severity:    rule.Info,
		Events:      []hooks.EventType{hooks.Stop},
		Pack:        Name,
	}
}

func (r SelfReviewPrompt) Evaluate(ctx *rule.Context) ([]rule.Finding, error) {
	m := r.Meta()
	prompt := ctx.Settings(m.ID).String("custom_prompt", "")
	if prompt == "" {
		prompt = defaultReviewPrompt
	}

	return []rule.Finding{{
		RuleID:   m.ID,
		Message:  prompt,
		Severity: m.Severity,
	}}, nil
}
