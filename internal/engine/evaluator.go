package engine

import (
	"fmt"

	"github.com/ihavespoons/railguard/internal/config"
	"github.com/ihavespoons/railguard/internal/logger"
	"github.com/ihavespoons/railguard/internal/rule"
)

// Result carries the outcome of one evaluation pass.
type Result struct {
	Findings       []rule.Finding
	RulesEvaluated int
}

// Evaluator runs rules against a hook context, applying pack activation,
// per-rule enablement and the project severity mode.
type Evaluator struct {
	cfg *config.Config
}

// NewEvaluator creates an evaluator for the given configuration.
func NewEvaluator(cfg *config.Config) *Evaluator {
	return &Evaluator{cfg: cfg}
}

// Evaluate runs every applicable rule and collects findings in rule order.
// A rule that returns an error or panics is logged and skipped; one broken
// rule must never take down the whole invocation.
func (ev *Evaluator) Evaluate(rules []rule.Rule, ctx *rule.Context) *Result {
	res := &Result{}

	active := make(map[string]bool, len(ev.cfg.Packs))
	for _, pack := range ev.cfg.Packs {
		active[pack] = true
	}

	for _, r := range rules {
		meta := r.Meta()

		if !active[meta.Pack] {
			continue
		}
		if !ev.cfg.IsRuleEnabled(meta.ID) {
			continue
		}
		if !meta.AppliesTo(ctx.Event) {
			continue
		}

		res.RulesEvaluated++

		findings, err := safeEvaluate(r, ctx)
		if err != nil {
			logger.Warn().
				Str("rule", meta.ID).
				Err(err).
				Msg("Rule evaluation failed, skipping")
			continue
		}

		for _, f := range findings {
			if f.RuleID == "" {
				f.RuleID = meta.ID
			}
			if f.Severity == "" {
				f.Severity = meta.Severity
			}
			f.Severity = ev.cfg.EffectiveSeverity(f.Severity)
			res.Findings = append(res.Findings, f)
		}
	}

	return res
}

// safeEvaluate converts a panicking rule into an error return.
func safeEvaluate(r rule.Rule, ctx *rule.Context) (findings []rule.Finding, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("rule panicked: %v", rec)
		}
	}()
	return r.Evaluate(ctx)
}
