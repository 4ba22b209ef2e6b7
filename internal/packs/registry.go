// Package packs registers the built-in rule packs and resolves pack names to
// rule sets.
package packs

import (
	"github.com/ihavespoons/railguard/internal/logger"
	"github.com/ihavespoons/railguard/internal/packs/frontend"
	"github.com/ihavespoons/railguard/internal/packs/golang"
	"github.com/ihavespoons/railguard/internal/packs/python"
	"github.com/ihavespoons/railguard/internal/packs/quality"
	"github.com/ihavespoons/railguard/internal/packs/react"
	"github.com/ihavespoons/railguard/internal/packs/security"
	"github.com/ihavespoons/railguard/internal/packs/seo"
	"github.com/ihavespoons/railguard/internal/packs/universal"
	"github.com/ihavespoons/railguard/internal/rule"
)

type pack struct {
	name  string
	rules func() []rule.Rule
}

// registry lists the built-in packs in evaluation order. The order is part of
// the behavior: findings surface in it.
var registry = []pack{
	{universal.Name, universal.Rules},
	{quality.Name, quality.Rules},
	{security.Name, security.Rules},
	{python.Name, python.Rules},
	{react.Name, react.Rules},
	{frontend.Name, frontend.Rules},
	{seo.Name, seo.Rules},
	{golang.Name, golang.Rules},
}

// Names returns the built-in pack names in registry order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for _, p := range registry {
		names = append(names, p.name)
	}
	return names
}

// Load returns the rules of the requested packs, concatenated in registry
// order regardless of the order packNames arrived in. Unknown names are
// logged and skipped; "custom" is resolved elsewhere and ignored here.
func Load(packNames []string) []rule.Rule {
	requested := make(map[string]bool, len(packNames))
	for _, name := range packNames {
		requested[name] = true
	}

	var rules []rule.Rule
	for _, p := range registry {
		if requested[p.name] {
			rules = append(rules, p.rules()...)
			delete(requested, p.name)
		}
	}

	delete(requested, "custom")
	for name := range requested {
		logger.Warn().Str("pack", name).Msg("Unknown rule pack in config")
	}

	return rules
}

// All returns every built-in rule in registry order.
func All() []rule.Rule {
	return Load(Names())
}
