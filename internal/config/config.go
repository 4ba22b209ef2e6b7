package config

import (
	"github.com/ihavespoons/railguard/internal/rule"
)

// SeverityModes accepted in the severity field.
const (
	ModeStrict   = "strict"
	ModeStandard = "standard"
	ModeRelaxed  = "relaxed"
)

// Config represents the parsed railguard configuration.
type Config struct {
	Stack          string                            `yaml:"stack"`
	Severity       string                            `yaml:"severity"`
	Packs          []string                          `yaml:"packs"`
	Rules          map[string]map[string]interface{} `yaml:"rules"`
	CustomRulesDir string                            `yaml:"custom_rules_dir"`
	Trace          TraceSettings                     `yaml:"trace"`
}

// TraceSettings controls the optional invocation audit trail.
type TraceSettings struct {
	Enabled             bool    `yaml:"enabled"`
	StoragePath         string  `yaml:"storage_path,omitempty"`
	SessionTTL          string  `yaml:"session_ttl,omitempty"`
	MaxEventsPerSession int     `yaml:"max_events_per_session,omitempty"`
	CleanupProbability  float64 `yaml:"cleanup_probability,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Stack:    "auto",
		Severity: ModeStandard,
		Packs:    []string{"universal"},
		Rules:    map[string]map[string]interface{}{},
	}
}

// Rules that must be opted into rather than out of. git-checkpoint runs
// git stash as a side effect, which is too intrusive to switch on silently.
var defaultDisabled = map[string]bool{
	"git-checkpoint": true,
}

// IsRuleEnabled reports whether a rule is enabled; rules default to enabled
// unless the config says otherwise.
func (c *Config) IsRuleEnabled(ruleID string) bool {
	return rule.Settings(c.Rules[ruleID]).Bool("enabled", !defaultDisabled[ruleID])
}

// RuleConfig returns the free-form config block for a rule id.
func (c *Config) RuleConfig(ruleID string) map[string]interface{} {
	return c.Rules[ruleID]
}

// EffectiveSeverity maps a rule's declared severity through the project
// strictness mode. Strict promotes warning to error and info to warning;
// relaxed demotes warning to info; standard is the identity. Error is never
// touched. Applied to every finding before the circuit breaker sees it.
func (c *Config) EffectiveSeverity(base rule.Severity) rule.Severity {
	switch c.Severity {
	case ModeStrict:
		switch base {
		case rule.Warning:
			return rule.Error
		case rule.Info:
			return rule.Warning
		}
	case ModeRelaxed:
		if base == rule.Warning {
			return rule.Info
		}
	}
	return base
}
