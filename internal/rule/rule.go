package rule

import (
	"github.com/ihavespoons/railguard/internal/hooks"
)

// Severity classifies a finding by blocking strength: error > warning > info.
type Severity string

// Severity levels
const (
	Error   Severity = "error"
	Warning Severity = "warning"
	Info    Severity = "info"
)

// IsBlocking reports whether a finding at this severity blocks the action.
func (s Severity) IsBlocking() bool {
	return s == Error
}

// Finding is one reported issue from a rule evaluation.
type Finding struct {
	RuleID     string   `json:"rule_id"`
	Message    string   `json:"message"`
	Severity   Severity `json:"severity"`
	FilePath   string   `json:"file_path,omitempty"`
	Line       int      `json:"line,omitempty"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// Meta carries a rule's static identity: id, description, declared severity,
// the events it applies to, and its pack.
type Meta struct {
	ID          string
	Description string
	Severity    Severity
	Events      []hooks.EventType
	Pack        string
}

// AppliesTo reports whether the rule should run for the given event.
func (m Meta) AppliesTo(event hooks.EventType) bool {
	for _, e := range m.Events {
		if e == event {
			return true
		}
	}
	return false
}

// Rule is the capability every check implements: identity plus a pure
// evaluate function over an event context. The engine dispatches over this
// interface only, so project-local rules loaded at runtime are just more
// implementations.
type Rule interface {
	Meta() Meta
	Evaluate(ctx *Context) ([]Finding, error)
}
