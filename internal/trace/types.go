package trace

import (
	"time"

	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/rule"
)

// Decision labels recorded per invocation.
const (
	DecisionDeny     = "deny"
	DecisionAdvisory = "advisory"
	DecisionClean    = "clean"
	DecisionReport   = "report"
)

// Invocation is one audited hook run: which event fired, what was decided,
// and the findings behind the decision.
type Invocation struct {
	ID             string
	SessionID      string
	Event          hooks.EventType
	ToolName       string
	Decision       string
	ExitCode       int
	RulesEvaluated int
	Duration       time.Duration
	Timestamp      time.Time
	Findings       []rule.Finding
}

// Recorder is the interface the engine records invocations through. A nil
// recorder disables tracing.
type Recorder interface {
	RecordInvocation(inv *Invocation) error
	ListInvocations(sessionID string, limit int) ([]*Invocation, error)
	GetInvocation(id string) (*Invocation, error)
	CleanupOldInvocations(ttl time.Duration) (int64, error)
	CleanupExcessInvocations(sessionID string, maxInvocations int) (int64, error)
	Close() error
}
