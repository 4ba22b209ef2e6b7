// Package breaker progressively silences rules that fire too often.
//
// Per-rule fire counts live in the session state; error findings degrade
// through warning, then info, then suppression as the count crosses the
// configured thresholds. Warning and info findings pass through untouched.
// A fixed allowlist of security-critical rules is exempt: their findings
// always come back at original severity no matter what the configuration
// says.
package breaker

import (
	"fmt"
	"time"

	"github.com/ihavespoons/railguard/internal/logger"
	"github.com/ihavespoons/railguard/internal/rule"
)

// GlobalKey is the reserved rules-map key holding breaker defaults.
const GlobalKey = "_circuit_breaker_global"

// StateKey is the session-state key holding the per-rule record map.
const StateKey = "circuit_breaker"

// protected rules are exempt from degradation and suppression regardless of
// configuration.
var protected = map[string]struct{}{
	"no-secrets":    {},
	"no-env-commit": {},
}

// IsProtected reports whether a rule id is on the protection allowlist.
func IsProtected(ruleID string) bool {
	_, ok := protected[ruleID]
	return ok
}

// State is the progressive condition of one rule's breaker.
type State string

// Breaker states, ordered by fire count.
const (
	StateActive   State = "active"
	StateDegraded State = "degraded"
	StatePassive  State = "passive"
	StateOpen     State = "open"
)

// Config holds the breaker thresholds for one rule, layered from the global
// defaults and the per-rule override block.
type Config struct {
	Enabled           bool
	DegradedAfter     int
	PassiveAfter      int
	OpenAfter         int
	ResetAfterClean   int
	ResetAfterMinutes int
}

// DefaultConfig returns the built-in breaker thresholds.
func DefaultConfig() Config {
	return Config{
		Enabled:           true,
		DegradedAfter:     3,
		PassiveAfter:      6,
		OpenAfter:         10,
		ResetAfterClean:   5,
		ResetAfterMinutes: 30,
	}
}

// ConfigFor builds the effective breaker config for a rule id from the
// global default block plus the rule's circuit_breaker override.
func ConfigFor(ruleID string, rulesCfg map[string]map[string]interface{}) Config {
	cfg := DefaultConfig()

	overlay := func(s rule.Settings) {
		if s == nil {
			return
		}
		cfg.Enabled = s.Bool("enabled", cfg.Enabled)
		cfg.DegradedAfter = s.Int("degraded_after", cfg.DegradedAfter)
		cfg.PassiveAfter = s.Int("passive_after", cfg.PassiveAfter)
		cfg.OpenAfter = s.Int("open_after", cfg.OpenAfter)
		cfg.ResetAfterClean = s.Int("reset_after_clean", cfg.ResetAfterClean)
		cfg.ResetAfterMinutes = s.Int("reset_after_minutes", cfg.ResetAfterMinutes)
	}

	overlay(rule.Settings(rulesCfg[GlobalKey]))
	if ruleCfg, ok := rulesCfg[ruleID]; ok {
		overlay(rule.Settings(rule.Settings(ruleCfg).Map("circuit_breaker")))
	}

	return cfg
}

// Transition is one append-only state-change entry in a record.
type Transition struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	TS     float64 `json:"ts"`
	Reason string  `json:"reason"`
}

// Record tracks one rule's breaker data inside the session state.
// Timestamps are unix seconds so records survive JSON round-trips and
// hand-editing.
type Record struct {
	FireCount   int          `json:"fire_count"`
	CleanCount  int          `json:"clean_count"`
	FirstFireTS *float64     `json:"first_fire_ts"`
	LastFireTS  *float64     `json:"last_fire_ts"`
	State       string       `json:"state"`
	Transitions []Transition `json:"transitions"`
}

func newRecord() *Record {
	return &Record{
		State:       string(StateActive),
		Transitions: []Transition{},
	}
}

// stateForCount derives the breaker state from a fire count. A zero or
// negative threshold is reached immediately.
func stateForCount(fireCount int, cfg Config) State {
	switch {
	case fireCount >= cfg.OpenAfter:
		return StateOpen
	case fireCount >= cfg.PassiveAfter:
		return StatePassive
	case fireCount >= cfg.DegradedAfter:
		return StateDegraded
	default:
		return StateActive
	}
}

// downgrade maps an error finding's severity through the breaker state.
// The second return is false when the finding should be suppressed.
func downgrade(severity rule.Severity, state State) (rule.Severity, bool) {
	if severity != rule.Error {
		return severity, true
	}

	switch state {
	case StateDegraded:
		return rule.Warning, true
	case StatePassive:
		return rule.Info, true
	case StateOpen:
		return "", false
	default:
		return rule.Error, true
	}
}

// validState parses a stored state string, treating anything unrecognized as
// active. Corrupted session data must not raise.
func validState(s string) State {
	switch State(s) {
	case StateDegraded:
		return StateDegraded
	case StatePassive:
		return StatePassive
	case StateOpen:
		return StateOpen
	default:
		return StateActive
	}
}

func unixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

func shouldResetByTime(rec *Record, cfg Config, now time.Time) bool {
	if rec.LastFireTS == nil {
		return false
	}
	elapsedMinutes := (unixSeconds(now) - *rec.LastFireTS) / 60
	return elapsedMinutes >= float64(cfg.ResetAfterMinutes)
}

// reset returns a record to the zero/active state, recording a transition
// when the state actually changes.
func reset(rec *Record, ruleID string, now time.Time) {
	oldState := rec.State
	rec.FireCount = 0
	rec.CleanCount = 0
	rec.FirstFireTS = nil
	rec.LastFireTS = nil
	if oldState != string(StateActive) {
		rec.Transitions = append(rec.Transitions, Transition{
			From:   oldState,
			To:     string(StateActive),
			TS:     unixSeconds(now),
			Reason: "reset",
		})
		logger.Debug().
			Str("rule", ruleID).
			Str("from", oldState).
			Msg("Circuit breaker reset to active")
	}
	rec.State = string(StateActive)
}

// Apply post-processes one round of findings, mutating the session state's
// breaker records in place and returning the filtered findings.
//
// Two passes run each round: clean-side accounting for every tracked rule
// that produced no error this round, then fire-side accounting per error
// finding. Non-error findings never touch the records.
func Apply(findings []rule.Finding, state map[string]interface{}, rulesCfg map[string]map[string]interface{}, now time.Time) []rule.Finding {
	store := recordStore(state)

	fired := map[string]struct{}{}
	for _, f := range findings {
		if f.Severity == rule.Error {
			fired[f.RuleID] = struct{}{}
		}
	}

	// Clean-side: rules already tracked that did not fire this round.
	for ruleID, rec := range store {
		if _, ok := fired[ruleID]; ok {
			continue
		}
		cfg := ConfigFor(ruleID, rulesCfg)
		if !cfg.Enabled {
			continue
		}
		rec.CleanCount++
		if rec.CleanCount >= cfg.ResetAfterClean {
			reset(rec, ruleID, now)
		}
	}

	// Fire-side: process this round's findings in order.
	result := make([]rule.Finding, 0, len(findings))
	for _, f := range findings {
		// The protection check comes before the enabled check so that
		// configuration cannot defeat it.
		isProtected := IsProtected(f.RuleID)

		cfg := ConfigFor(f.RuleID, rulesCfg)

		if !isProtected && !cfg.Enabled {
			result = append(result, f)
			continue
		}

		if f.Severity != rule.Error {
			result = append(result, f)
			continue
		}

		rec, ok := store[f.RuleID]
		if !ok {
			rec = newRecord()
			store[f.RuleID] = rec
		}

		if shouldResetByTime(rec, cfg, now) {
			reset(rec, f.RuleID, now)
		}

		rec.FireCount++
		rec.CleanCount = 0
		ts := unixSeconds(now)
		if rec.FirstFireTS == nil {
			rec.FirstFireTS = &ts
		}
		rec.LastFireTS = &ts

		newState := stateForCount(rec.FireCount, cfg)

		oldState := rec.State
		if oldState != string(newState) && !isProtected {
			rec.Transitions = append(rec.Transitions, Transition{
				From:   oldState,
				To:     string(newState),
				TS:     ts,
				Reason: "fire_count",
			})
			rec.State = string(newState)
			logger.Info().
				Str("rule", f.RuleID).
				Str("from", oldState).
				Str("to", string(newState)).
				Int("fire_count", rec.FireCount).
				Msg("Circuit breaker state change")
		}

		// Protected rules stay active and keep their original finding.
		if isProtected {
			rec.State = string(StateActive)
			result = append(result, f)
			continue
		}

		effectiveState := validState(rec.State)
		rec.State = string(effectiveState)

		newSeverity, keep := downgrade(f.Severity, effectiveState)
		if !keep {
			logger.Info().
				Str("rule", f.RuleID).
				Int("fire_count", rec.FireCount).
				Msg("Circuit breaker suppressing finding")
			continue
		}

		out := f
		if newSeverity != f.Severity {
			out.Message = fmt.Sprintf(
				"[Circuit breaker: fired %dx, degraded from %s to %s] %s",
				rec.FireCount, f.Severity, newSeverity, f.Message,
			)
			out.Severity = newSeverity
		}
		result = append(result, out)
	}

	return result
}

// Records returns the breaker record map from a session state without
// creating one, for status reporting.
func Records(state map[string]interface{}) map[string]*Record {
	raw, ok := state[StateKey]
	if !ok {
		return map[string]*Record{}
	}
	return decodeStore(raw)
}

// recordStore returns the typed record map inside the session state,
// installing the decoded form so mutations persist on save.
func recordStore(state map[string]interface{}) map[string]*Record {
	store := decodeStore(state[StateKey])
	state[StateKey] = store
	return store
}

func decodeStore(raw interface{}) map[string]*Record {
	switch existing := raw.(type) {
	case map[string]*Record:
		return existing
	case map[string]interface{}:
		out := make(map[string]*Record, len(existing))
		for ruleID, entry := range existing {
			out[ruleID] = decodeRecord(entry)
		}
		return out
	default:
		return map[string]*Record{}
	}
}

// decodeRecord rebuilds a record from JSON-decoded session data. Missing or
// invalid fields fall back to the active defaults rather than failing.
func decodeRecord(raw interface{}) *Record {
	if rec, ok := raw.(*Record); ok {
		return rec
	}

	rec := newRecord()
	m, ok := raw.(map[string]interface{})
	if !ok {
		return rec
	}

	rec.FireCount = intValue(m["fire_count"])
	rec.CleanCount = intValue(m["clean_count"])
	rec.FirstFireTS = floatPtr(m["first_fire_ts"])
	rec.LastFireTS = floatPtr(m["last_fire_ts"])
	if s, ok := m["state"].(string); ok && s != "" {
		rec.State = s
	}

	if list, ok := m["transitions"].([]interface{}); ok {
		for _, entry := range list {
			tm, ok := entry.(map[string]interface{})
			if !ok {
				continue
			}
			rec.Transitions = append(rec.Transitions, Transition{
				From:   stringValue(tm["from"]),
				To:     stringValue(tm["to"]),
				TS:     floatValue(tm["ts"]),
				Reason: stringValue(tm["reason"]),
			})
		}
	}

	return rec
}

func intValue(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func floatValue(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}

func floatPtr(v interface{}) *float64 {
	switch n := v.(type) {
	case float64:
		f := n
		return &f
	case int:
		f := float64(n)
		return &f
	case int64:
		f := float64(n)
		return &f
	}
	return nil
}

func stringValue(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}
