package universal

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/rule"
)

// TokenBudget tracks session activity metrics and warns on excessive usage.
// Counters accumulate in session state under the token_budget key; the Stop
// event turns them into a summary line.
type TokenBudget struct{}

func (TokenBudget) Meta() rule.Meta {
	return rule.Meta{
		ID:          "token-budget",
		Description: "Tracks session activity and warns on excessive tool invocations",
		Severity:    rule.Warning,
		Events:      []hooks.EventType{hooks.PostToolUse, hooks.Stop},
		Pack:        Name,
	}
}

func (r TokenBudget) Evaluate(ctx *rule.Context) ([]rule.Finding, error) {
	m := r.Meta()
	settings := ctx.Settings(m.ID)
	budget := ctx.SessionMap("token_budget")

	switch ctx.Event {
	case hooks.PostToolUse:
		return r.track(ctx, budget, settings), nil
	case hooks.Stop:
		return r.report(budget, settings), nil
	}
	return nil, nil
}

// track updates the counters on each PostToolUse and warns once when the
// call count crosses the configured percentage of the budget.
func (r TokenBudget) track(ctx *rule.Context, budget map[string]interface{}, settings rule.Settings) []rule.Finding {
	if _, ok := budget["session_start_time"]; !ok {
		budget["session_start_time"] = float64(time.Now().Unix())
	}

	invocations, _ := budget["tool_invocations"].(map[string]interface{})
	if invocations == nil {
		invocations = map[string]interface{}{}
	}
	tool := ctx.ToolName
	if tool == "" {
		tool = "unknown"
	}
	invocations[tool] = sessionInt(invocations, tool, 0) + 1
	budget["tool_invocations"] = invocations

	budget["total_content_bytes"] = sessionInt(budget, "total_content_bytes", 0) + len(ctx.Content())

	total := 0
	for name := range invocations {
		total += sessionInt(invocations, name, 0)
	}
	budget["total_calls"] = total

	maxInvocations := settings.Int("max_tool_invocations", 200)
	warnPct := settings.Int("warn_at_percent", 80)
	threshold := maxInvocations * warnPct / 100

	// Fires exactly once, at the crossing. Later calls are past the
	// threshold and stay quiet until the Stop summary.
	if total != threshold {
		return nil
	}

	m := r.Meta()
	return []rule.Finding{{
		RuleID:     m.ID,
		Message:    fmt.Sprintf("Session activity: %d/%d tool calls (%d%% of budget)", total, maxInvocations, warnPct),
		Severity:   m.Severity,
		Suggestion: "Consider wrapping up or breaking this into smaller tasks.",
	}}
}

// report emits the session activity summary at Stop.
func (r TokenBudget) report(budget map[string]interface{}, settings rule.Settings) []rule.Finding {
	total := sessionInt(budget, "total_calls", 0)
	if total == 0 {
		return nil
	}

	contentBytes := sessionInt(budget, "total_content_bytes", 0)
	invocations, _ := budget["tool_invocations"].(map[string]interface{})

	duration := ""
	if start, ok := budget["session_start_time"].(float64); ok && start > 0 {
		elapsed := int(time.Now().Unix() - int64(start))
		duration = fmt.Sprintf(" over %dm%ds", elapsed/60, elapsed%60)
	}

	type toolCount struct {
		name  string
		count int
	}
	counts := make([]toolCount, 0, len(invocations))
	for name := range invocations {
		counts = append(counts, toolCount{name, sessionInt(invocations, name, 0)})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].name < counts[j].name
	})
	if len(counts) > 5 {
		counts = counts[:5]
	}
	parts := make([]string, 0, len(counts))
	for _, tc := range counts {
		parts = append(parts, fmt.Sprintf("%s: %d", tc.name, tc.count))
	}

	maxInvocations := settings.Int("max_tool_invocations", 200)
	severity := rule.Info
	if total > maxInvocations {
		severity = rule.Warning
	}

	m := r.Meta()
	return []rule.Finding{{
		RuleID: m.ID,
		Message: fmt.Sprintf("Session activity: %d tool calls%s, %s bytes written. Top: %s",
			total, duration, humanize.Comma(int64(contentBytes)), strings.Join(parts, ", ")),
		Severity: severity,
	}}
}
