package hooks

import "encoding/json"

// EventType represents the type of Claude Code hook event
type EventType string

// Event types for Claude Code hooks
const (
	PreToolUse         EventType = "PreToolUse"
	PostToolUse        EventType = "PostToolUse"
	Stop               EventType = "Stop"
	SessionStart       EventType = "SessionStart"
	SessionEnd         EventType = "SessionEnd"
	UserPromptSubmit   EventType = "UserPromptSubmit"
	SubagentStart      EventType = "SubagentStart"
	SubagentStop       EventType = "SubagentStop"
	Notification       EventType = "Notification"
	PreCompact         EventType = "PreCompact"
	PostToolUseFailure EventType = "PostToolUseFailure"
	PermissionRequest  EventType = "PermissionRequest"
	ConfigChange       EventType = "ConfigChange"
	WorktreeCreate     EventType = "WorktreeCreate"
	WorktreeRemove     EventType = "WorktreeRemove"
	TeammateIdle       EventType = "TeammateIdle"
	TaskCompleted      EventType = "TaskCompleted"
)

// AllEvents lists every hook event in protocol order.
var AllEvents = []EventType{
	PreToolUse, PostToolUse, Stop, SessionStart, SessionEnd,
	UserPromptSubmit, SubagentStart, SubagentStop, Notification,
	PreCompact, PostToolUseFailure, PermissionRequest, ConfigChange,
	WorktreeCreate, WorktreeRemove, TeammateIdle, TaskCompleted,
}

// Valid reports whether the event name is a known hook event.
func Valid(event EventType) bool {
	for _, e := range AllEvents {
		if e == event {
			return true
		}
	}
	return false
}

// IsPreAction reports whether the event blocks via a deny payload rather
// than a non-zero exit code. The supervisor requires a zero exit alongside
// the structured deny for these events.
func IsPreAction(event EventType) bool {
	return event == PreToolUse || event == PermissionRequest
}

// CommonInput contains fields common to all hook events
type CommonInput struct {
	SessionID      string `json:"session_id"`
	TranscriptPath string `json:"transcript_path"`
	Cwd            string `json:"cwd"`
	PermissionMode string `json:"permission_mode"`
	HookEventName  string `json:"hook_event_name"`
}

// Payload is the single input envelope read from stdin. Fields are the union
// of what the supervisor sends across event types; absent fields stay zero.
type Payload struct {
	CommonInput
	ToolName         string                 `json:"tool_name"`
	ToolInput        map[string]interface{} `json:"tool_input"`
	ToolResponse     map[string]interface{} `json:"tool_response"`
	ToolUseID        string                 `json:"tool_use_id"`
	Prompt           string                 `json:"prompt"`
	SubagentOutput   string                 `json:"subagent_output"`
	NotificationType string                 `json:"notification_type"`
	CompactSource    string                 `json:"compact_source"`
	StopHookActive   bool                   `json:"stop_hook_active"`
}

// ParsePayload decodes a raw stdin payload. Malformed or empty input yields
// an empty payload, never an error.
func ParsePayload(data []byte) *Payload {
	var p Payload
	if len(data) == 0 {
		return &p
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return &Payload{}
	}
	return &p
}

// PermissionDecision represents the decision type for pre-action events
type PermissionDecision string

// Permission decision values for pre-action hooks
const (
	PermissionAllow PermissionDecision = "allow"
	PermissionDeny  PermissionDecision = "deny"
	PermissionAsk   PermissionDecision = "ask"
)

// HookOutput is the output structure written to stdout. A zero-value field
// is omitted so that the advisory shape stays minimal.
type HookOutput struct {
	Continue           bool                `json:"continue,omitempty"`
	StopReason         string              `json:"stopReason,omitempty"`
	SuppressOutput     bool                `json:"suppressOutput,omitempty"`
	SystemMessage      string              `json:"systemMessage,omitempty"`
	HookSpecificOutput *HookSpecificOutput `json:"hookSpecificOutput,omitempty"`
}

// HookSpecificOutput contains event-specific output fields
type HookSpecificOutput struct {
	HookEventName            string             `json:"hookEventName"`
	PermissionDecision       PermissionDecision `json:"permissionDecision,omitempty"`
	PermissionDecisionReason string             `json:"permissionDecisionReason,omitempty"`
	AdditionalContext        string             `json:"additionalContext,omitempty"`
}

// NewDenyOutput creates a deny decision for a pre-action event. The process
// must still exit 0: the deny is communicated structurally.
func NewDenyOutput(event EventType, reason string) *HookOutput {
	return &HookOutput{
		Continue: true,
		HookSpecificOutput: &HookSpecificOutput{
			HookEventName:            string(event),
			PermissionDecision:       PermissionDeny,
			PermissionDecisionReason: reason,
		},
	}
}

// NewAdvisoryOutput creates a system-message payload for non-blocking
// findings.
func NewAdvisoryOutput(message string) *HookOutput {
	return &HookOutput{
		SystemMessage: message,
	}
}

// NewReportOutput creates a session-report payload for Stop events.
func NewReportOutput(message string) *HookOutput {
	return &HookOutput{
		Continue:      true,
		SystemMessage: message,
	}
}

// Marshal renders the output as a single JSON line.
func (o *HookOutput) Marshal() ([]byte, error) {
	return json.Marshal(o)
}
