package hooks

import (
	"encoding/json"
	"testing"
)

func TestEventTypeConstants(t *testing.T) {
	tests := []struct {
		event EventType
		want  string
	}{
		{PreToolUse, "PreToolUse"},
		{PostToolUse, "PostToolUse"},
		{Stop, "Stop"},
		{SessionStart, "SessionStart"},
		{SessionEnd, "SessionEnd"},
		{UserPromptSubmit, "UserPromptSubmit"},
		{SubagentStart, "SubagentStart"},
		{SubagentStop, "SubagentStop"},
		{Notification, "Notification"},
		{PreCompact, "PreCompact"},
		{PostToolUseFailure, "PostToolUseFailure"},
		{PermissionRequest, "PermissionRequest"},
		{ConfigChange, "ConfigChange"},
		{WorktreeCreate, "WorktreeCreate"},
		{WorktreeRemove, "WorktreeRemove"},
		{TeammateIdle, "TeammateIdle"},
		{TaskCompleted, "TaskCompleted"},
	}

	for _, tt := range tests {
		if string(tt.event) != tt.want {
			t.Errorf("got %q, want %q", string(tt.event), tt.want)
		}
	}

	if len(AllEvents) != len(tests) {
		t.Errorf("AllEvents has %d entries, want %d", len(AllEvents), len(tests))
	}
}

func TestValid(t *testing.T) {
	for _, e := range AllEvents {
		if !Valid(e) {
			t.Errorf("Valid(%q) = false, want true", e)
		}
	}
	if Valid("NotAnEvent") {
		t.Error("Valid(\"NotAnEvent\") = true, want false")
	}
	if Valid("") {
		t.Error("Valid(\"\") = true, want false")
	}
}

func TestIsPreAction(t *testing.T) {
	tests := []struct {
		event EventType
		want  bool
	}{
		{PreToolUse, true},
		{PermissionRequest, true},
		{PostToolUse, false},
		{Stop, false},
		{UserPromptSubmit, false},
		{SessionStart, false},
	}

	for _, tt := range tests {
		if got := IsPreAction(tt.event); got != tt.want {
			t.Errorf("IsPreAction(%q) = %v, want %v", tt.event, got, tt.want)
		}
	}
}

func TestParsePayload(t *testing.T) {
	jsonData := `{
		"session_id": "sess-123",
		"transcript_path": "/tmp/transcript",
		"cwd": "/home/user/project",
		"hook_event_name": "PreToolUse",
		"tool_name": "Bash",
		"tool_input": {"command": "ls -la"},
		"tool_use_id": "tool-456"
	}`

	p := ParsePayload([]byte(jsonData))

	if p.SessionID != "sess-123" {
		t.Errorf("got SessionID=%q", p.SessionID)
	}
	if p.ToolName != "Bash" {
		t.Errorf("got ToolName=%q", p.ToolName)
	}
	if p.ToolInput["command"] != "ls -la" {
		t.Errorf("got command=%v", p.ToolInput["command"])
	}
	if p.ToolUseID != "tool-456" {
		t.Errorf("got ToolUseID=%q", p.ToolUseID)
	}
}

func TestParsePayload_PostToolUse(t *testing.T) {
	jsonData := `{
		"session_id": "sess-123",
		"tool_name": "Edit",
		"tool_input": {"file_path": "/src/main.go"},
		"tool_response": {"success": true}
	}`

	p := ParsePayload([]byte(jsonData))

	if p.ToolName != "Edit" {
		t.Errorf("got ToolName=%q", p.ToolName)
	}
	if p.ToolInput["file_path"] != "/src/main.go" {
		t.Errorf("got file_path=%v", p.ToolInput["file_path"])
	}
	if p.ToolResponse["success"] != true {
		t.Errorf("got success=%v", p.ToolResponse["success"])
	}
}

func TestParsePayload_MalformedInput(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"truncated json", []byte(`{"tool_name": "Ba`)},
		{"not json", []byte("hello world")},
		{"wrong type", []byte(`{"tool_name": 42}`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ParsePayload(tt.data)
			if p == nil {
				t.Fatal("ParsePayload returned nil")
			}
			if p.ToolName != "" || p.SessionID != "" {
				t.Errorf("malformed input should yield empty payload, got %+v", p)
			}
		})
	}
}

func TestNewDenyOutput(t *testing.T) {
	output := NewDenyOutput(PreToolUse, "Dangerous command blocked")

	if !output.Continue {
		t.Error("Continue should be true for deny")
	}
	if output.HookSpecificOutput == nil {
		t.Fatal("HookSpecificOutput is nil")
	}
	if output.HookSpecificOutput.HookEventName != "PreToolUse" {
		t.Errorf("got HookEventName=%q, want \"PreToolUse\"", output.HookSpecificOutput.HookEventName)
	}
	if output.HookSpecificOutput.PermissionDecision != PermissionDeny {
		t.Errorf("got PermissionDecision=%q, want \"deny\"", output.HookSpecificOutput.PermissionDecision)
	}
	if output.HookSpecificOutput.PermissionDecisionReason != "Dangerous command blocked" {
		t.Errorf("got reason=%q", output.HookSpecificOutput.PermissionDecisionReason)
	}
}

func TestNewAdvisoryOutput(t *testing.T) {
	output := NewAdvisoryOutput("2 warning(s)")

	if output.Continue {
		t.Error("Continue should be unset for advisory")
	}
	if output.SystemMessage != "2 warning(s)" {
		t.Errorf("got SystemMessage=%q", output.SystemMessage)
	}
	if output.HookSpecificOutput != nil {
		t.Error("HookSpecificOutput should be nil for advisory")
	}
}

func TestNewReportOutput(t *testing.T) {
	output := NewReportOutput("Session report")

	if !output.Continue {
		t.Error("Continue should be true for report")
	}
	if output.SystemMessage != "Session report" {
		t.Errorf("got SystemMessage=%q", output.SystemMessage)
	}
}

func TestHookOutput_JSONSerialization(t *testing.T) {
	tests := []struct {
		name   string
		output *HookOutput
		check  func(t *testing.T, data map[string]interface{})
	}{
		{
			name:   "deny output",
			output: NewDenyOutput(PreToolUse, "Blocked"),
			check: func(t *testing.T, data map[string]interface{}) {
				if data["continue"] != true {
					t.Error("continue should be true")
				}
				hso, ok := data["hookSpecificOutput"].(map[string]interface{})
				if !ok {
					t.Fatal("hookSpecificOutput missing")
				}
				if hso["permissionDecision"] != "deny" {
					t.Error("permissionDecision should be deny")
				}
				if hso["permissionDecisionReason"] != "Blocked" {
					t.Error("permissionDecisionReason mismatch")
				}
			},
		},
		{
			name:   "advisory output omits zero fields",
			output: NewAdvisoryOutput("warning text"),
			check: func(t *testing.T, data map[string]interface{}) {
				if _, ok := data["continue"]; ok {
					t.Error("continue should be omitted")
				}
				if _, ok := data["hookSpecificOutput"]; ok {
					t.Error("hookSpecificOutput should be omitted")
				}
				if data["systemMessage"] != "warning text" {
					t.Error("systemMessage mismatch")
				}
			},
		},
		{
			name:   "empty output is empty object",
			output: &HookOutput{},
			check: func(t *testing.T, data map[string]interface{}) {
				if len(data) != 0 {
					t.Errorf("empty output should serialize to {}, got %v", data)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jsonBytes, err := tt.output.Marshal()
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}

			var data map[string]interface{}
			if err := json.Unmarshal(jsonBytes, &data); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}

			tt.check(t, data)
		})
	}
}
