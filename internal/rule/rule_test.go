package rule

import (
	"testing"

	"github.com/ihavespoons/railguard/internal/hooks"
)

func TestSeverityIsBlocking(t *testing.T) {
	tests := []struct {
		severity Severity
		want     bool
	}{
		{Error, true},
		{Warning, false},
		{Info, false},
	}

	for _, tt := range tests {
		if got := tt.severity.IsBlocking(); got != tt.want {
			t.Errorf("IsBlocking(%q) = %v, want %v", tt.severity, got, tt.want)
		}
	}
}

func TestMetaAppliesTo(t *testing.T) {
	meta := Meta{
		ID:     "test-rule",
		Events: []hooks.EventType{hooks.PreToolUse, hooks.PostToolUse},
	}

	if !meta.AppliesTo(hooks.PreToolUse) {
		t.Error("should apply to PreToolUse")
	}
	if !meta.AppliesTo(hooks.PostToolUse) {
		t.Error("should apply to PostToolUse")
	}
	if meta.AppliesTo(hooks.Stop) {
		t.Error("should not apply to Stop")
	}

	empty := Meta{ID: "no-events"}
	if empty.AppliesTo(hooks.PreToolUse) {
		t.Error("rule with no events should apply to nothing")
	}
}

func TestContextAccessors(t *testing.T) {
	ctx := &Context{
		ToolInput: map[string]interface{}{
			"file_path": "/src/main.go",
			"command":   "ls -la",
			"content":   "package main",
		},
	}

	if got := ctx.FilePath(); got != "/src/main.go" {
		t.Errorf("FilePath() = %q", got)
	}
	if got := ctx.Command(); got != "ls -la" {
		t.Errorf("Command() = %q", got)
	}
	if got := ctx.Content(); got != "package main" {
		t.Errorf("Content() = %q", got)
	}
}

func TestContextAccessors_NilInput(t *testing.T) {
	ctx := &Context{}

	if got := ctx.FilePath(); got != "" {
		t.Errorf("FilePath() = %q, want empty", got)
	}
	if got := ctx.Command(); got != "" {
		t.Errorf("Command() = %q, want empty", got)
	}
	if got := ctx.Content(); got != "" {
		t.Errorf("Content() = %q, want empty", got)
	}
}

func TestContextAccessors_WrongType(t *testing.T) {
	ctx := &Context{
		ToolInput: map[string]interface{}{
			"file_path": 42,
			"command":   true,
		},
	}

	if got := ctx.FilePath(); got != "" {
		t.Errorf("FilePath() = %q, want empty for non-string", got)
	}
	if got := ctx.Command(); got != "" {
		t.Errorf("Command() = %q, want empty for non-string", got)
	}
}

func TestContextSettings(t *testing.T) {
	ctx := &Context{
		Config: map[string]map[string]interface{}{
			"max-file-size": {"limit": 300},
		},
	}

	s := ctx.Settings("max-file-size")
	if got := s.Int("limit", 500); got != 300 {
		t.Errorf("got limit=%d, want 300", got)
	}

	missing := ctx.Settings("no-such-rule")
	if got := missing.Int("limit", 500); got != 500 {
		t.Errorf("missing block should fall back to default, got %d", got)
	}

	nilCfg := &Context{}
	if got := nilCfg.Settings("anything").String("key", "def"); got != "def" {
		t.Errorf("nil config should fall back to default, got %q", got)
	}
}

func TestContextSessionMap(t *testing.T) {
	ctx := &Context{Session: map[string]interface{}{}}

	m := ctx.SessionMap("token_budget")
	m["total_calls"] = 3

	again := ctx.SessionMap("token_budget")
	if again["total_calls"] != 3 {
		t.Error("SessionMap should return the same map on repeat calls")
	}

	if _, ok := ctx.Session["token_budget"]; !ok {
		t.Error("SessionMap should store the map in the session state")
	}
}

func TestContextSessionMap_NilSession(t *testing.T) {
	ctx := &Context{}

	m := ctx.SessionMap("counters")
	if m == nil {
		t.Fatal("SessionMap returned nil")
	}
	m["n"] = 1
	if ctx.Session == nil {
		t.Fatal("SessionMap should initialize the session state")
	}
}

func TestSettingsBool(t *testing.T) {
	s := Settings{"enabled": true, "wrong": "yes"}

	if !s.Bool("enabled", false) {
		t.Error("got false, want true")
	}
	if s.Bool("missing", false) {
		t.Error("missing key should return default")
	}
	if !s.Bool("wrong", true) {
		t.Error("wrong type should return default")
	}
}

func TestSettingsInt(t *testing.T) {
	tests := []struct {
		name  string
		value interface{}
		want  int
	}{
		{"int", 42, 42},
		{"int64", int64(42), 42},
		{"float64 from json", float64(42), 42},
		{"string is not int", "42", 7},
		{"nil", nil, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Settings{"key": tt.value}
			if got := s.Int("key", 7); got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSettingsStringSlice(t *testing.T) {
	s := Settings{
		"paths": []interface{}{"a.go", "b.go", 42, "c.go"},
		"bad":   "not a list",
	}

	got := s.StringSlice("paths")
	want := []string{"a.go", "b.go", "c.go"}
	if len(got) != len(want) {
		t.Fatalf("got %d elements, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if s.StringSlice("bad") != nil {
		t.Error("non-list value should return nil")
	}
	if s.StringSlice("missing") != nil {
		t.Error("missing key should return nil")
	}
}

func TestSettingsMap(t *testing.T) {
	s := Settings{
		"nested": map[string]interface{}{"k": "v"},
	}

	m := s.Map("nested")
	if m == nil {
		t.Fatal("got nil map")
	}
	if m["k"] != "v" {
		t.Errorf("got k=%v", m["k"])
	}
	if s.Map("missing") != nil {
		t.Error("missing key should return nil")
	}
}

func TestPattern(t *testing.T) {
	re, err := Pattern(`\brm\s+-rf\b`)
	if err != nil {
		t.Fatalf("Pattern failed: %v", err)
	}
	if !re.MatchString("rm -rf /") {
		t.Error("pattern should match")
	}

	// Second call hits the cache and must return the same instance.
	again, err := Pattern(`\brm\s+-rf\b`)
	if err != nil {
		t.Fatalf("Pattern failed on cached call: %v", err)
	}
	if re != again {
		t.Error("cached call should return the same compiled pattern")
	}

	if _, err := Pattern(`[unclosed`); err == nil {
		t.Error("invalid pattern should return an error")
	}
}

func TestPatterns_DropsInvalid(t *testing.T) {
	res := Patterns([]string{`valid.*`, `[broken`, `also-valid`})
	if len(res) != 2 {
		t.Errorf("got %d compiled patterns, want 2", len(res))
	}
}
