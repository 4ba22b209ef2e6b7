package golang

import (
	"strings"
	"testing"

	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/rule"
)

func writeCtx(path, content string) *rule.Context {
	return &rule.Context{
		Event:     hooks.PreToolUse,
		ToolName:  "Write",
		ToolInput: map[string]interface{}{"file_path": path, "content": content},
		Session:   map[string]interface{}{},
	}
}

func TestNoPanic(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		content string
		want    int
	}{
		{"panic in library code", "/p/internal/store/store.go", "func open() {\n\tpanic(\"no db\")\n}\n", 1},
		{"panic in main allowed", "/p/cmd/app/main.go", "func main() {\n\tpanic(\"usage\")\n}\n", 0},
		{"panic in test allowed", "/p/internal/store/store_test.go", "func helper() {\n\tpanic(\"bad fixture\")\n}\n", 0},
		{"commented panic", "/p/internal/store/store.go", "// panic(\"old behavior\")\nfunc open() {}\n", 0},
		{"no panic", "/p/internal/store/store.go", "func open() error {\n\treturn errOpen\n}\n", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings, err := NoPanic{}.Evaluate(writeCtx(tt.path, tt.content))
			if err != nil {
				t.Fatal(err)
			}
			if len(findings) != tt.want {
				t.Errorf("got %d findings, want %d", len(findings), tt.want)
			}
		})
	}
}

func TestNoPanic_LineAndMessage(t *testing.T) {
	findings, err := NoPanic{}.Evaluate(writeCtx("/p/internal/parse.go", "package parse\n\nfunc mustParse(s string) {\n\tpanic(s)\n}\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 1 {
		t.Fatalf("got %d findings, want 1", len(findings))
	}
	if findings[0].Line != 4 {
		t.Errorf("got line=%d, want 4", findings[0].Line)
	}
	if !strings.Contains(findings[0].Message, "panic() call in parse.go") {
		t.Errorf("got message=%q", findings[0].Message)
	}
}

func TestNoPanic_AllowInSetting(t *testing.T) {
	config := map[string]map[string]interface{}{
		"go-no-panic": {"allow_in": []interface{}{"legacy.go"}},
	}

	ctx := writeCtx("/p/internal/legacy.go", "func boom() {\n\tpanic(\"kept for now\")\n}\n")
	ctx.Config = config
	findings, err := NoPanic{}.Evaluate(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 0 {
		t.Errorf("got %d findings for allowed file, want 0", len(findings))
	}

	// A custom allow list replaces the default, so main.go is no longer
	// exempt.
	ctx = writeCtx("/p/cmd/app/main.go", "func main() {\n\tpanic(\"usage\")\n}\n")
	ctx.Config = config
	findings, err = NoPanic{}.Evaluate(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 1 {
		t.Errorf("got %d findings for main.go outside custom list, want 1", len(findings))
	}
}

func TestContextTODO(t *testing.T) {
	ctx := &rule.Context{
		Event:       hooks.PostToolUse,
		ToolName:    "Edit",
		ToolInput:   map[string]interface{}{"file_path": "/p/internal/api/client.go"},
		FileContent: "func (c *Client) fetch() {\n\tc.do(context.TODO())\n}\n\nfunc (c *Client) push() {\n\tc.do(context.TODO())\n}\n",
		Session:     map[string]interface{}{},
	}

	findings, err := ContextTODO{}.Evaluate(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 2 {
		t.Fatalf("got %d findings, want 2", len(findings))
	}
	if findings[0].Line != 2 || findings[1].Line != 6 {
		t.Errorf("got lines %d and %d, want 2 and 6", findings[0].Line, findings[1].Line)
	}
}

func TestContextTODO_SkipsTests(t *testing.T) {
	ctx := &rule.Context{
		Event:       hooks.PostToolUse,
		ToolName:    "Write",
		ToolInput:   map[string]interface{}{"file_path": "/p/internal/api/client_test.go"},
		FileContent: "c.do(context.TODO())\n",
		Session:     map[string]interface{}{},
	}
	findings, err := ContextTODO{}.Evaluate(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 0 {
		t.Errorf("got %d findings for test file, want 0", len(findings))
	}
}

func TestLocalReplace(t *testing.T) {
	const header = "module example.com/app\n\ngo 1.22\n\nrequire github.com/x/y v1.0.0\n\n"

	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"local replace", header + "replace github.com/x/y => ../y\n", 1},
		{"absolute path replace", header + "replace github.com/x/y => /home/dev/y\n", 1},
		{"versioned replace", header + "replace github.com/x/y => github.com/fork/y v1.2.3\n", 0},
		{"no replace", header, 0},
		{"unparseable", "module {{{\n", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings, err := LocalReplace{}.Evaluate(writeCtx("/p/go.mod", tt.content))
			if err != nil {
				t.Fatal(err)
			}
			if len(findings) != tt.want {
				t.Errorf("got %d findings, want %d", len(findings), tt.want)
			}
		})
	}
}

func TestLocalReplace_Message(t *testing.T) {
	content := "module example.com/app\n\ngo 1.22\n\nreplace github.com/x/y => ../y\n"
	findings, err := LocalReplace{}.Evaluate(writeCtx("/p/go.mod", content))
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 1 {
		t.Fatalf("got %d findings, want 1", len(findings))
	}
	if !strings.Contains(findings[0].Message, "github.com/x/y") || !strings.Contains(findings[0].Message, "../y") {
		t.Errorf("got message=%q", findings[0].Message)
	}
	if findings[0].Line != 5 {
		t.Errorf("got line=%d, want 5", findings[0].Line)
	}
}

func TestLocalReplace_OtherFiles(t *testing.T) {
	findings, err := LocalReplace{}.Evaluate(writeCtx("/p/main.go", "replace github.com/x/y => ../y\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 0 {
		t.Errorf("got %d findings for non-go.mod file, want 0", len(findings))
	}
}

func TestRules_MetaIntegrity(t *testing.T) {
	if Name != "go" {
		t.Fatalf("pack name is %q, want go", Name)
	}
	rules := Rules()
	if len(rules) != 3 {
		t.Fatalf("got %d rules, want 3", len(rules))
	}
	for _, r := range rules {
		m := r.Meta()
		if m.Pack != Name {
			t.Errorf("rule %s has pack %q, want %q", m.ID, m.Pack, Name)
		}
	}
}
