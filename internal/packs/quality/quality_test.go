package quality

import (
	"strings"
	"testing"

	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/rule"
)

func bashCtx(command string) *rule.Context {
	return &rule.Context{
		Event:     hooks.PreToolUse,
		ToolName:  "Bash",
		ToolInput: map[string]interface{}{"command": command},
		Session:   map[string]interface{}{},
	}
}

func postWriteCtx(path, content string) *rule.Context {
	return &rule.Context{
		Event:       hooks.PostToolUse,
		ToolName:    "Write",
		ToolInput:   map[string]interface{}{"file_path": path},
		FileContent: content,
		Session:     map[string]interface{}{},
	}
}

func TestCommitMessageFormat(t *testing.T) {
	tests := []struct {
		name    string
		command string
		want    int
	}{
		{"conventional feat", `git commit -m "feat: add login flow"`, 0},
		{"conventional scoped", `git commit -m "fix(auth): refresh expired tokens"`, 0},
		{"breaking change marker", `git commit -m "feat!: drop v1 endpoints"`, 0},
		{"single quotes", `git commit -m 'chore: bump deps'`, 0},
		{"no type prefix", `git commit -m "added login"`, 1},
		{"wip", `git commit -m "wip"`, 1},
		{"no message flag", `git commit`, 0},
		{"not a commit", `git push origin feature`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings, err := CommitMessageFormat{}.Evaluate(bashCtx(tt.command))
			if err != nil {
				t.Fatal(err)
			}
			if len(findings) != tt.want {
				t.Errorf("got %d findings, want %d", len(findings), tt.want)
			}
		})
	}
}

func TestCommitMessageFormat_SubjectLength(t *testing.T) {
	subject := "feat: " + strings.Repeat("x", 70)
	findings, err := CommitMessageFormat{}.Evaluate(bashCtx(`git commit -m "` + subject + `"`))
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 1 {
		t.Fatalf("got %d findings, want 1", len(findings))
	}
	if !strings.Contains(findings[0].Message, "exceeds 72 characters (76)") {
		t.Errorf("got message=%q", findings[0].Message)
	}
}

func TestCommitMessageFormat_BodyLengthIgnored(t *testing.T) {
	// Only the subject line counts toward the length limit.
	message := "feat: add cache\n\n" + strings.Repeat("long body line ", 20)
	findings, err := CommitMessageFormat{}.Evaluate(bashCtx(`git commit -m "` + message + `"`))
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 0 {
		t.Errorf("got %d findings, want 0", len(findings))
	}
}

func TestCommitMessageFormat_Settings(t *testing.T) {
	ctx := bashCtx(`git commit -m "update the whole login system"`)
	ctx.Config = map[string]map[string]interface{}{
		"commit-message-format": {"max_subject_length": 20, "format": "any"},
	}

	findings, err := CommitMessageFormat{}.Evaluate(ctx)
	if err != nil {
		t.Fatal(err)
	}
	// format "any" disables the conventional check, so only length fires.
	if len(findings) != 1 {
		t.Fatalf("got %d findings, want 1", len(findings))
	}
	if !strings.Contains(findings[0].Message, "exceeds 20 characters") {
		t.Errorf("got message=%q", findings[0].Message)
	}
}

func TestDeadImports_Python(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"unused import", "import os\n\ndef f():\n    return 1\n", "os"},
		{"used import", "import os\n\nprint(os.getcwd())\n", ""},
		{"unused alias", "import numpy as np\n\nx = 1\n", "np"},
		{"used alias", "import numpy as np\n\nx = np.array([1])\n", ""},
		{"partial from import", "from typing import List, Dict\n\ndef f(xs: List[int]):\n    return xs\n", "Dict"},
		{"dotted import", "import os.path\n\nprint(os.path.join('a'))\n", ""},
		{"underscore name skipped", "import _internal\n\nx = 1\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings, err := DeadImports{}.Evaluate(postWriteCtx("/p/src/mod.py", tt.content))
			if err != nil {
				t.Fatal(err)
			}
			if tt.want == "" {
				if len(findings) != 0 {
					t.Fatalf("got %d findings, want 0: %v", len(findings), findings)
				}
				return
			}
			if len(findings) != 1 {
				t.Fatalf("got %d findings, want 1", len(findings))
			}
			if !strings.Contains(findings[0].Message, tt.want) {
				t.Errorf("got message=%q, want it to name %q", findings[0].Message, tt.want)
			}
		})
	}
}

func TestDeadImports_JavaScript(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		content string
		want    string
	}{
		{"unused named import", "/p/src/app.ts",
			"import { useState, useEffect } from 'react'\n\nconst [x, setX] = useState(0)\n", "useEffect"},
		{"used default import", "/p/src/client.js",
			"import axios from 'axios'\n\naxios.get('/api')\n", ""},
		{"unused default import", "/p/src/client.js",
			"import axios from 'axios'\n\nfetch('/api')\n", "axios"},
		{"renamed import", "/p/src/app.tsx",
			"import { useState as useLocal } from 'react'\n\nconst [x] = useLocal(0)\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings, err := DeadImports{}.Evaluate(postWriteCtx(tt.path, tt.content))
			if err != nil {
				t.Fatal(err)
			}
			if tt.want == "" {
				if len(findings) != 0 {
					t.Fatalf("got %d findings, want 0: %v", len(findings), findings)
				}
				return
			}
			if len(findings) != 1 {
				t.Fatalf("got %d findings, want 1", len(findings))
			}
			if !strings.Contains(findings[0].Message, tt.want) {
				t.Errorf("got message=%q, want it to name %q", findings[0].Message, tt.want)
			}
		})
	}
}

func TestDeadImports_PluralMessage(t *testing.T) {
	findings, err := DeadImports{}.Evaluate(postWriteCtx("/p/src/m.py", "import os\nimport sys\n\nx = 1\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 1 {
		t.Fatalf("got %d findings, want 1", len(findings))
	}
	if !strings.HasPrefix(findings[0].Message, "Potentially unused imports: ") {
		t.Errorf("got message=%q, want plural form", findings[0].Message)
	}
}

func TestDeadImports_ReexportFilesIgnored(t *testing.T) {
	for _, path := range []string{"/p/pkg/__init__.py", "/p/src/index.ts"} {
		findings, err := DeadImports{}.Evaluate(postWriteCtx(path, "import os\n"))
		if err != nil {
			t.Fatal(err)
		}
		if len(findings) != 0 {
			t.Errorf("got %d findings for %s, want 0", len(findings), path)
		}
	}
}

func TestErrorHandlingRemoval(t *testing.T) {
	before := "try:\n    do()\nexcept ValueError:\n    pass\n"

	tests := []struct {
		name   string
		path   string
		before string
		after  string
		want   int
	}{
		{"all handling removed", "/p/src/api.py", before, "do()\n", 1},
		{"handling retained", "/p/src/api.py", before, "try:\n    do()\nexcept ValueError:\n    raise\n", 0},
		{"never had handling", "/p/src/api.py", "do()\n", "do2()\n", 0},
		{"new file", "/p/src/api.py", "", "do()\n", 0},
		{"test file skipped", "/p/tests/test_api.py", before, "do()\n", 0},
		{"catch removed", "/p/src/client.js", "load().catch(err => report(err))\n", "load()\n", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := &rule.Context{
				Event:             hooks.PreToolUse,
				ToolName:          "Write",
				ToolInput:         map[string]interface{}{"file_path": tt.path},
				FileContent:       tt.after,
				FileContentBefore: tt.before,
				Session:           map[string]interface{}{},
			}
			findings, err := ErrorHandlingRemoval{}.Evaluate(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if len(findings) != tt.want {
				t.Errorf("got %d findings, want %d", len(findings), tt.want)
			}
		})
	}
}

func TestErrorHandlingRemoval_CountsInMessage(t *testing.T) {
	ctx := &rule.Context{
		Event:             hooks.PreToolUse,
		ToolName:          "Edit",
		ToolInput:         map[string]interface{}{"file_path": "/p/src/api.py"},
		FileContent:       "do()\n",
		FileContentBefore: "try:\n    do()\nexcept ValueError:\n    pass\n",
		Session:           map[string]interface{}{},
	}
	findings, err := ErrorHandlingRemoval{}.Evaluate(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 1 {
		t.Fatalf("got %d findings, want 1", len(findings))
	}
	if !strings.Contains(findings[0].Message, "2 pattern(s) in previous version, 0 in new version") {
		t.Errorf("got message=%q", findings[0].Message)
	}
}

func TestSelfReviewPrompt(t *testing.T) {
	ctx := &rule.Context{Event: hooks.Stop, Session: map[string]interface{}{}}
	findings, err := SelfReviewPrompt{}.Evaluate(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 1 {
		t.Fatalf("got %d findings, want 1", len(findings))
	}
	if !strings.Contains(findings[0].Message, "senior engineer") {
		t.Errorf("got message=%q, want default review prompt", findings[0].Message)
	}
	if findings[0].Severity != rule.Info {
		t.Errorf("got severity=%s, want %s", findings[0].Severity, rule.Info)
	}
}

func TestSelfReviewPrompt_CustomPrompt(t *testing.T) {
	ctx := &rule.Context{
		Event:   hooks.Stop,
		Session: map[string]interface{}{},
		Config: map[string]map[string]interface{}{
			"self-review-prompt": {"custom_prompt": "Run the smoke suite before you stop."},
		},
	}
	findings, err := SelfReviewPrompt{}.Evaluate(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(findings) != 1 {
		t.Fatalf("got %d findings, want 1", len(findings))
	}
	if findings[0].Message != "Run the smoke suite before you stop." {
		t.Errorf("got message=%q", findings[0].Message)
	}
}

func TestRules_MetaIntegrity(t *testing.T) {
	rules := Rules()
	if len(rules) != 4 {
		t.Fatalf("got %d rules, want 4", len(rules))
	}
	for _, r := range rules {
		m := r.Meta()
		if m.Pack != Name {
			t.Errorf("rule %s has pack %q, want %q", m.ID, m.Pack, Name)
		}
		if len(m.Events) == 0 {
			t.Errorf("rule %s declares no events", m.ID)
		}
	}
}
