// Package custom loads project-local rules from YAML files. Each file in the
// configured directory declares one rule with regex match conditions, a CEL
// expression, or both; loaded rules run through the engine exactly like
// built-ins.
package custom

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/cel-go/cel"
	"gopkg.in/yaml.v3"

	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/logger"
	"github.com/ihavespoons/railguard/internal/rule"
)

// Name is the pack identifier custom rules are registered under.
const Name = "custom"

// ruleFile is the YAML shape of one custom rule file.
type ruleFile struct {
	ID          string    `yaml:"id"`
	Description string    `yaml:"description"`
	Severity    string    `yaml:"severity"`
	Events      []string  `yaml:"events"`
	Message     string    `yaml:"message"`
	Suggestion  string    `yaml:"suggestion"`
	Match       matchSpec `yaml:"match"`
	Expr        string    `yaml:"expr"`
}

// matchSpec holds the regex conditions. All present conditions must hold for
// the rule to fire.
type matchSpec struct {
	Tools   []string `yaml:"tools"`
	Command string   `yaml:"command"`
	Content string   `yaml:"content"`
	Path    string   `yaml:"path"`
}

func (m matchSpec) empty() bool {
	return m.Command == "" && m.Content == "" && m.Path == ""
}

// Load reads every rule file in dir. A relative dir is resolved against
// projectDir. A missing directory yields no rules; a malformed file is logged
// and skipped so one broken rule cannot disable the rest.
func Load(dir, projectDir string) []rule.Rule {
	if dir == "" {
		return nil
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(projectDir, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	env, err := cel.NewEnv(
		cel.Variable("input", cel.MapType(cel.StringType, cel.DynType)),
	)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to create CEL environment, custom rules disabled")
		return nil
	}

	var rules []rule.Rule
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, "_") {
			continue
		}
		ext := filepath.Ext(name)
		if ext != ".yml" && ext != ".yaml" {
			continue
		}

		path := filepath.Join(dir, name)
		r, err := loadFile(path, env)
		if err != nil {
			logger.Warn().Str("file", path).Err(err).Msg("Skipping custom rule")
			continue
		}
		rules = append(rules, r)
	}

	return rules
}

func loadFile(path string, env *cel.Env) (rule.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var rf ruleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse error: %v", err)
	}

	if rf.ID == "" {
		return nil, fmt.Errorf("missing id")
	}
	if rf.Match.empty() && rf.Expr == "" {
		return nil, fmt.Errorf("rule %s has no match conditions and no expr", rf.ID)
	}

	severity, ok := parseSeverity(rf.Severity)
	if !ok {
		return nil, fmt.Errorf("rule %s has unknown severity %q", rf.ID, rf.Severity)
	}

	events, err := parseEvents(rf.Events)
	if err != nil {
		return nil, fmt.Errorf("rule %s: %v", rf.ID, err)
	}

	cr := &customRule{
		meta: rule.Meta{
			ID:          rf.ID,
			Description: rf.Description,
			Severity:    severity,
			Events:      events,
			Pack:        Name,
		},
		message:    rf.Message,
		suggestion: rf.Suggestion,
	}
	if cr.message == "" {
		cr.message = rf.Description
	}
	if cr.message == "" {
		cr.message = rf.ID
	}

	for _, tool := range rf.Match.Tools {
		if cr.tools == nil {
			cr.tools = map[string]bool{}
		}
		cr.tools[tool] = true
	}

	if cr.commandRE, err = compileCondition(rf.Match.Command); err != nil {
		return nil, fmt.Errorf("rule %s command pattern: %v", rf.ID, err)
	}
	if cr.contentRE, err = compileCondition(rf.Match.Content); err != nil {
		return nil, fmt.Errorf("rule %s content pattern: %v", rf.ID, err)
	}
	if cr.pathRE, err = compileCondition(rf.Match.Path); err != nil {
		return nil, fmt.Errorf("rule %s path pattern: %v", rf.ID, err)
	}

	if rf.Expr != "" {
		ast, issues := env.Compile(rf.Expr)
		if issues != nil && issues.Err() != nil {
			return nil, fmt.Errorf("rule %s expr: %v", rf.ID, issues.Err())
		}
		prg, err := env.Program(ast)
		if err != nil {
			return nil, fmt.Errorf("rule %s expr: %v", rf.ID, err)
		}
		cr.program = prg
	}

	return cr, nil
}

func compileCondition(expr string) (*regexp.Regexp, error) {
	if expr == "" {
		return nil, nil
	}
	return rule.Pattern(expr)
}

func parseSeverity(s string) (rule.Severity, bool) {
	switch strings.ToLower(s) {
	case "error":
		return rule.Error, true
	case "warning", "warn":
		return rule.Warning, true
	case "info":
		return rule.Info, true
	case "":
		return rule.Warning, true
	}
	return "", false
}

func parseEvents(names []string) ([]hooks.EventType, error) {
	if len(names) == 0 {
		return []hooks.EventType{hooks.PreToolUse}, nil
	}
	events := make([]hooks.EventType, 0, len(names))
	for _, name := range names {
		event := hooks.EventType(name)
		if !hooks.Valid(event) {
			return nil, fmt.Errorf("unknown event %q", name)
		}
		events = append(events, event)
	}
	return events, nil
}

// customRule is one loaded rule. Regexes and the CEL program are compiled at
// load time, so Evaluate only matches.
type customRule struct {
	meta       rule.Meta
	message    string
	suggestion string
	tools      map[string]bool
	commandRE  *regexp.Regexp
	contentRE  *regexp.Regexp
	pathRE     *regexp.Regexp
	program    cel.Program
}

func (r *customRule) Meta() rule.Meta {
	return r.meta
}

func (r *customRule) Evaluate(ctx *rule.Context) ([]rule.Finding, error) {
	if r.tools != nil && !r.tools[ctx.ToolName] {
		return nil, nil
	}

	content := ctx.FileContent
	if content == "" {
		content = ctx.Content()
	}

	if r.commandRE != nil && !r.commandRE.MatchString(ctx.Command()) {
		return nil, nil
	}
	if r.contentRE != nil && !r.contentRE.MatchString(content) {
		return nil, nil
	}
	if r.pathRE != nil && !r.pathRE.MatchString(ctx.FilePath()) {
		return nil, nil
	}

	if r.program != nil {
		out, _, err := r.program.Eval(map[string]interface{}{
			"input": map[string]interface{}{
				"tool_name": ctx.ToolName,
				"command":   ctx.Command(),
				"file_path": ctx.FilePath(),
				"content":   content,
				"prompt":    ctx.Prompt,
			},
		})
		if err != nil {
			return nil, err
		}
		matched, ok := out.Value().(bool)
		if !ok {
			return nil, fmt.Errorf("expr must return a boolean, got %T", out.Value())
		}
		if !matched {
			return nil, nil
		}
	}

	return []rule.Finding{{
		RuleID:     r.meta.ID,
		Message:    r.message,
		Severity:   r.meta.Severity,
		FilePath:   ctx.FilePath(),
		Suggestion: r.suggestion,
	}}, nil
}
