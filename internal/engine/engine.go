package engine

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ihavespoons/railguard/internal/breaker"
	"github.com/ihavespoons/railguard/internal/config"
	"github.com/ihavespoons/railguard/internal/gitutil"
	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/logger"
	"github.com/ihavespoons/railguard/internal/report"
	"github.com/ihavespoons/railguard/internal/rule"
	"github.com/ihavespoons/railguard/internal/session"
	"github.com/ihavespoons/railguard/internal/trace"
)

// Outcome is the result of one hook invocation: the payload to print (nil
// when the invocation is clean) and the exit code the process must use.
type Outcome struct {
	Output         *hooks.HookOutput
	ExitCode       int
	Decision       string
	Findings       []rule.Finding
	RulesEvaluated int
}

// Engine owns the per-invocation pipeline: parse the payload, load session
// state, evaluate rules, run findings through the circuit breaker, persist
// state, and shape the decision output.
type Engine struct {
	cfg        *config.Config
	rules      []rule.Rule
	store      *session.Store
	projectDir string
	evaluator  *Evaluator
	recorder   trace.Recorder
}

// NewEngine creates an engine over the given configuration and rule set.
func NewEngine(cfg *config.Config, rules []rule.Rule, store *session.Store, projectDir string) *Engine {
	return &Engine{
		cfg:        cfg,
		rules:      rules,
		store:      store,
		projectDir: projectDir,
		evaluator:  NewEvaluator(cfg),
	}
}

// SetRecorder attaches an audit recorder. A nil recorder leaves tracing off.
func (e *Engine) SetRecorder(rec trace.Recorder) {
	e.recorder = rec
}

// Run executes the pipeline for one hook event. It never returns an error:
// every failure mode degrades to a permissive outcome, because a crash here
// would let actions through unchecked anyway and a spurious non-zero exit
// would block work on tooling bugs.
func (e *Engine) Run(event hooks.EventType, input []byte) *Outcome {
	started := time.Now()
	payload := hooks.ParsePayload(input)

	logger.Debug().
		Str("event", string(event)).
		Str("tool", payload.ToolName).
		Msg("Running hook pipeline")

	key := session.Key()
	state := e.store.Load(key)

	ctx := e.buildContext(event, payload, state)

	result := e.evaluator.Evaluate(e.rules, ctx)
	findings := breaker.Apply(result.Findings, state, e.cfg.Rules, time.Now())

	if err := e.store.Save(key, state); err != nil {
		logger.Error().Err(err).Msg("Failed to save session state")
	}

	rep := &report.Report{Findings: findings, RulesEvaluated: result.RulesEvaluated}
	out := e.decide(event, rep)

	e.record(key, event, payload.ToolName, out, started)
	return out
}

// RunReport executes the Stop-event pipeline: evaluate Stop rules, render
// the session summary, and retire the session state.
func (e *Engine) RunReport(input []byte) *Outcome {
	started := time.Now()
	payload := hooks.ParsePayload(input)

	key := session.Key()
	state := e.store.Load(key)

	files := changedFilesFromState(state)
	if len(files) == 0 {
		// Sessions that never tracked an edit fall back to git, and the
		// fallback is written into state so the Stop rules also see it.
		files = gitutil.ChangedFiles(e.projectDir)
		seeded := make([]interface{}, 0, len(files))
		for _, f := range files {
			seeded = append(seeded, f)
		}
		state["changed_files"] = seeded
	}

	ctx := e.buildContext(hooks.Stop, payload, state)

	result := e.evaluator.Evaluate(e.rules, ctx)
	findings := breaker.Apply(result.Findings, state, e.cfg.Rules, time.Now())

	rep := &report.Report{Findings: findings, RulesEvaluated: result.RulesEvaluated}

	// The session is over: drop its state instead of saving it.
	if err := e.store.Cleanup(key); err != nil {
		logger.Debug().Err(err).Msg("Failed to remove session file")
	}

	out := &Outcome{
		Output:         hooks.NewReportOutput(rep.SessionReport(len(files))),
		ExitCode:       0,
		Decision:       trace.DecisionReport,
		Findings:       rep.Findings,
		RulesEvaluated: rep.RulesEvaluated,
	}

	e.record(key, hooks.Stop, "", out, started)
	return out
}

func (e *Engine) buildContext(event hooks.EventType, payload *hooks.Payload, state session.State) *rule.Context {
	ctx := &rule.Context{
		Event:            event,
		ToolName:         payload.ToolName,
		ToolInput:        payload.ToolInput,
		ProjectDir:       e.projectDir,
		Prompt:           payload.Prompt,
		SubagentOutput:   payload.SubagentOutput,
		NotificationType: payload.NotificationType,
		CompactSource:    payload.CompactSource,
		Config:           e.cfg.Rules,
		Session:          state,
	}

	switch event {
	case hooks.PreToolUse, hooks.PermissionRequest:
		e.primeBeforeAction(ctx, state)
	case hooks.PostToolUse:
		e.primeAfterAction(ctx, state)
	}

	return ctx
}

// primeBeforeAction exposes the content a Write or Edit is about to produce
// and caches the current on-disk content so the post-action pass can diff.
func (e *Engine) primeBeforeAction(ctx *rule.Context, state session.State) {
	if ctx.ToolName != "Write" && ctx.ToolName != "Edit" {
		return
	}
	path := ctx.FilePath()
	if path == "" {
		return
	}

	abs, ok := resolveWithinProject(e.projectDir, path)
	if !ok {
		logger.Warn().Str("path", path).Msg("Path traversal blocked")
		return
	}

	content := ctx.Content()
	if content == "" {
		if v, ok := ctx.ToolInput["new_string"].(string); ok {
			content = v
		}
	}
	ctx.FileContent = content

	if data, err := os.ReadFile(abs); err == nil {
		ctx.FileContentBefore = string(data)
		cache := sessionSubmap(state, "file_cache")
		cache[abs] = string(data)
	}
}

// primeAfterAction reads the written file back, pops the cached pre-action
// content, and tracks the file for the session report.
func (e *Engine) primeAfterAction(ctx *rule.Context, state session.State) {
	path := ctx.FilePath()
	if path == "" {
		return
	}

	abs, ok := resolveWithinProject(e.projectDir, path)
	if !ok {
		logger.Warn().Str("path", path).Msg("Path traversal blocked")
		return
	}

	if data, err := os.ReadFile(abs); err == nil {
		ctx.FileContent = string(data)
	}

	cache := sessionSubmap(state, "file_cache")
	if before, ok := cache[abs].(string); ok {
		ctx.FileContentBefore = before
		delete(cache, abs)
	}

	trackChangedFile(state, abs)
}

func (e *Engine) decide(event hooks.EventType, rep *report.Report) *Outcome {
	out := &Outcome{
		Findings:       rep.Findings,
		RulesEvaluated: rep.RulesEvaluated,
	}

	if len(rep.Findings) == 0 {
		out.Decision = trace.DecisionClean
		return out
	}

	if hooks.IsPreAction(event) && rep.HasBlocking() {
		// Pre-action blocks travel as a structured deny with exit 0; a
		// non-zero exit here would be reported as a hook error instead.
		out.Output = hooks.NewDenyOutput(event, rep.DenyReason())
		out.Decision = trace.DecisionDeny
		return out
	}

	out.Output = hooks.NewAdvisoryOutput(rep.AdvisoryMessage())
	out.Decision = trace.DecisionAdvisory
	if rep.HasBlocking() && !hooks.IsPreAction(event) {
		out.ExitCode = 2
	}
	return out
}

func (e *Engine) record(sessionKey string, event hooks.EventType, toolName string, out *Outcome, started time.Time) {
	if e.recorder == nil {
		return
	}

	inv := &trace.Invocation{
		ID:             uuid.NewString(),
		SessionID:      sessionKey,
		Event:          event,
		ToolName:       toolName,
		Decision:       out.Decision,
		ExitCode:       out.ExitCode,
		RulesEvaluated: out.RulesEvaluated,
		Duration:       time.Since(started),
		Timestamp:      started,
		Findings:       out.Findings,
	}
	if err := e.recorder.RecordInvocation(inv); err != nil {
		logger.Debug().Err(err).Msg("Failed to record invocation")
	}

	trace.MaybeRunCleanup(e.recorder, e.cfg.Trace, sessionKey)
}

// resolveWithinProject resolves path and reports whether it stays inside the
// project root. Symlinks are resolved where the target exists so a link
// cannot smuggle reads or cache entries outside the tree.
func resolveWithinProject(projectDir, path string) (string, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	root, err := filepath.Abs(projectDir)
	if err != nil {
		return "", false
	}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}

	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "", false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return abs, true
}

func sessionSubmap(state session.State, key string) map[string]interface{} {
	if m, ok := state[key].(map[string]interface{}); ok {
		return m
	}
	m := map[string]interface{}{}
	state[key] = m
	return m
}

func trackChangedFile(state session.State, path string) {
	var files []interface{}
	if raw, ok := state["changed_files"].([]interface{}); ok {
		files = raw
	}
	for _, v := range files {
		if s, ok := v.(string); ok && s == path {
			return
		}
	}
	state["changed_files"] = append(files, path)
}

func changedFilesFromState(state session.State) []string {
	raw, ok := state["changed_files"].([]interface{})
	if !ok {
		return nil
	}
	files := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			files = append(files, s)
		}
	}
	return files
}
