package react

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/rule"
)

var defaultQueryHooks = []string{"useQuery", "useSuspenseQuery"}

var (
	loadingStates = []string{"isLoading", "isPending", "isFetching"}
	errorStates   = []string{"isError", "error"}

	useMutationRE = regexp.MustCompile(`\buseMutation\s*\(`)
)

// QueryLoadingState ensures useQuery/useMutation results handle loading and
// error states.
type QueryLoadingState struct{}

func (QueryLoadingState) Meta() rule.Meta {
	return rule.Meta{
		ID:          "react-query-loading-state",
		Description: "Ensures useQuery/useMutation results handle loading and error states",
		Severity:    rule.Warning,
		Events:      []hooks.EventType{hooks.PreToolUse},
		Pack:        Name,
	}
}

func (r QueryLoadingState) Evaluate(ctx *rule.Context) ([]rule.Finding, error) {
	if ctx.ToolName != "Write" && ctx.ToolName != "Edit" {
		return nil, nil
	}
	filePath := ctx.FilePath()
	if !isReactFile(filePath) {
		return nil, nil
	}

	content := ctx.Content()
	if content == "" {
		return nil, nil
	}

	m := r.Meta()
	queryHooks := ctx.Settings(m.ID).StringSlice("hooks")
	if len(queryHooks) == 0 {
		queryHooks = defaultQueryHooks
	} else {
		queryHooks = append([]string(nil), queryHooks...)
		sort.Strings(queryHooks)
	}

	hasLoading := containsAny(content, loadingStates)
	hasError := containsAny(content, errorStates)

	var missing []string
	if !hasLoading {
		missing = append(missing, "loading")
	}
	if !hasError {
		missing = append(missing, "error")
	}

	var findings []rule.Finding

	if len(missing) > 0 {
		for _, hook := range queryHooks {
			hookRE, err := regexp.Compile(`\b` + regexp.QuoteMeta(hook) + `\s*\(`)
			if err != nil {
				continue
			}
			for _, loc := range hookRE.FindAllStringIndex(content, -1) {
				findings = append(findings, rule.Finding{
					RuleID:     m.ID,
					Message:    fmt.Sprintf("%s() without %s state handling", hook, strings.Join(missing, "/")),
					Severity:   m.Severity,
					FilePath:   filePath,
					Line:       strings.Count(content[:loc[0]], "\n") + 1,
					Suggestion: fmt.Sprintf("Destructure isLoading/isPending and isError from %s().", hook),
				})
			}
		}
	}

	if !strings.Contains(content, "isPending") {
		for _, loc := range useMutationRE.FindAllStringIndex(content, -1) {
			findings = append(findings, rule.Finding{
				RuleID:     m.ID,
				Message:    "useMutation() without isPending state handling",
				Severity:   m.Severity,
				FilePath:   filePath,
				Line:       strings.Count(content[:loc[0]], "\n") + 1,
				Suggestion: "Use isPending from useMutation() to disable submit buttons.",
			})
		}
	}

	return findings, nil
}

func containsAny(content string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(content, needle) {
			return true
		}
	}
	return false
}
