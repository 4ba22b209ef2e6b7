package react

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/rule"
)

var defaultHeavyComponents = []string{
	"Calendar", "Chart", "CodeEditor", "DataTable",
	"Editor", "Map", "RichTextEditor", "Spreadsheet",
}

var defaultPagePatterns = []string{"pages/", "app/", "routes/"}

var (
	lazyRE     = regexp.MustCompile(`\bReact\.lazy\b|\blazy\s*\(`)
	suspenseRE = regexp.MustCompile(`<Suspense\b`)
)

// LazyLoading flags heavy components imported at top level in page files and
// React.lazy() usage that lacks a Suspense boundary.
type LazyLoading struct{}

func (LazyLoading) Meta() rule.Meta {
	return rule.Meta{
		ID:          "react-lazy-loading",
		Description: "Suggests lazy loading for heavy components in page files",
		Severity:    rule.Info,
		Events:      []hooks.EventType{hooks.PreToolUse},
		Pack:        Name,
	}
}

func (r LazyLoading) Evaluate(ctx *rule.Context) ([]rule.Finding, error) {
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
	settings := ctx.Settings(m.ID)
	heavy := settings.StringSlice("heavy_components")
	if len(heavy) == 0 {
		heavy = defaultHeavyComponents
	} else {
		heavy = append([]string(nil), heavy...)
		sort.Strings(heavy)
	}
	pagePatterns := settings.StringSlice("page_patterns")
	if len(pagePatterns) == 0 {
		pagePatterns = defaultPagePatterns
	}

	var findings []rule.Finding

	if isPageFile(filePath, pagePatterns) {
		for _, component := range heavy {
			importRE, err := regexp.Compile(`(?m)^import\s+.*\b` + regexp.QuoteMeta(component) + `\b`)
			if err != nil {
				continue
			}
			for _, loc := range importRE.FindAllStringIndex(content, -1) {
				findings = append(findings, rule.Finding{
					RuleID:     m.ID,
					Message:    fmt.Sprintf("Heavy component '%s' imported at top level in page file", component),
					Severity:   m.Severity,
					FilePath:   filePath,
					Line:       strings.Count(content[:loc[0]], "\n") + 1,
					Suggestion: fmt.Sprintf("Use React.lazy(() => import('.../%s')) with <Suspense>.", component),
				})
			}
		}
	}

	if lazyRE.MatchString(content) && !suspenseRE.MatchString(content) {
		for _, loc := range lazyRE.FindAllStringIndex(content, -1) {
			findings = append(findings, rule.Finding{
				RuleID:     m.ID,
				Message:    "React.lazy() without <Suspense> fallback",
				Severity:   m.Severity,
				FilePath:   filePath,
				Line:       strings.Count(content[:loc[0]], "\n") + 1,
				Suggestion: "Wrap lazy-loaded components in <Suspense fallback={...}>.",
			})
		}
	}

	return findings, nil
}

func isPageFile(filePath string, pagePatterns []string) bool {
	for _, p := range pagePatterns {
		if strings.Contains(filePath, p) {
			return true
		}
	}
	return false
}
