package python

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/rule"
)

const sqlKeywords = `SELECT|INSERT|UPDATE|DELETE|DROP|ALTER|CREATE`

var (
	// f-string SQL: f"SELECT ... {
	fstringSQLRE = regexp.MustCompile(`(?i)f['"](` + sqlKeywords + `)\b`)

	// .format() SQL: "SELECT ...".format(
	formatSQLRE = regexp.MustCompile(`(?i)['"](?:` + sqlKeywords + `)\b[^'"]*['"]\.format\s*\(`)

	// String concat: "SELECT " +
	concatSQLRE = regexp.MustCompile(`(?i)['"](?:` + sqlKeywords + `)\b[^'"]*['"]\s*\+`)

	// % operator: "SELECT ... %s" %
	percentSQLRE = regexp.MustCompile(`(?i)['"](?:` + sqlKeywords + `)\b[^'"]*%[sd][^'"]*['"]\s*%`)
)

func isTestOrSQLFile(filePath string) bool {
	if filePath == "" {
		return false
	}
	lower := strings.ToLower(filePath)
	if strings.HasSuffix(lower, ".sql") || strings.Contains(lower, "/test") {
		return true
	}
	segments := strings.Split(lower, "/")
	return strings.Contains(segments[len(segments)-1], "test_")
}

// SQLInjection detects SQL built by string interpolation in Python files.
type SQLInjection struct{}

func (SQLInjection) Meta() rule.Meta {
	return rule.Meta{
		ID:          "no-sql-injection",
		Description: "Prevents SQL injection via string interpolation",
		Severity:    rule.Error,
		Events:      []hooks.EventType{hooks.PreToolUse},
		Pack:        Name,
	}
}

func (r SQLInjection) Evaluate(ctx *rule.Context) ([]rule.Finding, error) {
	if ctx.ToolName != "Write" && ctx.ToolName != "Edit" {
		return nil, nil
	}

	filePath := ctx.FilePath()
	if !strings.HasSuffix(filePath, ".py") || isTestOrSQLFile(filePath) {
		return nil, nil
	}

	content := ctx.Content()
	if content == "" {
		return nil, nil
	}

	m := r.Meta()

	type sqlCheck struct {
		re   *regexp.Regexp
		desc string
	}
	checks := []sqlCheck{
		{fstringSQLRE, "f-string SQL interpolation"},
		{formatSQLRE, ".format() SQL interpolation"},
		{concatSQLRE, "string concatenation in SQL"},
		{percentSQLRE, "% operator SQL interpolation"},
	}

	if extra := ctx.Settings(m.ID).StringSlice("extra_keywords"); len(extra) > 0 {
		escaped := make([]string, 0, len(extra))
		for _, k := range extra {
			escaped = append(escaped, regexp.QuoteMeta(k))
		}
		if re, err := regexp.Compile(`(?i)f['"](?:` + strings.Join(escaped, "|") + `)\b`); err == nil {
			checks = append(checks, sqlCheck{re, "f-string interpolation with custom keyword"})
		}
	}

	var findings []rule.Finding
	for i, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimLeft(line, " \t"), "#") {
			continue
		}
		for _, check := range checks {
			if check.re.MatchString(line) {
				findings = append(findings, rule.Finding{
					RuleID:     m.ID,
					Message:    fmt.Sprintf("Possible SQL injection: %s", check.desc),
					Severity:   m.Severity,
					FilePath:   filePath,
					Line:       i + 1,
					Suggestion: "Use parameterized queries instead of string interpolation.",
				})
				// One finding per line.
				break
			}
		}
	}

	return findings, nil
}
