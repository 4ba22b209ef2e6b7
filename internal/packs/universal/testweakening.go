package universal

import (
	"regexp"

	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/rule"
)

// File patterns that indicate test files.
var testFileRE = regexp.MustCompile(`(?i)(?:^|/)(?:test_|tests?/|spec_|__tests__/|.*\.test\.|.*\.spec\.)`)

var (
	// Skip markers.
	pytestSkipRE   = regexp.MustCompile(`@pytest\.mark\.skip\b`)
	unittestSkipRE = regexp.MustCompile(`@unittest\.skip\b`)
	jestSkipRE     = regexp.MustCompile(`\b(?:it|test|describe)\.skip\b`)

	// Trivially passing assertions.
	assertTrueRE       = regexp.MustCompile(`\bassert\s+True\b`)
	assertTrueMethodRE = regexp.MustCompile(`\bself\.assertTrue\s*\(\s*True\s*\)`)
	expectTrueRE       = regexp.MustCompile(`(?i)\bexpect\s*\(\s*true\s*\)\s*\.toBe\s*\(\s*true\s*\)`)

	// Commented-out assertions.
	commentedAssertRE = regexp.MustCompile(`(?m)^\s*#\s*assert\b`)
	commentedExpectRE = regexp.MustCompile(`(?m)^\s*//\s*expect\b`)

	xfailNoReasonRE = regexp.MustCompile(`(?m)@pytest\.mark\.xfail\s*(?:\(\s*\))?$`)

	emptyTestRE = regexp.MustCompile(`def\s+test_\w+\s*\([^)]*\)\s*:\s*\n\s+pass\b`)
)

type weakeningCheck struct {
	re         *regexp.Regexp
	message    string
	suggestion string
}

var weakeningChecks = []weakeningCheck{
	{pytestSkipRE, "Test skip marker detected: @pytest.mark.skip",
		"Fix the test instead of skipping it, or use @pytest.mark.xfail with a reason."},
	{unittestSkipRE, "Test skip marker detected: @unittest.skip",
		"Fix the test instead of skipping it."},
	{jestSkipRE, "Test skip detected: .skip()",
		"Fix the test instead of skipping it."},
	{assertTrueRE, "Trivially passing assertion: assert True",
		"Replace 'assert True' with a meaningful assertion."},
	{assertTrueMethodRE, "Trivially passing assertion: self.assertTrue(True)",
		"Replace 'assertTrue(True)' with a meaningful assertion."},
	{expectTrueRE, "Trivially passing assertion: expect(true).toBe(true)",
		"Replace with a meaningful expectation."},
	{commentedAssertRE, "Commented-out assertion detected",
		"Remove or restore commented-out assertions instead of leaving dead test code."},
	{commentedExpectRE, "Commented-out expectation detected",
		"Remove or restore commented-out expectations instead of leaving dead test code."},
	{xfailNoReasonRE, "@pytest.mark.xfail without reason",
		"Add a reason parameter: @pytest.mark.xfail(reason='...')"},
	{emptyTestRE, "Empty test function detected (pass only)",
		"Implement the test or remove the empty placeholder."},
}

// TestWeakening detects edits that skip, trivialize, or comment out tests.
type TestWeakening struct{}

func (TestWeakening) Meta() rule.Meta {
	return rule.Meta{
		ID:          "no-test-weakening",
		Description: "Warns when tests are skipped, trivialized, or commented out",
		Severity:    rule.Warning,
		Events:      []hooks.EventType{hooks.PreToolUse},
		Pack:        Name,
	}
}

func (r TestWeakening) Evaluate(ctx *rule.Context) ([]rule.Finding, error) {
	if ctx.ToolName != "Write" && ctx.ToolName != "Edit" {
		return nil, nil
	}

	filePath := ctx.FilePath()
	if filePath == "" || !testFileRE.MatchString(filePath) {
		return nil, nil
	}

	content := ctx.Content()
	if content == "" {
		return nil, nil
	}

	m := r.Meta()
	var findings []rule.Finding
	for _, check := range weakeningChecks {
		if check.re.MatchString(content) {
			findings = append(findings, rule.Finding{
				RuleID:     m.ID,
				Message:    check.message,
				Severity:   m.Severity,
				FilePath:   filePath,
				Suggestion: check.suggestion,
			})
		}
	}
	return findings, nil
}
