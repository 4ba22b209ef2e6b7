package universal

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/rule"
)

// Literal token prefixes that indicate a real credential.
var tokenPrefixes = []string{
	"sk_live_", "sk_test_", "AKIA",
	"ghp_", "ghs_", "gho_", "github_pat_",
	"xoxb-", "xoxp-", "xoxs-",
	"_authToken",
}

var (
	// key=value assignments for secret-like keys.
	keyValueRE = regexp.MustCompile(`(?i)(api_key|apikey|secret|password|token|secret_key|private_key|auth_token)\s*=\s*["']([^"']{10,})["']`)

	bearerRE     = regexp.MustCompile(`Bearer [a-zA-Z0-9\-_.]{20,}`)
	privateKeyRE = regexp.MustCompile(`-----BEGIN\s+(?:\w+\s+)?PRIVATE KEY-----`)
	gcpKeyRE     = regexp.MustCompile(`"type"\s*:\s*"service_account"`)

	// Connection strings with embedded credentials. The password capture is
	// greedy on purpose so it runs up to the last @ before the host; the host
	// exclusions the original expressed as lookaheads are checked in code.
	dbConnRE    = regexp.MustCompile(`(?i)(?:postgres(?:ql)?|mysql|mongodb(?:\+srv)?|redis|amqp)://[^:]+:(.+)@(\S+)`)
	localHostRE = regexp.MustCompile(`^(?:localhost|127\.0\.0\.1|db)\b`)

	// Three base64url segments separated by dots.
	jwtRE = regexp.MustCompile(`\beyJ[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}\.[A-Za-z0-9_-]{10,}\b`)

	curlAuthRE = regexp.MustCompile(`(?i)\bcurl\b.*(?:-u\s+\S+:\S+|-H\s+["']Authorization:\s+(?:Bearer|Basic)\s+\S+["'])`)
	tfStateRE  = regexp.MustCompile(`(?s)"serial"\s*:\s*\d+.*"lineage"`)
)

// Values that are obviously placeholders and should be ignored.
var placeholderWords = map[string]bool{
	"test": true, "example": true, "placeholder": true,
	"xxx": true, "changeme": true, "password": true, "secret": true,
}

var dbPlaceholderPasswords = map[string]bool{
	"password": true, "pass": true, "secret": true,
	"changeme": true, "example": true, "placeholder": true,
}

// Env-var reference markers that make a value safe to keep in source.
var envRefMarkers = []string{"os.environ", "process.env", "${"}

var sensitiveFilenames = []string{"credentials", "secrets"}

func isPlaceholder(value string) bool {
	return placeholderWords[strings.ToLower(strings.TrimSpace(value))]
}

func hasEnvRef(value string) bool {
	for _, marker := range envRefMarkers {
		if strings.Contains(value, marker) {
			return true
		}
	}
	return false
}

// Secrets blocks credentials from being written to files or passed to shell
// commands.
type Secrets struct{}

func (Secrets) Meta() rule.Meta {
	return rule.Meta{
		ID:          "no-secrets",
		Description: "Prevents writing secrets or credentials into source files",
		Severity:    rule.Error,
		Events:      []hooks.EventType{hooks.PreToolUse},
		Pack:        Name,
	}
}

func (s Secrets) Evaluate(ctx *rule.Context) ([]rule.Finding, error) {
	m := s.Meta()

	isBash := ctx.ToolName == "Bash"
	isWrite := ctx.ToolName == "Write" || ctx.ToolName == "Edit"
	if !isBash && !isWrite {
		return nil, nil
	}

	var content, filePath string
	if isBash {
		content = ctx.Command()
	} else {
		content = ctx.Content()
		filePath = ctx.FilePath()
	}

	extraPrefixes := ctx.Settings(m.ID).StringSlice("extra_prefixes")

	var findings []rule.Finding

	if filePath != "" && isWrite {
		base := strings.ToLower(filepath.Base(filePath))
		for _, name := range sensitiveFilenames {
			if strings.Contains(base, name) {
				findings = append(findings, rule.Finding{
					RuleID:     m.ID,
					Message:    fmt.Sprintf("Writing to a file with sensitive name: %s", filePath),
					Severity:   m.Severity,
					FilePath:   filePath,
					Suggestion: "Avoid committing files named 'credentials' or 'secrets'.",
				})
			}
		}
	}

	if content == "" {
		return findings, nil
	}

	for _, prefix := range append(append([]string{}, tokenPrefixes...), extraPrefixes...) {
		if strings.Contains(content, prefix) {
			findings = append(findings, rule.Finding{
				RuleID:     m.ID,
				Message:    fmt.Sprintf("Possible secret token detected (prefix '%s')", prefix),
				Severity:   m.Severity,
				FilePath:   filePath,
				Suggestion: "Use environment variables instead of hard-coded secrets.",
			})
		}
	}

	for _, match := range keyValueRE.FindAllStringSubmatch(content, -1) {
		if isPlaceholder(match[2]) || hasEnvRef(match[2]) {
			continue
		}
		findings = append(findings, rule.Finding{
			RuleID:     m.ID,
			Message:    fmt.Sprintf("Secret assignment detected: %s=...", match[1]),
			Severity:   m.Severity,
			FilePath:   filePath,
			Suggestion: "Use environment variables instead of hard-coded secrets.",
		})
	}

	for _, match := range bearerRE.FindAllString(content, -1) {
		if hasEnvRef(match) {
			continue
		}
		findings = append(findings, rule.Finding{
			RuleID:     m.ID,
			Message:    "Bearer token detected in content",
			Severity:   m.Severity,
			FilePath:   filePath,
			Suggestion: "Use environment variables instead of hard-coded Bearer tokens.",
		})
	}

	if privateKeyRE.MatchString(content) {
		findings = append(findings, rule.Finding{
			RuleID:     m.ID,
			Message:    "Private key detected in content",
			Severity:   m.Severity,
			FilePath:   filePath,
			Suggestion: "Never commit private keys. Use a secrets manager or environment variables.",
		})
	}

	if gcpKeyRE.MatchString(content) {
		findings = append(findings, rule.Finding{
			RuleID:     m.ID,
			Message:    "Google Cloud service account key detected",
			Severity:   m.Severity,
			FilePath:   filePath,
			Suggestion: "Use workload identity or environment variables instead of service account keys.",
		})
	}

	for _, match := range dbConnRE.FindAllStringSubmatch(content, -1) {
		password, host := match[1], match[2]
		if localHostRE.MatchString(host) {
			continue
		}
		if !dbPlaceholderPasswords[strings.ToLower(password)] {
			findings = append(findings, rule.Finding{
				RuleID:     m.ID,
				Message:    "Database connection string with embedded credentials detected",
				Severity:   m.Severity,
				FilePath:   filePath,
				Suggestion: "Use environment variables for database connection strings.",
			})
		}
	}

	if jwtRE.MatchString(content) {
		findings = append(findings, rule.Finding{
			RuleID:     m.ID,
			Message:    "JWT token detected in content",
			Severity:   m.Severity,
			FilePath:   filePath,
			Suggestion: "Never hard-code JWT tokens. Use environment variables or a token service.",
		})
	}

	if isBash && curlAuthRE.MatchString(content) {
		findings = append(findings, rule.Finding{
			RuleID:     m.ID,
			Message:    "Curl command with embedded credentials detected",
			Severity:   m.Severity,
			FilePath:   filePath,
			Suggestion: "Use environment variables or a credentials file instead of inline credentials.",
		})
	}

	if tfStateRE.MatchString(content) {
		findings = append(findings, rule.Finding{
			RuleID:     m.ID,
			Message:    "Terraform state file detected (may contain secrets)",
			Severity:   m.Severity,
			FilePath:   filePath,
			Suggestion: "Use remote state storage (S3, GCS) instead of committing terraform.tfstate.",
		})
	}

	return findings, nil
}
