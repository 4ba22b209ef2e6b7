package security

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/rule"
)

// Exfiltration patterns, checked in order; the first match wins.
var exfilPatterns = []struct {
	re    *regexp.Regexp
	label string
}{
	{regexp.MustCompile(`(?i)\bcurl\b.*(?:-X\s*(?:POST|PUT)\s.*-[dF@]|-[dF@]\s.*-X\s*(?:POST|PUT))`),
		"curl POST/PUT with data"},
	{regexp.MustCompile(`(?i)\bcurl\b.*-d\s*@\S+`), "curl -d @file"},
	{regexp.MustCompile(`(?i)cat\s+\S*(?:\.env|secret|credential|token|\.pem|\.key|id_rsa)\S*\s*\|.*\bcurl\b`),
		"piping secrets to curl"},
	{regexp.MustCompile(`(?i)\bnc\b.*<\s*\S*(?:\.env|secret|credential|token|\.pem|\.key)`),
		"nc < sensitive file"},
	{regexp.MustCompile(`(?i)\bscp\b.*(?:\.env|credential|secret|token|\.pem|\.key|id_rsa)`),
		"scp sensitive file"},
	{regexp.MustCompile(`(?i)\bwget\b.*--post-(?:file|data)`), "wget POST"},
	{regexp.MustCompile(`(?i)\bpython[23]?\s+-c\s+.*requests\.(?:post|put)\b`),
		"python requests.post()"},
	{regexp.MustCompile(`(?i)\brsync\b.*(?:\.env|credential|secret|token|\.pem|\.key).*\S+:\S+`),
		"rsync sensitive files to remote"},
}

// Hosts that are safe for outbound data by default.
var defaultAllowedHosts = map[string]bool{
	"github.com":         true,
	"pypi.org":           true,
	"registry.npmjs.org": true,
	"rubygems.org":       true,
}

var (
	urlHostRE = regexp.MustCompile(`https?://([^/:\s]+)`)
	ncHostRE  = regexp.MustCompile(`\bnc\s+(\S+)\s+\d+`)
)

// extractHost pulls the target host out of a curl/wget/nc command, if any.
func extractHost(command string) string {
	if match := urlHostRE.FindStringSubmatch(command); match != nil {
		return strings.ToLower(match[1])
	}
	if match := ncHostRE.FindStringSubmatch(command); match != nil {
		return strings.ToLower(match[1])
	}
	return ""
}

// NetworkExfil detects potential data exfiltration via network commands.
type NetworkExfil struct{}

func (NetworkExfil) Meta() rule.Meta {
	return rule.Meta{
		ID:          "no-network-exfil",
		Description: "Blocks potential data exfiltration via curl, nc, scp, etc.",
		Severity:    rule.Error,
		Events:      []hooks.EventType{hooks.PreToolUse},
		Pack:        Name,
	}
}

func (r NetworkExfil) Evaluate(ctx *rule.Context) ([]rule.Finding, error) {
	if ctx.ToolName != "Bash" {
		return nil, nil
	}

	command := ctx.Command()
	if command == "" {
		return nil, nil
	}

	m := r.Meta()
	allowed := make(map[string]bool, len(defaultAllowedHosts))
	for host := range defaultAllowedHosts {
		allowed[host] = true
	}
	for _, host := range ctx.Settings(m.ID).StringSlice("allowed_hosts") {
		allowed[strings.ToLower(host)] = true
	}

	if host := extractHost(command); host != "" && allowed[host] {
		return nil, nil
	}

	for _, ep := range exfilPatterns {
		if ep.re.MatchString(command) {
			return []rule.Finding{{
				RuleID:     m.ID,
				Message:    fmt.Sprintf("Potential data exfiltration detected via %s", ep.label),
				Severity:   m.Severity,
				Suggestion: "Verify this network operation is intentional and not sending sensitive data to an external host.",
			}}, nil
		}
	}

	return nil, nil
}
