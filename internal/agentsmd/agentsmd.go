// Package agentsmd imports project conventions from an AGENTS.md file. It
// parses the file into heading sections, scans them for stack and convention
// keywords, and maps the matches to pack activation and rule configuration.
// The mapping is conservative: a pack or rule only turns on when a keyword
// clearly matches.
package agentsmd

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Filenames accepted at the project root, in lookup order.
var Filenames = []string{"AGENTS.md", "agents.md", "Agents.md"}

var headingRE = regexp.MustCompile(`^#{2,3}\s+(.+)`)

// Section keywords that activate a pack.
var packKeywords = []struct {
	pack     string
	keywords []string
}{
	{"python", []string{"python", "pip", "pyproject", "pytest", "django", "flask", "fastapi", "poetry", "uv"}},
	{"frontend", []string{"frontend", "css", "html", "javascript", "typescript", "webpack", "vite", "eslint", "prettier"}},
	{"react", []string{"react", "jsx", "tsx", "next.js", "nextjs", "remix", "gatsby"}},
	{"seo", []string{"seo", "meta tags", "open graph", "structured data", "sitemap", "lighthouse"}},
	{"security", []string{"security", "secrets", "credentials", "api key", "token", "authentication", "vulnerability"}},
}

// Section keywords that enable a specific rule.
var ruleKeywords = []struct {
	ruleID   string
	keywords []string
}{
	{"no-env-commit", []string{".env", "env file", "environment variable", "dotenv"}},
	{"commit-message-format", []string{"commit message", "conventional commit", "commit format", "git commit"}},
	{"no-destructive-commands", []string{"destructive", "rm -rf", "force delete", "dangerous command"}},
	{"no-force-push", []string{"force push", "force-push", "--force"}},
	{"no-secrets", []string{"secret", "api key", "credential", "password", "token", "private key"}},
	{"no-test-weakening", []string{"test coverage", "don't skip test", "don't weaken test"}},
	{"drift-detector", []string{"test", "testing", "run tests", "test after change"}},
}

// testingWords tighten the drift-detector threshold when any appears as a
// whole word.
var testingWords = map[string]bool{
	"test": true, "testing": true, "pytest": true,
	"jest": true, "mocha": true, "vitest": true,
}

// Mapping is the configuration derived from AGENTS.md.
type Mapping struct {
	Packs []string
	Rules map[string]map[string]interface{}
}

// Find returns the path of the project's AGENTS.md, or "" when none exists.
func Find(projectDir string) string {
	for _, name := range Filenames {
		path := filepath.Join(projectDir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Parse splits AGENTS.md content into sections keyed by H2/H3 heading text.
// Text before the first heading is ignored.
func Parse(content string) map[string]string {
	sections := map[string]string{}
	if strings.TrimSpace(content) == "" {
		return sections
	}

	var heading string
	var body []string
	started := false

	for _, line := range strings.Split(content, "\n") {
		if m := headingRE.FindStringSubmatch(line); m != nil {
			if started {
				sections[heading] = strings.TrimSpace(strings.Join(body, "\n"))
			}
			heading = strings.TrimSpace(m[1])
			body = nil
			started = true
		} else if started {
			body = append(body, line)
		}
	}
	if started {
		sections[heading] = strings.TrimSpace(strings.Join(body, "\n"))
	}

	return sections
}

// MapToConfig scans the parsed sections for keywords and returns the derived
// packs and rule settings. universal and quality are always active.
func MapToConfig(sections map[string]string) *Mapping {
	packs := map[string]bool{"universal": true, "quality": true}
	rules := map[string]map[string]interface{}{}

	var parts []string
	for heading, body := range sections {
		parts = append(parts, heading+" "+body)
	}
	allText := strings.ToLower(strings.Join(parts, " "))

	for _, pk := range packKeywords {
		for _, keyword := range pk.keywords {
			if strings.Contains(allText, keyword) {
				packs[pk.pack] = true
				break
			}
		}
	}

	for _, rk := range ruleKeywords {
		for _, keyword := range rk.keywords {
			if strings.Contains(allText, keyword) {
				rules[rk.ruleID] = map[string]interface{}{"enabled": true}
				break
			}
		}
	}

	// Whole-word testing mentions tighten the drift threshold.
	for _, word := range strings.Fields(allText) {
		if testingWords[word] {
			if rules["drift-detector"] == nil {
				rules["drift-detector"] = map[string]interface{}{}
			}
			rules["drift-detector"]["threshold"] = 3
			break
		}
	}

	names := make([]string, 0, len(packs))
	for name := range packs {
		names = append(names, name)
	}
	sort.Strings(names)

	return &Mapping{Packs: names, Rules: rules}
}

// generatedConfig fixes the field order of the emitted YAML.
type generatedConfig struct {
	Stack    string                            `yaml:"stack"`
	Severity string                            `yaml:"severity"`
	Packs    []string                          `yaml:"packs"`
	Rules    map[string]map[string]interface{} `yaml:"rules,omitempty"`
}

const generatedHeader = "# Railguard configuration\n" +
	"# Generated from AGENTS.md, review and adjust as needed\n" +
	"# Docs: https://github.com/ihavespoons/railguard\n\n"

const mergedHeader = "# Railguard configuration\n" +
	"# Updated with conventions from AGENTS.md\n" +
	"# Docs: https://github.com/ihavespoons/railguard\n\n"

// GenerateConfig renders a fresh railguard.yml from the mapping.
func GenerateConfig(m *Mapping) ([]byte, error) {
	cfg := generatedConfig{
		Stack:    "auto",
		Severity: "standard",
		Packs:    m.Packs,
		Rules:    m.Rules,
	}
	if len(cfg.Rules) == 0 {
		cfg.Rules = nil
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	return append([]byte(generatedHeader), data...), nil
}

// MergeConfig merges the mapping into existing railguard.yml content.
// Additive only: existing packs stay, existing rule blocks are never
// overwritten.
func MergeConfig(existing []byte, m *Mapping) ([]byte, error) {
	var current map[string]interface{}
	if err := yaml.Unmarshal(existing, &current); err != nil || current == nil {
		current = map[string]interface{}{}
	}

	packs := map[string]bool{"universal": true, "quality": true}
	if raw, ok := current["packs"].([]interface{}); ok {
		// Only replace the defaults when the file actually lists packs.
		if len(raw) > 0 {
			packs = map[string]bool{}
		}
		for _, v := range raw {
			if s, ok := v.(string); ok {
				packs[s] = true
			}
		}
	}
	for _, name := range m.Packs {
		packs[name] = true
	}
	merged := make([]string, 0, len(packs))
	for name := range packs {
		merged = append(merged, name)
	}
	sort.Strings(merged)
	current["packs"] = merged

	rules, ok := current["rules"].(map[string]interface{})
	if !ok {
		rules = map[string]interface{}{}
	}
	for ruleID, ruleCfg := range m.Rules {
		if _, exists := rules[ruleID]; !exists {
			rules[ruleID] = ruleCfg
		}
	}
	if len(rules) > 0 {
		current["rules"] = rules
	}

	data, err := yaml.Marshal(current)
	if err != nil {
		return nil, err
	}
	return append([]byte(mergedHeader), data...), nil
}
