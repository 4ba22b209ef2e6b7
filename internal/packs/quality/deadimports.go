package quality

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/rule"
)

var (
	// Python imports: import foo, from foo import bar, baz
	pyImportRE = regexp.MustCompile(`(?m)^\s*(?:from\s+\S+\s+)?import\s+(.+)`)

	// JS/TS imports: import { X, Y } from '...', import X from '...'
	jsImportRE = regexp.MustCompile(`(?m)^\s*import\s+(?:\{([^}]+)\}|(\w+))\s+from\s+['"]`)
)

// Files where unused imports are expected (re-exports).
var ignoreBasenames = []string{"__init__.py", "index.ts", "index.js", "index.tsx", "index.jsx"}

func extractPythonNames(content string) []string {
	var names []string
	for _, match := range pyImportRE.FindAllStringSubmatch(content, -1) {
		for _, item := range strings.Split(match[1], ",") {
			item = strings.TrimSpace(item)
			if item == "" {
				continue
			}
			if idx := strings.LastIndex(item, " as "); idx >= 0 {
				names = append(names, strings.TrimSpace(item[idx+len(" as "):]))
			} else {
				// "import foo.bar" references "foo".
				names = append(names, strings.TrimSpace(strings.SplitN(item, ".", 2)[0]))
			}
		}
	}
	return names
}

func extractJSNames(content string) []string {
	var names []string
	for _, match := range jsImportRE.FindAllStringSubmatch(content, -1) {
		if braces := match[1]; braces != "" {
			for _, item := range strings.Split(braces, ",") {
				item = strings.TrimSpace(item)
				if item == "" {
					continue
				}
				if idx := strings.LastIndex(item, " as "); idx >= 0 {
					names = append(names, strings.TrimSpace(item[idx+len(" as "):]))
				} else {
					names = append(names, item)
				}
			}
		}
		if def := match[2]; def != "" {
			names = append(names, def)
		}
	}
	return names
}

func isJSOrTSFile(path string) bool {
	switch filepath.Ext(path) {
	case ".js", ".jsx", ".ts", ".tsx":
		return true
	}
	return false
}

// DeadImports flags imports that are never referenced in the rest of the
// file. It is informational: side-effect imports and re-exports look unused.
type DeadImports struct{}

func (DeadImports) Meta() rule.Meta {
	return rule.Meta{
		ID:          "no-dead-imports",
		Description: "Detects unused imports in Python and JS/TS files",
		Severity:    rule.Info,
		Events:      []hooks.EventType{hooks.PostToolUse},
		Pack:        Name,
	}
}

func (r DeadImports) Evaluate(ctx *rule.Context) ([]rule.Finding, error) {
	if ctx.ToolName != "Write" && ctx.ToolName != "Edit" {
		return nil, nil
	}

	filePath := ctx.FilePath()
	content := ctx.FileContent
	if filePath == "" || content == "" {
		return nil, nil
	}

	m := r.Meta()
	ignoreFiles := ctx.Settings(m.ID).StringSlice("ignore_files")
	if ignoreFiles == nil {
		ignoreFiles = ignoreBasenames
	}
	basename := filepath.Base(filePath)
	for _, ignore := range ignoreFiles {
		if basename == ignore {
			return nil, nil
		}
	}

	var names []string
	switch {
	case strings.HasSuffix(filePath, ".py"):
		names = extractPythonNames(content)
	case isJSOrTSFile(filePath):
		names = extractJSNames(content)
	default:
		return nil, nil
	}

	// Strip import lines so references are only counted in the body.
	var bodyLines []string
	for _, line := range strings.Split(content, "\n") {
		stripped := strings.TrimSpace(line)
		if (strings.HasPrefix(stripped, "import ") || strings.HasPrefix(stripped, "from ")) && strings.Contains(stripped, "import") {
			continue
		}
		bodyLines = append(bodyLines, line)
	}
	body := strings.Join(bodyLines, "\n")

	var unused []string
	for _, name := range names {
		if name == "" || strings.HasPrefix(name, "_") {
			continue
		}
		re, err := regexp.Compile(`\b` + regexp.QuoteMeta(name) + `\b`)
		if err != nil || re.MatchString(body) {
			continue
		}
		unused = append(unused, name)
	}

	if len(unused) == 0 {
		return nil, nil
	}

	plural := ""
	if len(unused) > 1 {
		plural = "s"
	}
	return []rule.Finding{{
		RuleID:     m.ID,
		Message:    fmt.Sprintf("Potentially unused import%s: %s", plural, strings.Join(unused, ", ")),
		Severity:   m.Severity,
		FilePath:   filePath,
		Suggestion: "Remove unused imports or verify they are needed for side effects.",
	}}, nil
}
