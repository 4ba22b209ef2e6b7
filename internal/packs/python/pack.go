// Package python holds the rules for Python codebases: exception hygiene,
// import discipline, shell and SQL injection, migrations, and async misuse.
package python

import (
	"github.com/ihavespoons/railguard/internal/rule"
)

// Name is the pack identifier used in configuration.
const Name = "python"

// Rules returns the python pack.
func Rules() []rule.Rule {
	return []rule.Rule{
		BareExcept{},
		WildcardImport{},
		UnsafeShell{},
		SQLInjection{},
		DangerousMigration{},
		UnnecessaryAsync{},
	}
}

// indentWidth returns the leading whitespace width of a line.
func indentWidth(line string) int {
	for i, r := range line {
		if r != ' ' && r != '\t' {
			return i
		}
	}
	return len(line)
}
