// Package golang holds rules for Go projects. The pack is registered under
// the name "go"; the package itself cannot carry the reserved word.
package golang

import (
	"strings"

	"github.com/ihavespoons/railguard/internal/rule"
)

// Name is the pack identifier used in configuration.
const Name = "go"

// Rules returns the Go pack in registration order.
func Rules() []rule.Rule {
	return []rule.Rule{
		NoPanic{},
		ContextTODO{},
		LocalReplace{},
	}
}

func isGoTestFile(filePath string) bool {
	return strings.HasSuffix(filePath, "_test.go")
}
