// Package security holds the rules that close Bash-shaped holes in the
// guardrails: writing files through shell commands and exfiltrating data
// over the network.
package security

import (
	"github.com/ihavespoons/railguard/internal/rule"
)

// Name is the pack identifier used in configuration.
const Name = "security"

// Rules returns the security pack.
func Rules() []rule.Rule {
	return []rule.Rule{
		BashFileWrite{},
		NetworkExfil{},
	}
}
