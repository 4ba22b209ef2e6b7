package rule

import (
	"regexp"
	"sync"
)

// patternCache caches compiled regex patterns. Config-driven patterns
// (custom rules, per-rule overrides) are compiled once per process.
var patternCache sync.Map

// Pattern retrieves a compiled regex from the cache or compiles it.
func Pattern(expr string) (*regexp.Regexp, error) {
	if cached, ok := patternCache.Load(expr); ok {
		return cached.(*regexp.Regexp), nil
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}

	patternCache.Store(expr, re)
	return re, nil
}

// Patterns compiles a list of config-supplied expressions, dropping the ones
// that do not compile. A bad user pattern must not take down the rule.
func Patterns(exprs []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		re, err := Pattern(expr)
		if err != nil {
			continue
		}
		out = append(out, re)
	}
	return out
}
