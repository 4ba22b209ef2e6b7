package rule

import (
	"github.com/ihavespoons/railguard/internal/hooks"
)

// Context is the input to one evaluation pass. It is built once per process
// invocation and shared by every rule; Session is the mutable session state
// that individual rules may use for their own bookkeeping.
type Context struct {
	Event             hooks.EventType
	ToolName          string
	ToolInput         map[string]interface{}
	ProjectDir        string
	FileContent       string
	FileContentBefore string
	Prompt            string
	SubagentOutput    string
	NotificationType  string
	CompactSource     string

	// Config is the full per-rule configuration map; rules read their own
	// block through Settings.
	Config map[string]map[string]interface{}

	Session map[string]interface{}
}

// FilePath returns the file_path field of the tool input, if any.
func (c *Context) FilePath() string {
	if c.ToolInput == nil {
		return ""
	}
	if v, ok := c.ToolInput["file_path"].(string); ok {
		return v
	}
	return ""
}

// Command returns the command field of the tool input, if any.
func (c *Context) Command() string {
	if c.ToolInput == nil {
		return ""
	}
	if v, ok := c.ToolInput["command"].(string); ok {
		return v
	}
	return ""
}

// Content returns the content field of the tool input, if any.
func (c *Context) Content() string {
	if c.ToolInput == nil {
		return ""
	}
	if v, ok := c.ToolInput["content"].(string); ok {
		return v
	}
	return ""
}

// Settings returns the configuration block for the given rule id. Missing
// blocks return an empty view so lookups fall back to defaults.
func (c *Context) Settings(ruleID string) Settings {
	if c.Config == nil {
		return Settings{}
	}
	return Settings(c.Config[ruleID])
}

// SessionMap returns the named sub-map of the session state, creating it if
// needed. Rules use this for per-rule counters and caches.
func (c *Context) SessionMap(key string) map[string]interface{} {
	if c.Session == nil {
		c.Session = map[string]interface{}{}
	}
	if m, ok := c.Session[key].(map[string]interface{}); ok {
		return m
	}
	m := map[string]interface{}{}
	c.Session[key] = m
	return m
}

// Settings is a typed-coercion view over a rule's free-form YAML block.
// YAML and JSON decode numbers differently, so Int accepts both.
type Settings map[string]interface{}

// Bool returns the boolean value for key, or def when absent.
func (s Settings) Bool(key string, def bool) bool {
	if v, ok := s[key].(bool); ok {
		return v
	}
	return def
}

// Int returns the integer value for key, or def when absent.
func (s Settings) Int(key string, def int) int {
	switch v := s[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

// String returns the string value for key, or def when absent.
func (s Settings) String(key string, def string) string {
	if v, ok := s[key].(string); ok {
		return v
	}
	return def
}

// StringSlice returns the list value for key, coercing elements to strings.
func (s Settings) StringSlice(key string) []string {
	raw, ok := s[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if str, ok := item.(string); ok {
			out = append(out, str)
		}
	}
	return out
}

// Map returns the nested map value for key, or nil when absent.
func (s Settings) Map(key string) map[string]interface{} {
	if v, ok := s[key].(map[string]interface{}); ok {
		return v
	}
	return nil
}
