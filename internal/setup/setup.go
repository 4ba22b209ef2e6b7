// Package setup installs and removes railguard hook entries in Claude Code
// settings files. Entries from other tools are never touched; re-running an
// install replaces only our own entries.
package setup

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
)

// Install scopes.
const (
	ScopeProject = "project"
	ScopeUser    = "user"
)

// Hooks returns the hook entries railguard registers, keyed by event. Stop
// carries no matcher; it is not a tool event.
func Hooks() map[string][]interface{} {
	return map[string][]interface{}{
		"PreToolUse":  {entry("Bash|Edit|Write", "railguard check --event PreToolUse", 5)},
		"PostToolUse": {entry("Edit|Write", "railguard check --event PostToolUse", 10)},
		"Stop":        {entry("", "railguard report", 30)},
	}
}

func entry(matcher, command string, timeout int) map[string]interface{} {
	hook := map[string]interface{}{
		"type":    "command",
		"command": command,
		"timeout": timeout,
	}
	e := map[string]interface{}{
		"hooks": []interface{}{hook},
	}
	if matcher != "" {
		e["matcher"] = matcher
	}
	return e
}

// SettingsPath returns the Claude Code settings file for the scope:
// <projectDir>/.claude/settings.json for project scope, ~/.claude/settings.json
// for user scope.
func SettingsPath(scope, projectDir string) (string, error) {
	if scope == ScopeUser {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".claude", "settings.json"), nil
	}
	if projectDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		projectDir = cwd
	}
	return filepath.Join(projectDir, ".claude", "settings.json"), nil
}

// ReadSettings parses a settings file. Missing or invalid files yield an
// empty document; install must work on a fresh machine.
func ReadSettings(path string) map[string]interface{} {
	data, err := os.ReadFile(path)
	if err != nil {
		return map[string]interface{}{}
	}
	var settings map[string]interface{}
	if err := json.Unmarshal(data, &settings); err != nil || settings == nil {
		return map[string]interface{}{}
	}
	return settings
}

// WriteSettings writes the settings document, creating parent directories.
func WriteSettings(path string, settings map[string]interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}

// MergeHooks returns the settings with railguard hooks installed. Existing
// railguard entries are stripped first so repeated installs do not stack.
func MergeHooks(existing map[string]interface{}) map[string]interface{} {
	settings := copyMap(existing)
	hooks := copyMap(asMap(settings["hooks"]))

	for event, ours := range Hooks() {
		var current []interface{}
		if raw, ok := hooks[event].([]interface{}); ok {
			for _, e := range raw {
				if !isRailguardEntry(e) {
					current = append(current, e)
				}
			}
		}
		hooks[event] = append(current, ours...)
	}

	settings["hooks"] = hooks
	return settings
}

// RemoveHooks returns the settings with every railguard entry removed.
// Event keys left empty are dropped, as is an emptied hooks block.
func RemoveHooks(existing map[string]interface{}) map[string]interface{} {
	settings := copyMap(existing)
	hooks := copyMap(asMap(settings["hooks"]))

	for event, raw := range hooks {
		entries, ok := raw.([]interface{})
		if !ok {
			continue
		}
		var kept []interface{}
		for _, e := range entries {
			if !isRailguardEntry(e) {
				kept = append(kept, e)
			}
		}
		if len(kept) > 0 {
			hooks[event] = kept
		} else {
			delete(hooks, event)
		}
	}

	if len(hooks) > 0 {
		settings["hooks"] = hooks
	} else {
		delete(settings, "hooks")
	}
	return settings
}

// Installed reports whether any railguard entry is present.
func Installed(settings map[string]interface{}) bool {
	for _, raw := range asMap(settings["hooks"]) {
		entries, ok := raw.([]interface{})
		if !ok {
			continue
		}
		for _, e := range entries {
			if isRailguardEntry(e) {
				return true
			}
		}
	}
	return false
}

func isRailguardEntry(raw interface{}) bool {
	e, ok := raw.(map[string]interface{})
	if !ok {
		return false
	}
	entries, ok := e["hooks"].([]interface{})
	if !ok {
		return false
	}
	for _, h := range entries {
		hook, ok := h.(map[string]interface{})
		if !ok {
			continue
		}
		if cmd, ok := hook["command"].(string); ok && strings.Contains(cmd, "railguard") {
			return true
		}
	}
	return false
}

func asMap(v interface{}) map[string]interface{} {
	if m, ok := v.(map[string]interface{}); ok {
		return m
	}
	return map[string]interface{}{}
}

func copyMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
