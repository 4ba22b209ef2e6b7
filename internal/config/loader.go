package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ihavespoons/railguard/internal/detect"
	"github.com/ihavespoons/railguard/internal/logger"
)

// ConfigFilenames are the accepted config file names at the project root, in
// lookup order.
var ConfigFilenames = []string{"railguard.yml", "railguard.yaml", ".railguard.yml"}

// FindConfigFile returns the path of the first config file present at the
// project root, or "" when none exists.
func FindConfigFile(projectDir string) string {
	for _, name := range ConfigFilenames {
		path := filepath.Join(projectDir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// Load reads the project configuration, overlaying the file (when present)
// on the defaults and resolving the active pack list. A missing file yields
// the defaults with auto-detected packs.
func Load(projectDir string) (*Config, error) {
	cfg := DefaultConfig()

	path := FindConfigFile(projectDir)
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if cfg.Stack == "" {
		cfg.Stack = "auto"
	}
	if cfg.Severity == "" {
		cfg.Severity = ModeStandard
	}
	if cfg.Rules == nil {
		cfg.Rules = map[string]map[string]interface{}{}
	}

	// Explicit packs win; otherwise stack: auto probes the project.
	if len(cfg.Packs) == 0 {
		if cfg.Stack == "auto" {
			cfg.Packs = detect.Detect(projectDir)
		} else {
			cfg.Packs = []string{"universal"}
		}
	}

	// Setting custom_rules_dir is the opt-in; requiring the pack to also be
	// listed would be a trap.
	if cfg.CustomRulesDir != "" && !contains(cfg.Packs, "custom") {
		cfg.Packs = append(cfg.Packs, "custom")
	}

	return cfg, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// MustLoad loads the configuration, falling back to defaults when the file
// is unreadable or malformed. Config problems must never abort a hook run.
func MustLoad(projectDir string) *Config {
	cfg, err := Load(projectDir)
	if err != nil {
		logger.Warn().Err(err).Msg("Config unreadable, using defaults")
		fallback := DefaultConfig()
		fallback.Packs = detect.Detect(projectDir)
		return fallback
	}
	return cfg
}
