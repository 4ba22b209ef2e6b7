// Package detect probes a project directory for the stacks it uses, mapping
// them to rule pack names.
package detect

import (
	"encoding/json"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"
)

// Detect returns the pack names for the project's detected stacks. The
// universal pack is always active.
func Detect(projectDir string) []string {
	packs := []string{"universal"}

	if fileExists(filepath.Join(projectDir, "pyproject.toml")) ||
		fileExists(filepath.Join(projectDir, "setup.py")) {
		packs = append(packs, "python")
	}

	if hasReactDependency(filepath.Join(projectDir, "package.json")) {
		packs = append(packs, "react")
	}

	if hasGoModule(filepath.Join(projectDir, "go.mod")) {
		packs = append(packs, "go")
	}

	return packs
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func hasReactDependency(packageJSON string) bool {
	data, err := os.ReadFile(packageJSON)
	if err != nil {
		return false
	}

	var pkg struct {
		Dependencies    map[string]string `json:"dependencies"`
		DevDependencies map[string]string `json:"devDependencies"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return false
	}

	if _, ok := pkg.Dependencies["react"]; ok {
		return true
	}
	_, ok := pkg.DevDependencies["react"]
	return ok
}

func hasGoModule(goModPath string) bool {
	data, err := os.ReadFile(goModPath)
	if err != nil {
		return false
	}

	mf, err := modfile.Parse(goModPath, data, nil)
	if err != nil {
		return false
	}
	return mf.Module != nil && mf.Module.Mod.Path != ""
}
