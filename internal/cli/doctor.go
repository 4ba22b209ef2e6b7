package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ihavespoons/railguard/internal/config"
	"github.com/ihavespoons/railguard/internal/session"
	"github.com/ihavespoons/railguard/internal/setup"
	"github.com/ihavespoons/railguard/internal/trace"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose common railguard misconfigurations",
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	initLogging()
	projectDir := resolveProjectDir()

	var ok, issues []string

	// Config file present.
	if path := config.FindConfigFile(projectDir); path != "" {
		ok = append(ok, fmt.Sprintf("Config file: %s found", filepath.Base(path)))
	} else {
		issues = append(issues, "Config file: railguard.yml not found. Run 'railguard init' to create one.")
	}

	// Hooks registered in the project settings.
	settingsPath, err := setup.SettingsPath(setup.ScopeProject, projectDir)
	if err == nil && setup.Installed(setup.ReadSettings(settingsPath)) {
		ok = append(ok, "Hooks: installed in .claude/settings.json")
	} else {
		issues = append(issues, "Hooks: not installed. Run 'railguard setup' to install.")
	}

	// Session cache writable.
	cacheDir := session.NewStore().Dir()
	switch {
	case !dirExists(cacheDir):
		ok = append(ok, fmt.Sprintf("Session cache: %s (will be created)", cacheDir))
	case dirWritable(cacheDir):
		ok = append(ok, fmt.Sprintf("Session cache: %s (writable)", cacheDir))
	default:
		issues = append(issues, fmt.Sprintf("Session cache: %s is not writable", cacheDir))
	}

	// Trace store reachable when tracing is on.
	cfg := config.MustLoad(projectDir)
	if cfg.Trace.Enabled {
		store, err := trace.NewSQLiteStore(cfg.Trace.StoragePath)
		if err != nil {
			issues = append(issues, fmt.Sprintf("Trace store: unreachable (%v)", err))
		} else {
			_ = store.Close()
			ok = append(ok, "Trace store: reachable")
		}
	} else {
		ok = append(ok, "Trace store: disabled")
	}

	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	for _, item := range ok {
		fmt.Printf("  %s  %s\n", green("OK"), item)
	}
	for _, item := range issues {
		fmt.Printf("  %s  %s\n", red("!!"), item)
	}

	if len(issues) > 0 {
		fmt.Printf("\n%d issue(s) found.\n", len(issues))
	} else {
		fmt.Println("\nAll checks passed.")
	}
	return nil
}

func dirExists(dir string) bool {
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}

func dirWritable(dir string) bool {
	probe, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		return false
	}
	_ = probe.Close()
	_ = os.Remove(probe.Name())
	return true
}
