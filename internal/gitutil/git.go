// Package gitutil shells out to git for the small set of queries the rules
// and the session report need. Every call carries a timeout; a missing git
// binary or a non-repo directory degrades to empty results.
package gitutil

import (
	"context"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/ihavespoons/railguard/internal/logger"
)

const (
	queryTimeout = 10 * time.Second
	probeTimeout = 5 * time.Second
)

func run(projectDir string, timeout time.Duration, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = projectDir
	out, err := cmd.Output()
	return string(out), err
}

// ChangedFiles returns the absolute paths of files changed vs HEAD (staged
// and unstaged) plus untracked files, sorted.
func ChangedFiles(projectDir string) []string {
	seen := map[string]struct{}{}

	if out, err := run(projectDir, queryTimeout, "diff", "--name-only", "HEAD"); err == nil {
		for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
			if line != "" {
				seen[filepath.Join(projectDir, line)] = struct{}{}
			}
		}
	}

	if out, err := run(projectDir, queryTimeout, "ls-files", "--others", "--exclude-standard"); err == nil {
		for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
			if line != "" {
				seen[filepath.Join(projectDir, line)] = struct{}{}
			}
		}
	}

	files := make([]string, 0, len(seen))
	for f := range seen {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// IsRepo reports whether the directory is inside a git work tree.
func IsRepo(projectDir string) bool {
	_, err := run(projectDir, probeTimeout, "rev-parse", "--is-inside-work-tree")
	return err == nil
}

// HasChanges reports whether the working tree has uncommitted changes.
func HasChanges(projectDir string) bool {
	out, err := run(projectDir, probeTimeout, "status", "--porcelain")
	return err == nil && strings.TrimSpace(out) != ""
}

// StashPush creates a stash with the given message. Returns true when a
// stash was actually created.
func StashPush(projectDir string, message string) bool {
	out, err := run(projectDir, probeTimeout, "stash", "push", "-m", message)
	if err != nil {
		logger.Debug().Err(err).Msg("git stash push failed")
		return false
	}
	return !strings.Contains(out, "No local changes")
}

// CleanStashes drops stashes whose message contains prefix and that are
// older than maxAge. Returns the number removed.
func CleanStashes(projectDir string, prefix string, maxAge time.Duration) int {
	out, err := run(projectDir, probeTimeout, "stash", "list")
	if err != nil {
		return 0
	}

	cutoff := time.Now().Add(-maxAge).Unix()

	// Format: stash@{N}: On branch: message. Drop from the highest index
	// down so earlier drops do not shift the remaining indices.
	var indices []int
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if !strings.Contains(line, prefix) {
			continue
		}
		open := strings.Index(line, "stash@{")
		close := strings.Index(line, "}")
		if open != 0 || close < 0 {
			continue
		}
		idx, err := strconv.Atoi(line[len("stash@{"):close])
		if err != nil {
			continue
		}
		indices = append(indices, idx)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(indices)))

	removed := 0
	for _, idx := range indices {
		ref := "stash@{" + strconv.Itoa(idx) + "}"
		tsOut, err := run(projectDir, probeTimeout, "log", "-1", "--format=%ct", ref)
		if err != nil {
			continue
		}
		stashTime, err := strconv.ParseInt(strings.TrimSpace(tsOut), 10, 64)
		if err != nil || stashTime >= cutoff {
			continue
		}
		if _, err := run(projectDir, probeTimeout, "stash", "drop", ref); err == nil {
			removed++
		}
	}

	return removed
}
