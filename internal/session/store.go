// Package session persists a small JSON state blob per agent session so that
// state survives across separate hook invocations (PreToolUse, PostToolUse,
// Stop) within the same session.
//
// The store is a plain file per session key, read once at invocation start
// and written whole at the end. Two invocations racing on the same key can
// lose an update (last write wins); with one agent issuing sequential tool
// calls this is an accepted limitation, not a bug to lock away.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ihavespoons/railguard/internal/logger"
)

// State is the session-state mapping: string keys to arbitrary
// JSON-compatible values.
type State map[string]interface{}

// Store reads and writes session state files under a cache directory.
type Store struct {
	dir string
}

// NewStore creates a store rooted at RAILGUARD_CACHE_DIR, falling back to
// ~/.cache/railguard/sessions.
func NewStore() *Store {
	if dir := os.Getenv("RAILGUARD_CACHE_DIR"); dir != "" {
		return &Store{dir: dir}
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// No home directory: degrade to a temp location rather than fail.
		return &Store{dir: filepath.Join(os.TempDir(), "railguard", "sessions")}
	}
	return &Store{dir: filepath.Join(homeDir, ".cache", "railguard", "sessions")}
}

// NewStoreAt creates a store rooted at an explicit directory.
func NewStoreAt(dir string) *Store {
	return &Store{dir: dir}
}

// Key derives the session key from the environment: the supervisor's session
// id when present, otherwise the parent process id so that unrelated
// sessions on one machine do not collide.
func Key() string {
	if id := os.Getenv("CLAUDE_SESSION_ID"); id != "" {
		return id
	}
	return fmt.Sprintf("pid-%d", os.Getppid())
}

// Dir returns the cache directory backing the store.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the backing file path for a session key.
func (s *Store) Path(key string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_").Replace(key)
	return filepath.Join(s.dir, safe+".json")
}

// Load reads the session state for key. A missing or corrupt file loads as
// an empty state: corruption must never abort the pipeline.
func (s *Store) Load(key string) State {
	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		return State{}
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		logger.Debug().
			Str("key", key).
			Err(err).
			Msg("Corrupt session file, starting with empty state")
		return State{}
	}
	if state == nil {
		return State{}
	}
	return state
}

// Save writes the whole session state for key. Save failures propagate so
// the caller can log that this invocation's state was lost.
func (s *Store) Save(key string, state State) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode session state: %w", err)
	}

	if err := os.WriteFile(s.Path(key), data, 0644); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// Cleanup removes the backing file for key. Removing an absent file is a
// no-op.
func (s *Store) Cleanup(key string) error {
	err := os.Remove(s.Path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove session file: %w", err)
	}
	return nil
}
