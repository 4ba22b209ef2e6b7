package trace

import (
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ihavespoons/railguard/internal/config"
	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/logger"
	"github.com/ihavespoons/railguard/internal/rule"

	_ "modernc.org/sqlite" // SQLite driver for database/sql
)

// SQLiteStore implements Recorder using SQLite
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
}

// NewSQLiteStore opens (or creates) the audit database at dbPath. An empty
// path selects the default cache location.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(homeDir, ".cache", "railguard", "trace.db")
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create trace directory: %w", err)
	}

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}

	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logger.Debug().
		Str("path", dbPath).
		Msg("Opened trace store")

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS invocations (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		event TEXT NOT NULL,
		tool_name TEXT,
		decision TEXT NOT NULL,
		exit_code INTEGER NOT NULL,
		rules_evaluated INTEGER NOT NULL,
		duration_us INTEGER NOT NULL,
		timestamp INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS findings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		invocation_id TEXT NOT NULL,
		rule_id TEXT NOT NULL,
		severity TEXT NOT NULL,
		message TEXT NOT NULL,
		file_path TEXT,
		line INTEGER,
		suggestion TEXT,
		FOREIGN KEY (invocation_id) REFERENCES invocations(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_invocations_session ON invocations(session_id, timestamp);
	CREATE INDEX IF NOT EXISTS idx_findings_invocation ON findings(invocation_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// RecordInvocation stores one invocation and its findings atomically.
func (s *SQLiteStore) RecordInvocation(inv *Invocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(
		`INSERT INTO invocations (id, session_id, event, tool_name, decision, exit_code, rules_evaluated, duration_us, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID,
		inv.SessionID,
		string(inv.Event),
		inv.ToolName,
		inv.Decision,
		inv.ExitCode,
		inv.RulesEvaluated,
		inv.Duration.Microseconds(),
		inv.Timestamp.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to store invocation: %w", err)
	}

	for _, f := range inv.Findings {
		_, err = tx.Exec(
			`INSERT INTO findings (invocation_id, rule_id, severity, message, file_path, line, suggestion)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			inv.ID, f.RuleID, string(f.Severity), f.Message, f.FilePath, f.Line, f.Suggestion,
		)
		if err != nil {
			return fmt.Errorf("failed to store finding: %w", err)
		}
	}

	return tx.Commit()
}

// ListInvocations returns the most recent invocations, newest first. An empty
// sessionID lists across all sessions.
func (s *SQLiteStore) ListInvocations(sessionID string, limit int) ([]*Invocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT id, session_id, event, tool_name, decision, exit_code, rules_evaluated, duration_us, timestamp
		 FROM invocations`
	args := []interface{}{}
	if sessionID != "" {
		query += " WHERE session_id = ?"
		args = append(args, sessionID)
	}
	query += " ORDER BY timestamp DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list invocations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	invs, err := s.scanInvocations(rows)
	if err != nil {
		return nil, err
	}

	for _, inv := range invs {
		inv.Findings, err = s.loadFindings(inv.ID)
		if err != nil {
			return nil, err
		}
	}

	return invs, nil
}

// GetInvocation retrieves a single invocation with its findings.
func (s *SQLiteStore) GetInvocation(id string) (*Invocation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var inv Invocation
	var event string
	var durationUS, timestamp int64

	err := s.db.QueryRow(
		`SELECT id, session_id, event, tool_name, decision, exit_code, rules_evaluated, duration_us, timestamp
		 FROM invocations WHERE id = ?`,
		id,
	).Scan(&inv.ID, &inv.SessionID, &event, &inv.ToolName, &inv.Decision, &inv.ExitCode, &inv.RulesEvaluated, &durationUS, &timestamp)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("invocation not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invocation: %w", err)
	}

	inv.Event = hooks.EventType(event)
	inv.Duration = time.Duration(durationUS) * time.Microsecond
	inv.Timestamp = time.Unix(timestamp, 0)

	inv.Findings, err = s.loadFindings(inv.ID)
	if err != nil {
		return nil, err
	}

	return &inv, nil
}

func (s *SQLiteStore) scanInvocations(rows *sql.Rows) ([]*Invocation, error) {
	var invs []*Invocation

	for rows.Next() {
		var inv Invocation
		var event string
		var durationUS, timestamp int64

		if err := rows.Scan(&inv.ID, &inv.SessionID, &event, &inv.ToolName, &inv.Decision, &inv.ExitCode, &inv.RulesEvaluated, &durationUS, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan invocation: %w", err)
		}

		inv.Event = hooks.EventType(event)
		inv.Duration = time.Duration(durationUS) * time.Microsecond
		inv.Timestamp = time.Unix(timestamp, 0)
		invs = append(invs, &inv)
	}

	return invs, rows.Err()
}

func (s *SQLiteStore) loadFindings(invocationID string) ([]rule.Finding, error) {
	rows, err := s.db.Query(
		`SELECT rule_id, severity, message, file_path, line, suggestion
		 FROM findings WHERE invocation_id = ? ORDER BY id ASC`,
		invocationID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load findings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var findings []rule.Finding
	for rows.Next() {
		var f rule.Finding
		var severity string

		if err := rows.Scan(&f.RuleID, &severity, &f.Message, &f.FilePath, &f.Line, &f.Suggestion); err != nil {
			return nil, fmt.Errorf("failed to scan finding: %w", err)
		}

		f.Severity = rule.Severity(severity)
		findings = append(findings, f)
	}

	return findings, rows.Err()
}

// CleanupOldInvocations removes invocations older than the given TTL.
func (s *SQLiteStore) CleanupOldInvocations(ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-ttl).Unix()

	// Delete findings for old invocations
	_, err := s.db.Exec("DELETE FROM findings WHERE invocation_id IN (SELECT id FROM invocations WHERE timestamp < ?)", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old findings: %w", err)
	}

	// Delete old invocations
	result, err := s.db.Exec("DELETE FROM invocations WHERE timestamp < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old invocations: %w", err)
	}

	deleted, _ := result.RowsAffected()
	if deleted > 0 {
		logger.Debug().
			Int64("deleted", deleted).
			Str("ttl", ttl.String()).
			Msg("Cleaned up old invocations")
	}

	return deleted, nil
}

// CleanupExcessInvocations removes the oldest invocations when a session
// exceeds maxInvocations.
func (s *SQLiteStore) CleanupExcessInvocations(sessionID string, maxInvocations int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM invocations WHERE session_id = ?", sessionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count invocations: %w", err)
	}

	if count <= maxInvocations {
		return 0, nil
	}

	toDelete := count - maxInvocations

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(
		`DELETE FROM findings WHERE invocation_id IN (
			SELECT id FROM invocations WHERE session_id = ? ORDER BY timestamp ASC LIMIT ?
		)`,
		sessionID, toDelete,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete excess findings: %w", err)
	}

	result, err := tx.Exec(
		`DELETE FROM invocations WHERE id IN (
			SELECT id FROM invocations WHERE session_id = ? ORDER BY timestamp ASC LIMIT ?
		)`,
		sessionID, toDelete,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete excess invocations: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	deleted, _ := result.RowsAffected()
	if deleted > 0 {
		logger.Debug().
			Int64("deleted", deleted).
			Str("session", sessionID).
			Msg("Cleaned up excess invocations")
	}

	return deleted, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// MaybeRunCleanup runs retention cleanup with the configured probability.
// The hook process exits right after the invocation, so cleanup runs inline
// rather than on a goroutine that would be killed mid-write.
func MaybeRunCleanup(store Recorder, settings config.TraceSettings, sessionID string) {
	prob := settings.CleanupProbability
	if prob <= 0 {
		prob = 0.02
	}
	if rand.Float64() > prob {
		return
	}

	ttl, err := time.ParseDuration(settings.SessionTTL)
	if err != nil || ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}

	if _, err := store.CleanupOldInvocations(ttl); err != nil {
		logger.Debug().Err(err).Msg("Failed to clean up old invocations")
	}

	maxInv := settings.MaxEventsPerSession
	if maxInv <= 0 {
		maxInv = 500
	}
	if sessionID != "" {
		if _, err := store.CleanupExcessInvocations(sessionID, maxInv); err != nil {
			logger.Debug().Err(err).Msg("Failed to clean up excess invocations")
		}
	}
}
