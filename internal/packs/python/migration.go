package python

import (
	"regexp"
	"strings"

	"github.com/ihavespoons/railguard/internal/hooks"
	"github.com/ihavespoons/railguard/internal/rule"
)

var defaultMigrationMarkers = []string{"migration", "alembic", "versions"}

var (
	opDropTableRE   = regexp.MustCompile(`\bop\.drop_table\s*\(`)
	opCreateTableRE = regexp.MustCompile(`\bop\.create_table\s*\(`)
	opDropColumnRE  = regexp.MustCompile(`\bop\.drop_column\s*\(`)
	alterNullableRE = regexp.MustCompile(`\bop\.alter_column\s*\([^)]*nullable\s*=\s*False`)

	saDateTimeRE   = regexp.MustCompile(`\bsa\.DateTime\b`)
	timezoneTrueRE = regexp.MustCompile(`timezone\s*=\s*True`)
)

func isMigrationFile(filePath string, migrationPaths []string) bool {
	lower := strings.ToLower(filePath)
	markers := migrationPaths
	if len(markers) == 0 {
		markers = defaultMigrationMarkers
	}
	for _, marker := range markers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// DangerousMigration detects risky Alembic migration operations.
type DangerousMigration struct{}

func (DangerousMigration) Meta() rule.Meta {
	return rule.Meta{
		ID:          "no-dangerous-migration",
		Description: "Warns about dangerous database migration operations",
		Severity:    rule.Warning,
		Events:      []hooks.EventType{hooks.PreToolUse},
		Pack:        Name,
	}
}

func (r DangerousMigration) Evaluate(ctx *rule.Context) ([]rule.Finding, error) {
	if ctx.ToolName != "Write" && ctx.ToolName != "Edit" {
		return nil, nil
	}

	filePath := ctx.FilePath()
	if !strings.HasSuffix(filePath, ".py") {
		return nil, nil
	}

	m := r.Meta()
	settings := ctx.Settings(m.ID)
	if !isMigrationFile(filePath, settings.StringSlice("migration_paths")) {
		return nil, nil
	}

	content := ctx.Content()
	if content == "" {
		return nil, nil
	}

	var findings []rule.Finding
	add := func(loc int, message, suggestion string) {
		findings = append(findings, rule.Finding{
			RuleID:     m.ID,
			Message:    message,
			Severity:   m.Severity,
			FilePath:   filePath,
			Line:       strings.Count(content[:loc], "\n") + 1,
			Suggestion: suggestion,
		})
	}

	// drop_table without create_table is irreversible.
	if opDropTableRE.MatchString(content) && !opCreateTableRE.MatchString(content) {
		for _, loc := range opDropTableRE.FindAllStringIndex(content, -1) {
			add(loc[0],
				"op.drop_table() without corresponding op.create_table()",
				"Add a create_table in the downgrade() to make migration reversible.")
		}
	}

	for _, loc := range opDropColumnRE.FindAllStringIndex(content, -1) {
		add(loc[0],
			"op.drop_column() is a destructive, hard-to-reverse operation",
			"Consider a two-step migration: deprecate then drop.")
	}

	for _, loc := range alterNullableRE.FindAllStringIndex(content, -1) {
		add(loc[0],
			"op.alter_column() with nullable=False may fail on existing NULLs",
			"Add a data migration to fill NULLs before setting nullable=False.")
	}

	if settings.Bool("require_timezone", true) {
		for _, loc := range saDateTimeRE.FindAllStringIndex(content, -1) {
			// The call is aware only if timezone=True appears before the
			// closing paren that follows the type.
			window := content[loc[1]:]
			if i := strings.IndexByte(window, ')'); i >= 0 {
				window = window[:i]
			}
			if timezoneTrueRE.MatchString(window) {
				continue
			}
			add(loc[0],
				"sa.DateTime without timezone=True",
				"Use sa.DateTime(timezone=True) to store timezone-aware datetimes.")
		}
	}

	return findings, nil
}
