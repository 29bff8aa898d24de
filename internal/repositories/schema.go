package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"
)

const migrationTable = "schema_migrations"

// ApplyMigrations executes the Up section of every *.sql file in migrationFS at
// most once, in file name order.
func ApplyMigrations(ctx context.Context, db *sql.DB, migrationFS fs.FS) error {
	if db == nil {
		return errors.New("sql db is required")
	}

	entries, err := fs.ReadDir(migrationFS, ".")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	createSQL := `CREATE TABLE IF NOT EXISTS ` + migrationTable + ` (
    name VARCHAR(255) PRIMARY KEY,
    applied_at BIGINT NOT NULL
)`
	if _, err := db.ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}

	for _, file := range files {
		applied, err := isMigrationApplied(ctx, db, file)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", file, err)
		}
		if applied {
			continue
		}

		content, err := fs.ReadFile(migrationFS, file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", file, err)
		}
		for _, stmt := range splitStatements(extractUpMigration(string(content))) {
			if _, err := db.ExecContext(ctx, stmt); err != nil && !isAlreadyExistsError(err) {
				return fmt.Errorf("exec migration %s: %w", file, err)
			}
		}

		if _, err := db.ExecContext(ctx,
			`INSERT INTO `+migrationTable+` (name, applied_at) VALUES (?, ?)`,
			file, time.Now().UTC().UnixMilli(),
		); err != nil {
			return fmt.Errorf("record migration %s: %w", file, err)
		}
	}
	return nil
}

func extractUpMigration(content string) string {
	upIdx := strings.Index(content, "-- +migrate Up")
	if upIdx == -1 {
		return content
	}
	downIdx := strings.Index(content, "-- +migrate Down")
	if downIdx == -1 {
		return content[upIdx+len("-- +migrate Up"):]
	}
	return content[upIdx+len("-- +migrate Up") : downIdx]
}

// splitStatements splits on semicolons. Migrations must not contain
// semicolons inside string literals.
func splitStatements(sqlText string) []string {
	var out []string
	for _, part := range strings.Split(sqlText, ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}

func isMigrationApplied(ctx context.Context, db *sql.DB, name string) (bool, error) {
	var found int
	err := db.QueryRowContext(ctx, `SELECT 1 FROM `+migrationTable+` WHERE name = ?`, name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Capabilities records which optional listing child tables exist. It is
// probed once at startup; repositories skip the features whose table is absent.
type Capabilities struct {
	Categories bool
	Labels     bool
	Answers    bool
	Proofs     bool
}

// AllCapabilities enables every optional listing feature.
func AllCapabilities() Capabilities {
	return Capabilities{Categories: true, Labels: true, Answers: true, Proofs: true}
}

// Missing lists the tables whose feature is disabled.
func (c Capabilities) Missing() []string {
	var missing []string
	if !c.Categories {
		missing = append(missing, "listing_categories")
	}
	if !c.Labels {
		missing = append(missing, "listing_labels")
	}
	if !c.Answers {
		missing = append(missing, "listing_answers")
	}
	if !c.Proofs {
		missing = append(missing, "listing_proofs")
	}
	return missing
}

func ProbeCapabilities(ctx context.Context, db *sql.DB) (Capabilities, error) {
	var caps Capabilities
	probes := []struct {
		table string
		flag  *bool
	}{
		{"listing_categories", &caps.Categories},
		{"listing_labels", &caps.Labels},
		{"listing_answers", &caps.Answers},
		{"listing_proofs", &caps.Proofs},
	}
	for _, p := range probes {
		ok, err := tableExists(ctx, db, p.table)
		if err != nil {
			return Capabilities{}, fmt.Errorf("probe %s: %w", p.table, err)
		}
		*p.flag = ok
	}
	return caps, nil
}

func tableExists(ctx context.Context, db *sql.DB, table string) (bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT 1 FROM `+table+` LIMIT 1`)
	if err != nil {
		if isMissingTableError(err) {
			return false, nil
		}
		return false, err
	}
	defer rows.Close()
	for rows.Next() {
	}
	return true, rows.Err()
}
