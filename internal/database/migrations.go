package database

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"
)

//go:embed schema/*.sql
var schemaFiles embed.FS

// migration is one schema step: NNN_name.sql and its NNN_name.down.sql
type migration struct {
	version int
	name    string
	up      string
	down    string
}

// AppliedMigration is a row of schema_migrations
type AppliedMigration struct {
	Version   int
	Name      string
	AppliedAt time.Time
}

// parseMigrationFile splits "003_search.down.sql" into 3, "search", true
func parseMigrationFile(file string) (version int, name string, down bool, err error) {
	base, ok := strings.CutSuffix(file, ".sql")
	if !ok {
		return 0, "", false, fmt.Errorf("%s: not an .sql file", file)
	}
	base, down = strings.CutSuffix(base, ".down")

	prefix, name, ok := strings.Cut(base, "_")
	if !ok || name == "" {
		return 0, "", false, fmt.Errorf("%s: want NNN_name.sql", file)
	}
	version, err = strconv.Atoi(prefix)
	if err != nil || version <= 0 {
		return 0, "", false, fmt.Errorf("%s: version %q is not a positive number", file, prefix)
	}
	return version, name, down, nil
}

// loadMigrations reads the schema directory of fsys. Every version needs
// both an up and a down file with the same name, and versions run 1..n
// without gaps.
func loadMigrations(fsys fs.FS) ([]migration, error) {
	files, err := fs.Glob(fsys, "schema/*.sql")
	if err != nil {
		return nil, fmt.Errorf("failed to list schema files: %w", err)
	}

	byVersion := make(map[int]*migration)
	for _, file := range files {
		version, name, down, err := parseMigrationFile(path.Base(file))
		if err != nil {
			return nil, err
		}
		content, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}

		m := byVersion[version]
		if m == nil {
			m = &migration{version: version, name: name}
			byVersion[version] = m
		}
		if m.name != name {
			return nil, fmt.Errorf("migration %d is named both %q and %q", version, m.name, name)
		}
		if down {
			m.down = string(content)
		} else {
			m.up = string(content)
		}
	}

	migrations := make([]migration, 0, len(byVersion))
	for _, m := range byVersion {
		switch {
		case strings.TrimSpace(m.up) == "":
			return nil, fmt.Errorf("migration %d_%s has no up SQL", m.version, m.name)
		case strings.TrimSpace(m.down) == "":
			return nil, fmt.Errorf("migration %d_%s has no down SQL", m.version, m.name)
		}
		migrations = append(migrations, *m)
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].version < migrations[j].version
	})
	for i, m := range migrations {
		if m.version != i+1 {
			return nil, fmt.Errorf("migration %d is missing", i+1)
		}
	}
	return migrations, nil
}

// runMigrations applies every embedded migration newer than the schema
func (db *DB) runMigrations() error {
	return db.migrate(schemaFiles)
}

func (db *DB) migrate(fsys fs.FS) error {
	if _, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	migrations, err := loadMigrations(fsys)
	if err != nil {
		return err
	}
	current, err := db.SchemaVersion()
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := db.apply(m); err != nil {
			return fmt.Errorf("migration %d_%s: %w", m.version, m.name, err)
		}
	}
	return nil
}

// apply runs one up migration and records it in the same transaction
func (db *DB) apply(m migration) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(m.up); err != nil {
		return err
	}
	if _, err := tx.Exec(
		"INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)",
		m.version, m.name, time.Now(),
	); err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}
	return tx.Commit()
}

// SchemaVersion returns the last applied migration, 0 for an empty database
func (db *DB) SchemaVersion() (int, error) {
	var version int
	if err := db.conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, nil
}

// AppliedMigrations lists the applied migrations, oldest first
func (db *DB) AppliedMigrations() ([]AppliedMigration, error) {
	rows, err := db.conn.Query("SELECT version, name, applied_at FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("failed to list migrations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var applied []AppliedMigration
	for rows.Next() {
		var m AppliedMigration
		if err := rows.Scan(&m.Version, &m.Name, &m.AppliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration: %w", err)
		}
		applied = append(applied, m)
	}
	return applied, rows.Err()
}

// Rollback undoes the last applied migration and returns it
func (db *DB) Rollback() (*AppliedMigration, error) {
	applied, err := db.AppliedMigrations()
	if err != nil {
		return nil, err
	}
	if len(applied) == 0 {
		return nil, fmt.Errorf("no migrations to roll back")
	}
	last := applied[len(applied)-1]

	migrations, err := loadMigrations(schemaFiles)
	if err != nil {
		return nil, err
	}
	if last.Version > len(migrations) {
		return nil, fmt.Errorf("migration %d_%s is not known to this build", last.Version, last.Name)
	}
	m := migrations[last.Version-1]

	tx, err := db.conn.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(m.down); err != nil {
		return nil, fmt.Errorf("migration %d_%s down: %w", m.version, m.name, err)
	}
	if _, err := tx.Exec("DELETE FROM schema_migrations WHERE version = ?", m.version); err != nil {
		return nil, fmt.Errorf("failed to remove migration record: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit rollback: %w", err)
	}
	return &last, nil
}
