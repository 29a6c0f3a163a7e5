// Package database is the sqlite transcript store: channel traffic and
// channel search results, stamped with the session that produced them.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const memoryPath = ":memory:"

// DB wraps the database connection and provides access to database operations
type DB struct {
	conn *sql.DB
	path string
}

// New opens (creating if needed) the database at dbPath and brings its
// schema up to date. walMode enables write-ahead logging.
func New(dbPath string, walMode bool) (*DB, error) {
	if dbPath != memoryPath {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to :memory: is its own database
	if dbPath == memoryPath {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{
		conn: conn,
		path: dbPath,
	}

	if walMode && dbPath != memoryPath {
		if err := db.configureWAL(); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to configure WAL mode: %w", err)
		}
	}

	if err := db.runMigrations(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, nil
}

// NewTest creates an in-memory database with the full schema
func NewTest() (*DB, error) {
	return New(memoryPath, false)
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// Conn returns the underlying database connection
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Path returns the file the database lives in
func (db *DB) Path() string {
	return db.path
}

// configureWAL enables Write-Ahead Logging mode and configures checkpoint settings
func (db *DB) configureWAL() error {
	var journalMode string
	err := db.conn.QueryRow("PRAGMA journal_mode=WAL").Scan(&journalMode)
	if err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("failed to enable WAL mode: got %s instead", journalMode)
	}

	// Fewer checkpoints for a write-mostly transcript
	_, err = db.conn.Exec("PRAGMA wal_autocheckpoint=5000")
	if err != nil {
		return fmt.Errorf("failed to configure WAL autocheckpoint: %w", err)
	}

	_, err = db.conn.Exec("PRAGMA synchronous=NORMAL")
	if err != nil {
		return fmt.Errorf("failed to configure synchronous mode: %w", err)
	}

	_, err = db.conn.Exec("PRAGMA busy_timeout=5000")
	if err != nil {
		return fmt.Errorf("failed to configure busy timeout: %w", err)
	}

	return nil
}
