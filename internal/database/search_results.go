package database

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SearchResult is one channel found by a channel search
type SearchResult struct {
	ID        int64
	SearchID  string
	SessionID string
	Timestamp time.Time
	Channel   string
	Users     int
	Topic     string
}

// SaveSearchResults stores the results of one search as a batch and
// returns the batch id. An empty result set writes no rows.
func (db *DB) SaveSearchResults(sessionID string, results []SearchResult) (string, error) {
	searchID := uuid.NewString()
	now := time.Now()

	tx, err := db.conn.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.Prepare(`
		INSERT INTO search_results (search_id, session_id, timestamp, channel, users, topic)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare search result insert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for _, r := range results {
		if _, err := stmt.Exec(searchID, sessionID, now, r.Channel, r.Users, r.Topic); err != nil {
			return "", fmt.Errorf("failed to save search result %s: %w", r.Channel, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit search results: %w", err)
	}

	return searchID, nil
}

// LatestSearchResults returns up to limit rows of the most recently saved
// search, largest channels first. limit <= 0 returns them all.
func (db *DB) LatestSearchResults(limit int) ([]*SearchResult, error) {
	query := `
		SELECT id, search_id, session_id, timestamp, channel, users, topic
		FROM search_results
		WHERE search_id = (SELECT search_id FROM search_results ORDER BY id DESC LIMIT 1)
		ORDER BY users DESC, id ASC
	`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query search results: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var results []*SearchResult
	for rows.Next() {
		r := &SearchResult{}
		if err := rows.Scan(&r.ID, &r.SearchID, &r.SessionID, &r.Timestamp, &r.Channel, &r.Users, &r.Topic); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating search results: %w", err)
	}

	return results, nil
}
