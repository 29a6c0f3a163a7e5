package database

import (
	"fmt"
	"time"
)

// Event types stored alongside chat lines
const (
	EventTypeMessage = ""       // Regular message (default)
	EventTypeAction  = "ACTION" // /me action
	EventTypeJoin    = "JOIN"
	EventTypePart    = "PART"
	EventTypeQuit    = "QUIT"
	EventTypeKick    = "KICK"
	EventTypeNick    = "NICK"
	EventTypeMode    = "MODE"
	EventTypeTopic   = "TOPIC"
	EventTypeBan     = "BAN"
)

// Message is one transcript row: a chat line or a channel event
type Message struct {
	ID        int64
	SessionID string
	Timestamp time.Time
	Channel   string // Empty for events that are not tied to a channel
	Nick      string
	Hostmask  string
	Content   string
	EventType string
}

// LogMessage stores a message in the database
func (db *DB) LogMessage(msg *Message) error {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	query := `
		INSERT INTO messages (session_id, timestamp, channel, nick, hostmask, content, event_type)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := db.conn.Exec(query, msg.SessionID, msg.Timestamp, msg.Channel, msg.Nick, msg.Hostmask, msg.Content, msg.EventType)
	if err != nil {
		return fmt.Errorf("failed to log message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get message ID: %w", err)
	}

	msg.ID = id
	return nil
}

// LogEvent logs a channel event (join, part, kick, quit, nick change, etc.)
func (db *DB) LogEvent(sessionID, eventType, channel, nick, hostmask, content string) error {
	return db.LogMessage(&Message{
		SessionID: sessionID,
		Timestamp: time.Now(),
		Channel:   channel,
		Nick:      nick,
		Hostmask:  hostmask,
		Content:   content,
		EventType: eventType,
	})
}

// MessageFilter narrows QueryMessages
type MessageFilter struct {
	Channel       string
	SessionID     string
	Limit         int
	IncludeEvents bool // If false, only regular messages and actions
}

// QueryMessages returns matching rows, newest first
func (db *DB) QueryMessages(filter *MessageFilter) ([]*Message, error) {
	query := `
		SELECT id, session_id, timestamp, channel, nick, hostmask, content, event_type
		FROM messages
		WHERE 1=1
	`
	args := []interface{}{}

	if filter.Channel != "" {
		query += " AND channel = ?"
		args = append(args, filter.Channel)
	}

	if filter.SessionID != "" {
		query += " AND session_id = ?"
		args = append(args, filter.SessionID)
	}

	if !filter.IncludeEvents {
		query += " AND event_type IN (?, ?)"
		args = append(args, EventTypeMessage, EventTypeAction)
	}

	query += " ORDER BY id DESC"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var messages []*Message
	for rows.Next() {
		msg := &Message{}
		err := rows.Scan(
			&msg.ID,
			&msg.SessionID,
			&msg.Timestamp,
			&msg.Channel,
			&msg.Nick,
			&msg.Hostmask,
			&msg.Content,
			&msg.EventType,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating messages: %w", err)
	}

	return messages, nil
}

// RecentMessages returns the last limit chat lines of channel, oldest first
func (db *DB) RecentMessages(channel string, limit int) ([]*Message, error) {
	messages, err := db.QueryMessages(&MessageFilter{Channel: channel, Limit: limit})
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}
