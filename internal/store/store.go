// Package store provides SQLite persistence for chat history.
package store

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Store keeps chat messages. Concrete type, safe for concurrent use.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Message is one chat line.
type Message struct {
	ID     string
	Sender string
	Body   string
	At     time.Time
}

// Open opens (or creates) the database at dbPath. ":memory:" gives a private
// in-memory database. File databases use WAL.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// An in-memory database lives and dies with its connection.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return s, nil
}

func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS messages (
		id      TEXT PRIMARY KEY,
		sender  TEXT NOT NULL,
		body    TEXT NOT NULL,
		sent_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_messages_sent ON messages(sent_at DESC);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// SaveMessage stores m. It reports false when a message with the same ID
// already exists.
func (s *Store) SaveMessage(m Message) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(
		`INSERT OR IGNORE INTO messages (id, sender, body, sent_at) VALUES (?, ?, ?, ?)`,
		m.ID, m.Sender, m.Body, m.At.UnixNano(),
	)
	if err != nil {
		return false, fmt.Errorf("insert message %s: %w", m.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// RecentMessages returns the newest limit messages in chronological order.
func (s *Store) RecentMessages(limit int) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT id, sender, body, sent_at FROM (
			SELECT id, sender, body, sent_at FROM messages
			ORDER BY sent_at DESC, rowid DESC
			LIMIT ?
		) ORDER BY sent_at ASC
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		var sentAt int64
		if err := rows.Scan(&m.ID, &m.Sender, &m.Body, &sentAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.At = time.Unix(0, sentAt)
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// Count returns the number of stored messages.
func (s *Store) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM messages`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count messages: %w", err)
	}
	return n, nil
}
