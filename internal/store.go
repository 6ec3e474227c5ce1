package internal

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	name            TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL DEFAULT '',
	category        TEXT NOT NULL DEFAULT 'General',
	auth_token      TEXT NOT NULL DEFAULT '',
	pending_kind    TEXT,
	pending_name    TEXT,
	pending_data    BLOB,
	pending_at      INTEGER,
	updated_at      INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS messages (
	session     TEXT NOT NULL,
	seq         INTEGER NOT NULL,
	role        TEXT NOT NULL,
	content     TEXT NOT NULL,
	attachments TEXT,
	PRIMARY KEY (session, seq)
);
CREATE TABLE IF NOT EXISTS conversations (
	session  TEXT NOT NULL,
	position INTEGER NOT NULL,
	id       TEXT NOT NULL,
	title    TEXT NOT NULL,
	PRIMARY KEY (session, position)
);`

// Store persists sessions between invocations in SQLite
type Store struct {
	db   *sql.DB
	path string
}

// OpenDatabase opens (creating if needed) a SQLite database in read-write mode
func OpenDatabase(path string) (*sql.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One logical actor owns a session; a single connection also keeps
	// :memory: databases from splitting across the pool.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	return db, nil
}

// OpenStore opens the store at path and migrates its schema
func OpenStore(path string) (*Store, error) {
	db, err := OpenDatabase(path)
	if err != nil {
		return nil, &StoreError{Path: path, Op: "open", Err: err}
	}
	store, err := NewStore(db, path)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewStore wraps an open database and migrates its schema
func NewStore(db *sql.DB, path string) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, &StoreError{Path: path, Op: "migrate", Err: err}
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the database location
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// Load returns the named session, or a fresh one if it was never saved
func (s *Store) Load(ctx context.Context, name string) (*Session, error) {
	if name == "" {
		name = DefaultSessionName
	}

	session := NewSession(name)

	var (
		category    string
		pendingKind sql.NullString
		pendingName sql.NullString
		pendingData []byte
		pendingAt   sql.NullInt64
	)
	row := s.db.QueryRowContext(ctx,
		`SELECT conversation_id, category, auth_token, pending_kind, pending_name, pending_data, pending_at
		 FROM sessions WHERE name = ?`, name)
	err := row.Scan(&session.ConversationID, &category, &session.AuthToken, &pendingKind, &pendingName, &pendingData, &pendingAt)
	if errors.Is(err, sql.ErrNoRows) {
		LogDebug("Session not stored yet", "session", name)
		return session, nil
	}
	if err != nil {
		return nil, &StoreError{Path: s.path, Op: "load", Err: err}
	}

	if parsed, err := ParseCategory(category); err == nil {
		session.Category = parsed
	} else {
		LogWarn("Ignoring stored category", "category", category, "error", err)
	}

	if pendingName.Valid && len(pendingData) > 0 {
		session.Pending = &Attachment{
			Kind:       AttachmentKind(pendingKind.String),
			Name:       pendingName.String,
			Data:       pendingData,
			CapturedAt: time.UnixMilli(pendingAt.Int64),
		}
	}

	if session.Messages, err = s.loadMessages(ctx, name); err != nil {
		return nil, &StoreError{Path: s.path, Op: "load", Err: err}
	}
	if session.Conversations, err = s.loadConversations(ctx, name); err != nil {
		return nil, &StoreError{Path: s.path, Op: "load", Err: err}
	}

	return session, nil
}

func (s *Store) loadMessages(ctx context.Context, name string) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content, attachments FROM messages WHERE session = ? ORDER BY seq`, name)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	messages := make([]Message, 0)
	for rows.Next() {
		var msg Message
		var role string
		var attachments sql.NullString
		if err := rows.Scan(&role, &msg.Content, &attachments); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		msg.Role = Role(role)
		if attachments.Valid && attachments.String != "" {
			if err := json.Unmarshal([]byte(attachments.String), &msg.Attachments); err != nil {
				LogWarn("Dropping unreadable attachment list", "session", name, "error", err)
			}
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return messages, nil
}

func (s *Store) loadConversations(ctx context.Context, name string) ([]ConversationSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title FROM conversations WHERE session = ? ORDER BY position`, name)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var list []ConversationSummary
	for rows.Next() {
		var c ConversationSummary
		if err := rows.Scan(&c.ID, &c.Title); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return list, nil
}

// Save writes the whole session in one transaction
func (s *Store) Save(ctx context.Context, session *Session) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &StoreError{Path: s.path, Op: "save", Err: err}
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var (
		pendingKind, pendingName interface{}
		pendingData              interface{}
		pendingAt                interface{}
	)
	if p := session.Pending; p != nil {
		pendingKind, pendingName, pendingData, pendingAt = string(p.Kind), p.Name, p.Data, p.CapturedAt.UnixMilli()
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (name, conversation_id, category, auth_token, pending_kind, pending_name, pending_data, pending_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			conversation_id = excluded.conversation_id,
			category        = excluded.category,
			auth_token      = excluded.auth_token,
			pending_kind    = excluded.pending_kind,
			pending_name    = excluded.pending_name,
			pending_data    = excluded.pending_data,
			pending_at      = excluded.pending_at,
			updated_at      = excluded.updated_at`,
		session.Name, session.ConversationID, string(session.Category), session.AuthToken,
		pendingKind, pendingName, pendingData, pendingAt, time.Now().UnixMilli())
	if err != nil {
		return &StoreError{Path: s.path, Op: "save", Err: err}
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM messages WHERE session = ?`, session.Name); err != nil {
		return &StoreError{Path: s.path, Op: "save", Err: err}
	}
	for i, msg := range session.Messages {
		var attachments interface{}
		if len(msg.Attachments) > 0 {
			data, marshalErr := json.Marshal(msg.Attachments)
			if marshalErr != nil {
				return &StoreError{Path: s.path, Op: "save", Err: marshalErr}
			}
			attachments = string(data)
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO messages (session, seq, role, content, attachments) VALUES (?, ?, ?, ?, ?)`,
			session.Name, i, string(msg.Role), msg.Content, attachments); err != nil {
			return &StoreError{Path: s.path, Op: "save", Err: err}
		}
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM conversations WHERE session = ?`, session.Name); err != nil {
		return &StoreError{Path: s.path, Op: "save", Err: err}
	}
	for i, c := range session.Conversations {
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO conversations (session, position, id, title) VALUES (?, ?, ?, ?)`,
			session.Name, i, c.ID, c.Title); err != nil {
			return &StoreError{Path: s.path, Op: "save", Err: err}
		}
	}

	if err = tx.Commit(); err != nil {
		return &StoreError{Path: s.path, Op: "save", Err: err}
	}
	return nil
}

// Delete removes every trace of the named session
func (s *Store) Delete(ctx context.Context, name string) error {
	for _, stmt := range []string{
		`DELETE FROM messages WHERE session = ?`,
		`DELETE FROM conversations WHERE session = ?`,
		`DELETE FROM sessions WHERE name = ?`,
	} {
		if _, err := s.db.ExecContext(ctx, stmt, name); err != nil {
			return &StoreError{Path: s.path, Op: "delete", Err: err}
		}
	}
	return nil
}
