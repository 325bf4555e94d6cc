// Package storage persists relay transcripts: one session row per client
// connection and one message row per user or agent turn.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dyike/FinAgentGo/models"
	"github.com/dyike/FinAgentGo/pkg/sqlite"
)

const (
	StatusStreaming   = "streaming"
	StatusDone        = "done"
	StatusInterrupted = "interrupted"
	StatusError       = "error"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

type Store struct {
	db *sql.DB
}

func Open(dbPath string) (*Store, error) {
	db, err := sqlite.Open(dbPath)
	if err != nil {
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func initSchema(db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    user_id INTEGER NOT NULL,
    status TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS messages (
    id TEXT PRIMARY KEY,
    session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
    role TEXT NOT NULL,
    content TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL,
    seq INTEGER NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(session_id, seq)
);

CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id);
CREATE INDEX IF NOT EXISTS idx_messages_session_seq ON messages(session_id, seq);
`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

func (s *Store) CreateSession(ctx context.Context, session models.SessionRecord) error {
	if strings.TrimSpace(session.ID) == "" {
		return fmt.Errorf("session id is required")
	}
	if session.Status == "" {
		session.Status = StatusStreaming
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO sessions (id, user_id, status)
VALUES (?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    status=excluded.status,
    updated_at=CURRENT_TIMESTAMP
`, session.ID, session.UserID, session.Status)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *Store) InsertMessage(ctx context.Context, msg models.MessageRecord) error {
	if msg.Status == "" {
		msg.Status = StatusStreaming
	}
	if msg.Seq <= 0 {
		return fmt.Errorf("message seq must be positive")
	}
	if strings.TrimSpace(msg.Role) == "" {
		return fmt.Errorf("message role is required")
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO messages (id, session_id, role, content, status, seq)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO NOTHING
`, msg.ID, msg.SessionID, msg.Role, msg.Content, msg.Status, msg.Seq)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

func (s *Store) AppendMessageContent(ctx context.Context, msgID string, delta string) error {
	if strings.TrimSpace(msgID) == "" || delta == "" {
		return nil
	}
	res, err := s.db.ExecContext(ctx, `
UPDATE messages
SET content = content || ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`, delta, msgID)
	if err != nil {
		return fmt.Errorf("append message content: %w", err)
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return fmt.Errorf("append message content: message %s not found", msgID)
	}
	return nil
}

func (s *Store) MarkMessageStatus(ctx context.Context, msgID, status string) error {
	if strings.TrimSpace(msgID) == "" {
		return nil
	}
	if status == "" {
		status = StatusDone
	}
	_, err := s.db.ExecContext(ctx, `
UPDATE messages
SET status = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`, status, msgID)
	if err != nil {
		return fmt.Errorf("update message status: %w", err)
	}
	return nil
}

func (s *Store) UpdateSessionStatus(ctx context.Context, sessionID, status string) error {
	if strings.TrimSpace(sessionID) == "" || strings.TrimSpace(status) == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
UPDATE sessions
SET status = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`, status, sessionID)
	if err != nil {
		return fmt.Errorf("update session status: %w", err)
	}
	return nil
}

// FinalizeOpenMessages moves every still streaming message of a session to status.
func (s *Store) FinalizeOpenMessages(ctx context.Context, sessionID, status string) error {
	if status == "" {
		status = StatusDone
	}
	_, err := s.db.ExecContext(ctx, `
UPDATE messages
SET status = ?, updated_at = CURRENT_TIMESTAMP
WHERE session_id = ? AND status = ?
`, status, sessionID, StatusStreaming)
	if err != nil {
		return fmt.Errorf("finalize messages: %w", err)
	}
	return nil
}

// ListSessions pages sessions newest first by rowid. A zero cursor starts at
// the newest session.
func (s *Store) ListSessions(ctx context.Context, params models.HistoryParams) (*models.SessionPage, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT rowid, id, user_id, status, created_at, updated_at
FROM sessions
WHERE (? = 0 OR rowid < ?)
ORDER BY rowid DESC
LIMIT ?
`, params.Cursor, params.Cursor, limit+1)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	page := &models.SessionPage{Sessions: []models.SessionRecord{}}
	var rowIDs []int64
	for rows.Next() {
		var (
			rowID int64
			rec   models.SessionRecord
		)
		if err := rows.Scan(&rowID, &rec.ID, &rec.UserID, &rec.Status, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		rowIDs = append(rowIDs, rowID)
		page.Sessions = append(page.Sessions, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions rows: %w", err)
	}
	if len(page.Sessions) > limit {
		page.Sessions = page.Sessions[:limit]
		page.NextCursor = rowIDs[limit-1]
	}
	return page, nil
}

// GetSession returns nil when the session does not exist.
func (s *Store) GetSession(ctx context.Context, sessionID string) (*models.SessionRecord, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("session id is required")
	}
	row := s.db.QueryRowContext(ctx, `
SELECT id, user_id, status, created_at, updated_at
FROM sessions
WHERE id = ?
LIMIT 1
`, sessionID)

	var rec models.SessionRecord
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.Status, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &rec, nil
}

func (s *Store) ListMessages(ctx context.Context, sessionID string) ([]models.MessageRecord, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, fmt.Errorf("session id is required")
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, session_id, role, content, status, seq, created_at
FROM messages
WHERE session_id = ?
ORDER BY seq ASC
`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var msgs []models.MessageRecord
	for rows.Next() {
		var rec models.MessageRecord
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.Role, &rec.Content, &rec.Status, &rec.Seq, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list messages rows: %w", err)
	}
	return msgs, nil
}
