package models

import "time"

type SessionRecord struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type MessageRecord struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Status    string    `json:"status"`
	Seq       int       `json:"seq"`
	CreatedAt time.Time `json:"created_at"`
}

// HistoryParams describes a bookmark-paged listing request.
type HistoryParams struct {
	Cursor int64 `json:"cursor"`
	Limit  int   `json:"limit"`
}

// SessionPage is one page of sessions, newest first. NextCursor is zero on
// the last page.
type SessionPage struct {
	Sessions   []SessionRecord `json:"sessions"`
	NextCursor int64           `json:"next_cursor"`
}
