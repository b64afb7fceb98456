package models

import (
	"database/sql"
	"time"
)

// MessageType tag of a raw message in the audit log
type MessageType string

const (
	MessageText     MessageType = "text"
	MessageImageOCR MessageType = "image_ocr"
	MessageDocument MessageType = "document"
	MessageError    MessageType = "error"
)

// RawMessage is the unmodified input of a user, never mutated
type RawMessage struct {
	ID        string      `db:"id"` // UUID
	UserID    int64       `db:"user_id"`
	Content   string      `db:"content"`
	Type      MessageType `db:"message_type"`
	CreatedAt time.Time   `db:"created_at"`
}

// Credential stored username/password pair, unique per (user, label)
type Credential struct {
	ID        int64          `db:"id"`
	UserID    int64          `db:"user_id"`
	Label     string         `db:"label"`
	Username  string         `db:"username"`
	Password  string         `db:"password"`
	SourceID  sql.NullString `db:"source_id"` // RawMessage.ID the credential came from
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

// Password stored standalone password, unique per (user, label)
type Password struct {
	ID        int64          `db:"id"`
	UserID    int64          `db:"user_id"`
	Label     string         `db:"label"`
	Password  string         `db:"password"`
	SourceID  sql.NullString `db:"source_id"`
	CreatedAt time.Time      `db:"created_at"`
	UpdatedAt time.Time      `db:"updated_at"`
}

// Email stored address, unique per (user, address)
type Email struct {
	ID        int64          `db:"id"`
	UserID    int64          `db:"user_id"`
	Email     string         `db:"email"`
	Label     sql.NullString `db:"label"`
	SourceID  sql.NullString `db:"source_id"`
	CreatedAt time.Time      `db:"created_at"`
}

// Link stored URL, unique per (user, url)
type Link struct {
	ID        int64          `db:"id"`
	UserID    int64          `db:"user_id"`
	URL       string         `db:"url"`
	LinkType  sql.NullString `db:"link_type"`
	SourceID  sql.NullString `db:"source_id"`
	CreatedAt time.Time      `db:"created_at"`
}

// Note free text, append-only
type Note struct {
	ID        int64          `db:"id"`
	UserID    int64          `db:"user_id"`
	Note      string         `db:"note"`
	SourceID  sql.NullString `db:"source_id"`
	CreatedAt time.Time      `db:"created_at"`
}

// CategoryCounts number of stored records per category for one user
type CategoryCounts struct {
	Passwords     int `db:"passwords"`
	Credentials   int `db:"credentials"`
	Notes         int `db:"notes"`
	Emails        int `db:"emails"`
	Links         int `db:"links"`
	TotalMessages int `db:"total_messages"`
}

// Total sum of all categorized records (raw messages excluded)
func (c CategoryCounts) Total() int {
	return c.Passwords + c.Credentials + c.Notes + c.Emails + c.Links
}
