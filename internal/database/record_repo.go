package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/mixelka/stashbot/pkg/models"
)

// StoreEmail saves an address once per user; returns false if it is already known
func (db *DB) StoreEmail(ctx context.Context, userID int64, sourceID, address, label string) (bool, error) {
	if err := validateEmail(address, label); err != nil {
		return false, err
	}

	query := `
		INSERT OR IGNORE INTO user_emails (user_id, email, label, source_id, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := db.ExecContext(ctx, query, userID, address, nullString(label), nullString(sourceID), db.now())
	if err != nil {
		return false, fmt.Errorf("failed to store email: %w", err)
	}
	return inserted(result)
}

// GetEmails returns saved addresses, newest first
func (db *DB) GetEmails(ctx context.Context, userID int64) ([]*models.Email, error) {
	var emails []*models.Email
	query := `SELECT * FROM user_emails WHERE user_id = ? ORDER BY created_at DESC, id DESC`
	err := db.SelectContext(ctx, &emails, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get emails: %w", err)
	}
	return emails, nil
}

// StoreLink saves a URL once per user; returns false if it is already known
func (db *DB) StoreLink(ctx context.Context, userID int64, sourceID, url string, linkType models.LinkType) (bool, error) {
	if err := validateURL(url); err != nil {
		return false, err
	}

	query := `
		INSERT OR IGNORE INTO user_links (user_id, url, link_type, source_id, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	result, err := db.ExecContext(ctx, query, userID, url, nullString(string(linkType)), nullString(sourceID), db.now())
	if err != nil {
		return false, fmt.Errorf("failed to store link: %w", err)
	}
	return inserted(result)
}

// GetLinks returns saved links, newest first
func (db *DB) GetLinks(ctx context.Context, userID int64) ([]*models.Link, error) {
	var links []*models.Link
	query := `SELECT * FROM user_links WHERE user_id = ? ORDER BY created_at DESC, id DESC`
	err := db.SelectContext(ctx, &links, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get links: %w", err)
	}
	return links, nil
}

// StoreNote appends a note unless the same text was stored within the note window.
// The check and the insert are one statement, so concurrent duplicates cannot both land.
func (db *DB) StoreNote(ctx context.Context, userID int64, sourceID, text string) (bool, error) {
	if strings.TrimSpace(text) == "" {
		return false, invalid("note", "empty")
	}

	query := `
		INSERT INTO user_notes (user_id, note, source_id, created_at)
		SELECT ?, ?, ?, ?
		WHERE NOT EXISTS (
			SELECT 1 FROM user_notes WHERE user_id = ? AND note = ? AND created_at > ?
		)
	`
	now := db.now()
	cutoff := now.Add(-db.noteWindow)
	result, err := db.ExecContext(ctx, query, userID, text, nullString(sourceID), now, userID, text, cutoff)
	if err != nil {
		return false, fmt.Errorf("failed to store note: %w", err)
	}
	return inserted(result)
}

// GetNotes returns up to limit notes, newest first; limit <= 0 returns all
func (db *DB) GetNotes(ctx context.Context, userID int64, limit int) ([]*models.Note, error) {
	if limit <= 0 {
		limit = -1
	}
	var notes []*models.Note
	query := `SELECT * FROM user_notes WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`
	err := db.SelectContext(ctx, &notes, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get notes: %w", err)
	}
	return notes, nil
}
