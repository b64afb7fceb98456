package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mixelka/stashbot/pkg/models"
)

// CreateMessage appends a raw message to the audit log and fills its ID and CreatedAt
func (db *DB) CreateMessage(ctx context.Context, msg *models.RawMessage) error {
	if msg.Type == "" {
		msg.Type = models.MessageText
	}

	query := `
		INSERT INTO user_messages (id, user_id, content, message_type, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	id := uuid.NewString()
	now := db.now()
	_, err := db.ExecContext(ctx, query, id, msg.UserID, msg.Content, msg.Type, now)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}

	msg.ID = id
	msg.CreatedAt = now
	return nil
}

// GetRecentMessages returns up to limit raw messages, newest first
func (db *DB) GetRecentMessages(ctx context.Context, userID int64, limit int) ([]*models.RawMessage, error) {
	var msgs []*models.RawMessage
	query := `
		SELECT id, user_id, content, message_type, created_at FROM user_messages
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`
	err := db.SelectContext(ctx, &msgs, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent messages: %w", err)
	}
	return msgs, nil
}

// SearchMessages returns up to limit raw messages containing term (case-insensitive), newest first
func (db *DB) SearchMessages(ctx context.Context, userID int64, term string, limit int) ([]*models.RawMessage, error) {
	var msgs []*models.RawMessage
	query := `
		SELECT id, user_id, content, message_type, created_at FROM user_messages
		WHERE user_id = ? AND content LIKE ? ESCAPE '\'
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`
	err := db.SelectContext(ctx, &msgs, query, userID, "%"+escapeLike(term)+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search messages: %w", err)
	}
	return msgs, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
