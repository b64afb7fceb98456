package database

import (
	"context"
	"fmt"

	"github.com/mixelka/stashbot/pkg/models"
)

// CategoryCounts returns the number of stored records per category
func (db *DB) CategoryCounts(ctx context.Context, userID int64) (*models.CategoryCounts, error) {
	var counts models.CategoryCounts
	query := `
		SELECT
			(SELECT COUNT(*) FROM user_passwords WHERE user_id = ?) AS passwords,
			(SELECT COUNT(*) FROM user_credentials WHERE user_id = ?) AS credentials,
			(SELECT COUNT(*) FROM user_notes WHERE user_id = ?) AS notes,
			(SELECT COUNT(*) FROM user_emails WHERE user_id = ?) AS emails,
			(SELECT COUNT(*) FROM user_links WHERE user_id = ?) AS links,
			(SELECT COUNT(*) FROM user_messages WHERE user_id = ?) AS total_messages
	`
	err := db.GetContext(ctx, &counts, query, userID, userID, userID, userID, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}
	return &counts, nil
}

// userTables in delete order: records before the messages they point to
var userTables = []string{
	"user_credentials",
	"user_passwords",
	"user_emails",
	"user_links",
	"user_notes",
	"user_messages",
}

// ClearUserData deletes every record and raw message of a user, returning the number of rows removed
func (db *DB) ClearUserData(ctx context.Context, userID int64) (int64, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var total int64
	for _, table := range userTables {
		result, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE user_id = ?", userID)
		if err != nil {
			return 0, fmt.Errorf("failed to clear %s: %w", table, err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to get rows affected: %w", err)
		}
		total += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return total, nil
}
