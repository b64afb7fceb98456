package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mixelka/stashbot/pkg/models"
)

// StoreCredential upserts a credential by (user, label).
// Returns false when the same username and password are already stored under that label.
func (db *DB) StoreCredential(ctx context.Context, userID int64, sourceID, label, username, password string) (bool, error) {
	if err := validateCredential(label, username, password); err != nil {
		return false, err
	}

	query := `
		INSERT INTO user_credentials (user_id, label, username, password, source_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, label) DO UPDATE SET
			username = excluded.username,
			password = excluded.password,
			source_id = excluded.source_id,
			updated_at = excluded.updated_at
		WHERE username != excluded.username OR password != excluded.password
	`
	now := db.now()
	result, err := db.ExecContext(ctx, query, userID, label, username, password, nullString(sourceID), now, now)
	if err != nil {
		return false, fmt.Errorf("failed to store credential: %w", err)
	}
	return inserted(result)
}

// GetCredential returns the credential stored under label (case-insensitive)
func (db *DB) GetCredential(ctx context.Context, userID int64, label string) (*models.Credential, error) {
	var cred models.Credential
	query := `SELECT * FROM user_credentials WHERE user_id = ? AND label = ?`
	err := db.GetContext(ctx, &cred, query, userID, label)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get credential: %w", err)
	}
	return &cred, nil
}

// GetAllCredentials returns all credentials of a user, most recently updated first
func (db *DB) GetAllCredentials(ctx context.Context, userID int64) ([]*models.Credential, error) {
	var creds []*models.Credential
	query := `SELECT * FROM user_credentials WHERE user_id = ? ORDER BY updated_at DESC, id DESC`
	err := db.SelectContext(ctx, &creds, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get credentials: %w", err)
	}
	return creds, nil
}

// StorePassword upserts a standalone password by (user, label).
// Returns false when the same password is already stored under that label.
func (db *DB) StorePassword(ctx context.Context, userID int64, sourceID, label, password string) (bool, error) {
	if err := validatePassword(label, password); err != nil {
		return false, err
	}

	query := `
		INSERT INTO user_passwords (user_id, label, password, source_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, label) DO UPDATE SET
			password = excluded.password,
			source_id = excluded.source_id,
			updated_at = excluded.updated_at
		WHERE password != excluded.password
	`
	now := db.now()
	result, err := db.ExecContext(ctx, query, userID, label, password, nullString(sourceID), now, now)
	if err != nil {
		return false, fmt.Errorf("failed to store password: %w", err)
	}
	return inserted(result)
}

// GetPassword returns the password stored under label (case-insensitive)
func (db *DB) GetPassword(ctx context.Context, userID int64, label string) (*models.Password, error) {
	var pw models.Password
	query := `SELECT * FROM user_passwords WHERE user_id = ? AND label = ?`
	err := db.GetContext(ctx, &pw, query, userID, label)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get password: %w", err)
	}
	return &pw, nil
}

// GetAllPasswords returns all standalone passwords of a user, most recently updated first
func (db *DB) GetAllPasswords(ctx context.Context, userID int64) ([]*models.Password, error) {
	var pws []*models.Password
	query := `SELECT * FROM user_passwords WHERE user_id = ? ORDER BY updated_at DESC, id DESC`
	err := db.SelectContext(ctx, &pws, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get passwords: %w", err)
	}
	return pws, nil
}
