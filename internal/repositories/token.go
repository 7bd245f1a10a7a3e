package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/traylist/internal/models"
	"github.com/desertthunder/traylist/internal/shared"
)

// TokenRepository is the single-slot, last-write-wins cell holding the
// mirrored [models.IdentityToken].
//
// The auth bridge is the only writer; the capture popup and the drainer
// read it to gate and scope remote writes.
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new [TokenRepository] with the given database connection
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Put overwrites the stored token with tok. Each auth transition replaces
// the previous value entirely.
func (r *TokenRepository) Put(tok models.IdentityToken) error {
	if !tok.Valid() {
		return fmt.Errorf("%w: token missing subject id", shared.ErrInvalidInput)
	}

	query := `
		INSERT INTO user_auth (id, subject_id, email, display_name, access_token, captured_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			subject_id = excluded.subject_id,
			email = excluded.email,
			display_name = excluded.display_name,
			access_token = excluded.access_token,
			captured_at = excluded.captured_at
	`

	_, err := r.db.Exec(query, tok.SubjectID, tok.Email, tok.DisplayName, tok.AccessToken, tok.CapturedAt)
	if err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}

	return nil
}

// Get returns the stored token, or [shared.ErrNotAuthenticated] when the
// slot is empty or malformed.
func (r *TokenRepository) Get() (*models.IdentityToken, error) {
	query := `
		SELECT subject_id, email, display_name, access_token, captured_at
		FROM user_auth WHERE id = 1
	`

	var (
		tok        models.IdentityToken
		capturedAt time.Time
	)

	err := r.db.QueryRow(query).Scan(&tok.SubjectID, &tok.Email, &tok.DisplayName, &tok.AccessToken, &capturedAt)
	if err == sql.ErrNoRows {
		return nil, shared.ErrNotAuthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query token: %w", err)
	}

	tok.CapturedAt = capturedAt
	if !tok.Valid() {
		return nil, shared.ErrNotAuthenticated
	}

	return &tok, nil
}

// Delete clears the token slot. Deleting an already-empty slot is not an
// error; sign-out is idempotent.
func (r *TokenRepository) Delete() error {
	if _, err := r.db.Exec("DELETE FROM user_auth WHERE id = 1"); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
