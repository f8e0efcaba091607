package repositories

import (
	"database/sql"
	"time"

	"authpanel/internal/models"
)

type PasswordResetRepository interface {
	// Upsert keeps at most one live challenge per email: a new request
	// replaces any unconsumed one.
	Upsert(userID int64, email, tokenHash, code string, expiresAt time.Time) (*models.PasswordReset, error)
	// Consume finds the unexpired challenge matching email+code, updates the
	// account's password hash and deletes the challenge in one transaction.
	// Returns sql.ErrNoRows when no live challenge matches.
	Consume(email, code, newPasswordHash string) error
}

type passwordResetRepository struct {
	DB *sql.DB
}

func NewPasswordResetRepository(db *sql.DB) PasswordResetRepository {
	return &passwordResetRepository{DB: db}
}

func (r *passwordResetRepository) Upsert(userID int64, email, tokenHash, code string, expiresAt time.Time) (*models.PasswordReset, error) {
	const q = `
		INSERT INTO password_reset_tokens (user_id, email, token_hash, code, expires_at)
		VALUES ($1, LOWER($2), $3, $4, $5)
		ON CONFLICT (email) DO UPDATE
		SET user_id = EXCLUDED.user_id,
		    token_hash = EXCLUDED.token_hash,
		    code = EXCLUDED.code,
		    expires_at = EXCLUDED.expires_at,
		    created_at = NOW()
		RETURNING id, created_at
	`
	pr := &models.PasswordReset{
		UserID:    userID,
		Email:     email,
		TokenHash: tokenHash,
		Code:      code,
		ExpiresAt: expiresAt,
	}
	if err := r.DB.QueryRow(q, userID, email, tokenHash, code, expiresAt).Scan(&pr.ID, &pr.CreatedAt); err != nil {
		return nil, err
	}
	return pr, nil
}

func (r *passwordResetRepository) Consume(email, code, newPasswordHash string) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const sel = `
		SELECT id, user_id
		FROM password_reset_tokens
		WHERE email = LOWER($1) AND code = $2 AND expires_at > NOW()
		FOR UPDATE
	`
	var id, userID int64
	if err := tx.QueryRow(sel, email, code).Scan(&id, &userID); err != nil {
		return err
	}

	const upd = `
		UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2
	`
	if _, err := tx.Exec(upd, newPasswordHash, userID); err != nil {
		return err
	}

	const del = `DELETE FROM password_reset_tokens WHERE id = $1`
	if _, err := tx.Exec(del, id); err != nil {
		return err
	}
	return tx.Commit()
}
