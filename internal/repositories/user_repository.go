package repositories

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/lib/pq"

	"authpanel/internal/models"
)

type UserRepository interface {
	Create(user *models.User) error
	GetByID(id int64) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	EmailExists(email string) (bool, error)
	UpdatePassword(userID int64, hash string) error
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

// IsUniqueViolation reports whether err is the unique-index rejection from
// Postgres. Registration relies on the index rather than a racy
// check-then-insert.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

func (r *userRepository) Create(user *models.User) error {
	const q = `
		INSERT INTO users (email, name, image, password_hash)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	var hash sql.NullString
	if user.PasswordHash != "" {
		hash = sql.NullString{String: user.PasswordHash, Valid: true}
	}
	return r.DB.QueryRow(q,
		strings.ToLower(strings.TrimSpace(user.Email)),
		user.Name,
		user.Image,
		hash,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) GetByID(id int64) (*models.User, error) {
	const q = `
		SELECT id, email, name, COALESCE(image,''), password_hash,
		       email_verified_at, created_at, updated_at
		FROM users
		WHERE id = $1
	`
	return r.scanOne(r.DB.QueryRow(q, id))
}

// GetByEmail matches the address case-insensitively; stored emails are
// lowercased on insert but older rows may not be.
func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	const q = `
		SELECT id, email, name, COALESCE(image,''), password_hash,
		       email_verified_at, created_at, updated_at
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`
	return r.scanOne(r.DB.QueryRow(q, strings.TrimSpace(email)))
}

func (r *userRepository) EmailExists(email string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`
	var exists bool
	err := r.DB.QueryRow(q, strings.TrimSpace(email)).Scan(&exists)
	return exists, err
}

func (r *userRepository) UpdatePassword(userID int64, hash string) error {
	const q = `
		UPDATE users
		SET password_hash = $1, updated_at = NOW()
		WHERE id = $2
	`
	_, err := r.DB.Exec(q, hash, userID)
	return err
}

func (r *userRepository) scanOne(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	var (
		hash       sql.NullString
		verifiedAt sql.NullTime
	)
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.Image, &hash,
		&verifiedAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if hash.Valid {
		u.PasswordHash = hash.String
	}
	if verifiedAt.Valid {
		t := verifiedAt.Time
		u.EmailVerifiedAt = &t
	}
	return u, nil
}
