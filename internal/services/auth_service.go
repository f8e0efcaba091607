package services

import (
	"database/sql"
	"errors"
	"log"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"authpanel/internal/models"
	"authpanel/internal/repositories"
)

// Typed verifier failures. Handlers must not echo these to the client
// verbatim; the login endpoint coalesces all three into one generic message
// so responses do not reveal whether an address is registered.
var (
	ErrAccountNotFound  = errors.New("no account found with this email address")
	ErrNoPassword       = errors.New("account has no password set")
	ErrPasswordMismatch = errors.New("invalid email or password")
)

const hashCost = 12

type AuthService interface {
	// Verify checks the credentials and returns the matching identity.
	// Fails with ErrAccountNotFound, ErrNoPassword or ErrPasswordMismatch.
	Verify(email, password string) (*models.Identity, error)
	HashPassword(password string) (string, error)
}

type authService struct {
	users repositories.UserRepository
}

func NewAuthService(users repositories.UserRepository) AuthService {
	return &authService{users: users}
}

func (s *authService) Verify(email, password string) (*models.Identity, error) {
	email = strings.TrimSpace(email)

	user, err := s.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	// OAuth-only account: nothing to compare against
	if strings.TrimSpace(user.PasswordHash) == "" {
		log.Printf("[auth][verify] account without password attempted credential login: userID=%d", user.ID)
		return nil, ErrNoPassword
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrPasswordMismatch
	}
	return user.Identity(), nil
}

func (s *authService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
