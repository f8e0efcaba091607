package services

import (
	"crypto/rand"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"log"
	"math/big"
	"strings"
	"time"

	"authpanel/internal/repositories"
	"authpanel/internal/utils"
)

// ErrInvalidResetCode deliberately covers every consume failure (unknown
// email, wrong code, expired challenge) so responses do not reveal which
// step failed.
var ErrInvalidResetCode = errors.New("Invalid or expired reset code")

const resetChallengeTTL = 10 * time.Minute

type PasswordResetService interface {
	// RequestCode never reports whether the address is registered; the
	// caller must return the same generic message either way.
	RequestCode(email string) error
	Reset(email, code, password, confirmPassword string) error
}

type passwordResetService struct {
	users  repositories.UserRepository
	resets repositories.PasswordResetRepository
	emails EmailService
	auth   AuthService
}

func NewPasswordResetService(users repositories.UserRepository, resets repositories.PasswordResetRepository, emails EmailService, auth AuthService) PasswordResetService {
	return &passwordResetService{users: users, resets: resets, emails: emails, auth: auth}
}

func (s *passwordResetService) RequestCode(email string) error {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// don't leak existence; no challenge is created
			log.Printf("[password-reset][request] no account for %q", email)
			return nil
		}
		return err
	}

	code, err := newResetCode()
	if err != nil {
		return err
	}
	token, err := utils.NewToken(32)
	if err != nil {
		return err
	}
	sum := sha256.Sum256([]byte(token))
	tokenHash := hex.EncodeToString(sum[:])

	expires := time.Now().Add(resetChallengeTTL)
	if _, err := s.resets.Upsert(user.ID, email, tokenHash, code, expires); err != nil {
		return err
	}

	if s.emails != nil {
		if err := s.emails.SendResetCodeEmail(user.Email, code); err != nil {
			log.Printf("[password-reset][request] failed to send code to %s: %v", user.Email, err)
		}
	}
	return nil
}

func (s *passwordResetService) Reset(email, code, password, confirmPassword string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	code = strings.TrimSpace(code)

	if err := checkPasswordPolicy(password); err != nil {
		return err
	}
	if password != confirmPassword {
		return ErrPasswordsDoNotMatch
	}

	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.resets.Consume(email, code, hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidResetCode
		}
		return err
	}
	return nil
}

// newResetCode returns a random 6-digit code.
func newResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return big.NewInt(0).Add(n, big.NewInt(100000)).String(), nil
}
