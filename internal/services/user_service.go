package services

import (
	"database/sql"
	"errors"
	"log"
	"regexp"
	"strings"
	"unicode"

	"authpanel/internal/models"
	"authpanel/internal/repositories"
)

// Registration failures, surfaced to the client with their message text.
var (
	ErrInvalidEmail        = errors.New("Invalid email address")
	ErrPasswordTooShort    = errors.New("Password must be at least 12 characters")
	ErrPasswordTooWeak     = errors.New("Password must contain at least one uppercase letter, one lowercase letter, one number, and one special character")
	ErrPasswordsDoNotMatch = errors.New("Passwords do not match")
	ErrEmailTaken          = errors.New("User with this email already exists")
)

const minPasswordLength = 12

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type UserService interface {
	Register(req *models.RegisterRequest) (*models.User, error)
	// ProvisionOAuth finds or creates the account behind an external
	// identity. Created accounts have no password hash.
	ProvisionOAuth(email, name, image, provider, providerAccountID string) (*models.User, error)
	EmailExists(email string) (bool, error)
	GetByID(id int64) (*models.User, error)
}

type userService struct {
	users repositories.UserRepository
	oauth repositories.OAuthAccountRepository
	auth  AuthService
	email EmailService
}

func NewUserService(users repositories.UserRepository, oauth repositories.OAuthAccountRepository, auth AuthService, email EmailService) UserService {
	return &userService{users: users, oauth: oauth, auth: auth, email: email}
}

func (s *userService) Register(req *models.RegisterRequest) (*models.User, error) {
	email := strings.TrimSpace(req.Email)
	if !emailPattern.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	if err := checkPasswordPolicy(req.Password); err != nil {
		return nil, err
	}
	// rechecked here even though the handler binds both fields
	if req.Password != req.ConfirmPassword {
		return nil, ErrPasswordsDoNotMatch
	}

	exists, err := s.users.EmailExists(email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        strings.ToLower(email),
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: hash,
	}
	if err := s.users.Create(user); err != nil {
		// the unique index closes the race left by the existence check
		if repositories.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	if s.email != nil {
		if err := s.email.SendWelcomeEmail(user.Email, user.Name); err != nil {
			log.Printf("[user][register] welcome email to %s failed: %v", user.Email, err)
		}
	}

	user.PasswordHash = ""
	return user, nil
}

func (s *userService) ProvisionOAuth(email, name, image, provider, providerAccountID string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) {
		return nil, ErrInvalidEmail
	}

	user, err := s.users.GetByEmail(email)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		user = &models.User{Email: email, Name: name, Image: image}
		if err := s.users.Create(user); err != nil {
			if !repositories.IsUniqueViolation(err) {
				return nil, err
			}
			// lost the race to a concurrent first sign-in
			if user, err = s.users.GetByEmail(email); err != nil {
				return nil, err
			}
		}
	}

	if _, err := s.oauth.Link(user.ID, provider, providerAccountID); err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *userService) EmailExists(email string) (bool, error) {
	return s.users.EmailExists(strings.TrimSpace(email))
}

func (s *userService) GetByID(id int64) (*models.User, error) {
	user, err := s.users.GetByID(id)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	return user, nil
}

func checkPasswordPolicy(password string) error {
	if len(password) < minPasswordLength {
		return ErrPasswordTooShort
	}
	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	if !upper || !lower || !digit || !symbol {
		return ErrPasswordTooWeak
	}
	return nil
}
