package services

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"authpanel/internal/models"
)

type stubUserRepo struct {
	byEmail          map[string]*models.User
	created          []*models.User
	createErr        error
	updatedPasswords map[int64]string
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		byEmail:          map[string]*models.User{},
		updatedPasswords: map[int64]string{},
	}
}

func (r *stubUserRepo) Create(user *models.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	user.ID = int64(len(r.created) + 1)
	r.created = append(r.created, user)
	r.byEmail[user.Email] = user
	return nil
}

func (r *stubUserRepo) GetByID(id int64) (*models.User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *stubUserRepo) GetByEmail(email string) (*models.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *u
	return &cp, nil
}

func (r *stubUserRepo) EmailExists(email string) (bool, error) {
	_, ok := r.byEmail[email]
	return ok, nil
}

func (r *stubUserRepo) UpdatePassword(userID int64, hash string) error {
	r.updatedPasswords[userID] = hash
	return nil
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	// MinCost keeps the test fast; Verify accepts any stored bcrypt hash
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestVerifySuccess(t *testing.T) {
	repo := newStubUserRepo()
	repo.byEmail["a@b.com"] = &models.User{
		ID: 1, Email: "a@b.com", Name: "A",
		PasswordHash: mustHash(t, "Aa1!aaaaaaaa"),
	}
	svc := NewAuthService(repo)

	id, err := svc.Verify("a@b.com", "Aa1!aaaaaaaa")
	require.NoError(t, err)
	assert.Equal(t, int64(1), id.ID)
	assert.Equal(t, "a@b.com", id.Email)
}

func TestVerifyUnknownAccount(t *testing.T) {
	svc := NewAuthService(newStubUserRepo())
	_, err := svc.Verify("nobody@b.com", "whatever")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestVerifyOAuthOnlyAccount(t *testing.T) {
	repo := newStubUserRepo()
	repo.byEmail["oauth@b.com"] = &models.User{ID: 2, Email: "oauth@b.com"}
	svc := NewAuthService(repo)

	_, err := svc.Verify("oauth@b.com", "whatever")
	assert.ErrorIs(t, err, ErrNoPassword)
}

func TestVerifyWrongPassword(t *testing.T) {
	repo := newStubUserRepo()
	repo.byEmail["a@b.com"] = &models.User{
		ID: 1, Email: "a@b.com",
		PasswordHash: mustHash(t, "Aa1!aaaaaaaa"),
	}
	svc := NewAuthService(repo)

	_, err := svc.Verify("a@b.com", "Aa1!aaaaaaab")
	assert.ErrorIs(t, err, ErrPasswordMismatch)
}

func TestHashPasswordIsNotPlaintext(t *testing.T) {
	svc := NewAuthService(newStubUserRepo())
	hash, err := svc.HashPassword("Aa1!aaaaaaaa")
	require.NoError(t, err)
	assert.NotEqual(t, "Aa1!aaaaaaaa", hash)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, hashCost, cost)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("Aa1!aaaaaaaa")))
}
