package repositories

import (
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockResetRepo(t *testing.T) (PasswordResetRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPasswordResetRepository(db), mock
}

func TestResetUpsert(t *testing.T) {
	repo, mock := newMockResetRepo(t)
	expires := time.Now().Add(10 * time.Minute)

	mock.ExpectQuery("INSERT INTO password_reset_tokens").
		WithArgs(int64(3), "a@b.com", "tokenhash", "123456", expires).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(1, time.Now()))

	pr, err := repo.Upsert(3, "a@b.com", "tokenhash", "123456", expires)
	require.NoError(t, err)
	assert.Equal(t, int64(1), pr.ID)
	assert.Equal(t, "123456", pr.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResetConsumeCommitsAllThreeSteps(t *testing.T) {
	repo, mock := newMockResetRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, user_id").
		WithArgs("a@b.com", "123456").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id"}).AddRow(int64(5), int64(3)))
	mock.ExpectExec("UPDATE users SET password_hash").
		WithArgs("newhash", int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM password_reset_tokens").
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Consume("a@b.com", "123456", "newhash"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestResetConsumeRollsBackWhenNoChallenge(t *testing.T) {
	repo, mock := newMockResetRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, user_id").
		WithArgs("a@b.com", "000000").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.Consume("a@b.com", "000000", "newhash")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
