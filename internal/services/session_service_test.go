package services

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authpanel/internal/models"
)

func newTestSessionService(t *testing.T, secure bool) *sessionService {
	t.Helper()
	base, err := url.Parse("http://localhost:8080")
	require.NoError(t, err)
	return &sessionService{
		secret:  []byte("test-secret"),
		baseURL: base,
		secure:  secure,
		now:     time.Now,
	}
}

func testIdentity() *models.Identity {
	return &models.Identity{ID: 7, Email: "a@b.com", Name: "A", Image: "http://localhost:8080/a.png"}
}

func TestIssueValidateRoundTrip(t *testing.T) {
	svc := newTestSessionService(t, false)

	token, claims, err := svc.Issue(testIdentity())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	got, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.UserID)
	assert.Equal(t, "a@b.com", got.Email)
	assert.Equal(t, "A", got.Name)
	assert.Equal(t, claims.IssuedAt.Unix(), got.IssuedAt.Unix())
	assert.WithinDuration(t, claims.IssuedAt.Time.Add(SessionMaxAge), got.ExpiresAt.Time, time.Second)
}

func TestValidateRejectsExpired(t *testing.T) {
	svc := newTestSessionService(t, false)
	issuedAt := time.Now().Add(-SessionMaxAge - time.Hour)
	svc.now = func() time.Time { return issuedAt }

	token, _, err := svc.Issue(testIdentity())
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestValidateRejectsWrongKey(t *testing.T) {
	svc := newTestSessionService(t, false)
	token, _, err := svc.Issue(testIdentity())
	require.NoError(t, err)

	other := newTestSessionService(t, false)
	other.secret = []byte("another-secret")
	_, err = other.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestValidateRejectsGarbage(t *testing.T) {
	svc := newTestSessionService(t, false)
	_, err := svc.Validate("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestRefreshBeforeUpdateAgeIsNoop(t *testing.T) {
	svc := newTestSessionService(t, false)
	_, claims, err := svc.Issue(testIdentity())
	require.NoError(t, err)

	token, next, refreshed := svc.Refresh(claims)
	assert.False(t, refreshed)
	assert.Empty(t, token)
	assert.Nil(t, next)
}

func TestRefreshSlidesTheWindow(t *testing.T) {
	svc := newTestSessionService(t, false)
	start := time.Now()
	svc.now = func() time.Time { return start }

	_, claims, err := svc.Issue(testIdentity())
	require.NoError(t, err)

	later := start.Add(SessionUpdateAge)
	svc.now = func() time.Time { return later }

	token, next, refreshed := svc.Refresh(claims)
	require.True(t, refreshed)
	require.NotEmpty(t, token)
	assert.Equal(t, claims.UserID, next.UserID)
	assert.Equal(t, claims.Email, next.Email)
	assert.Equal(t, claims.Name, next.Name)
	assert.Equal(t, later.Unix(), next.IssuedAt.Unix())
	assert.Equal(t, later.Add(SessionMaxAge).Unix(), next.ExpiresAt.Unix())
	// original claim untouched
	assert.Equal(t, start.Unix(), claims.IssuedAt.Unix())
}

func TestRefreshSkipsExpiredClaims(t *testing.T) {
	svc := newTestSessionService(t, false)
	start := time.Now()
	svc.now = func() time.Time { return start }

	_, claims, err := svc.Issue(testIdentity())
	require.NoError(t, err)

	svc.now = func() time.Time { return start.Add(SessionMaxAge + time.Minute) }
	_, _, refreshed := svc.Refresh(claims)
	assert.False(t, refreshed)
}

func TestCookieNameSecurePrefix(t *testing.T) {
	assert.Equal(t, "session_token", newTestSessionService(t, false).CookieName())
	assert.Equal(t, "__Secure-session_token", newTestSessionService(t, true).CookieName())
}

func TestSetCookieAttributes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := newTestSessionService(t, true)

	rr := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rr)
	svc.SetCookie(c, "tok")

	res := rr.Result()
	cookies := res.Cookies()
	require.Len(t, cookies, 1)
	ck := cookies[0]
	assert.Equal(t, "__Secure-session_token", ck.Name)
	assert.Equal(t, "/", ck.Path)
	assert.True(t, ck.HttpOnly)
	assert.True(t, ck.Secure)
	assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)
	assert.Equal(t, int(SessionMaxAge.Seconds()), ck.MaxAge)
}

func TestSafeRedirect(t *testing.T) {
	svc := newTestSessionService(t, false)

	tests := []struct {
		target string
		want   string
	}{
		{"/dashboard", "http://localhost:8080/dashboard"},
		{"/settings?tab=profile", "http://localhost:8080/settings?tab=profile"},
		{"", "http://localhost:8080/dashboard"},
		{"http://localhost:8080/reports", "http://localhost:8080/reports"},
		{"https://evil.example/x", "http://localhost:8080/dashboard"},
		{"//evil.example/x", "http://localhost:8080/dashboard"},
		{"https://localhost:8080/x", "http://localhost:8080/dashboard"}, // scheme mismatch
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, svc.SafeRedirect(tt.target), "target %q", tt.target)
	}
}
