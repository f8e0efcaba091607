package services

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"authpanel/internal/models"
)

const (
	// SessionMaxAge bounds the absolute lifetime of a claim.
	SessionMaxAge = 30 * 24 * time.Hour
	// SessionUpdateAge is the sliding-refresh threshold: a claim older than
	// this (but not expired) is re-signed with a fresh issued-at.
	SessionUpdateAge = 24 * time.Hour

	// DefaultRedirectPath is where post-auth redirects land when the
	// requested target cannot be trusted.
	DefaultRedirectPath = "/dashboard"

	baseCookieName = "session_token"
	expiryLeeway   = 2 * time.Minute
)

var ErrInvalidSession = errors.New("invalid or expired session")

// SessionClaims is the signed payload identifying an authenticated user.
// Claims are immutable: Refresh returns a new value, never mutates.
type SessionClaims struct {
	UserID  int64  `json:"uid"`
	Name    string `json:"name,omitempty"`
	Email   string `json:"email"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

func (c *SessionClaims) Identity() *models.Identity {
	return &models.Identity{
		ID:    c.UserID,
		Email: c.Email,
		Name:  c.Name,
		Image: c.Picture,
	}
}

type SessionService interface {
	Issue(id *models.Identity) (string, *SessionClaims, error)
	// Refresh re-signs claims past the update age. Returns ("", nil, false)
	// when the claim is still fresh or already expired.
	Refresh(claims *SessionClaims) (string, *SessionClaims, bool)
	Validate(token string) (*SessionClaims, error)

	CookieName() string
	SetCookie(c *gin.Context, token string)
	ClearCookie(c *gin.Context)
	TokenFromRequest(r *http.Request) (string, bool)

	// SafeRedirect resolves a post-auth redirect target against the
	// application origin and refuses to point anywhere else.
	SafeRedirect(target string) string
}

type sessionService struct {
	secret  []byte
	baseURL *url.URL
	secure  bool
	now     func() time.Time
}

func NewSessionService(secret, baseURL string, secureCookies bool) (SessionService, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("session secret is required")
	}
	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, errors.New("base_url must be an absolute URL")
	}
	return &sessionService{
		secret:  []byte(secret),
		baseURL: base,
		secure:  secureCookies,
		now:     time.Now,
	}, nil
}

func (s *sessionService) Issue(id *models.Identity) (string, *SessionClaims, error) {
	now := s.now()
	claims := &SessionClaims{
		UserID:  id.ID,
		Name:    id.Name,
		Email:   id.Email,
		Picture: id.Image,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionMaxAge)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, err
	}
	return token, claims, nil
}

func (s *sessionService) Refresh(claims *SessionClaims) (string, *SessionClaims, bool) {
	if claims.IssuedAt == nil || claims.ExpiresAt == nil {
		return "", nil, false
	}
	now := s.now()
	if now.Sub(claims.IssuedAt.Time) < SessionUpdateAge || !now.Before(claims.ExpiresAt.Time) {
		return "", nil, false
	}
	token, next, err := s.Issue(claims.Identity())
	if err != nil {
		return "", nil, false
	}
	return token, next, true
}

func (s *sessionService) Validate(tokenStr string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		// accept only HMAC; an attacker-chosen alg never reaches the key
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidSession
	}
	if claims.ExpiresAt == nil || claims.ExpiresAt.Time.Before(s.now().Add(-expiryLeeway)) {
		return nil, ErrInvalidSession
	}
	return claims, nil
}

func (s *sessionService) CookieName() string {
	if s.secure {
		return "__Secure-" + baseCookieName
	}
	return baseCookieName
}

func (s *sessionService) SetCookie(c *gin.Context, token string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     s.CookieName(),
		Value:    token,
		Path:     "/",
		MaxAge:   int(SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *sessionService) ClearCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     s.CookieName(),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *sessionService) TokenFromRequest(r *http.Request) (string, bool) {
	ck, err := r.Cookie(s.CookieName())
	if err != nil || ck.Value == "" {
		return "", false
	}
	return ck.Value, true
}

func (s *sessionService) SafeRedirect(target string) string {
	fallback := s.baseURL.JoinPath(DefaultRedirectPath).String()
	target = strings.TrimSpace(target)
	if target == "" {
		return fallback
	}
	// relative path: resolve against our own origin ("//host" is not relative)
	if strings.HasPrefix(target, "/") && !strings.HasPrefix(target, "//") {
		u := *s.baseURL
		parsed, err := url.Parse(target)
		if err != nil {
			return fallback
		}
		u.Path = parsed.Path
		u.RawQuery = parsed.RawQuery
		return u.String()
	}
	parsed, err := url.Parse(target)
	if err != nil {
		return fallback
	}
	if parsed.Scheme == s.baseURL.Scheme && parsed.Host == s.baseURL.Host {
		return target
	}
	return fallback
}
