package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"authpanel/internal/services"
)

// ClaimsKey is where the gate stores the validated session claims on the
// request context.
const ClaimsKey = "session_claims"

// auth entry pages: reachable without a session, but a signed-in user is
// bounced to the dashboard instead of re-authenticating
var authPages = map[string]bool{
	"/login":    true,
	"/register": true,
}

var publicPrefixes = []string{
	"/api/auth/",
	"/api/register",
	"/api/password/",
	"/static/",
	"/swagger",
	"/healthz",
	"/forgot-password",
}

var publicExtensions = []string{".svg", ".png", ".jpg", ".jpeg", ".gif", ".webp", ".ico", ".css", ".js"}

func isPublicPath(path string) bool {
	if path == "/favicon.ico" || path == "/api/auth" {
		return true
	}
	for _, p := range publicPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	for _, ext := range publicExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// SessionGate classifies every request as public or protected and resolves
// missing/invalid sessions to a 401 body (API) or a login redirect (pages).
// It never fails the request any other way.
func SessionGate(sessions services.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		// preflight never carries cookies worth checking
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		path := c.Request.URL.Path

		// signed-in user on an auth entry page goes to the dashboard
		if authPages[path] {
			if validatedClaims(c, sessions) != nil {
				c.Redirect(http.StatusFound, services.DefaultRedirectPath)
				c.Abort()
				return
			}
			c.Next()
			return
		}

		if isPublicPath(path) {
			c.Next()
			return
		}

		claims := validatedClaims(c, sessions)

		if strings.HasPrefix(path, "/api/") {
			// API clients get a status code, never an HTML redirect
			if claims == nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
				return
			}
			c.Set(ClaimsKey, claims)
			c.Next()
			return
		}

		if claims == nil {
			loginURL := "/login?callbackUrl=" + url.QueryEscape(path)
			c.Redirect(http.StatusFound, loginURL)
			c.Abort()
			return
		}
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// validatedClaims reads and validates the session cookie, applying the
// sliding refresh: a claim past the update age is re-signed and the new
// token replaces the cookie.
func validatedClaims(c *gin.Context, sessions services.SessionService) *services.SessionClaims {
	tokenStr, ok := sessions.TokenFromRequest(c.Request)
	if !ok {
		return nil
	}
	claims, err := sessions.Validate(tokenStr)
	if err != nil {
		return nil
	}
	if token, next, refreshed := sessions.Refresh(claims); refreshed {
		sessions.SetCookie(c, token)
		claims = next
	}
	return claims
}

// SessionClaims returns the claims the gate attached to the request, if any.
func SessionClaims(c *gin.Context) (*services.SessionClaims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*services.SessionClaims)
	return claims, ok
}
