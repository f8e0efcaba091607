package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"authpanel/internal/models"
	"authpanel/internal/services"
)

type AuthHandler struct {
	auth     services.AuthService
	users    services.UserService
	sessions services.SessionService
}

func NewAuthHandler(auth services.AuthService, users services.UserService, sessions services.SessionService) *AuthHandler {
	return &AuthHandler{auth: auth, users: users, sessions: sessions}
}

// @Summary      Sign in with email and password
// @Description  Verifies the credentials, issues a session cookie and returns a safe redirect target
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Credentials"
// @Success      200    {object}  map[string]interface{}
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Failure      500    {object}  map[string]string
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	email := strings.TrimSpace(req.Email)

	identity, err := h.auth.Verify(email, req.Password)
	if err != nil {
		// the typed reason stays in the log; the client sees one message
		// regardless, so responses don't reveal whether the email exists
		switch {
		case errors.Is(err, services.ErrAccountNotFound):
			log.Printf("[auth][login] no account for %q", email)
		case errors.Is(err, services.ErrNoPassword):
			log.Printf("[auth][login] oauth-only account for %q", email)
		case errors.Is(err, services.ErrPasswordMismatch):
			log.Printf("[auth][login] password mismatch for %q", email)
		default:
			log.Printf("[auth][login] verify failed for %q: %v", email, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	token, claims, err := h.sessions.Issue(identity)
	if err != nil {
		log.Printf("[auth][login] issue session for userID=%d: %v", identity.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	h.sessions.SetCookie(c, token)

	log.Printf("[auth][login] success userID=%d", identity.ID)
	c.JSON(http.StatusOK, gin.H{
		"user":        claims.Identity(),
		"message":     "Login successful",
		"redirectUrl": h.sessions.SafeRedirect(req.CallbackURL),
	})
}

// @Summary      Sign out
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/auth/signout [post]
func (h *AuthHandler) Signout(c *gin.Context) {
	// routed under the public auth namespace, so the gate didn't check
	token, ok := h.sessions.TokenFromRequest(c.Request)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	if _, err := h.sessions.Validate(token); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	h.sessions.ClearCookie(c)
	c.JSON(http.StatusOK, gin.H{"message": "Signed out successfully"})
}

// @Summary      Current session
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /api/auth/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	token, ok := h.sessions.TokenFromRequest(c.Request)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	claims, err := h.sessions.Validate(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"user":    claims.Identity(),
		"expires": claims.ExpiresAt.Time,
	})
}

// @Summary      Check whether an email is registered
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        email  body      models.CheckEmailRequest  true  "Email"
// @Success      200    {object}  map[string]bool
// @Failure      400    {object}  map[string]string
// @Router       /api/auth/check-email [post]
func (h *AuthHandler) CheckEmail(c *gin.Context) {
	var req models.CheckEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	exists, err := h.users.EmailExists(req.Email)
	if err != nil {
		log.Printf("[auth][check-email] lookup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": exists})
}
