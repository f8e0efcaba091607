package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"authpanel/internal/models"
	"authpanel/internal/services"
)

const genericResetMessage = "If an account exists with this email, a reset code has been sent"

type PasswordHandler struct {
	resets services.PasswordResetService
}

func NewPasswordHandler(resets services.PasswordResetService) *PasswordHandler {
	return &PasswordHandler{resets: resets}
}

// @Summary      Request a password reset code
// @Description  Always returns the same generic message, whether or not the account exists
// @Tags         Password
// @Accept       json
// @Produce      json
// @Param        request  body      models.SendCodeRequest  true  "Email"
// @Success      200      {object}  map[string]string
// @Failure      400      {object}  map[string]string
// @Failure      429      {object}  map[string]string
// @Failure      500      {object}  map[string]string
// @Router       /api/password/send-code [post]
func (h *PasswordHandler) SendCode(c *gin.Context) {
	var req models.SendCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.resets.RequestCode(req.Email); err != nil {
		log.Printf("[password][send-code] failed for %q: %v", req.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": genericResetMessage})
}

// @Summary      Reset the password with an emailed code
// @Tags         Password
// @Accept       json
// @Produce      json
// @Param        request  body      models.ResetPasswordRequest  true  "Email, code and new password"
// @Success      200      {object}  map[string]string
// @Failure      400      {object}  map[string]string
// @Failure      429      {object}  map[string]string
// @Failure      500      {object}  map[string]string
// @Router       /api/password/reset [post]
func (h *PasswordHandler) Reset(c *gin.Context) {
	var req models.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.resets.Reset(req.Email, req.Code, req.Password, req.ConfirmPassword); err != nil {
		if isValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Printf("[password][reset] failed for %q: %v", req.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
}
