package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"authpanel/internal/handlers"
	"authpanel/internal/middleware"
	"authpanel/internal/ratelimit"
)

type Throttles struct {
	Register ratelimit.Store
	SendCode ratelimit.Store
	Reset    ratelimit.Store
}

func SetupRoutes(
	r *gin.Engine,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	passwordHandler *handlers.PasswordHandler,
	pageHandler *handlers.PageHandler,
	throttles Throttles,
) *gin.Engine {

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ---- auth API (public namespace; signout/session check the cookie themselves)
	auth := r.Group("/api/auth")
	{
		auth.POST("/login", authHandler.Login)
		auth.POST("/signout", authHandler.Signout)
		auth.GET("/session", authHandler.Session)
		auth.POST("/check-email", authHandler.CheckEmail)
	}

	// ---- throttled public endpoints
	r.POST("/api/register", middleware.Throttle(throttles.Register), userHandler.Register)
	password := r.Group("/api/password")
	{
		password.POST("/send-code", middleware.Throttle(throttles.SendCode), passwordHandler.SendCode)
		password.POST("/reset", middleware.Throttle(throttles.Reset), passwordHandler.Reset)
	}

	// ---- pages (the gate decides who sees what)
	r.GET("/", pageHandler.Home)
	r.GET("/login", pageHandler.Login)
	r.GET("/register", pageHandler.Register)
	r.GET("/forgot-password", pageHandler.ForgotPassword)
	r.GET("/dashboard", pageHandler.Dashboard)

	return r
}
