package app

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"authpanel/internal/config"
	"authpanel/internal/handlers"
	"authpanel/internal/middleware"
	"authpanel/internal/ratelimit"
	"authpanel/internal/repositories"
	"authpanel/internal/routes"
	"authpanel/internal/services"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "authpanel/docs"
)

const (
	throttleMax    = 3
	throttleWindow = 60 * time.Second
)

func Run() {
	cfg := config.LoadConfig()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("failed to open database: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("failed to close database: %v", err)
		}
	}()

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	resetRepo := repositories.NewPasswordResetRepository(db)
	oauthRepo := repositories.NewOAuthAccountRepository(db)

	// === Services ===
	authService := services.NewAuthService(userRepo)
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
	)
	sessionService, err := services.NewSessionService(cfg.Session.Secret, cfg.Session.BaseURL, cfg.IsProduction())
	if err != nil {
		log.Fatal("failed to build session service: ", err)
	}
	userService := services.NewUserService(userRepo, oauthRepo, authService, emailService)
	resetService := services.NewPasswordResetService(userRepo, resetRepo, emailService, authService)

	// === Throttles ===
	// one counter per endpoint family so windows don't bleed across flows
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	throttles := routes.Throttles{
		Register: newCounterStore(redisClient, "register"),
		SendCode: newCounterStore(redisClient, "send-code"),
		Reset:    newCounterStore(redisClient, "reset"),
	}

	// === Handlers ===
	authHandler := handlers.NewAuthHandler(authService, userService, sessionService)
	userHandler := handlers.NewUserHandler(userService)
	passwordHandler := handlers.NewPasswordHandler(resetService)
	pageHandler := handlers.NewPageHandler()

	// === Gin ===
	router := gin.Default()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(middleware.SessionGate(sessionService))

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(
		router,
		authHandler,
		userHandler,
		passwordHandler,
		pageHandler,
		throttles,
	)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("listening on %s (env=%s)", listenAddr, cfg.Env)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("server failed: ", err)
	}
}

// newCounterStore picks Redis when configured; the in-process store only
// holds the window guarantee for a single worker.
func newCounterStore(client *redis.Client, family string) ratelimit.Store {
	if client == nil {
		return ratelimit.NewMemoryStore(throttleMax, throttleWindow)
	}
	return ratelimit.NewRedisStore(client, "throttle:"+family, throttleMax, throttleWindow)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
