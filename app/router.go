// Package app wires the HTTP router, its middleware and every endpoint
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"bitwise74/account-api/app/auth"
	"bitwise74/account-api/app/image"
	"bitwise74/account-api/app/password"
	"bitwise74/account-api/app/root"
	"bitwise74/account-api/app/user"
	"bitwise74/account-api/aws"
	"bitwise74/account-api/config"
	"bitwise74/account-api/db"
	"bitwise74/account-api/internal"
	"bitwise74/account-api/internal/service"
	"bitwise74/account-api/pkg/httperr"
	"bitwise74/account-api/pkg/middleware"
	"bitwise74/account-api/pkg/security"
	"bitwise74/account-api/pkg/validators"

	"github.com/Depado/ginprom"
	cache "github.com/chenyahui/gin-cache"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewDeps connects to the database and the configured image storage
func NewDeps(ctx context.Context, cfg *config.Config) (*internal.Deps, error) {
	database, err := db.New(cfg)
	if err != nil {
		return nil, err
	}

	var images service.ImageStore

	switch cfg.Storage.Type {
	case "s3":
		client, err := aws.NewS3(ctx, cfg.AWS)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 client, %w", err)
		}

		images = service.NewS3ImageStore(client, cfg.Storage.ProfileDir)
	default:
		images, err = service.NewLocalImageStore(cfg.Storage.UploadDir, cfg.Storage.ProfileDir)
		if err != nil {
			return nil, err
		}
	}

	mailer := service.NewSMTPMailer(cfg.Mail, cfg.Host)

	return internal.NewDeps(cfg, database, security.New(), mailer, images), nil
}

func NewRouter(cfg *config.Config, d *internal.Deps) *gin.Engine {
	validators.Setup()

	router := gin.New()

	router.Use(
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == http.MethodHead
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
		ginzap.RecoveryWithZap(zap.L(), true),
		cors.New(cors.Config{
			AllowOrigins:     cfg.Host.CORS,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "TurnstileToken"},
			ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		middleware.ErrorHandler(),
	)

	if cfg.Metrics.Enabled {
		p := ginprom.New(
			ginprom.Engine(router),
			ginprom.Subsystem("gin"),
			ginprom.Path("/metrics"),
		)
		router.Use(p.Instrument())
	}

	router.Use(
		middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
			RequestsPerSecond: cfg.Security.RateLimit,
			Burst:             cfg.Security.RateLimit * 2,
		}),
		middleware.BodySizeLimiter(cfg.Security.BodyLimit),
		middleware.TokenAuthentication(d.Tokens),
	)

	router.HandleMethodNotAllowed = true

	router.NoRoute(func(c *gin.Context) {
		c.Error(httperr.NotFound("Not found"))
	})
	router.NoMethod(func(c *gin.Context) {
		c.Error(httperr.New(http.StatusMethodNotAllowed, "Method not allowed"))
	})

	turnstile := middleware.NewTurnstileMiddleware(middleware.TurnstileConfig{
		Enabled: cfg.Cloudflare.Turnstile.Enabled,
		Secret:  cfg.Cloudflare.Turnstile.SecretToken,
	})
	pagination := middleware.NewPaginationMiddleware()

	m := router.Group("/api")
	{
		// HEAD /api/heartbeat 			-> Used to check if the server is alive
		m.HEAD("/heartbeat", func(c *gin.Context) { root.Heartbeat(c, d) })
	}

	v := m.Group("/1.0")

	u := v.Group("/users")
	{
		// POST /api/1.0/users 			-> Registers a new inactive user
		u.POST("", turnstile, func(c *gin.Context) { user.UserRegister(c, d) })

		// POST /api/1.0/users/token/:token	-> Activates the account owning the token
		u.POST("/token/:token", func(c *gin.Context) { user.UserActivate(c, d) })

		// GET /api/1.0/users			-> Returns a page of active users
		u.GET("", pagination, func(c *gin.Context) { user.UserList(c, d) })

		// GET /api/1.0/users/:id		-> Returns a single active user
		u.GET("/:id", func(c *gin.Context) { user.UserFetch(c, d) })

		// PUT /api/1.0/users/:id		-> Updates the caller's username and profile image
		u.PUT("/:id", func(c *gin.Context) { user.UserUpdate(c, d) })

		// DELETE /api/1.0/users/:id		-> Deletes the caller's account
		u.DELETE("/:id", func(c *gin.Context) { user.UserDelete(c, d) })
	}

	// POST /api/1.0/auth			-> Logs in a user and returns a bearer token
	v.POST("/auth", func(c *gin.Context) { auth.AuthLogin(c, d) })

	// POST /api/1.0/logout			-> Invalidates the bearer token of the request
	v.POST("/logout", func(c *gin.Context) { auth.AuthLogout(c, d) })

	p := v.Group("/user/password")
	{
		// POST /api/1.0/user/password		-> Mails a password reset token
		p.POST("", turnstile, func(c *gin.Context) { password.PasswordResetRequest(c, d) })

		// PUT /api/1.0/user/password		-> Sets a new password using a reset token
		p.PUT("", func(c *gin.Context) { password.PasswordReset(c, d) })
	}

	// GET /images/:file				-> Serves a stored profile image
	imageCache := cache.CacheByRequestURI(d.ImageCache, time.Hour, cache.WithCacheStrategyByRequest(
		func(c *gin.Context) (bool, cache.Strategy) {
			return true, cache.Strategy{CacheKey: service.ImageCacheKey(c.Param("file"))}
		},
	))
	router.GET("/images/:file", imageCache, func(c *gin.Context) { image.ImageServe(c, d) })

	return router
}
