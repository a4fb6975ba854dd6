package router

import (
	"net/http"

	"reviewgate/internal/common"
	"reviewgate/internal/config"
	"reviewgate/internal/domain/captcha"
	"reviewgate/internal/domain/review"
	"reviewgate/internal/middleware"

	"github.com/gin-gonic/gin"
)

// New creates and configures the Gin router with all middleware and routes.
func New(
	cfg *config.Config,
	verifier middleware.TokenVerifier,
	reviewHandler *review.Handler,
	captchaHandler *captcha.Handler,
) *gin.Engine {
	// Set Gin mode
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()

	// Global middleware stack (order matters)
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.CORS(
		cfg.CORS.AllowedOrigins,
		cfg.CORS.AllowedMethods,
		cfg.CORS.AllowedHeaders,
	))

	// Per-IP throttle
	rateLimiter := middleware.NewRateLimiter(
		cfg.RateLimit.RequestsPerSecond,
		cfg.RateLimit.Burst,
	)
	r.Use(rateLimiter.Middleware())

	r.Use(gin.Logger())

	// Public routes
	r.GET("/health", healthCheck)

	api := r.Group("/api/v1")

	// Captcha verification is reachable pre-login
	captchaHandler.RegisterRoutes(api)

	// User routes (verified bearer token required)
	userAPI := api.Group("")
	userAPI.Use(middleware.BearerAuth(verifier))
	{
		reviewHandler.RegisterRoutes(userAPI)
	}

	// Admin routes (service API key required)
	adminAPI := api.Group("/admin")
	adminAPI.Use(middleware.APIKeyAuth(cfg.Admin.APIKeys))
	{
		reviewHandler.RegisterAdminRoutes(adminAPI)
	}

	return r
}

// healthCheck handles GET /health
func healthCheck(c *gin.Context) {
	common.Success(c, http.StatusOK, gin.H{
		"status":  "ok",
		"service": "reviewgate",
	})
}
