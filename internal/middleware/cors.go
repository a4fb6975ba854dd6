package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS returns a configured CORS middleware. With no origins configured it
// falls back to the permissive policy the storefront frontend expects:
// any origin, with the Supabase client headers allowed. Preflight OPTIONS
// requests are answered here and never reach a handler.
func CORS(origins, methods, headers []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowOrigins: origins,
		AllowMethods: methods,
		AllowHeaders: headers,
	}

	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowAllOrigins = true
		cfg.AllowOrigins = nil
	}
	if len(cfg.AllowMethods) == 0 {
		cfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cfg.AllowHeaders) == 0 {
		cfg.AllowHeaders = []string{"Authorization", "X-Client-Info", "Apikey", "Content-Type", "X-API-Key"}
	}

	return cors.New(cfg)
}
