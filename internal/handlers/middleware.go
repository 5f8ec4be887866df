package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	uuid2 "github.com/google/uuid"

	"github.com/shaderl/internship-service/internal/utils"
)

// formOverhead is the allowance for non-file fields on top of the upload limit
const formOverhead = 1 << 20

// MiddlewareConfig carries what the common middleware chain needs
type MiddlewareConfig struct {
	Logger         utils.Logger
	SessionStore   sessions.Store
	CookieName     string
	MaxUploadBytes int64
	Auth           *SessionAuthMiddleware
}

// SetupMiddleware sets up common middleware for the Gin router
func SetupMiddleware(router *gin.Engine, cfg MiddlewareConfig) {
	// Request ID middleware
	router.Use(RequestIDMiddleware())

	// Context logger middleware (adds logger with request_id to context)
	router.Use(utils.ContextLogger(cfg.Logger))

	// Recovery middleware
	router.Use(RecoveryMiddleware(cfg.Logger))

	// Custom logging middleware
	router.Use(utils.LoggerMiddleware(cfg.Logger))

	// Security headers middleware
	router.Use(SecurityMiddleware())

	router.Use(BodyLimitMiddleware(cfg.MaxUploadBytes + formOverhead))

	// Server-side session, then identity, then the token check
	router.Use(sessions.Sessions(cfg.CookieName, cfg.SessionStore))
	router.Use(cfg.Auth.LoadUser())
	router.Use(cfg.Auth.CSRFMiddleware())
}

// SecurityMiddleware adds security headers
func SecurityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'self'; frame-ancestors 'none'; form-action 'self'")
		c.Next()
	}
}

// RequestIDMiddleware generates a unique request ID for each request
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			// Generate a new request ID
			requestID = uuid2.New().String()
		}
		c.Header("X-Request-ID", requestID)
		c.Set(utils.ContextKeyRequestID, requestID)
		c.Next()
	}
}

// RecoveryMiddleware logs panics and answers with a bare 500
func RecoveryMiddleware(logger utils.Logger) gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(nil, func(c *gin.Context, recovered any) {
		utils.GetLogger(c, logger).Error("Panic recovered",
			"panic", recovered,
			"path", c.Request.URL.Path)
		c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		c.Abort()
	})
}

// BodyLimitMiddleware caps request bodies so oversized uploads fail while
// the form is parsed.
func BodyLimitMiddleware(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}
