package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/shaderl/internship-service/internal/auth"
	"github.com/shaderl/internship-service/internal/metrics"
	"github.com/shaderl/internship-service/internal/models"
	"github.com/shaderl/internship-service/internal/utils"
)

const (
	ContextKeyUser = "user"

	loginPath = "/login"

	// StatusInvalidCSRF is the non-standard "page expired" status used when a
	// form arrives without a valid token.
	StatusInvalidCSRF = 419
)

// SessionAuthMiddleware gates routes on the user snapshot held in the
// server-side session. The snapshot is trusted until logout.
type SessionAuthMiddleware struct {
	logger  utils.Logger
	metrics *metrics.Metrics
}

func NewSessionAuthMiddleware(logger utils.Logger, m *metrics.Metrics) *SessionAuthMiddleware {
	return &SessionAuthMiddleware{logger: logger, metrics: m}
}

// LoadUser copies the session's user snapshot, if any, into the gin context
func (sam *SessionAuthMiddleware) LoadUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, ok := auth.CurrentUser(sessions.Default(c)); ok {
			c.Set(ContextKeyUser, user)
		}
		c.Next()
	}
}

// RequireLogin redirects anonymous callers to the login page without
// producing a body.
func (sam *SessionAuthMiddleware) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !sam.requireLogin(c) {
			return
		}
		c.Next()
	}
}

// RequireRole allows exactly one role. Logged in users with another role get
// a bare 403.
func (sam *SessionAuthMiddleware) RequireRole(role models.UserRole) gin.HandlerFunc {
	return sam.RequireAnyRole(role)
}

// RequireAnyRole allows any of roles, each compared exactly.
func (sam *SessionAuthMiddleware) RequireAnyRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !sam.requireLogin(c) {
			return
		}

		user := currentUser(c)
		if !user.HasAnyRole(roles...) {
			sam.metrics.RoleForbidden()
			utils.GetLogger(c, sam.logger).Info("Role check failed",
				"user_id", user.ID,
				"role", user.Role,
				"required", roles,
				"path", c.Request.URL.Path)
			c.String(http.StatusForbidden, "Forbidden")
			c.Abort()
			return
		}

		c.Next()
	}
}

func (sam *SessionAuthMiddleware) requireLogin(c *gin.Context) bool {
	if currentUser(c) != nil {
		return true
	}
	c.Header("Location", loginPath)
	c.AbortWithStatus(http.StatusFound)
	return false
}

// CSRFMiddleware rejects POST requests whose csrf_token form field does not
// match the session token. Other methods pass through unchecked.
func (sam *SessionAuthMiddleware) CSRFMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		if !auth.VerifyCSRFToken(sessions.Default(c), c.PostForm(auth.CSRFFieldName)) {
			sam.metrics.CSRFRejected()
			utils.GetLogger(c, sam.logger).Info("CSRF token rejected", "path", c.Request.URL.Path)
			c.String(StatusInvalidCSRF, "Invalid CSRF token")
			c.Abort()
			return
		}

		c.Next()
	}
}

// currentUser returns the snapshot LoadUser stored, or nil.
func currentUser(c *gin.Context) *auth.UserSnapshot {
	v, ok := c.Get(ContextKeyUser)
	if !ok {
		return nil
	}
	user, _ := v.(*auth.UserSnapshot)
	return user
}
