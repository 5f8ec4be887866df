package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/shaderl/internship-service/internal/auth"
	"github.com/shaderl/internship-service/internal/metrics"
	"github.com/shaderl/internship-service/internal/models"
	"github.com/shaderl/internship-service/internal/services"
	"github.com/shaderl/internship-service/internal/utils"
)

// HandlerConfig wires the handler layer to the services and the session store
type HandlerConfig struct {
	Services       services.ServiceManager
	Authenticator  *auth.Authenticator
	Logger         utils.Logger
	Metrics        *metrics.Metrics
	SessionStore   sessions.Store
	CookieName     string
	MaxUploadBytes int64
}

type HandlerManager struct {
	authHandler       *AuthHandler
	dashboardHandler  *DashboardHandler
	userHandler       *UserHandler
	internshipHandler *InternshipHandler
	internHandler     *InternHandler
	reportHandler     *ReportHandler
	authMiddleware    *SessionAuthMiddleware

	services services.ServiceManager
	metrics  *metrics.Metrics
}

func NewHandlerManager(cfg HandlerConfig) *HandlerManager {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New()
	}
	sm := cfg.Services
	logger := cfg.Logger

	return &HandlerManager{
		authHandler:       NewAuthHandler(cfg.Authenticator, sm.User(), logger),
		dashboardHandler:  NewDashboardHandler(sm.Dashboard(), logger),
		userHandler:       NewUserHandler(sm.User(), logger),
		internshipHandler: NewInternshipHandler(sm.Internship(), sm.Application(), sm.User(), logger),
		internHandler:     NewInternHandler(sm.Internship(), sm.Application(), sm.Report(), logger),
		reportHandler:     NewReportHandler(sm.Report(), logger),
		authMiddleware:    NewSessionAuthMiddleware(logger, cfg.Metrics),
		services:          sm,
		metrics:           cfg.Metrics,
	}
}

// NewRouter builds the engine with templates, middleware and routes
func NewRouter(cfg HandlerConfig) (*gin.Engine, error) {
	tmpl, err := LoadTemplates()
	if err != nil {
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	hm := NewHandlerManager(cfg)

	router := gin.New()
	router.SetHTMLTemplate(tmpl)
	SetupMiddleware(router, MiddlewareConfig{
		Logger:         cfg.Logger,
		SessionStore:   cfg.SessionStore,
		CookieName:     cfg.CookieName,
		MaxUploadBytes: cfg.MaxUploadBytes,
		Auth:           hm.authMiddleware,
	})
	hm.SetupRoutes(router)
	return router, nil
}

// SetupRoutes sets up all page routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	am := hm.authMiddleware

	router.StaticFS("/static", StaticFiles())

	// Public pages
	router.GET("/", hm.authHandler.Landing)
	router.GET("/login", hm.authHandler.ShowLogin)
	router.POST("/login", hm.authHandler.Login)
	router.GET("/register", hm.authHandler.ShowRegister)
	router.POST("/register", hm.authHandler.Register)
	router.GET("/install", hm.authHandler.ShowInstall)
	router.POST("/install", hm.authHandler.Install)

	// Any signed-in user
	router.POST("/logout", am.RequireLogin(), hm.authHandler.Logout)
	router.GET("/dashboard", am.RequireLogin(), hm.dashboardHandler.Show)
	router.GET("/reports/:id/file",
		am.RequireAnyRole(models.RoleAdmin, models.RoleSupervisor, models.RoleIntern),
		hm.reportHandler.Download)

	admin := router.Group("/admin")
	admin.Use(am.RequireRole(models.RoleAdmin))
	{
		admin.GET("/users", hm.userHandler.ListUsers)
		admin.POST("/users", hm.userHandler.UserAction)
		admin.GET("/users/export", hm.userHandler.ExportUsers)
		admin.GET("/approvals", hm.userHandler.ListPending)
		admin.POST("/approvals", hm.userHandler.ApproveIntern)
		admin.GET("/internships", hm.internshipHandler.ListInternships)
		admin.POST("/internships", hm.internshipHandler.InternshipAction)
		admin.POST("/applications", hm.internshipHandler.DecideApplication)
	}

	intern := router.Group("/intern")
	intern.Use(am.RequireRole(models.RoleIntern))
	{
		intern.GET("/internships", hm.internHandler.ListInternships)
		intern.POST("/internships", hm.internHandler.Apply)
		intern.GET("/reports", hm.internHandler.ListReports)
		intern.POST("/reports", hm.internHandler.SubmitReport)
	}

	sup := router.Group("/sup")
	sup.Use(am.RequireRole(models.RoleSupervisor))
	{
		sup.GET("/reports", hm.reportHandler.ListForSupervisor)
		sup.POST("/reports", hm.reportHandler.SupervisorAction)
	}

	router.GET("/metrics", gin.WrapH(hm.metrics.Handler()))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		if err := hm.services.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"service": "internship-service",
				"error":   err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "internship-service",
		})
	})

	router.NoRoute(func(c *gin.Context) {
		hm.dashboardHandler.render(c, http.StatusNotFound, "error.html", gin.H{
			"Title":   http.StatusText(http.StatusNotFound),
			"Message": "Page not found",
		})
	})
}
