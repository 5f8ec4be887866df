package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/shaderl/internship-service/internal/auth"
	"github.com/shaderl/internship-service/internal/cache"
	"github.com/shaderl/internship-service/internal/repositories"
	"github.com/shaderl/internship-service/internal/storage"
	"github.com/shaderl/internship-service/internal/validator"
)

// ServiceManagerConfig holds the collaborators shared by every service
type ServiceManagerConfig struct {
	Repository repositories.RepositoryManager
	Logger     *slog.Logger
	Validator  *validator.Validator
	Passwords  auth.PasswordVerifier
	Cache      *cache.CacheManager
	Storage    *storage.LocalStorage

	MaxUploadBytes int64
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	config ServiceManagerConfig
	repo   repositories.Repository
	logger *slog.Logger

	// Service instances
	userService        UserService
	internshipService  InternshipService
	applicationService ApplicationService
	reportService      ReportService
	dashboardService   DashboardService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

func NewServiceManager(config ServiceManagerConfig) ServiceManager {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Validator == nil {
		config.Validator = validator.New()
	}
	if config.Passwords == nil {
		config.Passwords = auth.NewBcryptVerifier()
	}
	if config.Cache == nil {
		config.Cache = cache.NewCacheManager(nil)
	}
	return &serviceManager{
		config: config,
		logger: config.Logger,
	}
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}
	if sm.config.Repository == nil {
		return errors.New("service manager requires a repository")
	}
	if sm.config.Storage == nil {
		return errors.New("service manager requires report storage")
	}

	sm.logger.Info("Initializing service manager")

	if err := sm.config.Repository.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize repository: %w", err)
	}
	sm.repo = sm.config.Repository.GetRepository()

	cfg := sm.config
	sm.userService = NewUserService(sm.repo, sm.logger, cfg.Validator, cfg.Passwords, cfg.Cache, cfg.Storage)
	sm.internshipService = NewInternshipService(sm.repo, sm.logger, cfg.Validator, cfg.Cache)
	sm.applicationService = NewApplicationService(sm.repo, sm.logger, cfg.Cache)
	sm.reportService = NewReportService(sm.repo, sm.logger, cfg.Validator, cfg.Storage, cfg.Cache, cfg.MaxUploadBytes)
	sm.dashboardService = NewDashboardService(sm.repo, sm.logger, cfg.Cache)

	if !cfg.Cache.Enabled() {
		sm.logger.Info("Redis not configured, caching disabled")
	}

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")
	return nil
}

// Service getters

func (sm *serviceManager) User() UserService {
	sm.mustBeInitialized()
	return sm.userService
}

func (sm *serviceManager) Internship() InternshipService {
	sm.mustBeInitialized()
	return sm.internshipService
}

func (sm *serviceManager) Application() ApplicationService {
	sm.mustBeInitialized()
	return sm.applicationService
}

func (sm *serviceManager) Report() ReportService {
	sm.mustBeInitialized()
	return sm.reportService
}

func (sm *serviceManager) Dashboard() DashboardService {
	sm.mustBeInitialized()
	return sm.dashboardService
}

func (sm *serviceManager) mustBeInitialized() {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}
}

// Health and lifecycle

// HealthCheck fails on the database only; a down cache degrades to direct reads.
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}
	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.config.Repository.HealthCheck(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	if sm.config.Cache.Enabled() {
		if err := sm.config.Cache.HealthCheck(ctx); err != nil {
			sm.logger.Warn("Cache health check failed", "error", err)
		}
	}
	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if err := sm.config.Repository.Shutdown(ctx); err != nil {
		sm.logger.Error("Failed to shutdown repository manager", "error", err)
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")
	return nil
}
