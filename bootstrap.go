package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/shaderl/internship-service/internal/auth"
	"github.com/shaderl/internship-service/internal/cache"
	"github.com/shaderl/internship-service/internal/config"
	"github.com/shaderl/internship-service/internal/repositories"
	"github.com/shaderl/internship-service/internal/repositories/postgres"
	"github.com/shaderl/internship-service/internal/services"
	"github.com/shaderl/internship-service/internal/storage"
	"github.com/shaderl/internship-service/internal/utils"
	"github.com/shaderl/internship-service/internal/validator"
	"github.com/shaderl/internship-service/pkg"
)

// runtime is everything a command needs once config is loaded
type runtime struct {
	cfg       *config.Config
	slog      *slog.Logger
	logger    utils.Logger
	db        *gorm.DB
	redis     *redis.Client
	passwords auth.PasswordVerifier
	validator *validator.Validator
	repo      repositories.RepositoryManager
	services  services.ServiceManager
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
}

// bootstrap connects the database, migrates it and starts the services.
// Redis is optional; a failed connection only disables caching.
func bootstrap(ctx context.Context, logOut io.Writer) (*runtime, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slogLogger := newLogger(cfg, logOut)
	rt := &runtime{
		cfg:       cfg,
		slog:      slogLogger,
		logger:    utils.NewSlogLogger(slogLogger),
		passwords: auth.NewBcryptVerifier(),
		validator: validator.New(),
	}

	rt.db, err = pkg.InitDatabase(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := pkg.Migrate(rt.db); err != nil {
		rt.Close(ctx)
		return nil, err
	}

	if cfg.RedisURL != "" {
		rt.redis, err = pkg.NewRedisClient(cfg)
		if err != nil {
			slogLogger.Warn("Failed to initialize Redis, caching disabled", "error", err)
			rt.redis = nil
		}
	}

	sqlDB, err := pkg.NewSQLX(rt.db)
	if err != nil {
		rt.Close(ctx)
		return nil, err
	}

	reports, err := storage.NewLocalStorage(cfg.UploadDir)
	if err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("failed to prepare upload dir: %w", err)
	}

	repo := postgres.NewRepositoryManager(postgres.RepositoryConfig{DB: rt.db, SQL: sqlDB})
	sm := services.NewServiceManager(services.ServiceManagerConfig{
		Repository:     repo,
		Logger:         slogLogger,
		Validator:      rt.validator,
		Passwords:      rt.passwords,
		Cache:          cache.NewCacheManager(rt.redis),
		Storage:        reports,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})
	if err := sm.Initialize(ctx); err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	rt.repo = repo
	rt.services = sm

	return rt, nil
}

// Close releases the database pool and the redis client. Service shutdown
// closes the pool itself.
func (rt *runtime) Close(ctx context.Context) {
	if rt.services != nil {
		if err := rt.services.Shutdown(ctx); err != nil {
			rt.slog.Error("Failed to shutdown services", "error", err)
		}
	} else if rt.db != nil {
		if err := pkg.CloseDatabase(rt.db); err != nil {
			rt.slog.Error("Failed to close database", "error", err)
		}
	}
	if rt.redis != nil {
		_ = rt.redis.Close()
	}
}
