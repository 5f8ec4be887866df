package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "ENVIRONMENT", "LOG_LEVEL", "DATABASE_DRIVER", "SESSION_SECRET",
		"SESSION_STORE", "SESSION_COOKIE_NAME", "SESSION_MAX_AGE", "MAX_UPLOAD_BYTES",
	} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, EnvDevelopment, cfg.Environment)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, SessionStoreGorm, cfg.Session.Store)
	assert.Equal(t, "internship_session", cfg.Session.CookieName)
	assert.Equal(t, 12*time.Hour, cfg.Session.MaxAge)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	assert.NotEmpty(t, cfg.Session.Secret)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_DRIVER", "SQLite")
	t.Setenv("DATABASE_URL", "file:test.db")
	t.Setenv("DB_MAX_LIFETIME", "5m")
	t.Setenv("SESSION_STORE", "memory")
	t.Setenv("SESSION_MAX_AGE", "30m")
	t.Setenv("SESSION_SECURE", "true")
	t.Setenv("MAX_UPLOAD_BYTES", "2048")
	t.Setenv("REDIS_URL", "redis://localhost:6379/1")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "file:test.db", cfg.Database.URL)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, SessionStoreMemory, cfg.Session.Store)
	assert.Equal(t, 30*time.Minute, cfg.Session.MaxAge)
	assert.True(t, cfg.Session.Secure)
	assert.Equal(t, int64(2048), cfg.MaxUploadBytes)
	assert.Equal(t, "redis://localhost:6379/1", cfg.RedisURL)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Environment:    EnvDevelopment,
			Database:       DatabaseConfig{Driver: DriverSQLite, URL: "file:x.db"},
			Session:        SessionConfig{Store: SessionStoreMemory, MaxAge: time.Hour, Secret: "s"},
			MaxUploadBytes: 1,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid development", mutate: func(*Config) {}},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.Database.Driver = "mysql" },
			wantErr: "DATABASE_DRIVER",
		},
		{
			name:    "unknown session store",
			mutate:  func(c *Config) { c.Session.Store = "cookie" },
			wantErr: "SESSION_STORE",
		},
		{
			name:    "production short secret",
			mutate:  func(c *Config) { c.Environment = EnvProduction; c.Session.Secure = true },
			wantErr: "SESSION_SECRET",
		},
		{
			name: "production insecure cookie",
			mutate: func(c *Config) {
				c.Environment = EnvProduction
				c.Session.Secret = "0123456789abcdef0123456789abcdef"
			},
			wantErr: "SESSION_SECURE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
