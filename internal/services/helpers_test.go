package services

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/shaderl/internship-service/internal/auth"
	"github.com/shaderl/internship-service/internal/cache"
	"github.com/shaderl/internship-service/internal/models"
	"github.com/shaderl/internship-service/internal/repositories"
	"github.com/shaderl/internship-service/internal/repositories/postgres"
	"github.com/shaderl/internship-service/internal/storage"
	"github.com/shaderl/internship-service/pkg"
)

// minimalPDF is enough for content sniffing; it is not a parseable document.
const minimalPDF = "%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n"

type testEnv struct {
	services ServiceManager
	repo     repositories.Repository
	storage  *storage.LocalStorage
	redis    *miniredis.Miniredis
}

type envOption func(*ServiceManagerConfig, *testEnv)

func withRedis(t *testing.T) envOption {
	return func(cfg *ServiceManagerConfig, env *testEnv) {
		env.redis = miniredis.RunT(t)
		client := redis.NewClient(&redis.Options{Addr: env.redis.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		cfg.Cache = cache.NewCacheManager(client)
	}
}

func withMaxUpload(n int64) envOption {
	return func(cfg *ServiceManagerConfig, _ *testEnv) {
		cfg.MaxUploadBytes = n
	}
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	db, err := pkg.OpenSQLite("file:"+filepath.Join(t.TempDir(), "services.db"), nil)
	require.NoError(t, err)
	require.NoError(t, pkg.Migrate(db))
	sqlDB, err := pkg.NewSQLX(db)
	require.NoError(t, err)

	store, err := storage.NewLocalStorage(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	env := &testEnv{storage: store}
	cfg := ServiceManagerConfig{
		Repository:     postgres.NewRepositoryManager(postgres.RepositoryConfig{DB: db, SQL: sqlDB}),
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		Passwords:      &auth.BcryptVerifier{Cost: bcrypt.MinCost},
		Storage:        store,
		MaxUploadBytes: 1 << 20,
	}
	for _, opt := range opts {
		opt(&cfg, env)
	}

	sm := NewServiceManager(cfg)
	require.NoError(t, sm.Initialize(context.Background()))
	t.Cleanup(func() { _ = sm.Shutdown(context.Background()) })

	env.services = sm
	env.repo = cfg.Repository.GetRepository()
	return env
}

func (e *testEnv) user(t *testing.T, name, email string, role models.UserRole, approved bool) *models.User {
	t.Helper()
	u, err := e.services.User().Create(context.Background(), &CreateUserRequest{
		Name:       name,
		Email:      email,
		Password:   "secret1",
		Role:       string(role),
		IsApproved: approved,
	})
	require.NoError(t, err)
	return u
}

func (e *testEnv) internship(t *testing.T, adminID int64, title string) *models.Internship {
	t.Helper()
	it, err := e.services.Internship().Create(context.Background(), adminID, &CreateInternshipRequest{Title: title})
	require.NoError(t, err)
	return it
}

func snapshot(u *models.User) *auth.UserSnapshot {
	s := auth.SnapshotOf(u)
	return &s
}
