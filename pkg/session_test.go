package pkg

import (
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaderl/internship-service/internal/config"
)

func TestSessionOptions(t *testing.T) {
	cfg := &config.Config{Session: config.SessionConfig{MaxAge: 2 * time.Hour, Secure: true}}

	opts := SessionOptions(cfg)
	assert.Equal(t, "/", opts.Path)
	assert.Equal(t, 7200, opts.MaxAge)
	assert.True(t, opts.Secure)
	assert.True(t, opts.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, opts.SameSite)
}

func TestNewSessionStore(t *testing.T) {
	db, err := OpenSQLite("file:"+filepath.Join(t.TempDir(), "sessions.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = CloseDatabase(db) })

	cfg := &config.Config{Session: config.SessionConfig{
		Secret: "0123456789abcdef0123456789abcdef",
		Store:  config.SessionStoreMemory,
		MaxAge: time.Hour,
	}}
	assert.NotNil(t, NewSessionStore(cfg, nil))
	assert.False(t, db.Migrator().HasTable("sessions"))

	cfg.Session.Store = config.SessionStoreGorm
	assert.NotNil(t, NewSessionStore(cfg, db))
	assert.True(t, db.Migrator().HasTable("sessions"))
}
