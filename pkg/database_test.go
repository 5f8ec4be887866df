package pkg

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaderl/internship-service/internal/config"
	"github.com/shaderl/internship-service/internal/models"
)

func TestInitDatabaseSQLite(t *testing.T) {
	cfg := &config.Config{
		Environment: config.EnvDevelopment,
		Database: config.DatabaseConfig{
			Driver: config.DriverSQLite,
			URL:    "file:" + filepath.Join(t.TempDir(), "app.db"),
		},
	}

	db, err := InitDatabase(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = CloseDatabase(db) })

	require.NoError(t, Migrate(db))
	for _, table := range []string{"users", "internships", "internship_assignments", "applications", "reports"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasIndex(&models.User{}, "Email"))

	x, err := NewSQLX(db)
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1 FROM users WHERE id = ?", x.Rebind("SELECT 1 FROM users WHERE id = ?"))
}

func TestInitDatabaseUnknownDriver(t *testing.T) {
	_, err := InitDatabase(&config.Config{Database: config.DatabaseConfig{Driver: "mysql"}})
	assert.Error(t, err)
}
