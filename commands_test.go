package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/shaderl/internship-service/internal/models"
	"github.com/shaderl/internship-service/internal/services"
)

func TestReadPassword(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"plain line", "secret123\n", "secret123", false},
		{"windows line ending", "secret123\r\n", "secret123", false},
		{"no trailing newline", "secret123", "secret123", false},
		{"spaces are kept", "  spaced out  \n", "  spaced out  ", false},
		{"only first line", "first1\nsecond2\n", "first1", false},
		{"empty input", "", "", true},
		{"empty line", "\n", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readPassword(strings.NewReader(tt.in))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCLIError(t *testing.T) {
	wrapped := errors.Join(errors.New("lookup"), services.ErrUserNotFound)
	assert.EqualError(t, cliError(wrapped), services.ErrUserNotFound.Error())

	infra := errors.New("connection refused")
	assert.Same(t, infra, cliError(infra))
}

// useSQLiteEnv points config at a throwaway sqlite database and upload dir.
func useSQLiteEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "file:"+filepath.Join(dir, "cli.db"))
	t.Setenv("UPLOAD_DIR", filepath.Join(dir, "uploads"))
	t.Setenv("SESSION_STORE", "memory")
	t.Setenv("REDIS_URL", "")
}

func withTestRuntime(t *testing.T, fn func(rt *runtime)) {
	t.Helper()
	rt, err := bootstrap(context.Background(), io.Discard)
	require.NoError(t, err)
	defer rt.Close(context.Background())
	fn(rt)
}

func runApp(stdin string, args ...string) (string, error) {
	var out bytes.Buffer
	app := newApp()
	app.Reader = strings.NewReader(stdin)
	app.Writer = &out
	app.ErrWriter = io.Discard
	err := app.RunContext(context.Background(), append([]string{"internship-service"}, args...))
	return out.String(), err
}

func TestUserCommands(t *testing.T) {
	useSQLiteEnv(t)

	var internID int64
	withTestRuntime(t, func(rt *runtime) {
		u, err := rt.services.User().Create(context.Background(), &services.CreateUserRequest{
			Name: "Ian Intern", Email: "ian@example.com", Password: "secret123", Role: string(models.RoleIntern),
		})
		require.NoError(t, err)
		internID = u.ID
	})

	tests := []struct {
		name    string
		stdin   string
		args    []string
		wantOut string
		wantErr string
	}{
		{
			name:    "create first admin",
			stdin:   "secret123\n",
			args:    []string{"admin", "create", "--name", "Ada Admin", "--email", "ada@example.com"},
			wantOut: "Admin ada@example.com created",
		},
		{
			name:    "second admin is refused",
			stdin:   "secret123\n",
			args:    []string{"admin", "create", "--name", "Eve", "--email", "eve@example.com"},
			wantErr: services.ErrAdminExists.Error(),
		},
		{
			name:    "admin create without password",
			args:    []string{"admin", "create", "--name", "Eve", "--email", "eve@example.com"},
			wantErr: "missing password from stdin",
		},
		{
			name:    "pending intern shows in list",
			args:    []string{"users", "list", "--role", "intern", "--status", "pending"},
			wantOut: "ian@example.com",
		},
		{
			name:    "approve intern",
			args:    []string{"users", "approve", "--email", "ian@example.com"},
			wantOut: "Approved ian@example.com",
		},
		{
			name:    "approve unknown email",
			args:    []string{"users", "approve", "--email", "ghost@example.com"},
			wantErr: services.ErrUserNotFound.Error(),
		},
		{
			name:    "approve a non-intern",
			args:    []string{"users", "approve", "--email", "ada@example.com"},
			wantErr: services.ErrNotAnIntern.Error(),
		},
		{
			name:    "reset password too short",
			stdin:   "123\n",
			args:    []string{"users", "reset-password", "--email", "ian@example.com"},
			wantErr: "Password must be at least 6 characters",
		},
		{
			name:    "reset password multibyte over limit",
			stdin:   strings.Repeat("é", 40) + "\n",
			args:    []string{"users", "reset-password", "--email", "ian@example.com"},
			wantErr: "Password is too long",
		},
		{
			name:    "reset password",
			stdin:   "newsecret\n",
			args:    []string{"users", "reset-password", "--email", "ian@example.com"},
			wantOut: "Password updated for ian@example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runApp(tt.stdin, tt.args...)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, out, tt.wantOut)
		})
	}

	withTestRuntime(t, func(rt *runtime) {
		ctx := context.Background()
		ian, err := rt.services.User().GetByID(ctx, internID)
		require.NoError(t, err)
		assert.True(t, ian.IsApproved)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(ian.PasswordHash), []byte("newsecret")))

		admins, err := rt.services.User().List(ctx, services.UserListFilters{Role: string(models.RoleAdmin), Status: services.UserStatusAll})
		require.NoError(t, err)
		require.Len(t, admins, 1)
		assert.Equal(t, "ada@example.com", admins[0].Email)
	})
}
