package handlers

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/steinfletcher/apitest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaderl/internship-service/internal/auth"
	"github.com/shaderl/internship-service/internal/metrics"
	"github.com/shaderl/internship-service/internal/models"
	"github.com/shaderl/internship-service/internal/services"
)

func TestRegistrationApprovalFlow(t *testing.T) {
	app := newTestApp(t)
	admin := app.user(t, "Ada Admin", "admin@example.com", models.RoleAdmin, true)
	ctx := context.Background()

	jane := app.browser(t)

	// Role is forced to intern even when the form asks for admin.
	resp, body := jane.submit("/register", "/register", url.Values{
		"name":     {"Jane"},
		"email":    {"jane@example.com"},
		"password": {testPassword},
		"role":     {"admin"},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Registration successful")

	pending, err := app.services.User().Pending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, models.RoleIntern, pending[0].Role)
	assert.False(t, pending[0].IsApproved)

	resp, body = jane.submit("/login", "/login", url.Values{"email": {"jane@example.com"}, "password": {testPassword}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, auth.MsgAwaitingApproval)

	adminBrowser := app.browser(t)
	adminBrowser.login(admin.Email)
	_, body = adminBrowser.get("/admin/approvals")
	assert.Contains(t, body, "jane@example.com")

	resp, _ = adminBrowser.submit("/admin/approvals", "/admin/approvals", url.Values{
		"approve_id": {strconv.FormatInt(pending[0].ID, 10)},
	})
	assert.Equal(t, "/admin/approvals", resp.Header.Get("Location"))
	body = adminBrowser.follow(resp)
	assert.Contains(t, body, "Intern approved")
	assert.NotContains(t, body, "jane@example.com")

	jane.login("jane@example.com")
	resp, body = jane.get("/dashboard")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Intern Dashboard")

	assert.Equal(t, float64(1), testutil.ToFloat64(app.metrics.LoginAttempts.WithLabelValues(metrics.OutcomeUnapproved)))
	assert.Equal(t, float64(2), testutil.ToFloat64(app.metrics.LoginAttempts.WithLabelValues(metrics.OutcomeSuccess)))
}

func TestRegisterValidationErrors(t *testing.T) {
	app := newTestApp(t)
	app.user(t, "Taken", "taken@example.com", models.RoleIntern, false)

	tests := []struct {
		name     string
		form     url.Values
		expected []string
	}{
		{
			name:     "structural errors are listed together",
			form:     url.Values{"name": {""}, "email": {"nope"}, "password": {"123"}},
			expected: []string{"Name is required", "Invalid email", "Password must be at least 6 characters"},
		},
		{
			name:     "multibyte password too long for bcrypt",
			form:     url.Values{"name": {"Jane"}, "email": {"jane@example.com"}, "password": {strings.Repeat("é", 40)}},
			expected: []string{"Password is too long"},
		},
		{
			name:     "duplicate email",
			form:     url.Values{"name": {"Other"}, "email": {"taken@example.com"}, "password": {testPassword}},
			expected: []string{auth.MsgEmailInUse},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := app.browser(t)
			resp, body := b.submit("/register", "/register", tt.form)
			require.Equal(t, http.StatusOK, resp.StatusCode)
			for _, msg := range tt.expected {
				assert.Contains(t, body, msg)
			}
			assert.NotContains(t, body, "Registration successful")
		})
	}
}

func TestLoginRejections(t *testing.T) {
	app := newTestApp(t)
	app.user(t, "Sam", "sam@example.com", models.RoleSupervisor, true)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown email", "ghost@example.com", testPassword},
		{"wrong password", "sam@example.com", "wrong-password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := app.browser(t)
			resp, body := b.submit("/login", "/login", url.Values{"email": {tt.email}, "password": {tt.password}})
			require.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Contains(t, body, auth.MsgInvalidCredentials)

			resp, _ = b.get("/dashboard")
			assert.Equal(t, http.StatusFound, resp.StatusCode)
		})
	}
}

func TestLogoutDestroysSessionAndToken(t *testing.T) {
	app := newTestApp(t)
	app.user(t, "Sam", "sam@example.com", models.RoleSupervisor, true)

	b := app.browser(t)
	b.login("sam@example.com")

	oldToken := b.token("/dashboard")
	resp, _ := b.post("/logout", url.Values{auth.CSRFFieldName: {oldToken}})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, loginPath, resp.Header.Get("Location"))

	resp, _ = b.get("/dashboard")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, loginPath, resp.Header.Get("Location"))

	resp, body := b.post("/login", url.Values{
		auth.CSRFFieldName: {oldToken},
		"email":            {"sam@example.com"},
		"password":         {testPassword},
	})
	assert.Equal(t, StatusInvalidCSRF, resp.StatusCode)
	assert.Equal(t, "Invalid CSRF token", body)
}

func TestInstall(t *testing.T) {
	app := newTestApp(t)
	b := app.browser(t)

	resp, body := b.submit("/install", "/install", url.Values{
		"name":     {"Root"},
		"email":    {"root@example.com"},
		"password": {testPassword},
	})
	assert.Equal(t, loginPath, resp.Header.Get("Location"))
	assert.Empty(t, body)
	assert.Contains(t, b.follow(resp), "Admin created. You can now login.")

	hasAdmin, err := app.services.User().HasAdmin(context.Background())
	require.NoError(t, err)
	assert.True(t, hasAdmin)

	apitest.New().
		Handler(app.router).
		Get("/install").
		Expect(t).
		Status(http.StatusNotFound).
		End()

	b.login("root@example.com")
	_, body = b.get("/dashboard")
	assert.Contains(t, body, "Admin Dashboard")
}

func TestLandingAndHealth(t *testing.T) {
	app := newTestApp(t)

	apitest.New().
		Handler(app.router).
		Get("/").
		Expect(t).
		Status(http.StatusOK).
		End()

	apitest.New().
		Handler(app.router).
		Get("/health").
		Expect(t).
		Status(http.StatusOK).
		Body(`{"service":"internship-service","status":"healthy"}`).
		End()

	apitest.New().
		Handler(app.router).
		Get("/no-such-page").
		Expect(t).
		Status(http.StatusNotFound).
		End()
}

func TestServiceErrorsDoNotLeak(t *testing.T) {
	app := newTestApp(t)
	admin := app.user(t, "Ada Admin", "admin@example.com", models.RoleAdmin, true)

	b := app.browser(t)
	b.login(admin.Email)

	resp, _ := b.submit("/admin/users", "/admin/users", url.Values{
		"action": {"delete"},
		"id":     {strconv.FormatInt(admin.ID, 10)},
	})
	body := b.follow(resp)
	assert.Contains(t, body, services.ErrCannotDeleteSelf.Error())
}
