package handlers

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/memstore"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/shaderl/internship-service/internal/auth"
	"github.com/shaderl/internship-service/internal/metrics"
	"github.com/shaderl/internship-service/internal/models"
	"github.com/shaderl/internship-service/internal/repositories/postgres"
	"github.com/shaderl/internship-service/internal/services"
	"github.com/shaderl/internship-service/internal/storage"
	"github.com/shaderl/internship-service/internal/utils"
	"github.com/shaderl/internship-service/pkg"
)

const (
	testPassword = "secret123"

	// minimalPDF passes content sniffing; pdfcpu cannot count its pages.
	minimalPDF = "%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n"
)

var csrfPattern = regexp.MustCompile(`name="csrf_token" value="([0-9a-f]+)"`)

func init() {
	gin.SetMode(gin.TestMode)
}

type testApp struct {
	router   *gin.Engine
	server   *httptest.Server
	services services.ServiceManager
	metrics  *metrics.Metrics
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := pkg.OpenSQLite("file:"+filepath.Join(t.TempDir(), "handlers.db"), nil)
	require.NoError(t, err)
	require.NoError(t, pkg.Migrate(db))
	sqlDB, err := pkg.NewSQLX(db)
	require.NoError(t, err)

	uploads, err := storage.NewLocalStorage(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)

	slogLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	passwords := &auth.BcryptVerifier{Cost: bcrypt.MinCost}

	repo := postgres.NewRepositoryManager(postgres.RepositoryConfig{DB: db, SQL: sqlDB})
	sm := services.NewServiceManager(services.ServiceManagerConfig{
		Repository:     repo,
		Logger:         slogLogger,
		Passwords:      passwords,
		Storage:        uploads,
		MaxUploadBytes: 1 << 20,
	})
	require.NoError(t, sm.Initialize(context.Background()))
	t.Cleanup(func() { _ = sm.Shutdown(context.Background()) })

	m := metrics.New()
	cookie := sessions.Options{Path: "/", MaxAge: 3600, HttpOnly: true, SameSite: http.SameSiteLaxMode}

	authenticator, err := auth.NewAuthenticator(auth.AuthenticatorConfig{
		Users:     repo.GetRepository().User(),
		Passwords: passwords,
		Cookie:    cookie,
		Logger:    slogLogger,
		Metrics:   m,
	})
	require.NoError(t, err)

	store := memstore.NewStore([]byte("test-session-secret"))
	store.Options(cookie)

	router, err := NewRouter(HandlerConfig{
		Services:       sm,
		Authenticator:  authenticator,
		Logger:         utils.NewSlogLogger(slogLogger),
		Metrics:        m,
		SessionStore:   store,
		CookieName:     "internship_session",
		MaxUploadBytes: 1 << 20,
	})
	require.NoError(t, err)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testApp{router: router, server: srv, services: sm, metrics: m}
}

func (a *testApp) user(t *testing.T, name, email string, role models.UserRole, approved bool) *models.User {
	t.Helper()
	u, err := a.services.User().Create(context.Background(), &services.CreateUserRequest{
		Name:       name,
		Email:      email,
		Password:   testPassword,
		Role:       string(role),
		IsApproved: approved,
	})
	require.NoError(t, err)
	return u
}

// browser is a cookie-keeping client that does not follow redirects.
type browser struct {
	t      *testing.T
	base   string
	client *http.Client
}

func (a *testApp) browser(t *testing.T) *browser {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{
		t:    t,
		base: a.server.URL,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (b *browser) do(req *http.Request) (*http.Response, string) {
	b.t.Helper()
	resp, err := b.client.Do(req)
	require.NoError(b.t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(b.t, err)
	return resp, string(body)
}

func (b *browser) get(path string) (*http.Response, string) {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodGet, b.base+path, nil)
	require.NoError(b.t, err)
	return b.do(req)
}

func (b *browser) post(path string, form url.Values) (*http.Response, string) {
	b.t.Helper()
	req, err := http.NewRequest(http.MethodPost, b.base+path, strings.NewReader(form.Encode()))
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return b.do(req)
}

// postFile sends a multipart form with one file part.
func (b *browser) postFile(path string, fields url.Values, field, filename string, content []byte) (*http.Response, string) {
	b.t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, vs := range fields {
		for _, v := range vs {
			require.NoError(b.t, w.WriteField(k, v))
		}
	}
	part, err := w.CreateFormFile(field, filename)
	require.NoError(b.t, err)
	_, err = part.Write(content)
	require.NoError(b.t, err)
	require.NoError(b.t, w.Close())

	req, err := http.NewRequest(http.MethodPost, b.base+path, &buf)
	require.NoError(b.t, err)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return b.do(req)
}

// token loads path and returns the CSRF token embedded in its forms.
func (b *browser) token(path string) string {
	b.t.Helper()
	resp, body := b.get(path)
	require.Equal(b.t, http.StatusOK, resp.StatusCode, "GET %s", path)
	m := csrfPattern.FindStringSubmatch(body)
	require.Len(b.t, m, 2, "no csrf token on %s", path)
	return m[1]
}

// submit posts form to path with the token from page.
func (b *browser) submit(page, path string, form url.Values) (*http.Response, string) {
	b.t.Helper()
	if form == nil {
		form = url.Values{}
	}
	form.Set(auth.CSRFFieldName, b.token(page))
	return b.post(path, form)
}

func (b *browser) login(email string) {
	b.t.Helper()
	resp, body := b.submit("/login", "/login", url.Values{"email": {email}, "password": {testPassword}})
	require.Equal(b.t, http.StatusSeeOther, resp.StatusCode, body)
	require.Equal(b.t, "/dashboard", resp.Header.Get("Location"))
}

// follow loads the redirect target of resp and returns its body.
func (b *browser) follow(resp *http.Response) string {
	b.t.Helper()
	require.Equal(b.t, http.StatusSeeOther, resp.StatusCode)
	next, body := b.get(resp.Header.Get("Location"))
	require.Equal(b.t, http.StatusOK, next.StatusCode)
	return body
}
