package httpserver

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/barangay_portal/internal/account"
	"github.com/Skotchmaster/barangay_portal/internal/handlers"
	"github.com/Skotchmaster/barangay_portal/internal/middleware/csrf"
	"github.com/Skotchmaster/barangay_portal/internal/session"
)

func InitTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	if err := account.Migrate(db); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return db
}

type client struct {
	t       *testing.T
	e       *echo.Echo
	cookies map[string]*http.Cookie
	csrf    string
}

func (c *client) do(method, path, body string) *httptest.ResponseRecorder {
	c.t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if method == http.MethodPost {
		req.Header.Set("Origin", "http://example.com")
		req.Header.Set("X-CSRF-Token", c.csrf)
	}
	for _, ck := range c.cookies {
		req.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
	}

	rec := httptest.NewRecorder()
	c.e.ServeHTTP(rec, req)

	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}
	if tok := rec.Header().Get("X-CSRF-Token"); tok != "" {
		c.csrf = tok
	}
	return rec
}

func newPortal(t *testing.T) *client {
	t.Helper()

	db := InitTestDB(t)
	svc := &account.Service{
		Repo:     &account.GormRepo{DB: db},
		Secret:   []byte("router-secret"),
		TokenTTL: time.Hour,
	}
	_, err := svc.Register(context.Background(), "sec", "pass123", session.RoleSecretary, "Maria Santos")
	require.NoError(t, err)

	e := echo.New()
	Register(e, &Deps{
		DB:          db,
		Logger:      slog.New(slog.NewJSONHandler(io.Discard, nil)),
		AuthHandler: &handlers.AuthHandler{Svc: svc},
		CSRF:        csrf.Config{EnforceSameOrigin: true},
	})
	return &client{t: t, e: e, cookies: map[string]*http.Cookie{}}
}

func TestRegister_Health(t *testing.T) {
	c := newPortal(t)
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/health/live", "").Code)
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/health/ready", "").Code)
}

func TestRegister_PublicPages(t *testing.T) {
	c := newPortal(t)
	for _, p := range []string{"/", "/announcements", "/events", "/officials", "/spot-map", "/certificates", "/login"} {
		rec := c.do(http.MethodGet, p, "")
		assert.Equal(t, http.StatusOK, rec.Code, p)
	}
}

func TestRegister_DashboardWithoutSession(t *testing.T) {
	c := newPortal(t)

	for _, p := range []string{"/dashboard/bhw", "/dashboard/captain/reports", "/dashboard/unknown"} {
		rec := c.do(http.MethodGet, p, "")
		assert.Equal(t, http.StatusFound, rec.Code, p)
		assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation), p)
	}
}

func TestRegister_LoginDashboardLogout(t *testing.T) {
	c := newPortal(t)

	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/login", "").Code)
	require.NotEmpty(t, c.csrf)

	rec := c.do(http.MethodPost, "/login", `{"username":"sec","password":"pass123"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"redirect":"/dashboard/secretary"`)
	require.Contains(t, c.cookies, session.KeyAuthToken)

	rec = c.do(http.MethodGet, "/dashboard/secretary", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.Contains(t, rec.Body.String(), "Maria Santos")

	rec = c.do(http.MethodGet, "/dashboard/captain", "")
	assert.Equal(t, http.StatusFound, rec.Code)
	require.Contains(t, c.cookies, session.KeyAuthToken, "role mismatch keeps the session")

	rec = c.do(http.MethodPost, "/logout", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, c.cookies, session.KeyAuthToken)
	assert.NotContains(t, c.cookies, session.KeyUserData)

	rec = c.do(http.MethodGet, "/dashboard/secretary", "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get(echo.HeaderLocation))
}

func TestRegister_LoginRequiresCSRF(t *testing.T) {
	c := newPortal(t)

	rec := c.do(http.MethodPost, "/login", `{"username":"sec","password":"pass123"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.NotContains(t, c.cookies, session.KeyAuthToken)
}
