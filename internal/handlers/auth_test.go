package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
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
	"github.com/Skotchmaster/barangay_portal/internal/events"
	"github.com/Skotchmaster/barangay_portal/internal/session"
)

type recordingPublisher struct {
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, ev events.Event) error {
	p.events = append(p.events, ev)
	return nil
}

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

func newAuthHandler(t *testing.T) (*AuthHandler, *recordingPublisher) {
	t.Helper()
	svc := &account.Service{
		Repo:     &account.GormRepo{DB: InitTestDB(t)},
		Secret:   []byte("test-jwt-secret"),
		TokenTTL: time.Hour,
	}
	_, err := svc.Register(context.Background(), "secretary", "pass123", session.RoleSecretary, "Maria Santos")
	require.NoError(t, err)

	pub := &recordingPublisher{}
	return &AuthHandler{Svc: svc, Publisher: pub}, pub
}

func postJSON(body string) (*http.Request, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req, httptest.NewRecorder()
}

func cookiesByName(rec *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, ck := range rec.Result().Cookies() {
		out[ck.Name] = ck
	}
	return out
}

func TestAuthHandler_Login(t *testing.T) {
	h, pub := newAuthHandler(t)
	e := echo.New()

	req, rec := postJSON(`{"username":"secretary","password":"pass123"}`)
	c := e.NewContext(req, rec)

	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Redirect string              `json:"redirect"`
		User     account.SessionUser `json:"user"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "/dashboard/secretary", body.Redirect)
	assert.Equal(t, session.RoleSecretary, body.User.Role)

	cookies := cookiesByName(rec)
	require.Contains(t, cookies, session.KeyAuthToken)
	require.Contains(t, cookies, session.KeyUserData)
	assert.True(t, cookies[session.KeyAuthToken].HttpOnly)

	raw, err := url.QueryUnescape(cookies[session.KeyUserData].Value)
	require.NoError(t, err)
	u, err := session.ParseUser(raw)
	require.NoError(t, err)
	assert.Equal(t, "Maria Santos", u.Field("full_name"))

	claims, err := session.DecodeCredential(cookies[session.KeyAuthToken].Value)
	require.NoError(t, err)
	assert.Equal(t, body.User.ID, claims.Subject)

	require.Len(t, pub.events, 1)
	assert.Equal(t, events.TypeLogin, pub.events[0].Type)
}

func TestAuthHandler_Login_Rejects(t *testing.T) {
	h, pub := newAuthHandler(t)
	e := echo.New()

	tests := []struct {
		name string
		body string
		code int
	}{
		{name: "wrong password", body: `{"username":"secretary","password":"nope"}`, code: http.StatusUnauthorized},
		{name: "unknown user", body: `{"username":"ghost","password":"pass123"}`, code: http.StatusUnauthorized},
		{name: "empty fields", body: `{}`, code: http.StatusBadRequest},
		{name: "bad json", body: `{`, code: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := postJSON(tt.body)
			err := h.Login(e.NewContext(req, rec))

			var he *echo.HTTPError
			require.ErrorAs(t, err, &he)
			assert.Equal(t, tt.code, he.Code)
			assert.Empty(t, rec.Result().Cookies())
		})
	}
	assert.Empty(t, pub.events)
}

func TestAuthHandler_LogOut(t *testing.T) {
	h, pub := newAuthHandler(t)
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(&http.Cookie{Name: session.KeyAuthToken, Value: "a.b.c"})
	req.AddCookie(&http.Cookie{Name: session.KeyUser, Value: url.QueryEscape(`{"role":"barangay_captain"}`)})
	rec := httptest.NewRecorder()

	require.NoError(t, h.LogOut(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"redirect":"/login"`)

	cookies := cookiesByName(rec)
	for _, k := range []string{session.KeyAuthToken, session.KeyUser} {
		require.Contains(t, cookies, k)
		assert.Equal(t, -1, cookies[k].MaxAge)
	}
	assert.NotContains(t, cookies, session.KeyToken)

	require.Len(t, pub.events, 1)
	assert.Equal(t, events.TypeLogout, pub.events[0].Type)
}

func TestAuthHandler_LogOut_WithoutSession(t *testing.T) {
	h, pub := newAuthHandler(t)
	e := echo.New()

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	rec := httptest.NewRecorder()

	require.NoError(t, h.LogOut(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Result().Cookies())
	assert.Empty(t, pub.events)
}
