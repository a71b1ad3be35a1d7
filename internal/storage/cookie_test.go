package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/barangay_portal/internal/session"
)

func TestCookies_ReadWriteRemove(t *testing.T) {
	ctx := context.Background()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/dashboard/captain", nil)
	req.AddCookie(&http.Cookie{Name: session.KeyToken, Value: "legacy"})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	s := NewCookies(c, false)

	v, ok, err := s.Get(ctx, session.KeyToken)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "legacy", v)

	user := `{"role":"barangay_captain","full_name":"Jose Rizal"}`
	require.NoError(t, session.Save(ctx, s, "tok", user))

	got, ok, err := session.ReadSessionUser(ctx, s)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, user, got)

	_, ok, err = s.Get(ctx, session.KeyToken)
	require.NoError(t, err)
	assert.False(t, ok)

	cookies := map[string]*http.Cookie{}
	for _, ck := range rec.Result().Cookies() {
		cookies[ck.Name] = ck
	}
	require.Contains(t, cookies, session.KeyUserData)
	assert.True(t, cookies[session.KeyUserData].HttpOnly)
	require.Contains(t, cookies, session.KeyToken)
	assert.Equal(t, -1, cookies[session.KeyToken].MaxAge)
	assert.NotContains(t, cookies, session.KeyUser)
}

func TestCookies_EscapedValuesRoundTripThroughRequest(t *testing.T) {
	ctx := context.Background()
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodPost, "/login", nil), rec)
	user := `{"role":"barangay_secretary","full_name":"Maria Clara"}`
	require.NoError(t, NewCookies(c, false).Set(ctx, session.KeyUserData, user))

	next := httptest.NewRequest(http.MethodGet, "/dashboard/secretary", nil)
	for _, ck := range rec.Result().Cookies() {
		next.AddCookie(ck)
	}
	s := NewCookies(e.NewContext(next, httptest.NewRecorder()), false)

	v, ok, err := s.Get(ctx, session.KeyUserData)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, user, v)
}
