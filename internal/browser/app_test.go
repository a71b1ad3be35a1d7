package browser

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/barangay_portal/internal/guard"
	"github.com/Skotchmaster/barangay_portal/internal/session"
	"github.com/Skotchmaster/barangay_portal/internal/storage"
)

var now = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return now }

func signIn(t *testing.T, store session.Storage, exp time.Time, role string) {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"exp": exp.Unix(), "role": role}).
		SignedString([]byte("test-secret"))
	require.NoError(t, err)
	require.NoError(t, session.Save(context.Background(), store, tok, `{"role":"`+role+`"}`))
}

func presentKeys(t *testing.T, store session.Storage) []string {
	t.Helper()
	var keys []string
	for _, k := range session.Keys() {
		_, ok, err := store.Get(context.Background(), k)
		require.NoError(t, err)
		if ok {
			keys = append(keys, k)
		}
	}
	return keys
}

func openApp(t *testing.T, origin *storage.Origin, start string) (*Tab, *App) {
	t.Helper()
	store := origin.Open()
	t.Cleanup(store.Close)

	tab := NewTab(store, start)
	app := NewApp(tab, WithClock(clock))
	t.Cleanup(app.Stop)
	return tab, app
}

func TestTab_History(t *testing.T) {
	tab := NewTab(storage.NewOrigin("o", nil).Open(), "")
	tab.Navigate("/a", false)
	tab.Navigate("/b", false)
	tab.Navigate("/c", true)

	entries, idx := tab.Entries()
	assert.Equal(t, []string{"/", "/a", "/c"}, entries)
	assert.Equal(t, 2, idx)

	var seen []string
	stop := tab.OnLocation(func(p string) { seen = append(seen, p) })
	require.True(t, tab.Back())
	require.True(t, tab.Back())
	assert.False(t, tab.Back())
	require.True(t, tab.Forward())
	stop()
	tab.Forward()

	assert.Equal(t, []string{"/a", "/", "/a"}, seen)
	assert.Equal(t, "/c", tab.Path())

	tab.PushState("/d")
	entries, _ = tab.Entries()
	assert.Equal(t, []string{"/", "/a", "/c", "/d"}, entries)
}

func TestApp_MissingCredentialRedirectsWithoutBackEntry(t *testing.T) {
	tab, app := openApp(t, storage.NewOrigin("barangay.local", nil), "/dashboard/captain")
	app.Start(context.Background())

	assert.Equal(t, guard.LoginPath, tab.Path())
	entries, _ := tab.Entries()
	assert.Equal(t, []string{guard.LoginPath}, entries)
	assert.Equal(t, guard.StatusAdmitted, app.Status())
}

func TestApp_ValidHealthWorkerSeesDashboard(t *testing.T) {
	origin := storage.NewOrigin("barangay.local", nil)
	tab, app := openApp(t, origin, "/dashboard/bhw")
	signIn(t, tab.Storage(), now.Add(time.Hour), session.RoleHealthWorker)

	app.Start(context.Background())

	assert.Equal(t, "/dashboard/bhw", tab.Path())
	assert.Equal(t, guard.StatusAdmitted, app.Status())
}

func TestApp_ExpiredCredentialIsWipedAndRedirected(t *testing.T) {
	origin := storage.NewOrigin("barangay.local", nil)
	tab, app := openApp(t, origin, "/dashboard/bhw")
	signIn(t, tab.Storage(), now.Add(-10*time.Second), session.RoleHealthWorker)
	require.NoError(t, tab.Storage().Set(context.Background(), session.KeyToken, "legacy"))
	require.NoError(t, tab.Storage().Set(context.Background(), session.KeyUser, `{"role":"barangay_health_worker"}`))

	app.Start(context.Background())

	assert.Empty(t, presentKeys(t, tab.Storage()))
	assert.Equal(t, guard.LoginPath, tab.Path())
}

func TestApp_RoleMismatchKeepsSession(t *testing.T) {
	origin := storage.NewOrigin("barangay.local", nil)
	tab, app := openApp(t, origin, "/")
	signIn(t, tab.Storage(), now.Add(time.Hour), session.RoleCouncilor)
	app.Start(context.Background())

	tab.Navigate("/dashboard/captain", false)

	assert.Equal(t, guard.LoginPath, tab.Path())
	entries, _ := tab.Entries()
	assert.Equal(t, []string{"/", guard.LoginPath}, entries)
	assert.ElementsMatch(t, []string{session.KeyAuthToken, session.KeyUserData}, presentKeys(t, tab.Storage()))

	tab.Navigate("/dashboard/councilor", false)
	assert.Equal(t, "/dashboard/councilor", tab.Path())
	assert.Equal(t, guard.StatusAdmitted, app.Status())
}

func TestApp_CrossTabLogout(t *testing.T) {
	origin := storage.NewOrigin("barangay.local", nil)
	dash, dashApp := openApp(t, origin, "/dashboard/captain")
	other, otherApp := openApp(t, origin, "/")
	signIn(t, other.Storage(), now.Add(time.Hour), session.RoleCaptain)

	dashApp.Start(context.Background())
	otherApp.Start(context.Background())
	require.Equal(t, guard.StatusAdmitted, dashApp.Status())
	require.Equal(t, "/dashboard/captain", dash.Path())

	require.NoError(t, session.Clear(context.Background(), other.Storage()))

	assert.Equal(t, guard.LoginPath, dash.Path())
	assert.Equal(t, "/", other.Path())
}

func TestApp_BackButtonAfterLogout(t *testing.T) {
	origin := storage.NewOrigin("barangay.local", nil)
	tab, app := openApp(t, origin, guard.LoginPath)
	signIn(t, tab.Storage(), now.Add(time.Hour), session.RoleSecretary)
	app.Start(context.Background())

	tab.Navigate("/dashboard/secretary", false)
	require.Equal(t, guard.StatusAdmitted, app.Status())
	tab.Navigate("/announcements", false)

	require.NoError(t, session.Clear(context.Background(), tab.Storage()))
	require.True(t, tab.Back())

	assert.Equal(t, guard.LoginPath, tab.Path())
	entries, idx := tab.Entries()
	assert.Equal(t, []string{guard.LoginPath, "/dashboard/secretary", guard.LoginPath}, entries)
	assert.Equal(t, 2, idx)

	require.True(t, tab.Back())
	assert.Equal(t, guard.LoginPath, tab.Path())
}

func TestApp_StopDetachesEverything(t *testing.T) {
	origin := storage.NewOrigin("barangay.local", nil)
	tab, app := openApp(t, origin, "/")
	store := tab.Storage().(*storage.Tab)
	signIn(t, store, now.Add(time.Hour), session.RoleCaptain)

	app.Start(context.Background())
	tab.Navigate("/dashboard/captain", false)
	require.Equal(t, 2, store.Listeners())
	require.Equal(t, 1, tab.pop.len())
	require.Equal(t, 1, tab.loc.len())

	app.Stop()
	assert.Equal(t, 0, store.Listeners())
	assert.Equal(t, 0, tab.pop.len())
	assert.Equal(t, 0, tab.loc.len())
}
