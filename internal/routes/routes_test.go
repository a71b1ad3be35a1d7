package routes

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Skotchmaster/barangay_portal/internal/session"
)

func TestLookup(t *testing.T) {
	r, ok := Lookup("/dashboard/captain")
	assert.True(t, ok)
	assert.Equal(t, []string{session.RoleCaptain}, r.Roles)

	r, ok = Lookup("/dashboard/bhw/residents/12")
	assert.True(t, ok)
	assert.Equal(t, "/dashboard/bhw", r.Path)

	_, ok = Lookup("/dashboard/captainx")
	assert.False(t, ok)
	_, ok = Lookup("/announcements")
	assert.False(t, ok)
}

func TestHomeFor(t *testing.T) {
	assert.Equal(t, "/dashboard/councilor", HomeFor(session.RoleCouncilor))
	assert.Equal(t, "/dashboard/bhw", HomeFor(session.RoleHealthWorker))
	assert.Equal(t, "/", HomeFor(session.RoleResident))
	assert.Equal(t, "/", HomeFor(""))
}
