package routes

import (
	"strings"

	"github.com/Skotchmaster/barangay_portal/internal/session"
)

type Route struct {
	Path  string
	Title string
	Roles []string
}

var Public = []Route{
	{Path: "/", Title: "Home"},
	{Path: "/announcements", Title: "Announcements"},
	{Path: "/events", Title: "Events"},
	{Path: "/officials", Title: "Barangay Officials"},
	{Path: "/spot-map", Title: "Spot Map"},
	{Path: "/certificates", Title: "Certificate Requests"},
}

var Dashboards = []Route{
	{Path: "/dashboard/bhw", Title: "Health Worker Dashboard", Roles: []string{session.RoleHealthWorker}},
	{Path: "/dashboard/councilor", Title: "Councilor Dashboard", Roles: []string{session.RoleCouncilor}},
	{Path: "/dashboard/secretary", Title: "Secretary Dashboard", Roles: []string{session.RoleSecretary}},
	{Path: "/dashboard/captain", Title: "Captain Dashboard", Roles: []string{session.RoleCaptain}},
}

// Lookup finds the dashboard owning path, including its sub-pages.
func Lookup(path string) (Route, bool) {
	for _, r := range Dashboards {
		if path == r.Path || strings.HasPrefix(path, r.Path+"/") {
			return r, true
		}
	}
	return Route{}, false
}

// HomeFor returns where a freshly signed-in user of role should land.
func HomeFor(role string) string {
	for _, r := range Dashboards {
		for _, allowed := range r.Roles {
			if allowed == role {
				return r.Path
			}
		}
	}
	return "/"
}
