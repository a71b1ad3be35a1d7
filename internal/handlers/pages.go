package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	guardmw "github.com/Skotchmaster/barangay_portal/internal/middleware/guard"
	"github.com/Skotchmaster/barangay_portal/internal/routes"
	"github.com/Skotchmaster/barangay_portal/internal/session"
)

// Page describes a route to the front end. Layout is not this service's
// concern.
type Page struct {
	Path  string `json:"path"`
	Title string `json:"title"`
}

func Public(r routes.Route) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, Page{Path: r.Path, Title: r.Title})
	}
}

func LoginPage(c echo.Context) error {
	return c.JSON(http.StatusOK, Page{Path: c.Request().URL.Path, Title: "Sign in"})
}

func Dashboard(r routes.Route) echo.HandlerFunc {
	return func(c echo.Context) error {
		body := echo.Map{
			"path":  r.Path,
			"title": r.Title,
			"role":  c.Get(guardmw.CtxRole),
		}
		if u, ok := c.Get(guardmw.CtxUser).(*session.User); ok {
			body["user"] = u.Fields
		}
		return c.JSON(http.StatusOK, body)
	}
}
