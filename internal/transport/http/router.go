package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/Skotchmaster/barangay_portal/internal/guard"
	"github.com/Skotchmaster/barangay_portal/internal/handlers"
	"github.com/Skotchmaster/barangay_portal/internal/middleware/csrf"
	guardmw "github.com/Skotchmaster/barangay_portal/internal/middleware/guard"
	loggingmw "github.com/Skotchmaster/barangay_portal/internal/middleware/logging"
	"github.com/Skotchmaster/barangay_portal/internal/routes"
)

type Deps struct {
	DB          *gorm.DB
	Logger      *slog.Logger
	AuthHandler *handlers.AuthHandler
	Guard       guardmw.Config
	CSRF        csrf.Config
}

func Register(e *echo.Echo, d *Deps) {
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover(), echomw.RequestID())
	if d.Logger != nil {
		e.Use(loggingmw.RequestLogger(d.Logger))
	}

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", d.ready)

	site := e.Group("", csrf.Middleware(d.CSRF), guardmw.AuthGuard(d.Guard))

	for _, r := range routes.Public {
		site.GET(r.Path, handlers.Public(r))
	}

	site.GET(guard.LoginPath, handlers.LoginPage)
	site.POST(guard.LoginPath, d.AuthHandler.Login)
	site.POST("/logout", d.AuthHandler.LogOut)

	for _, r := range routes.Dashboards {
		private := guardmw.PrivateRoute(d.Guard, r.Roles...)
		site.GET(r.Path, handlers.Dashboard(r), private)
		site.GET(r.Path+"/*", handlers.Dashboard(r), private)
	}
}

func (d *Deps) ready(c echo.Context) error {
	if d.DB == nil {
		return c.NoContent(http.StatusOK)
	}
	sqlDB, err := d.DB.DB()
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "db unavailable")
	}
	if err := sqlDB.PingContext(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "db unavailable")
	}
	return c.NoContent(http.StatusOK)
}
