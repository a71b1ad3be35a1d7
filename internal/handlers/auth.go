package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/barangay_portal/internal/account"
	"github.com/Skotchmaster/barangay_portal/internal/events"
	"github.com/Skotchmaster/barangay_portal/internal/guard"
	"github.com/Skotchmaster/barangay_portal/internal/logging"
	"github.com/Skotchmaster/barangay_portal/internal/routes"
	"github.com/Skotchmaster/barangay_portal/internal/session"
	"github.com/Skotchmaster/barangay_portal/internal/storage"
)

type AuthHandler struct {
	Svc       *account.Service
	Publisher events.Publisher
	Secure    bool
}

type loginRequest struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

func (h *AuthHandler) publisher() events.Publisher {
	if h.Publisher != nil {
		return h.Publisher
	}
	return events.Nop{}
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, account.ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, "username and password are required")
		case errors.Is(err, account.ErrInvalidCredentials):
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid username or password")
		default:
			l.Error("login_error", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
		}
	}

	store := storage.NewCookies(c, h.Secure)
	if err := session.Save(ctx, store, res.Token, res.UserJSON); err != nil {
		l.Error("login_error", "status", 500, "reason", "cannot store session", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "login failed")
	}

	if err := h.publisher().Publish(ctx, events.Event{
		Type:      events.TypeLogin,
		Role:      res.User.Role,
		Subject:   res.User.ID,
		RequestID: c.Response().Header().Get(echo.HeaderXRequestID),
		At:        time.Now().UTC(),
	}); err != nil {
		l.Warn("publish event failed", "type", events.TypeLogin, "error", err)
	}

	l.Info("login_successful", "role", res.User.Role)
	return c.JSON(http.StatusOK, echo.Map{
		"user":       res.User,
		"expires_at": res.ExpiresAt.UTC(),
		"redirect":   routes.HomeFor(res.User.Role),
	})
}

// LogOut clears every session key. It succeeds without a session too.
func (h *AuthHandler) LogOut(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_logout")

	store := storage.NewCookies(c, h.Secure)
	st := session.Check(ctx, store)

	if err := session.Clear(ctx, store); err != nil {
		l.Error("logout_failed", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "logout failed")
	}

	if st.Status != session.StatusMissing {
		if err := h.publisher().Publish(ctx, events.Event{
			Type:      events.TypeLogout,
			Role:      st.Role(),
			Subject:   st.Claims.Subject,
			RequestID: c.Response().Header().Get(echo.HeaderXRequestID),
			At:        time.Now().UTC(),
		}); err != nil {
			l.Warn("publish event failed", "type", events.TypeLogout, "error", err)
		}
	}

	l.Info("successful_logout")
	return c.JSON(http.StatusOK, echo.Map{
		"message":  "logged out",
		"redirect": guard.LoginPath,
	})
}
