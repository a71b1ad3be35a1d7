package guardmw

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/barangay_portal/internal/events"
	"github.com/Skotchmaster/barangay_portal/internal/guard"
	"github.com/Skotchmaster/barangay_portal/internal/logging"
	"github.com/Skotchmaster/barangay_portal/internal/session"
	"github.com/Skotchmaster/barangay_portal/internal/storage"
)

// Context keys set on admitted requests.
const (
	CtxRole    = "role"
	CtxSubject = "userID"
	CtxUser    = "sessionUser"
)

type Config struct {
	Secure    bool
	Publisher events.Publisher
	Now       func() time.Time
}

func (cfg Config) now() time.Time {
	if cfg.Now != nil {
		return cfg.Now()
	}
	return time.Now()
}

func (cfg Config) publisher() events.Publisher {
	if cfg.Publisher != nil {
		return cfg.Publisher
	}
	return events.Nop{}
}

// AuthGuard applies the site-wide policy: dashboard paths need a fresh
// credential, the rest of the site passes through.
func AuthGuard(cfg Config) echo.MiddlewareFunc {
	return cfg.middleware("auth_guard", func(path string, st session.State) guard.Decision {
		return guard.ForPath(path, st)
	})
}

// PrivateRoute admits only sessions whose user holds one of roles.
func PrivateRoute(cfg Config, roles ...string) echo.MiddlewareFunc {
	allowed := append([]string(nil), roles...)
	return cfg.middleware("private_route", func(_ string, st session.State) guard.Decision {
		return guard.ForRoute(st, allowed)
	})
}

func (cfg Config) middleware(kind string, decide func(string, session.State) guard.Decision) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			path := c.Request().URL.Path
			l := logging.FromContext(ctx).With("guard", kind, "url", path)

			store := storage.NewCookies(c, cfg.Secure)
			st := session.CheckAt(ctx, store, cfg.now())
			dec := decide(path, st)

			if guard.Protected(path) {
				c.Response().Header().Set("Cache-Control", "no-store")
			}

			if dec.Action == guard.ActionAdmit {
				if st.Valid() {
					c.Set(CtxRole, st.Role())
					c.Set(CtxSubject, st.Claims.Subject)
					if st.User != nil {
						c.Set(CtxUser, st.User)
					}
				}
				return next(c)
			}

			cfg.deny(ctx, c, l, store, st, path, dec)
			return c.Redirect(http.StatusFound, dec.Path)
		}
	}
}

func (cfg Config) deny(ctx context.Context, c echo.Context, l *slog.Logger, store session.Storage, st session.State, path string, dec guard.Decision) {
	ev := events.Event{
		Path:      path,
		Role:      st.Role(),
		Subject:   st.Claims.Subject,
		Reason:    reason(dec.Reason),
		RequestID: c.Response().Header().Get(echo.HeaderXRequestID),
		At:        cfg.now().UTC(),
	}

	switch {
	case dec.ClearSession:
		if err := session.Clear(ctx, store); err != nil {
			l.Warn("session clear failed", "error", err)
		}
		ev.Type = events.TypeSessionClear
		l.Info("session cleared", "status", st.Status.String(), "reason", ev.Reason)
	case errors.Is(dec.Reason, session.ErrRoleMismatch):
		ev.Type = events.TypeAccessDenied
		l.Warn("access denied", "role", ev.Role, "reason", ev.Reason)
	default:
		l.Debug("redirect to login", "status", st.Status.String(), "reason", ev.Reason)
		return
	}

	if err := cfg.publisher().Publish(ctx, ev); err != nil {
		l.Warn("publish event failed", "type", ev.Type, "error", err)
	}
}

func reason(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
