package storage

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
)

// Cookies exposes a request's cookies as a store. Writes go out as
// Set-Cookie headers and are visible to later reads in the same request.
type Cookies struct {
	c       echo.Context
	secure  bool
	pending map[string]*string
}

func NewCookies(c echo.Context, secure bool) *Cookies {
	return &Cookies{c: c, secure: secure, pending: make(map[string]*string)}
}

func (s *Cookies) Get(_ context.Context, key string) (string, bool, error) {
	if v, ok := s.pending[key]; ok {
		if v == nil {
			return "", false, nil
		}
		return *v, true, nil
	}

	ck, err := s.c.Cookie(key)
	if err != nil || ck.Value == "" {
		return "", false, nil
	}
	v, err := url.QueryUnescape(ck.Value)
	if err != nil {
		// undecodable cookies are handed to the parser as-is and fail there
		return ck.Value, true, nil
	}
	return v, true, nil
}

func (s *Cookies) Set(_ context.Context, key, value string) error {
	s.c.SetCookie(CreateCookie(key, url.QueryEscape(value), "/", time.Time{}, s.secure))
	s.pending[key] = &value
	return nil
}

func (s *Cookies) Remove(ctx context.Context, key string) error {
	if _, ok, _ := s.Get(ctx, key); !ok {
		return nil
	}
	s.c.SetCookie(DeleteCookie(key, "/", s.secure))
	s.pending[key] = nil
	return nil
}

func CreateCookie(name, value, path string, expires time.Time, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

func DeleteCookie(name, path string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}
