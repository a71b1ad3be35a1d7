package session

import "errors"

var (
	ErrMissingCredential    = errors.New("missing credential")
	ErrExpiredCredential    = errors.New("expired credential")
	ErrMalformedCredential  = errors.New("malformed credential")
	ErrMalformedSessionUser = errors.New("malformed session user")
	ErrRoleMismatch         = errors.New("role not allowed")
	ErrStorage              = errors.New("session storage unavailable")
)
