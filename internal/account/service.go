package account

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/barangay_portal/internal/hash"
	"github.com/Skotchmaster/barangay_portal/internal/logging"
	"github.com/Skotchmaster/barangay_portal/internal/session"
	"github.com/Skotchmaster/barangay_portal/internal/tokens"
)

var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

type Service struct {
	Repo     *GormRepo
	Secret   []byte
	TokenTTL time.Duration
	Now      func() time.Time
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      SessionUser
	// UserJSON is the serialized User, ready for the userData key.
	UserJSON string
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) Register(ctx context.Context, username, password, role, fullName string) (*User, error) {
	l := logging.FromContext(ctx).With("svc", "account.register", "username", username)

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}
	if !session.ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("register_error", "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	u := &User{
		Username:     username,
		PasswordHash: pwHash,
		Role:         role,
		FullName:     fullName,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, ErrUserExists) {
			l.Warn("register_error", "reason", "user already exist")
		} else {
			l.Error("register_error", "error", err)
		}
		return nil, err
	}

	l.Info("user registered", "role", role)
	return u, nil
}

func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "account.login", "username", username)

	if strings.TrimSpace(username) == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	u, err := s.Repo.ByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			l.Warn("login failed", "reason", "unknown user")
			return nil, ErrInvalidCredentials
		}
		l.Error("login failed", "error", err)
		return nil, err
	}
	if !hash.CheckPassword(u.PasswordHash, password) {
		l.Warn("login failed", "reason", "wrong password")
		return nil, ErrInvalidCredentials
	}

	issued := s.now()
	exp := issued.Add(s.TokenTTL)
	tok, err := tokens.Issue(s.Secret, u.ID.String(), u.Role, issued, exp)
	if err != nil {
		l.Error("login failed", "reason", "cannot sign token", "error", err)
		return nil, err
	}

	su := u.SessionUser()
	b, err := json.Marshal(su)
	if err != nil {
		return nil, fmt.Errorf("encode session user: %w", err)
	}

	return &LoginResult{
		Token:     tok,
		ExpiresAt: exp,
		User:      su,
		UserJSON:  string(b),
	}, nil
}
