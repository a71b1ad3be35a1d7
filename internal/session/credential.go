package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var segmentParser = jwt.NewParser(jwt.WithPaddingAllowed())

// Claims is the typed subset of a credential payload the guard relies on.
type Claims struct {
	// Exp is the exp claim as sent, in seconds. It may be fractional.
	Exp float64
	// ExpiresAt is Exp as a time, zero when Exp is outside time.Time's range.
	ExpiresAt time.Time
	Subject   string
	Role      string
	Raw       jwt.MapClaims
}

// Expired reports whether exp*1000 is not after now in Unix milliseconds.
func (c Claims) Expired(now time.Time) bool {
	return c.Exp*1000 <= float64(now.UnixMilli())
}

func expClaim(raw jwt.MapClaims) (float64, error) {
	v, ok := raw["exp"]
	if !ok || v == nil {
		return 0, errors.New("exp claim missing")
	}
	switch exp := v.(type) {
	case float64:
		return exp, nil
	case json.Number:
		return exp.Float64()
	default:
		return 0, fmt.Errorf("exp is %T, not a number", v)
	}
}

func expTime(exp float64) time.Time {
	ms := exp * 1000
	if ms >= float64(math.MaxInt64) || ms <= float64(math.MinInt64) {
		return time.Time{}
	}
	return time.UnixMilli(int64(ms))
}

// DecodeCredential decodes the payload segment of a dot-delimited token.
// The signature is not verified: this is a freshness and shape check only.
func DecodeCredential(token string) (Claims, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return Claims{}, fmt.Errorf("%w: expected 3 segments, got %d", ErrMalformedCredential, len(parts))
	}

	payload, err := segmentParser.DecodeSegment(parts[1])
	if err != nil {
		return Claims{}, fmt.Errorf("%w: decode payload: %v", ErrMalformedCredential, err)
	}

	var raw jwt.MapClaims
	if err := json.Unmarshal(payload, &raw); err != nil {
		return Claims{}, fmt.Errorf("%w: parse payload: %v", ErrMalformedCredential, err)
	}
	if raw == nil {
		return Claims{}, fmt.Errorf("%w: payload is not an object", ErrMalformedCredential)
	}

	exp, err := expClaim(raw)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformedCredential, err)
	}

	claims := Claims{Exp: exp, ExpiresAt: expTime(exp), Raw: raw}
	if sub, err := raw.GetSubject(); err == nil {
		claims.Subject = sub
	}
	if role, ok := raw["role"].(string); ok {
		claims.Role = role
	}
	return claims, nil
}
