package session

import (
	"encoding/json"
	"fmt"
)

// User is the stored profile of the signed-in principal.
type User struct {
	Role   string
	Fields map[string]any
}

// ParseUser decodes a stored session user. Anything but a JSON object is
// rejected; a missing or non-string role leaves Role empty.
func ParseUser(raw string) (*User, error) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSessionUser, err)
	}
	if fields == nil {
		return nil, fmt.Errorf("%w: not an object", ErrMalformedSessionUser)
	}

	role, _ := fields["role"].(string)
	return &User{Role: role, Fields: fields}, nil
}

// Field returns a string profile field, or "" when absent.
func (u *User) Field(key string) string {
	if u == nil {
		return ""
	}
	v, _ := u.Fields[key].(string)
	return v
}
