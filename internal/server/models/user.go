package models

import (
	"time"

	"github.com/goccy/go-json"
)

// User is a row of the users table. PasswordHash is never serialized.
type User struct {
	ID              int64           `json:"id"`
	Email           string          `json:"email"`
	Name            *string         `json:"name"`
	PasswordHash    string          `json:"-"`
	ProfileSettings json.RawMessage `json:"profile_settings"`
	CreatedAt       time.Time       `json:"created_at"`
}

// ProfileUpdate carries the optional fields of a profile change. A nil
// field is left as is; ProfileSettings of "null" clears the settings.
type ProfileUpdate struct {
	Name            *string
	ProfileSettings json.RawMessage
}

// Empty reports whether the update would change nothing.
func (u ProfileUpdate) Empty() bool {
	return u.Name == nil && len(u.ProfileSettings) == 0
}
