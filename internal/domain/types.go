package domain

import (
	"errors"
	"time"
)

type UserID string

// Millis is a point in time expressed as milliseconds since the Unix epoch.
type Millis int64

// MillisOf converts a time.Time into Millis.
func MillisOf(t time.Time) Millis {
	return Millis(t.UnixMilli())
}

// Time returns the instant in the given location (UTC when loc is nil).
func (m Millis) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.UnixMilli(int64(m)).In(loc)
}

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

type Role string

const (
	RoleUser   Role = "user"
	RoleModel  Role = "model"
	RoleSystem Role = "system"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleModel, RoleSystem:
		return true
	}
	return false
}
