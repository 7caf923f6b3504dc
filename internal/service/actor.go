package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/lshigami/testhall/internal/scoring"
)

// Actor is the authenticated caller as established by the auth middleware.
type Actor struct {
	UserID uint
	Role   scoring.Role
}

func (a Actor) IsStudent() bool { return a.Role == scoring.RoleStudent }

// IsStaff reports whether the caller authors or supervises tests.
func (a Actor) IsStaff() bool {
	return a.Role == scoring.RoleTeacher || a.Role == scoring.RoleAdmin
}

// canSee reports whether the caller may read data owned by userID.
func (a Actor) canSee(userID uint) bool {
	return a.UserID == userID || a.IsStaff()
}

// Clock returns the current time. Services take it as a dependency so tests
// can pin the time.
type Clock func() time.Time

func SystemClock() Clock {
	return func() time.Time { return time.Now().UTC() }
}

var startTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseStartTime reads the client-supplied start of an attempt. Times
// without a zone are taken as UTC.
func ParseStartTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidStartTime)
	}
	for _, layout := range startTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidStartTime, raw)
}
