package model

import "time"

// Role is the portal role carried by an authenticated session.
type Role string

// Portal roles. RoleNone is the zero value for sessions whose role could not
// be determined; it authorizes nothing.
const (
	RoleNone    Role = ""
	RoleOfficer Role = "officer"
	RoleAdmin   Role = "admin"
)

// Session is the ephemeral identity resolved for the current caller.
type Session struct {
	ExpiresAt time.Time
	Subject   string
	Role      Role
}

// Valid reports whether the session carries a subject and has not expired.
func (s *Session) Valid() bool {
	if s == nil || s.Subject == "" {
		return false
	}
	return s.ExpiresAt.IsZero() || time.Now().Before(s.ExpiresAt)
}
