package domain

import (
	"strings"
	"time"
)

// Principal is an authenticated operator as asserted by the identity service.
type Principal struct {
	Subject   string
	Email     string
	Superuser bool
	SessionID string
	ExpiresAt time.Time
}

// NormalizedEmail is the directory lookup key.
func (p Principal) NormalizedEmail() string {
	return strings.ToLower(strings.TrimSpace(p.Email))
}
