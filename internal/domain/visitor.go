package domain

import (
	"strings"

	"github.com/google/uuid"
)

const (
	visitorTokenPrefix = "anon-"
	maxVisitorToken    = 100
)

// NewVisitorToken mints an opaque visitor token backed by a full UUIDv4.
func NewVisitorToken() string {
	return visitorTokenPrefix + uuid.NewString()
}

// ValidVisitorToken accepts tokens that fit the stored column and only use
// URL-safe characters. Anything else is replaced by a freshly minted token.
func ValidVisitorToken(token string) bool {
	if token == "" || len(token) > maxVisitorToken {
		return false
	}
	for _, r := range token {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune("-_.~", r):
		default:
			return false
		}
	}
	return true
}
