// Package tokens inspects bearer tokens issued by the backend without
// verifying them. The client cannot check signatures; it only reads claims
// to keep provisional credentials out of the session and to skip a
// round-trip for a stored token that has already expired.
package tokens

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RegistrationStep is the "step" claim value carried by provisional credentials.
const RegistrationStep = "register_step2"

// Claims is what the client reads from a backend token.
type Claims struct {
	jwt.RegisteredClaims
	Step string `json:"step,omitempty"`
}

// Info summarizes a token. Opaque (non-JWT) tokens yield a zero Info with
// Parsed false; callers must then treat them as opaque.
type Info struct {
	Parsed    bool
	Step      string
	ExpiresAt time.Time
}

// Inspect parses token without verifying its signature.
func Inspect(token string) Info {
	var claims Claims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return Info{}
	}
	info := Info{Parsed: true, Step: claims.Step}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info
}

// IsProvisional reports whether the token is scoped to registration phase 2.
func (i Info) IsProvisional() bool {
	return i.Step != ""
}

// Expired reports whether the token carries an expiry that is not after now.
func (i Info) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}
