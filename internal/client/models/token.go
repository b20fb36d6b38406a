package models

import (
	"math"
	"time"
)

// maxExpiresIn is the largest expires_in that fits a time.Duration.
const maxExpiresIn = math.MaxInt64 / int64(time.Second)

// LoginResponse is returned by login, refresh and google-login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// ExpiresAt converts the relative expires_in (seconds) into an absolute time
// measured from issuedAt. A non-positive expires_in yields the zero time;
// values too large for a time.Duration are clamped.
func (r LoginResponse) ExpiresAt(issuedAt time.Time) time.Time {
	if r.ExpiresIn <= 0 {
		return time.Time{}
	}
	return issuedAt.Add(time.Duration(min(r.ExpiresIn, maxExpiresIn)) * time.Second)
}
