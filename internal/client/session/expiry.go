package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry returns when the current token expires. The exp claim of a JWT
// is read without verifying the signature (the server does that); for opaque
// tokens the expires_in of the last token response is used. ok is false when
// neither is known.
func (s *Session) TokenExpiry() (exp time.Time, ok bool) {
	token := s.tokens.Token()
	if token == "" {
		return time.Time{}, false
	}

	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err == nil && claims.ExpiresAt != nil {
		return claims.ExpiresAt.Time, true
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.expiresAt.IsZero() {
		return time.Time{}, false
	}
	return s.expiresAt, true
}

// NeedsRefresh reports whether the token expires within window of now.
func (s *Session) NeedsRefresh(now time.Time, window time.Duration) bool {
	exp, ok := s.TokenExpiry()
	return ok && exp.Sub(now) <= window
}
