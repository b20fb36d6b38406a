// Package common contains shared constants and small helpers used across
// the gophtodo client packages.
package common

const (
	// AuthorizationHeaderName carries the bearer credential on outbound requests.
	AuthorizationHeaderName = "Authorization"

	// BearerScheme prefixes the token in the Authorization header.
	BearerScheme = "Bearer"

	// TokenStorageKey is the fixed metadata key holding the persisted token.
	TokenStorageKey = "auth_token"
)

// BearerValue formats token as an Authorization header value.
func BearerValue(token string) string {
	return BearerScheme + " " + token
}
