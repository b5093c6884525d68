// Package common contains constants, sentinel errors and small helpers shared
// by the agentdeck client, store and relay.
package common

const (
	// AuthorizationHeader carries the bearer credential on outbound calls.
	AuthorizationHeader = "Authorization"

	// BearerScheme prefixes the token inside AuthorizationHeader.
	BearerScheme = "Bearer"

	// TokenKey is the durable slot holding the opaque bearer token.
	TokenKey = "auth_token"

	// PreferencesKey is the durable slot holding JSON-encoded user
	// preferences written while no remote store is configured.
	PreferencesKey = "user_preferences"
)

// BearerValue formats token for the Authorization header.
func BearerValue(token string) string {
	return BearerScheme + " " + token
}
