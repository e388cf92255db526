// Package common contains shared constants and sentinel errors used across
// the daleavatar backend.
package common

const (
	// AuthorizationHeaderName carries the bearer token on inbound requests.
	AuthorizationHeaderName = "Authorization"

	// BearerScheme is the authentication scheme expected in AuthorizationHeaderName.
	BearerScheme = "Bearer"

	// ServiceName is reported by the health endpoint.
	ServiceName = "daleavatar-backend"
)
