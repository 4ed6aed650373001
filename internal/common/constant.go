// Package common contains constants shared by the client packages.
package common

const (
	// TokenMetadataKey is the single key under which the bearer token is
	// persisted. Absence of the key means "logged out".
	TokenMetadataKey = "token"

	// RequestIDHeaderName carries a per-request correlation id.
	RequestIDHeaderName = "X-Request-ID"
)
