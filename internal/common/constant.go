// Package common contains shared constants and sentinel errors used across
// gophauth components.
package common

// AuthorizationHeaderName is the HTTP header and gRPC metadata key that
// carries bearer tokens.
const AuthorizationHeaderName = "authorization"

// BearerScheme prefixes the token inside the authorization value.
const BearerScheme = "Bearer"

// Machine-readable error codes returned to clients.
const (
	CodeAccessDenied       = "ACCESS_DENIED"
	CodePermissionDenied   = "PERMISSION_DENIED"
	CodeEntityNotFound     = "ENTITY_NOT_FOUND"
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodeCryptoError        = "CRYPTO_ERROR"
	CodeMissingToken       = "MISSING_TOKEN"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeExpiredToken       = "EXPIRED_TOKEN"
	CodeBadRequest         = "BAD_REQUEST"
	CodeInternal           = "INTERNAL_ERROR"
	CodePasswordIsCurrent  = "CP001"
	CodePasswordIsPrevious = "CP002"
)
