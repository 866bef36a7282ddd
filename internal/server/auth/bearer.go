package auth

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/common"
)

// ExtractFromRequest returns the bearer token of r's Authorization header.
func ExtractFromRequest(r *http.Request) (string, error) {
	return ExtractBearer(r.Header.Get(common.AuthorizationHeaderName))
}

// ExtractBearer parses "Bearer <token>" (scheme case-insensitive) and fails
// with common.ErrMissingToken when the value is absent or malformed.
func ExtractBearer(value string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(value), " ")
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", common.ErrMissingToken
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", common.ErrMissingToken
	}
	return token, nil
}

// BearerValue formats token for an Authorization header.
func BearerValue(token string) string {
	return common.BearerScheme + " " + token
}
