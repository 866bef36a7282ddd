// Package common defines shared constants and sentinel errors used across
// client and server layers of gophauth. Callers should use errors.Is to
// match these values.
package common

import (
	"errors"
)

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal       = errors.New("internal error")
	ErrAccessDenied     = errors.New("access denied")
	ErrEntityNotFound   = errors.New("entity not found")
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrPermissionDenied = errors.New("permission denied")
	ErrBadRequest       = errors.New("bad request")

	// Crypto errors (malformed key material or ciphertext).
	ErrCrypto = errors.New("crypto error")

	// Token errors.
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// CodedError attaches a machine-readable code to an error while keeping the
// wrapped sentinel matchable with errors.Is.
type CodedError struct {
	Err  error
	Code string
}

func (e *CodedError) Error() string {
	return e.Code + ": " + e.Err.Error()
}

func (e *CodedError) Unwrap() error {
	return e.Err
}

// WithCode wraps err with code. A nil err stays nil.
func WithCode(err error, code string) error {
	if err == nil {
		return nil
	}
	return &CodedError{Err: err, Code: code}
}

// CodeOf returns the code attached with WithCode or, failing that, the
// default code of the first matching sentinel.
func CodeOf(err error) string {
	var ce *CodedError
	if errors.As(err, &ce) {
		return ce.Code
	}

	switch {
	case errors.Is(err, ErrAccessDenied):
		return CodeAccessDenied
	case errors.Is(err, ErrPermissionDenied):
		return CodePermissionDenied
	case errors.Is(err, ErrEntityNotFound), errors.Is(err, ErrorNotFound):
		return CodeEntityNotFound
	case errors.Is(err, ErrUnauthenticated):
		return CodeUnauthenticated
	case errors.Is(err, ErrBadRequest):
		return CodeBadRequest
	case errors.Is(err, ErrCrypto):
		return CodeCryptoError
	case errors.Is(err, ErrMissingToken):
		return CodeMissingToken
	case errors.Is(err, ErrTokenExpired):
		return CodeExpiredToken
	case errors.Is(err, ErrInvalidToken):
		return CodeInvalidToken
	default:
		return CodeInternal
	}
}
