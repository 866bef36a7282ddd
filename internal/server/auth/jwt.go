// Package auth issues and validates the signed bearer tokens that identify
// a session: short-lived access tokens and long-lived refresh tokens.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Token kinds carried in the "typ" claim so one kind cannot stand in for
// the other.
const (
	KindAccess  = "access"
	KindRefresh = "refresh"
)

// Claims are the registered JWT claims plus the token kind. The subject id
// travels in "sub" and a random "jti" keeps tokens issued in the same
// second distinct.
type Claims struct {
	jwt.RegisteredClaims
	Kind string `json:"typ"`
}

type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewCodec(secretKey string, accessTTL, refreshTTL time.Duration) *Codec {
	return &Codec{
		secret:     []byte(secretKey),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

// WithClock replaces the time source used for both issuing and parsing.
func (c *Codec) WithClock(now func() time.Time) *Codec {
	c.now = now
	return c
}

func (c *Codec) IssueAccessToken(subjectID string) (string, error) {
	return c.issue(subjectID, KindAccess, c.accessTTL)
}

func (c *Codec) IssueRefreshToken(subjectID string) (string, error) {
	return c.issue(subjectID, KindRefresh, c.refreshTTL)
}

func (c *Codec) issue(subjectID, kind string, ttl time.Duration) (string, error) {
	now := c.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Kind: kind,
	})

	s, err := token.SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", kind, err)
	}
	return s, nil
}

// ValidateRefreshToken checks signature, expiry and kind, and returns the
// subject id. Failures are common.ErrInvalidToken or common.ErrTokenExpired.
func (c *Codec) ValidateRefreshToken(token string) (string, error) {
	return c.parse(token, KindRefresh)
}

// ParseAccessToken is the access-token counterpart of ValidateRefreshToken.
func (c *Codec) ParseAccessToken(token string) (string, error) {
	return c.parse(token, KindAccess)
}

func (c *Codec) parse(tokenString, kind string) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", common.ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !token.Valid || claims.Kind != kind || claims.Subject == "" {
		return "", common.ErrInvalidToken
	}

	return claims.Subject, nil
}
