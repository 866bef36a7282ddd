package models

import "time"

// KeyPair is a transient RSA pair stored under its public key.
type KeyPair struct {
	PublicKey  string    `json:"publicKey"`
	PrivateKey string    `json:"privateKey"`
	CreatedAt  time.Time `json:"createdAt"`
}

// AccessRecord is an active session keyed by the access token itself.
type AccessRecord struct {
	ID        string `json:"id"`
	SubjectID string `json:"subjectId"`
	Role      Role   `json:"role"`
}

// RefreshRecord pairs a refresh token with a copy of the access record it
// was last rotated to. Access is a value, never a pointer: the theft check
// compares it against the token the client presents.
type RefreshRecord struct {
	ID        string       `json:"id"`
	Access    AccessRecord `json:"access"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// Rotate points the record at a new access record and restarts the idle window.
func (r *RefreshRecord) Rotate(access AccessRecord, now time.Time) {
	r.Access = access
	r.UpdatedAt = now
}

// TokenPair is handed to a client after a successful sign-in.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
