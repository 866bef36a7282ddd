// Package models defines client-side views of server responses.
package models

import "time"

// Tokens is the credential pair returned by sign-in.
type Tokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Info is the account profile as served by GET /info.
type Info struct {
	ID       string     `json:"id"`
	Username string     `json:"username"`
	Nickname string     `json:"nickname"`
	Gender   string     `json:"gender"`
	Role     string     `json:"role"`
	SignAt   *time.Time `json:"signAt"`
}
