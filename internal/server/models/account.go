// Package models holds the server-side domain types shared by repositories,
// caches and services.
package models

import "time"

// Role is the privilege attached to an account and carried in its session.
type Role string

const (
	RoleManagerMajor Role = "MANAGER_MAJOR"
	RoleManagerMinor Role = "MANAGER_MINOR"
	RoleUser         Role = "USER"
	RoleAnonymous    Role = "ANONYMOUS"
)

func (r Role) Valid() bool {
	switch r {
	case RoleManagerMajor, RoleManagerMinor, RoleUser, RoleAnonymous:
		return true
	}
	return false
}

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOthers Gender = "OTHERS"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOthers:
		return true
	}
	return false
}

// Account is a sign-in identity. Password and PreviousPassword are hashes.
type Account struct {
	ID               string
	Username         string
	Password         string
	PreviousPassword string
	Role             Role
	Nickname         string
	Gender           Gender
	Active           bool
	Deleted          bool
	SignAt           *time.Time
	WithdrawAt       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
