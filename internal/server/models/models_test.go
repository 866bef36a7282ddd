package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRole_Valid(t *testing.T) {
	for _, r := range []Role{RoleManagerMajor, RoleManagerMinor, RoleUser, RoleAnonymous} {
		assert.True(t, r.Valid(), r)
	}
	assert.False(t, Role("ROOT").Valid())
}

func TestGender_Valid(t *testing.T) {
	assert.True(t, GenderOthers.Valid())
	assert.False(t, Gender("").Valid())
}

func TestRefreshRecord_RotateCopiesValue(t *testing.T) {
	a1 := AccessRecord{ID: "a1", SubjectID: "u", Role: RoleUser}
	rec := RefreshRecord{ID: "r1", Access: a1, UpdatedAt: time.Unix(0, 0)}

	a2 := AccessRecord{ID: "a2", SubjectID: "u", Role: RoleUser}
	now := time.Unix(100, 0)
	rec.Rotate(a2, now)
	a2.ID = "mutated"

	assert.Equal(t, "a2", rec.Access.ID)
	assert.Equal(t, now, rec.UpdatedAt)
}
