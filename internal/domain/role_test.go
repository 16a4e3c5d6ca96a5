package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleAdmin, ParseRole("admin"))
	assert.Equal(t, RoleModerator, ParseRole("moderator"))
	assert.Equal(t, RoleUser, ParseRole("user"))
	assert.Equal(t, RoleUnknown, ParseRole("ADMIN"))
	assert.Equal(t, RoleUnknown, ParseRole(""))
	assert.Equal(t, RoleUnknown, ParseRole("root"))
}

func TestUnknownRoleIsLeastPrivilege(t *testing.T) {
	assert.Equal(t, RoleUser, RoleUnknown.Effective())
	assert.False(t, RoleUnknown.Satisfies(RoleAdmin))
	assert.False(t, RoleUnknown.Satisfies(RoleModerator))
	assert.True(t, RoleUnknown.Satisfies(RoleUser))
	assert.False(t, RoleUnknown.Elevated())
	assert.Equal(t, "unknown", RoleUnknown.String())
}

func TestSatisfiesIsExact(t *testing.T) {
	assert.True(t, RoleAdmin.Satisfies(RoleAdmin))
	assert.False(t, RoleModerator.Satisfies(RoleAdmin))
	assert.False(t, RoleUser.Satisfies(RoleAdmin))
	assert.False(t, RoleAdmin.Satisfies(RoleUnknown))
}
