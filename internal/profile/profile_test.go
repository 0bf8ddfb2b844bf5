package profile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/partnerhub/portal-server/internal/profile"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		raw      string
		expected profile.Role
	}{
		{"admin", profile.RoleAdmin},
		{"coordinator", profile.RoleCoordinator},
		{"user", profile.RoleUser},
		{"superuser", profile.RoleUser},
		{"Admin", profile.RoleUser},
		{"", profile.RoleUser},
	}
	for _, test := range tests {
		assert.Equal(t, test.expected, profile.ParseRole(test.raw), "raw role %q", test.raw)
	}
}

func TestRoleValid(t *testing.T) {
	assert.True(t, profile.RoleAdmin.Valid())
	assert.True(t, profile.RoleCoordinator.Valid())
	assert.True(t, profile.RoleUser.Valid())
	assert.False(t, profile.Role("root").Valid())
}
