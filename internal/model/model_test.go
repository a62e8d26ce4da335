package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMediaTypeFromMIME(t *testing.T) {
	cases := map[string]string{
		"image/png":                 "image",
		"video/mp4":                 "video",
		"audio/mpeg":                "audio",
		"application/pdf":           "document",
		"application/msword":        "document",
		"text/plain; charset=utf-8": "",
		"application/zip":           "",
	}
	for mime, want := range cases {
		assert.Equal(t, want, MediaTypeFromMIME(mime), mime)
	}
}

func TestNormalizeAttendeeStatus(t *testing.T) {
	status, ok := NormalizeAttendeeStatus("accepted")
	assert.True(t, ok)
	assert.Equal(t, AttendeeAttending, status)

	_, ok = NormalizeAttendeeStatus("sleeping")
	assert.False(t, ok)
}

func TestPermissionsForRole(t *testing.T) {
	assert.Len(t, PermissionsForRole(FamilyRoleAdmin), 7)
	assert.NotContains(t, PermissionsForRole(FamilyRoleMember), PermManageMembers)
}

func TestIsValidID(t *testing.T) {
	assert.False(t, IsValidID("not-a-uuid"))
	assert.True(t, IsValidID("6f1c3b8e-2d4a-4c1e-9a7b-1f2e3d4c5b6a"))
}

func TestUserPasswordHashing(t *testing.T) {
	u := &User{RawPassword: "secret1"}
	assert.NoError(t, u.BeforeSave(nil))
	assert.NotEqual(t, "secret1", u.Password)
	assert.True(t, u.CheckPassword("secret1"))
	assert.False(t, u.CheckPassword("wrong"))
}
