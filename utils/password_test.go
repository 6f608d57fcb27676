package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hashed, err := HashPassword("long-enough")
	require.NoError(t, err)

	assert.NoError(t, ComparePassword(string(hashed), "long-enough"))
	assert.True(t, errors.Is(ComparePassword(string(hashed), "wrong-one"), bcrypt.ErrMismatchedHashAndPassword))

	_, err = HashPassword("short")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestJwtRoundTrip(t *testing.T) {
	t.Setenv("API_SECRET", "test-secret")
	token, err := JwtGenerate(4, 2, "Aye")
	require.NoError(t, err)

	parsed, err := JwtValidate(token)
	require.NoError(t, err)
	claim, ok := parsed.Claims.(*JwtCustomClaim)
	require.True(t, ok)
	assert.Equal(t, 4, claim.ID)
	assert.Equal(t, 2, claim.RoleId)
	assert.Equal(t, "Aye", claim.Name)

	t.Setenv("API_SECRET", "other-secret")
	_, err = JwtValidate(token)
	assert.Error(t, err)
}
