package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	manager := NewJWTManager("test-secret", "talentloop", time.Hour)

	token, err := manager.Generate("hr@acme.com", "recruiter")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := manager.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "hr@acme.com", claims.Email)
	assert.Equal(t, "recruiter", claims.Role)
	assert.Equal(t, "talentloop", claims.Issuer)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	manager := NewJWTManager("secret-a", "talentloop", time.Hour)
	other := NewJWTManager("secret-b", "talentloop", time.Hour)

	token, err := manager.Generate("hr@acme.com", "recruiter")
	require.NoError(t, err)

	_, err = other.Validate(token)
	assert.Error(t, err)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	manager := NewJWTManager("test-secret", "talentloop", -time.Minute)

	token, err := manager.Generate("hr@acme.com", "recruiter")
	require.NoError(t, err)

	_, err = manager.Validate(token)
	assert.Error(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	manager := NewJWTManager("test-secret", "talentloop", time.Hour)

	_, err := manager.Validate("not.a.token")
	assert.Error(t, err)
}

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, VerifyPassword(hash, "s3cret-pass"))
	assert.False(t, VerifyPassword(hash, "wrong"))
}

func TestGenerateTempPassword(t *testing.T) {
	pass, err := GenerateTempPassword(12)
	require.NoError(t, err)
	assert.Len(t, pass, 12)

	other, err := GenerateTempPassword(12)
	require.NoError(t, err)
	assert.NotEqual(t, pass, other)

	// Zero length falls back to the default.
	fallback, err := GenerateTempPassword(0)
	require.NoError(t, err)
	assert.Len(t, fallback, 12)
}
