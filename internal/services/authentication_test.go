package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barterhub/internal/models"
)

func TestAuthenticationRoundTrip(t *testing.T) {
	auth, err := NewAuthentication("s3cret")
	require.NoError(t, err)

	token, err := auth.CreateToken(models.Principal{ID: 12, Role: models.RoleBrand}, time.Hour)
	require.NoError(t, err)

	principal, err := auth.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, &models.Principal{ID: 12, Role: models.RoleBrand}, principal)
}

func TestAuthenticationRejects(t *testing.T) {
	auth, _ := NewAuthentication("s3cret")
	other, _ := NewAuthentication("other")

	expired, _ := auth.CreateToken(models.Principal{ID: 1, Role: models.RoleCreator}, -time.Minute)
	_, err := auth.Validate(expired)
	assert.Error(t, err)

	foreign, _ := other.CreateToken(models.Principal{ID: 1, Role: models.RoleCreator}, time.Hour)
	_, err = auth.Validate(foreign)
	assert.Error(t, err)

	noRole := jwt.NewWithClaims(jwt.SigningMethodHS256, CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: "1", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	signed, err := noRole.SignedString([]byte("s3cret"))
	require.NoError(t, err)
	_, err = auth.Validate(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewAuthenticationRequiresSecret(t *testing.T) {
	_, err := NewAuthentication("")
	assert.Error(t, err)
}
