package services_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mysteries-backend/internal/config"
	"mysteries-backend/internal/services"
)

func TestJWTRoundTrip(t *testing.T) {
	jwtService := services.NewJWTService(&config.Config{JWTSecret: "secret", JWTExpiry: time.Hour})

	token, err := jwtService.GenerateToken("alice.near")
	require.NoError(t, err)

	claims, err := jwtService.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice.near", claims.Account)

	_, err = jwtService.GenerateToken("")
	assert.Error(t, err)
}

func TestJWTRejectsForeignAndExpiredTokens(t *testing.T) {
	issuer := services.NewJWTService(&config.Config{JWTSecret: "other", JWTExpiry: time.Hour})
	token, err := issuer.GenerateToken("alice.near")
	require.NoError(t, err)

	verifier := services.NewJWTService(&config.Config{JWTSecret: "secret", JWTExpiry: time.Hour})
	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)

	expired := services.NewJWTService(&config.Config{JWTSecret: "secret", JWTExpiry: -time.Minute})
	token, err = expired.GenerateToken("alice.near")
	require.NoError(t, err)
	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)

	_, err = verifier.ValidateToken("not-a-jwt")
	assert.Error(t, err)
}
