package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	secret := []byte("s3cret")
	token, err := GenerateToken(secret, "finance", 12*time.Hour, time.Now())
	require.NoError(t, err)

	claims, err := ValidateToken(secret, token)
	require.NoError(t, err)
	require.Equal(t, "finance", claims.Subject)
	require.NotEmpty(t, claims.ID)

	raw := jwt.MapClaims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, raw)
	require.NoError(t, err)
	require.Equal(t, "finance", raw["sub"])
	require.NotContains(t, raw, "username")
}

func TestValidateRejectsBlankSubject(t *testing.T) {
	secret := []byte("s3cret")
	token, err := GenerateToken(secret, "", time.Hour, time.Now())
	require.NoError(t, err)

	_, err = ValidateToken(secret, token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejects(t *testing.T) {
	secret := []byte("s3cret")

	expired, err := GenerateToken(secret, "finance", time.Hour, time.Now().Add(-2*time.Hour))
	require.NoError(t, err)
	_, err = ValidateToken(secret, expired)
	require.ErrorIs(t, err, ErrInvalidToken)

	valid, err := GenerateToken(secret, "finance", time.Hour, time.Now())
	require.NoError(t, err)
	_, err = ValidateToken([]byte("other"), valid)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = ValidateToken(secret, "")
	require.ErrorIs(t, err, ErrMissingToken)

	_, err = GenerateToken(nil, "finance", time.Hour, time.Now())
	require.ErrorIs(t, err, ErrMissingKey)
}
