package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateRoundTrip(t *testing.T) {
	v := NewValidator("secret")

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	uid, err := v.Validate(signed)
	require.NoError(t, err)
	assert.Equal(t, "alice", uid)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "alice"})
	signed, err := token.SignedString([]byte("other"))
	require.NoError(t, err)

	_, err = NewValidator("secret").Validate(signed)
	assert.Error(t, err)
}

func TestValidateRejectsEmptyUserID(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = NewValidator("secret").Validate(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseBearerToken(t *testing.T) {
	tok, err := ParseBearerToken("Bearer abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	_, err = ParseBearerToken("")
	assert.Error(t, err)
	_, err = ParseBearerToken("Basic abc")
	assert.Error(t, err)
}
