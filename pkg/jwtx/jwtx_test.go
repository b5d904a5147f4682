package jwtx

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func TestNewCodecRejectsEmptySecret(t *testing.T) {
	t.Parallel()

	_, err := NewCodec(nil)
	require.Error(t, err)
}

func TestSignAndVerify(t *testing.T) {
	t.Parallel()

	codec, err := NewCodec([]byte("test-secret"))
	require.NoError(t, err)

	t.Run("round trip preserves claims", func(t *testing.T) {
		claims := NewSessionClaims("tok-1", "user-1", "aziz@example.com", "user", time.Hour, time.Now())
		token, err := codec.Sign(claims)
		require.NoError(t, err)

		got, err := codec.Verify(token)
		require.NoError(t, err)
		require.Equal(t, "tok-1", got.ID)
		require.Equal(t, "user-1", got.UserID)
		require.Equal(t, "aziz@example.com", got.Email)
		require.Equal(t, "user", got.Role)
	})

	t.Run("distinct token ids yield distinct tokens", func(t *testing.T) {
		now := time.Now()
		a, err := codec.Sign(NewSessionClaims("tok-a", "u", "e", "user", time.Hour, now))
		require.NoError(t, err)
		b, err := codec.Sign(NewSessionClaims("tok-b", "u", "e", "user", time.Hour, now))
		require.NoError(t, err)
		require.NotEqual(t, a, b)
	})

	t.Run("expired token", func(t *testing.T) {
		claims := NewSessionClaims("tok-2", "user-1", "a@b.co", "user", time.Minute, time.Now().Add(-time.Hour))
		token, err := codec.Sign(claims)
		require.NoError(t, err)

		_, err = codec.Verify(token)
		require.ErrorIs(t, err, ErrExpired)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := NewCodec([]byte("other-secret"))
		require.NoError(t, err)

		token, err := other.Sign(NewSessionClaims("tok-3", "user-1", "a@b.co", "user", time.Hour, time.Now()))
		require.NoError(t, err)

		_, err = codec.Verify(token)
		require.ErrorIs(t, err, ErrInvalidSig)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := codec.Verify("not.a.jwt")
		require.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("alg none rejected", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"userId": "user-1"})
		token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = codec.Verify(token)
		require.Error(t, err)
	})
}
