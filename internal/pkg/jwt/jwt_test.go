package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := New("secret", time.Hour, WithIssuer("idp"), WithAudience("trophies"))

	token, err := svc.GenerateToken("user-1")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID())
}

func TestValidate_Rejects(t *testing.T) {
	good := New("secret", time.Hour, WithIssuer("idp"))
	token, err := good.GenerateToken("user-1")
	require.NoError(t, err)

	past := time.Now().Add(-2 * time.Hour)
	expired, err := New("secret", time.Hour, WithIssuer("idp"), WithClock(func() time.Time { return past })).GenerateToken("user-1")
	require.NoError(t, err)

	noSubject, err := good.GenerateToken("")
	require.NoError(t, err)

	cases := []struct {
		name  string
		svc   *Service
		token string
	}{
		{"wrong secret", New("other", time.Hour, WithIssuer("idp")), token},
		{"wrong issuer", New("secret", time.Hour, WithIssuer("someone-else")), token},
		{"wrong audience", New("secret", time.Hour, WithIssuer("idp"), WithAudience("x")), token},
		{"expired", good, expired},
		{"missing subject", good, noSubject},
		{"garbage", good, "not-a-jwt"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.svc.ValidateToken(tc.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
