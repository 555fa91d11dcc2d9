package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_RoundTrip(t *testing.T) {
	svc := NewService("s3cret", "dojo-portal", time.Hour)

	token, err := svc.GenerateToken("admin-1", "DOJO01", RoleAdmin, 0)
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.Subject)
	assert.Equal(t, "DOJO01", claims.Club)
	assert.True(t, claims.HasRole(RoleAdmin))
	assert.False(t, claims.HasRole(RoleViewer))
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestService_ValidateToken(t *testing.T) {
	svc := NewService("s3cret", "dojo-portal", time.Hour)

	tests := []struct {
		name    string
		token   func(t *testing.T) string
		wantErr error
	}{
		{
			name: "expired token",
			token: func(t *testing.T) string {
				claims := &PortalClaims{
					RegisteredClaims: jwt.RegisteredClaims{
						Issuer:    "dojo-portal",
						ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
					},
					Role: string(RoleAdmin),
				}
				signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("s3cret"))
				require.NoError(t, err)
				return signed
			},
			wantErr: ErrExpiredToken,
		},
		{
			name: "wrong secret",
			token: func(t *testing.T) string {
				tok, err := NewService("other", "dojo-portal", time.Hour).GenerateToken("u", "", RoleAdmin, 0)
				require.NoError(t, err)
				return tok
			},
			wantErr: ErrInvalidSignature,
		},
		{
			name: "wrong issuer",
			token: func(t *testing.T) string {
				tok, err := NewService("s3cret", "someone-else", time.Hour).GenerateToken("u", "", RoleAdmin, 0)
				require.NoError(t, err)
				return tok
			},
			wantErr: ErrInvalidToken,
		},
		{
			name:    "garbage",
			token:   func(t *testing.T) string { return "not-a-token" },
			wantErr: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateToken(tt.token(t))
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestService_MissingSecret(t *testing.T) {
	svc := NewService("", "", time.Hour)

	_, err := svc.GenerateToken("u", "", RoleAdmin, 0)
	assert.ErrorIs(t, err, ErrMissingSecret)

	_, err = svc.ValidateToken("x")
	assert.ErrorIs(t, err, ErrMissingSecret)
}
