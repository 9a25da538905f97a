package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/coursegen-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-for-testing"

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	svc, err := newHMACJWTService(testSecret, time.Hour, fixedClock(issued))
	require.NoError(t, err)
	userID := uuid.New()

	token, err := svc.GenerateToken(context.Background(), userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, tokenTypeAccess, claims.TokenType)
	assert.Equal(t, issued.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, issued.Add(time.Hour).Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)

	_, err = svc.GenerateToken(context.Background(), uuid.Nil)
	assert.Error(t, err)
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()
	issuer, err := newHMACJWTService(testSecret, time.Hour, fixedClock(issued))
	require.NoError(t, err)
	token, err := issuer.GenerateToken(context.Background(), userID)
	require.NoError(t, err)

	sign := func(t *testing.T, claims jwtCustomClaims, method jwt.SigningMethod, key any) string {
		t.Helper()
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	baseClaims := func() jwtCustomClaims {
		return jwtCustomClaims{
			UserID:    userID,
			TokenType: tokenTypeAccess,
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   userID.String(),
				IssuedAt:  jwt.NewNumericDate(issued),
				ExpiresAt: jwt.NewNumericDate(issued.Add(time.Hour)),
			},
		}
	}

	tests := []struct {
		name    string
		now     time.Time
		secret  string
		token   func(t *testing.T) string
		wantErr error
	}{
		{
			name:  "valid",
			now:   issued.Add(30 * time.Minute),
			token: func(*testing.T) string { return token },
		},
		{
			name:  "within clock skew after expiry",
			now:   issued.Add(time.Hour + time.Minute),
			token: func(*testing.T) string { return token },
		},
		{
			name:    "expired",
			now:     issued.Add(2 * time.Hour),
			token:   func(*testing.T) string { return token },
			wantErr: ErrExpiredToken,
		},
		{
			name:    "not yet valid",
			now:     issued.Add(-10 * time.Minute),
			token:   func(*testing.T) string { return token },
			wantErr: ErrTokenNotYetValid,
		},
		{
			name:    "wrong secret",
			now:     issued,
			secret:  "another-secret-that-is-long-enough-to-use",
			token:   func(*testing.T) string { return token },
			wantErr: ErrInvalidToken,
		},
		{
			name:    "malformed",
			now:     issued,
			token:   func(*testing.T) string { return "not.a.jwt" },
			wantErr: ErrInvalidToken,
		},
		{
			name:    "empty",
			now:     issued,
			token:   func(*testing.T) string { return "" },
			wantErr: ErrMissingToken,
		},
		{
			name: "wrong token type",
			now:  issued,
			token: func(t *testing.T) string {
				c := baseClaims()
				c.TokenType = "refresh"
				return sign(t, c, jwt.SigningMethodHS256, []byte(testSecret))
			},
			wantErr: ErrWrongTokenType,
		},
		{
			name: "subject mismatch",
			now:  issued,
			token: func(t *testing.T) string {
				c := baseClaims()
				c.Subject = uuid.NewString()
				return sign(t, c, jwt.SigningMethodHS256, []byte(testSecret))
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "other signing method",
			now:  issued,
			token: func(t *testing.T) string {
				return sign(t, baseClaims(), jwt.SigningMethodHS512, []byte(testSecret))
			},
			wantErr: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			secret := tt.secret
			if secret == "" {
				secret = testSecret
			}
			svc, err := newHMACJWTService(secret, time.Hour, fixedClock(tt.now))
			require.NoError(t, err)

			claims, err := svc.ValidateToken(context.Background(), tt.token(t))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, userID, claims.UserID)
		})
	}
}

func TestNewJWTService(t *testing.T) {
	t.Parallel()

	_, err := NewJWTService(config.AuthConfig{JWTSecret: "short", TokenLifetimeMinutes: 60})
	assert.Error(t, err)

	_, err = NewJWTService(config.AuthConfig{JWTSecret: testSecret})
	assert.Error(t, err)

	svc, err := NewJWTService(config.AuthConfig{JWTSecret: testSecret, TokenLifetimeMinutes: 60})
	require.NoError(t, err)
	assert.NotNil(t, svc)
}
