package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func sign(t *testing.T, method jwt.SigningMethod, key interface{}, claims *Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestJWTValidator_ValidateToken(t *testing.T) {
	validator, err := NewJWTValidator(JWTConfig{SecretKey: testSecret, Issuer: "futuremap"})
	require.NoError(t, err)

	generator, err := NewJWTGenerator(testSecret, "futuremap", time.Hour)
	require.NoError(t, err)
	good, err := generator.GenerateToken("user-1", "a@example.com", []string{"student"})
	require.NoError(t, err)

	now := time.Now()
	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{name: "valid", token: good},
		{name: "valid with bearer prefix", token: "Bearer " + good},
		{name: "empty", token: "  ", wantErr: ErrMissingToken},
		{
			name: "expired",
			token: sign(t, jwt.SigningMethodHS256, []byte(testSecret), &Claims{
				UserID:           "user-1",
				RegisteredClaims: jwt.RegisteredClaims{Issuer: "futuremap", ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute))},
			}),
			wantErr: ErrExpiredToken,
		},
		{
			name: "wrong secret",
			token: sign(t, jwt.SigningMethodHS256, []byte("other"), &Claims{
				UserID:           "user-1",
				RegisteredClaims: jwt.RegisteredClaims{Issuer: "futuremap"},
			}),
			wantErr: ErrInvalidSignature,
		},
		{
			name: "wrong issuer",
			token: sign(t, jwt.SigningMethodHS256, []byte(testSecret), &Claims{
				UserID:           "user-1",
				RegisteredClaims: jwt.RegisteredClaims{Issuer: "someone-else"},
			}),
			wantErr: ErrInvalidClaims,
		},
		{
			name: "missing subject",
			token: sign(t, jwt.SigningMethodHS256, []byte(testSecret), &Claims{
				RegisteredClaims: jwt.RegisteredClaims{Issuer: "futuremap"},
			}),
			wantErr: ErrInvalidClaims,
		},
		{
			name: "wrong algorithm",
			token: sign(t, jwt.SigningMethodHS512, []byte(testSecret), &Claims{
				UserID:           "user-1",
				RegisteredClaims: jwt.RegisteredClaims{Issuer: "futuremap"},
			}),
			wantErr: ErrInvalidToken,
		},
		{name: "garbage", token: "not.a.jwt", wantErr: ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := validator.ValidateToken(tt.token)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "user-1", claims.UserID)
			assert.Equal(t, "a@example.com", claims.Email)
			assert.Equal(t, []string{"student"}, claims.Roles)
		})
	}
}

func TestNewJWTValidator_RequiresSecret(t *testing.T) {
	_, err := NewJWTValidator(JWTConfig{})
	assert.Error(t, err)
	_, err = NewJWTGenerator("", "x", time.Hour)
	assert.Error(t, err)
}

func TestUserContext(t *testing.T) {
	_, err := GetUserFromContext(context.Background())
	assert.Error(t, err)

	ctx := SetUserInContext(context.Background(), &UserContext{UserID: "u1", Token: "tok"})
	user, err := GetUserFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u1", user.UserID)
	assert.Equal(t, "tok", user.Token)
}

func TestRateLimiter(t *testing.T) {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(1, 2)
	limiter.now = func() time.Time { return clock }

	assert.True(t, limiter.Allow("a"))
	assert.True(t, limiter.Allow("a"))
	assert.False(t, limiter.Allow("a"))
	assert.True(t, limiter.Allow("b"), "keys are independent")

	clock = clock.Add(time.Second)
	assert.True(t, limiter.Allow("a"))
	assert.False(t, limiter.Allow("a"))

	clock = clock.Add(time.Hour)
	assert.True(t, limiter.Allow("a"))
	assert.Equal(t, 1, limiter.Cleanup(time.Minute))
}
