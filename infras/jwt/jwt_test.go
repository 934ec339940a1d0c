package jwt_test

import (
	"testing"

	"deskhub/config"
	"deskhub/infras/jwt"

	jwtGo "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJWT(secret string, expireMin int) jwt.JWT {
	cfg := &config.Config{}
	cfg.App.Name = "deskhub"
	cfg.JWT.AccessSecret = secret
	cfg.JWT.AccessExpireMin = expireMin

	return jwt.New(cfg)
}

func TestGenerateAndValidate(t *testing.T) {
	svc := newJWT("secret", 15)

	token, err := svc.GenerateToken("u1", "u1@example.com", "user")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)

	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "u1@example.com", claims.Email)
	assert.Equal(t, "user", claims.Role)
	assert.Equal(t, "deskhub", claims.Issuer)
	assert.NotEmpty(t, claims.TokenID)
}

func TestValidateToken_Errors(t *testing.T) {
	valid, err := newJWT("secret", 15).GenerateToken("u1", "u1@example.com", "user")
	require.NoError(t, err)

	expired, err := newJWT("secret", -5).GenerateToken("u1", "u1@example.com", "user")
	require.NoError(t, err)

	noEmail, err := newJWT("secret", 15).GenerateToken("u1", "", "user")
	require.NoError(t, err)

	none, err := jwtGo.NewWithClaims(jwtGo.SigningMethodNone, jwt.Claims{UserID: "u1", Email: "u1@example.com"}).
		SignedString(jwtGo.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{name: "other secret", token: valid, want: jwt.ErrInvalidToken},
		{name: "garbage", token: "not-a-token", want: jwt.ErrInvalidToken},
		{name: "unsigned", token: none, want: jwt.ErrInvalidToken},
		{name: "expired", token: expired, want: jwt.ErrExpiredToken},
		{name: "missing email", token: noEmail, want: jwt.ErrInvalidClaim},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			secret := "secret"
			if tt.name == "other secret" {
				secret = "another"
			}

			_, err := newJWT(secret, 15).ValidateToken(tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestExtractTokenFromHeader(t *testing.T) {
	token, err := jwt.ExtractTokenFromHeader("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	for _, header := range []string{"", "Bearer ", "Basic abc", "bearer abc"} {
		_, err := jwt.ExtractTokenFromHeader(header)
		assert.ErrorIs(t, err, jwt.ErrMissingToken, header)
	}
}
