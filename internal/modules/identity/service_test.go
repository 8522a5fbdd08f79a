// README: Identity service tests.
package identity

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService() *Service {
	return NewService(NewMemStore(), "test-secret", time.Hour)
}

func TestRegisterLoginVerify(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterCommand{
		Username: "marco",
		Email:    "marco@example.com",
		Password: "s3cret-password",
		Role:     RoleOperator,
	})
	require.NoError(t, err)
	assert.Equal(t, RoleOperator, u.Role)
	assert.True(t, u.Active)
	assert.NotEqual(t, "s3cret-password", u.PasswordHash)

	token, logged, err := svc.Login(ctx, "marco", "s3cret-password")
	require.NoError(t, err)
	assert.Equal(t, u.ID, logged.ID)
	require.NotEmpty(t, token)

	claims, err := svc.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, "marco", claims.Username)
	assert.Equal(t, RoleOperator, claims.Role)
}

func TestRegisterDefaultsToClient(t *testing.T) {
	svc := newTestService()
	u, err := svc.Register(context.Background(), RegisterCommand{
		Username: "anna",
		Email:    "anna@example.com",
		Password: "long-enough-pw",
	})
	require.NoError(t, err)
	assert.Equal(t, RoleClient, u.Role)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	cases := []RegisterCommand{
		{Username: "ab", Email: "a@b.c", Password: "long-enough-pw"},
		{Username: "bob", Email: "not-an-email", Password: "long-enough-pw"},
		{Username: "bob", Email: "bob@example.com", Password: "short"},
		{Username: "bob", Email: "bob@example.com", Password: "long-enough-pw", Role: "manager"},
	}
	for _, cmd := range cases {
		_, err := svc.Register(ctx, cmd)
		assert.ErrorIs(t, err, ErrBadRequest, "command %+v", cmd)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	cmd := RegisterCommand{Username: "marco", Email: "m@example.com", Password: "long-enough-pw"}

	_, err := svc.Register(ctx, cmd)
	require.NoError(t, err)
	_, err = svc.Register(ctx, cmd)
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestLoginFailures(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterCommand{Username: "marco", Email: "m@example.com", Password: "long-enough-pw"})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "marco", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody", "long-enough-pw")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestVerifyTokenFailures(t *testing.T) {
	svc := newTestService()

	_, err := svc.VerifyToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// token signed with a different secret
	other := NewService(NewMemStore(), "other-secret", time.Hour)
	_, err = other.Register(context.Background(), RegisterCommand{
		Username: "eve", Email: "eve@example.com", Password: "long-enough-pw",
	})
	require.NoError(t, err)
	token, _, err := other.Login(context.Background(), "eve", "long-enough-pw")
	require.NoError(t, err)

	_, err = svc.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// token with an unrecognized role claim
	_, err = svc.VerifyToken(signTestToken(t, "test-secret", "u1", "root", time.Hour))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenExpired(t *testing.T) {
	svc := newTestService()
	token := signTestToken(t, "test-secret", "u1", "client", -time.Minute)
	_, err := svc.VerifyToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func signTestToken(t *testing.T, secret, userID, role string, ttl time.Duration) string {
	t.Helper()
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  userID,
		"username": "test",
		"role":     role,
		"iat":      now.Unix(),
		"exp":      now.Add(ttl).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func TestParseRole(t *testing.T) {
	for _, s := range []string{"client", "operator", "admin", "superAdmin"} {
		r, err := ParseRole(s)
		require.NoError(t, err)
		assert.Equal(t, Role(s), r)
	}
	_, err := ParseRole("root")
	assert.Error(t, err)
	_, err = ParseRole("")
	assert.Error(t, err)
}
