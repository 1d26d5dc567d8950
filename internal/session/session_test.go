package session

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teamtodo/teamtodo-client/internal/domain/entity"
)

func signToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test_secret"))
	require.NoError(t, err)
	return token
}

func TestLifecycle(t *testing.T) {
	s := New()
	assert.False(t, s.Authenticated())
	assert.Empty(t, s.Token())
	assert.Nil(t, s.Principal())

	user := &entity.User{ID: "u1", Name: "Alice", Role: entity.RoleUser}
	s.Begin("tok", user)
	assert.True(t, s.Authenticated())
	assert.Equal(t, "tok", s.Token())
	assert.Equal(t, "u1", s.Principal().ID)

	s.Clear()
	assert.False(t, s.Authenticated())
	assert.Empty(t, s.Token())
	assert.Nil(t, s.Principal())
}

func TestTokenExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	nowFunc = func() time.Time { return now }
	defer func() { nowFunc = time.Now }()

	s := New()
	assert.True(t, s.TokenExpired(), "пустая сессия считается истекшей")

	s.Begin(signToken(t, now.Add(time.Hour)), &entity.User{ID: "u1"})
	assert.False(t, s.TokenExpired())

	s.Begin(signToken(t, now.Add(-time.Minute)), &entity.User{ID: "u1"})
	assert.True(t, s.TokenExpired())

	// Непарсящийся токен оставляем на суд сервера
	s.Begin("opaque-token", &entity.User{ID: "u1"})
	assert.False(t, s.TokenExpired())
}
