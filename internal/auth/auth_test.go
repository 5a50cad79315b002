package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odomo-app/odomo/internal/model"
)

func newManager(t *testing.T, expiration time.Duration) *JWTManager {
	t.Helper()
	m, err := NewJWTManager("", "", expiration)
	require.NoError(t, err)
	return m
}

func TestJWT_IssueAndValidate(t *testing.T) {
	m := newManager(t, time.Hour)
	owner := model.Owner{ID: uuid.New(), Email: "owner@example.com"}

	token, exp, err := m.IssueToken(owner)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, owner.ID, claims.OwnerID)
	assert.Equal(t, owner.Email, claims.Email)
	assert.Equal(t, owner.ID.String(), claims.Subject)
}

func TestJWT_RejectsExpiredToken(t *testing.T) {
	m := newManager(t, -time.Minute)
	token, _, err := m.IssueToken(model.Owner{ID: uuid.New()})
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWT_RejectsForeignKey(t *testing.T) {
	m1 := newManager(t, time.Hour)
	m2 := newManager(t, time.Hour)

	token, _, err := m1.IssueToken(model.Owner{ID: uuid.New()})
	require.NoError(t, err)

	_, err = m2.ValidateToken(token)
	assert.Error(t, err)
}

func TestJWT_RejectsGarbage(t *testing.T) {
	m := newManager(t, time.Hour)
	_, err := m.ValidateToken("not.a.jwt")
	assert.Error(t, err)
}

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotContains(t, hash, "correct horse")

	ok, err := VerifyPassword("correct horse battery staple", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPassword_SaltsDiffer(t *testing.T) {
	h1, err := HashPassword("same password")
	require.NoError(t, err)
	h2, err := HashPassword("same password")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	_, err := VerifyPassword("anything", "no-dollar-sign")
	assert.Error(t, err)
}
