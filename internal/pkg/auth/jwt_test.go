package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestJWTSignVerify(t *testing.T) {
	j := NewJWT("0123456789abcdef0123456789abcdef", time.Hour)
	token, claims, err := j.Sign()
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)

	got, err := j.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, RoleAdmin, got.Role)
	assert.Equal(t, claims.ID, got.ID)
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	token, _, err := NewJWT("secret-a", time.Hour).Sign()
	require.NoError(t, err)

	_, err = NewJWT("secret-b", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTRejectsExpired(t *testing.T) {
	j := NewJWT("secret", time.Minute)
	base := time.Now()
	j.now = func() time.Time { return base }
	token, _, err := j.Sign()
	require.NoError(t, err)

	j.now = func() time.Time { return base.Add(2 * time.Minute) }
	_, err = j.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordCheckerPlain(t *testing.T) {
	p := NewPasswordChecker("admin", "")
	assert.NoError(t, p.Check("admin"))
	assert.ErrorIs(t, p.Check("Admin"), ErrInvalidPassword)
	assert.ErrorIs(t, p.Check(""), ErrInvalidPassword)
}

func TestPasswordCheckerHash(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	p := NewPasswordChecker("ignored-when-hash-set", string(hash))
	assert.NoError(t, p.Check("s3cret"))
	assert.ErrorIs(t, p.Check("ignored-when-hash-set"), ErrInvalidPassword)
}
