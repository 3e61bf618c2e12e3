package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticAuthService(t *testing.T) {
	s := NewStaticAuthService("admin", "secret")

	assert.NoError(t, s.Authenticate("admin", "secret"))
	assert.ErrorIs(t, s.Authenticate("admin", "wrong"), ErrInvalidCredentials)
	assert.ErrorIs(t, s.Authenticate("other", "secret"), ErrInvalidCredentials)
}

func TestStaticAuthServiceEmptyConfiguredPassword(t *testing.T) {
	// Пустой пароль в конфигурации означает "вход закрыт", а не
	// "пускать всех с пустым паролем"
	s := NewStaticAuthService("admin", "")

	assert.ErrorIs(t, s.Authenticate("admin", ""), ErrInvalidCredentials)
}

func TestJWTRoundTrip(t *testing.T) {
	m, err := NewJWTManager("test-secret", time.Hour, "printbridge")
	require.NoError(t, err)

	token, err := m.Generate("admin")
	require.NoError(t, err)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "printbridge", claims.Issuer)
}

func TestJWTRejectsForeignSignature(t *testing.T) {
	issuer, err := NewJWTManager("secret-a", time.Hour, "printbridge")
	require.NoError(t, err)
	verifier, err := NewJWTManager("secret-b", time.Hour, "printbridge")
	require.NoError(t, err)

	token, err := issuer.Generate("admin")
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTRejectsExpired(t *testing.T) {
	m, err := NewJWTManager("test-secret", time.Hour, "printbridge")
	require.NoError(t, err)
	m.expiration = -time.Minute

	token, err := m.Generate("admin")
	require.NoError(t, err)

	_, err = m.Validate(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTRejectsGarbage(t *testing.T) {
	m, err := NewJWTManager("test-secret", time.Hour, "printbridge")
	require.NoError(t, err)

	_, err = m.Validate("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewJWTManagerRequiresSecret(t *testing.T) {
	_, err := NewJWTManager("", time.Hour, "printbridge")
	assert.Error(t, err)
}
