package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testHash(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestBcryptGate(t *testing.T) {
	g, err := NewBcryptGate(testHash(t, "tajne"))
	require.NoError(t, err)

	assert.NoError(t, g.Check("tajne"))
	assert.ErrorIs(t, g.Check("wrong"), ErrAccessDenied)
	assert.ErrorIs(t, g.Check(""), ErrAccessDenied)
}

func TestNewBcryptGate_InvalidHash(t *testing.T) {
	_, err := NewBcryptGate("plaintext")
	assert.Error(t, err)
}

func TestNewGate(t *testing.T) {
	g, err := NewGate("")
	require.NoError(t, err)
	assert.IsType(t, OpenGate{}, g)
	assert.NoError(t, g.Check("anything"))

	g, err = NewGate(testHash(t, "tajne"))
	require.NoError(t, err)
	assert.ErrorIs(t, g.Check("nope"), ErrAccessDenied)
}
