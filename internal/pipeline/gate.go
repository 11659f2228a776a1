package pipeline

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Gate checks an operator-supplied secret before a search may run.
type Gate interface {
	Check(secret string) error
}

// BcryptGate compares the secret against a bcrypt hash resolved at startup
// (NEWS_RELAY_PASSWORD_HASH). The plaintext is never stored.
type BcryptGate struct {
	hash []byte
}

// NewBcryptGate validates hash and returns a gate for it.
func NewBcryptGate(hash string) (*BcryptGate, error) {
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, fmt.Errorf("invalid password hash: %w", err)
	}
	return &BcryptGate{hash: []byte(hash)}, nil
}

// Check returns ErrAccessDenied when secret does not match.
func (g *BcryptGate) Check(secret string) error {
	err := bcrypt.CompareHashAndPassword(g.hash, []byte(secret))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrAccessDenied
	}
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}
	return nil
}

// OpenGate accepts every secret. Used when no hash is configured.
type OpenGate struct{}

func (OpenGate) Check(string) error { return nil }

// NewGate は設定されたハッシュからGateを作る（空の場合は OpenGate）
func NewGate(hash string) (Gate, error) {
	if hash == "" {
		warnf("NEWS_RELAY_PASSWORD_HASH not set, access gate disabled")
		return OpenGate{}, nil
	}
	return NewBcryptGate(hash)
}
