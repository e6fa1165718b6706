// Package session issues and verifies the opaque tokens that identify a signed-in user.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fernet/fernet-go"
)

// ErrInvalidToken is returned for tokens that are malformed, tampered with or expired.
var ErrInvalidToken = errors.New("invalid or expired session token")

// Session identifies the user a request acts for.
// It is passed explicitly to every service call that reads user data.
type Session struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
}

// Manager signs and verifies session tokens with a fernet key.
type Manager struct {
	key *fernet.Key
	ttl time.Duration
}

// NewManager creates a Manager from a base64 fernet key.
// An empty key generates a random one, which invalidates tokens on restart.
func NewManager(encodedKey string, ttl time.Duration) (*Manager, error) {
	var key *fernet.Key
	if encodedKey == "" {
		key = new(fernet.Key)
		if err := key.Generate(); err != nil {
			return nil, fmt.Errorf("failed to generate session key: %w", err)
		}
	} else {
		var err error
		key, err = fernet.DecodeKey(encodedKey)
		if err != nil {
			return nil, fmt.Errorf("failed to decode session key: %w", err)
		}
	}

	return &Manager{key: key, ttl: ttl}, nil
}

// Issue returns a signed token for s.
func (m *Manager) Issue(s Session) (string, error) {
	payload, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to encode session: %w", err)
	}

	token, err := fernet.EncryptAndSign(payload, m.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign session: %w", err)
	}

	return string(token), nil
}

// Verify decodes a token issued by Issue and not older than the TTL.
func (m *Manager) Verify(token string) (Session, error) {
	payload := fernet.VerifyAndDecrypt([]byte(token), m.ttl, []*fernet.Key{m.key})
	if payload == nil {
		return Session{}, ErrInvalidToken
	}

	var s Session
	if err := json.Unmarshal(payload, &s); err != nil || s.UserID == "" {
		return Session{}, ErrInvalidToken
	}

	return s, nil
}

// TTL is how long issued tokens stay valid.
func (m *Manager) TTL() time.Duration {
	return m.ttl
}

type contextKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext returns the session stored by WithSession.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(contextKey{}).(Session)
	return s, ok
}
