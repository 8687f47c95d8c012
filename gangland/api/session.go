package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gangland/server/internal/clock"
)

var (
	ErrMalformedToken = errors.New("malformed session token")
	ErrBadSignature   = errors.New("session signature verification failed")
	ErrSessionExpired = errors.New("session expired")
)

// Session is the verified principal of a request. PlayerID is the world id
// the identity provider assigned.
type Session struct {
	PlayerID  string    `json:"sub"`
	ExpiresAt time.Time `json:"exp"`
}

// Sessions signs and verifies bearer tokens: base64url(payload || HMAC-SHA256).
// The identity provider shares the key and issues tokens the same way.
type Sessions struct {
	key   []byte
	ttl   time.Duration
	clock clock.Clock
}

func NewSessions(key string, ttl time.Duration, clk clock.Clock) *Sessions {
	return &Sessions{key: []byte(key), ttl: ttl, clock: clk}
}

func (s *Sessions) Issue(playerID string) (string, error) {
	if playerID == "" {
		return "", fmt.Errorf("player id is required")
	}
	data, err := json.Marshal(Session{PlayerID: playerID, ExpiresAt: s.clock.Now().Add(s.ttl)})
	if err != nil {
		return "", fmt.Errorf("failed to marshal session: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(append(data, s.sign(data)...)), nil
}

func (s *Sessions) Verify(token string) (*Session, error) {
	combined, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(token))
	if err != nil || len(combined) <= sha256.Size {
		return nil, ErrMalformedToken
	}
	data := combined[:len(combined)-sha256.Size]
	if !hmac.Equal(combined[len(combined)-sha256.Size:], s.sign(data)) {
		return nil, ErrBadSignature
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil || sess.PlayerID == "" {
		return nil, ErrMalformedToken
	}
	if !s.clock.Now().Before(sess.ExpiresAt) {
		return nil, ErrSessionExpired
	}
	return &sess, nil
}

func (s *Sessions) sign(data []byte) []byte {
	h := hmac.New(sha256.New, s.key)
	h.Write(data)
	return h.Sum(nil)
}
