// Package session keeps refresh sessions in Redis, one per access token jti.
package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dreamcandylab/candylab-backend/pkg/config"
	pkgredis "github.com/dreamcandylab/candylab-backend/pkg/redis"
)

var ErrInvalidRefreshToken = errors.New("invalid refresh token")

// AccessSessionChecker is what the auth middleware needs.
type AccessSessionChecker interface {
	HasSession(ctx context.Context, accessID string) (bool, error)
}

type kv interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	AccessSessionKey(accessID string) string
}

// record is the stored session. Only a digest of the refresh token is kept.
type record struct {
	Digest     []byte    `json:"digest"`
	IssuedAt   time.Time `json:"issued_at"`
	Generation int       `json:"generation"`
}

type Manager struct {
	kv  kv
	ttl time.Duration
	now func() time.Time
}

// NewManager requires the refresh TTL to outlive the access token.
func NewManager(client *pkgredis.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	ttl := cfg.RefreshTokenTTL()
	access := time.Duration(cfg.ExpirationMinutes) * time.Minute
	if ttl <= access {
		return nil, fmt.Errorf("refresh ttl %s must exceed access ttl %s", ttl, access)
	}
	return &Manager{kv: client, ttl: ttl, now: time.Now}, nil
}

// NewAccessID mints the jti that keys a session.
func NewAccessID() string {
	return uuid.NewString()
}

// Generate opens a session for accessID and returns its refresh token.
func (m *Manager) Generate(ctx context.Context, accessID string) (string, error) {
	if accessID == "" {
		return "", fmt.Errorf("access id is required")
	}
	return m.open(ctx, accessID, 0)
}

// Rotate consumes the session of oldAccessID when provided matches its
// refresh token and opens a successor. A token can be rotated only once.
func (m *Manager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	if oldAccessID == "" || provided == "" {
		return "", "", ErrInvalidRefreshToken
	}
	old, err := m.load(ctx, oldAccessID)
	if err != nil {
		return "", "", err
	}
	digest := sha256.Sum256([]byte(provided))
	if subtle.ConstantTimeCompare(old.Digest, digest[:]) != 1 {
		return "", "", ErrInvalidRefreshToken
	}
	if err := m.kv.Del(ctx, m.kv.AccessSessionKey(oldAccessID)); err != nil {
		return "", "", fmt.Errorf("consume session: %w", err)
	}

	next := NewAccessID()
	token, err := m.open(ctx, next, old.Generation+1)
	if err != nil {
		return "", "", err
	}
	return next, token, nil
}

func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if accessID == "" {
		return fmt.Errorf("access id is required")
	}
	return m.kv.Del(ctx, m.kv.AccessSessionKey(accessID))
}

func (m *Manager) HasSession(ctx context.Context, accessID string) (bool, error) {
	if accessID == "" {
		return false, nil
	}
	_, err := m.load(ctx, accessID)
	switch {
	case errors.Is(err, ErrInvalidRefreshToken):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

func (m *Manager) open(ctx context.Context, accessID string, generation int) (string, error) {
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return "", fmt.Errorf("refresh token entropy: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(secret)
	digest := sha256.Sum256([]byte(token))

	payload, err := json.Marshal(record{Digest: digest[:], IssuedAt: m.now().UTC(), Generation: generation})
	if err != nil {
		return "", err
	}
	if err := m.kv.Set(ctx, m.kv.AccessSessionKey(accessID), string(payload), m.ttl); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	return token, nil
}

func (m *Manager) load(ctx context.Context, accessID string) (*record, error) {
	raw, err := m.kv.Get(ctx, m.kv.AccessSessionKey(accessID))
	if errors.Is(err, goredis.Nil) {
		return nil, ErrInvalidRefreshToken
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, ErrInvalidRefreshToken
	}
	return &rec, nil
}
