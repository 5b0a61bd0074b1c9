// Package security hashes and verifies account passwords with Argon2id.
package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/argon2"

	"github.com/dreamcandylab/candylab-backend/pkg/config"
)

const MinPasswordLength = 8

var (
	ErrInvalidHash  = errors.New("invalid argon2id hash")
	ErrWeakPassword = fmt.Errorf("password must be at least %d characters", MinPasswordLength)

	b64 = base64.RawStdEncoding
)

// argonCost is embedded in every PHC string so old hashes stay verifiable
// after the configuration changes.
type argonCost struct {
	memory  uint32
	passes  uint32
	threads uint8
	saltLen int
	keyLen  uint32
}

func (c argonCost) derive(password string, salt []byte) []byte {
	return argon2.IDKey([]byte(password), salt, c.passes, c.memory, c.threads, c.keyLen)
}

func costFromConfig(cfg config.PasswordConfig) argonCost {
	return argonCost{
		memory:  uint32(clamp(cfg.ArgonMemoryKB, 8, 512*1024)),
		passes:  uint32(clamp(cfg.ArgonTime, 1, 10)),
		threads: uint8(clamp(cfg.ArgonParallelism, 1, 255)),
		saltLen: clamp(cfg.ArgonSaltLen, 8, 64),
		keyLen:  uint32(clamp(cfg.ArgonKeyLen, 16, 64)),
	}
}

// HashPassword returns a PHC formatted argon2id string.
func HashPassword(password string, cfg config.PasswordConfig) (string, error) {
	if password == "" {
		return "", errors.New("password cannot be empty")
	}
	cost := costFromConfig(cfg)
	salt := make([]byte, cost.saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("read salt: %w", err)
	}
	key := cost.derive(password, salt)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, cost.memory, cost.passes, cost.threads,
		b64.EncodeToString(salt), b64.EncodeToString(key)), nil
}

// VerifyPassword compares in constant time. A malformed hash is an error,
// a wrong password is not.
func VerifyPassword(password, encoded string) (bool, error) {
	cost, salt, key, err := decode(encoded)
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(key, cost.derive(password, salt)) == 1, nil
}

// NeedsRehash reports whether encoded is weaker than cfg asks for.
func NeedsRehash(encoded string, cfg config.PasswordConfig) bool {
	have, _, _, err := decode(encoded)
	if err != nil {
		return true
	}
	want := costFromConfig(cfg)
	return have.memory < want.memory || have.passes < want.passes || have.keyLen < want.keyLen
}

// CheckPassword counts characters, not bytes.
func CheckPassword(password string) error {
	if strings.TrimSpace(password) == "" || utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

func decode(encoded string) (argonCost, []byte, []byte, error) {
	var cost argonCost
	fields := strings.Split(encoded, "$")
	if len(fields) != 6 || fields[0] != "" || fields[1] != "argon2id" {
		return cost, nil, nil, ErrInvalidHash
	}
	var version int
	if _, err := fmt.Sscanf(fields[2], "v=%d", &version); err != nil || version != argon2.Version {
		return cost, nil, nil, ErrInvalidHash
	}
	if _, err := fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d", &cost.memory, &cost.passes, &cost.threads); err != nil {
		return cost, nil, nil, ErrInvalidHash
	}
	salt, err := b64.DecodeString(fields[4])
	if err != nil {
		return cost, nil, nil, ErrInvalidHash
	}
	key, err := b64.DecodeString(fields[5])
	if err != nil || len(key) == 0 {
		return cost, nil, nil, ErrInvalidHash
	}
	cost.saltLen = len(salt)
	cost.keyLen = uint32(len(key))
	return cost, salt, key, nil
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
