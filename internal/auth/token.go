// Package auth verifies API keys presented to the export service.
package auth

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidKey  = errors.New("invalid api key")
	ErrMissingKey  = errors.New("missing api key")
	ErrInvalidHash = errors.New("invalid api key hash")
)

// Key is a configured API key: a client name and the bcrypt hash of its
// secret.
type Key struct {
	Name string
	Hash string
}

// ParseKey parses a "name:bcrypthash" entry.
func ParseKey(entry string) (Key, error) {
	name, hash, ok := strings.Cut(strings.TrimSpace(entry), ":")
	if !ok || name == "" {
		return Key{}, fmt.Errorf("%w: expected name:hash", ErrInvalidHash)
	}
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return Key{}, fmt.Errorf("%w for %s: %v", ErrInvalidHash, name, err)
	}
	return Key{Name: name, Hash: hash}, nil
}

// HashKey returns the bcrypt hash to configure for secret.
func HashKey(secret string) (string, error) {
	if len(secret) < 16 {
		return "", errors.New("api key must be at least 16 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash api key: %w", err)
	}
	return string(hash), nil
}

// Keyring checks presented secrets against the configured keys. Successful
// checks are remembered by fingerprint so bcrypt runs once per secret.
type Keyring struct {
	keys []Key

	mu       sync.RWMutex
	verified map[string]string
}

func NewKeyring(keys []Key) *Keyring {
	return &Keyring{keys: keys, verified: map[string]string{}}
}

// Enabled reports whether any key is configured. A keyring without keys
// accepts every request.
func (k *Keyring) Enabled() bool {
	return k != nil && len(k.keys) > 0
}

// Verify returns the name of the key matching secret.
func (k *Keyring) Verify(secret string) (string, error) {
	if secret == "" {
		return "", ErrMissingKey
	}
	fp := HashToken(secret)

	k.mu.RLock()
	name, ok := k.verified[fp]
	k.mu.RUnlock()
	if ok {
		return name, nil
	}

	for _, key := range k.keys {
		if bcrypt.CompareHashAndPassword([]byte(key.Hash), []byte(secret)) == nil {
			k.mu.Lock()
			k.verified[fp] = key.Name
			k.mu.Unlock()
			return key.Name, nil
		}
	}
	return "", ErrInvalidKey
}

// HashToken is the sha256 fingerprint of value, safe to log or use as a
// map key.
func HashToken(value string) string {
	sum := sha256.Sum256([]byte(value))
	return fmt.Sprintf("%x", sum)
}
