// Package security provides the credential hashing and token signing
// primitives for the auth subsystem. Callers must not log or persist
// plaintext passwords or raw hashes.
package security

import (
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/scrypt"
)

// ErrCorruptCredential is returned when a stored salt or hash has an
// impossible shape. It signals a data integrity fault, not a failed
// password check, and must never be reported to the caller as one.
var ErrCorruptCredential = errors.New("corrupt credential record")

const (
	// saltLen is the salt length in bytes for new credentials.
	saltLen = 16
	// minHashLen is the smallest stored hash length accepted on verify.
	minHashLen = 32

	// scrypt r and p are fixed; only N is tunable via config.
	scryptR = 8
	scryptP = 1

	// keyLen is the derived key length in bytes for new credentials.
	keyLen = 64
)

// Hasher derives and verifies salted scrypt password hashes.
// The zero value is not usable; construct with NewHasher.
type Hasher struct {
	n   int
	sem chan struct{}
}

// NewHasher returns a Hasher with the given scrypt cost factor N.
// N must be a power of two; values outside [1024, 1<<18] are clamped to
// the default 16384 to keep worst-case derivation latency bounded.
// maxConcurrent caps in-flight derivations (scrypt is deliberately
// expensive, ~tens of ms and 16 MB per call at the default cost);
// values <= 0 default to 4.
func NewHasher(n, maxConcurrent int) *Hasher {
	if n < 1024 || n > 1<<18 || n&(n-1) != 0 {
		n = 16384
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	return &Hasher{n: n, sem: make(chan struct{}, maxConcurrent)}
}

// Hash generates a fresh random salt and derives a scrypt hash of password.
// Returns the hash and the salt; both must be stored with the credential.
func (h *Hasher) Hash(password string) (hash, salt []byte, err error) {
	salt = make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return nil, nil, fmt.Errorf("generate salt: %w", err)
	}
	hash, err = h.derive(password, salt, keyLen)
	if err != nil {
		return nil, nil, err
	}
	return hash, salt, nil
}

// Verify recomputes the derivation with the stored salt and compares it to
// the stored hash in constant time. Returns (false, nil) on mismatch and
// ErrCorruptCredential if the stored salt or hash is malformed.
func (h *Hasher) Verify(password string, hash, salt []byte) (bool, error) {
	if len(salt) < saltLen || len(hash) < minHashLen {
		return false, ErrCorruptCredential
	}
	computed, err := h.derive(password, salt, len(hash))
	if err != nil {
		return false, err
	}
	return subtle.ConstantTimeCompare(computed, hash) == 1, nil
}

// DummyVerify burns one derivation against a throwaway credential.
// Login paths call it when the user does not exist so response timing
// does not reveal whether an account is present.
func (h *Hasher) DummyVerify(password string) {
	_, _ = h.Verify(password, make([]byte, keyLen), make([]byte, saltLen))
}

func (h *Hasher) derive(password string, salt []byte, outLen int) ([]byte, error) {
	h.sem <- struct{}{}
	defer func() { <-h.sem }()
	key, err := scrypt.Key([]byte(password), salt, h.n, scryptR, scryptP, outLen)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	return key, nil
}
