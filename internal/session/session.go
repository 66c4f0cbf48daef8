// Package session caches the vault passphrase for the current terminal
// session so that consecutive commands prompt only once.
//
// The cache file lives in the OS temp directory, is readable only by the
// owner, and holds the passphrase encrypted under a key derived from the
// terminal session (the parent process ID). It is an obstacle to casual
// disclosure, not a second vault: an attacker with code execution on the
// live host is outside the threat model.
package session

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"

	"github.com/skdas20/VaultX/internal/crypto"
)

const fileMode = 0o600

// cachePath returns the session cache file path, keyed by the parent PID
// so each terminal session gets its own cache.
func cachePath() string {
	return filepath.Join(os.TempDir(), fmt.Sprintf("vaultx_session_%d.cache", os.Getppid()))
}

// sessionKey derives the cache encryption key for the current session.
func sessionKey() ([]byte, error) {
	id := fmt.Sprintf("vaultx_session_%d_key", os.Getppid())
	salt := sha256.Sum256([]byte(id))
	return crypto.DeriveKey([]byte(id), salt[:])
}

// Cache stores the passphrase for the current session.
func Cache(passphrase []byte) error {
	key, err := sessionKey()
	if err != nil {
		return err
	}
	defer crypto.Zero(key)

	ciphertext, nonce, err := crypto.Encrypt(key, passphrase)
	if err != nil {
		return err
	}

	data := make([]byte, 0, len(nonce)+len(ciphertext))
	data = append(data, nonce...)
	data = append(data, ciphertext...)

	if err := os.WriteFile(cachePath(), data, fileMode); err != nil {
		return fmt.Errorf("write session cache: %w", err)
	}
	return nil
}

// Cached returns the cached passphrase for the current session, or nil
// when none is usable. Stale or corrupt caches are removed silently.
func Cached() []byte {
	data, err := os.ReadFile(cachePath())
	if err != nil {
		return nil
	}
	if len(data) < crypto.NonceSize+crypto.TagSize {
		_ = os.Remove(cachePath())
		return nil
	}

	key, err := sessionKey()
	if err != nil {
		return nil
	}
	defer crypto.Zero(key)

	passphrase, err := crypto.Decrypt(key, data[:crypto.NonceSize], data[crypto.NonceSize:])
	if err != nil {
		_ = os.Remove(cachePath())
		return nil
	}
	return passphrase
}

// Clear removes the cached passphrase.
func Clear() error {
	err := os.Remove(cachePath())
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear session cache: %w", err)
	}
	return nil
}
