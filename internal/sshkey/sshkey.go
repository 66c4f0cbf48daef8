// Package sshkey generates Ed25519 keypairs and renders them in the
// OpenSSH text encodings.
package sshkey

import (
	"crypto/ed25519"
	"encoding/pem"
	"fmt"
	"strings"

	"golang.org/x/crypto/ssh"

	"github.com/skdas20/VaultX/internal/crypto"
)

// SeedSize is the stored private-key material: the 32-byte Ed25519 seed.
const SeedSize = ed25519.SeedSize

// DefaultComment is appended to generated public keys.
const DefaultComment = "vaultx-generated"

// Generate creates a fresh Ed25519 keypair from the vault CSPRNG. It
// returns the public key as an OpenSSH authorized_keys line and the
// private seed, which the caller must encrypt and zeroize.
func Generate() (publicKey string, seed []byte, err error) {
	seedBytes, err := crypto.ReadRandom(SeedSize)
	if err != nil {
		return "", nil, err
	}

	priv := ed25519.NewKeyFromSeed(seedBytes)
	pub := priv.Public().(ed25519.PublicKey)
	crypto.Zero(priv)

	publicKey, err = FormatPublicKey(pub, DefaultComment)
	if err != nil {
		crypto.Zero(seedBytes)
		return "", nil, err
	}
	return publicKey, seedBytes, nil
}

// FormatPublicKey renders an Ed25519 public key as
// "ssh-ed25519 <base64> <comment>".
func FormatPublicKey(pub ed25519.PublicKey, comment string) (string, error) {
	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		return "", fmt.Errorf("encode public key: %w", err)
	}

	line := strings.TrimSpace(string(ssh.MarshalAuthorizedKey(sshPub)))
	if comment != "" {
		line += " " + comment
	}
	return line, nil
}

// PrivateKeyPEM renders a stored seed as an unencrypted OpenSSH private
// key. Confidentiality is provided at the vault layer, not by file-level
// encryption. The caller must zeroize the returned bytes after use.
func PrivateKeyPEM(seed []byte, comment string) ([]byte, error) {
	if len(seed) != SeedSize {
		return nil, fmt.Errorf("private key seed must be %d bytes", SeedSize)
	}

	priv := ed25519.NewKeyFromSeed(seed)
	defer crypto.Zero(priv)

	block, err := ssh.MarshalPrivateKey(priv, comment)
	if err != nil {
		return nil, fmt.Errorf("encode private key: %w", err)
	}
	return pem.EncodeToMemory(block), nil
}

// PublicFromSeed recomputes the OpenSSH public key line for a stored seed.
// Used to check that a stored public key corresponds to its private key.
func PublicFromSeed(seed []byte, comment string) (string, error) {
	if len(seed) != SeedSize {
		return "", fmt.Errorf("private key seed must be %d bytes", SeedSize)
	}

	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)
	crypto.Zero(priv)

	return FormatPublicKey(pub, comment)
}

// SetupCommands returns the shell commands for installing a public key in
// a remote authorized_keys file.
func SetupCommands(publicKey string) string {
	return fmt.Sprintf(`# Add this public key to your server's authorized_keys:
mkdir -p ~/.ssh
echo "%s" >> ~/.ssh/authorized_keys
chmod 700 ~/.ssh
chmod 600 ~/.ssh/authorized_keys`, publicKey)
}
