// Package vault holds the decrypted vault object model and the engine that
// moves it between its encrypted on-disk form and memory.
//
// The model is a straight ownership tree: a Vault owns its Projects and
// SSHIdentities, a Project owns its Secrets. Relations are realized by name
// lookup; there are no back-pointers.
package vault

import (
	"fmt"

	"github.com/skdas20/VaultX/internal/crypto"
	"github.com/skdas20/VaultX/internal/ttl"
	"github.com/skdas20/VaultX/internal/validation"
)

// FormatVersion is the logical vault format version carried in the payload.
const FormatVersion int64 = 1

// Secret is a single encrypted value under a project. The nonce is stored
// detached and is unique for the lifetime of the current master-derived key.
type Secret struct {
	Key            string
	EncryptedValue []byte
	Nonce          []byte
	CreatedAt      int64
	ExpiresAt      *int64 // nil = never expires
}

// Project groups secrets under a name.
type Project struct {
	Name      string
	Secrets   map[string]*Secret
	CreatedAt int64
}

// SSHIdentity is a stored Ed25519 keypair. The public key is kept verbatim
// in OpenSSH text form; the private key seed is encrypted.
type SSHIdentity struct {
	Name                string
	PublicKey           string
	EncryptedPrivateKey []byte
	Nonce               []byte
	CreatedAt           int64
}

// SSHServer is a connection shorthand binding a remote user@host to a
// stored identity.
type SSHServer struct {
	Name         string
	Username     string
	Host         string
	IdentityName string
	CreatedAt    int64
}

// Vault is the decrypted logical state. It performs no I/O and no key
// derivation; the methods that store or return secret values encrypt and
// decrypt with a master-derived key supplied by the engine.
type Vault struct {
	Version       int64
	Projects      map[string]*Project
	SSHIdentities map[string]*SSHIdentity
	SSHServers    map[string]*SSHServer
}

// New creates an empty vault at the current format version.
func New() *Vault {
	return &Vault{
		Version:       FormatVersion,
		Projects:      make(map[string]*Project),
		SSHIdentities: make(map[string]*SSHIdentity),
		SSHServers:    make(map[string]*SSHServer),
	}
}

// InitProject adds an empty project.
func (v *Vault) InitProject(name string, now int64) error {
	if err := validation.Name(name); err != nil {
		return err
	}
	if _, ok := v.Projects[name]; ok {
		return fmt.Errorf("project %q: %w", name, ErrProjectExists)
	}

	v.Projects[name] = &Project{
		Name:      name,
		Secrets:   make(map[string]*Secret),
		CreatedAt: now,
	}
	return nil
}

// AddSecret encrypts material under the supplied master-derived key and
// stores it. Replacing an existing key is allowed; the previous ciphertext
// and nonce are zeroized before release.
func (v *Vault) AddSecret(project, key string, material, masterKey []byte, ttlSeconds *int64, now int64) error {
	if err := validation.Name(key); err != nil {
		return err
	}

	proj, ok := v.Projects[project]
	if !ok {
		return fmt.Errorf("project %q: %w", project, ErrProjectMissing)
	}

	var expiresAt *int64
	if ttlSeconds != nil {
		if *ttlSeconds <= 0 {
			return fmt.Errorf("%w: value must be positive", ttl.ErrInvalidTTL)
		}
		expiry, err := ttl.ExpiresAt(now, *ttlSeconds)
		if err != nil {
			return err
		}
		expiresAt = &expiry
	}

	ciphertext, nonce, err := crypto.Encrypt(masterKey, material)
	if err != nil {
		return fmt.Errorf("encrypt secret: %w", err)
	}

	if prev, ok := proj.Secrets[key]; ok {
		crypto.Zero(prev.EncryptedValue)
		crypto.Zero(prev.Nonce)
	}

	proj.Secrets[key] = &Secret{
		Key:            key,
		EncryptedValue: ciphertext,
		Nonce:          nonce,
		CreatedAt:      now,
		ExpiresAt:      expiresAt,
	}
	return nil
}

// GetSecret locates and decrypts a secret. Expiry is the caller's concern:
// check the secret's ExpiresAt with ttl.IsExpired before calling this, or go
// through the engine which removes expired entries as a side effect.
func (v *Vault) GetSecret(project, key string, masterKey []byte) ([]byte, error) {
	secret, err := v.lookupSecret(project, key)
	if err != nil {
		return nil, err
	}

	plaintext, err := crypto.Decrypt(masterKey, secret.Nonce, secret.EncryptedValue)
	if err != nil {
		return nil, fmt.Errorf("decrypt secret: %w", err)
	}
	return plaintext, nil
}

// RemoveSecret deletes a secret, zeroizing its blob.
func (v *Vault) RemoveSecret(project, key string) error {
	proj, ok := v.Projects[project]
	if !ok {
		return fmt.Errorf("project %q: %w", project, ErrProjectMissing)
	}

	secret, ok := proj.Secrets[key]
	if !ok {
		return fmt.Errorf("secret %q: %w", key, ErrSecretMissing)
	}

	crypto.Zero(secret.EncryptedValue)
	crypto.Zero(secret.Nonce)
	delete(proj.Secrets, key)
	return nil
}

// RemoveProject deletes a project and all its secrets, zeroizing the blobs.
func (v *Vault) RemoveProject(name string) error {
	proj, ok := v.Projects[name]
	if !ok {
		return fmt.Errorf("project %q: %w", name, ErrProjectMissing)
	}

	for _, secret := range proj.Secrets {
		crypto.Zero(secret.EncryptedValue)
		crypto.Zero(secret.Nonce)
	}
	delete(v.Projects, name)
	return nil
}

// AddSSHIdentity encrypts a private key seed and stores it with its
// verbatim OpenSSH public key.
func (v *Vault) AddSSHIdentity(name, publicKey string, privateKey, masterKey []byte, now int64) error {
	if err := validation.Name(name); err != nil {
		return err
	}
	if _, ok := v.SSHIdentities[name]; ok {
		return fmt.Errorf("identity %q: %w", name, ErrIdentityExists)
	}

	ciphertext, nonce, err := crypto.Encrypt(masterKey, privateKey)
	if err != nil {
		return fmt.Errorf("encrypt private key: %w", err)
	}

	v.SSHIdentities[name] = &SSHIdentity{
		Name:                name,
		PublicKey:           publicKey,
		EncryptedPrivateKey: ciphertext,
		Nonce:               nonce,
		CreatedAt:           now,
	}
	return nil
}

// GetSSHIdentity decrypts an identity's private key. The caller owns the
// returned buffer and must zeroize it.
func (v *Vault) GetSSHIdentity(name string, masterKey []byte) (publicKey string, privateKey []byte, err error) {
	identity, ok := v.SSHIdentities[name]
	if !ok {
		return "", nil, fmt.Errorf("identity %q: %w", name, ErrIdentityMissing)
	}

	privateKey, err = crypto.Decrypt(masterKey, identity.Nonce, identity.EncryptedPrivateKey)
	if err != nil {
		return "", nil, fmt.Errorf("decrypt private key: %w", err)
	}
	return identity.PublicKey, privateKey, nil
}

// AddSSHServer stores a connection shorthand. The referenced identity must
// exist.
func (v *Vault) AddSSHServer(name, username, host, identityName string, now int64) error {
	if err := validation.Name(name); err != nil {
		return err
	}
	if _, ok := v.SSHIdentities[identityName]; !ok {
		return fmt.Errorf("identity %q: %w", identityName, ErrIdentityMissing)
	}

	v.SSHServers[name] = &SSHServer{
		Name:         name,
		Username:     username,
		Host:         host,
		IdentityName: identityName,
		CreatedAt:    now,
	}
	return nil
}

// GetSSHServer looks up a server shorthand.
func (v *Vault) GetSSHServer(name string) (*SSHServer, error) {
	server, ok := v.SSHServers[name]
	if !ok {
		return nil, fmt.Errorf("server %q: %w", name, ErrServerMissing)
	}
	return server, nil
}

// HasSSHServer reports whether a server shorthand exists.
func (v *Vault) HasSSHServer(name string) bool {
	_, ok := v.SSHServers[name]
	return ok
}

// HasSecret reports whether a project holds the given key.
func (v *Vault) HasSecret(project, key string) bool {
	proj, ok := v.Projects[project]
	if !ok {
		return false
	}
	_, ok = proj.Secrets[key]
	return ok
}

// Zeroize overwrites every encrypted blob in the vault. Called by the
// engine before the in-memory vault is dropped.
func (v *Vault) Zeroize() {
	for _, proj := range v.Projects {
		for _, secret := range proj.Secrets {
			crypto.Zero(secret.EncryptedValue)
			crypto.Zero(secret.Nonce)
		}
	}
	for _, identity := range v.SSHIdentities {
		crypto.Zero(identity.EncryptedPrivateKey)
		crypto.Zero(identity.Nonce)
	}
}

func (v *Vault) lookupSecret(project, key string) (*Secret, error) {
	proj, ok := v.Projects[project]
	if !ok {
		return nil, fmt.Errorf("project %q: %w", project, ErrProjectMissing)
	}
	secret, ok := proj.Secrets[key]
	if !ok {
		return nil, fmt.Errorf("secret %q: %w", key, ErrSecretMissing)
	}
	return secret, nil
}
