package vault

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/skdas20/VaultX/internal/container"
	"github.com/skdas20/VaultX/internal/crypto"
	"github.com/skdas20/VaultX/internal/sshid"
	"github.com/skdas20/VaultX/internal/sshkey"
	"github.com/skdas20/VaultX/internal/store"
	"github.com/skdas20/VaultX/internal/ttl"
)

const (
	// ExpiringSoonWindow classifies secrets whose expiry is within 24 hours.
	ExpiringSoonWindow int64 = 24 * 3600

	// LongLivedAge classifies untimed secrets created more than 90 days ago.
	LongLivedAge int64 = 90 * 86400

	// DefaultLockTimeout bounds the wait for the advisory vault lock.
	DefaultLockTimeout = 2 * time.Second
)

// highRiskPatterns flag sensitive-looking secret keys that carry no TTL.
var highRiskPatterns = []string{
	"password", "passwd", "secret", "token", "api_key", "apikey",
	"private_key", "privatekey", "credential",
}

// Engine executes vault operations. Each operation acquires the advisory
// lock, unlocks the container into memory, applies its change, and seals
// or zeroizes. No vault state persists in memory between operations.
type Engine struct {
	store       *store.Store
	exporter    *sshid.Exporter
	lockTimeout time.Duration
	now         func() int64
}

// NewEngine returns an engine rooted at the given vault directory.
func NewEngine(dir string) *Engine {
	s := store.New(dir)
	return &Engine{
		store:       s,
		exporter:    sshid.NewExporter(s.TempDir()),
		lockTimeout: DefaultLockTimeout,
		now:         func() int64 { return time.Now().Unix() },
	}
}

// SetClock replaces the engine's clock. Used by tests and by callers that
// need reproducible expiry evaluation.
func (e *Engine) SetClock(now func() int64) { e.now = now }

// SetLockTimeout adjusts the bounded wait for the advisory lock.
func (e *Engine) SetLockTimeout(d time.Duration) { e.lockTimeout = d }

// Exists reports whether a vault container is present on disk.
func (e *Engine) Exists() bool { return e.store.Exists() }

// Dir returns the vault directory.
func (e *Engine) Dir() string { return e.store.Dir() }

// Initialize creates the vault with an empty named project, or adds the
// project to an existing vault.
func (e *Engine) Initialize(passphrase []byte, project string) error {
	return e.withLock(func() error {
		if !e.store.Exists() {
			v := New()
			if err := v.InitProject(project, e.now()); err != nil {
				return err
			}
			return e.sealNew(v, passphrase)
		}

		v, key, err := e.unlock(passphrase)
		if err != nil {
			return err
		}
		defer e.drop(v, key)

		if err := v.InitProject(project, e.now()); err != nil {
			return err
		}
		return e.seal(v, key, passphrase)
	})
}

// AddSecret encrypts material under the master-derived key and stores it
// under project/key. ttlSeconds of nil means the secret never expires.
func (e *Engine) AddSecret(passphrase []byte, project, key string, material []byte, ttlSeconds *int64) error {
	return e.withLock(func() error {
		v, masterKey, err := e.unlock(passphrase)
		if err != nil {
			return err
		}
		defer e.drop(v, masterKey)

		if err := v.AddSecret(project, key, material, masterKey, ttlSeconds, e.now()); err != nil {
			return err
		}
		return e.seal(v, masterKey, passphrase)
	})
}

// GetSecret returns the decrypted secret value. Reading an expired secret
// removes it, re-seals the vault, and fails with ErrExpired; this is the
// only failure with a mutating side effect.
func (e *Engine) GetSecret(passphrase []byte, project, key string) ([]byte, error) {
	var value []byte
	err := e.withLock(func() error {
		v, masterKey, err := e.unlock(passphrase)
		if err != nil {
			return err
		}
		defer e.drop(v, masterKey)

		secret, err := v.lookupSecret(project, key)
		if err != nil {
			return err
		}

		if ttl.IsExpired(secret.ExpiresAt, e.now()) {
			if err := v.RemoveSecret(project, key); err != nil {
				return err
			}
			if err := e.seal(v, masterKey, passphrase); err != nil {
				return err
			}
			return fmt.Errorf("secret %q: %w", key, ErrExpired)
		}

		value, err = v.GetSecret(project, key, masterKey)
		return err
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// EditSecret replaces a secret's value, preserving whatever remains of its
// TTL. Editing an expired or missing secret fails without mutation.
func (e *Engine) EditSecret(passphrase []byte, project, key string, material []byte) error {
	return e.withLock(func() error {
		v, masterKey, err := e.unlock(passphrase)
		if err != nil {
			return err
		}
		defer e.drop(v, masterKey)

		secret, err := v.lookupSecret(project, key)
		if err != nil {
			return err
		}

		now := e.now()
		if ttl.IsExpired(secret.ExpiresAt, now) {
			return fmt.Errorf("secret %q: %w", key, ErrExpired)
		}

		var remaining *int64
		if secret.ExpiresAt != nil {
			r := *secret.ExpiresAt - now
			remaining = &r
		}

		if err := v.AddSecret(project, key, material, masterKey, remaining, now); err != nil {
			return err
		}
		return e.seal(v, masterKey, passphrase)
	})
}

// RemoveSecret deletes one secret.
func (e *Engine) RemoveSecret(passphrase []byte, project, key string) error {
	return e.withLock(func() error {
		v, masterKey, err := e.unlock(passphrase)
		if err != nil {
			return err
		}
		defer e.drop(v, masterKey)

		if err := v.RemoveSecret(project, key); err != nil {
			return err
		}
		return e.seal(v, masterKey, passphrase)
	})
}

// RemoveProject deletes a project and all its secrets.
func (e *Engine) RemoveProject(passphrase []byte, project string) error {
	return e.withLock(func() error {
		v, masterKey, err := e.unlock(passphrase)
		if err != nil {
			return err
		}
		defer e.drop(v, masterKey)

		if err := v.RemoveProject(project); err != nil {
			return err
		}
		return e.seal(v, masterKey, passphrase)
	})
}

// ProjectInfo is a read-only view row for the project listing.
type ProjectInfo struct {
	Name        string
	SecretCount int
	CreatedAt   int64
}

// ListProjects returns the projects sorted by name. Secret material is
// never included.
func (e *Engine) ListProjects(passphrase []byte) ([]ProjectInfo, error) {
	var infos []ProjectInfo
	err := e.withLock(func() error {
		v, masterKey, err := e.unlock(passphrase)
		if err != nil {
			return err
		}
		defer e.drop(v, masterKey)

		for _, proj := range v.Projects {
			infos = append(infos, ProjectInfo{
				Name:        proj.Name,
				SecretCount: len(proj.Secrets),
				CreatedAt:   proj.CreatedAt,
			})
		}
		sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
		return nil
	})
	if err != nil {
		return nil, err
	}
	return infos, nil
}

// SecretInfo is a read-only view row for the per-project secret listing.
// Expiry contains "never", "expired", or "in " followed by a humanized
// remaining duration (e.g. "in 1d 1h").
type SecretInfo struct {
	Key       string
	CreatedAt int64
	Expiry    string
	Expired   bool
}

// ListSecrets returns the secrets of a project sorted by key, with expiry
// status in human form. Secret material is never included.
func (e *Engine) ListSecrets(passphrase []byte, project string) ([]SecretInfo, error) {
	var infos []SecretInfo
	err := e.withLock(func() error {
		v, masterKey, err := e.unlock(passphrase)
		if err != nil {
			return err
		}
		defer e.drop(v, masterKey)

		proj, ok := v.Projects[project]
		if !ok {
			return fmt.Errorf("project %q: %w", project, ErrProjectMissing)
		}

		now := e.now()
		for key, secret := range proj.Secrets {
			info := SecretInfo{Key: key, CreatedAt: secret.CreatedAt}
			switch {
			case secret.ExpiresAt == nil:
				info.Expiry = "never"
			case ttl.IsExpired(secret.ExpiresAt, now):
				info.Expiry = "expired"
				info.Expired = true
			default:
				info.Expiry = "in " + ttl.Humanize(*secret.ExpiresAt-now)
			}
			infos = append(infos, info)
		}
		sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
		return nil
	})
	if err != nil {
		return nil, err
	}
	return infos, nil
}

// AuditStatus classifies one secret in an audit report.
type AuditStatus string

const (
	AuditExpired      AuditStatus = "expired"
	AuditExpiringSoon AuditStatus = "expiring-soon"
	AuditLongLived    AuditStatus = "long-lived"
	AuditHealthy      AuditStatus = "healthy"
)

// AuditEntry is one secret's audit classification.
type AuditEntry struct {
	Project  string
	Key      string
	Status   AuditStatus
	AgeDays  int64
	HighRisk bool
}

// AuditReport summarizes a vault audit. Expired entries listed here have
// already been removed from the vault.
type AuditReport struct {
	Entries      []AuditEntry
	TotalSecrets int
	Expired      int
	ExpiringSoon int
	LongLived    int
	HighRisk     int
}

// Audit classifies every secret and prunes the expired ones. The vault is
// re-sealed only if something was removed.
func (e *Engine) Audit(passphrase []byte) (*AuditReport, error) {
	report := &AuditReport{}
	err := e.withLock(func() error {
		v, masterKey, err := e.unlock(passphrase)
		if err != nil {
			return err
		}
		defer e.drop(v, masterKey)

		now := e.now()
		pruned := false

		for projectName, proj := range v.Projects {
			for key, secret := range proj.Secrets {
				report.TotalSecrets++
				entry := AuditEntry{
					Project: projectName,
					Key:     key,
					AgeDays: (now - secret.CreatedAt) / 86400,
				}

				switch {
				case ttl.IsExpired(secret.ExpiresAt, now):
					entry.Status = AuditExpired
					report.Expired++
				case secret.ExpiresAt != nil && *secret.ExpiresAt-now <= ExpiringSoonWindow:
					entry.Status = AuditExpiringSoon
					report.ExpiringSoon++
				case secret.ExpiresAt == nil && now-secret.CreatedAt > LongLivedAge:
					entry.Status = AuditLongLived
					report.LongLived++
				default:
					entry.Status = AuditHealthy
				}

				if secret.ExpiresAt == nil && isHighRiskKey(key) {
					entry.HighRisk = true
					report.HighRisk++
				}

				report.Entries = append(report.Entries, entry)

				if entry.Status == AuditExpired {
					if err := v.RemoveSecret(projectName, key); err != nil {
						return err
					}
					pruned = true
				}
			}
		}

		sort.Slice(report.Entries, func(i, j int) bool {
			if report.Entries[i].Project != report.Entries[j].Project {
				return report.Entries[i].Project < report.Entries[j].Project
			}
			return report.Entries[i].Key < report.Entries[j].Key
		})

		if pruned {
			return e.seal(v, masterKey, passphrase)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

// SSHCreate generates a fresh Ed25519 identity and stores it. Returns the
// OpenSSH public key line.
func (e *Engine) SSHCreate(passphrase []byte, name string) (string, error) {
	var publicKey string
	err := e.withLock(func() error {
		v, masterKey, err := e.unlock(passphrase)
		if err != nil {
			return err
		}
		defer e.drop(v, masterKey)

		pub, seed, err := sshkey.Generate()
		if err != nil {
			return err
		}
		defer crypto.Zero(seed)

		if err := v.AddSSHIdentity(name, pub, seed, masterKey, e.now()); err != nil {
			return err
		}
		if err := e.seal(v, masterKey, passphrase); err != nil {
			return err
		}
		publicKey = pub
		return nil
	})
	if err != nil {
		return "", err
	}
	return publicKey, nil
}

// SSHIdentityInfo is a read-only view row for the identity listing.
type SSHIdentityInfo struct {
	Name      string
	PublicKey string
	CreatedAt int64
}

// ListSSHIdentities returns the stored identities sorted by name.
func (e *Engine) ListSSHIdentities(passphrase []byte) ([]SSHIdentityInfo, error) {
	var infos []SSHIdentityInfo
	err := e.withLock(func() error {
		v, masterKey, err := e.unlock(passphrase)
		if err != nil {
			return err
		}
		defer e.drop(v, masterKey)

		for _, identity := range v.SSHIdentities {
			infos = append(infos, SSHIdentityInfo{
				Name:      identity.Name,
				PublicKey: identity.PublicKey,
				CreatedAt: identity.CreatedAt,
			})
		}
		sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
		return nil
	})
	if err != nil {
		return nil, err
	}
	return infos, nil
}

// SSHAddServer stores a connection shorthand for an existing identity.
func (e *Engine) SSHAddServer(passphrase []byte, name, username, host, identityName string) error {
	return e.withLock(func() error {
		v, masterKey, err := e.unlock(passphrase)
		if err != nil {
			return err
		}
		defer e.drop(v, masterKey)

		if err := v.AddSSHServer(name, username, host, identityName, e.now()); err != nil {
			return err
		}
		return e.seal(v, masterKey, passphrase)
	})
}

// SSHServerConfig is the read-only view of a stored server shorthand.
type SSHServerConfig struct {
	Name         string
	Username     string
	Host         string
	IdentityName string
}

// SSHServer looks up a server shorthand; ok is false when none exists.
func (e *Engine) SSHServer(passphrase []byte, name string) (*SSHServerConfig, bool, error) {
	var cfg *SSHServerConfig
	err := e.withLock(func() error {
		v, masterKey, err := e.unlock(passphrase)
		if err != nil {
			return err
		}
		defer e.drop(v, masterKey)

		server, err := v.GetSSHServer(name)
		if err != nil {
			if errors.Is(err, ErrServerMissing) {
				return nil
			}
			return err
		}
		cfg = &SSHServerConfig{
			Name:         server.Name,
			Username:     server.Username,
			Host:         server.Host,
			IdentityName: server.IdentityName,
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return cfg, cfg != nil, nil
}

// SSHExportEphemeral decrypts an identity's private key into a temporary
// file and hands the path to scope. The file is created fresh with
// owner-only permissions, and on any exit path it is overwritten with
// zeros and deleted before this method returns.
func (e *Engine) SSHExportEphemeral(passphrase []byte, name string, scope func(keyPath string) error) error {
	return e.withLock(func() error {
		v, masterKey, err := e.unlock(passphrase)
		if err != nil {
			return err
		}
		defer e.drop(v, masterKey)

		_, seed, err := v.GetSSHIdentity(name, masterKey)
		if err != nil {
			return err
		}
		defer crypto.Zero(seed)

		pem, err := sshkey.PrivateKeyPEM(seed, name)
		if err != nil {
			return err
		}
		defer crypto.Zero(pem)

		return e.exporter.ExportEphemeral(pem, scope)
	})
}

// VerifyPassphrase checks the passphrase by unlocking and discarding the
// vault. Used by the session login command.
func (e *Engine) VerifyPassphrase(passphrase []byte) error {
	return e.withLock(func() error {
		v, masterKey, err := e.unlock(passphrase)
		if err != nil {
			return err
		}
		e.drop(v, masterKey)
		return nil
	})
}

// withLock runs op while holding the advisory lock, sweeping stale key
// exports first.
func (e *Engine) withLock(op func() error) error {
	release, err := e.store.Lock(e.lockTimeout)
	if err != nil {
		if errors.Is(err, store.ErrBusy) {
			return ErrVaultBusy
		}
		return err
	}
	defer release()

	e.exporter.Sweep()
	return op()
}

// unlock reads the container, derives the master key, decrypts, and
// reconstructs the vault. Wrong passphrase, tampering, an unrecognized
// container, and an undecodable payload are all collapsed into
// ErrAuthFailed so callers cannot distinguish them.
func (e *Engine) unlock(passphrase []byte) (*Vault, []byte, error) {
	data, err := e.store.Read()
	if err != nil {
		if errors.Is(err, store.ErrNotExist) {
			return nil, nil, ErrNotInitialized
		}
		return nil, nil, err
	}

	salt, nonce, ciphertext, err := container.Decode(data)
	if err != nil {
		slog.Debug("container decode failed", "error", err)
		return nil, nil, ErrAuthFailed
	}

	masterKey, err := crypto.DeriveKey(passphrase, salt)
	if err != nil {
		return nil, nil, err
	}

	payload, err := crypto.Decrypt(masterKey, nonce, ciphertext)
	if err != nil {
		crypto.Zero(masterKey)
		return nil, nil, ErrAuthFailed
	}
	defer crypto.Zero(payload)

	v, err := Unmarshal(payload)
	if err != nil {
		crypto.Zero(masterKey)
		slog.Debug("payload decode failed", "error", err)
		return nil, nil, ErrAuthFailed
	}

	return v, masterKey, nil
}

// seal writes the vault back with a fresh salt and a fresh master key.
// Every stored blob is re-encrypted under the new key with fresh nonces,
// which keeps nonce uniqueness trivially true per derived key.
func (e *Engine) seal(v *Vault, oldKey, passphrase []byte) error {
	newSalt, err := crypto.GenerateSalt()
	if err != nil {
		return err
	}

	newKey, err := crypto.DeriveKey(passphrase, newSalt)
	if err != nil {
		return err
	}
	defer crypto.Zero(newKey)

	if err := e.rekey(v, oldKey, newKey); err != nil {
		return err
	}
	return e.write(v, newSalt, newKey)
}

// sealNew writes a brand-new vault that holds no blobs encrypted under a
// previous key.
func (e *Engine) sealNew(v *Vault, passphrase []byte) error {
	salt, err := crypto.GenerateSalt()
	if err != nil {
		return err
	}

	key, err := crypto.DeriveKey(passphrase, salt)
	if err != nil {
		return err
	}
	defer crypto.Zero(key)

	return e.write(v, salt, key)
}

func (e *Engine) write(v *Vault, salt, key []byte) error {
	payload, err := Marshal(v)
	if err != nil {
		return fmt.Errorf("serialize vault: %w", err)
	}
	defer crypto.Zero(payload)

	ciphertext, nonce, err := crypto.Encrypt(key, payload)
	if err != nil {
		return err
	}

	data, err := container.Encode(salt, nonce, ciphertext)
	if err != nil {
		return err
	}

	return e.store.WriteAtomic(data)
}

// rekey re-encrypts every secret value and private key from oldKey to
// newKey.
func (e *Engine) rekey(v *Vault, oldKey, newKey []byte) error {
	for _, proj := range v.Projects {
		for key, secret := range proj.Secrets {
			if err := reencryptBlob(&secret.EncryptedValue, &secret.Nonce, oldKey, newKey); err != nil {
				return fmt.Errorf("re-encrypt secret %q: %w", key, err)
			}
		}
	}
	for name, identity := range v.SSHIdentities {
		if err := reencryptBlob(&identity.EncryptedPrivateKey, &identity.Nonce, oldKey, newKey); err != nil {
			return fmt.Errorf("re-encrypt identity %q: %w", name, err)
		}
	}
	return nil
}

func reencryptBlob(ciphertext, nonce *[]byte, oldKey, newKey []byte) error {
	plaintext, err := crypto.Decrypt(oldKey, *nonce, *ciphertext)
	if err != nil {
		return err
	}

	newCT, newNonce, err := crypto.Encrypt(newKey, plaintext)
	crypto.Zero(plaintext)
	if err != nil {
		return err
	}

	crypto.Zero(*ciphertext)
	crypto.Zero(*nonce)
	*ciphertext = newCT
	*nonce = newNonce
	return nil
}

// drop zeroizes the in-memory vault and the master key.
func (e *Engine) drop(v *Vault, masterKey []byte) {
	v.Zeroize()
	crypto.Zero(masterKey)
}

func isHighRiskKey(key string) bool {
	lower := strings.ToLower(key)
	for _, pattern := range highRiskPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}
