package vault

import "errors"

// The error taxonomy is a closed set. Wrong-passphrase and tampered-container
// failures are deliberately collapsed into ErrAuthFailed so callers cannot
// distinguish them.
var (
	// ErrAuthFailed covers wrong passphrase, tampered container, and
	// unrecognized container format alike.
	ErrAuthFailed = errors.New("Invalid password or corrupted vault.")

	// ErrNotInitialized is returned when no vault container exists yet.
	ErrNotInitialized = errors.New("vault not initialized, run 'vx init <project>' first")

	// ErrProjectExists is returned when creating a project that already exists.
	ErrProjectExists = errors.New("project already exists")

	// ErrProjectMissing is returned when a project cannot be found.
	ErrProjectMissing = errors.New("project not found")

	// ErrSecretMissing is returned when a key is absent under a project.
	ErrSecretMissing = errors.New("secret not found")

	// ErrExpired is returned when a secret is read past its expiry. The
	// expired entry is removed as a side effect.
	ErrExpired = errors.New("secret has expired")

	// ErrIdentityExists is returned on an SSH identity name collision.
	ErrIdentityExists = errors.New("SSH identity already exists")

	// ErrIdentityMissing is returned when an SSH identity cannot be found.
	ErrIdentityMissing = errors.New("SSH identity not found")

	// ErrServerMissing is returned when an SSH server config cannot be found.
	ErrServerMissing = errors.New("SSH server not found")

	// ErrUnsupportedPayload is returned when the decrypted payload carries
	// keys this version does not understand, so a downgrade cannot silently
	// drop fields.
	ErrUnsupportedPayload = errors.New("vault payload has unsupported fields")

	// ErrVaultBusy is returned when another process holds the vault lock.
	ErrVaultBusy = errors.New("vault is locked by another process, try again shortly")
)
