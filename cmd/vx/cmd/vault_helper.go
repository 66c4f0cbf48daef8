package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/skdas20/VaultX/internal/crypto"
	"github.com/skdas20/VaultX/internal/session"
	"github.com/skdas20/VaultX/internal/vault"
)

// passphraseEnv lets CI supply the passphrase without a terminal. Secret
// values themselves are never accepted this way or on argv.
const passphraseEnv = "VAULTX_PASSPHRASE"

// newEngine builds the vault engine for the configured directory.
func newEngine() *vault.Engine {
	e := vault.NewEngine(cfg.Home)
	e.SetLockTimeout(cfg.LockTimeout)
	return e
}

// runWithPassphrase resolves the master passphrase and invokes fn with it.
// Order: VAULTX_PASSPHRASE, the session cache, then an interactive prompt.
// A stale session cache is cleared and the user is prompted once.
func runWithPassphrase(fn func(passphrase []byte) error) error {
	if env := os.Getenv(passphraseEnv); env != "" {
		return fn([]byte(env))
	}

	if cached := session.Cached(); cached != nil {
		err := fn(cached)
		crypto.Zero(cached)
		if !errors.Is(err, vault.ErrAuthFailed) {
			return err
		}
		_ = session.Clear()
	}

	passphrase, err := promptPassphrase("Enter master password: ")
	if err != nil {
		return err
	}
	defer crypto.Zero(passphrase)

	return fn(passphrase)
}

// promptPassphrase reads a passphrase from the terminal with echo disabled.
func promptPassphrase(prompt string) ([]byte, error) {
	fmt.Fprint(os.Stderr, prompt)
	passphrase, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	return passphrase, nil
}

// promptNewPassphrase prompts twice for a new master passphrase and
// compares the entries in constant time.
func promptNewPassphrase() ([]byte, error) {
	passphrase, err := promptPassphrase("Enter master password: ")
	if err != nil {
		return nil, err
	}
	if len(passphrase) == 0 {
		return nil, errors.New("password cannot be empty")
	}

	confirm, err := promptPassphrase("Confirm master password: ")
	if err != nil {
		crypto.Zero(passphrase)
		return nil, err
	}
	defer crypto.Zero(confirm)

	if !crypto.Equal(passphrase, confirm) {
		crypto.Zero(passphrase)
		return nil, errors.New("passwords do not match")
	}
	return passphrase, nil
}

// readSecretValue reads a secret from a file, an environment variable, or
// an echo-disabled prompt. Secrets never arrive as command-line arguments.
func readSecretValue(file, env string) ([]byte, error) {
	switch {
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read secret file: %w", err)
		}
		return data, nil
	case env != "":
		value, ok := os.LookupEnv(env)
		if !ok {
			return nil, fmt.Errorf("environment variable %q not found", env)
		}
		return []byte(value), nil
	default:
		return promptPassphrase("Enter secret value: ")
	}
}

// stdinReader is shared so consecutive prompts do not drop buffered input.
var stdinReader = bufio.NewReader(os.Stdin)

// readLine reads one line of visible input.
func readLine(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	line, err := stdinReader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
