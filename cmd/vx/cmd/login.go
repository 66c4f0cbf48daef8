package cmd

import (
	"github.com/spf13/cobra"

	"github.com/skdas20/VaultX/internal/crypto"
	"github.com/skdas20/VaultX/internal/session"
	"github.com/skdas20/VaultX/internal/vault"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Cache the vault password for the current terminal session",
	Long: `Verify the master password and cache it, encrypted, for the
current terminal session so subsequent commands do not prompt again.`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)
}

func runLogin(_ *cobra.Command, _ []string) error {
	engine := newEngine()
	if !engine.Exists() {
		return vault.ErrNotInitialized
	}

	passphrase, err := promptPassphrase("Enter master password: ")
	if err != nil {
		return err
	}
	defer crypto.Zero(passphrase)

	if err := engine.VerifyPassphrase(passphrase); err != nil {
		return err
	}
	if err := session.Cache(passphrase); err != nil {
		return err
	}

	Success("Password cached for current session.")
	Info("Subsequent commands will use the cached password.")
	return nil
}
