package cmd

import (
	"github.com/spf13/cobra"

	"github.com/skdas20/VaultX/internal/crypto"
)

var editCmd = &cobra.Command{
	Use:   "edit <project> <key>",
	Short: "Replace a secret's value",
	Long: `Replace a secret's value, keeping whatever remains of its TTL.
The new value is prompted with echo disabled.`,
	Args: cobra.ExactArgs(2),
	RunE: runEdit,
}

func init() {
	rootCmd.AddCommand(editCmd)
}

func runEdit(_ *cobra.Command, args []string) error {
	project, key := args[0], args[1]
	engine := newEngine()

	Info("Editing secret '%s' in project '%s'.", key, project)
	value, err := readSecretValue("", "")
	if err != nil {
		return err
	}
	defer crypto.Zero(value)

	err = runWithPassphrase(func(passphrase []byte) error {
		return engine.EditSecret(passphrase, project, key, value)
	})
	if err != nil {
		return err
	}
	Success("Secret '%s' updated.", key)
	return nil
}
