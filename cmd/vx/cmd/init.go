package cmd

import (
	"github.com/spf13/cobra"

	"github.com/skdas20/VaultX/internal/crypto"
)

var initCmd = &cobra.Command{
	Use:   "init <project>",
	Short: "Initialize a new project in the vault",
	Long: `Create the vault with an empty project, or add a project to an
existing vault. Creating the vault prompts for a new master password with
confirmation.`,
	Args: cobra.ExactArgs(1),
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(_ *cobra.Command, args []string) error {
	project := args[0]
	engine := newEngine()

	if !engine.Exists() {
		Info("Creating new vault in %s", engine.Dir())
		passphrase, err := promptNewPassphrase()
		if err != nil {
			return err
		}
		defer crypto.Zero(passphrase)

		if err := engine.Initialize(passphrase, project); err != nil {
			return err
		}
		Success("Vault created with project '%s'.", project)
		return nil
	}

	err := runWithPassphrase(func(passphrase []byte) error {
		return engine.Initialize(passphrase, project)
	})
	if err != nil {
		return err
	}
	Success("Project '%s' created.", project)
	return nil
}
