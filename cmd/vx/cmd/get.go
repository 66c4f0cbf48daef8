package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/skdas20/VaultX/internal/crypto"
)

var getCmd = &cobra.Command{
	Use:   "get <project> <key>",
	Short: "Get a secret from a project",
	Long: `Print the decrypted secret value to stdout with no trailing
newline, making the command safe to capture:

  TOKEN=$(vx get alpha TOKEN)

Reading an expired secret removes it and fails.`,
	Args: cobra.ExactArgs(2),
	RunE: runGet,
}

func init() {
	rootCmd.AddCommand(getCmd)
}

func runGet(_ *cobra.Command, args []string) error {
	project, key := args[0], args[1]
	engine := newEngine()

	return runWithPassphrase(func(passphrase []byte) error {
		value, err := engine.GetSecret(passphrase, project, key)
		if err != nil {
			return err
		}
		defer crypto.Zero(value)

		_, err = os.Stdout.Write(value)
		return err
	})
}
