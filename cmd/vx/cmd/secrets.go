package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var secretsCmd = &cobra.Command{
	Use:   "secrets <project>",
	Short: "List all secrets in a project",
	Long: `List the secret keys of a project with their expiry status.
Secret values are never shown; use 'vx get' for that.`,
	Args: cobra.ExactArgs(1),
	RunE: runSecrets,
}

func init() {
	rootCmd.AddCommand(secretsCmd)
}

func runSecrets(_ *cobra.Command, args []string) error {
	project := args[0]
	engine := newEngine()

	return runWithPassphrase(func(passphrase []byte) error {
		secrets, err := engine.ListSecrets(passphrase, project)
		if err != nil {
			return err
		}

		if len(secrets) == 0 {
			Info("Project '%s' has no secrets.", project)
			return nil
		}

		fmt.Printf("%s\n", Bold("Secrets in '%s':", project))
		for _, s := range secrets {
			if s.Expired {
				fmt.Printf("  %s  %s\n", s.Key, warningColor.Sprint("(expired)"))
			} else {
				fmt.Printf("  %s  (expires: %s)\n", s.Key, s.Expiry)
			}
		}
		return nil
	})
}
