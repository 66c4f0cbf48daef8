package cmd

import (
	"github.com/spf13/cobra"

	"github.com/skdas20/VaultX/internal/crypto"
	"github.com/skdas20/VaultX/internal/ttl"
	"github.com/skdas20/VaultX/internal/vault"
)

var (
	addTTL  string
	addFile string
	addEnv  string
)

var addCmd = &cobra.Command{
	Use:   "add <project> [key]",
	Short: "Add a secret to a project",
	Long: `Add or replace a secret. The value is read from an interactive
prompt, a file (--file), or an environment variable (--env); it is never
accepted on the command line.

With no key, interactive mode adds secrets in a loop until an empty key
name is entered.

Examples:
  vx add alpha TOKEN
  vx add alpha TEMP --ttl 6h
  vx add alpha TLS_KEY --file ./key.pem`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addTTL, "ttl", "", "time-to-live (e.g. 45s, 30m, 6h, 7d, 2w)")
	addCmd.Flags().StringVar(&addFile, "file", "", "read the secret value from a file")
	addCmd.Flags().StringVar(&addEnv, "env", "", "read the secret value from an environment variable")
	rootCmd.AddCommand(addCmd)
}

func runAdd(_ *cobra.Command, args []string) error {
	project := args[0]

	var ttlSeconds *int64
	if addTTL != "" {
		seconds, err := ttl.Parse(addTTL)
		if err != nil {
			return err
		}
		ttlSeconds = &seconds
	}

	engine := newEngine()

	if len(args) == 2 {
		return addOne(engine, project, args[1], ttlSeconds)
	}

	Info("Interactive mode. Leave the key empty to finish.")
	for {
		key, err := readLine("Enter key name: ")
		if err != nil {
			return err
		}
		if key == "" {
			return nil
		}
		if err := addOne(engine, project, key, ttlSeconds); err != nil {
			Error("%v", err)
		}
	}
}

func addOne(engine *vault.Engine, project, key string, ttlSeconds *int64) error {
	value, err := readSecretValue(addFile, addEnv)
	if err != nil {
		return err
	}
	defer crypto.Zero(value)

	err = runWithPassphrase(func(passphrase []byte) error {
		return engine.AddSecret(passphrase, project, key, value, ttlSeconds)
	})
	if err != nil {
		return err
	}

	if ttlSeconds != nil {
		Success("Secret '%s' added to project '%s' (expires in %s).", key, project, ttl.Humanize(*ttlSeconds))
	} else {
		Success("Secret '%s' added to project '%s'.", key, project)
	}
	return nil
}
