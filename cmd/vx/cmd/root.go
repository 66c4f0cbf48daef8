// Package cmd provides the CLI commands for vx.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/skdas20/VaultX/internal/config"
	"github.com/skdas20/VaultX/internal/logging"
)

var (
	vaultDir string
	verbose  bool

	cfg *config.Config
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "vx",
	Short: "VaultX - A zero-trust developer vault",
	Long: `VaultX keeps project-scoped secrets and SSH identities in a single
passphrase-encrypted file on your machine. No daemon, no network, no cloud.

Get started:
  vx init <project>              Create the vault with an empty project
  vx add <project> <key>         Add a secret (value prompted, never on argv)
  vx get <project> <key>         Print a decrypted secret
  vx ssh init <identity>         Create an SSH identity
  vx ssh connect <identity> <user@host>   Connect with an ephemeral key

The vault lives in ~/.vaultx by default; override with --vault or the
VAULTX_HOME environment variable.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&vaultDir, "vault", "", "vault directory (default ~/.vaultx)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

func initConfig() {
	cfg = config.Load(vaultDir, verbose)
	logging.Setup(cfg.Verbose)
}
