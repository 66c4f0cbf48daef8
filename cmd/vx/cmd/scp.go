package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"
)

var scpCmd = &cobra.Command{
	Use:   "scp",
	Short: "Secure copy to or from a configured server",
	Long: `Copy files with the external scp client using a configured server
shorthand. Prefix remote paths with ':':

  vx scp web ./build.tar.gz :/srv/app/
  vx scp web :/var/log/app.log ./logs/`,
	DisableFlagParsing: true,
	RunE:               runSCP,
}

func init() {
	rootCmd.AddCommand(scpCmd)
}

func runSCP(cmd *cobra.Command, args []string) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" {
		return cmd.Help()
	}
	if len(args) < 2 {
		return errors.New("usage: vx scp <server> <source> <dest> (use ':' prefix for remote paths)")
	}

	server, scpArgs := args[0], args[1:]
	engine := newEngine()

	return runWithPassphrase(func(passphrase []byte) error {
		cfg, ok, err := engine.SSHServer(passphrase, server)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: no server '%s' configured, set it up with: vx ssh connect %s", ErrSSH, server, server)
		}

		Info("Copying with identity '%s'...", cfg.IdentityName)
		return engine.SSHExportEphemeral(passphrase, cfg.IdentityName, func(keyPath string) error {
			return runSCPClient(keyPath, cfg.Username+"@"+cfg.Host, scpArgs)
		})
	})
}

// runSCPClient invokes the external scp binary, rewriting ':'-prefixed
// arguments into user@host:path form.
func runSCPClient(keyPath, remote string, rawArgs []string) error {
	args := []string{"-i", keyPath}
	for _, arg := range rawArgs {
		if strings.HasPrefix(arg, ":") {
			args = append(args, remote+arg)
		} else {
			args = append(args, arg)
		}
	}

	c := exec.Command("scp", args...)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr

	if err := c.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitStatusError{Code: exitErr.ExitCode()}
		}
		return fmt.Errorf("%w: %v", ErrSSH, err)
	}
	return nil
}
