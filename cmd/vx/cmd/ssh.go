package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"

	"github.com/skdas20/VaultX/internal/sshkey"
	"github.com/skdas20/VaultX/internal/vault"
)

var sshCmd = &cobra.Command{
	Use:   "ssh",
	Short: "SSH identity management and connections",
	Long: `Manage vault-stored SSH identities and connect with them. The
private key only ever touches disk as a short-lived temporary file that is
shredded when the SSH client exits.

Usage:
  vx ssh init <name>                       Create a new SSH identity
  vx ssh connect <identity> <user@host>    Connect using an identity
  vx ssh connect <server>                  Configure a server shorthand
  vx ssh <server> [command...]             Connect to a configured server`,
	// Dispatch is manual so server names and pass-through SSH arguments
	// (including flags) survive untouched.
	DisableFlagParsing: true,
	RunE:               runSSH,
}

func init() {
	rootCmd.AddCommand(sshCmd)
}

func runSSH(cmd *cobra.Command, args []string) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" {
		return cmd.Help()
	}

	switch args[0] {
	case "init":
		if len(args) != 2 {
			return errors.New("usage: vx ssh init <name>")
		}
		return sshInit(args[1])
	case "connect":
		if len(args) < 2 {
			return errors.New("usage: vx ssh connect <identity_or_server> [user@host] [args...]")
		}
		if len(args) == 2 {
			return sshConnectOrSetup(args[1])
		}
		return sshConnect(args[1], args[2], args[3:])
	default:
		// vx ssh <server> [command...]
		return sshConnectServer(args[0], args[1:])
	}
}

// sshInit generates and stores a new identity, then prints the public key
// with setup instructions.
func sshInit(name string) error {
	engine := newEngine()
	if !engine.Exists() {
		return vault.ErrNotInitialized
	}

	var publicKey string
	err := runWithPassphrase(func(passphrase []byte) error {
		var err error
		publicKey, err = engine.SSHCreate(passphrase, name)
		return err
	})
	if err != nil {
		return err
	}

	Success("SSH identity '%s' created.", name)
	fmt.Println()
	fmt.Println(Bold("Public key:"))
	fmt.Println(publicKey)
	fmt.Println()
	fmt.Println(Bold("Setup commands for the remote server:"))
	fmt.Println(sshkey.SetupCommands(publicKey))
	return nil
}

// sshConnect connects using an explicit identity and target.
func sshConnect(identity, target string, extraArgs []string) error {
	engine := newEngine()

	return runWithPassphrase(func(passphrase []byte) error {
		Info("Connecting to %s using identity '%s'...", target, identity)
		return engine.SSHExportEphemeral(passphrase, identity, func(keyPath string) error {
			return runSSHClient(keyPath, target, extraArgs)
		})
	})
}

// sshConnectServer connects using a stored server shorthand.
func sshConnectServer(server string, commandArgs []string) error {
	engine := newEngine()

	return runWithPassphrase(func(passphrase []byte) error {
		cfg, ok, err := engine.SSHServer(passphrase, server)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: no server '%s' configured, set it up with: vx ssh connect %s", ErrSSH, server, server)
		}

		target := cfg.Username + "@" + cfg.Host
		Info("Connecting to %s using identity '%s'...", target, cfg.IdentityName)
		return engine.SSHExportEphemeral(passphrase, cfg.IdentityName, func(keyPath string) error {
			return runSSHClient(keyPath, target, commandArgs)
		})
	})
}

// sshConnectOrSetup handles `vx ssh connect <name>`: connect if it is a
// configured server, otherwise run the interactive server setup.
func sshConnectOrSetup(name string) error {
	engine := newEngine()

	var isServer bool
	err := runWithPassphrase(func(passphrase []byte) error {
		_, ok, err := engine.SSHServer(passphrase, name)
		isServer = ok
		return err
	})
	if err != nil {
		return err
	}

	if isServer {
		return sshConnectServer(name, nil)
	}
	return sshSetupServer(name)
}

// sshSetupServer interactively binds a remote user@host to the identity of
// the same name.
func sshSetupServer(name string) error {
	engine := newEngine()
	Info("Setting up SSH server configuration: %s", name)

	username, err := readLine("Remote username: ")
	if err != nil {
		return err
	}
	if username == "" {
		return errors.New("username cannot be empty")
	}

	host, err := readLine("Remote host or IP address: ")
	if err != nil {
		return err
	}
	if err := validateHost(host); err != nil {
		return err
	}

	err = runWithPassphrase(func(passphrase []byte) error {
		return engine.SSHAddServer(passphrase, name, username, host, name)
	})
	if err != nil {
		if errors.Is(err, vault.ErrIdentityMissing) {
			return fmt.Errorf("%w; create it first with: vx ssh init %s", err, name)
		}
		return err
	}

	Success("Server '%s' configured.", name)
	fmt.Printf("  Username: %s\n", username)
	fmt.Printf("  Host: %s\n", host)
	fmt.Printf("  Identity: %s\n", name)
	Info("Connect with: vx ssh %s", name)
	return nil
}

// runSSHClient invokes the external ssh binary with the ephemeral key and
// inherited stdio. The client's exit status is propagated verbatim.
func runSSHClient(keyPath, target string, extraArgs []string) error {
	args := append([]string{"-i", keyPath, target}, extraArgs...)

	c := exec.Command("ssh", args...)
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

// validateHost accepts hostnames, IPv4, and IPv6 addresses.
func validateHost(host string) error {
	if host == "" {
		return errors.New("host cannot be empty")
	}
	for _, r := range host {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case strings.ContainsRune(".:-_", r):
		default:
			return fmt.Errorf("invalid host %q", host)
		}
	}
	return nil
}
