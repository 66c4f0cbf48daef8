// vx is the VaultX command-line tool: a local-first, zero-trust developer
// vault for project-scoped secrets and SSH identities.
package main

import (
	"os"

	"github.com/skdas20/VaultX/cmd/vx/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		cmd.Error("%v", err)
		os.Exit(cmd.ExitCode(err))
	}
}
