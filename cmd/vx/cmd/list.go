package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all projects in the vault",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(_ *cobra.Command, _ []string) error {
	engine := newEngine()

	return runWithPassphrase(func(passphrase []byte) error {
		projects, err := engine.ListProjects(passphrase)
		if err != nil {
			return err
		}

		if len(projects) == 0 {
			Info("No projects yet. Create one with: vx init <project>")
			return nil
		}

		fmt.Printf("%s\n", Bold("Projects:"))
		for _, p := range projects {
			label := "secrets"
			if p.SecretCount == 1 {
				label = "secret"
			}
			fmt.Printf("  %s (%d %s)\n", p.Name, p.SecretCount, label)
		}
		return nil
	})
}
