package cmd

import (
	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:   "remove <project> [key]",
	Short: "Remove a secret or an entire project",
	Long: `Remove one secret, or — when no key is given — the whole project
and every secret in it. Removing a project asks for confirmation.`,
	Aliases: []string{"rm"},
	Args:    cobra.RangeArgs(1, 2),
	RunE:    runRemove,
}

func init() {
	rootCmd.AddCommand(removeCmd)
}

func runRemove(_ *cobra.Command, args []string) error {
	project := args[0]
	engine := newEngine()

	if len(args) == 2 {
		key := args[1]
		err := runWithPassphrase(func(passphrase []byte) error {
			return engine.RemoveSecret(passphrase, project, key)
		})
		if err != nil {
			return err
		}
		Success("Secret '%s' removed from project '%s'.", key, project)
		return nil
	}

	if !PromptConfirm("Remove project '" + project + "' and all its secrets?") {
		Info("Cancelled.")
		return nil
	}

	err := runWithPassphrase(func(passphrase []byte) error {
		return engine.RemoveProject(passphrase, project)
	})
	if err != nil {
		return err
	}
	Success("Project '%s' removed.", project)
	return nil
}
