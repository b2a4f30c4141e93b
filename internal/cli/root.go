package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/workstack-dev/workstack/internal/version"
	"github.com/workstack-dev/workstack/internal/wire"
)

var dryRun bool

// RootCmd builds the workstack root command and wires every subcommand.
func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "workstack",
		Short:        "Manage a directory of git worktrees as a lightweight parallel-work stack",
		Version:      version.String(),
		SilenceUsage: true,
		Long: `workstack keeps one git worktree per feature branch under a
configured workstacks_root, so multiple lines of work can proceed in
parallel without stashing or re-cloning.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			home, err := os.UserHomeDir()
			if err != nil {
				return fmt.Errorf("resolve home directory: %w", err)
			}
			c, err := wire.Build(home, dryRun)
			if err != nil {
				return fmt.Errorf("initialize workstack: %w", err)
			}
			container = c
			return nil
		},
	}

	cmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "print destructive actions instead of performing them")

	cmd.AddCommand(createCmd())
	cmd.AddCommand(switchCmd())
	cmd.AddCommand(switchEvalCmd())
	cmd.AddCommand(listCmd())
	cmd.AddCommand(moveCmd())
	cmd.AddCommand(removeCmd())
	cmd.AddCommand(rebaseCmd())
	cmd.AddCommand(StatusCmd())
	cmd.AddCommand(configCmd())
	cmd.AddCommand(DoctorCmd())
	cmd.AddCommand(historyCmd())
	cmd.AddCommand(completionCmd())

	return cmd
}
