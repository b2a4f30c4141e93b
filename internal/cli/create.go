package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/workstack-dev/workstack/internal/app"
)

func createCmd() *cobra.Command {
	var (
		branch            string
		ref               string
		fromCurrentBranch bool
		fromBranch        string
		planFile          string
		keepPlan          bool
		noPost            bool
		script            bool
	)

	cmd := &cobra.Command{
		Use:   "create [NAME]",
		Short: "Create a new worktree",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			if name == "" && planFile == "" {
				return fmt.Errorf("create requires NAME or --plan FILE")
			}

			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("get working directory: %w", err)
			}
			repo, _, err := resolveRepoContext(cmd)
			if err != nil {
				return err
			}

			resolvedName, path, err := container.Worktree.Create(cmd.Context(), app.CreateRequest{
				Repo:              repo,
				Cwd:               cwd,
				Name:              name,
				Branch:            branch,
				Ref:               ref,
				FromCurrentBranch: fromCurrentBranch,
				FromBranch:        fromBranch,
				PlanFilePath:      planFile,
				KeepPlan:          keepPlan,
				SkipPostCreate:    noPost,
			})
			recordHistory("create", args, err)
			if err != nil {
				return err
			}

			if script {
				scriptPath, err := container.Activation.EmitScript(cmd.Context(), "create", app.ActivationTarget{Path: path, Branch: branch})
				if err != nil {
					return err
				}
				fmt.Println(scriptPath)
				return nil
			}

			fmt.Printf("✓ Created worktree %s at %s\n", resolvedName, path)
			return nil
		},
	}

	cmd.Flags().StringVar(&branch, "branch", "", "branch name for the new worktree (defaults to NAME)")
	cmd.Flags().StringVar(&ref, "ref", "", "base ref for the new branch (defaults to the detected default branch)")
	cmd.Flags().BoolVar(&fromCurrentBranch, "from-current-branch", false, "move the current worktree's branch into the new worktree")
	cmd.Flags().StringVar(&fromBranch, "from-branch", "", "check out an existing branch in the new worktree")
	cmd.Flags().StringVar(&planFile, "plan", "", "plan file to move into the new worktree as .PLAN.md")
	cmd.Flags().BoolVar(&keepPlan, "keep-plan", false, "copy the plan file instead of moving it")
	cmd.Flags().BoolVar(&noPost, "no-post", false, "skip post_create commands")
	cmd.Flags().BoolVar(&script, "script", false, "print an activation script path instead of a confirmation message")

	return cmd
}
