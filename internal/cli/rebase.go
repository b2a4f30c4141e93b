package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/workstack-dev/workstack/internal/core/rebasestack"
)

func rebaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rebase",
		Short: "Speculative rebase workflow run in an isolated worktree",
	}
	cmd.AddCommand(rebasePreviewCmd())
	cmd.AddCommand(rebaseStatusCmd())
	cmd.AddCommand(rebaseResolveCmd())
	cmd.AddCommand(rebaseTestCmd())
	cmd.AddCommand(rebaseApplyCmd())
	cmd.AddCommand(rebaseCompareCmd())
	cmd.AddCommand(rebaseAbortCmd())
	return cmd
}

func rebaseBranchArg(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 && args[0] != "" {
		return args[0], nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	branch, ok, err := container.Git.GetCurrentBranch(cmd.Context(), cwd)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("cannot determine branch from a detached HEAD; pass BRANCH explicitly")
	}
	return branch, nil
}

func rebasePreviewCmd() *cobra.Command {
	var onto string
	cmd := &cobra.Command{
		Use:   "preview [BRANCH]",
		Short: "Create and rebase an isolated stack onto a new base",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			branch, err := rebaseBranchArg(cmd, args)
			if err != nil {
				return err
			}
			repo, global, err := resolveRepoContext(cmd)
			if err != nil {
				return err
			}
			if onto == "" {
				onto, err = container.Git.DetectDefaultBranch(cmd.Context(), repo.RepoRoot)
				if err != nil {
					return err
				}
			}
			svc := container.RebaseStackService(repo.RepoRoot, global.RebaseStackLocation)
			meta, err := svc.Preview(cmd.Context(), branch, onto)
			if err != nil {
				return err
			}
			printRebaseMeta(meta)
			return nil
		},
	}
	cmd.Flags().StringVar(&onto, "onto", "", "base branch to rebase onto (defaults to the detected default branch)")
	return cmd
}

func rebaseStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List active rebase stacks",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, global, err := resolveRepoContext(cmd)
			if err != nil {
				return err
			}
			svc := container.RebaseStackService(repo.RepoRoot, global.RebaseStackLocation)
			stacks, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(stacks) == 0 {
				fmt.Println("no active rebase stacks")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "BRANCH\tSTATE\tTARGET")
			for _, s := range stacks {
				fmt.Fprintf(w, "%s\t%s\t%s\n", s.Branch, s.Meta.State, s.Meta.TargetBranch)
			}
			return w.Flush()
		},
	}
}

func rebaseResolveCmd() *cobra.Command {
	var editor string
	cmd := &cobra.Command{
		Use:   "resolve [BRANCH]",
		Short: "Open conflicted files in an editor and continue the rebase",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			branch, err := rebaseBranchArg(cmd, args)
			if err != nil {
				return err
			}
			repo, global, err := resolveRepoContext(cmd)
			if err != nil {
				return err
			}
			if editor == "" {
				editor = os.Getenv("EDITOR")
			}
			if editor == "" {
				editor = "vi"
			}
			svc := container.RebaseStackService(repo.RepoRoot, global.RebaseStackLocation)
			meta, err := svc.Resolve(cmd.Context(), branch, strings.Fields(editor))
			if err != nil {
				return err
			}
			printRebaseMeta(meta)
			return nil
		},
	}
	cmd.Flags().StringVar(&editor, "editor", "", "editor command (defaults to $EDITOR, then vi)")
	return cmd
}

func rebaseTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                "test [BRANCH] [-- COMMAND...]",
		Short:              "Run (or auto-detect) the test command in the rebase stack",
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dash := cmd.ArgsLenAtDash(); dash >= 0 {
				args = append(append(append([]string{}, args[:dash]...), "--"), args[dash:]...)
			}
			branch, command := splitBranchAndCommand(args)
			repo, global, err := resolveRepoContext(cmd)
			if err != nil {
				return err
			}
			if branch == "" {
				branch, err = rebaseBranchArg(cmd, nil)
				if err != nil {
					return err
				}
			}
			svc := container.RebaseStackService(repo.RepoRoot, global.RebaseStackLocation)
			meta, output, err := svc.Test(cmd.Context(), branch, command)
			if output != "" {
				fmt.Println(output)
			}
			if err != nil {
				return err
			}
			printRebaseMeta(meta)
			return nil
		},
	}
	return cmd
}

func splitBranchAndCommand(args []string) (string, []string) {
	for i, a := range args {
		if a == "--" {
			branch := ""
			if i > 0 {
				branch = args[0]
			}
			return branch, args[i+1:]
		}
	}
	if len(args) > 0 {
		return args[0], nil
	}
	return "", nil
}

func rebaseApplyCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "apply [BRANCH]",
		Short: "Land the rebase stack onto the real branch",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			branch, err := rebaseBranchArg(cmd, args)
			if err != nil {
				return err
			}
			repo, global, err := resolveRepoContext(cmd)
			if err != nil {
				return err
			}
			svc := container.RebaseStackService(repo.RepoRoot, global.RebaseStackLocation)
			err = svc.Apply(cmd.Context(), branch, force)
			recordHistory("rebase apply", args, err)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Applied rebase stack for %s\n", branch)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "apply even if the stack is not fully resolved/tested")
	return cmd
}

func rebaseCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare [BRANCH]",
		Short: "Diff-stat the rebase stack against the real branch",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			branch, err := rebaseBranchArg(cmd, args)
			if err != nil {
				return err
			}
			repo, global, err := resolveRepoContext(cmd)
			if err != nil {
				return err
			}
			svc := container.RebaseStackService(repo.RepoRoot, global.RebaseStackLocation)
			out, err := svc.Compare(cmd.Context(), branch)
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		},
	}
}

func rebaseAbortCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "abort [BRANCH]",
		Short: "Discard the rebase stack",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			branch, err := rebaseBranchArg(cmd, args)
			if err != nil {
				return err
			}
			repo, global, err := resolveRepoContext(cmd)
			if err != nil {
				return err
			}
			svc := container.RebaseStackService(repo.RepoRoot, global.RebaseStackLocation)
			err = svc.Abort(cmd.Context(), branch)
			recordHistory("rebase abort", args, err)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Aborted rebase stack for %s\n", branch)
			return nil
		},
	}
}

func printRebaseMeta(meta rebasestack.Metadata) {
	fmt.Printf("%s: %s (target %s)\n", meta.BranchName, meta.State, meta.TargetBranch)
}
