package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/workstack-dev/workstack/internal/app"
	"github.com/workstack-dev/workstack/internal/core/stacknav"
	"github.com/workstack-dev/workstack/internal/repocontext"
)

func removeCmd() *cobra.Command {
	var force, deleteStack, dryRunFlag bool
	cmd := &cobra.Command{
		Use:     "remove NAME",
		Aliases: []string{"rm"},
		Short:   "Remove a worktree",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, global, err := resolveRepoContext(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			name := args[0]

			var branchesToDel []string
			if deleteStack {
				if !global.UseStackTool {
					return fmt.Errorf("--delete-stack requires use_graphite=true in global config")
				}
				branchesToDel, err = resolveStackBranchesToDelete(ctx, repo, name)
				if err != nil {
					return err
				}
			}

			if !force && !confirmRemoval(name) {
				fmt.Println("aborted")
				return nil
			}

			err = container.Worktree.Remove(ctx, app.RemoveRequest{
				Repo:          repo,
				Name:          name,
				DeleteStack:   deleteStack,
				Force:         force,
				DryRun:        dryRunFlag || container.DryRun,
				BranchesToDel: branchesToDel,
			})
			recordHistory("remove", args, err)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Removed worktree %s\n", name)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "skip confirmation and force-remove even with uncommitted changes")
	cmd.Flags().BoolVar(&deleteStack, "delete-stack", false, "also delete every non-trunk branch in this worktree's stack")
	cmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "print what would be removed instead of removing it")
	return cmd
}

func resolveStackBranchesToDelete(ctx context.Context, repo repocontext.Context, name string) ([]string, error) {
	path := filepath.Join(repo.WorkstacksDir, name)
	branch, ok, err := container.Git.GetCurrentBranch(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("get branch for %s: %w", name, err)
	}
	if !ok || branch == "" {
		fmt.Fprintf(os.Stderr, "⚠ %s is in detached HEAD; skipping stack branch deletion\n", name)
		return nil, nil
	}

	cache, err := container.StackCache.Load(repo.GitCommonDir)
	if err != nil {
		return nil, fmt.Errorf("load stack cache: %w", err)
	}
	graph := stacknav.NewGraph(cache.Branches)

	var out []string
	for _, b := range graph.Stack(branch) {
		if !graph.IsTrunk(b) {
			out = append(out, b)
		}
	}
	return out, nil
}

func confirmRemoval(name string) bool {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Println("stdin is not a terminal; pass --force to remove without confirmation")
		return false
	}
	fmt.Printf("Remove worktree %q? [y/N] ", name)
	var response string
	fmt.Scanln(&response)
	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes"
}
