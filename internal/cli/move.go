package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/workstack-dev/workstack/internal/app"
	"github.com/workstack-dev/workstack/internal/core/stacknav"
	"github.com/workstack-dev/workstack/internal/gitfacade"
	"github.com/workstack-dev/workstack/internal/repocontext"
)

func moveCmd() *cobra.Command {
	var current bool
	var branchFlag, worktreeFlag, ref string
	var force bool

	cmd := &cobra.Command{
		Use:   "move TARGET",
		Short: "Move a worktree's branch to a new location, swapping if the target is occupied",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, _, err := resolveRepoContext(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			sourcePath, err := resolveMoveSource(ctx, repo, current, branchFlag, worktreeFlag)
			if err != nil {
				return err
			}

			err = container.Worktree.Move(ctx, app.MoveRequest{
				Repo:       repo,
				SourcePath: sourcePath,
				TargetName: args[0],
				Ref:        ref,
				Force:      force,
			})
			recordHistory("move", args, err)
			if err != nil {
				return err
			}
			fmt.Printf("✓ Moved worktree to %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&current, "current", false, "use the current worktree as the source")
	cmd.Flags().StringVar(&branchFlag, "branch", "", "use the worktree holding this branch as the source")
	cmd.Flags().StringVar(&worktreeFlag, "worktree", "", "use this worktree name as the source")
	cmd.Flags().StringVar(&ref, "ref", "", "fallback ref to free the source worktree's branch onto")
	cmd.Flags().BoolVar(&force, "force", false, "proceed even if the source worktree has uncommitted changes")
	return cmd
}

func resolveMoveSource(ctx context.Context, repo repocontext.Context, current bool, branch, worktreeName string) (string, error) {
	count := 0
	if current {
		count++
	}
	if branch != "" {
		count++
	}
	if worktreeName != "" {
		count++
	}
	if count != 1 {
		return "", fmt.Errorf("move requires exactly one of --current, --branch, or --worktree")
	}

	if current {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("get working directory: %w", err)
		}
		return cwd, nil
	}
	if worktreeName != "" {
		return filepath.Join(repo.WorkstacksDir, worktreeName), nil
	}

	records, err := container.Git.ListWorktrees(ctx, repo.RepoRoot)
	if err != nil {
		return "", fmt.Errorf("list worktrees: %w", err)
	}
	path, ok := stacknav.WorktreeForBranch(toStackNavRecords(records), branch)
	if !ok {
		return "", fmt.Errorf("no worktree holds branch %q", branch)
	}
	return path, nil
}

func toStackNavRecords(records []gitfacade.WorktreeRecord) []stacknav.WorktreeRecord {
	out := make([]stacknav.WorktreeRecord, len(records))
	for i, r := range records {
		out[i] = stacknav.WorktreeRecord{Path: r.Path, Branch: r.Branch}
	}
	return out
}
