package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/workstack-dev/workstack/internal/app"
	"github.com/workstack-dev/workstack/internal/gitfacade"
	"github.com/workstack-dev/workstack/internal/reviewhost"
	"github.com/workstack-dev/workstack/internal/status"
)

// StatusCmd implements spec section 4.9: a point-in-time snapshot of the
// current worktree, assembled from independent concurrent collectors.
func StatusCmd() *cobra.Command {
	var checks bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current worktree's status",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, global, err := resolveRepoContext(cmd)
			if err != nil {
				return err
			}
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("get working directory: %w", err)
			}

			branch, _, err := container.Git.GetCurrentBranch(cmd.Context(), cwd)
			if err != nil {
				return err
			}

			collectors := []status.Collector{
				app.NewWorktreeInfoCollector(),
				app.NewGitStatusCollector(container.Git),
				app.NewStackPositionCollector(container.StackCache, container.Git),
				app.NewPRStatusCollector(container.ReviewHost, checks || global.ShowPRChecks),
				app.NewEnvironmentCollector(),
				app.NewDependenciesCollector(),
				app.NewPlanCollector(),
			}
			orch := status.NewOrchestrator(collectors, 0)
			snap := orch.Collect(cmd.Context(), status.Target{Path: cwd, Branch: branch}, repo.RepoRoot, app.RelatedWorktrees(container.Git))

			printSnapshot(snap)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&checks, "checks", "c", false, "include CI check status in PR info")
	return cmd
}

func printSnapshot(snap status.Snapshot) {
	if info, ok := snap.WorktreeInfo.(app.WorktreeInfo); ok {
		fmt.Printf("📍 %s (%s)\n", info.Path, info.Branch)
	}
	if g, ok := snap.GitStatus.(app.GitStatusInfo); ok {
		if g.Clean {
			fmt.Println("  ✓ clean")
		} else {
			fmt.Printf("  ⚠ dirty (%d conflicted)\n", len(g.Conflicted))
		}
	}
	if sp, ok := snap.StackPosition.(app.StackPositionInfo); ok && len(sp.Display) > 0 {
		fmt.Printf("  stack: %s\n", strings.Join(sp.Display, " > "))
	}
	if pr, ok := snap.PRStatus.(reviewhost.PullRequest); ok {
		fmt.Printf("  PR #%d %s %s\n", pr.Number, pr.State, pr.URL)
	}
	if env, ok := snap.Environment.(app.EnvironmentInfo); ok {
		fmt.Printf("  env: .env=%v .venv=%v\n", env.HasEnvFile, env.HasVenv)
	}
	if deps, ok := snap.Dependencies.(app.DependenciesInfo); ok && len(deps.Manifests) > 0 {
		fmt.Printf("  manifests: %s\n", strings.Join(deps.Manifests, ", "))
	}
	if plan, ok := snap.Plan.(string); ok && plan != "" {
		fmt.Println("  has a .PLAN.md")
	}
	if related, ok := snap.RelatedWorktrees.([]gitfacade.WorktreeRecord); ok && len(related) > 0 {
		fmt.Printf("  %d other worktree(s) in this repo\n", len(related))
	}
}
