package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/workstack-dev/workstack/internal/core/stacknav"
	"github.com/workstack-dev/workstack/internal/reviewhost"
)

func listCmd() *cobra.Command {
	var stacks, checks bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List worktrees",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, global, err := resolveRepoContext(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			records, err := container.Git.ListWorktrees(ctx, repo.RepoRoot)
			if err != nil {
				return fmt.Errorf("list worktrees: %w", err)
			}

			showPR := global.ShowPRInfo || checks
			var prs map[string]reviewhost.PullRequest
			if showPR {
				prs, err = container.ReviewHost.GetPRsForRepo(ctx, repo.RepoRoot, checks)
				if err != nil {
					return fmt.Errorf("load PR info: %w", err)
				}
			}

			var graph stacknav.Graph
			if stacks {
				cache, err := container.StackCache.Load(repo.GitCommonDir)
				if err != nil {
					return fmt.Errorf("load stack cache: %w", err)
				}
				graph = stacknav.NewGraph(cache.Branches)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			header := "NAME\tBRANCH"
			if stacks {
				header += "\tSTACK"
			}
			if showPR {
				header += "\tPR"
			}
			fmt.Fprintln(w, header)

			for _, r := range records {
				row := fmt.Sprintf("%s\t%s", filepath.Base(r.Path), r.Branch)
				if stacks {
					row += "\t" + strings.Join(graph.Stack(r.Branch), " > ")
				}
				if showPR {
					if pr, ok := prs[r.Branch]; ok {
						row += "\t" + prLabel(pr)
					} else {
						row += "\t-"
					}
				}
				fmt.Fprintln(w, row)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVarP(&stacks, "stacks", "s", false, "show each worktree's stack position")
	cmd.Flags().BoolVarP(&checks, "checks", "c", false, "include CI check status in PR info")
	return cmd
}

func prLabel(pr reviewhost.PullRequest) string {
	label := fmt.Sprintf("#%d %s", pr.Number, pr.State)
	switch pr.Checks {
	case reviewhost.ChecksPassingTrue:
		label += " ✓"
	case reviewhost.ChecksPassingFalse:
		label += " ✗"
	}
	return label
}
