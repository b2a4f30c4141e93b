package app

import (
	"context"
	"os"
	"path/filepath"

	"github.com/workstack-dev/workstack/internal/core/stacknav"
	"github.com/workstack-dev/workstack/internal/gitfacade"
	"github.com/workstack-dev/workstack/internal/reviewhost"
	"github.com/workstack-dev/workstack/internal/stackcache"
	"github.com/workstack-dev/workstack/internal/status"
)

// WorktreeInfo is the worktree_info collector's record.
type WorktreeInfo struct {
	Path   string
	Branch string
}

type worktreeInfoCollector struct{}

func (worktreeInfoCollector) Name() string { return "worktree_info" }
func (worktreeInfoCollector) IsAvailable(ctx context.Context, wt status.Target) bool { return true }
func (worktreeInfoCollector) Collect(ctx context.Context, wt status.Target, repoRoot string) (any, error) {
	return WorktreeInfo{Path: wt.Path, Branch: wt.Branch}, nil
}

// NewWorktreeInfoCollector reports the worktree's own path and branch.
func NewWorktreeInfoCollector() status.Collector { return worktreeInfoCollector{} }

// GitStatusInfo is the git_status collector's record.
type GitStatusInfo struct {
	Clean      bool
	Conflicted []string
}

type gitStatusCollector struct{ git gitfacade.Facade }

// NewGitStatusCollector reports clean/dirty and conflicted files.
func NewGitStatusCollector(git gitfacade.Facade) status.Collector {
	return gitStatusCollector{git: git}
}

func (gitStatusCollector) Name() string { return "git_status" }
func (gitStatusCollector) IsAvailable(ctx context.Context, wt status.Target) bool { return true }
func (c gitStatusCollector) Collect(ctx context.Context, wt status.Target, repoRoot string) (any, error) {
	clean, err := c.git.CheckCleanWorktree(ctx, wt.Path)
	if err != nil {
		return nil, err
	}
	conflicted, err := c.git.GetConflictedFiles(ctx, wt.Path)
	if err != nil {
		return nil, err
	}
	return GitStatusInfo{Clean: clean, Conflicted: conflicted}, nil
}

// StackPositionInfo is the stack_position collector's record.
type StackPositionInfo struct {
	Stack   []string
	Display []string
}

type stackPositionCollector struct {
	stack stackcache.Facade
	git   gitfacade.Facade
}

// NewStackPositionCollector reports branch's position in its stack.
func NewStackPositionCollector(stack stackcache.Facade, git gitfacade.Facade) status.Collector {
	return stackPositionCollector{stack: stack, git: git}
}

func (stackPositionCollector) Name() string { return "stack_position" }
func (c stackPositionCollector) IsAvailable(ctx context.Context, wt status.Target) bool {
	return wt.Branch != ""
}
func (c stackPositionCollector) Collect(ctx context.Context, wt status.Target, repoRoot string) (any, error) {
	commonDir, ok, err := c.git.GetGitCommonDir(ctx, repoRoot)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	cache, err := c.stack.Load(commonDir)
	if err != nil {
		return nil, err
	}
	graph := stacknav.NewGraph(cache.Branches)
	full := graph.Stack(wt.Branch)

	records, err := c.git.ListWorktrees(ctx, repoRoot)
	if err != nil {
		return nil, err
	}
	active := func(branch string) bool {
		for _, r := range records {
			if r.Branch == branch {
				return true
			}
		}
		return false
	}
	display := graph.FilterForDisplay(full, wt.Branch, wt.Path == repoRoot, active)
	return StackPositionInfo{Stack: full, Display: display}, nil
}

type prStatusCollector struct {
	reviewhost reviewhost.Facade
	includeChecks bool
}

// NewPRStatusCollector reports the branch's PR state.
func NewPRStatusCollector(rh reviewhost.Facade, includeChecks bool) status.Collector {
	return prStatusCollector{reviewhost: rh, includeChecks: includeChecks}
}

func (prStatusCollector) Name() string { return "pr_status" }
func (c prStatusCollector) IsAvailable(ctx context.Context, wt status.Target) bool { return wt.Branch != "" }
func (c prStatusCollector) Collect(ctx context.Context, wt status.Target, repoRoot string) (any, error) {
	prs, err := c.reviewhost.GetPRsForRepo(ctx, repoRoot, c.includeChecks)
	if err != nil {
		return nil, err
	}
	pr, ok := prs[wt.Branch]
	if !ok {
		return nil, nil
	}
	return pr, nil
}

// EnvironmentInfo is the environment collector's record: which
// environment-affecting files are present in the worktree.
type EnvironmentInfo struct {
	HasEnvFile   bool
	HasVenv      bool
}

type environmentCollector struct{}

// NewEnvironmentCollector reports presence of .env / .venv.
func NewEnvironmentCollector() status.Collector { return environmentCollector{} }

func (environmentCollector) Name() string { return "environment" }
func (environmentCollector) IsAvailable(ctx context.Context, wt status.Target) bool { return true }
func (environmentCollector) Collect(ctx context.Context, wt status.Target, repoRoot string) (any, error) {
	_, envErr := os.Stat(filepath.Join(wt.Path, ".env"))
	_, venvErr := os.Stat(filepath.Join(wt.Path, ".venv"))
	return EnvironmentInfo{HasEnvFile: envErr == nil, HasVenv: venvErr == nil}, nil
}

// DependenciesInfo is the dependencies collector's record: which
// dependency manifests are present, as a cheap proxy for "needs install".
type DependenciesInfo struct {
	Manifests []string
}

type dependenciesCollector struct{}

// NewDependenciesCollector reports which dependency manifest files exist.
func NewDependenciesCollector() status.Collector { return dependenciesCollector{} }

func (dependenciesCollector) Name() string { return "dependencies" }
func (dependenciesCollector) IsAvailable(ctx context.Context, wt status.Target) bool { return true }
func (dependenciesCollector) Collect(ctx context.Context, wt status.Target, repoRoot string) (any, error) {
	var manifests []string
	for _, f := range []string{"package.json", "go.mod", "Cargo.toml", "pyproject.toml", "requirements.txt"} {
		if _, err := os.Stat(filepath.Join(wt.Path, f)); err == nil {
			manifests = append(manifests, f)
		}
	}
	return DependenciesInfo{Manifests: manifests}, nil
}

type planCollector struct{}

// NewPlanCollector reports whether a .PLAN.md exists, and its content.
func NewPlanCollector() status.Collector { return planCollector{} }

func (planCollector) Name() string { return "plan" }
func (planCollector) IsAvailable(ctx context.Context, wt status.Target) bool { return true }
func (planCollector) Collect(ctx context.Context, wt status.Target, repoRoot string) (any, error) {
	data, err := os.ReadFile(filepath.Join(wt.Path, ".PLAN.md"))
	if err != nil {
		return nil, nil
	}
	return string(data), nil
}

// RelatedWorktrees lists every other worktree in the repo, for the
// synchronous related-worktrees enumeration spec section 4.9 runs after
// the concurrent collectors.
func RelatedWorktrees(git gitfacade.Facade) status.RelatedWorktreesFn {
	return func(ctx context.Context, wt status.Target, repoRoot string) (any, error) {
		records, err := git.ListWorktrees(ctx, repoRoot)
		if err != nil {
			return nil, err
		}
		var related []gitfacade.WorktreeRecord
		for _, r := range records {
			if r.Path != wt.Path {
				related = append(related, r)
			}
		}
		return related, nil
	}
}
