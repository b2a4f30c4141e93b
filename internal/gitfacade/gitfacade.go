// Package gitfacade wraps the git subprocess behind a typed interface.
//
// Every operation in this file is grounded in internal/app.GitService from
// the teacher (branch/dirty/ahead-behind helpers) generalized to the full
// worktree-facade contract in spec section 4.2.
package gitfacade

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/workstack-dev/workstack/internal/proc"
)

// WorktreeRecord is one row of `git worktree list --porcelain`.
type WorktreeRecord struct {
	Path     string
	Branch   string // empty when detached
	HeadSHA  string
	Detached bool
}

// RebaseStatus describes the state of an in-progress rebase.
type RebaseStatus struct {
	InProgress bool
	Onto       string
	Conflicted []string
}

// Facade is the typed contract over git. Real and DryRun both implement it.
type Facade interface {
	ListWorktrees(ctx context.Context, repo string) ([]WorktreeRecord, error)
	AddWorktree(ctx context.Context, repo, path, branch, ref string, createBranch bool) error
	RemoveWorktree(ctx context.Context, repo, path string, force bool) error
	PruneWorktrees(ctx context.Context, repo string) error
	CheckoutBranch(ctx context.Context, cwd, branch string) error
	CheckoutDetached(ctx context.Context, cwd, ref string) error
	GetCurrentBranch(ctx context.Context, cwd string) (string, bool, error)
	GetBranchHead(ctx context.Context, repo, branch string) (string, error)
	DetectDefaultBranch(ctx context.Context, repo string) (string, error)
	IsBranchCheckedOut(ctx context.Context, repo, branch string) (string, bool, error)
	HasStagedChanges(ctx context.Context, cwd string) (bool, error)
	CheckCleanWorktree(ctx context.Context, cwd string) (bool, error)
	GetConflictedFiles(ctx context.Context, cwd string) ([]string, error)
	GetRebaseStatus(ctx context.Context, cwd string) (RebaseStatus, error)
	StartRebase(ctx context.Context, cwd, onto string) error
	ContinueRebase(ctx context.Context, cwd string) error
	GetGitCommonDir(ctx context.Context, cwd string) (string, bool, error)
	CreateBranch(ctx context.Context, repo, branch, ref string) error
	DeleteBranch(ctx context.Context, repo, branch string, force bool) error
	ResetHard(ctx context.Context, worktreePath, ref string) error
	ForceBranch(ctx context.Context, repo, branch, ref string) error
}

// Real runs git for real, via the given proc.Invoker (which may itself be
// a dry-run invoker — destructiveness is marked per-call here and it is up
// to the invoker to decide what to do with it).
type Real struct {
	invoker proc.Invoker
}

// NewReal returns a Real git facade backed by invoker.
func NewReal(invoker proc.Invoker) *Real {
	return &Real{invoker: invoker}
}

func (g *Real) run(ctx context.Context, cwd string, destructive bool, args ...string) (proc.Result, error) {
	argv := append([]string{"git"}, args...)
	return g.invoker.Run(ctx, argv, cwd, proc.Options{Capture: true, CheckZero: true, Destructive: destructive})
}

// ListWorktrees parses `git worktree list --porcelain`.
func (g *Real) ListWorktrees(ctx context.Context, repo string) ([]WorktreeRecord, error) {
	res, err := g.run(ctx, repo, false, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("gitfacade: list worktrees: %w", err)
	}
	return parsePorcelain(res.Stdout), nil
}

func parsePorcelain(out string) []WorktreeRecord {
	var records []WorktreeRecord
	var cur *WorktreeRecord
	flush := func() {
		if cur != nil {
			records = append(records, *cur)
			cur = nil
		}
	}
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, "worktree "):
			flush()
			cur = &WorktreeRecord{Path: strings.TrimPrefix(line, "worktree ")}
		case strings.HasPrefix(line, "HEAD "):
			if cur != nil {
				cur.HeadSHA = strings.TrimPrefix(line, "HEAD ")
			}
		case strings.HasPrefix(line, "branch "):
			if cur != nil {
				ref := strings.TrimPrefix(line, "branch ")
				cur.Branch = strings.TrimPrefix(ref, "refs/heads/")
			}
		case line == "detached":
			if cur != nil {
				cur.Detached = true
			}
		}
	}
	flush()
	return records
}

// AddWorktree adds a worktree at path. If createBranch, branch is created
// from ref (git worktree add -b branch path ref); otherwise path is checked
// out onto the existing branch (git worktree add path branch).
func (g *Real) AddWorktree(ctx context.Context, repo, path, branch, ref string, createBranch bool) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("gitfacade: worktree path already exists: %s", path)
	}
	var args []string
	switch {
	case createBranch && branch != "":
		args = []string{"worktree", "add", "-b", branch, path}
		if ref != "" {
			args = append(args, ref)
		}
	case branch != "":
		args = []string{"worktree", "add", path, branch}
	default:
		args = []string{"worktree", "add", "--detach", path}
		if ref != "" {
			args = append(args, ref)
		}
	}
	if _, err := g.run(ctx, repo, true, args...); err != nil {
		return fmt.Errorf("gitfacade: add worktree: %w", err)
	}
	return nil
}

// RemoveWorktree removes a worktree. Best-effort per spec section 4.5: the
// caller decides what to do if this fails (fall back to rm -rf).
func (g *Real) RemoveWorktree(ctx context.Context, repo, path string, force bool) error {
	args := []string{"worktree", "remove", path}
	if force {
		args = append(args, "--force")
	}
	if _, err := g.run(ctx, repo, true, args...); err != nil {
		return fmt.Errorf("gitfacade: remove worktree: %w", err)
	}
	return nil
}

// PruneWorktrees prunes stale worktree metadata. Errors are not fatal to
// callers — "nothing to prune" is not an error condition.
func (g *Real) PruneWorktrees(ctx context.Context, repo string) error {
	_, err := g.run(ctx, repo, true, "worktree", "prune")
	return err
}

// CheckoutBranch checks out branch in cwd.
func (g *Real) CheckoutBranch(ctx context.Context, cwd, branch string) error {
	if _, err := g.run(ctx, cwd, true, "checkout", branch); err != nil {
		return fmt.Errorf("gitfacade: checkout %s: %w", branch, err)
	}
	return nil
}

// CheckoutDetached detaches HEAD at ref in cwd.
func (g *Real) CheckoutDetached(ctx context.Context, cwd, ref string) error {
	if _, err := g.run(ctx, cwd, true, "checkout", "--detach", ref); err != nil {
		return fmt.Errorf("gitfacade: checkout detached %s: %w", ref, err)
	}
	return nil
}

// GetCurrentBranch returns the branch checked out in cwd, or ok=false when
// HEAD is detached.
func (g *Real) GetCurrentBranch(ctx context.Context, cwd string) (string, bool, error) {
	res, err := g.run(ctx, cwd, false, "symbolic-ref", "--short", "-q", "HEAD")
	if err != nil {
		return "", false, nil // detached, not an error
	}
	return strings.TrimSpace(res.Stdout), true, nil
}

// GetBranchHead returns branch's SHA, or "" if the branch does not exist.
func (g *Real) GetBranchHead(ctx context.Context, repo, branch string) (string, error) {
	res, err := g.run(ctx, repo, false, "rev-parse", "--verify", branch)
	if err != nil {
		return "", nil
	}
	return strings.TrimSpace(res.Stdout), nil
}

// DetectDefaultBranch returns "main" if it exists, else "master".
func (g *Real) DetectDefaultBranch(ctx context.Context, repo string) (string, error) {
	for _, candidate := range []string{"main", "master"} {
		sha, err := g.GetBranchHead(ctx, repo, candidate)
		if err == nil && sha != "" {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("gitfacade: neither main nor master exists in %s", repo)
}

// IsBranchCheckedOut returns the worktree path holding branch, if any.
func (g *Real) IsBranchCheckedOut(ctx context.Context, repo, branch string) (string, bool, error) {
	records, err := g.ListWorktrees(ctx, repo)
	if err != nil {
		return "", false, err
	}
	for _, r := range records {
		if r.Branch == branch {
			return r.Path, true, nil
		}
	}
	return "", false, nil
}

// HasStagedChanges reports whether cwd has staged changes.
func (g *Real) HasStagedChanges(ctx context.Context, cwd string) (bool, error) {
	_, err := g.run(ctx, cwd, false, "diff", "--cached", "--quiet")
	if err == nil {
		return false, nil
	}
	return true, nil // nonzero exit with --quiet means there is a diff
}

// CheckCleanWorktree reports whether cwd has no uncommitted changes at all.
func (g *Real) CheckCleanWorktree(ctx context.Context, cwd string) (bool, error) {
	res, err := g.run(ctx, cwd, false, "status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("gitfacade: status: %w", err)
	}
	return strings.TrimSpace(res.Stdout) == "", nil
}

// GetConflictedFiles lists paths with unresolved merge conflicts.
func (g *Real) GetConflictedFiles(ctx context.Context, cwd string) ([]string, error) {
	res, err := g.run(ctx, cwd, false, "diff", "--name-only", "--diff-filter=U")
	if err != nil {
		return nil, fmt.Errorf("gitfacade: conflicted files: %w", err)
	}
	trimmed := strings.TrimSpace(res.Stdout)
	if trimmed == "" {
		return nil, nil
	}
	return strings.Split(trimmed, "\n"), nil
}

// GetRebaseStatus reports whether cwd is mid-rebase and which files conflict.
func (g *Real) GetRebaseStatus(ctx context.Context, cwd string) (RebaseStatus, error) {
	// Rebase state lives in the per-worktree git dir, which for a linked
	// worktree is not the common dir.
	res, err := g.run(ctx, cwd, false, "rev-parse", "--git-dir")
	if err != nil {
		return RebaseStatus{}, nil
	}
	gitDir := strings.TrimSpace(res.Stdout)
	if !filepath.IsAbs(gitDir) {
		gitDir = filepath.Join(cwd, gitDir)
	}
	inProgress := dirExists(filepath.Join(gitDir, "rebase-merge")) || dirExists(filepath.Join(gitDir, "rebase-apply"))
	if !inProgress {
		return RebaseStatus{}, nil
	}
	conflicted, err := g.GetConflictedFiles(ctx, cwd)
	if err != nil {
		return RebaseStatus{}, err
	}
	return RebaseStatus{InProgress: true, Conflicted: conflicted}, nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// StartRebase begins `git rebase onto` in cwd.
func (g *Real) StartRebase(ctx context.Context, cwd, onto string) error {
	if _, err := g.run(ctx, cwd, true, "rebase", onto); err != nil {
		return fmt.Errorf("gitfacade: rebase onto %s: %w", onto, err)
	}
	return nil
}

// ContinueRebase runs `git rebase --continue` in cwd.
func (g *Real) ContinueRebase(ctx context.Context, cwd string) error {
	if _, err := g.run(ctx, cwd, true, "rebase", "--continue"); err != nil {
		return fmt.Errorf("gitfacade: rebase --continue: %w", err)
	}
	return nil
}

// GetGitCommonDir resolves the shared .git directory (handles linked
// worktrees, whose .git is a file pointing at the real one).
func (g *Real) GetGitCommonDir(ctx context.Context, cwd string) (string, bool, error) {
	res, err := g.run(ctx, cwd, false, "rev-parse", "--git-common-dir")
	if err != nil {
		return "", false, nil
	}
	dir := strings.TrimSpace(res.Stdout)
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(cwd, dir)
	}
	abs, absErr := filepath.Abs(dir)
	if absErr != nil {
		return dir, true, nil
	}
	return abs, true, nil
}

// CreateBranch creates branch from ref without checking it out.
func (g *Real) CreateBranch(ctx context.Context, repo, branch, ref string) error {
	args := []string{"branch", branch}
	if ref != "" {
		args = append(args, ref)
	}
	if _, err := g.run(ctx, repo, true, args...); err != nil {
		return fmt.Errorf("gitfacade: create branch %s: %w", branch, err)
	}
	return nil
}

// DeleteBranch deletes branch (-D when force, -d otherwise).
func (g *Real) DeleteBranch(ctx context.Context, repo, branch string, force bool) error {
	flag := "-d"
	if force {
		flag = "-D"
	}
	if _, err := g.run(ctx, repo, true, "branch", flag, branch); err != nil {
		return fmt.Errorf("gitfacade: delete branch %s: %w", branch, err)
	}
	return nil
}

// ResetHard hard-resets the worktree at worktreePath to ref.
func (g *Real) ResetHard(ctx context.Context, worktreePath, ref string) error {
	if _, err := g.run(ctx, worktreePath, true, "reset", "--hard", ref); err != nil {
		return fmt.Errorf("gitfacade: reset --hard %s: %w", ref, err)
	}
	return nil
}

// ForceBranch moves branch to ref without checking it out anywhere
// (git branch -f), used when the branch isn't checked out in any worktree.
func (g *Real) ForceBranch(ctx context.Context, repo, branch, ref string) error {
	if _, err := g.run(ctx, repo, true, "branch", "-f", branch, ref); err != nil {
		return fmt.Errorf("gitfacade: force branch %s to %s: %w", branch, ref, err)
	}
	return nil
}

var _ Facade = (*Real)(nil)
