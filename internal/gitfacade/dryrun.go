package gitfacade

import (
	"context"
	"fmt"
	"os"
)

// DryRun wraps a Real facade. Reads are forwarded; writes are announced and
// treated as a no-op success, mirroring internal/proc.DryRun but at the
// typed-operation level so messages name the operation, not raw argv.
type DryRun struct {
	real *Real
	out  *os.File
}

// NewDryRun returns a DryRun git facade wrapping real.
func NewDryRun(real *Real) *DryRun {
	return &DryRun{real: real, out: os.Stdout}
}

func (d *DryRun) announce(format string, args ...any) {
	fmt.Fprintf(d.out, "[DRY RUN] Would %s\n", fmt.Sprintf(format, args...))
}

func (d *DryRun) ListWorktrees(ctx context.Context, repo string) ([]WorktreeRecord, error) {
	return d.real.ListWorktrees(ctx, repo)
}

func (d *DryRun) AddWorktree(ctx context.Context, repo, path, branch, ref string, createBranch bool) error {
	d.announce("add worktree %s (branch=%s ref=%s new=%v)", path, branch, ref, createBranch)
	return nil
}

func (d *DryRun) RemoveWorktree(ctx context.Context, repo, path string, force bool) error {
	d.announce("remove worktree %s (force=%v)", path, force)
	return nil
}

func (d *DryRun) PruneWorktrees(ctx context.Context, repo string) error {
	d.announce("prune worktrees in %s", repo)
	return nil
}

func (d *DryRun) CheckoutBranch(ctx context.Context, cwd, branch string) error {
	d.announce("checkout %s in %s", branch, cwd)
	return nil
}

func (d *DryRun) CheckoutDetached(ctx context.Context, cwd, ref string) error {
	d.announce("checkout --detach %s in %s", ref, cwd)
	return nil
}

func (d *DryRun) GetCurrentBranch(ctx context.Context, cwd string) (string, bool, error) {
	return d.real.GetCurrentBranch(ctx, cwd)
}

func (d *DryRun) GetBranchHead(ctx context.Context, repo, branch string) (string, error) {
	return d.real.GetBranchHead(ctx, repo, branch)
}

func (d *DryRun) DetectDefaultBranch(ctx context.Context, repo string) (string, error) {
	return d.real.DetectDefaultBranch(ctx, repo)
}

func (d *DryRun) IsBranchCheckedOut(ctx context.Context, repo, branch string) (string, bool, error) {
	return d.real.IsBranchCheckedOut(ctx, repo, branch)
}

func (d *DryRun) HasStagedChanges(ctx context.Context, cwd string) (bool, error) {
	return d.real.HasStagedChanges(ctx, cwd)
}

func (d *DryRun) CheckCleanWorktree(ctx context.Context, cwd string) (bool, error) {
	return d.real.CheckCleanWorktree(ctx, cwd)
}

func (d *DryRun) GetConflictedFiles(ctx context.Context, cwd string) ([]string, error) {
	return d.real.GetConflictedFiles(ctx, cwd)
}

func (d *DryRun) GetRebaseStatus(ctx context.Context, cwd string) (RebaseStatus, error) {
	return d.real.GetRebaseStatus(ctx, cwd)
}

func (d *DryRun) StartRebase(ctx context.Context, cwd, onto string) error {
	d.announce("start rebase onto %s in %s", onto, cwd)
	return nil
}

func (d *DryRun) ContinueRebase(ctx context.Context, cwd string) error {
	d.announce("continue rebase in %s", cwd)
	return nil
}

func (d *DryRun) GetGitCommonDir(ctx context.Context, cwd string) (string, bool, error) {
	return d.real.GetGitCommonDir(ctx, cwd)
}

func (d *DryRun) CreateBranch(ctx context.Context, repo, branch, ref string) error {
	d.announce("create branch %s from %s in %s", branch, ref, repo)
	return nil
}

func (d *DryRun) DeleteBranch(ctx context.Context, repo, branch string, force bool) error {
	d.announce("delete branch %s (force=%v) in %s", branch, force, repo)
	return nil
}

func (d *DryRun) ResetHard(ctx context.Context, worktreePath, ref string) error {
	d.announce("reset --hard %s in %s", ref, worktreePath)
	return nil
}

func (d *DryRun) ForceBranch(ctx context.Context, repo, branch, ref string) error {
	d.announce("force branch %s to %s in %s", branch, ref, repo)
	return nil
}

var _ Facade = (*DryRun)(nil)
