package gitfacade

import (
	"context"
	"fmt"
)

// Fake is an in-memory Facade for testing services built on top of
// gitfacade, without spawning real git processes or a proc.Fake keyed on
// raw argv strings.
type Fake struct {
	Worktrees map[string][]WorktreeRecord // keyed by repo root
	Branches  map[string]string           // branch name -> head sha
	Current   map[string]string           // cwd -> current branch (absent = detached)
	Clean     map[string]bool             // cwd -> CheckCleanWorktree result, default true
	Rebase    map[string]RebaseStatus     // cwd -> GetRebaseStatus result

	Calls []string // method names, in call order, for assertions
}

// NewFake returns an empty Fake git facade.
func NewFake() *Fake {
	return &Fake{
		Worktrees: make(map[string][]WorktreeRecord),
		Branches:  make(map[string]string),
		Current:   make(map[string]string),
		Clean:     make(map[string]bool),
		Rebase:    make(map[string]RebaseStatus),
	}
}

func (f *Fake) record(name string) { f.Calls = append(f.Calls, name) }

func (f *Fake) ListWorktrees(ctx context.Context, repo string) ([]WorktreeRecord, error) {
	f.record("ListWorktrees")
	return f.Worktrees[repo], nil
}

func (f *Fake) AddWorktree(ctx context.Context, repo, path, branch, ref string, createBranch bool) error {
	f.record("AddWorktree")
	rec := WorktreeRecord{Path: path, Branch: branch}
	f.Worktrees[repo] = append(f.Worktrees[repo], rec)
	if createBranch {
		f.Branches[branch] = ref
	}
	return nil
}

func (f *Fake) RemoveWorktree(ctx context.Context, repo, path string, force bool) error {
	f.record("RemoveWorktree")
	records := f.Worktrees[repo]
	for i, r := range records {
		if r.Path == path {
			f.Worktrees[repo] = append(records[:i], records[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("gitfacade fake: no worktree at %s", path)
}

func (f *Fake) PruneWorktrees(ctx context.Context, repo string) error {
	f.record("PruneWorktrees")
	return nil
}

func (f *Fake) CheckoutBranch(ctx context.Context, cwd, branch string) error {
	f.record("CheckoutBranch")
	f.Current[cwd] = branch
	return nil
}

func (f *Fake) CheckoutDetached(ctx context.Context, cwd, ref string) error {
	f.record("CheckoutDetached")
	delete(f.Current, cwd)
	return nil
}

func (f *Fake) GetCurrentBranch(ctx context.Context, cwd string) (string, bool, error) {
	f.record("GetCurrentBranch")
	branch, ok := f.Current[cwd]
	return branch, ok, nil
}

func (f *Fake) GetBranchHead(ctx context.Context, repo, branch string) (string, error) {
	f.record("GetBranchHead")
	return f.Branches[branch], nil
}

func (f *Fake) DetectDefaultBranch(ctx context.Context, repo string) (string, error) {
	f.record("DetectDefaultBranch")
	for _, candidate := range []string{"main", "master"} {
		if _, ok := f.Branches[candidate]; ok {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("gitfacade fake: neither main nor master registered")
}

func (f *Fake) IsBranchCheckedOut(ctx context.Context, repo, branch string) (string, bool, error) {
	f.record("IsBranchCheckedOut")
	for _, r := range f.Worktrees[repo] {
		if r.Branch == branch {
			return r.Path, true, nil
		}
	}
	return "", false, nil
}

func (f *Fake) HasStagedChanges(ctx context.Context, cwd string) (bool, error) {
	f.record("HasStagedChanges")
	return !f.Clean[cwd], nil
}

func (f *Fake) CheckCleanWorktree(ctx context.Context, cwd string) (bool, error) {
	f.record("CheckCleanWorktree")
	clean, ok := f.Clean[cwd]
	if !ok {
		return true, nil
	}
	return clean, nil
}

func (f *Fake) GetConflictedFiles(ctx context.Context, cwd string) ([]string, error) {
	f.record("GetConflictedFiles")
	return f.Rebase[cwd].Conflicted, nil
}

func (f *Fake) GetRebaseStatus(ctx context.Context, cwd string) (RebaseStatus, error) {
	f.record("GetRebaseStatus")
	return f.Rebase[cwd], nil
}

func (f *Fake) StartRebase(ctx context.Context, cwd, onto string) error {
	f.record("StartRebase")
	f.Rebase[cwd] = RebaseStatus{InProgress: true, Onto: onto}
	return nil
}

func (f *Fake) ContinueRebase(ctx context.Context, cwd string) error {
	f.record("ContinueRebase")
	delete(f.Rebase, cwd)
	return nil
}

func (f *Fake) GetGitCommonDir(ctx context.Context, cwd string) (string, bool, error) {
	f.record("GetGitCommonDir")
	return cwd + "/.git", true, nil
}

func (f *Fake) CreateBranch(ctx context.Context, repo, branch, ref string) error {
	f.record("CreateBranch")
	f.Branches[branch] = ref
	return nil
}

func (f *Fake) DeleteBranch(ctx context.Context, repo, branch string, force bool) error {
	f.record("DeleteBranch")
	delete(f.Branches, branch)
	return nil
}

func (f *Fake) ResetHard(ctx context.Context, worktreePath, ref string) error {
	f.record("ResetHard")
	return nil
}

func (f *Fake) ForceBranch(ctx context.Context, repo, branch, ref string) error {
	f.record("ForceBranch")
	f.Branches[branch] = ref
	return nil
}

var _ Facade = (*Fake)(nil)
